// Package handlers implements the HTTP endpoints of the relato server.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamtrace/relato"
	"github.com/teamtrace/relato/pkg/store"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	relato relato.Relato
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(r relato.Relato) *HealthHandler {
	return &HealthHandler{relato: r}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "relato",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "relato",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := gin.H{
		"status":    "ready",
		"service":   "relato",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    gin.H{},
	}

	allHealthy := true
	checks := response["checks"].(gin.H)

	if h.relato != nil {
		// A lookup for a non-existent id exercises store connectivity
		// without side effects; "not found" means the store answered.
		started := time.Now()
		_, err := h.relato.GetObject(ctx, "health-check-non-existent-id")
		duration := time.Since(started)

		switch {
		case ctx.Err() != nil:
			checks["store"] = gin.H{
				"status":   "unhealthy",
				"error":    "store connection timeout",
				"duration": duration.String(),
			}
			allHealthy = false
		case err != nil && !errors.Is(err, store.ErrObjectNotFound):
			checks["store"] = gin.H{
				"status":   "unhealthy",
				"error":    err.Error(),
				"duration": duration.String(),
			}
			allHealthy = false
		default:
			checks["store"] = gin.H{
				"status":   "healthy",
				"duration": duration.String(),
			}
		}
	} else {
		checks["store"] = gin.H{
			"status": "unhealthy",
			"error":  "relato client not initialized",
		}
		allHealthy = false
	}

	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "relato",
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"metrics": gin.H{
			"goroutines":    runtime.NumGoroutine(),
			"heap_alloc_mb": float64(m.Alloc) / (1024 * 1024),
			"gc_cycles":     m.NumGC,
			"heap_objects":  m.HeapObjects,
		},
	})
}
