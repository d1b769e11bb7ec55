package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teamtrace/relato"
	"github.com/teamtrace/relato/pkg/retrieval"
	"github.com/teamtrace/relato/pkg/server/dto"
)

// RetrieveHandler handles retrieval requests
type RetrieveHandler struct {
	relato relato.Relato
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(r relato.Relato) *RetrieveHandler {
	return &RetrieveHandler{relato: r}
}

// Retrieve handles POST /retrieve
func (h *RetrieveHandler) Retrieve(c *gin.Context) {
	var req dto.RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	ctx := c.Request.Context()

	var (
		result *retrieval.Result
		err    error
	)
	switch {
	case req.Rerank:
		result, err = h.relato.RetrieveWithReranking(ctx, req.Query)
	case req.Expand:
		result, err = h.relato.RetrieveWithExpansion(ctx, req.Query)
	default:
		result, err = h.relato.Retrieve(ctx, req.Query)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "retrieve_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toRetrieveResponse(result))
}

// Related handles GET /objects/:id/related
func (h *RetrieveHandler) Related(c *gin.Context) {
	objectID := c.Param("id")
	if objectID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "object id is required"})
		return
	}

	depth := 0
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "depth must be a non-negative integer"})
			return
		}
		depth = parsed
	}

	neighborhood, err := h.relato.GetRelatedObjects(c.Request.Context(), objectID, depth)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "object_not_found", Message: err.Error()})
		return
	}

	resp := dto.RelatedResponse{
		ObjectID:  objectID,
		Depth:     depth,
		Objects:   make([]dto.ObjectResult, 0, len(neighborhood.Objects)),
		Relations: make([]dto.RelationResult, 0, len(neighborhood.Relations)),
	}
	for _, obj := range neighborhood.Objects {
		resp.Objects = append(resp.Objects, dto.ObjectResult{
			ID:         obj.ID,
			Platform:   obj.Platform,
			ObjectType: obj.ObjectType,
			Title:      obj.Title,
			UpdatedAt:  obj.UpdatedAt,
		})
	}
	for _, rel := range neighborhood.Relations {
		resp.Relations = append(resp.Relations, dto.RelationResult{
			FromID:     rel.FromID,
			ToID:       rel.ToID,
			Type:       string(rel.Type),
			Source:     string(rel.Source),
			Confidence: rel.Confidence,
			Score:      rel.Score,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func toRetrieveResponse(result *retrieval.Result) dto.RetrieveResponse {
	resp := dto.RetrieveResponse{
		Query:     result.Query,
		Chunks:    make([]dto.ChunkResult, 0, len(result.Chunks)),
		Objects:   make([]dto.ObjectResult, 0, len(result.Objects)),
		Relations: make([]dto.RelationResult, 0, len(result.Relations)),
		Stats: dto.StatsResult{
			ChunkCount:    result.Stats.ChunkCount,
			ObjectCount:   result.Stats.ObjectCount,
			RelationCount: result.Stats.RelationCount,
			ExpandedCount: result.Stats.ExpandedCount,
			EmbedMillis:   result.Stats.EmbedDuration.Milliseconds(),
			SearchMillis:  result.Stats.SearchDuration.Milliseconds(),
			TotalMillis:   result.Stats.TotalDuration.Milliseconds(),
		},
	}

	for _, sc := range result.Chunks {
		resp.Chunks = append(resp.Chunks, dto.ChunkResult{
			ID:             sc.Chunk.ID,
			ParentObjectID: sc.Chunk.ParentObjectID,
			Content:        sc.Chunk.Content,
			Score:          sc.Score,
		})
	}
	for _, obj := range result.Objects {
		resp.Objects = append(resp.Objects, dto.ObjectResult{
			ID:         obj.ID,
			Platform:   obj.Platform,
			ObjectType: obj.ObjectType,
			Title:      obj.Title,
			UpdatedAt:  obj.UpdatedAt,
		})
	}
	for _, rel := range result.Relations {
		resp.Relations = append(resp.Relations, dto.RelationResult{
			FromID:     rel.FromID,
			ToID:       rel.ToID,
			Type:       string(rel.Type),
			Source:     string(rel.Source),
			Confidence: rel.Confidence,
			Score:      rel.Score,
		})
	}
	return resp
}
