// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/teamtrace/relato/pkg/types"
)

// MaxQueryLength bounds the accepted query size.
const MaxQueryLength = 8192

// ErrQueryTooLong is returned when a query exceeds MaxQueryLength.
var ErrQueryTooLong = errors.New("query exceeds maximum length")

// RetrieveRequest is the body of POST /retrieve.
type RetrieveRequest struct {
	Query string `json:"query" binding:"required"`

	// Expand pulls in objects referenced by relations but not directly
	// matched by vector search.
	Expand bool `json:"expand,omitempty"`

	// Rerank reorders results by a recency-boosted score.
	Rerank bool `json:"rerank,omitempty"`
}

// Validate performs validation on RetrieveRequest.
func (r *RetrieveRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

// ChunkResult is one scored chunk in a retrieval response.
type ChunkResult struct {
	ID             string  `json:"id"`
	ParentObjectID string  `json:"parent_object_id"`
	Content        string  `json:"content"`
	Score          float64 `json:"score"`
}

// ObjectResult is one resolved object in a retrieval response.
type ObjectResult struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	ObjectType string    `json:"object_type"`
	Title      string    `json:"title,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RelationResult is one inferred relation in a retrieval response.
type RelationResult struct {
	FromID     string                 `json:"from_id"`
	ToID       string                 `json:"to_id"`
	Type       string                 `json:"type"`
	Source     string                 `json:"source"`
	Confidence float64                `json:"confidence"`
	Score      *types.SimilarityScore `json:"score,omitempty"`
}

// RetrieveResponse is the body of a successful retrieval.
type RetrieveResponse struct {
	Query     string           `json:"query"`
	Chunks    []ChunkResult    `json:"chunks"`
	Objects   []ObjectResult   `json:"objects"`
	Relations []RelationResult `json:"relations"`
	Stats     StatsResult      `json:"stats"`
}

// StatsResult carries per-request counts and timings.
type StatsResult struct {
	ChunkCount    int   `json:"chunk_count"`
	ObjectCount   int   `json:"object_count"`
	RelationCount int   `json:"relation_count"`
	ExpandedCount int   `json:"expanded_count,omitempty"`
	EmbedMillis   int64 `json:"embed_ms"`
	SearchMillis  int64 `json:"search_ms"`
	TotalMillis   int64 `json:"total_ms"`
}

// RelatedResponse is the body of GET /objects/:id/related.
type RelatedResponse struct {
	ObjectID  string           `json:"object_id"`
	Depth     int              `json:"depth"`
	Objects   []ObjectResult   `json:"objects"`
	Relations []RelationResult `json:"relations"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
