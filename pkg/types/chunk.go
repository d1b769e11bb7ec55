package types

// Chunk is a retrievable slice of a CanonicalObject's text. Chunks are
// created during ingestion, never mutated, and deleted with their parent.
type Chunk struct {
	ID             string    `json:"id" mapstructure:"id"`
	ParentObjectID string    `json:"parent_object_id" mapstructure:"parent_object_id"`
	Content        string    `json:"content" mapstructure:"content"`
	ChunkIndex     int       `json:"chunk_index" mapstructure:"chunk_index"`
	Embedding      []float32 `json:"embedding,omitempty" mapstructure:"embedding"`

	// Method records how the chunk was produced (e.g. "paragraph",
	// "sliding_window").
	Method string `json:"method,omitempty" mapstructure:"method"`
}

// Validate checks if the Chunk has all required fields set.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if c.ParentObjectID == "" {
		return ErrEmptyParentID
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// ScoredChunk pairs a chunk with its similarity score for a query.
type ScoredChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}
