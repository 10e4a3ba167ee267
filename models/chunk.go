package models

// DocumentChunk is one paragraph of a label, keyed by its position.
type DocumentChunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}
