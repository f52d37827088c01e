package domain

import "time"

// Chunk is a contiguous window of a transcript with rune offsets into
// the source text. Chunks are produced only by the chunker and are
// immutable once created.
type Chunk struct {
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// ChunkSet is the ordered chunking of one transcript. Chunks are sorted
// by StartOffset. Rebuilding from the same text and parameters yields
// an identical set.
type ChunkSet struct {
	DocumentID string    `json:"document_id"`
	Chunks     []Chunk   `json:"chunks"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s ChunkSet) Empty() bool {
	return len(s.Chunks) == 0
}

// Texts returns the chunk texts in chunk order.
func (s ChunkSet) Texts() []string {
	out := make([]string, len(s.Chunks))
	for i, c := range s.Chunks {
		out[i] = c.Text
	}
	return out
}

// EmbeddingSet holds one provider vector per chunk, aligned
// index-for-index with the ChunkSet it was computed from. All vectors
// share the same dimension.
type EmbeddingSet struct {
	DocumentID string      `json:"document_id"`
	Dimension  int         `json:"dimension"`
	Vectors    [][]float32 `json:"vectors"`
}

func (s EmbeddingSet) Empty() bool {
	return len(s.Vectors) == 0
}
