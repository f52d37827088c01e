package rank

import (
	"testing"

	"github.com/clipsense/retrieval/internal/core/domain"
)

func chunksOf(texts ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		out[i] = domain.Chunk{Text: text}
	}
	return out
}

func TestTopKContextOrdersByScore(t *testing.T) {
	chunks := chunksOf("low", "high", "mid")
	scores := []float64{0.1, 0.9, 0.5}

	if got := TopKContext(chunks, scores, 2); got != "high\n\nmid" {
		t.Fatalf("got %q", got)
	}
}

func TestTopKContextTiesKeepChunkOrder(t *testing.T) {
	chunks := chunksOf("first", "second", "third")
	scores := []float64{0.5, 0.5, 0.5}

	if got := TopKContext(chunks, scores, 3); got != "first\n\nsecond\n\nthird" {
		t.Fatalf("ties must preserve chunk order, got %q", got)
	}
}

func TestTopKContextClampsK(t *testing.T) {
	chunks := chunksOf("a", "b")
	scores := []float64{0.2, 0.8}

	if got := TopKContext(chunks, scores, 10); got != "b\n\na" {
		t.Fatalf("k beyond len must return all chunks, got %q", got)
	}
	// Non-positive k falls back to the default of three.
	if got := TopKContext(chunksOf("a", "b", "c", "d"), []float64{4, 3, 2, 1}, 0); got != "a\n\nb\n\nc" {
		t.Fatalf("default k selection wrong, got %q", got)
	}
}

func TestTopKContextRejectsMismatchedInputs(t *testing.T) {
	if got := TopKContext(chunksOf("a"), nil, 3); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
	if got := TopKContext(nil, nil, 3); got != "" {
		t.Fatalf("expected empty context for no chunks, got %q", got)
	}
}
