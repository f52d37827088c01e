package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/clipsense/retrieval/internal/core/domain"
	"github.com/clipsense/retrieval/internal/core/ports"
	"github.com/clipsense/retrieval/internal/index/rank"
)

// Ranker scores chunks by cosine similarity between their cached
// embeddings and the embedded question. Provider failures surface as
// an unavailable backend, never as a request-aborting error.
type Ranker struct {
	embedder ports.Embedder
}

func NewRanker(embedder ports.Embedder) *Ranker {
	return &Ranker{embedder: embedder}
}

func (r *Ranker) Rank(ctx context.Context, set domain.ChunkSet, emb domain.EmbeddingSet, question string, topK int) (string, error) {
	if r.embedder == nil {
		return "", domain.WrapError(domain.ErrBackendUnavailable, "vector rank", errors.New("embedding provider not configured"))
	}
	if set.Empty() || emb.Empty() {
		return "", domain.WrapError(domain.ErrBackendUnavailable, "vector rank", errors.New("empty embedding set"))
	}
	if len(emb.Vectors) != len(set.Chunks) {
		return "", domain.WrapError(
			domain.ErrBackendUnavailable,
			"vector rank",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(emb.Vectors), len(set.Chunks)),
		)
	}

	queryVector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || domain.IsKind(err, domain.ErrProviderTimeout) {
			return "", domain.WrapError(domain.ErrProviderTimeout, "embed query", err)
		}
		return "", domain.WrapError(domain.ErrBackendUnavailable, "embed query", err)
	}
	if len(queryVector) != emb.Dimension {
		return "", domain.WrapError(
			domain.ErrBackendUnavailable,
			"embed query",
			fmt.Errorf("query dimension %d does not match set dimension %d", len(queryVector), emb.Dimension),
		)
	}

	scores := make([]float64, len(emb.Vectors))
	for i, v := range emb.Vectors {
		scores[i] = Cosine(v, queryVector)
	}
	return rank.TopKContext(set.Chunks, scores, topK), nil
}
