package ports

import (
	"context"

	"github.com/clipsense/retrieval/internal/core/domain"
)

// Chunker splits transcript text into overlapping windows.
type Chunker interface {
	Chunk(text string) []domain.Chunk
}

// Embedder obtains dense vectors from the embedding provider. Passage
// calls are batched; query calls embed a single text in query mode.
type Embedder interface {
	EmbedPassages(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator is the opaque text-completion service producing answers.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// LexicalRanker scores a chunk set against a question and returns the
// concatenated top-k context. A nil ranker means the lexical path is
// unavailable.
type LexicalRanker interface {
	Rank(set domain.ChunkSet, question string, topK int) (string, error)
}

// VectorRanker ranks chunks by similarity between their embeddings and
// the embedded question.
type VectorRanker interface {
	Rank(ctx context.Context, set domain.ChunkSet, emb domain.EmbeddingSet, question string, topK int) (string, error)
}

// ArtifactCache memoizes per-document chunking and embedding work.
// Concurrent callers for the same document share one computation.
type ArtifactCache interface {
	GetOrBuildChunks(ctx context.Context, documentID, text string, build func() domain.ChunkSet) (domain.ChunkSet, error)
	GetOrComputeEmbeddings(ctx context.Context, documentID, text string, compute func(context.Context) (domain.EmbeddingSet, error)) (domain.EmbeddingSet, error)
	Purge(ctx context.Context, documentID string) error
}

// RetrievalRecorder observes controller outcomes.
type RetrievalRecorder interface {
	RecordAttempt(method domain.RetrievalMethod, outcome string)
	RecordFallback()
}

// PurgeQueue fans cache invalidation out to every running process.
type PurgeQueue interface {
	PublishCachePurge(ctx context.Context, documentID string) error
	SubscribeCachePurge(ctx context.Context, handler func(context.Context, string) error) error
}
