package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clipsense/retrieval/internal/core/domain"
	"github.com/clipsense/retrieval/internal/core/ports"
)

type Config struct {
	TopK            int
	Temperature     float64
	MaxAnswerTokens int
	EmbedTimeout    time.Duration
	GenerateTimeout time.Duration
	TruncationRunes int
}

func (c Config) normalize() Config {
	out := c
	if out.TopK <= 0 {
		out.TopK = 3
	}
	if out.Temperature <= 0 {
		out.Temperature = 0.7
	}
	if out.MaxAnswerTokens <= 0 {
		out.MaxAnswerTokens = 500
	}
	if out.EmbedTimeout <= 0 {
		out.EmbedTimeout = 30 * time.Second
	}
	if out.GenerateTimeout <= 0 {
		out.GenerateTimeout = 60 * time.Second
	}
	if out.TruncationRunes <= 0 {
		out.TruncationRunes = 12000
	}
	return out
}

// HybridRetriever answers questions about a transcript by trying the
// cheap lexical path first and falling back to embeddings only when
// the lexical answer is rejected or the path is unavailable. The
// vector path runs at most once per request and never speculatively.
type HybridRetriever struct {
	chunker   ports.Chunker
	lexical   ports.LexicalRanker
	vector    ports.VectorRanker
	embedder  ports.Embedder
	generator ports.Generator
	cache     ports.ArtifactCache
	recorder  ports.RetrievalRecorder
	logger    *slog.Logger
	cfg       Config
}

func NewHybridRetriever(
	chunker ports.Chunker,
	lexical ports.LexicalRanker,
	vector ports.VectorRanker,
	embedder ports.Embedder,
	generator ports.Generator,
	cache ports.ArtifactCache,
	recorder ports.RetrievalRecorder,
	logger *slog.Logger,
	cfg Config,
) *HybridRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridRetriever{
		chunker:   chunker,
		lexical:   lexical,
		vector:    vector,
		embedder:  embedder,
		generator: generator,
		cache:     cache,
		recorder:  recorder,
		logger:    logger,
		cfg:       cfg.normalize(),
	}
}

// attempt is the transient outcome of one retrieval path within a
// single request. Never persisted.
type attempt struct {
	context  string
	answer   string
	accepted bool
}

func (uc *HybridRetriever) AnswerQuestion(
	ctx context.Context,
	documentID, transcript, question string,
	history []domain.ChatMessage,
) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, domain.WrapError(domain.ErrInvalidInput, "answer question", errors.New("empty question"))
	}
	if strings.TrimSpace(transcript) == "" {
		return domain.Answer{}, domain.WrapError(domain.ErrNoContext, "answer question", errors.New("empty transcript"))
	}

	set, err := uc.cache.GetOrBuildChunks(ctx, documentID, transcript, func() domain.ChunkSet {
		return domain.ChunkSet{
			DocumentID: documentID,
			Chunks:     uc.chunker.Chunk(transcript),
			CreatedAt:  time.Now().UTC(),
		}
	})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("obtain chunk set: %w", err)
	}
	if set.Empty() {
		return domain.Answer{}, domain.WrapError(domain.ErrNoContext, "chunk transcript", errors.New("chunking produced zero chunks"))
	}

	lex := uc.lexicalAttempt(ctx, set, question, history)
	if lex.accepted {
		return domain.Answer{Text: lex.answer, Method: domain.MethodLexical}, nil
	}

	uc.recordFallback()
	vec := uc.vectorAttempt(ctx, documentID, transcript, set, question, history)
	if vec.answer != "" {
		// The vector path only runs when the lexical one came up
		// short, so its answer wins whenever it produced one.
		return domain.Answer{Text: vec.answer, Method: domain.MethodVector}, nil
	}
	if lex.answer != "" {
		// Vector unavailable or failed; the earlier lexical answer,
		// even a rejected one, beats no answer at all.
		return domain.Answer{Text: lex.answer, Method: domain.MethodLexical}, nil
	}

	if answer := uc.truncationAttempt(ctx, transcript, question, history); answer != "" {
		return domain.Answer{Text: answer, Method: domain.MethodTruncation}, nil
	}

	return domain.Answer{}, domain.WrapError(domain.ErrNoAnswer, "answer question", errors.New("all retrieval paths exhausted"))
}

func (uc *HybridRetriever) lexicalAttempt(
	ctx context.Context,
	set domain.ChunkSet,
	question string,
	history []domain.ChatMessage,
) attempt {
	var out attempt
	if uc.lexical == nil {
		uc.logger.Warn("lexical_unavailable", "reason", "ranker not configured")
		uc.record(domain.MethodLexical, "unavailable")
		return out
	}

	contextText, err := uc.lexical.Rank(set, question, uc.cfg.TopK)
	if err != nil {
		uc.logger.Warn("lexical_unavailable", "error", err)
		uc.record(domain.MethodLexical, "unavailable")
		return out
	}
	if strings.TrimSpace(contextText) == "" {
		uc.record(domain.MethodLexical, "no_context")
		return out
	}
	out.context = contextText

	answer, err := uc.generate(ctx, contextText, question, history)
	if err != nil {
		uc.logger.Warn("lexical_generation_failed", "error", err)
		uc.record(domain.MethodLexical, "generation_failed")
		return out
	}
	out.answer = answer
	out.accepted = !IsInsufficient(answer)
	if out.accepted {
		uc.record(domain.MethodLexical, "accepted")
	} else {
		uc.record(domain.MethodLexical, "rejected")
	}
	return out
}

func (uc *HybridRetriever) vectorAttempt(
	ctx context.Context,
	documentID, transcript string,
	set domain.ChunkSet,
	question string,
	history []domain.ChatMessage,
) attempt {
	var out attempt
	if uc.vector == nil {
		uc.logger.Warn("vector_unavailable", "reason", "ranker not configured")
		uc.record(domain.MethodVector, "unavailable")
		return out
	}

	emb, err := uc.cache.GetOrComputeEmbeddings(ctx, documentID, transcript, func(computeCtx context.Context) (domain.EmbeddingSet, error) {
		return uc.embedChunks(computeCtx, documentID, set)
	})
	if err != nil {
		uc.logger.Warn("vector_unavailable", "stage", "embed_chunks", "error", err)
		uc.record(domain.MethodVector, "unavailable")
		return out
	}

	rankCtx, cancel := context.WithTimeout(ctx, uc.cfg.EmbedTimeout)
	contextText, err := uc.vector.Rank(rankCtx, set, emb, question, uc.cfg.TopK)
	cancel()
	if err != nil {
		uc.logger.Warn("vector_unavailable", "stage", "rank", "error", err)
		uc.record(domain.MethodVector, "unavailable")
		return out
	}
	if strings.TrimSpace(contextText) == "" {
		uc.record(domain.MethodVector, "no_context")
		return out
	}
	out.context = contextText

	answer, err := uc.generate(ctx, contextText, question, history)
	if err != nil {
		uc.logger.Warn("vector_generation_failed", "error", err)
		uc.record(domain.MethodVector, "generation_failed")
		return out
	}
	out.answer = answer
	out.accepted = !IsInsufficient(answer)
	if out.accepted {
		uc.record(domain.MethodVector, "accepted")
	} else {
		uc.record(domain.MethodVector, "rejected")
	}
	return out
}

// truncationAttempt generates once from the head of the raw transcript
// after both retrieval paths came up empty-handed.
func (uc *HybridRetriever) truncationAttempt(
	ctx context.Context,
	transcript, question string,
	history []domain.ChatMessage,
) string {
	runes := []rune(transcript)
	if len(runes) > uc.cfg.TruncationRunes {
		runes = runes[:uc.cfg.TruncationRunes]
	}

	answer, err := uc.generate(ctx, string(runes), question, history)
	if err != nil {
		uc.logger.Warn("truncation_generation_failed", "error", err)
		uc.record(domain.MethodTruncation, "generation_failed")
		return ""
	}
	uc.record(domain.MethodTruncation, "used")
	return answer
}

func (uc *HybridRetriever) embedChunks(ctx context.Context, documentID string, set domain.ChunkSet) (domain.EmbeddingSet, error) {
	if uc.embedder == nil {
		return domain.EmbeddingSet{}, domain.WrapError(domain.ErrBackendUnavailable, "embed chunks", errors.New("embedding provider not configured"))
	}

	embedCtx, cancel := context.WithTimeout(ctx, uc.cfg.EmbedTimeout)
	defer cancel()

	vectors, err := uc.embedder.EmbedPassages(embedCtx, set.Texts())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.EmbeddingSet{}, domain.WrapError(domain.ErrProviderTimeout, "embed chunks", err)
		}
		return domain.EmbeddingSet{}, domain.WrapError(domain.ErrBackendUnavailable, "embed chunks", err)
	}
	if len(vectors) != len(set.Chunks) {
		return domain.EmbeddingSet{}, domain.WrapError(
			domain.ErrBackendUnavailable,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(set.Chunks)),
		)
	}

	dimension := 0
	if len(vectors) > 0 {
		dimension = len(vectors[0])
	}
	return domain.EmbeddingSet{
		DocumentID: documentID,
		Dimension:  dimension,
		Vectors:    vectors,
	}, nil
}

func (uc *HybridRetriever) generate(
	ctx context.Context,
	contextText, question string,
	history []domain.ChatMessage,
) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, uc.cfg.GenerateTimeout)
	defer cancel()

	answer, err := uc.generator.Generate(genCtx, buildChatPrompt(contextText, question, history), uc.cfg.Temperature, uc.cfg.MaxAnswerTokens)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", domain.WrapError(domain.ErrProviderTimeout, "generate answer", err)
		}
		return "", domain.WrapError(domain.ErrGenerationFailed, "generate answer", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", domain.WrapError(domain.ErrGenerationFailed, "generate answer", errors.New("empty model response"))
	}
	return answer, nil
}

func (uc *HybridRetriever) record(method domain.RetrievalMethod, outcome string) {
	if uc.recorder != nil {
		uc.recorder.RecordAttempt(method, outcome)
	}
}

func (uc *HybridRetriever) recordFallback() {
	if uc.recorder != nil {
		uc.recorder.RecordFallback()
	}
}
