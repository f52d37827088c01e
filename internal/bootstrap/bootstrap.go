package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipsense/retrieval/internal/config"
	"github.com/clipsense/retrieval/internal/core/ports"
	"github.com/clipsense/retrieval/internal/core/usecase"
	"github.com/clipsense/retrieval/internal/index/lexical"
	"github.com/clipsense/retrieval/internal/index/vector"
	"github.com/clipsense/retrieval/internal/infrastructure/cache"
	"github.com/clipsense/retrieval/internal/infrastructure/chunking"
	"github.com/clipsense/retrieval/internal/infrastructure/embedding/pinecone"
	"github.com/clipsense/retrieval/internal/infrastructure/llm/gemini"
	natsqueue "github.com/clipsense/retrieval/internal/infrastructure/queue/nats"
	"github.com/clipsense/retrieval/internal/infrastructure/resilience"
	"github.com/clipsense/retrieval/internal/observability/logging"
	"github.com/clipsense/retrieval/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.RetrievalMetrics

	Cache     *cache.Service
	Queue     ports.PurgeQueue
	Retriever ports.QuestionAnswerer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewRetrievalMetrics(service)
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	backend, backendName, closeBackend := selectCacheBackend(ctx, cfg, logger)
	cacheService := cache.NewService(backend, backendName, time.Duration(cfg.CacheTTLSeconds)*time.Second, logger, m)

	var queue ports.PurgeQueue
	var closeQueue func()
	if cfg.NATSURL != "" {
		q, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init purge queue: %w", err)
		}
		queue = q
		closeQueue = q.Close
	}

	var embedder ports.Embedder
	if cfg.PineconeAPIKey != "" {
		embedder = pinecone.New(cfg.PineconeAPIKey, pinecone.Options{
			BaseURL:            cfg.PineconeBaseURL,
			Model:              cfg.PineconeModel,
			RequestsPerMinute:  cfg.PineconeRPM,
			ResilienceExecutor: executor,
		})
	} else {
		logger.Warn("embedding_provider_disabled", "reason", "PINECONE_API_KEY not set")
	}

	generator := gemini.New(cfg.GeminiAPIKey, gemini.Options{
		BaseURL:            cfg.GeminiBaseURL,
		Model:              cfg.GeminiModel,
		ResilienceExecutor: executor,
	})

	var lexicalRanker ports.LexicalRanker
	if cfg.LexicalEnabled {
		lexicalRanker = lexical.NewRanker()
	}

	retriever := usecase.NewHybridRetriever(
		chunking.NewSplitter(cfg.ChunkWindow, cfg.ChunkOverlap),
		lexicalRanker,
		vector.NewRanker(embedder),
		embedder,
		generator,
		cacheService,
		m,
		logger,
		usecase.Config{
			TopK:            cfg.TopK,
			Temperature:     cfg.Temperature,
			MaxAnswerTokens: cfg.MaxAnswerTokens,
			EmbedTimeout:    time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
			GenerateTimeout: time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
			TruncationRunes: cfg.TruncationRunes,
		},
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		Cache:     cacheService,
		Queue:     queue,
		Retriever: retriever,

		closeFn: func() {
			if closeQueue != nil {
				closeQueue()
			}
			if closeBackend != nil {
				closeBackend()
			}
		},
	}, nil
}

// selectCacheBackend prefers Postgres when configured but falls back
// to the in-process table if it is unreachable at startup; a cold
// cache is cheaper than refusing to boot.
func selectCacheBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (cache.Backend, string, func()) {
	if cfg.PostgresDSN == "" {
		return cache.NewMemory(), "memory", nil
	}

	db, err := cache.OpenDB(cfg.PostgresDSN)
	if err != nil {
		logger.Warn("cache_backend_fallback", "backend", "postgres", "error", err)
		return cache.NewMemory(), "memory", nil
	}

	pg := cache.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		logger.Warn("cache_backend_fallback", "backend", "postgres", "error", err)
		_ = db.Close()
		return cache.NewMemory(), "memory", nil
	}

	return pg, "postgres", func() { _ = db.Close() }
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
