package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/clipsense/retrieval/internal/core/domain"
)

// Service memoizes per-document chunk sets and embedding sets on top
// of a Backend. Backend errors are never fatal: a failing get counts
// as a miss, a failing set is logged and the computed value is still
// returned. A singleflight group guarantees that concurrent cold-cache
// requests for the same document share one computation.
type Service struct {
	backend  Backend
	name     string
	ttl      time.Duration
	group    singleflight.Group
	logger   *slog.Logger
	recorder OpRecorder
}

func NewService(backend Backend, name string, ttl time.Duration, logger *slog.Logger, recorder OpRecorder) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend:  backend,
		name:     name,
		ttl:      ttl,
		logger:   logger,
		recorder: recorder,
	}
}

// Cached payloads carry the hash of the transcript they were computed
// from. A document id reused for corrected text then reads as a miss
// instead of serving stale chunks until TTL expiry.
type chunkEnvelope struct {
	ContentHash string          `json:"content_hash"`
	Set         domain.ChunkSet `json:"chunk_set"`
}

type embeddingEnvelope struct {
	ContentHash string              `json:"content_hash"`
	Set         domain.EmbeddingSet `json:"embedding_set"`
}

func (s *Service) GetOrBuildChunks(ctx context.Context, documentID, text string, build func() domain.ChunkSet) (domain.ChunkSet, error) {
	key := chunkKey(documentID)
	hash := contentHash(text)

	v, err, _ := s.group.Do(key+":"+hash, func() (any, error) {
		var env chunkEnvelope
		if s.fetch(ctx, key, hash, &env, func() string { return env.ContentHash }) {
			return env.Set, nil
		}

		set := build()
		s.store(ctx, key, chunkEnvelope{ContentHash: hash, Set: set})
		return set, nil
	})
	if err != nil {
		return domain.ChunkSet{}, err
	}
	return v.(domain.ChunkSet), nil
}

func (s *Service) GetOrComputeEmbeddings(ctx context.Context, documentID, text string, compute func(context.Context) (domain.EmbeddingSet, error)) (domain.EmbeddingSet, error) {
	key := embeddingKey(documentID)
	hash := contentHash(text)

	v, err, _ := s.group.Do(key+":"+hash, func() (any, error) {
		var env embeddingEnvelope
		if s.fetch(ctx, key, hash, &env, func() string { return env.ContentHash }) && !env.Set.Empty() {
			return env.Set, nil
		}

		set, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, embeddingEnvelope{ContentHash: hash, Set: set})
		return set, nil
	})
	if err != nil {
		return domain.EmbeddingSet{}, err
	}
	return v.(domain.EmbeddingSet), nil
}

// Purge drops both cached artifacts for a document.
func (s *Service) Purge(ctx context.Context, documentID string) error {
	var firstErr error
	for _, key := range []string{chunkKey(documentID), embeddingKey(documentID)} {
		if err := s.backend.Delete(ctx, key); err != nil {
			s.recordOp("delete", "error")
			s.logger.Warn("cache_delete_failed", "key", key, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.recordOp("delete", "ok")
	}
	return firstErr
}

// fetch reads and decodes an envelope, returning true only for a live
// entry whose content hash matches the current transcript.
func (s *Service) fetch(ctx context.Context, key, hash string, out any, storedHash func() string) bool {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.recordOp("get", "error")
		s.logger.Warn("cache_get_failed", "key", key, "error", err)
		return false
	}
	if !ok {
		s.recordOp("get", "miss")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.recordOp("get", "error")
		s.logger.Warn("cache_decode_failed", "key", key, "error", err)
		return false
	}
	if storedHash() != hash {
		s.recordOp("get", "stale")
		return false
	}
	s.recordOp("get", "hit")
	return true
}

func (s *Service) store(ctx context.Context, key string, env any) {
	data, err := json.Marshal(env)
	if err != nil {
		s.recordOp("set", "error")
		s.logger.Warn("cache_encode_failed", "key", key, "error", err)
		return
	}
	if err := s.backend.Set(ctx, key, data, s.ttl); err != nil {
		s.recordOp("set", "error")
		s.logger.Warn("cache_set_failed", "key", key, "error", err)
		return
	}
	s.recordOp("set", "ok")
}

func (s *Service) recordOp(op, result string) {
	if s.recorder != nil {
		s.recorder.RecordOp(s.name, op, result)
	}
}

func chunkKey(documentID string) string {
	return "chunks:" + documentID
}

func embeddingKey(documentID string) string {
	return "embeddings:" + documentID
}

func contentHash(text string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return fmt.Sprintf("%016x", h.Sum64())
}
