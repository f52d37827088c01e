package cache

import (
	"context"
	"time"
)

// Backend is a TTL key/value store. Get must never return an expired
// entry; such entries are treated as absent. Implementations are safe
// for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// OpRecorder observes backend operations.
type OpRecorder interface {
	RecordOp(backend, op, result string)
}
