package storage

import (
	"context"
	"time"

	"github.com/fleetota-io/fleetota/pkg/log"
)

// retryingStore wraps a BlobStore and retries failed Put calls with linear
// backoff (attempt * base). Reads are not retried; the analyzer tolerates
// individual fetch failures on its own.
type retryingStore struct {
	BlobStore

	attempts int
	backoff  time.Duration
	log      log.Logger
}

// WithRetry decorates store so that Put survives transient endpoint
// failures. attempts is the total number of tries; values below 1 are
// treated as 1.
func WithRetry(store BlobStore, attempts int, backoff time.Duration, logger log.Logger) BlobStore {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &retryingStore{
		BlobStore: store,
		attempts:  attempts,
		backoff:   backoff,
		log:       logger.WithName("retry"),
	}
}

func (r *retryingStore) Put(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		lastErr = r.BlobStore.Put(ctx, key, data, metadata)
		if lastErr == nil {
			return nil
		}
		if attempt == r.attempts {
			break
		}

		delay := time.Duration(attempt) * r.backoff
		r.log.Warn("put failed, retrying", "key", key, "attempt", attempt, "delay", delay, "err", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
