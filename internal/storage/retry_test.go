package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetota-io/fleetota/pkg/log"
)

// flakyStore fails Put a configured number of times before succeeding.
type flakyStore struct {
	failures int
	puts     int
}

var _ BlobStore = (*flakyStore)(nil)

func (f *flakyStore) Put(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	f.puts++
	if f.puts <= f.failures {
		return errors.New("endpoint unavailable")
	}
	return nil
}

func (f *flakyStore) List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error) {
	return nil, nil
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func TestWithRetryEventuallySucceeds(t *testing.T) {
	inner := &flakyStore{failures: 2}
	store := WithRetry(inner, 3, time.Millisecond, log.NewNopLogger())

	if err := store.Put(context.Background(), "k", []byte("v"), nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	if inner.puts != 3 {
		t.Fatalf("puts = %d, want 3", inner.puts)
	}
}

func TestWithRetryGivesUpAfterAttempts(t *testing.T) {
	inner := &flakyStore{failures: 10}
	store := WithRetry(inner, 3, time.Millisecond, log.NewNopLogger())

	if err := store.Put(context.Background(), "k", []byte("v"), nil); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if inner.puts != 3 {
		t.Fatalf("puts = %d, want 3", inner.puts)
	}
}

func TestWithRetryStopsOnCancelledContext(t *testing.T) {
	inner := &flakyStore{failures: 10}
	store := WithRetry(inner, 5, time.Hour, log.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Put(ctx, "k", []byte("v"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if inner.puts != 1 {
		t.Fatalf("puts = %d, want 1", inner.puts)
	}
}

func TestWithRetryNormalizesAttempts(t *testing.T) {
	inner := &flakyStore{failures: 0}
	store := WithRetry(inner, 0, time.Millisecond, nil)

	if err := store.Put(context.Background(), "k", []byte("v"), nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	if inner.puts != 1 {
		t.Fatalf("puts = %d, want 1", inner.puts)
	}
}
