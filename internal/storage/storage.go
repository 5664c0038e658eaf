// Package storage provides the blob store abstraction used to persist and
// retrieve telemetry snapshots. The canonical implementation is backed by an
// S3-compatible object store.
package storage

import (
	"context"
	"time"
)

// ObjectInfo describes a stored object without its payload.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// BlobStore is the persistence contract for telemetry objects. Keys follow
// the layout produced by SnapshotKey so that listing by time-bucketed prefix
// stays cheap.
type BlobStore interface {
	// Put stores data under key with optional user metadata.
	Put(ctx context.Context, key string, data []byte, metadata map[string]string) error
	// List returns up to maxKeys objects whose keys start with prefix.
	List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error)
	// Get fetches the full payload of an object.
	Get(ctx context.Context, key string) ([]byte, error)
}
