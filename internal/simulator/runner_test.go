package simulator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fleetota-io/fleetota/internal/storage"
	"github.com/fleetota-io/fleetota/pkg/log"
)

type recordingStore struct {
	mu   sync.Mutex
	puts map[string][]byte
	fail bool
}

var _ storage.BlobStore = (*recordingStore)(nil)

func newRecordingStore() *recordingStore {
	return &recordingStore{puts: map[string][]byte{}}
}

func (s *recordingStore) Put(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store down")
	}
	s.puts[key] = data
	return nil
}

func (s *recordingStore) List(ctx context.Context, prefix string, maxKeys int) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (s *recordingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads int
}

func (p *recordingPublisher) PublishSnapshot(ctx context.Context, vehicleID int, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads++
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payloads
}

func TestRunnerUploadsEveryVehicle(t *testing.T) {
	fleet, err := NewFleet(8, "TESLA", DefaultCatalog(), 21)
	if err != nil {
		t.Fatalf("new fleet: %v", err)
	}
	store := newRecordingStore()
	pub := &recordingPublisher{}

	r := NewRunner(fleet, store, pub, RunnerConfig{
		TickInterval:         time.Minute,
		MaxConcurrentUploads: 4,
	}, log.NewNopLogger())

	snaps, err := fleet.TickAllParallel(context.Background(), time.Minute, 4)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}

	uploaded, failed := r.upload(context.Background(), snaps)
	if uploaded != 8 || failed != 0 {
		t.Fatalf("uploaded=%d failed=%d, want 8/0", uploaded, failed)
	}
	if store.count() != 8 {
		t.Fatalf("store holds %d objects, want 8", store.count())
	}
	if pub.count() != 8 {
		t.Fatalf("published %d snapshots, want 8", pub.count())
	}

	for key := range store.puts {
		if !strings.HasPrefix(key, storage.TelemetryPrefix+"/") {
			t.Fatalf("key %q outside telemetry prefix", key)
		}
	}
}

func TestRunnerCountsUploadFailures(t *testing.T) {
	fleet, err := NewFleet(3, "TESLA", DefaultCatalog(), 22)
	if err != nil {
		t.Fatalf("new fleet: %v", err)
	}
	store := newRecordingStore()
	store.fail = true

	r := NewRunner(fleet, store, nil, RunnerConfig{
		TickInterval:         time.Minute,
		MaxConcurrentUploads: 2,
	}, log.NewNopLogger())

	snaps := fleet.TickAll(context.Background(), time.Minute)
	uploaded, failed := r.upload(context.Background(), snaps)
	if uploaded != 0 || failed != 3 {
		t.Fatalf("uploaded=%d failed=%d, want 0/3", uploaded, failed)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	fleet, err := NewFleet(2, "TESLA", DefaultCatalog(), 23)
	if err != nil {
		t.Fatalf("new fleet: %v", err)
	}
	store := newRecordingStore()

	r := NewRunner(fleet, store, nil, RunnerConfig{
		TickInterval:         10 * time.Millisecond,
		MaxConcurrentUploads: 2,
	}, log.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v, want nil on cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
	if store.count() == 0 {
		t.Fatal("no snapshots uploaded before cancellation")
	}
}

func TestRunnerStopsAfterDuration(t *testing.T) {
	fleet, err := NewFleet(2, "TESLA", DefaultCatalog(), 24)
	if err != nil {
		t.Fatalf("new fleet: %v", err)
	}
	store := newRecordingStore()

	r := NewRunner(fleet, store, nil, RunnerConfig{
		TickInterval:         10 * time.Millisecond,
		Duration:             60 * time.Millisecond,
		MaxConcurrentUploads: 2,
	}, log.NewNopLogger())

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v, want nil after duration", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after its duration")
	}
}
