package analyzer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetota-io/fleetota/pkg/log"
)

func writePolicyFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "policy.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()

	t.Run("full file", func(t *testing.T) {
		path := writePolicyFile(t, dir, `{
			"latest_version": "3.0.0",
			"min_battery_percent": 60,
			"critical_versions": ["1.0.0"]
		}`)

		p, err := LoadPolicy(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if p.LatestVersion != "3.0.0" || p.MinBatteryPercent != 60 {
			t.Fatalf("policy = %+v", p)
		}
		if len(p.CriticalVersions) != 1 || p.CriticalVersions[0] != "1.0.0" {
			t.Fatalf("critical versions = %v", p.CriticalVersions)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writePolicyFile(t, dir, `{"latest_version": "3.0.0"}`)

		p, err := LoadPolicy(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		def := DefaultPolicy()
		if p.LatestVersion != "3.0.0" {
			t.Fatalf("latest version = %q", p.LatestVersion)
		}
		if p.MinBatteryPercent != def.MinBatteryPercent {
			t.Fatalf("min battery = %v, want default %v", p.MinBatteryPercent, def.MinBatteryPercent)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writePolicyFile(t, dir, `{broken`)
		if _, err := LoadPolicy(path); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("invalid policy", func(t *testing.T) {
		path := writePolicyFile(t, dir, `{"latest_version": ""}`)
		if _, err := LoadPolicy(path); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadPolicy(filepath.Join(dir, "nope.json")); err == nil {
			t.Fatal("expected read error")
		}
	})
}

func TestWatchPolicyDeliversUpdates(t *testing.T) {
	dir := t.TempDir()
	path := writePolicyFile(t, dir, `{"latest_version": "2.0.0"}`)

	updates := make(chan Policy, 4)
	stop, err := WatchPolicy(path, log.NewNopLogger(), func(p Policy) {
		updates <- p
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	writePolicyFile(t, dir, `{"latest_version": "2.1.0"}`)

	select {
	case p := <-updates:
		if p.LatestVersion != "2.1.0" {
			t.Fatalf("reloaded latest version = %q, want 2.1.0", p.LatestVersion)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for policy reload")
	}
}

func TestWatchPolicyIgnoresInvalidUpdates(t *testing.T) {
	dir := t.TempDir()
	path := writePolicyFile(t, dir, `{"latest_version": "2.0.0"}`)

	updates := make(chan Policy, 4)
	stop, err := WatchPolicy(path, log.NewNopLogger(), func(p Policy) {
		updates <- p
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	writePolicyFile(t, dir, `{broken`)

	select {
	case p := <-updates:
		t.Fatalf("invalid file delivered a policy: %+v", p)
	case <-time.After(500 * time.Millisecond):
	}
}
