package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/fleetota-io/fleetota/pkg/log"
)

// LoadPolicy reads a JSON policy file. Missing fields keep the defaults so a
// partial file only overrides what it names.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read policy file: %w", err)
	}
	if err := json.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("parse policy file %q: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return policy, fmt.Errorf("invalid policy in %q: %w", path, err)
	}
	return policy, nil
}

// WatchPolicy reloads the policy file whenever it changes and hands valid
// policies to onChange. Invalid or unreadable updates are logged and
// dropped; the previously loaded policy stays in effect. The watcher stops
// when the returned closer is called.
//
// The parent directory is watched rather than the file itself: editors and
// config managers typically replace the file, which would otherwise detach
// a file-level watch.
func WatchPolicy(path string, logger log.Logger, onChange func(Policy)) (func() error, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.WithName("policy-watch").WithValues("path", path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve policy path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				policy, err := LoadPolicy(abs)
				if err != nil {
					logger.Warn("ignoring policy update", "err", err)
					continue
				}
				logger.Info("policy reloaded",
					"latest_version", policy.LatestVersion,
					"min_battery_percent", policy.MinBatteryPercent)
				onChange(policy)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error(err, "policy watcher error")
			}
		}
	}()

	return watcher.Close, nil
}
