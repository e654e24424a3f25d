package pool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// reloadDebounce collapses editor write bursts into one reload.
const reloadDebounce = 500 * time.Millisecond

// LoadFile reads the provider-pool JSON document: a mapping from kind to an
// array of entries. A missing file yields an empty pool.
func LoadFile(path string) (map[string][]*ProviderEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]*ProviderEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read provider pool file: %w", err)
	}

	var loaded map[string][]*ProviderEntry
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse provider pool file %s: %w", path, err)
	}
	for kind, entries := range loaded {
		for _, e := range entries {
			if e.Kind == "" {
				e.Kind = kind
			}
			// A hand-written entry usually omits isHealthy; absent-or-false
			// with no recorded error means healthy.
			if !e.IsHealthy && e.ErrorCount == 0 && e.LastError == nil {
				e.IsHealthy = true
			}
		}
	}
	return loaded, nil
}

// SaveFile persists the pool document atomically via temp file and rename.
func SaveFile(path string, entries map[string][]*ProviderEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal provider pool: %w", err)
	}
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write provider pool file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename provider pool file: %w", err)
	}
	return nil
}

// Save writes the pool's current entries back to its file.
func (p *Pool) Save(path string) error {
	p.mu.RLock()
	snapshot := make(map[string][]*ProviderEntry, len(p.entries))
	for kind, entries := range p.entries {
		copied := make([]*ProviderEntry, len(entries))
		for i, e := range entries {
			c := *e
			copied[i] = &c
		}
		snapshot[kind] = copied
	}
	p.mu.RUnlock()
	return SaveFile(path, snapshot)
}

// Watch reloads the pool whenever its backing file changes, debounced, and
// preserves runtime counters across reloads. Returns a stop function.
func (p *Pool) Watch(path string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create pool file watcher: %w", err)
	}
	// Watch the directory: editors replace files via rename, which drops a
	// watch set on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target, _ := filepath.Abs(path)
	done := make(chan struct{})
	go func() {
		var timer *time.Timer
		reload := func() {
			loaded, err := LoadFile(path)
			if err != nil {
				logrus.Errorf("provider pool reload failed: %v", err)
				return
			}
			p.Replace(loaded)
			logrus.Infof("provider pool reloaded from %s", path)
		}
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				abs, _ := filepath.Abs(ev.Name)
				if abs != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logrus.Errorf("pool file watcher error: %v", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
