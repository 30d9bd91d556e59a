package templates

import (
	"context"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Watcher polls a template root and reloads the library when files are added,
// removed or modified, so curated templates can change without a restart.
type Watcher struct {
	lib      *Library
	interval time.Duration
	baseline uint64
	onReload func(*Library)
}

// NewWatcher creates a watcher for lib's root using the current contents as
// the baseline.
func NewWatcher(lib *Library, interval time.Duration) *Watcher {
	return &Watcher{
		lib:      lib,
		interval: interval,
		baseline: Fingerprint(lib.Root()),
	}
}

// OnReload sets a callback invoked after each reload. It runs on the watcher
// goroutine.
func (w *Watcher) OnReload(fn func(*Library)) {
	w.onReload = fn
}

// Run checks for changes every interval until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check reloads the library if the root changed since the last check and
// reports whether it did.
func (w *Watcher) Check() bool {
	current := Fingerprint(w.lib.Root())
	if current == w.baseline {
		return false
	}
	w.baseline = current

	slog.Info("Templates: change detected, reloading", "root", w.lib.Root())
	w.lib.Replace(LoadSmoothed(w.lib.Root(), w.lib.Blur()))
	if w.onReload != nil {
		w.onReload(w.lib)
	}
	return true
}

// Fingerprint hashes the names, sizes and modification times of the label
// directories and image files under root. A missing root hashes to zero.
func Fingerprint(root string) uint64 {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0
	}

	h := fnv.New64a()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
		for _, f := range files {
			if f.IsDir() || !IsImageFile(f.Name()) {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			h.Write([]byte(entry.Name() + "/" + f.Name()))
			h.Write([]byte(info.ModTime().UTC().Format(time.RFC3339Nano)))
			h.Write([]byte{byte(info.Size()), byte(info.Size() >> 8), byte(info.Size() >> 16)})
		}
	}
	return h.Sum64()
}
