package compute

import (
	"fmt"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// CacheWatcher watches template directories and raises a dirty flag when
// any file under them changes, powering the edit-and-reload workflow.
//
// The watcher never touches the manager from its own goroutine; the
// manager is single-threaded by contract, so the watcher only flips an
// atomic flag.
// The render thread polls it via Manager.ReloadIfModified.
type CacheWatcher struct {
	w     *fsnotify.Watcher
	dirty atomic.Bool
	done  chan struct{}
}

// NewCacheWatcher starts watching the given directories.
func NewCacheWatcher(dirs ...string) (*CacheWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("compute: create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("compute: watch %q: %w", dir, err)
		}
	}

	cw := &CacheWatcher{w: w, done: make(chan struct{})}
	go cw.loop()
	return cw, nil
}

func (cw *CacheWatcher) loop() {
	defer close(cw.done)
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				cw.dirty.Store(true)
				Logger().Debug("compute: template change detected",
					"path", ev.Name, "op", ev.Op.String())
			}
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			Logger().Warn("compute: watcher error", "err", err)
		}
	}
}

// Dirty reports whether a template change was seen since the last consume.
func (cw *CacheWatcher) Dirty() bool { return cw.dirty.Load() }

// Close stops the watcher.
func (cw *CacheWatcher) Close() error {
	err := cw.w.Close()
	<-cw.done
	return err
}

// ReloadIfModified consumes the watcher's dirty flag and, if it was set,
// clears the shader cache so the next dispatches recompile against the
// edited templates. Returns whether a reload happened. Call this from the
// thread that owns the manager, between dispatches.
func (m *Manager) ReloadIfModified(cw *CacheWatcher) bool {
	if cw == nil || !cw.dirty.Swap(false) {
		return false
	}
	Logger().Info("compute: templates modified, clearing shader cache")
	m.ClearShaderCache()
	return true
}
