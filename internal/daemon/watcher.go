package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors produce on save.
const DefaultDebounce = 250 * time.Millisecond

// ConfigWatcher triggers a reload when a configuration file changes.
// Directories are watched rather than files so that editors replacing a file
// by rename are still seen.
type ConfigWatcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	logger   *slog.Logger

	mu    sync.Mutex
	dirs  map[string]struct{}
	files map[string]struct{}
}

// NewConfigWatcher watches the directories holding files. onChange runs on
// the watcher goroutine.
func NewConfigWatcher(files []string, debounce time.Duration, onChange func(), logger *slog.Logger) (*ConfigWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &ConfigWatcher{
		fs:       fs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		dirs:     make(map[string]struct{}),
		files:    make(map[string]struct{}),
	}
	w.SetFiles(files)
	return w, nil
}

// SetFiles replaces the set of files that trigger a reload, adding watches
// for directories not seen before. Include lists can change on reload.
func (w *ConfigWatcher) SetFiles(files []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = make(map[string]struct{}, len(files))
	for _, f := range files {
		clean := filepath.Clean(f)
		w.files[clean] = struct{}{}
		dir := filepath.Dir(clean)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			w.logger.Warn("cannot watch config directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = struct{}{}
	}
}

// relevant reports whether an event path should trigger a reload: any file
// already in the set, or a new YAML file in an include directory.
func (w *ConfigWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(ev.Name)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[name]; ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return (ext == ".yaml" || ext == ".yml") && ev.Has(fsnotify.Create)
}

// Run delivers debounced change notifications until ctx is cancelled.
func (w *ConfigWatcher) Run(ctx context.Context) {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("config file changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-timer.C:
			w.onChange()
		}
	}
}
