package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/telemetry/logging"
	"pdx-hq/reqgraph/pkg/telemetry/metrics"
)

// Errors returned by Watch.
var (
	ErrAlreadyRunning = errors.New("watcher already running")
	ErrStopped        = errors.New("watcher stopped")
)

// FileWatcherConfig contains configuration for the file watcher.
type FileWatcherConfig struct {
	// Paths are the directories watched recursively.
	Paths []string

	// Debounce is the quiet period after the last relevant event before the
	// callback runs.
	// Default: 500ms
	Debounce time.Duration

	// Extensions are the file extensions that count as changes.
	// Default: [".txt"]
	Extensions []string

	// IncludeHidden also reports files and directories whose name starts
	// with a dot.
	IncludeHidden bool
}

// FileWatcher watches game directories and reports debounced changes.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *logging.Logger
	metrics  *metrics.Collector
	config   FileWatcherConfig
	debounce *Debouncer

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileWatcher creates a file watcher. logger and collector may be nil.
func NewFileWatcher(cfg FileWatcherConfig, logger *logging.Logger, collector *metrics.Collector) (*FileWatcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("no paths to watch")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = config.DefaultWatchDebounce
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{config.DefaultWatchExtension}
	}
	if logger == nil {
		logger = logging.Nop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  w,
		logger:   logger.WithComponent("watch"),
		metrics:  collector,
		config:   cfg,
		debounce: NewDebouncer(cfg.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, calling onChange after relevant changes settle, until ctx is
// cancelled or Stop is called. A watcher runs at most once.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func()) error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return ErrStopped
	}
	if fw.running {
		fw.mu.Unlock()
		return ErrAlreadyRunning
	}
	fw.running = true
	fw.mu.Unlock()

	defer close(fw.doneCh)

	for _, path := range fw.config.Paths {
		if err := fw.addDirectory(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	fw.logger.Info("File watcher started",
		"paths", fw.config.Paths,
		"debounce_ms", fw.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("File watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			fw.handleEvent(event, onChange)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event, onChange func()) {
	// New directories are followed so later files in them are seen
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.addDirectory(event.Name); err != nil {
				fw.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !fw.shouldProcessEvent(event) {
		return
	}

	op := eventOp(event)
	fw.metrics.RecordFileEvent(op)
	fw.logger.Debug("File event detected", "path", event.Name, "op", op)

	fw.debounce.Trigger(func() {
		fw.logger.Info("Source files changed", "path", event.Name, "op", op)
		onChange()
	})
}

// Stop stops a running watcher and releases its resources.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	running := fw.running
	fw.mu.Unlock()

	close(fw.stopCh)
	if running {
		<-fw.doneCh
	}
	fw.debounce.Stop()

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// addDirectory adds dir and every subdirectory to the watcher.
func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && fw.isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		fw.logger.Debug("Watching directory", "path", path)
		return nil
	})
}

// shouldProcessEvent reports whether an event should trigger a rebuild.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if fw.isHidden(event.Name) {
		return false
	}
	return fw.hasValidExtension(strings.ToLower(filepath.Ext(event.Name)))
}

func (fw *FileWatcher) isHidden(path string) bool {
	return !fw.config.IncludeHidden && strings.HasPrefix(filepath.Base(path), ".")
}

func (fw *FileWatcher) hasValidExtension(ext string) bool {
	for _, valid := range fw.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// eventOp names the most significant operation of an event.
func eventOp(event fsnotify.Event) string {
	switch {
	case event.Has(fsnotify.Create):
		return "create"
	case event.Has(fsnotify.Write):
		return "write"
	case event.Has(fsnotify.Remove):
		return "remove"
	case event.Has(fsnotify.Rename):
		return "rename"
	default:
		return "chmod"
	}
}
