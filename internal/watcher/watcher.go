// Package watcher feeds files dropped into a directory to the
// ingestion service. New and modified files become pending uploads;
// processing is the pump's job.
package watcher

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cartalabs/carta/internal/core/ports/driving"
	"github.com/cartalabs/carta/internal/logger"
)

// debounceWindow suppresses duplicate registrations while a file is
// still being written.
const debounceWindow = 2 * time.Second

// Watcher registers files that appear in one directory into one room.
type Watcher struct {
	dir    string
	roomID string
	ingest driving.Ingestor

	mu   sync.Mutex
	seen map[string]time.Time
}

// New creates a watcher for dir. The directory must exist.
func New(dir, roomID string, ingest driving.Ingestor) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", dir)
	}

	return &Watcher{
		dir:    dir,
		roomID: roomID,
		ingest: ingest,
		seen:   make(map[string]time.Time),
	}, nil
}

// Start registers the files already present, then blocks watching for
// new ones until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.sweepExisting(ctx); err != nil {
		return err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	logger.Info("Watching %s for uploads into room %s", w.dir, w.roomID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.handlePath(ctx, event.Name)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// sweepExisting registers files already sitting in the directory.
func (w *Watcher) sweepExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read watch dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.handlePath(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// handlePath registers one file, debounced. Registration failures are
// logged, not fatal; the watcher keeps running.
func (w *Watcher) handlePath(ctx context.Context, path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return
	}

	if !w.mark(path) {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Read %s: %v", path, err)
		return
	}

	file, err := w.ingest.Register(ctx, w.roomID, name, mimeTypeFor(name), data)
	if err != nil {
		logger.Warn("Register %s: %v", name, err)
		return
	}
	logger.Info("Registered %s as %s", name, file.ID)
}

// mark records a registration attempt and reports whether the path is
// outside its debounce window.
func (w *Watcher) mark(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if last, ok := w.seen[path]; ok && now.Sub(last) < debounceWindow {
		return false
	}
	w.seen[path] = now
	return true
}

// mimeTypeFor infers a MIME type from the file extension.
func mimeTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".text", ".log":
		return "text/plain"
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	return "text/plain"
}
