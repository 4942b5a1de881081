package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/check-circular-import/pkg/logging"
	"github.com/ritzau/check-circular-import/pkg/pyimport"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	// ChangeTypeSource is a .py file created, written, removed or renamed.
	ChangeTypeSource ChangeType = iota
	// ChangeTypeDirectory is a new directory, which may hold files that
	// produced no events of their own (e.g. a package moved in).
	ChangeTypeDirectory
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeSource:
		return "source"
	case ChangeTypeDirectory:
		return "directory"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// DirectoryLister lists the directories worth watching below a root.
type DirectoryLister interface {
	Directories(root string) []string
	Ignored(name string) bool
}

const batchWindow = 100 * time.Millisecond

// FileWatcher watches a Python project for source changes
type FileWatcher struct {
	watcher *fsnotify.Watcher
	root    string
	dirs    DirectoryLister
	events  chan ChangeEvent
}

// NewFileWatcher creates a file system watcher for the project at root.
func NewFileWatcher(root string, dirs DirectoryLister) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		root:    root,
		dirs:    dirs,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start watches every non-ignored directory below root and processes
// events until ctx is done or Stop is called.
func (fw *FileWatcher) Start(ctx context.Context) error {
	n := fw.watchTree(fw.root)
	if n == 0 {
		fw.watcher.Close()
		close(fw.events)
		return fmt.Errorf("no directories to watch below %s", fw.root)
	}

	logging.Info("started watching project", "path", fw.root, "directories", n)

	go fw.processEvents(ctx)

	return nil
}

// watchTree adds dir and its non-ignored subdirectories, returning how
// many were added.
func (fw *FileWatcher) watchTree(dir string) int {
	added := 0
	for _, d := range fw.dirs.Directories(dir) {
		if err := fw.watcher.Add(d); err != nil {
			logging.Warn("failed to watch directory", "path", d, "error", err)
			continue
		}
		added++
	}
	return added
}

// classify maps an fsnotify event to a change type. Events for files that
// cannot change the import graph are dropped.
func (fw *FileWatcher) classify(event fsnotify.Event) (ChangeType, bool) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if fw.dirs.Ignored(filepath.Base(event.Name)) {
				return 0, false
			}
			return ChangeTypeDirectory, true
		}
	}

	if !strings.HasSuffix(event.Name, pyimport.SourceExt) {
		return 0, false
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return 0, false
	}
	return ChangeTypeSource, true
}

// processEvents batches file system events by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	batches := make(map[ChangeType][]string)

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() bool {
		for _, t := range []ChangeType{ChangeTypeDirectory, ChangeTypeSource} {
			paths := batches[t]
			if len(paths) == 0 {
				continue
			}
			select {
			case fw.events <- ChangeEvent{Type: t, Paths: paths, Timestamp: time.Now()}:
			case <-ctx.Done():
				return false
			}
			delete(batches, t)
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			t, relevant := fw.classify(event)
			if !relevant {
				continue
			}
			logging.Trace("file change", "path", event.Name, "op", event.Op.String(), "type", t.String())

			if t == ChangeTypeDirectory {
				fw.watchTree(event.Name)
			}
			batches[t] = append(batches[t], event.Name)
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			if !flush() {
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	return fw.watcher.Close()
}
