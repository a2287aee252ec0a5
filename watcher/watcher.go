// Package watcher reports files appearing in a local directory, in debounced batches.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	set "github.com/deckarep/golang-set/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/m-manu/picstream/logging"
)

// Options control what is watched
type Options struct {
	Recursive bool
	Excluded  set.Set[string] // base names of files and directories to ignore
	// Debounce is how long files must stay quiet before they are handed over
	Debounce time.Duration
}

// Handler receives files that appeared or changed, sorted by path
type Handler func(ctx context.Context, paths []string)

// Watcher monitors a directory for new files
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	opts    Options
	log     *logging.Logger
	pending set.Set[string]
}

// New creates a new file system watcher on root
func New(root string, opts Options, log *logging.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Excluded == nil {
		opts.Excluded = set.NewThreadUnsafeSet[string]()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = time.Second
	}
	return &Watcher{
		watcher: w,
		root:    root,
		opts:    opts,
		log:     log,
		pending: set.NewThreadUnsafeSet[string](),
	}, nil
}

// Run watches until ctx is done. handle is called from Run's goroutine, so
// events arriving while it runs are handed over in the next batch.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.watcher.Close()
	if err := w.addTree(w.root); err != nil {
		return err
	}
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				fire = time.After(w.opts.Debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("watcher error: %v", err)
		case <-fire:
			fire = nil
			if w.pending.Cardinality() == 0 {
				continue
			}
			paths := w.pending.ToSlice()
			w.pending.Clear()
			sort.Strings(paths)
			w.log.Debugf("%d new files in %s", len(paths), w.root)
			handle(ctx, paths)
		}
	}
}

// handleEvent updates the pending files; it returns true when the debounce timer should restart
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if w.ignored(event.Name) {
		return false
	}
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			return false
		}
		if info.IsDir() {
			if event.Has(fsnotify.Create) && w.opts.Recursive {
				if err := w.addTree(event.Name); err != nil {
					w.log.Warnf("cannot watch %s: %v", event.Name, err)
				}
			}
			return false
		}
		if !info.Mode().IsRegular() {
			return false
		}
		w.pending.Add(event.Name)
		return true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.pending.Remove(event.Name)
		return false
	default:
		return false
	}
}

func (w *Watcher) ignored(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") || w.opts.Excluded.Contains(name)
}

func (w *Watcher) addTree(dirPath string) error {
	if !w.opts.Recursive {
		return w.watcher.Add(dirPath)
	}
	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dirPath && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.Warnf("cannot watch %s: %v", path, err)
		}
		return nil
	})
}
