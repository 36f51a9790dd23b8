// Package watch regenerates packages when their Go sources change.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long changes must settle before a rebuild.
const DefaultDebounce = 150 * time.Millisecond

// Handler rebuilds the given directories. Errors are logged and watching
// continues.
type Handler func(ctx context.Context, dirs []string) error

// Options configure a Watcher.
type Options struct {
	Debounce time.Duration
	// OutputSuffix identifies generated files; changes to them are ignored so
	// a rebuild never triggers itself.
	OutputSuffix string
	Logger       *zap.Logger
}

// Watcher monitors package directories for source changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	dirs    []string
	handler Handler
	opts    Options
	log     *zap.Logger

	// pending is only touched by the Run goroutine.
	pending map[string]bool
}

// New creates a watcher over dirs.
func New(dirs []string, handler Handler, opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	w := &Watcher{
		watcher: fsWatcher,
		handler: handler,
		opts:    opts,
		log:     log,
		pending: make(map[string]bool),
	}
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		if err := fsWatcher.Add(abs); err != nil {
			fsWatcher.Close()
			return nil, err
		}
		w.dirs = append(w.dirs, abs)
		log.Info("watching", zap.String("dir", abs))
	}
	return w, nil
}

// Run processes events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change", zap.String("file", event.Name), zap.Stringer("op", event.Op))

			w.pending[filepath.Dir(event.Name)] = true
			timer.Reset(w.opts.Debounce)

		case <-timer.C:
			dirs := w.drain()
			if len(dirs) == 0 {
				continue
			}
			if err := w.handler(ctx, dirs); err != nil {
				w.log.Error("rebuild failed", zap.Strings("dirs", dirs), zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return Relevant(event.Name, w.opts.OutputSuffix)
}

// Relevant reports whether a change to name can affect generated output.
func Relevant(name, outputSuffix string) bool {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, ".go") || strings.HasPrefix(base, ".") {
		return false
	}
	if strings.HasSuffix(base, "_test.go") {
		return false
	}
	return outputSuffix == "" || !strings.HasSuffix(base, outputSuffix)
}

func (w *Watcher) drain() []string {
	dirs := make([]string, 0, len(w.pending))
	for dir := range w.pending {
		dirs = append(dirs, dir)
	}
	clear(w.pending)
	sort.Strings(dirs)
	return dirs
}
