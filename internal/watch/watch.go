// Package watch rebuilds the project whenever its source files change.
package watch

import (
	"cmp"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bundlectl/bundlectl/internal/builder"
	"github.com/bundlectl/bundlectl/internal/config"
	"github.com/bundlectl/bundlectl/internal/logging"
	"github.com/bundlectl/bundlectl/internal/metrics"
	"github.com/bundlectl/bundlectl/internal/pool"
	"github.com/bundlectl/bundlectl/internal/progress"
)

const buildJob = "build"

var (
	defaultDebounce = 250 * time.Millisecond

	// parkInterval is the deadline returned between triggers; effectively
	// "do not run again until a file changes".
	parkInterval = 365 * 24 * time.Hour
)

// Watcher drives sequential rebuilds from filesystem events. Builds run
// through a single-worker pool, so at most one build is in flight and a burst
// of events coalesces into one rebuild.
type Watcher struct {
	build    *config.Build
	watch    *config.Watch
	log      *logging.Logger
	bar      *progress.Bar
	onResult func(*builder.Result, error)
}

func New(build *config.Build, watch *config.Watch) *Watcher {
	return &Watcher{
		build: build,
		watch: watch,
		log:   logging.NewLogger(logging.Config{Level: logging.LogLevelError}),
		bar:   progress.New(false, ""),
	}
}

func (w *Watcher) WithLogger(log *logging.Logger) *Watcher {
	w.log = log
	return w
}

func (w *Watcher) WithProgress(bar *progress.Bar) *Watcher {
	w.bar = bar
	return w
}

// WithOnResult registers a hook invoked after every build attempt.
func (w *Watcher) WithOnResult(fn func(*builder.Result, error)) *Watcher {
	w.onResult = fn
	return w
}

// Run builds once, then blocks rebuilding on changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer notify.Close()

	for _, path := range w.paths() {
		if err := addRecursive(notify, path); err != nil {
			return err
		}
	}

	p := pool.New(1)
	p.Add(buildJob, w.execute)

	debounce := defaultDebounce
	if w.watch != nil {
		debounce = cmp.Or(time.Duration(w.watch.Debounce), defaultDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-notify.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			if w.inOutputDir(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := addRecursive(notify, event.Name); err != nil {
						w.log.Warnf("failed to watch new directory %q: %v", event.Name, err)
					}
				}
			}
			w.log.Debugf("change detected: %s", event)
			if err := p.TriggerAfter(buildJob, debounce); err != nil {
				w.log.Warnf("failed to schedule rebuild: %v", err)
			}
		case err, ok := <-notify.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("watch error: %v", err)
		}
	}
}

// execute runs one build pass; failures are reported and watched over, never
// fatal to the loop.
func (w *Watcher) execute(ctx context.Context) time.Time {
	startTime := time.Now()

	result, err := builder.New().
		WithConfig(w.build).
		WithLogger(w.log).
		WithProgress(w.bar).
		Build(ctx)

	if err != nil {
		metrics.BuildFailure(w.build.Name, builder.ErrorKind(err))
		w.log.Warnf("build failed: %v", err)
	} else {
		metrics.BuildSucceeded(w.build.Name, startTime)
		metrics.EmittedAssets.WithLabelValues(w.build.Name).Set(float64(len(result.Assets)))
		metrics.EmittedBytes.WithLabelValues(w.build.Name).Set(float64(result.TotalBytes()))
		w.log.Infof("built %d assets in %v", len(result.Assets), time.Since(startTime).Round(time.Millisecond))
	}

	if w.onResult != nil {
		w.onResult(result, err)
	}

	return time.Now().Add(parkInterval)
}

// paths returns the configured watch roots, defaulting to the entry's
// directory.
func (w *Watcher) paths() []string {
	if w.watch != nil && len(w.watch.Paths) > 0 {
		return w.watch.Paths
	}
	return []string{filepath.Dir(w.build.Entry)}
}

func (w *Watcher) inOutputDir(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(w.build.Output.Dir, abs)
	return err == nil && !strings.HasPrefix(rel, "..")
}

func addRecursive(notify *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return notify.Add(path)
		}
		return nil
	})
}
