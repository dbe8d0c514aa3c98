// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch converts files as they appear in a directory. Each new
// supported file becomes a batch of one; batches run strictly one at a time.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/pdiddy/docpdf/internal/batch"
	"github.com/pdiddy/docpdf/internal/convert"
	"github.com/pdiddy/docpdf/pkg/types"
)

// DefaultSettle is how long a file must stay unchanged before it is
// converted.
const DefaultSettle = time.Second

// BatchRunner runs one batch synchronously. *batch.Orchestrator implements it.
type BatchRunner interface {
	Run(ctx context.Context, paths []string, opts types.BatchOptions, events chan<- batch.Event) batch.Summary
}

// Watcher feeds new files in a directory to a BatchRunner.
type Watcher struct {
	dir    string
	runner BatchRunner
	opts   types.BatchOptions
	log    zerolog.Logger
	settle time.Duration

	pending map[string]time.Time
	done    map[string]time.Time
}

// New creates a Watcher for dir. Converted files go to opts.TargetDir.
func New(dir string, runner BatchRunner, opts types.BatchOptions, log zerolog.Logger) *Watcher {
	return &Watcher{
		dir:     dir,
		runner:  runner,
		opts:    opts,
		log:     log,
		settle:  DefaultSettle,
		pending: make(map[string]time.Time),
		done:    make(map[string]time.Time),
	}
}

// SetSettle changes the quiet period a file needs before conversion.
func (w *Watcher) SetSettle(d time.Duration) {
	w.settle = d
}

// Run watches until ctx is canceled. onBatch, when non-nil, is called with
// the summary of every finished batch.
func (w *Watcher) Run(ctx context.Context, onBatch func(batch.Summary)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.log.Info().Str("dir", w.dir).Str("target", w.opts.TargetDir).Msg("watching for new files")

	interval := w.settle / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.pending[ev.Name] = time.Now()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Str("dir", w.dir).Msg("watch error")
		case now := <-tick.C:
			for _, path := range w.ready(now) {
				if ctx.Err() != nil {
					return nil
				}
				sum := w.runner.Run(ctx, []string{path}, w.opts, nil)
				if onBatch != nil {
					onBatch(sum)
				}
			}
		}
	}
}

// relevant reports whether ev announces a regular, visible, supported file
// that may need converting.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	if !convert.Supported(ev.Name) {
		return false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return true
}

// ready removes and returns the pending files that have been quiet for the
// settle period, in name order. A file already converted at its current
// modification time is dropped.
func (w *Watcher) ready(now time.Time) []string {
	var paths []string
	for path, seen := range w.pending {
		if now.Sub(seen) < w.settle {
			continue
		}
		delete(w.pending, path)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if last, ok := w.done[path]; ok && last.Equal(info.ModTime()) {
			continue
		}
		w.done[path] = info.ModTime()
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
