/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/config"
	"dirpx.dev/implreg/loader"
)

// minTick bounds how often pending reloads are checked.
const minTick = 10 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for watch diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// Watcher re-decodes implementors data files under a root when they change
// and delivers each result to a Context.
type Watcher struct {
	root     string
	ctx      apis.Context
	ld       *loader.Loader
	debounce time.Duration
	log      *zap.Logger
	fsw      *fsnotify.Watcher
}

// New starts watching root and every directory below it. Changes are only
// processed while Run is executing; call Close if Run is never called.
func New(root string, c apis.Context, ld *loader.Loader, cfg apis.Config, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("implreg(watch): %w", err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = config.DefaultDebounce
	}
	w := &Watcher{root: root, ctx: c, ld: ld, debounce: debounce, log: zap.NewNop(), fsw: fsw}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the underlying file watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes file events until ctx is done, then closes the watcher.
// It returns ctx.Err() on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	tick := time.NewTicker(max(w.debounce/2, minTick))
	defer tick.Stop()

	dirty := map[string]time.Time{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev, dirty)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case now := <-tick.C:
			for path, at := range dirty {
				if now.Sub(at) < w.debounce {
					continue
				}
				delete(dirty, path)
				w.reload(path)
			}
		}
	}
}

// handle records data file writes and follows new directories.
func (w *Watcher) handle(ev fsnotify.Event, dirty map[string]time.Time) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.log.Warn("cannot watch new directory", zap.String("dir", ev.Name), zap.Error(err))
			}
			return
		}
	}
	if strings.HasSuffix(ev.Name, ".js") {
		dirty[ev.Name] = time.Now()
	}
}

// reload decodes path and delivers it.
func (w *Watcher) reload(path string) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		w.log.Warn("path outside root", zap.String("path", path), zap.Error(err))
		return
	}
	tr, err := w.ld.LoadFile(path, filepath.ToSlash(rel))
	if err != nil {
		w.log.Warn("reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	out, err := w.ctx.Deliver(tr)
	if err != nil {
		w.log.Warn("deliver failed", zap.String("trait", tr.Trait), zap.Error(err))
		return
	}
	w.log.Info("data file reloaded", zap.String("trait", tr.Trait), zap.Stringer("outcome", out))
}

// addTree watches dir and all directories beneath it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("implreg(watch): add %s: %w", path, err)
		}
		return nil
	})
}
