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

package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/codec"
	"dirpx.dev/implreg/config"
	"dirpx.dev/implreg/utils/typepath"
)

// ErrDuplicateTrait is returned when two files under one root map to the
// same trait path.
var ErrDuplicateTrait = errors.New("implreg(loader): duplicate trait")

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// Loader decodes implementors data files into trait registries.
// A Loader is safe for concurrent use.
type Loader struct {
	cfg apis.Config
	log *zap.Logger
}

// New returns a Loader using cfg. Only Workers and Strict are used here.
func New(cfg apis.Config, opts ...Option) *Loader {
	if cfg.Workers < 1 {
		cfg.Workers = config.DefaultWorkers
	}
	l := &Loader{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile decodes the data file at path. rel is the path relative to the
// implementors root and determines the trait.
func (l *Loader) LoadFile(path, rel string) (apis.TraitRegistry, error) {
	trait, err := typepath.FromFile(rel)
	if err != nil {
		return apis.TraitRegistry{}, fmt.Errorf("implreg(loader): %s: %w", rel, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return apis.TraitRegistry{}, fmt.Errorf("implreg(loader): %w", err)
	}
	defer f.Close()

	reg, err := codec.Decode(f, codec.WithStrict(l.cfg.Strict))
	if err != nil {
		return apis.TraitRegistry{}, fmt.Errorf("%s: %w", rel, err)
	}
	l.log.Debug("data file decoded",
		zap.String("trait", trait),
		zap.Int("libraries", reg.Len()),
		zap.Int("descriptors", reg.Count()))
	return apis.TraitRegistry{Registry: reg, Trait: trait}, nil
}

// Files returns the data files under root as paths relative to root,
// in lexical order.
func Files(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".js") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("implreg(loader): walk %s: %w", root, err)
	}
	return out, nil
}

// Load decodes every data file under root, at most cfg.Workers at a time.
// Results are sorted by trait path. The first error cancels the rest.
func (l *Loader) Load(ctx context.Context, root string) ([]apis.TraitRegistry, error) {
	files, err := Files(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		l.log.Warn("no data files found", zap.String("root", root))
		return nil, nil
	}

	out := make([]apis.TraitRegistry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Workers)
	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tr, err := l.LoadFile(filepath.Join(root, filepath.FromSlash(rel)), rel)
			if err != nil {
				return err
			}
			out[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b apis.TraitRegistry) int { return strings.Compare(a.Trait, b.Trait) })
	for i := 1; i < len(out); i++ {
		if out[i].Trait == out[i-1].Trait {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTrait, out[i].Trait)
		}
	}

	l.log.Info("implementors loaded", zap.String("root", root), zap.Int("traits", len(out)))
	return out, nil
}

// LoadAndDeliver loads root and delivers each trait registry to c in trait
// order. It returns the delivery outcomes in the same order.
func (l *Loader) LoadAndDeliver(ctx context.Context, root string, c apis.Context) ([]apis.Outcome, error) {
	trs, err := l.Load(ctx, root)
	if err != nil {
		return nil, err
	}
	outcomes := make([]apis.Outcome, 0, len(trs))
	for _, tr := range trs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		out, err := c.Deliver(tr)
		if err != nil {
			return outcomes, fmt.Errorf("implreg(loader): deliver %s: %w", tr.Trait, err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
