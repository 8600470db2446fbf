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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/builder"
	"dirpx.dev/implreg/codec"
	"dirpx.dev/implreg/handshake"
	"dirpx.dev/implreg/index"
	"dirpx.dev/implreg/loader"
	"dirpx.dev/implreg/registry"
	"dirpx.dev/implreg/resolver"
	"dirpx.dev/implreg/schema"
	"dirpx.dev/implreg/watch"
)

// newContext builds a registration context with a's config and logger.
func (a *app) newContext() apis.Context {
	return builder.New(handshake.WithLogger(a.logger)).BuildContext(a.cfg, nil, nil)
}

func (a *app) newLoader() *loader.Loader {
	return loader.New(a.cfg, loader.WithLogger(a.logger))
}

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <root>",
		Short: "Load an implementors tree and summarise each trait",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.newContext()
			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TRAIT\tLIBRARIES\tIMPLEMENTORS")
			if err := c.Register(func(reg apis.Registry) {
				if tr, ok := reg.(apis.TraitRegistry); ok {
					fmt.Fprintf(tw, "%s\t%d\t%d\n", tr.Trait, tr.Len(), tr.Count())
				}
			}); err != nil {
				return err
			}
			if _, err := a.newLoader().LoadAndDeliver(cmd.Context(), args[0], c); err != nil {
				return err
			}
			return tw.Flush()
		},
	}
}

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <root> <trait|type|name|library>",
		Short: "Find implementations by trait, type path, type name or library",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trs, err := a.newLoader().Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			hits := resolver.Default().Resolve(args[1], index.Build(trs))
			if len(hits) == 0 {
				return fmt.Errorf("no match for %q", args[1])
			}
			return printHits(cmd.OutOrStdout(), hits)
		},
	}
}

func printHits(w io.Writer, hits []apis.Hit) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRAIT\tLIBRARY\tTYPES")
	for _, h := range hits {
		fmt.Fprintf(tw, "%s\t%s\t%v\n", h.Trait, h.Library, h.Descriptor.Types)
	}
	return tw.Flush()
}

func newEncodeCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Re-encode a data file (or JSON registry) in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			reg, err := codec.Decode(f, codec.WithStrict(a.cfg.Strict))
			if err != nil {
				return err
			}
			a.logger.Debug("decoded", zap.String("file", args[0]), zap.Int("libraries", reg.Len()))

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := registry.MarshalValue(reg)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			return codec.Encode(out, reg)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write a JSON object instead of the data-file form")
	return cmd
}

func newSchemaCmd(_ *app) *cobra.Command {
	var asRegistry bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a descriptor (or a registry)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := schema.Descriptor
			if asRegistry {
				gen = schema.Registry
			}
			data, err := gen()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&asRegistry, "registry", false, "print the registry schema")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <root>",
		Short: "Load a tree, then re-deliver data files as they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			c := a.newContext()
			out := cmd.OutOrStdout()
			if err := c.Register(func(reg apis.Registry) {
				if tr, ok := reg.(apis.TraitRegistry); ok {
					fmt.Fprintf(out, "%s: %d libraries, %d implementors\n", tr.Trait, tr.Len(), tr.Count())
				}
			}); err != nil {
				return err
			}

			ld := a.newLoader()
			if _, err := ld.LoadAndDeliver(ctx, args[0], c); err != nil {
				return err
			}
			w, err := watch.New(args[0], c, ld, a.cfg, watch.WithLogger(a.logger))
			if err != nil {
				return err
			}
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
