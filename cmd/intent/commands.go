package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	intent "github.com/reoring/intent"
	"github.com/reoring/intent/document"
	"github.com/reoring/intent/resolve"
)

func newEncodeCommand(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "encode [FILE]",
		Short: "Encode a descriptor document into the configured output format",
		Example: `  intent encode view.yaml -o uri
  intent encode -o binary --base64 < view.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.readDescriptor(cmd.Context(), argOrStdin(args, 0), from)
			if err != nil {
				return err
			}
			return a.writeDescriptor(cmd.Context(), d, a.cfg.Output)
		},
	}
	cmd.Flags().StringVar(&from, "from", formatAuto, "input format: auto, yaml or json")
	return cmd
}

func newDecodeCommand(a *app) *cobra.Command {
	var (
		from    string
		to      string
		summary bool
	)
	cmd := &cobra.Command{
		Use:   "decode [FILE]",
		Short: "Decode a URI or binary descriptor into a readable document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.readDescriptor(cmd.Context(), argOrStdin(args, 0), from)
			if err != nil {
				return err
			}
			if summary {
				_, err = fmt.Fprintln(a.out, d.String())
				return err
			}
			f, ok := document.ParseFormat(to)
			if !ok {
				return fmt.Errorf("--to: unknown document format %q", to)
			}
			return a.writeDescriptor(cmd.Context(), d, string(f))
		},
	}
	cmd.Flags().StringVar(&from, "from", formatAuto, "input format: auto, uri, binary, yaml or json")
	cmd.Flags().StringVar(&to, "to", formatYAML, "document format: yaml or json")
	cmd.Flags().BoolVar(&summary, "summary", false, "print the one-line summary instead of a document")
	return cmd
}

func newFillInCommand(a *app) *cobra.Command {
	var override string
	cmd := &cobra.Command{
		Use:   "fill-in DST SRC",
		Short: "Fill gaps in DST from SRC and print the merged descriptor",
		Long: `fill-in copies every field SRC has and DST lacks into DST. Fields named by
--override (e.g. ACTION|DATA) are copied even when DST already has them.
The changed fields are logged at info level.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, ok := intent.ParseFillInMask(override)
			if !ok {
				return fmt.Errorf("--override: unknown field in %q", override)
			}
			ctx := cmd.Context()
			dst, err := a.readDescriptor(ctx, args[0], formatAuto)
			if err != nil {
				return err
			}
			src, err := a.readDescriptor(ctx, args[1], formatAuto)
			if err != nil {
				return err
			}
			changed := dst.FillIn(src, mask)
			a.log.Info("filled in", "changed", changed.String(), "override", mask.String())
			return a.writeDescriptor(ctx, dst, a.cfg.Output)
		},
	}
	cmd.Flags().StringVar(&override, "override", "", "fields to override, joined by '|'")
	return cmd
}

func newFilterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "filter FILE...",
		Short: "Print filter hashes and group filter-equal descriptors",
		Long: `filter prints the filter hash of every input followed by the number of
distinct descriptors under filter equivalence. Extras, flags, source bounds
and selectors do not take part in the comparison.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var set intent.FilterSet
			for _, p := range args {
				d, err := a.readDescriptor(cmd.Context(), p, formatAuto)
				if err != nil {
					return err
				}
				dup := !set.Add(d)
				fmt.Fprintf(a.out, "%08x  %s", d.FilterHashCode(), p)
				if dup {
					fmt.Fprint(a.out, "  (duplicate)")
				}
				fmt.Fprintln(a.out)
			}
			_, err := fmt.Fprintf(a.out, "distinct: %d of %d\n", set.Len(), len(args))
			return err
		},
	}
}

// route is one entry of a resolve table.
type route struct {
	Component string            `yaml:"component"`
	Match     document.Document `yaml:"match"`
}

type routeTable struct {
	routes []*intent.Descriptor
	comps  []intent.ComponentName
}

func loadRoutes(b []byte) (*routeTable, error) {
	var raw []route
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("resolve table: %w", err)
	}
	t := &routeTable{}
	for i, r := range raw {
		comp, ok := intent.UnflattenComponentName(r.Component)
		if !ok {
			return nil, fmt.Errorf("resolve table[%d]: bad component %q", i, r.Component)
		}
		d, err := r.Match.Descriptor()
		if err != nil {
			return nil, fmt.Errorf("resolve table[%d]: %w", i, err)
		}
		t.routes = append(t.routes, d)
		t.comps = append(t.comps, comp)
	}
	return t, nil
}

// Resolve returns the component of the first route filter-equal to d.
func (t *routeTable) Resolve(_ context.Context, d *intent.Descriptor) (intent.ComponentName, error) {
	for i, r := range t.routes {
		if intent.FilterEquals(r, d) {
			return t.comps[i], nil
		}
	}
	return intent.ComponentName{}, intent.ErrUnresolved
}

func newResolveCommand(a *app) *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "resolve --table FILE DESCRIPTOR...",
		Short: "Resolve descriptors to components through a route table",
		Long: `resolve looks up each descriptor in a YAML route table of
{component, match} entries. A route applies when its match document is
filter-equal to the descriptor; descriptors naming a component resolve to it
directly. Lookups go through the filter cache sized by $INTENT_RESOLVE_CACHE.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.readInput(table)
			if err != nil {
				return err
			}
			routes, err := loadRoutes(b)
			if err != nil {
				return err
			}
			cache, err := resolve.NewCache(routes, a.cfg.ResolveCacheSize)
			if err != nil {
				return err
			}
			for _, p := range args {
				d, err := a.readDescriptor(cmd.Context(), p, formatAuto)
				if err != nil {
					return err
				}
				comp, err := cache.Resolve(cmd.Context(), d)
				if err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
				fmt.Fprintf(a.out, "%s\t%s\n", p, comp.FlattenShort())
			}
			hits, misses := cache.Stats()
			a.log.Debug("resolve cache", "hits", hits, "misses", misses, "entries", cache.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "YAML route table")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func argOrStdin(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return "-"
}
