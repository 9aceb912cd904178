package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/s0up4200/umzug/config"
	"github.com/s0up4200/umzug/filter"
	"github.com/s0up4200/umzug/umzug"
)

var stdout io.Writer = os.Stdout

// newFilterCompiler builds the compiler shared by all commands of a run
func newFilterCompiler(cfg *config.Config) *filter.Compiler {
	return filter.NewCompiler(filter.WithPresets(cfg.Filter.Presets), filter.WithCache(16))
}

// addFilterFlags registers --filter and --preset on a list command
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression, e.g. 'contains(Title, \"kitchen\")'")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}

// compileFilter compiles the filter given on the command line. It returns
// nil when no filter was requested.
func compileFilter() (*filter.Filter, error) {
	switch {
	case filterExpr != "":
		f, err := filters.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	case preset != "":
		f, err := filters.CompileNamed(preset)
		if err != nil {
			return nil, fmt.Errorf("invalid preset %q: %w", preset, err)
		}
		return f, nil
	}
	return nil, nil
}

// applyFilter narrows values to those matching the command-line filter
func applyFilter[T any](values []T, record func(T) filter.Record) ([]T, error) {
	f, err := compileFilter()
	if err != nil || f == nil {
		return values, err
	}
	logger.Debug().Str("filter", f.Expression()).Msg("Filtering results")
	return filter.Select(f, values, record), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(header ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row(header))
	return tw
}

func renderBoxes(boxes []umzug.Box) error {
	if jsonOutput {
		return printJSON(boxes)
	}
	if len(boxes) == 0 {
		fmt.Fprintln(stdout, "No boxes found.")
		return nil
	}

	tw := newTable("ID", "Title", "Items", "Amount")
	for _, b := range boxes {
		tw.AppendRow(table.Row{b.ID, b.Title, itemTitles(b.Packings), umzug.TotalAmount(b.Packings)})
	}
	tw.Render()
	return nil
}

func renderItems(items []umzug.Item) error {
	if jsonOutput {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(stdout, "No items found.")
		return nil
	}

	tw := newTable("ID", "Title", "Priority", "Boxes", "Amount")
	for _, i := range items {
		tw.AppendRow(table.Row{i.ID, i.Title, i.PriorityLabel(), boxTitles(i.Packings), umzug.TotalAmount(i.Packings)})
	}
	tw.Render()
	return nil
}

func renderPackings(packings []umzug.Packing) error {
	if jsonOutput {
		return printJSON(packings)
	}
	if len(packings) == 0 {
		fmt.Fprintln(stdout, "No packings found.")
		return nil
	}

	tw := newTable("ID", "Item", "Box", "Amount", "Priority")
	for _, p := range packings {
		tw.AppendRow(table.Row{p.ID, p.Item.Title, p.Box.Title, p.Amount, p.Item.PriorityLabel()})
	}
	tw.Render()
	return nil
}

func itemTitles(packings []umzug.Packing) string {
	titles := make([]string, 0, len(packings))
	for _, p := range packings {
		titles = append(titles, p.Item.Title)
	}
	return strings.Join(titles, ", ")
}

func boxTitles(packings []umzug.Packing) string {
	titles := make([]string, 0, len(packings))
	for _, p := range packings {
		titles = append(titles, p.Box.Title)
	}
	return strings.Join(titles, ", ")
}
