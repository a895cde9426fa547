// Package format writes run reports, interval listings and assignment
// statistics as tables, plain tab-separated text, JSON or JSON lines.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
)

// Options controls how a listing is written.
type Options struct {
	// Format is one of table, plain, json or jsonl. Empty means table.
	Format string
	// Header prints the column header line in table and plain output.
	Header bool
	// Color enables ANSI colours in the table status column.
	Color bool
	// Width caps free-text columns in table and plain output; 0 means unlimited.
	Width int
}

func (o Options) mode() (string, error) {
	mode := strings.ToLower(o.Format)
	switch mode {
	case "":
		return "table", nil
	case "table", "plain", "json", "jsonl":
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", o.Format)
	}
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	tw.Style().Format.Footer = text.FormatDefault
	return tw
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONL[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func writePlain(w io.Writer, header string, lines []string, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// clip shortens text to width display cells, ending with "...".
func clip(text string, width int) string {
	text = strings.ReplaceAll(text, "\n", "\\n")
	text = strings.ReplaceAll(text, "\t", " ")
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "...")
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
