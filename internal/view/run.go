// Package view prints pipeline results on a terminal or into a file,
// choosing colours and column widths from the output device.
package view

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"gazemap/internal/assign"
	"gazemap/internal/format"
	"gazemap/internal/interval"
	"gazemap/internal/model"
	"gazemap/internal/pipeline"
)

// Options defines the configurable parameters for printing a listing.
type Options struct {
	Format       string
	NoHeader     bool
	Width        int
	ForceColor   bool
	ForceNoColor bool
	Out          io.Writer
	OutFile      *os.File
}

func (o Options) formatOptions() format.Options {
	return format.Options{
		Format: o.Format,
		Header: !o.NoHeader,
		Color:  resolveColorChoice(o),
		Width:  determineWidth(o.OutFile, o.Width),
	}
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// Report prints a run report.
func Report(opts Options, r *pipeline.Report) error {
	return format.WriteReport(opts.out(), r, opts.formatOptions())
}

// Intervals prints an interval listing.
func Intervals(opts Options, intervals []model.StimulusInterval, issues []interval.Issue) error {
	return format.WriteIntervals(opts.out(), intervals, issues, opts.formatOptions())
}

// Assignment prints assignment statistics for one participant.
func Assignment(opts Options, participant string, stats assign.Stats) error {
	return format.WriteAssignment(opts.out(), participant, stats, opts.formatOptions())
}

// Warnings prints one "warning: ..." line per entry.
func Warnings(out io.Writer, warnings []error, forceColor, forceNoColor bool) {
	useColor := resolveColorChoice(Options{Out: out, ForceColor: forceColor, ForceNoColor: forceNoColor})
	for _, w := range warnings {
		fmt.Fprintf(out, "%s %v\n", colorize(useColor, ansiWarning, "warning:"), w)
	}
}

func determineWidth(out *os.File, width int) int {
	if width > 0 {
		return width
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

const (
	ansiReset   = "\x1b[0m"
	ansiWarning = "\x1b[38;5;214m"
)

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.out())
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Canvases prints discovered stimulus images.
func Canvases(opts Options, canvases []model.Canvas) error {
	return format.WriteCanvases(opts.out(), canvases, opts.formatOptions())
}
