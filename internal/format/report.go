package format

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gazemap/internal/assign"
	"gazemap/internal/interval"
	"gazemap/internal/pipeline"
)

// StimulusRow is the serialized form of one stimulus outcome.
type StimulusRow struct {
	StimulusID int       `json:"stimulus_id"`
	Status     string    `json:"status"`
	Interval   []float64 `json:"interval,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Assigned   int       `json:"assigned"`
	Kept       int       `json:"kept"`
	Sampled    int       `json:"sampled"`
	Aggregated int       `json:"aggregated"`
	Output     string    `json:"output,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// ReportDoc is the serialized form of a run report.
type ReportDoc struct {
	RunID          string           `json:"run_id"`
	Participant    string           `json:"participant"`
	Mode           string           `json:"mode"`
	Movement       string           `json:"movement"`
	Intervals      int              `json:"intervals"`
	DroppedMarkers int              `json:"dropped_markers"`
	Issues         []interval.Issue `json:"issues"`
	Assignment     AssignmentDoc    `json:"assignment"`
	Stimuli        []StimulusRow    `json:"stimuli"`
	Warnings       []string         `json:"warnings"`
}

// NewReportDoc flattens r for serialization.
func NewReportDoc(r *pipeline.Report) ReportDoc {
	doc := ReportDoc{
		RunID:          r.RunID,
		Participant:    r.Participant,
		Mode:           string(r.Mode),
		Movement:       string(r.Movement),
		Intervals:      len(r.Intervals),
		DroppedMarkers: r.DroppedMarkers,
		Issues:         r.Issues,
		Assignment:     NewAssignmentDoc(r.Assignment),
		Stimuli:        make([]StimulusRow, 0, len(r.Stimuli)),
		Warnings:       make([]string, 0, len(r.Warnings)),
	}
	if doc.Issues == nil {
		doc.Issues = []interval.Issue{}
	}
	for _, s := range r.Stimuli {
		doc.Stimuli = append(doc.Stimuli, newStimulusRow(s))
	}
	for _, w := range r.Warnings {
		doc.Warnings = append(doc.Warnings, w.Error())
	}
	return doc
}

func newStimulusRow(s pipeline.StimulusResult) StimulusRow {
	row := StimulusRow{
		StimulusID: s.StimulusID,
		Status:     "ok",
		Width:      s.Canvas.Width,
		Height:     s.Canvas.Height,
		Assigned:   s.Assigned,
		Kept:       s.Kept,
		Sampled:    s.Sampled,
		Output:     s.Output,
		Reason:     string(s.Skip),
		Detail:     s.Detail,
	}
	if s.HasInterval {
		row.Interval = []float64{s.Interval.Start, s.Interval.End}
	}
	if s.Result != nil && !s.Skipped() {
		row.Aggregated = s.Result.Len()
	}
	if s.Skipped() {
		row.Status = "skipped"
	}
	return row
}

// WriteReport writes r in the requested format.
func WriteReport(w io.Writer, r *pipeline.Report, opts Options) error {
	mode, err := opts.mode()
	if err != nil {
		return err
	}
	doc := NewReportDoc(r)
	switch mode {
	case "json":
		return writeJSON(w, doc)
	case "jsonl":
		return writeJSONL(w, doc.Stimuli)
	case "plain":
		return writeReportPlain(w, doc, opts)
	default:
		return writeReportTable(w, doc, opts)
	}
}

func writeReportPlain(w io.Writer, doc ReportDoc, opts Options) error {
	lines := make([]string, 0, len(doc.Stimuli))
	for _, s := range doc.Stimuli {
		lines = append(lines, fmt.Sprintf("%d\t%s\t%s\t%d\t%d\t%d\t%d\t%s",
			s.StimulusID,
			s.Status,
			intervalText(s.Interval),
			s.Assigned,
			s.Kept,
			s.Sampled,
			s.Aggregated,
			clip(outcomeText(s), opts.Width),
		))
	}
	return writePlain(w, "question\tstatus\tinterval\tassigned\tkept\tsampled\taggregated\toutput", lines, opts.Header)
}

func writeReportTable(w io.Writer, doc ReportDoc, opts Options) error {
	tw := newTable(w)
	tw.SetTitle("%s  %s/%s  run %s", doc.Participant, doc.Mode, doc.Movement, doc.RunID)
	cfgs := []table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 7, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 8, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: detailWidth(opts.Width)},
	}
	tw.SetColumnConfigs(cfgs)
	if opts.Header {
		tw.AppendHeader(table.Row{"Question", "Status", "Interval", "Assigned", "Kept", "Sampled", "Aggregated", "Output"})
	}
	for _, s := range doc.Stimuli {
		tw.AppendRow(table.Row{
			s.StimulusID,
			statusText(s.Status, opts.Color),
			intervalText(s.Interval),
			s.Assigned,
			s.Kept,
			s.Sampled,
			s.Aggregated,
			outcomeText(s),
		})
	}
	if len(doc.Stimuli) == 0 {
		tw.AppendRow(table.Row{"-", "-", "-", 0, 0, 0, 0, "(no stimuli)"})
	}
	a := doc.Assignment
	tw.AppendFooter(table.Row{"", "", "samples", a.Total, a.Assigned, "", "", fmt.Sprintf("excluded %d (%.1f%%)", a.Excluded, a.ExclusionRate*100)})
	_ = tw.Render()
	return nil
}

// detailWidth leaves room for the fixed numeric columns.
func detailWidth(width int) int {
	if width <= 0 {
		return 0
	}
	if rest := width - 70; rest > 20 {
		return rest
	}
	return 20
}

func statusText(status string, color bool) string {
	if !color {
		return status
	}
	if status == "ok" {
		return text.Colors{text.FgGreen}.Sprint(status)
	}
	return text.Colors{text.FgYellow}.Sprint(status)
}

func intervalText(iv []float64) string {
	if len(iv) != 2 {
		return "-"
	}
	return formatFloat(iv[0]) + ".." + formatFloat(iv[1])
}

func outcomeText(s StimulusRow) string {
	if s.Status == "ok" {
		if s.Output == "" {
			return "(not rendered)"
		}
		return filepath.Base(s.Output)
	}
	if s.Detail == "" || s.Detail == s.Reason {
		return s.Reason
	}
	return s.Reason + ": " + s.Detail
}

// AssignmentDoc is the serialized form of assign.Stats.
type AssignmentDoc struct {
	Total            int             `json:"total"`
	Assigned         int             `json:"assigned"`
	Unmatched        int             `json:"unmatched"`
	Ambiguous        int             `json:"ambiguous"`
	MissingTimestamp int             `json:"missing_timestamp"`
	Excluded         int             `json:"excluded"`
	ExclusionRate    float64         `json:"exclusion_rate"`
	PerStimulus      []StimulusCount `json:"per_stimulus"`
}

// StimulusCount is the number of samples assigned to one stimulus.
type StimulusCount struct {
	StimulusID int `json:"stimulus_id"`
	Samples    int `json:"samples"`
}

// NewAssignmentDoc flattens s for serialization.
func NewAssignmentDoc(s assign.Stats) AssignmentDoc {
	doc := AssignmentDoc{
		Total:            s.Total,
		Assigned:         s.Assigned,
		Unmatched:        s.Unmatched,
		Ambiguous:        s.Ambiguous,
		MissingTimestamp: s.MissingTimestamp,
		Excluded:         s.Excluded(),
		ExclusionRate:    s.ExclusionRate(),
		PerStimulus:      []StimulusCount{},
	}
	for _, id := range s.Stimuli() {
		doc.PerStimulus = append(doc.PerStimulus, StimulusCount{StimulusID: id, Samples: s.PerStimulus[id]})
	}
	return doc
}

// WriteAssignment writes assignment statistics in the requested format.
func WriteAssignment(w io.Writer, participant string, s assign.Stats, opts Options) error {
	mode, err := opts.mode()
	if err != nil {
		return err
	}
	doc := NewAssignmentDoc(s)
	switch mode {
	case "json":
		return writeJSON(w, doc)
	case "jsonl":
		return writeJSONL(w, doc.PerStimulus)
	case "plain":
		lines := make([]string, 0, len(doc.PerStimulus)+4)
		for _, c := range doc.PerStimulus {
			lines = append(lines, fmt.Sprintf("%s\tquestion %d\t%d", participant, c.StimulusID, c.Samples))
		}
		lines = append(lines,
			fmt.Sprintf("%s\tunmatched\t%d", participant, doc.Unmatched),
			fmt.Sprintf("%s\tambiguous\t%d", participant, doc.Ambiguous),
			fmt.Sprintf("%s\tmissing_timestamp\t%d", participant, doc.MissingTimestamp),
			fmt.Sprintf("%s\ttotal\t%d", participant, doc.Total),
		)
		return writePlain(w, "participant\tbucket\tsamples", lines, opts.Header)
	default:
		tw := newTable(w)
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
			{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
			{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		})
		if opts.Header {
			tw.AppendHeader(table.Row{"Bucket", "Samples", "Share"})
		}
		share := func(n int) string {
			if doc.Total == 0 {
				return "-"
			}
			return strconv.FormatFloat(float64(n)*100/float64(doc.Total), 'f', 1, 64) + "%"
		}
		for _, c := range doc.PerStimulus {
			tw.AppendRow(table.Row{fmt.Sprintf("question %d", c.StimulusID), c.Samples, share(c.Samples)})
		}
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"unmatched", doc.Unmatched, share(doc.Unmatched)})
		tw.AppendRow(table.Row{"ambiguous", doc.Ambiguous, share(doc.Ambiguous)})
		tw.AppendRow(table.Row{"missing timestamp", doc.MissingTimestamp, share(doc.MissingTimestamp)})
		tw.AppendFooter(table.Row{dash(participant), doc.Total, share(doc.Total)})
		_ = tw.Render()
		return nil
	}
}
