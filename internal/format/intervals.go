package format

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gazemap/internal/interval"
	"gazemap/internal/model"
)

// IntervalRow is one line of an interval listing: a trusted interval or an
// excluded key.
type IntervalRow struct {
	Participant string  `json:"participant"`
	StimulusID  int     `json:"stimulus_id"`
	Status      string  `json:"status"`
	Start       float64 `json:"start,omitempty"`
	End         float64 `json:"end,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	Detail      string  `json:"detail,omitempty"`
}

// IntervalRows merges intervals and issues, ordered by participant then
// stimulus.
func IntervalRows(intervals []model.StimulusInterval, issues []interval.Issue) []IntervalRow {
	rows := make([]IntervalRow, 0, len(intervals)+len(issues))
	for _, iv := range intervals {
		rows = append(rows, IntervalRow{
			Participant: iv.Participant,
			StimulusID:  iv.StimulusID,
			Status:      "ok",
			Start:       iv.Start,
			End:         iv.End,
			Duration:    iv.Duration(),
		})
	}
	for _, issue := range issues {
		rows = append(rows, IntervalRow{
			Participant: issue.Participant,
			StimulusID:  issue.StimulusID,
			Status:      string(issue.Kind),
			Detail:      fmt.Sprintf("%d start, %d end markers", issue.Starts, issue.Ends),
		})
	}
	sortIntervalRows(rows)
	return rows
}

// WriteIntervals lists intervals and excluded keys in the requested format.
func WriteIntervals(w io.Writer, intervals []model.StimulusInterval, issues []interval.Issue, opts Options) error {
	mode, err := opts.mode()
	if err != nil {
		return err
	}
	rows := IntervalRows(intervals, issues)
	switch mode {
	case "json":
		return writeJSON(w, rows)
	case "jsonl":
		return writeJSONL(w, rows)
	case "plain":
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			lines = append(lines, fmt.Sprintf("%s\t%d\t%s\t%s\t%s\t%s",
				clip(r.Participant, opts.Width), r.StimulusID, r.Status,
				timeText(r, r.Start), timeText(r, r.End), dash(r.Detail)))
		}
		return writePlain(w, "participant\tquestion\tstatus\tstart\tend\tdetail", lines, opts.Header)
	default:
		tw := newTable(w)
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
			{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
			{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
			{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
			{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignCenter},
			{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignCenter},
			{Number: 7, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		})
		if opts.Header {
			tw.AppendHeader(table.Row{"Participant", "Question", "Status", "Start", "End", "Duration", "Detail"})
		}
		for _, r := range rows {
			tw.AppendRow(table.Row{
				r.Participant, r.StimulusID, statusText(r.Status, opts.Color),
				timeText(r, r.Start), timeText(r, r.End), timeText(r, r.Duration), dash(r.Detail),
			})
		}
		if len(rows) == 0 {
			tw.AppendRow(table.Row{"-", "-", "(no intervals)", "-", "-", "-", "-"})
		}
		_ = tw.Render()
		return nil
	}
}

func timeText(r IntervalRow, v float64) string {
	if r.Status != "ok" {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortIntervalRows(rows []IntervalRow) {
	slices.SortStableFunc(rows, func(a, b IntervalRow) int {
		if c := cmp.Compare(a.Participant, b.Participant); c != 0 {
			return c
		}
		return cmp.Compare(a.StimulusID, b.StimulusID)
	})
}
