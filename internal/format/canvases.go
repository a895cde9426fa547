package format

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gazemap/internal/model"
)

// CanvasRow is the serialized form of a discovered stimulus image.
type CanvasRow struct {
	StimulusID int    `json:"stimulus_id"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Source     string `json:"source"`
}

// WriteCanvases lists stimulus images in the given order.
func WriteCanvases(w io.Writer, canvases []model.Canvas, opts Options) error {
	mode, err := opts.mode()
	if err != nil {
		return err
	}
	rows := make([]CanvasRow, 0, len(canvases))
	for _, c := range canvases {
		rows = append(rows, CanvasRow{StimulusID: c.StimulusID, Width: c.Width, Height: c.Height, Source: c.Source})
	}
	switch mode {
	case "json":
		return writeJSON(w, rows)
	case "jsonl":
		return writeJSONL(w, rows)
	case "plain":
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			lines = append(lines, fmt.Sprintf("%d\t%d\t%d\t%s", r.StimulusID, r.Width, r.Height, clip(r.Source, opts.Width)))
		}
		return writePlain(w, "question\twidth\theight\tsource", lines, opts.Header)
	default:
		tw := newTable(w)
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
			{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
			{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: detailWidth(opts.Width)},
		})
		if opts.Header {
			tw.AppendHeader(table.Row{"Question", "Size", "Source"})
		}
		for _, r := range rows {
			tw.AppendRow(table.Row{r.StimulusID, fmt.Sprintf("%dx%d", r.Width, r.Height), r.Source})
		}
		if len(rows) == 0 {
			tw.AppendRow(table.Row{"-", "-", "(no stimulus images)"})
		}
		_ = tw.Render()
		return nil
	}
}
