package pipeline

import (
	"fmt"

	"gazemap/internal/model"
)

// Render hands every produced result to r and records the output location.
// A failing stimulus is marked skipped and does not stop the others.
func Render(r model.Renderer, report *Report) {
	for i := range report.Stimuli {
		res := &report.Stimuli[i]
		if res.Skipped() || res.Result == nil {
			continue
		}
		target := model.RenderTarget{
			Participant: report.Participant,
			StimulusID:  res.StimulusID,
			Canvas:      res.Canvas,
		}

		var (
			out string
			err error
		)
		switch result := res.Result.(type) {
		case *model.DensityGrid:
			out, err = r.RenderDensity(target, result)
		case *model.GazePath:
			out, err = r.RenderPath(target, result)
		case *model.SegmentSet:
			out, err = r.RenderSegments(target, result)
		default:
			err = fmt.Errorf("unsupported result kind %q", res.Result.Kind())
		}
		if err != nil {
			res.Skip = SkipRender
			res.Detail = err.Error()
			report.Warnings = append(report.Warnings, fmt.Errorf("question %d: render: %w", res.StimulusID, err))
			continue
		}
		res.Output = out
	}
}
