// Package pipeline runs interval building, sample assignment, sampling,
// projection and aggregation for one participant.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"gazemap/internal/aggregate"
	"gazemap/internal/assign"
	"gazemap/internal/canvas"
	"gazemap/internal/interval"
	"gazemap/internal/logging"
	"gazemap/internal/model"
	"gazemap/internal/project"
)

// SkipReason explains why a stimulus produced no aggregation.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipExcludedInterval SkipReason = "interval excluded"
	SkipNoInterval       SkipReason = "no interval"
	SkipNoSamples        SkipReason = "no samples"
	SkipOffStimulus      SkipReason = "no samples on stimulus"
	SkipCanvasMissing    SkipReason = "canvas missing"
	SkipCanvasInvalid    SkipReason = "canvas unreadable"
	SkipAggregation      SkipReason = "aggregation failed"
	SkipRender           SkipReason = "render failed"
)

// ErrNoSamples is recorded when a stimulus has an interval but nothing to aggregate.
var ErrNoSamples = errors.New("no samples to aggregate")

// Input is the complete raw data of a run.
type Input struct {
	Events  []model.RawEvent
	Samples []model.RawSample
}

// StimulusResult is the outcome for one stimulus.
type StimulusResult struct {
	StimulusID  int
	Interval    model.StimulusInterval
	HasInterval bool
	Canvas      model.Canvas

	// Assigned counts samples resolved to this stimulus, Kept those left after
	// filtering and Sampled those handed to the aggregator.
	Assigned int
	Kept     int
	Sampled  int

	Result model.AggregationResult
	Skip   SkipReason
	Detail string

	// Output is set once a renderer has written the result.
	Output string
}

// Skipped reports whether the stimulus produced no result.
func (r StimulusResult) Skipped() bool {
	return r.Skip != SkipNone
}

// Report summarizes a run.
type Report struct {
	RunID       string
	Participant string
	Mode        model.AggregationKind
	Movement    model.MovementKind
	Intervals   []model.StimulusInterval
	Issues      []interval.Issue
	// DroppedMarkers counts boundary markers without a stimulus id.
	DroppedMarkers int
	Assignment     assign.Stats
	Stimuli        []StimulusResult
	Warnings       []error
}

// Produced returns the number of stimuli with a result.
func (r *Report) Produced() int {
	n := 0
	for _, s := range r.Stimuli {
		if !s.Skipped() {
			n++
		}
	}
	return n
}

// Pipeline is a validated, reusable run configuration.
type Pipeline struct {
	cfg Config
	log logrus.FieldLogger
}

// New validates cfg. A nil logger discards output. Skipped stimuli and
// interval issues are logged at info level and also returned in the Report.
func New(cfg Config, log logrus.FieldLogger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}
	cfg.Movement = cfg.movement()
	cfg.Density.Axis = cfg.Axis
	cfg.Path.Axis = cfg.Axis
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Pipeline{cfg: cfg, log: log.WithField("participant", cfg.Participant)}, nil
}

// Run processes every stimulus in the configured range. Failures are
// isolated per stimulus and recorded in the report.
func (p *Pipeline) Run(in Input) *Report {
	cfg := p.cfg
	report := &Report{
		RunID:       uuid.NewString(),
		Participant: cfg.Participant,
		Mode:        cfg.Mode,
		Movement:    cfg.Movement,
	}

	var events []model.RawEvent
	for _, ev := range in.Events {
		if ev.Participant == cfg.Participant {
			events = append(events, ev)
		}
	}
	built := interval.Build(events)
	report.Intervals = built.Set.For(cfg.Participant)
	report.Issues = built.Issues
	report.DroppedMarkers = built.Dropped
	for _, issue := range built.Issues {
		p.log.WithFields(logrus.Fields{"stimulus": issue.StimulusID, "reason": issue.Kind}).Info(issue.Error())
		report.Warnings = append(report.Warnings, issue)
	}
	p.log.WithField("intervals", built.Set.Len()).Debug("intervals built")

	var samples []model.RawSample
	for _, s := range in.Samples {
		if s.Participant == cfg.Participant && s.Movement == cfg.Movement {
			samples = append(samples, s)
		}
	}
	assigned, stats := assign.Assign(samples, built.Set)
	report.Assignment = stats
	p.log.WithFields(logrus.Fields{
		"total":     stats.Total,
		"assigned":  stats.Assigned,
		"ambiguous": stats.Ambiguous,
		"unmatched": stats.Unmatched,
	}).Debug("samples assigned")

	issues := make(map[int]interval.Issue, len(built.Issues))
	for _, issue := range built.Issues {
		issues[issue.StimulusID] = issue
	}
	groups := assign.GroupByStimulus(assigned)

	ids := make([]int, 0, cfg.LastStimulus-cfg.FirstStimulus+1)
	for id := cfg.FirstStimulus; id <= cfg.LastStimulus; id++ {
		ids = append(ids, id)
	}
	results := make([]StimulusResult, len(ids))

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, id := range ids {
		iv, hasInterval := built.Set.Lookup(cfg.Participant, id)
		issue, hasIssue := issues[id]
		group := groups[id]
		g.Go(func() error {
			res := p.processStimulus(id, group)
			res.Interval, res.HasInterval = iv, hasInterval
			if !hasInterval && res.Skip == SkipNoSamples {
				res.Skip = SkipNoInterval
				res.Detail = ""
				if hasIssue {
					res.Skip = SkipExcludedInterval
					res.Detail = issue.Error()
				}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.Skipped() {
			entry := p.log.WithFields(logrus.Fields{"stimulus": res.StimulusID, "reason": res.Skip})
			switch res.Skip {
			case SkipCanvasMissing, SkipCanvasInvalid, SkipAggregation:
				entry.Info(res.Detail)
				report.Warnings = append(report.Warnings, fmt.Errorf("question %d: %s: %s", res.StimulusID, res.Skip, res.Detail))
			default:
				entry.Debug("stimulus skipped")
			}
		}
	}
	report.Stimuli = results
	return report
}

func (p *Pipeline) processStimulus(id int, group []model.AssignedSample) StimulusResult {
	cfg := p.cfg
	res := StimulusResult{StimulusID: id, Assigned: len(group)}
	if len(group) == 0 {
		res.Skip = SkipNoSamples
		res.Detail = ErrNoSamples.Error()
		return res
	}

	kept := make([]model.AssignedSample, 0, len(group))
	for _, s := range group {
		if keepSample(s, cfg) {
			kept = append(kept, s)
		}
	}
	res.Kept = len(kept)
	if len(kept) == 0 {
		res.Skip = SkipOffStimulus
		res.Detail = fmt.Sprintf("%d assigned samples filtered out", len(group))
		return res
	}

	c, err := cfg.Canvas.Resolve(id)
	if err != nil {
		res.Skip = SkipCanvasMissing
		if !errors.Is(err, canvas.ErrCanvasMissing) {
			res.Skip = SkipCanvasInvalid
		}
		res.Detail = err.Error()
		return res
	}
	res.Canvas = c

	sampled := cfg.Sampling.Apply(kept)
	res.Sampled = len(sampled)
	projected := project.Samples(sampled, c, cfg.Axis)

	switch cfg.Mode {
	case model.KindDensity:
		grid, err := aggregate.Density(projected, c, cfg.Density)
		if err != nil {
			res.Skip = SkipAggregation
			res.Detail = err.Error()
			return res
		}
		res.Result = grid
	case model.KindPath:
		res.Result = aggregate.Path(projected, cfg.Path)
	case model.KindSegments:
		set := aggregate.Segments(projected, cfg.Path)
		if set.Len() == 0 {
			res.Skip = SkipOffStimulus
			res.Detail = "no complete saccade segments"
			return res
		}
		res.Result = set
	}
	return res
}

func keepSample(s model.AssignedSample, cfg Config) bool {
	if cfg.Mode == model.KindSegments {
		seg := s.Segment
		if !seg.Start.Valid() || !seg.End.Valid() {
			return false
		}
		if cfg.OnStimulusOnly {
			return seg.Start.InUnitSquare() && seg.End.InUnitSquare()
		}
		return true
	}
	anchor := s.Anchor()
	if !anchor.Valid() {
		return false
	}
	if cfg.OnStimulusOnly {
		return anchor.InUnitSquare()
	}
	return true
}
