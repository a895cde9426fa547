package pipeline

import (
	"errors"
	"fmt"

	"gazemap/internal/aggregate"
	"gazemap/internal/model"
	"gazemap/internal/sampling"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// Config is the complete, explicit parameter set of one pipeline run.
type Config struct {
	Participant   string
	FirstStimulus int
	LastStimulus  int
	Canvas        model.CanvasResolver

	Mode     model.AggregationKind
	Movement model.MovementKind
	Axis     model.AxisMode

	Density  aggregate.DensityOptions
	Path     aggregate.PathOptions
	Sampling sampling.Policy

	// OnStimulusOnly drops samples whose normalized coordinates fall outside
	// [0,1]x[0,1] before sampling.
	OnStimulusOnly bool
	// Workers bounds how many stimuli are aggregated at once; 0 or 1 runs
	// sequentially.
	Workers int
}

// DefaultConfig returns a fixation density configuration for questions 1-12.
func DefaultConfig() Config {
	return Config{
		FirstStimulus: 1,
		LastStimulus:  12,
		Mode:          model.KindDensity,
		Axis:          model.AxisImage,
		Density:       aggregate.DefaultDensityOptions(),
		Path:          aggregate.DefaultPathOptions(),
		Sampling:      sampling.Policy{Mode: sampling.ModeNone, Seed: 42},
		Workers:       1,
	}
}

// ParseMode maps a flag value onto an aggregation kind.
func ParseMode(value string) (model.AggregationKind, error) {
	switch model.AggregationKind(value) {
	case "":
		return model.KindDensity, nil
	case model.KindDensity, model.KindPath, model.KindSegments:
		return model.AggregationKind(value), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want density, path or saccades)", value)
	}
}

// ParseMovement maps a flag value onto a movement kind. An empty value
// yields the default for mode.
func ParseMovement(value string, mode model.AggregationKind) (model.MovementKind, error) {
	switch value {
	case "":
		if mode == model.KindSegments {
			return model.Saccade, nil
		}
		return model.Fixation, nil
	case "fixation", "Fixation":
		return model.Fixation, nil
	case "saccade", "Saccade":
		return model.Saccade, nil
	default:
		return "", fmt.Errorf("unknown movement %q (want fixation or saccade)", value)
	}
}

func (c Config) movement() model.MovementKind {
	if c.Movement != "" {
		return c.Movement
	}
	m, _ := ParseMovement("", c.Mode)
	return m
}

// Validate reports the first inconsistency in c.
func (c Config) Validate() error {
	switch {
	case c.Participant == "":
		return fmt.Errorf("%w: participant is required", ErrInvalidConfig)
	case c.Canvas == nil:
		return fmt.Errorf("%w: canvas resolver is required", ErrInvalidConfig)
	case c.FirstStimulus > c.LastStimulus:
		return fmt.Errorf("%w: stimulus range %d..%d is empty", ErrInvalidConfig, c.FirstStimulus, c.LastStimulus)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case c.Sampling.Cap < 0:
		return fmt.Errorf("%w: sampling cap must not be negative", ErrInvalidConfig)
	}

	if _, err := ParseMode(string(c.Mode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := sampling.ParseMode(string(c.Sampling.Mode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Axis != model.AxisImage && c.Axis != model.AxisPlot {
		return fmt.Errorf("%w: unknown axis mode %q", ErrInvalidConfig, c.Axis)
	}
	if c.Mode == model.KindSegments && c.movement() != model.Saccade {
		return fmt.Errorf("%w: saccades mode needs saccade samples", ErrInvalidConfig)
	}
	if c.Mode == model.KindDensity {
		if c.Density.BinsX <= 0 || c.Density.BinsY <= 0 {
			return fmt.Errorf("%w: bins must be positive", ErrInvalidConfig)
		}
		if c.Density.Sigma < 0 {
			return fmt.Errorf("%w: sigma must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}
