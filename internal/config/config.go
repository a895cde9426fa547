// Package config loads optional YAML run files and .env defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gazemap/internal/model"
	"gazemap/internal/parser"
	"gazemap/internal/pipeline"
	"gazemap/internal/project"
	"gazemap/internal/sampling"
)

// Environment variables consulted when neither a flag nor the config file
// sets the value.
const (
	EnvParticipant = "GAZEMAP_PARTICIPANT"
	EnvStimuliDir  = "GAZEMAP_STIMULI_DIR"
	EnvOutputDir   = "GAZEMAP_OUTPUT_DIR"
)

// File is the YAML run file. Unset fields keep their defaults.
type File struct {
	Participant *string `yaml:"participant"`
	StimuliDir  *string `yaml:"stimuli_dir"`
	OutputDir   *string `yaml:"output_dir"`

	Mode       *string  `yaml:"mode"`
	Movement   *string  `yaml:"movement"`
	Axis       *string  `yaml:"axis"`
	Bins       *int     `yaml:"bins"`
	Sigma      *float64 `yaml:"sigma"`
	OnStimulus *bool    `yaml:"on_stimulus"`
	Workers    *int     `yaml:"workers"`

	Stimuli  Range    `yaml:"stimuli"`
	Sampling Sampling `yaml:"sampling"`
	Duration Duration `yaml:"duration"`
	Markers  Markers  `yaml:"markers"`
	Render   Render   `yaml:"render"`

	Columns parser.Columns `yaml:"columns"`
}

// Range selects the stimulus ids to process.
type Range struct {
	From *int `yaml:"from"`
	To   *int `yaml:"to"`
}

// Sampling configures the sampling policy.
type Sampling struct {
	Mode *string `yaml:"mode"`
	Cap  *int    `yaml:"cap"`
	Seed *uint64 `yaml:"seed"`
}

// Duration configures the path weight clip.
type Duration struct {
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Divisor *float64 `yaml:"divisor"`
}

// Markers overrides the event labels that open and close a stimulus.
type Markers struct {
	Start []string `yaml:"start"`
	End   []string `yaml:"end"`
}

// Render tunes the PNG overlays.
type Render struct {
	DensityAlpha *float64 `yaml:"density_alpha"`
	Caption      *bool    `yaml:"caption"`
}

// Load reads path. An empty path yields an empty File.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a YAML run file, rejecting unknown keys.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("parse config file: %w", err)
	}
	return f, nil
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, name := range files {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", name, err)
		}
	}
	return nil
}

// Env returns the trimmed value of key, or fallback when unset or blank.
func Env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Apply copies every set field onto cfg.
func (f File) Apply(cfg *pipeline.Config) error {
	if f.Participant != nil {
		cfg.Participant = *f.Participant
	}
	if f.Mode != nil {
		mode, err := pipeline.ParseMode(*f.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = mode
	}
	if f.Movement != nil {
		movement, err := pipeline.ParseMovement(*f.Movement, cfg.Mode)
		if err != nil {
			return err
		}
		cfg.Movement = movement
	}
	if f.Axis != nil {
		axis, err := project.ParseAxis(*f.Axis)
		if err != nil {
			return err
		}
		cfg.Axis = axis
	}
	if f.Bins != nil {
		cfg.Density.BinsX, cfg.Density.BinsY = *f.Bins, *f.Bins
	}
	if f.Sigma != nil {
		cfg.Density.Sigma = *f.Sigma
	}
	if f.OnStimulus != nil {
		cfg.OnStimulusOnly = *f.OnStimulus
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.Stimuli.From != nil {
		cfg.FirstStimulus = *f.Stimuli.From
	}
	if f.Stimuli.To != nil {
		cfg.LastStimulus = *f.Stimuli.To
	}
	if f.Sampling.Mode != nil {
		mode, err := sampling.ParseMode(*f.Sampling.Mode)
		if err != nil {
			return err
		}
		cfg.Sampling.Mode = mode
	}
	if f.Sampling.Cap != nil {
		cfg.Sampling.Cap = *f.Sampling.Cap
	}
	if f.Sampling.Seed != nil {
		cfg.Sampling.Seed = *f.Sampling.Seed
	}
	if f.Duration.Min != nil {
		cfg.Path.MinDuration = *f.Duration.Min
	}
	if f.Duration.Max != nil {
		cfg.Path.MaxDuration = *f.Duration.Max
	}
	if f.Duration.Divisor != nil {
		cfg.Path.Divisor = *f.Duration.Divisor
	}
	return nil
}

// ParserOptions returns the export reading options with file overrides.
func (f File) ParserOptions() parser.Options {
	opts := parser.DefaultOptions()
	opts.Columns = f.Columns.Merge(opts.Columns)
	if len(f.Markers.Start) > 0 {
		opts.StartLabels = f.Markers.Start
	}
	if len(f.Markers.End) > 0 {
		opts.EndLabels = f.Markers.End
	}
	return opts
}

// MovementOrDefault is a convenience for commands that only need the
// movement filter.
func (f File) MovementOrDefault(mode model.AggregationKind) (model.MovementKind, error) {
	value := ""
	if f.Movement != nil {
		value = *f.Movement
	}
	return pipeline.ParseMovement(value, mode)
}
