// Package parser reads tab-separated eye-tracker exports into raw events and
// samples.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gazemap/internal/model"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("required column missing")

// Columns maps record fields to header names.
type Columns struct {
	Participant  string `yaml:"participant"`
	Timestamp    string `yaml:"timestamp"`
	Event        string `yaml:"event"`
	EventValue   string `yaml:"event_value"`
	MovementType string `yaml:"movement_type"`
	Duration     string `yaml:"duration"`
	FixationX    string `yaml:"fixation_x"`
	FixationY    string `yaml:"fixation_y"`
	SaccadeFromX string `yaml:"saccade_start_x"`
	SaccadeFromY string `yaml:"saccade_start_y"`
	SaccadeToX   string `yaml:"saccade_end_x"`
	SaccadeToY   string `yaml:"saccade_end_y"`
}

// DefaultColumns returns the header names used by Tobii Pro Lab exports.
func DefaultColumns() Columns {
	return Columns{
		Participant:  "Participant name",
		Timestamp:    "Recording timestamp",
		Event:        "Event",
		EventValue:   "Event value",
		MovementType: "Eye movement type",
		Duration:     "Gaze event duration",
		FixationX:    "Fixation point X (MCSnorm)",
		FixationY:    "Fixation point Y (MCSnorm)",
		SaccadeFromX: "Saccade start point X (MCSnorm)",
		SaccadeFromY: "Saccade start point Y (MCSnorm)",
		SaccadeToX:   "Saccade end point X (MCSnorm)",
		SaccadeToY:   "Saccade end point Y (MCSnorm)",
	}
}

// Merge returns c with every empty field taken from fallback.
func (c Columns) Merge(fallback Columns) Columns {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return Columns{
		Participant:  pick(c.Participant, fallback.Participant),
		Timestamp:    pick(c.Timestamp, fallback.Timestamp),
		Event:        pick(c.Event, fallback.Event),
		EventValue:   pick(c.EventValue, fallback.EventValue),
		MovementType: pick(c.MovementType, fallback.MovementType),
		Duration:     pick(c.Duration, fallback.Duration),
		FixationX:    pick(c.FixationX, fallback.FixationX),
		FixationY:    pick(c.FixationY, fallback.FixationY),
		SaccadeFromX: pick(c.SaccadeFromX, fallback.SaccadeFromX),
		SaccadeFromY: pick(c.SaccadeFromY, fallback.SaccadeFromY),
		SaccadeToX:   pick(c.SaccadeToX, fallback.SaccadeToX),
		SaccadeToY:   pick(c.SaccadeToY, fallback.SaccadeToY),
	}
}

// Options controls how records are interpreted.
type Options struct {
	Columns     Columns
	StartLabels []string
	EndLabels   []string
}

// DefaultOptions returns options for an unmodified export.
func DefaultOptions() Options {
	return Options{
		Columns:     DefaultColumns(),
		StartLabels: []string{"URL Start"},
		EndLabels:   []string{"URL End"},
	}
}

// Records holds everything recognised in an export.
type Records struct {
	Events  []model.RawEvent
	Samples []model.RawSample
	// Rows is the number of data rows read, excluding the header.
	Rows int
	// Warnings lists rows that could not be read at all.
	Warnings []error
}

// Participants returns the distinct participant names in first-seen order.
func (r Records) Participants() []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, e := range r.Events {
		add(e.Participant)
	}
	for _, s := range r.Samples {
		add(s.Participant)
	}
	return names
}

// ReadFile loads the export at path.
func ReadFile(path string, opts Options) (Records, error) {
	file, err := os.Open(path)
	if err != nil {
		return Records{}, fmt.Errorf("open export file: %w", err)
	}
	defer file.Close()

	return Read(file, opts)
}

// Read decodes a tab-separated export from r. Malformed numeric fields become
// NaN instead of failing the load.
func Read(r io.Reader, opts Options) (Records, error) {
	cols := opts.Columns.Merge(DefaultColumns())

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Records{}, errors.New("export is empty")
		}
		return Records{}, fmt.Errorf("read header: %w", err)
	}

	idx, err := indexHeader(header, cols)
	if err != nil {
		return Records{}, err
	}

	starts := labelSet(opts.StartLabels)
	ends := labelSet(opts.EndLabels)

	var recs Records
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			recs.Warnings = append(recs.Warnings, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		recs.Rows++

		row := rowView{record: record, idx: idx}
		participant := strings.TrimSpace(row.get(cols.Participant))
		ts := ParseNumber(row.get(cols.Timestamp))

		if kind, ok := markerKind(row.get(cols.Event), starts, ends); ok {
			recs.Events = append(recs.Events, model.RawEvent{
				Participant: participant,
				Kind:        kind,
				Label:       strings.TrimSpace(row.get(cols.EventValue)),
				Timestamp:   ts,
			})
		}

		switch movement := strings.TrimSpace(row.get(cols.MovementType)); {
		case strings.EqualFold(movement, string(model.Fixation)):
			recs.Samples = append(recs.Samples, model.RawSample{
				Participant: participant,
				Movement:    model.Fixation,
				Timestamp:   ts,
				Point: model.Point{
					X: ParseNumber(row.get(cols.FixationX)),
					Y: ParseNumber(row.get(cols.FixationY)),
				},
				Segment:  nanSegment(),
				Duration: ParseNumber(row.get(cols.Duration)),
			})
		case strings.EqualFold(movement, string(model.Saccade)):
			recs.Samples = append(recs.Samples, model.RawSample{
				Participant: participant,
				Movement:    model.Saccade,
				Timestamp:   ts,
				Point:       model.Point{X: math.NaN(), Y: math.NaN()},
				Segment: model.Segment{
					Start: model.Point{
						X: ParseNumber(row.get(cols.SaccadeFromX)),
						Y: ParseNumber(row.get(cols.SaccadeFromY)),
					},
					End: model.Point{
						X: ParseNumber(row.get(cols.SaccadeToX)),
						Y: ParseNumber(row.get(cols.SaccadeToY)),
					},
				},
				Duration: ParseNumber(row.get(cols.Duration)),
			})
		}
	}

	return recs, nil
}

// ParseNumber converts a numeric field, accepting a decimal comma. Empty or
// malformed values yield NaN.
func ParseNumber(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return math.NaN()
	}
	if strings.Contains(value, ",") && !strings.Contains(value, ".") {
		value = strings.ReplaceAll(value, ",", ".")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

type rowView struct {
	record []string
	idx    map[string]int
}

func (r rowView) get(column string) string {
	i, ok := r.idx[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return r.record[i]
}

func indexHeader(header []string, cols Columns) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	for _, required := range []string{cols.Participant, cols.Timestamp} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}
	return idx, nil
}

func labelSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			set[l] = struct{}{}
		}
	}
	return set
}

func markerKind(value string, starts, ends map[string]struct{}) (model.MarkerKind, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return 0, false
	}
	if _, ok := starts[key]; ok {
		return model.StartMarker, true
	}
	if _, ok := ends[key]; ok {
		return model.EndMarker, true
	}
	return 0, false
}

func nanSegment() model.Segment {
	nan := model.Point{X: math.NaN(), Y: math.NaN()}
	return model.Segment{Start: nan, End: nan}
}
