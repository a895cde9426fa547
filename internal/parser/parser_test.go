package parser

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"gazemap/internal/model"
)

func fixturePath(parts ...string) string {
	elems := append([]string{"..", "..", "testdata", "export"}, parts...)
	return filepath.Join(elems...)
}

func TestReadFile(t *testing.T) {
	recs, err := ReadFile(fixturePath("sample.tsv"), DefaultOptions())
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}

	if recs.Rows != 17 {
		t.Fatalf("unexpected row count: %d", recs.Rows)
	}
	if len(recs.Events) != 10 {
		t.Fatalf("unexpected event count: %d", len(recs.Events))
	}
	if len(recs.Samples) != 7 {
		t.Fatalf("unexpected sample count: %d", len(recs.Samples))
	}
	if len(recs.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", recs.Warnings)
	}

	first := recs.Events[0]
	if first.Participant != "Participant1" || first.Kind != model.StartMarker || first.Timestamp != 1000 {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if first.Label != "https://survey.example/Question 1" {
		t.Fatalf("unexpected label: %q", first.Label)
	}

	names := recs.Participants()
	if len(names) != 2 || names[0] != "Participant1" || names[1] != "Participant2" {
		t.Fatalf("unexpected participants: %v", names)
	}
}

func TestReadFileSamples(t *testing.T) {
	recs, err := ReadFile(fixturePath("sample.tsv"), DefaultOptions())
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}

	fix := recs.Samples[0]
	if fix.Movement != model.Fixation || fix.Point != (model.Point{X: 0.5, Y: 0.5}) || fix.Duration != 200 {
		t.Fatalf("unexpected fixation: %+v", fix)
	}

	sacc := recs.Samples[1]
	if sacc.Movement != model.Saccade {
		t.Fatalf("expected saccade, got %s", sacc.Movement)
	}
	if sacc.Segment.Start != (model.Point{X: 0.5, Y: 0.5}) || sacc.Segment.End != (model.Point{X: 0.6, Y: 0.4}) {
		t.Fatalf("unexpected saccade segment: %+v", sacc.Segment)
	}
	if sacc.Anchor() != sacc.Segment.End {
		t.Fatalf("saccade anchor should be its landing point")
	}

	comma := recs.Samples[2]
	if comma.Point != (model.Point{X: 0.25, Y: 0.75}) {
		t.Fatalf("decimal comma not accepted: %+v", comma.Point)
	}

	missing := recs.Samples[4]
	if !math.IsNaN(missing.Timestamp) {
		t.Fatalf("malformed timestamp should be NaN, got %v", missing.Timestamp)
	}
}

func TestReadMissingColumn(t *testing.T) {
	input := "Participant name\tEvent\nP1\tURL Start\n"
	_, err := Read(strings.NewReader(input), DefaultOptions())
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReadCustomLabels(t *testing.T) {
	input := strings.Join([]string{
		"who\twhen\tEvent\tEvent value",
		"P1\t10\tStimulus begin\tQuestion 4",
		"P1\t20\tStimulus end\tQuestion 4",
		"P1\t30\tURL Start\tQuestion 5",
	}, "\n")

	opts := Options{
		Columns:     Columns{Participant: "who", Timestamp: "when"},
		StartLabels: []string{"stimulus begin"},
		EndLabels:   []string{"Stimulus End"},
	}
	recs, err := Read(strings.NewReader(input), opts)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(recs.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recs.Events))
	}
	if recs.Events[1].Kind != model.EndMarker || recs.Events[1].Timestamp != 20 {
		t.Fatalf("unexpected end event: %+v", recs.Events[1])
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"1.5":    1.5,
		" 2 ":    2,
		"0,125":  0.125,
		"-3e2":   -300,
		"1234.0": 1234,
	}
	for in, want := range cases {
		if got := ParseNumber(in); got != want {
			t.Fatalf("ParseNumber(%q) = %v, want %v", in, got, want)
		}
	}
	for _, in := range []string{"", "abc", "1,2,3", "1.2.3"} {
		if got := ParseNumber(in); !math.IsNaN(got) {
			t.Fatalf("ParseNumber(%q) should be NaN, got %v", in, got)
		}
	}
}
