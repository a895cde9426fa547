// Package interval reconstructs per-stimulus time intervals from paired
// boundary markers.
package interval

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"gazemap/internal/model"
)

var (
	// ErrAmbiguous marks a key with more than one start/end pair.
	ErrAmbiguous = errors.New("ambiguous interval")
	// ErrUnpaired marks a key with a start marker but no end marker, or the reverse.
	ErrUnpaired = errors.New("unpaired marker")
	// ErrInverted marks a pair whose end precedes its start.
	ErrInverted = errors.New("inverted interval")
)

var labelPattern = regexp.MustCompile(`(?i)question\s+(\d+)`)

// ExtractStimulusID finds "question N" in label, case-insensitively.
func ExtractStimulusID(label string) (int, bool) {
	m := labelPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// IssueKind classifies an excluded key.
type IssueKind string

const (
	IssueAmbiguous IssueKind = "ambiguous"
	IssueUnpaired  IssueKind = "unpaired"
	IssueInverted  IssueKind = "inverted"
)

// Issue describes a (participant, stimulus) key excluded from the interval set.
type Issue struct {
	Kind        IssueKind `json:"kind"`
	Participant string    `json:"participant"`
	StimulusID  int       `json:"stimulus_id"`
	Starts      int       `json:"starts"`
	Ends        int       `json:"ends"`
}

// Pairs is the number of candidate start/end pairs for the key.
func (i Issue) Pairs() int {
	return i.Starts * i.Ends
}

func (i Issue) Error() string {
	switch i.Kind {
	case IssueAmbiguous:
		return fmt.Sprintf("participant %s question %d: %d candidate pairs (%d start, %d end)",
			i.Participant, i.StimulusID, i.Pairs(), i.Starts, i.Ends)
	case IssueUnpaired:
		return fmt.Sprintf("participant %s question %d: %d start and %d end markers",
			i.Participant, i.StimulusID, i.Starts, i.Ends)
	default:
		return fmt.Sprintf("participant %s question %d: end precedes start",
			i.Participant, i.StimulusID)
	}
}

func (i Issue) Unwrap() error {
	switch i.Kind {
	case IssueAmbiguous:
		return ErrAmbiguous
	case IssueUnpaired:
		return ErrUnpaired
	default:
		return ErrInverted
	}
}

// Set holds trusted intervals keyed by participant and stimulus.
type Set struct {
	byParticipant map[string]map[int]model.StimulusInterval
}

// NewSet builds a Set from intervals that are already known to be unique per key.
func NewSet(intervals ...model.StimulusInterval) Set {
	s := Set{byParticipant: make(map[string]map[int]model.StimulusInterval)}
	for _, iv := range intervals {
		s.put(iv)
	}
	return s
}

func (s Set) put(iv model.StimulusInterval) {
	m, ok := s.byParticipant[iv.Participant]
	if !ok {
		m = make(map[int]model.StimulusInterval)
		s.byParticipant[iv.Participant] = m
	}
	m[iv.StimulusID] = iv
}

// For returns a participant's intervals ordered by stimulus id.
func (s Set) For(participant string) []model.StimulusInterval {
	m := s.byParticipant[participant]
	out := make([]model.StimulusInterval, 0, len(m))
	for _, iv := range m {
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StimulusID < out[j].StimulusID })
	return out
}

// Lookup returns the interval for a key.
func (s Set) Lookup(participant string, stimulusID int) (model.StimulusInterval, bool) {
	iv, ok := s.byParticipant[participant][stimulusID]
	return iv, ok
}

// Participants returns participant names in sorted order.
func (s Set) Participants() []string {
	names := make([]string, 0, len(s.byParticipant))
	for name := range s.byParticipant {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every interval ordered by participant, then stimulus id.
func (s Set) All() []model.StimulusInterval {
	var out []model.StimulusInterval
	for _, name := range s.Participants() {
		out = append(out, s.For(name)...)
	}
	return out
}

// Len returns the number of intervals.
func (s Set) Len() int {
	n := 0
	for _, m := range s.byParticipant {
		n += len(m)
	}
	return n
}

// Result is the outcome of Build.
type Result struct {
	Set    Set
	Issues []Issue
	// Dropped counts markers whose label carries no stimulus id.
	Dropped int
}

type key struct {
	participant string
	stimulusID  int
}

// Build pairs start and end markers sharing (participant, stimulus id).
// A key is trusted only when it has exactly one start and one end marker and
// the start does not follow the end; every other key is reported as an Issue
// and left out of the set.
func Build(events []model.RawEvent) Result {
	starts := make(map[key][]float64)
	ends := make(map[key][]float64)

	res := Result{Set: NewSet()}
	for _, ev := range events {
		id, ok := ExtractStimulusID(ev.Label)
		if !ok {
			res.Dropped++
			continue
		}
		k := key{participant: ev.Participant, stimulusID: id}
		switch ev.Kind {
		case model.StartMarker:
			starts[k] = append(starts[k], ev.Timestamp)
		case model.EndMarker:
			ends[k] = append(ends[k], ev.Timestamp)
		}
	}

	keys := make(map[key]struct{}, len(starts)+len(ends))
	for k := range starts {
		keys[k] = struct{}{}
	}
	for k := range ends {
		keys[k] = struct{}{}
	}

	for k := range keys {
		s, e := starts[k], ends[k]
		issue := Issue{Participant: k.participant, StimulusID: k.stimulusID, Starts: len(s), Ends: len(e)}
		switch {
		case len(s) == 0 || len(e) == 0:
			issue.Kind = IssueUnpaired
			res.Issues = append(res.Issues, issue)
		case len(s)*len(e) > 1:
			issue.Kind = IssueAmbiguous
			res.Issues = append(res.Issues, issue)
		case !(s[0] <= e[0]):
			// also catches NaN timestamps
			issue.Kind = IssueInverted
			res.Issues = append(res.Issues, issue)
		default:
			res.Set.put(model.StimulusInterval{
				Participant: k.participant,
				StimulusID:  k.stimulusID,
				Start:       s[0],
				End:         e[0],
			})
		}
	}

	sort.Slice(res.Issues, func(i, j int) bool {
		a, b := res.Issues[i], res.Issues[j]
		if a.Participant != b.Participant {
			return a.Participant < b.Participant
		}
		return a.StimulusID < b.StimulusID
	})

	return res
}
