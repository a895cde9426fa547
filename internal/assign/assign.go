// Package assign maps raw samples onto stimulus intervals.
package assign

import (
	"math"
	"sort"

	"gazemap/internal/interval"
	"gazemap/internal/model"
)

// Outcome is the result of resolving one sample.
type Outcome int

const (
	Assigned Outcome = iota
	// Unmatched means no interval contains the timestamp.
	Unmatched
	// Ambiguous means more than one interval contains the timestamp.
	Ambiguous
	// NoTimestamp means the timestamp is missing.
	NoTimestamp
)

func (o Outcome) String() string {
	switch o {
	case Assigned:
		return "assigned"
	case Unmatched:
		return "unmatched"
	case Ambiguous:
		return "ambiguous"
	case NoTimestamp:
		return "no_timestamp"
	default:
		return "unknown"
	}
}

// Resolve returns the stimulus whose interval contains t, provided exactly one
// interval does.
func Resolve(t float64, intervals []model.StimulusInterval) (int, Outcome) {
	if math.IsNaN(t) {
		return 0, NoTimestamp
	}
	id, hits := 0, 0
	for _, iv := range intervals {
		if iv.Contains(t) {
			hits++
			if hits > 1 {
				return 0, Ambiguous
			}
			id = iv.StimulusID
		}
	}
	if hits == 0 {
		return 0, Unmatched
	}
	return id, Assigned
}

// Stats counts how samples were resolved.
type Stats struct {
	Total            int         `json:"total"`
	Assigned         int         `json:"assigned"`
	Unmatched        int         `json:"unmatched"`
	Ambiguous        int         `json:"ambiguous"`
	MissingTimestamp int         `json:"missing_timestamp"`
	PerStimulus      map[int]int `json:"per_stimulus"`
}

// Excluded is the number of samples that were not assigned.
func (s Stats) Excluded() int {
	return s.Unmatched + s.Ambiguous + s.MissingTimestamp
}

// ExclusionRate is Excluded/Total, or 0 when there are no samples.
func (s Stats) ExclusionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Excluded()) / float64(s.Total)
}

// Stimuli returns the stimulus ids with at least one assigned sample, ascending.
func (s Stats) Stimuli() []int {
	ids := make([]int, 0, len(s.PerStimulus))
	for id := range s.PerStimulus {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Stats) record(o Outcome, stimulusID int) {
	s.Total++
	switch o {
	case Assigned:
		s.Assigned++
		s.PerStimulus[stimulusID]++
	case Unmatched:
		s.Unmatched++
	case Ambiguous:
		s.Ambiguous++
	case NoTimestamp:
		s.MissingTimestamp++
	}
}

// Assign resolves every sample against its participant's intervals. Samples
// that do not resolve to exactly one interval are dropped and counted. The
// relative order of assigned samples follows the input.
func Assign(samples []model.RawSample, set interval.Set) ([]model.AssignedSample, Stats) {
	stats := Stats{PerStimulus: make(map[int]int)}
	cache := make(map[string][]model.StimulusInterval)

	var out []model.AssignedSample
	for _, s := range samples {
		ivs, ok := cache[s.Participant]
		if !ok {
			ivs = set.For(s.Participant)
			cache[s.Participant] = ivs
		}

		id, outcome := Resolve(s.Timestamp, ivs)
		stats.record(outcome, id)
		if outcome != Assigned {
			continue
		}
		out = append(out, model.AssignedSample{RawSample: s, StimulusID: id})
	}
	return out, stats
}

// GroupByStimulus splits assigned samples per stimulus, keeping input order.
func GroupByStimulus(samples []model.AssignedSample) map[int][]model.AssignedSample {
	groups := make(map[int][]model.AssignedSample)
	for _, s := range samples {
		groups[s.StimulusID] = append(groups[s.StimulusID], s)
	}
	return groups
}
