// Package sampling reduces an assigned sample set to a fixed cap before
// aggregation.
package sampling

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gazemap/internal/model"
)

// Mode selects how samples are kept when the cap is exceeded.
type Mode string

const (
	ModeNone Mode = "none"
	// ModeTruncate keeps the earliest samples.
	ModeTruncate Mode = "truncate"
	// ModeRandom keeps a seeded uniform subset.
	ModeRandom Mode = "random"
)

// ParseMode maps a flag value onto a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case "", ModeNone:
		return ModeNone, nil
	case ModeTruncate, ModeRandom:
		return Mode(value), nil
	default:
		return "", fmt.Errorf("unknown sampling mode %q (want none, truncate or random)", value)
	}
}

// Policy caps the number of samples handed to the aggregator.
type Policy struct {
	Mode Mode
	Cap  int
	Seed uint64
}

// Active reports whether the policy can drop samples.
func (p Policy) Active() bool {
	return p.Mode != ModeNone && p.Mode != "" && p.Cap > 0
}

// Apply returns samples unchanged when the policy is inactive or the cap is
// not exceeded; otherwise the reduced set.
func (p Policy) Apply(samples []model.AssignedSample) []model.AssignedSample {
	if !p.Active() || len(samples) <= p.Cap {
		return samples
	}
	switch p.Mode {
	case ModeTruncate:
		return Truncate(samples, p.Cap)
	case ModeRandom:
		return Random(samples, p.Cap, p.Seed)
	default:
		return samples
	}
}

// Truncate keeps the first limit samples in timestamp order. Samples with equal
// timestamps keep their input order.
func Truncate(samples []model.AssignedSample, limit int) []model.AssignedSample {
	ordered := make([]model.AssignedSample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})
	if limit < len(ordered) {
		ordered = ordered[:limit]
	}
	return ordered
}

// Random selects limit samples uniformly without replacement using a PCG
// generator seeded with seed. The selection is returned in input order.
func Random(samples []model.AssignedSample, limit int, seed uint64) []model.AssignedSample {
	n := len(samples)
	if limit >= n {
		out := make([]model.AssignedSample, n)
		copy(out, samples)
		return out
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// partial Fisher-Yates: the first limit slots hold the selection
	for i := 0; i < limit; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	picked := idx[:limit]
	sort.Ints(picked)

	out := make([]model.AssignedSample, limit)
	for i, k := range picked {
		out[i] = samples[k]
	}
	return out
}
