package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gazemap/internal/model"
)

func samplesAt(timestamps ...float64) []model.AssignedSample {
	out := make([]model.AssignedSample, len(timestamps))
	for i, ts := range timestamps {
		out[i] = model.AssignedSample{
			RawSample:  model.RawSample{Timestamp: ts, Duration: float64(i)},
			StimulusID: 1,
		}
	}
	return out
}

func timestamps(samples []model.AssignedSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Timestamp
	}
	return out
}

func TestTruncateScenario(t *testing.T) {
	in := samplesAt(0, 1, 2, 3, 4)
	got := Policy{Mode: ModeTruncate, Cap: 3}.Apply(in)
	assert.Equal(t, []float64{0, 1, 2}, timestamps(got))
}

func TestTruncateOrdersByTimestamp(t *testing.T) {
	in := samplesAt(30, 10, 20, 10, 40)
	got := Truncate(in, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []float64{10, 10, 20}, timestamps(got))
	// ties keep input order
	assert.Equal(t, 1.0, got[0].Duration)
	assert.Equal(t, 3.0, got[1].Duration)
	// input untouched
	assert.Equal(t, []float64{30, 10, 20, 10, 40}, timestamps(in))
}

func TestRandomIsDeterministic(t *testing.T) {
	var in []model.AssignedSample
	for i := 0; i < 500; i++ {
		in = append(in, samplesAt(float64(i))...)
	}

	p := Policy{Mode: ModeRandom, Cap: 40, Seed: 42}
	first := p.Apply(in)
	second := p.Apply(in)
	require.Len(t, first, 40)
	assert.Equal(t, timestamps(first), timestamps(second))

	seen := make(map[float64]bool)
	for i, s := range first {
		assert.False(t, seen[s.Timestamp], "duplicate selection %v", s.Timestamp)
		seen[s.Timestamp] = true
		if i > 0 {
			assert.Less(t, first[i-1].Timestamp, s.Timestamp)
		}
	}

	other := Policy{Mode: ModeRandom, Cap: 40, Seed: 7}.Apply(in)
	assert.NotEqual(t, timestamps(first), timestamps(other))
}

func TestApplyBelowCapReturnsInput(t *testing.T) {
	in := samplesAt(3, 2, 1)
	for _, p := range []Policy{
		{Mode: ModeTruncate, Cap: 3},
		{Mode: ModeRandom, Cap: 10, Seed: 1},
		{Mode: ModeNone, Cap: 1},
		{Mode: ModeTruncate, Cap: 0},
	} {
		assert.Equal(t, timestamps(in), timestamps(p.Apply(in)), "policy %+v", p)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("random")
	require.NoError(t, err)
	assert.Equal(t, ModeRandom, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeNone, m)

	_, err = ParseMode("stratified")
	assert.Error(t, err)
}
