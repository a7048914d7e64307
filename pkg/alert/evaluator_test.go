package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"soilwatch/entities"
)

func day(n int) time.Time {
	return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// obs builds a newest-first observation slice from oldest-first values.
func obs(vals ...float64) []entities.Observation {
	out := make([]entities.Observation, len(vals))
	for i, v := range vals {
		out[len(vals)-1-i] = entities.Observation{Date: day(i), MeanIndex: v}
	}
	return out
}

func TestEvaluateNoBreachAboveThreshold(t *testing.T) {
	d := Evaluate(0.3, true, obs(0.5, 0.4, 0.35))
	assert.False(t, d.Breach)
}

func TestEvaluateDisabled(t *testing.T) {
	d := Evaluate(0.3, false, obs(0.1))
	assert.False(t, d.Breach)
}

func TestEvaluateEmpty(t *testing.T) {
	d := Evaluate(0.3, true, nil)
	assert.False(t, d.Breach)
}

func TestEvaluateSingleBreach(t *testing.T) {
	// scenario: 0.25 under tau=0.3 -> mild
	d := Evaluate(0.3, true, obs(0.5, 0.25))
	assert.True(t, d.Breach)
	assert.Equal(t, entities.SeverityMild, d.Severity)
	assert.Equal(t, 0.25, d.Value)
	assert.Equal(t, day(1), d.EpisodeStart)
}

func TestEvaluateEpisodeStartStable(t *testing.T) {
	// day1 0.25, day2 0.20: same run, same episode start
	d1 := Evaluate(0.3, true, obs(0.5, 0.25))
	d2 := Evaluate(0.3, true, obs(0.5, 0.25, 0.20))
	assert.True(t, d1.Breach)
	assert.True(t, d2.Breach)
	assert.Equal(t, d1.EpisodeStart, d2.EpisodeStart)
}

func TestEvaluateNewEpisodeAfterRecovery(t *testing.T) {
	// below, below, above, below again -> episode restarts at the last reading
	d := Evaluate(0.3, true, obs(0.25, 0.20, 0.35, 0.22))
	assert.True(t, d.Breach)
	assert.Equal(t, day(3), d.EpisodeStart)

	// and it differs from the first run's start
	first := Evaluate(0.3, true, obs(0.25, 0.20))
	assert.NotEqual(t, first.EpisodeStart, d.EpisodeStart)
}

func TestEvaluateRunReachesOldestObservation(t *testing.T) {
	d := Evaluate(0.3, true, obs(0.1, 0.15, 0.2))
	assert.True(t, d.Breach)
	assert.Equal(t, day(0), d.EpisodeStart)
}

func TestSeverityTiers(t *testing.T) {
	assert.Equal(t, entities.SeverityMild, Severity(0.28, 0.3))   // within 10% of tau
	assert.Equal(t, entities.SeverityMild, Severity(0.16, 0.3))   // between half and tau
	assert.Equal(t, entities.SeveritySevere, Severity(0.14, 0.3)) // below half of tau
	assert.Equal(t, entities.SeveritySevere, Severity(0.0, 0.3))
}

func TestEvaluateBoundaryEqualsThreshold(t *testing.T) {
	// breach requires strictly below tau
	d := Evaluate(0.3, true, obs(0.3))
	assert.False(t, d.Breach)
}

// One alert per unbroken run: stepping through a sustained dry spell one
// observation at a time never changes the episode identity.
func TestEvaluateSustainedRunSingleEpisode(t *testing.T) {
	vals := []float64{0.29, 0.25, 0.21, 0.18, 0.12}
	var starts []time.Time
	for i := 1; i <= len(vals); i++ {
		d := Evaluate(0.3, true, obs(vals[:i]...))
		assert.True(t, d.Breach)
		starts = append(starts, d.EpisodeStart)
	}
	for _, s := range starts {
		assert.Equal(t, starts[0], s)
	}
}
