package alert

import (
	"time"

	"soilwatch/entities"
)

// Decision is the outcome of evaluating a field's latest reading against
// its threshold. EpisodeStart identifies the breach episode: the date of
// the first reading in the current unbroken below-threshold run. It is
// stable across repeated evaluations of the same run, which is what lets
// the notification store de-duplicate on (field, episode_start).
type Decision struct {
	Breach       bool
	Value        float64
	Severity     string
	EpisodeStart time.Time
}

// Evaluate inspects quality-filtered observations ordered newest first.
// No breach is reported when alerting is disabled, there is no data, or
// the current value sits at or above the threshold.
func Evaluate(threshold float64, enabled bool, obs []entities.Observation) Decision {
	if !enabled || len(obs) == 0 {
		return Decision{}
	}
	cur := obs[0]
	if cur.MeanIndex >= threshold {
		return Decision{}
	}

	// walk back to the start of the current below-threshold run
	start := cur.Date
	for _, o := range obs[1:] {
		if o.MeanIndex >= threshold {
			break
		}
		start = o.Date
	}

	return Decision{
		Breach:       true,
		Value:        cur.MeanIndex,
		Severity:     Severity(cur.MeanIndex, threshold),
		EpisodeStart: start,
	}
}

// Severity maps distance below the threshold to a tier: severe below half
// the threshold, mild otherwise.
func Severity(value, threshold float64) string {
	if value < threshold/2 {
		return entities.SeveritySevere
	}
	return entities.SeverityMild
}
