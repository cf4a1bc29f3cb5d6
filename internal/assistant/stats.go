package assistant

import "github.com/meetvaani/vaani/internal/backend"

// MetricsSnapshot aggregates the backend-reported metrics of every
// successful turn in a session. Values are running means, so the
// snapshot stays O(1) regardless of session length.
type MetricsSnapshot struct {
	TotalQueries               int     `json:"totalQueries"`
	AverageResponseTimeSeconds float64 `json:"averageResponseTimeSeconds"`
	AverageConfidence          float64 `json:"averageConfidence"`
	ContainmentRate            float64 `json:"containmentRate"`
	CumulativeCostUSD          float64 `json:"cumulativeCostUsd"`
}

// Merge folds one turn's metrics into the snapshot and returns the
// updated copy. The receiver is not modified.
func (s MetricsSnapshot) Merge(m backend.TurnMetrics) MetricsSnapshot {
	n := float64(s.TotalQueries)

	contained := 0.0
	if m.Containment {
		contained = 1.0
	}

	return MetricsSnapshot{
		TotalQueries:               s.TotalQueries + 1,
		AverageResponseTimeSeconds: (s.AverageResponseTimeSeconds*n + m.ProcessingTimeSeconds) / (n + 1),
		AverageConfidence:          (s.AverageConfidence*n + m.IntentConfidence) / (n + 1),
		ContainmentRate:            (s.ContainmentRate*n + contained) / (n + 1),
		CumulativeCostUSD:          s.CumulativeCostUSD + m.CostUSD,
	}
}
