package domain

import (
	"iter"
	"math"
	"time"
)

// Trend is the direction of a metric between the two most recent sessions
type Trend string

const (
	// TrendUp - latest value more than trendThreshold above the previous one
	TrendUp Trend = "up"
	// TrendDown - latest value more than trendThreshold below the previous one
	TrendDown Trend = "down"
	// TrendStable - within trendThreshold
	TrendStable Trend = "stable"
)

// Arrow is a one-character rendering of the trend
func (t Trend) Arrow() string {
	switch t {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	}
	return "→"
}

const (
	trendThreshold = 2.0

	riskGoodThreshold   = 70.0
	riskMediumThreshold = 50.0
)

// TrendPoint is one chart entry of the trend series
type TrendPoint struct {
	Label          string    `json:"label"`
	Date           time.Time `json:"date"`
	SpeechFluency  float64   `json:"speech_fluency"`
	LexicalScore   float64   `json:"lexical_score"`
	CoherenceScore float64   `json:"coherence_score"`
	Overall        float64   `json:"overall"`
}

// RoundHalfUp rounds to the nearest integer with halves going towards positive infinity
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// OverallScore returns the rounded mean of the per-session score means, 0 when empty
func OverallScore(sessions []Session) int {
	if len(sessions) == 0 {
		return 0
	}
	var total float64
	for _, s := range sessions {
		total += s.Scores.Mean()
	}
	return RoundHalfUp(total / float64(len(sessions)))
}

// LatestScores returns the scores of the last session, all zero when empty
func LatestScores(sessions []Session) Scores {
	if len(sessions) == 0 {
		return Scores{}
	}
	return sessions[len(sessions)-1].Scores
}

// PercentChange compares the metric of the last two sessions.
// Fewer than two sessions yields (0, true). A previous value of zero has no defined
// percentage and yields (0, false).
func PercentChange(sessions []Session, metric Metric) (int, bool) {
	if len(sessions) < 2 {
		return 0, true
	}
	current := sessions[len(sessions)-1].Scores.Value(metric)
	previous := sessions[len(sessions)-2].Scores.Value(metric)
	if previous == 0 {
		return 0, false
	}
	return RoundHalfUp(100 * (current - previous) / previous), true
}

// ScoreTrend compares the metric of the last two sessions
func ScoreTrend(sessions []Session, metric Metric) Trend {
	if len(sessions) < 2 {
		return TrendStable
	}
	diff := sessions[len(sessions)-1].Scores.Value(metric) - sessions[len(sessions)-2].Scores.Value(metric)
	switch {
	case diff > trendThreshold:
		return TrendUp
	case diff < -trendThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

// RiskBandFor derives a band from a mean score when the analyzer did not supply one
func RiskBandFor(score float64) RiskBand {
	switch {
	case score >= riskGoodThreshold:
		return RiskBandGood
	case score >= riskMediumThreshold:
		return RiskBandMedium
	default:
		return RiskBandPoor
	}
}

// TrendSeries yields one chart point per session in chronological order.
// The sequence can be ranged over any number of times.
func TrendSeries(sessions []Session, loc *time.Location) iter.Seq[TrendPoint] {
	if loc == nil {
		loc = time.UTC
	}
	return func(yield func(TrendPoint) bool) {
		for _, s := range sessions {
			point := TrendPoint{
				Label:          s.Date.In(loc).Format(DayMonthLayout),
				Date:           s.Date,
				SpeechFluency:  s.Scores.SpeechFluency,
				LexicalScore:   s.Scores.LexicalScore,
				CoherenceScore: s.Scores.CoherenceScore,
				Overall:        s.Scores.Mean(),
			}
			if !yield(point) {
				return
			}
		}
	}
}

// BuildDashboard assembles every derived view the dashboard renders
func BuildDashboard(sessions []Session, loc *time.Location) Dashboard {
	overall := OverallScore(sessions)
	dashboard := Dashboard{
		SessionCount: len(sessions),
		OverallScore: overall,
		LatestScores: LatestScores(sessions),
		Metrics:      make([]MetricSummary, 0, len(Metrics)),
		Series:       make([]TrendPoint, 0, len(sessions)),
	}
	if len(sessions) > 0 {
		last := sessions[len(sessions)-1]
		dashboard.OverallRiskBand = RiskBandFor(float64(overall))
		dashboard.LatestRiskBand = last.RiskBand
		date := last.Date
		dashboard.LastSessionAt = &date
	}
	for _, metric := range Metrics {
		summary := MetricSummary{
			Metric: metric,
			Latest: dashboard.LatestScores.Value(metric),
			Trend:  ScoreTrend(sessions, metric),
		}
		if change, ok := PercentChange(sessions, metric); ok {
			summary.PercentChange = &change
		}
		dashboard.Metrics = append(dashboard.Metrics, summary)
	}
	for point := range TrendSeries(sessions, loc) {
		dashboard.Series = append(dashboard.Series, point)
	}
	return dashboard
}
