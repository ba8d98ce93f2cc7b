package domain

import (
	"testing"
	"time"
)

// TestOverallScore tests the mean of session means
func TestOverallScore(t *testing.T) {
	tests := []struct {
		name     string
		sessions []Session
		want     int
	}{
		{"empty", nil, 0},
		{"single", []Session{scored(70, 70, 70)}, 70},
		{"two sessions", []Session{scored(60, 70, 65), scored(64, 72, 68)}, 67},
		{"all zero", []Session{scored(0, 0, 0)}, 0},
		{"all hundred", []Session{scored(100, 100, 100), scored(100, 100, 100)}, 100},
	}
	for _, tt := range tests {
		if got := OverallScore(tt.sessions); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

// TestRoundHalfUp tests rounding of halves
func TestRoundHalfUp(t *testing.T) {
	tests := map[float64]int{2.5: 3, 2.49: 2, 66.5: 67, -2.5: -2, -9.09: -9, 0: 0}
	for in, want := range tests {
		if got := RoundHalfUp(in); got != want {
			t.Errorf("RoundHalfUp(%v) = %d, want %d", in, got, want)
		}
	}
}

// TestPercentChangeAndTrend tests the comparison of the last two sessions
func TestPercentChangeAndTrend(t *testing.T) {
	tests := []struct {
		name     string
		sessions []Session
		change   int
		defined  bool
		trend    Trend
	}{
		{"empty", nil, 0, true, TrendStable},
		{"single", []Session{scored(70, 0, 0)}, 0, true, TrendStable},
		{"up", []Session{scored(70, 0, 0), scored(77, 0, 0)}, 10, true, TrendUp},
		{"down", []Session{scored(77, 0, 0), scored(70, 0, 0)}, -9, true, TrendDown},
		{"within threshold", []Session{scored(70, 0, 0), scored(72, 0, 0)}, 3, true, TrendStable},
		{"last two only", []Session{scored(10, 0, 0), scored(70, 0, 0), scored(77, 0, 0)}, 10, true, TrendUp},
		{"previous zero", []Session{scored(0, 0, 0), scored(50, 0, 0)}, 0, false, TrendUp},
	}
	for _, tt := range tests {
		change, defined := PercentChange(tt.sessions, MetricSpeechFluency)
		if change != tt.change || defined != tt.defined {
			t.Errorf("%s: expected change (%d, %v), got (%d, %v)", tt.name, tt.change, tt.defined, change, defined)
		}
		if trend := ScoreTrend(tt.sessions, MetricSpeechFluency); trend != tt.trend {
			t.Errorf("%s: expected trend %s, got %s", tt.name, tt.trend, trend)
		}
	}
}

// TestRiskBandFor tests the 70/50 thresholds
func TestRiskBandFor(t *testing.T) {
	tests := map[float64]RiskBand{
		100:   RiskBandGood,
		70:    RiskBandGood,
		69.99: RiskBandMedium,
		50:    RiskBandMedium,
		49.99: RiskBandPoor,
		0:     RiskBandPoor,
	}
	for score, want := range tests {
		if got := RiskBandFor(score); got != want {
			t.Errorf("RiskBandFor(%v) = %s, want %s", score, got, want)
		}
	}
}

// TestTrendSeries tests labels in the local time zone and that the sequence restarts
func TestTrendSeries(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	first := scored(60, 70, 65)
	first.Date = time.Date(2025, time.January, 1, 20, 0, 0, 0, time.UTC)
	second := scored(64, 72, 68)
	second.Date = time.Date(2025, time.January, 3, 2, 0, 0, 0, time.UTC)

	series := TrendSeries([]Session{first, second}, jakarta)

	var labels []string
	for point := range series {
		labels = append(labels, point.Label)
	}
	if len(labels) != 2 || labels[0] != "2 Jan" || labels[1] != "3 Jan" {
		t.Errorf("expected labels [2 Jan 3 Jan], got %q", labels)
	}

	count := 0
	for point := range series {
		if count == 0 && point.Overall != 65 {
			t.Errorf("expected overall 65 for the first point, got %v", point.Overall)
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected the series to restart with 2 points, got %d", count)
	}

	for range series {
		break
	}
}

// TestBuildDashboard tests the assembled derived views
func TestBuildDashboard(t *testing.T) {
	empty := BuildDashboard(nil, nil)
	if empty.SessionCount != 0 || empty.OverallScore != 0 || empty.LastSessionAt != nil || empty.OverallRiskBand != "" {
		t.Errorf("unexpected empty dashboard: %+v", empty)
	}
	if len(empty.Metrics) != len(Metrics) || len(empty.Series) != 0 {
		t.Errorf("expected %d metrics and no series, got %d and %d", len(Metrics), len(empty.Metrics), len(empty.Series))
	}

	first := scored(0, 70, 65)
	first.Date = time.Date(2025, time.January, 1, 3, 0, 0, 0, time.UTC)
	second := scored(64, 77, 68)
	second.Date = time.Date(2025, time.January, 2, 3, 0, 0, 0, time.UTC)
	second.RiskBand = RiskBandMedium

	dashboard := BuildDashboard([]Session{first, second}, time.UTC)
	if dashboard.SessionCount != 2 {
		t.Errorf("expected 2 sessions, got %d", dashboard.SessionCount)
	}
	if dashboard.LatestScores != second.Scores || dashboard.LatestRiskBand != RiskBandMedium {
		t.Errorf("expected latest scores of the second session, got %+v", dashboard.LatestScores)
	}
	if dashboard.LastSessionAt == nil || !dashboard.LastSessionAt.Equal(second.Date) {
		t.Errorf("expected last session at %v, got %v", second.Date, dashboard.LastSessionAt)
	}

	byMetric := map[Metric]MetricSummary{}
	for _, summary := range dashboard.Metrics {
		byMetric[summary.Metric] = summary
	}
	if byMetric[MetricSpeechFluency].PercentChange != nil {
		t.Errorf("expected undefined change for a zero previous value, got %v", *byMetric[MetricSpeechFluency].PercentChange)
	}
	lexical := byMetric[MetricLexicalScore]
	if lexical.PercentChange == nil || *lexical.PercentChange != 10 || lexical.Trend != TrendUp {
		t.Errorf("expected lexical +10%% up, got %+v", lexical)
	}
	if len(dashboard.Series) != 2 {
		t.Errorf("expected 2 series points, got %d", len(dashboard.Series))
	}
}
