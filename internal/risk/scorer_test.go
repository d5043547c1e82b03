package risk

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/config"
)

func defaultScorer() *Scorer {
	return NewScorer(config.Defaults().Risk)
}

func TestScoreFavorableSampleIsLow(t *testing.T) {
	a := defaultScorer().Score(ExampleSample)

	assert.Equal(t, LevelLow, a.RiskLevel)
	assert.InDelta(t, 0.11, a.RiskScore, 1e-9)
	assert.Equal(t, messageLow, a.Message)
	assert.Equal(t, Factors{HRV: 0.3, HeartRate: 0.1, Movement: 0.1, Sleep: 0, Medication: 0}, a.Factors)
}

func TestScoreSevereSampleIsHigh(t *testing.T) {
	a := defaultScorer().Score(Sample{HRV: 15, HeartRate: 130, Movement: 10, SleepHours: 3, MedicationTaken: false})

	assert.Equal(t, LevelHigh, a.RiskLevel)
	assert.InDelta(t, 0.96, a.RiskScore, 1e-9)
	assert.Equal(t, messageHigh, a.Message)
	assert.Equal(t, Factors{HRV: 0.9, HeartRate: 1.0, Movement: 0.9, Sleep: 1.0, Medication: 1.0}, a.Factors)
}

func TestScoreTimestamp(t *testing.T) {
	sc := defaultScorer()
	fixed := time.Date(2025, 12, 5, 10, 30, 0, 0, time.UTC)
	sc.now = func() time.Time { return fixed }

	assert.Equal(t, fixed, sc.Score(ExampleSample).Timestamp)

	captured := time.Date(2025, 12, 4, 22, 0, 0, 0, time.UTC)
	s := ExampleSample
	s.Timestamp = &captured
	assert.Equal(t, captured, sc.Score(s).Timestamp)
}

func TestFactorBuckets(t *testing.T) {
	hrv := map[float64]float64{200: 0, 60: 0, 59.9: 0.3, 40: 0.3, 39.9: 0.6, 25: 0.6, 24.9: 0.9, 0: 0.9}
	for in, want := range hrv {
		assert.Equal(t, want, hrvRisk(in), "hrv %v", in)
	}

	hr := map[int]float64{
		30: 1.0, 39: 1.0, 40: 0.7, 49: 0.7, 50: 0.4, 59: 0.4, 60: 0.1, 85: 0.1,
		86: 0.4, 100: 0.4, 101: 0.7, 120: 0.7, 121: 1.0, 220: 1.0,
	}
	for in, want := range hr {
		assert.Equal(t, want, heartRateRisk(in), "heart rate %v", in)
	}

	mv := map[float64]float64{
		0: 0.9, 19.9: 0.9, 20: 0.7, 49.9: 0.7, 50: 0.4, 79.9: 0.4, 80: 0.1, 180: 0.1,
		180.1: 0.4, 250: 0.4, 250.1: 0.7, 350: 0.7, 350.1: 0.9, 1000: 0.9,
	}
	for in, want := range mv {
		assert.Equal(t, want, movementRisk(in), "movement %v", in)
	}

	sl := map[float64]float64{
		0: 1.0, 3.9: 1.0, 4: 0.8, 4.9: 0.8, 5: 0.6, 5.9: 0.6, 6: 0.3, 6.9: 0.3, 7: 0, 9: 0,
		9.1: 0.3, 10: 0.3, 10.1: 0.6, 11: 0.6, 11.1: 1.0, 24: 1.0,
	}
	for in, want := range sl {
		assert.Equal(t, want, sleepRisk(in), "sleep %v", in)
	}

	assert.Equal(t, 0.0, medicationRisk(true))
	assert.Equal(t, 1.0, medicationRisk(false))
}

func TestCategorizeBoundaries(t *testing.T) {
	sc := defaultScorer()
	cases := []struct {
		score float64
		want  Level
	}{
		{0, LevelLow},
		{0.329, LevelLow},
		{0.33, LevelMedium},
		{0.669, LevelMedium},
		{0.67, LevelHigh},
		{1, LevelHigh},
	}
	for _, c := range cases {
		got, msg := sc.Categorize(c.score)
		assert.Equal(t, c.want, got, "score %v", c.score)
		assert.NotEmpty(t, msg)
	}
}

// grid covers the validated input domain with values on and around every
// bucket boundary.
func grid() []Sample {
	hrvs := []float64{0, 10, 24.9, 25, 39.9, 40, 59.9, 60, 120, 200}
	hrs := []int{30, 39, 40, 50, 60, 75, 85, 86, 100, 101, 120, 121, 220}
	moves := []float64{0, 19.9, 20, 50, 80, 120, 180, 181, 250, 251, 350, 351, 1000}
	sleeps := []float64{0, 3.9, 4, 5, 6, 7, 8, 9, 9.5, 10.5, 11, 12, 24}
	var out []Sample
	for _, hv := range hrvs {
		for _, hr := range hrs {
			for _, mv := range moves {
				for _, sl := range sleeps {
					for _, med := range []bool{true, false} {
						out = append(out, Sample{HRV: hv, HeartRate: hr, Movement: mv, SleepHours: sl, MedicationTaken: med})
					}
				}
			}
		}
	}
	return out
}

func TestScoreBoundedAndConsistentWithLevel(t *testing.T) {
	cfgs := []config.RiskConfig{
		config.Defaults().Risk,
		{LowThreshold: 0.1, HighThreshold: 0.2, Weights: config.RiskWeights{HRV: 1, HeartRate: 1, Movement: 1, Sleep: 1, Medication: 1}},
		{LowThreshold: 0.5, HighThreshold: 0.9, Weights: config.RiskWeights{HRV: 0.1}},
	}
	for _, cfg := range cfgs {
		sc := NewScorer(cfg)
		for _, s := range grid() {
			a := sc.Score(s)
			require.GreaterOrEqual(t, a.RiskScore, 0.0)
			require.LessOrEqual(t, a.RiskScore, 1.0)
			want, _ := sc.Categorize(a.RiskScore)
			require.Equal(t, want, a.RiskLevel)
			switch a.RiskLevel {
			case LevelLow:
				require.Less(t, a.RiskScore, cfg.LowThreshold)
			case LevelMedium:
				require.GreaterOrEqual(t, a.RiskScore, cfg.LowThreshold)
				require.Less(t, a.RiskScore, cfg.HighThreshold)
			case LevelHigh:
				require.GreaterOrEqual(t, a.RiskScore, cfg.HighThreshold)
			}
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	sc := defaultScorer()
	fixed := time.Unix(0, 0)
	sc.now = func() time.Time { return fixed }
	for _, s := range grid()[:200] {
		assert.Equal(t, sc.Score(s), sc.Score(s))
	}
}

func TestScoreUnnormalizedWeightsClamp(t *testing.T) {
	w := config.RiskWeights{HRV: 1, HeartRate: 1, Movement: 1, Sleep: 1, Medication: 1}
	sc := NewScorer(config.RiskConfig{LowThreshold: 0.33, HighThreshold: 0.67, Weights: w})

	a := sc.Score(Sample{HRV: 15, HeartRate: 130, Movement: 10, SleepHours: 3})
	assert.Equal(t, 1.0, a.RiskScore)
	assert.Equal(t, LevelHigh, a.RiskLevel)
}

func TestScoreRoundsToThreeDecimals(t *testing.T) {
	w := config.RiskWeights{HRV: 0.3333, HeartRate: 0.3333}
	sc := NewScorer(config.RiskConfig{LowThreshold: 0.33, HighThreshold: 0.67, Weights: w})

	// 0.3*0.3333 + 0.1*0.3333 = 0.13332
	a := sc.Score(ExampleSample)
	assert.Equal(t, 0.133, a.RiskScore)
}

func TestScoreMonotonic(t *testing.T) {
	sc := defaultScorer()
	base := ExampleSample
	score := func(s Sample) float64 { return sc.Score(s).RiskScore }

	t.Run("decreasing hrv", func(t *testing.T) {
		prev := -1.0
		for hv := 200.0; hv >= 0; hv -= 0.5 {
			s := base
			s.HRV = hv
			got := score(s)
			require.GreaterOrEqual(t, got, prev, "hrv %v", hv)
			prev = got
		}
	})

	t.Run("heart rate away from center", func(t *testing.T) {
		prev := -1.0
		for hr := 72; hr <= 220; hr++ {
			s := base
			s.HeartRate = hr
			got := score(s)
			require.GreaterOrEqual(t, got, prev, "heart rate %v", hr)
			prev = got
		}
		prev = -1.0
		for hr := 72; hr >= 30; hr-- {
			s := base
			s.HeartRate = hr
			got := score(s)
			require.GreaterOrEqual(t, got, prev, "heart rate %v", hr)
			prev = got
		}
	})

	t.Run("movement away from center", func(t *testing.T) {
		prev := -1.0
		for mv := 130.0; mv <= 1000; mv += 0.5 {
			s := base
			s.Movement = mv
			got := score(s)
			require.GreaterOrEqual(t, got, prev, "movement %v", mv)
			prev = got
		}
		prev = -1.0
		for mv := 130.0; mv >= 0; mv -= 0.5 {
			s := base
			s.Movement = mv
			got := score(s)
			require.GreaterOrEqual(t, got, prev, "movement %v", mv)
			prev = got
		}
	})

	t.Run("sleep below seven hours", func(t *testing.T) {
		prev := -1.0
		for sl := 7.0; sl >= 0; sl -= 0.25 {
			s := base
			s.SleepHours = sl
			got := score(s)
			require.GreaterOrEqual(t, got, prev, "sleep %v", sl)
			prev = got
		}
	})

	t.Run("medication not taken", func(t *testing.T) {
		for _, s := range grid()[:500] {
			taken, missed := s, s
			taken.MedicationTaken = true
			missed.MedicationTaken = false
			require.GreaterOrEqual(t, score(missed), score(taken))
		}
	})
}

func TestScoreConcurrentUse(t *testing.T) {
	sc := defaultScorer()
	want := sc.Score(ExampleSample).RiskScore

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, want, sc.Score(ExampleSample).RiskScore)
			}
		}()
	}
	wg.Wait()
}
