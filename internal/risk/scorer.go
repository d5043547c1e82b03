// Package risk scores seizure risk from physiological samples with a fixed
// rule table.
//
// Five factors are scored independently into [0,1]: heart-rate variability,
// heart rate, movement, sleep and medication adherence. Their weighted sum
// is clamped to [0,1], rounded to three decimals and placed in a band by two
// thresholds. Weights are used as configured; if they do not sum to 1 the
// score is scaled accordingly and only then clamped.
package risk

import (
	"math"
	"time"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/config"
)

const (
	messageLow    = "Low risk: everything stable."
	messageMedium = "Moderate risk: keep monitoring."
	messageHigh   = "High risk: follow your safety plan."
)

// Scorer is immutable after construction and safe for concurrent use.
type Scorer struct {
	low, high float64
	weights   config.RiskWeights
	now       func() time.Time
}

func NewScorer(cfg config.RiskConfig) *Scorer {
	return &Scorer{
		low:     cfg.LowThreshold,
		high:    cfg.HighThreshold,
		weights: cfg.Weights,
		now:     time.Now,
	}
}

// Score evaluates s. The input must already be range-checked; Score has
// no failure path.
func (sc *Scorer) Score(s Sample) Assessment {
	f := Factors{
		HRV:        hrvRisk(s.HRV),
		HeartRate:  heartRateRisk(s.HeartRate),
		Movement:   movementRisk(s.Movement),
		Sleep:      sleepRisk(s.SleepHours),
		Medication: medicationRisk(s.MedicationTaken),
	}
	w := sc.weights
	total := f.HRV*w.HRV +
		f.HeartRate*w.HeartRate +
		f.Movement*w.Movement +
		f.Sleep*w.Sleep +
		f.Medication*w.Medication

	score := round3(clamp01(total))
	level, msg := sc.Categorize(score)

	ts := sc.now()
	if s.Timestamp != nil {
		ts = *s.Timestamp
	}
	return Assessment{
		RiskScore: score,
		RiskLevel: level,
		Message:   msg,
		Timestamp: ts,
		Factors:   f,
	}
}

// Categorize places score in a band: below low is low, from low up to
// (excluding) high is medium, high and above is high.
func (sc *Scorer) Categorize(score float64) (Level, string) {
	switch {
	case score < sc.low:
		return LevelLow, messageLow
	case score < sc.high:
		return LevelMedium, messageMedium
	default:
		return LevelHigh, messageHigh
	}
}

// Low HRV indicates stress.
func hrvRisk(hrv float64) float64 {
	switch {
	case hrv >= 60:
		return 0.0
	case hrv >= 40:
		return 0.3
	case hrv >= 25:
		return 0.6
	default:
		return 0.9
	}
}

func heartRateRisk(hr int) float64 {
	switch {
	case hr >= 60 && hr <= 85:
		return 0.1
	case (hr >= 50 && hr < 60) || (hr > 85 && hr <= 100):
		return 0.4
	case (hr >= 40 && hr < 50) || (hr > 100 && hr <= 120):
		return 0.7
	default:
		return 1.0
	}
}

// Both very low and very high activity can precede a seizure.
func movementRisk(m float64) float64 {
	switch {
	case m >= 80 && m <= 180:
		return 0.1
	case (m >= 50 && m < 80) || (m > 180 && m <= 250):
		return 0.4
	case (m >= 20 && m < 50) || (m > 250 && m <= 350):
		return 0.7
	default:
		return 0.9
	}
}

func sleepRisk(h float64) float64 {
	switch {
	case h >= 7 && h <= 9:
		return 0.0
	case (h >= 6 && h < 7) || (h > 9 && h <= 10):
		return 0.3
	case (h >= 5 && h < 6) || (h > 10 && h <= 11):
		return 0.6
	case h >= 4 && h < 5:
		return 0.8
	default:
		return 1.0
	}
}

func medicationRisk(taken bool) float64 {
	if taken {
		return 0.0
	}
	return 1.0
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
