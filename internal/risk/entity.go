package risk

import "time"

// Level is the categorical risk band.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Sample is one set of physiological readings from the wearable.
type Sample struct {
	HRV             float64    `json:"hrv"`
	HeartRate       int        `json:"heart_rate"`
	Movement        float64    `json:"movement"`
	SleepHours      float64    `json:"sleep_hours"`
	MedicationTaken bool       `json:"medication_taken"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

// Factors are the per-factor sub-scores, each in [0,1], before weighting.
type Factors struct {
	HRV        float64 `json:"hrv"`
	HeartRate  float64 `json:"heart_rate"`
	Movement   float64 `json:"movement"`
	Sleep      float64 `json:"sleep"`
	Medication float64 `json:"medication"`
}

// Assessment is the result of scoring one Sample.
type Assessment struct {
	RiskScore float64   `json:"risk_score"`
	RiskLevel Level     `json:"risk_level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Factors   Factors   `json:"factors"`
}

// SampleRequest is the JSON body of a prediction request. Pointer fields
// let validation tell a missing field from a zero reading.
type SampleRequest struct {
	HRV             *float64   `json:"hrv" validate:"required,gte=0,lte=200"`
	HeartRate       *int       `json:"heart_rate" validate:"required,gte=30,lte=220"`
	Movement        *float64   `json:"movement" validate:"required,gte=0"`
	SleepHours      *float64   `json:"sleep_hours" validate:"required,gte=0,lte=24"`
	MedicationTaken *bool      `json:"medication_taken" validate:"required"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

// Sample converts a validated request. Call only after validation passed.
func (r SampleRequest) Sample() Sample {
	return Sample{
		HRV:             *r.HRV,
		HeartRate:       *r.HeartRate,
		Movement:        *r.Movement,
		SleepHours:      *r.SleepHours,
		MedicationTaken: *r.MedicationTaken,
		Timestamp:       r.Timestamp,
	}
}
