package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/apperror"
)

// RiskWeights are the per-factor multipliers of the risk score. They are
// not required to sum to 1.
type RiskWeights struct {
	HRV        float64
	HeartRate  float64
	Movement   float64
	Sleep      float64
	Medication float64
}

// Sum returns the total of all weights.
func (w RiskWeights) Sum() float64 {
	return w.HRV + w.HeartRate + w.Movement + w.Sleep + w.Medication
}

// RiskConfig holds the scorer thresholds and weights.
type RiskConfig struct {
	LowThreshold  float64
	HighThreshold float64
	Weights       RiskWeights
}

// Config is built once at startup and shared read-only by every component.
type Config struct {
	AppName    string
	AppVersion string
	Debug      bool
	HTTPAddr   string
	StaticDir  string

	SecretKey         string
	Algorithm         string
	AccessTokenTTL    time.Duration
	AdminUsername     string
	AdminPasswordHash string
	HashWorkers       int

	CORSOrigins []string

	Risk RiskConfig
}

// Defaults returns a Config with development defaults. The secret key is
// a placeholder and must be overridden in production.
func Defaults() Config {
	return Config{
		AppName:        "Epilepsy Seizure Prediction API",
		AppVersion:     "1.0.0",
		Debug:          true,
		HTTPAddr:       "0.0.0.0:8000",
		StaticDir:      "frontend",
		SecretKey:      "CHANGE-THIS-SECRET-KEY-IN-PRODUCTION-USE-LONG-RANDOM-STRING",
		Algorithm:      "HS256",
		AccessTokenTTL: 1440 * time.Minute,
		AdminUsername:  "admin",
		HashWorkers:    runtime.GOMAXPROCS(0),
		CORSOrigins:    []string{"*"},
		Risk: RiskConfig{
			LowThreshold:  0.33,
			HighThreshold: 0.67,
			Weights: RiskWeights{
				HRV:        0.25,
				HeartRate:  0.20,
				Movement:   0.15,
				Sleep:      0.25,
				Medication: 0.15,
			},
		},
	}
}

// ConfigFromEnv overlays environment variables on Defaults. Call
// godotenv.Load beforehand to pick values from a .env file.
func ConfigFromEnv() (*Config, error) {
	cfg := Defaults()
	var errs []string

	cfg.AppName = getenv("APP_NAME", cfg.AppName)
	cfg.AppVersion = getenv("APP_VERSION", cfg.AppVersion)
	cfg.Debug = getenvBool("DEBUG", cfg.Debug, &errs)
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.StaticDir = getenv("STATIC_DIR", cfg.StaticDir)

	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		cfg.SecretKey = v
	}
	cfg.Algorithm = strings.ToUpper(getenv("ALGORITHM", cfg.Algorithm))
	minutes := getenvInt("ACCESS_TOKEN_EXPIRE_MINUTES", int(cfg.AccessTokenTTL/time.Minute), &errs)
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute
	cfg.AdminUsername = getenv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPasswordHash = strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH"))
	cfg.HashWorkers = getenvInt("HASH_WORKERS", cfg.HashWorkers, &errs)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	cfg.Risk.LowThreshold = getenvFloat("LOW_RISK_THRESHOLD", cfg.Risk.LowThreshold, &errs)
	cfg.Risk.HighThreshold = getenvFloat("HIGH_RISK_THRESHOLD", cfg.Risk.HighThreshold, &errs)
	w := &cfg.Risk.Weights
	w.HRV = getenvFloat("WEIGHT_HRV", w.HRV, &errs)
	w.HeartRate = getenvFloat("WEIGHT_HEART_RATE", w.HeartRate, &errs)
	w.Movement = getenvFloat("WEIGHT_MOVEMENT", w.Movement, &errs)
	w.Sleep = getenvFloat("WEIGHT_SLEEP", w.Sleep, &errs)
	w.Medication = getenvFloat("WEIGHT_MEDICATION", w.Medication, &errs)

	if len(errs) > 0 {
		return nil, apperror.NewConfigError("invalid environment: "+strings.Join(errs, "; "), nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the settings without which the service must not start.
// An unset admin password hash is allowed here; login surfaces it instead.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return apperror.NewConfigError("SECRET_KEY is not set", nil)
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return apperror.NewConfigError(fmt.Sprintf("unsupported signing algorithm %q", c.Algorithm), nil)
	}
	if c.AccessTokenTTL <= 0 {
		return apperror.NewConfigError("ACCESS_TOKEN_EXPIRE_MINUTES must be positive", nil)
	}
	if c.HashWorkers < 1 {
		return apperror.NewConfigError("HASH_WORKERS must be at least 1", nil)
	}
	r := c.Risk
	for name, v := range map[string]float64{
		"LOW_RISK_THRESHOLD":  r.LowThreshold,
		"HIGH_RISK_THRESHOLD": r.HighThreshold,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperror.NewConfigError(fmt.Sprintf("%s must be a finite number", name), nil)
		}
	}
	if r.LowThreshold < 0 || r.HighThreshold > 1 || r.LowThreshold >= r.HighThreshold {
		return apperror.NewConfigError(
			fmt.Sprintf("risk thresholds must satisfy 0 <= low < high <= 1, got low=%v high=%v", r.LowThreshold, r.HighThreshold), nil)
	}
	for name, v := range map[string]float64{
		"WEIGHT_HRV":        r.Weights.HRV,
		"WEIGHT_HEART_RATE": r.Weights.HeartRate,
		"WEIGHT_MOVEMENT":   r.Weights.Movement,
		"WEIGHT_SLEEP":      r.Weights.Sleep,
		"WEIGHT_MEDICATION": r.Weights.Medication,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return apperror.NewConfigError(fmt.Sprintf("%s must be a non-negative number", name), nil)
		}
	}
	return nil
}

// WeightsNormalized reports whether the weights sum to 1 within rounding.
// Scores are clamped, never normalized, so a false result is a likely
// misconfiguration worth a startup warning.
func (c *Config) WeightsNormalized() bool {
	return math.Abs(c.Risk.Weights.Sum()-1) < 1e-9
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvBool(key string, fallback bool, errs *[]string) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return fallback
	}
	return b
}

func getenvInt(key string, fallback int, errs *[]string) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64, errs *[]string) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return fallback
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
