package config

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/apperror"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, 1440*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Empty(t, cfg.AdminPasswordHash)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.InDelta(t, 0.33, cfg.Risk.LowThreshold, 1e-9)
	assert.InDelta(t, 0.67, cfg.Risk.HighThreshold, 1e-9)
	assert.True(t, cfg.WeightsNormalized())
	assert.GreaterOrEqual(t, cfg.HashWorkers, 1)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("ADMIN_PASSWORD_HASH", " $2a$10$abc ")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOW_RISK_THRESHOLD", "0.2")
	t.Setenv("HIGH_RISK_THRESHOLD", "0.8")
	t.Setenv("WEIGHT_SLEEP", "0.5")
	t.Setenv("HASH_WORKERS", "2")
	t.Setenv("DEBUG", "false")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.SecretKey)
	assert.Equal(t, "HS512", cfg.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "root", cfg.AdminUsername)
	assert.Equal(t, "$2a$10$abc", cfg.AdminPasswordHash)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.InDelta(t, 0.2, cfg.Risk.LowThreshold, 1e-9)
	assert.InDelta(t, 0.8, cfg.Risk.HighThreshold, 1e-9)
	assert.InDelta(t, 0.5, cfg.Risk.Weights.Sleep, 1e-9)
	assert.Equal(t, 2, cfg.HashWorkers)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.WeightsNormalized())
}

func TestConfigFromEnvEmptySecretFailsFast(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := ConfigFromEnv()
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ConfigurationError))
}

func TestConfigFromEnvBadNumber(t *testing.T) {
	t.Setenv("WEIGHT_HRV", "heavy")

	_, err := ConfigFromEnv()
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ConfigurationError))
	assert.Contains(t, err.Error(), "WEIGHT_HRV")
}

func TestConfigFromEnvNaNThreshold(t *testing.T) {
	t.Setenv("LOW_RISK_THRESHOLD", "NaN")
	t.Setenv("HIGH_RISK_THRESHOLD", "NaN")
	_, err := ConfigFromEnv()
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ConfigurationError))
	assert.Contains(t, err.Error(), "RISK_THRESHOLD must be a finite number")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unsupported algorithm", func(c *Config) { c.Algorithm = "RS256" }},
		{"zero ttl", func(c *Config) { c.AccessTokenTTL = 0 }},
		{"inverted thresholds", func(c *Config) { c.Risk.LowThreshold, c.Risk.HighThreshold = 0.7, 0.3 }},
		{"equal thresholds", func(c *Config) { c.Risk.LowThreshold, c.Risk.HighThreshold = 0.5, 0.5 }},
		{"threshold above one", func(c *Config) { c.Risk.HighThreshold = 1.5 }},
		{"NaN low threshold", func(c *Config) { c.Risk.LowThreshold = math.NaN() }},
		{"NaN high threshold", func(c *Config) { c.Risk.HighThreshold = math.NaN() }},
		{"infinite low threshold", func(c *Config) { c.Risk.LowThreshold = math.Inf(-1) }},
		{"negative weight", func(c *Config) { c.Risk.Weights.Movement = -0.1 }},
		{"no hash workers", func(c *Config) { c.HashWorkers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.ConfigurationError))
		})
	}

	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}
