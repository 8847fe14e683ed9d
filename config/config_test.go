package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Env:                   "development",
		JWTSecret:             "s3cret",
		StoreDriver:           "memory",
		Timezone:              "Asia/Kolkata",
		PendingBookingTimeout: 15 * time.Minute,
		CancellationCutoff:    2 * time.Hour,
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cases := map[string]func(c *Config){
		"unknown store":          func(c *Config) { c.StoreDriver = "sqlite" },
		"zero pending timeout":   func(c *Config) { c.PendingBookingTimeout = 0 },
		"negative cutoff":        func(c *Config) { c.CancellationCutoff = -time.Minute },
		"bad timezone":           func(c *Config) { c.Timezone = "Mars/Olympus" },
		"missing secret in dev":  func(c *Config) { c.JWTSecret = "" },
		"missing secret in prod": func(c *Config) { c.JWTSecret = ""; c.Env = "production" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_TestEnvMayOmitSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "test"
	cfg.JWTSecret = ""
	assert.NoError(t, cfg.Validate())
}
