package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covcall/backtest"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, 0.05, cfg.RiskFreeRate, 1e-12)
	assert.Equal(t, "moderate", cfg.RiskProfile)
	assert.True(t, cfg.ShowProgress)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("COVCALL_RISK_PROFILE", "aggressive")
	t.Setenv("COVCALL_RISK_FREE_RATE", "0.04")
	t.Setenv("COVCALL_SHOW_PROGRESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "aggressive", cfg.RiskProfile)
	assert.InDelta(t, 0.04, cfg.RiskFreeRate, 1e-12)
	assert.False(t, cfg.ShowProgress)
}

func TestLoadPolicies_EmptyPathUsesDefaults(t *testing.T) {
	policies, err := LoadPolicies("")
	require.NoError(t, err)
	assert.Equal(t, backtest.DefaultPolicies(), policies)
}

func TestLoadPolicies_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
policies:
  - label: "Weekly ATM"
    otm_percent: 0.0
    days: 7
  - label: "Monthly 5% OTM"
    otm_percent: 0.05
    days: 30
`), 0o644))

	policies, err := LoadPolicies(path)
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, "Weekly ATM", policies[0].Label)
	assert.Equal(t, 7, policies[0].Days)
	assert.InDelta(t, 0.05, policies[1].OTMPercent, 1e-12)
}

func TestLoadPolicies_EmptyListUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policies: []\n"), 0o644))

	policies, err := LoadPolicies(path)
	require.NoError(t, err)
	assert.Equal(t, backtest.DefaultPolicies(), policies)
}

func TestLoadPolicies_Errors(t *testing.T) {
	_, err := LoadPolicies(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policies: {not: [valid"), 0o644))
	_, err = LoadPolicies(path)
	assert.Error(t, err)
}
