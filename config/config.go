// Package config loads runtime settings from the environment and policy
// definitions from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"covcall/backtest"
)

// Config is the process configuration, read from COVCALL_* environment
// variables. A .env file is honored when present.
type Config struct {
	Env          string  `envconfig:"ENV" default:"development"`
	LogLevel     string  `envconfig:"LOG_LEVEL" default:"info"`
	RiskFreeRate float64 `envconfig:"RISK_FREE_RATE" default:"0.05"`
	RiskProfile  string  `envconfig:"RISK_PROFILE" default:"moderate"`
	PolicyFile   string  `envconfig:"POLICY_FILE"`
	OutputFile   string  `envconfig:"OUTPUT_FILE" default:"backtest_results.json"`
	ShowProgress bool    `envconfig:"SHOW_PROGRESS" default:"true"`

	SlackBotToken string `envconfig:"SLACK_BOT_TOKEN"`
	SlackChannel  string `envconfig:"SLACK_CHANNEL"`
}

func Load() (Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("covcall", &cfg); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}
	return cfg, nil
}

type policyFile struct {
	Policies []backtest.Policy `yaml:"policies"`
}

// LoadPolicies reads a policy list from YAML, falling back to the
// built-in defaults when path is empty.
func LoadPolicies(path string) ([]backtest.Policy, error) {
	if path == "" {
		return backtest.DefaultPolicies(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}
	if len(pf.Policies) == 0 {
		return backtest.DefaultPolicies(), nil
	}
	return pf.Policies, nil
}
