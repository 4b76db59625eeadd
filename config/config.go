/*
Package config loads runtime configuration from the environment.

PURPOSE:
  Small env-based configuration with a .env file for local development.
  Flags in cmd/server override these values, so `go run ./cmd/server` works
  with no setup at all.

POLICY OVERRIDES:
  REFUND_POLICY_FILE may point at a JSON file overriding the built-in
  cancellation policy table, e.g.:

    {
      "FLEXIBLE": {"full_refund_until_days": 14},
      "MODERATE": {"full_refund_until_days": 5, "partial_refund_until_days": 2}
    }

  A partial tier without an explicit percentage defaults to 50. Policies
  absent from the file keep their defaults.
*/
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tripline/refund-engine/refund"
)

// Config holds all runtime configuration.
type Config struct {
	Port       string
	DBPath     string
	LogLevel   string
	Currency   string
	PolicyFile string
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() Config {
	// Missing .env is fine; env vars and defaults still apply.
	_ = godotenv.Load()

	return Config{
		Port:       getEnv("PORT", "8080"),
		DBPath:     getEnv("REFUND_DB_PATH", "refunds.db"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Currency:   getEnv("REFUND_CURRENCY", "USD"),
		PolicyFile: getEnv("REFUND_POLICY_FILE", ""),
	}
}

// PolicyTable returns the effective cancellation policy table: the defaults,
// overlaid with the policy file when one is configured.
func (c Config) PolicyTable() (refund.PolicyTable, error) {
	table := refund.DefaultPolicyTable()
	if c.PolicyFile == "" {
		return table, nil
	}

	data, err := os.ReadFile(c.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("read policy file %s: %w", c.PolicyFile, err)
	}

	overrides, err := ParsePolicyTable(data)
	if err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", c.PolicyFile, err)
	}
	for pt, rule := range overrides {
		table[pt] = rule
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("policy file %s: %w", c.PolicyFile, err)
	}
	return table, nil
}

// ParsePolicyTable decodes a JSON policy table, applying the default partial
// percentage where a partial tier exists without an explicit one.
func ParsePolicyTable(data []byte) (refund.PolicyTable, error) {
	var raw map[refund.PolicyType]struct {
		FullRefundDays       int  `json:"full_refund_until_days"`
		PartialRefundDays    *int `json:"partial_refund_until_days"`
		PartialRefundPercent *int `json:"partial_refund_percentage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	table := make(refund.PolicyTable, len(raw))
	for pt, r := range raw {
		rule := refund.PolicyRule{
			FullRefundDays:    r.FullRefundDays,
			PartialRefundDays: r.PartialRefundDays,
		}
		switch {
		case r.PartialRefundPercent != nil:
			rule.PartialRefundPercent = *r.PartialRefundPercent
		case r.PartialRefundDays != nil:
			rule.PartialRefundPercent = refund.DefaultPartialPercent
		}
		table[pt] = rule
	}
	return table, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
