package config

import (
	"fmt"
	"strings"

	"milkchain/storage"
)

// MaxDecimals bounds the token decimals so whole-token scaling stays well
// inside 256 bits.
var MaxDecimals = uint8(36)

func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}
	if strings.TrimSpace(cfg.Token.Symbol) == "" {
		return fmt.Errorf("token: symbol must not be empty")
	}
	if cfg.Token.Decimals == 0 {
		return fmt.Errorf("token: decimals must be positive")
	}
	if cfg.Token.Decimals > MaxDecimals {
		return fmt.Errorf("token: decimals %d exceeds %d", cfg.Token.Decimals, MaxDecimals)
	}
	if cfg.Factory.CooldownSec == 0 {
		return fmt.Errorf("factory: cooldown must be positive")
	}
	if err := cfg.RarityThresholds().Validate(); err != nil {
		return fmt.Errorf("rarity: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Database)) {
	case storage.BackendLevelDB, storage.BackendBolt, storage.BackendMemory:
	default:
		return fmt.Errorf("database: unknown backend %q", cfg.Database)
	}
	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry: sample ratio must be within [0, 1]")
	}
	if cfg.Telemetry.MetricIntervalSec < 0 {
		return fmt.Errorf("telemetry: metric interval cannot be negative")
	}
	if cfg.RateLimit.RequestsPerMinute < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: values must not be negative")
	}
	if cfg.Auth.Enabled && strings.TrimSpace(cfg.Auth.HMACSecret) == "" {
		return fmt.Errorf("auth: HMACSecret required when enabled")
	}
	return nil
}
