package config

// Token describes the fungible token served by the ledger.
type Token struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Factory configures the item factory.
type Factory struct {
	URI         string
	CooldownSec uint64
}

// Rarity holds the thresholds in effect until an administrator sets new ones.
type Rarity struct {
	Common    uint64 `yaml:"common"`
	Uncommon  uint64 `yaml:"uncommon"`
	Rare      uint64 `yaml:"rare"`
	Epic      uint64 `yaml:"epic"`
	Legendary uint64 `yaml:"legendary"`
	MaxRoll   uint64 `yaml:"maxRoll"`
}

// Pauses lists the native modules that refuse mutations.
type Pauses struct {
	Milk        bool
	ItemFactory bool
}

// RateLimit bounds per-client request rates on the HTTP surface. Zero
// RequestsPerMinute disables limiting.
type RateLimit struct {
	RequestsPerMinute float64
	Burst             int
}

// Telemetry controls the optional OTLP exporters.
type Telemetry struct {
	Endpoint          string
	Insecure          bool
	Headers           string
	Traces            bool
	Metrics           bool
	SampleRatio       float64
	MetricIntervalSec int
}

// Auth enables the bearer-token protected mutation routes. The token subject
// is the caller account.
type Auth struct {
	Enabled      bool
	HMACSecret   string
	Issuer       string
	Audience     string
	ClockSkewSec int
}
