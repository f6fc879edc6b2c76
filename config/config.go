package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"milkchain/storage"
)

type Config struct {
	HTTPAddress string `toml:"HTTPAddress"`
	DataDir     string `toml:"DataDir"`
	Database    string `toml:"Database"`
	GenesisFile string `toml:"GenesisFile"`
	Env         string `toml:"Env"`
	LogLevel    string `toml:"LogLevel"`
	LogFile     string `toml:"LogFile"`

	Token     Token     `toml:"token"`
	Factory   Factory   `toml:"factory"`
	Rarity    Rarity    `toml:"rarity"`
	Pauses    Pauses    `toml:"pauses"`
	RateLimit RateLimit `toml:"rate_limit"`
	Telemetry Telemetry `toml:"telemetry"`
	Auth      Auth      `toml:"auth"`
}

// Load loads the configuration from the given path. A default file is written
// when none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	} else if err != nil {
		return nil, err
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown key %s", path, undecoded[0].String())
	}

	cfg.applyDefaults()
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration written for a fresh node.
func Default() *Config {
	return &Config{
		HTTPAddress: ":8080",
		DataDir:     "./milk-data",
		Database:    storage.BackendLevelDB,
		GenesisFile: "",
		Env:         "local",
		LogLevel:    "info",
		Token: Token{
			Name:     "Milk",
			Symbol:   "MILK",
			Decimals: 18,
		},
		Factory: Factory{
			URI:         "",
			CooldownSec: 86400,
		},
		Rarity: Rarity{
			Common:    60,
			Uncommon:  80,
			Rare:      90,
			Epic:      98,
			Legendary: 100,
			MaxRoll:   100,
		},
		RateLimit: RateLimit{
			RequestsPerMinute: 600,
			Burst:             50,
		},
		Telemetry: Telemetry{
			Endpoint:          "localhost:4318",
			SampleRatio:       1,
			MetricIntervalSec: 15,
		},
		Auth: Auth{
			ClockSkewSec: 120,
		},
	}
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Database) == "" {
		c.Database = storage.BackendLevelDB
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./milk-data"
	}
	if strings.TrimSpace(c.Token.Name) == "" {
		c.Token.Name = "Milk"
	}
	c.Token.Symbol = strings.ToUpper(strings.TrimSpace(c.Token.Symbol))
	c.Auth.HMACSecret = strings.TrimSpace(c.Auth.HMACSecret)
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
