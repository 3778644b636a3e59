// Package config loads casino settings from HCL files.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete casino configuration.
type Config struct {
	Casino   CasinoSettings   `hcl:"casino,block"`
	Poker    PokerSettings    `hcl:"poker,block"`
	Roulette RouletteSettings `hcl:"roulette,block"`
}

// CasinoSettings contains room-level configuration.
type CasinoSettings struct {
	MaxSeats   int    `hcl:"max_seats,optional"`
	BotBalance int    `hcl:"bot_balance,optional"`
	LogLevel   string `hcl:"log_level,optional"`
}

// PokerSettings defines the poker table stakes.
type PokerSettings struct {
	SmallBlind int `hcl:"small_blind,optional"`
	BigBlind   int `hcl:"big_blind,optional"`
}

// RouletteSettings defines roulette timing.
type RouletteSettings struct {
	SpinSeconds int `hcl:"spin_seconds,optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Casino:   CasinoSettings{MaxSeats: 8, BotBalance: 1000, LogLevel: "info"},
		Poker:    PokerSettings{SmallBlind: 10, BigBlind: 20},
		Roulette: RouletteSettings{SpinSeconds: 5},
	}
}

// fileConfig mirrors Config with optional blocks, so a file may set only
// the sections it cares about.
type fileConfig struct {
	Casino   *CasinoSettings   `hcl:"casino,block"`
	Poker    *PokerSettings    `hcl:"poker,block"`
	Roulette *RouletteSettings `hcl:"roulette,block"`
}

// Load reads configuration from an HCL file, falling back to defaults when
// the file does not exist or omits values.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	var cfg Config
	if raw.Casino != nil {
		cfg.Casino = *raw.Casino
	}
	if raw.Poker != nil {
		cfg.Poker = *raw.Poker
	}
	if raw.Roulette != nil {
		cfg.Roulette = *raw.Roulette
	}

	defaults := Default()
	if cfg.Casino.MaxSeats == 0 {
		cfg.Casino.MaxSeats = defaults.Casino.MaxSeats
	}
	if cfg.Casino.BotBalance == 0 {
		cfg.Casino.BotBalance = defaults.Casino.BotBalance
	}
	if cfg.Casino.LogLevel == "" {
		cfg.Casino.LogLevel = defaults.Casino.LogLevel
	}
	if cfg.Poker.SmallBlind == 0 {
		cfg.Poker.SmallBlind = defaults.Poker.SmallBlind
	}
	if cfg.Poker.BigBlind == 0 {
		cfg.Poker.BigBlind = defaults.Poker.BigBlind
	}
	if cfg.Roulette.SpinSeconds == 0 {
		cfg.Roulette.SpinSeconds = defaults.Roulette.SpinSeconds
	}

	return &cfg, nil
}

// Validate checks the configuration for nonsense values.
func (c *Config) Validate() error {
	if c.Casino.MaxSeats < 1 || c.Casino.MaxSeats > 8 {
		return fmt.Errorf("max_seats must be between 1 and 8, got %d", c.Casino.MaxSeats)
	}
	if c.Casino.BotBalance <= 0 {
		return fmt.Errorf("bot_balance must be positive, got %d", c.Casino.BotBalance)
	}
	if c.Poker.SmallBlind <= 0 {
		return fmt.Errorf("small_blind must be positive, got %d", c.Poker.SmallBlind)
	}
	if c.Poker.BigBlind <= c.Poker.SmallBlind {
		return fmt.Errorf("big_blind (%d) must be greater than small_blind (%d)", c.Poker.BigBlind, c.Poker.SmallBlind)
	}
	if c.Roulette.SpinSeconds < 0 {
		return fmt.Errorf("spin_seconds cannot be negative, got %d", c.Roulette.SpinSeconds)
	}
	return nil
}
