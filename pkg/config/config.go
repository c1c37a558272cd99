package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/meridianfi/txlifecycle/pkg/validation"
	"github.com/shopspring/decimal"
)

// Config carries everything the coordinator needs to start.
type Config struct {
	HTTPPort string

	// Wallet provider.
	RPCURL     string
	SigningKey string

	// Backend record store endpoints.
	LedgerPrimaryURL string
	LedgerLegacyURL  string

	// Local state.
	DataDir string

	// Staking.
	StakingPoolAddress string

	TransferRules validation.AmountRules
	StakeRules    validation.AmountRules
}

// Load reads configuration from the environment, after loading a .env file if
// one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RPCURL:             os.Getenv("RPC_URL"),
		SigningKey:         os.Getenv("SIGNING_KEY"),
		LedgerPrimaryURL:   os.Getenv("LEDGER_PRIMARY_URL"),
		LedgerLegacyURL:    os.Getenv("LEDGER_LEGACY_URL"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		StakingPoolAddress: os.Getenv("STAKING_POOL_ADDRESS"),
	}

	for name, value := range map[string]string{
		"RPC_URL":            cfg.RPCURL,
		"SIGNING_KEY":        cfg.SigningKey,
		"LEDGER_PRIMARY_URL": cfg.LedgerPrimaryURL,
	} {
		if value == "" {
			return nil, fmt.Errorf("required environment variable %s is not set", name)
		}
	}

	var err error
	if cfg.TransferRules, err = loadRules("TRANSFER_MIN", "TRANSFER_MAX"); err != nil {
		return nil, err
	}
	if cfg.StakeRules, err = loadRules("STAKE_MIN", "STAKE_MAX"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadRules(minVar, maxVar string) (validation.AmountRules, error) {
	var rules validation.AmountRules
	var err error

	if raw := os.Getenv(minVar); raw != "" {
		if rules.Min, err = decimal.NewFromString(raw); err != nil {
			return rules, fmt.Errorf("invalid %s %q: %w", minVar, raw, err)
		}
	}
	if raw := os.Getenv(maxVar); raw != "" {
		if rules.Max, err = decimal.NewFromString(raw); err != nil {
			return rules, fmt.Errorf("invalid %s %q: %w", maxVar, raw, err)
		}
	}
	return rules, nil
}

func getEnv(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
