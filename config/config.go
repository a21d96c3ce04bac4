package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration. Genesis parameters are applied
// once, on first start against an empty data directory.
type Config struct {
	RPCAddress   string  `toml:"RPCAddress"`
	DataDir      string  `toml:"DataDir"`
	Environment  string  `toml:"Environment"`
	OwnerAddress string  `toml:"OwnerAddress"`
	Genesis      Genesis `toml:"Genesis"`
}

// Genesis holds the one-time initialization parameters of the ledger.
type Genesis struct {
	RewardTokenName   string `toml:"RewardTokenName"`
	RewardTokenSymbol string `toml:"RewardTokenSymbol"`
	StakingTokenName  string `toml:"StakingTokenName"`
	StakingTokenSymbol string `toml:"StakingTokenSymbol"`
	// NativeCurrency selects the attached-payment funding mode instead
	// of the pull-transfer token mode.
	NativeCurrency bool `toml:"NativeCurrency"`

	EpochStart     uint64 `toml:"EpochStart"`
	EpochLength    uint64 `toml:"EpochLength"`
	WithdrawLength uint64 `toml:"WithdrawLength"`
	// RewardRate is denominated in reward units per staked unit and
	// year, as a decimal string.
	RewardRate string `toml:"RewardRate"`
	// MaximumStakingAmount caps the global staked total, decimal string.
	MaximumStakingAmount string `toml:"MaximumStakingAmount"`

	NFTName   string `toml:"NFTName"`
	NFTSymbol string `toml:"NFTSymbol"`
	NFTURI    string `toml:"NFTURI"`
}

// Load loads the configuration from the given path, creating a default
// file when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for self-consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress is required")
	}
	if strings.TrimSpace(c.OwnerAddress) == "" {
		return fmt.Errorf("config: OwnerAddress is required")
	}
	if c.Genesis.EpochLength == 0 {
		return fmt.Errorf("config: Genesis.EpochLength must be greater than zero")
	}
	if c.Genesis.WithdrawLength == 0 {
		return fmt.Errorf("config: Genesis.WithdrawLength must be greater than zero")
	}
	if _, err := c.Genesis.RewardRateInt(); err != nil {
		return err
	}
	if _, err := c.Genesis.MaximumStakingAmountInt(); err != nil {
		return err
	}
	return nil
}

// RewardRateInt parses the genesis reward rate.
func (g Genesis) RewardRateInt() (*big.Int, error) {
	return parseAmount("Genesis.RewardRate", g.RewardRate)
}

// MaximumStakingAmountInt parses the genesis staking cap.
func (g Genesis) MaximumStakingAmountInt() (*big.Int, error) {
	return parseAmount("Genesis.MaximumStakingAmount", g.MaximumStakingAmount)
}

func parseAmount(field, raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("config: %s is required", field)
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("config: %s must be a non-negative decimal number", field)
	}
	return value, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:   ":8645",
		DataDir:      "./data",
		Environment:  "local",
		OwnerAddress: "0x0000000000000000000000000000000000000001",
		Genesis: Genesis{
			RewardTokenName:      "MetaGameHub",
			RewardTokenSymbol:    "MGH",
			StakingTokenName:     "Staking Token",
			StakingTokenSymbol:   "TST",
			EpochLength:          2_419_200,
			WithdrawLength:       604_800,
			RewardRate:           "31449600",
			MaximumStakingAmount: "1000000000000000000000000",
			NFTName:              "Staking NFT",
			NFTSymbol:            "LPNFT",
			NFTURI:               "ipfs://",
		},
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
