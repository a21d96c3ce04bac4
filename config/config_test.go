package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, ":8645", cfg.RPCAddress)
	require.NotEmpty(t, cfg.Genesis.RewardRate)
	require.NoError(t, cfg.Validate())

	// A second load reads the file that was just written.
	reread, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RPCAddress, reread.RPCAddress)
	require.Equal(t, cfg.Genesis, reread.Genesis)
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	raw := `
RPCAddress = ":9999"
DataDir = "/tmp/mvs"
Environment = "test"
OwnerAddress = "0x00000000000000000000000000000000000000aa"

[Genesis]
RewardTokenName = "MetaGameHub"
RewardTokenSymbol = "MGH"
StakingTokenName = "Pool Token"
StakingTokenSymbol = "UNI-V2"
NativeCurrency = false
EpochStart = 1700000000
EpochLength = 2419200
WithdrawLength = 604800
RewardRate = "31449600"
MaximumStakingAmount = "1000000000000000000000000"
NFTName = "Staking NFT"
NFTSymbol = "LPNFT"
NFTURI = "ipfs://staking"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.RPCAddress)
	require.Equal(t, "/tmp/mvs", cfg.DataDir)
	require.Equal(t, uint64(1700000000), cfg.Genesis.EpochStart)

	rate, err := cfg.Genesis.RewardRateInt()
	require.NoError(t, err)
	require.Zero(t, rate.Cmp(big.NewInt(31449600)))

	maxStake, err := cfg.Genesis.MaximumStakingAmountInt()
	require.NoError(t, err)
	expected, _ := new(big.Int).SetString("1000000000000000000000000", 10)
	require.Zero(t, maxStake.Cmp(expected))
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	raw := `
OwnerAddress = "0x00000000000000000000000000000000000000aa"

[Genesis]
EpochLength = 1000
WithdrawLength = 100
RewardRate = "1"
MaximumStakingAmount = "1000"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8645", cfg.RPCAddress)
	require.Equal(t, "./data", cfg.DataDir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			RPCAddress:   ":8645",
			OwnerAddress: "0x00000000000000000000000000000000000000aa",
			Genesis: Genesis{
				EpochLength:          1000,
				WithdrawLength:       100,
				RewardRate:           "1",
				MaximumStakingAmount: "1000",
			},
		}
	}

	cfg := base()
	cfg.OwnerAddress = ""
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Genesis.EpochLength = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Genesis.WithdrawLength = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Genesis.RewardRate = "not-a-number"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Genesis.MaximumStakingAmount = "-5"
	require.Error(t, cfg.Validate())
}
