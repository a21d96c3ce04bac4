package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"mvstaking/config"
	"mvstaking/core"
	"mvstaking/core/epoch"
	"mvstaking/observability/logging"
	"mvstaking/rpc"
	"mvstaking/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("MVS_ENV"))
	logger := logging.Setup("mvsd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	rewardRate, err := cfg.Genesis.RewardRateInt()
	if err != nil {
		logger.Error("Invalid reward rate", slog.Any("error", err))
		os.Exit(1)
	}
	maxStake, err := cfg.Genesis.MaximumStakingAmountInt()
	if err != nil {
		logger.Error("Invalid maximum staking amount", slog.Any("error", err))
		os.Exit(1)
	}

	owner := common.HexToAddress(cfg.OwnerAddress)
	node := core.NewNode(db, owner, logger)
	genesis := core.GenesisConfig{
		RewardTokenName:    cfg.Genesis.RewardTokenName,
		RewardTokenSymbol:  cfg.Genesis.RewardTokenSymbol,
		StakingTokenName:   cfg.Genesis.StakingTokenName,
		StakingTokenSymbol: cfg.Genesis.StakingTokenSymbol,
		NativeCurrency:     cfg.Genesis.NativeCurrency,
		Epoch: epoch.Config{
			Start:          cfg.Genesis.EpochStart,
			Length:         cfg.Genesis.EpochLength,
			WithdrawLength: cfg.Genesis.WithdrawLength,
			RewardRate:     rewardRate,
		},
		MaximumStakingAmount: maxStake,
		NFTName:              cfg.Genesis.NFTName,
		NFTSymbol:            cfg.Genesis.NFTSymbol,
		NFTURI:               cfg.Genesis.NFTURI,
	}
	if err := node.Initialize(genesis); err != nil {
		logger.Error("Failed to initialize ledger", slog.Any("error", err))
		os.Exit(1)
	}

	server := rpc.NewServer(node)
	logger.Info("Starting RPC server", slog.String("address", cfg.RPCAddress))
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
