package core

import (
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "mvstaking/core/errors"
	"mvstaking/core/epoch"
	"mvstaking/core/events"
	"mvstaking/native/staking"
	"mvstaking/native/token"
	"mvstaking/observability/metrics"
	"mvstaking/storage"
)

// GenesisConfig carries the one-time initialization parameters for a
// fresh ledger.
type GenesisConfig struct {
	RewardTokenName    string
	RewardTokenSymbol  string
	StakingTokenName   string
	StakingTokenSymbol string
	// NativeCurrency selects attached-payment funding instead of the
	// pull-transfer token mode.
	NativeCurrency bool

	Epoch                epoch.Config
	MaximumStakingAmount *big.Int

	NFTName   string
	NFTSymbol string
	NFTURI    string
}

// ModuleAddress is the pool's own account in the currency ledgers.
var ModuleAddress = common.HexToAddress("0x00000000000000000000000000000000004d5653")

// Node owns the staking engine and its collaborators and serializes
// every state transition: each operation runs to completion under one
// exclusive lock, so no partial update is ever observable.
type Node struct {
	mu sync.Mutex

	db     storage.Database
	owner  common.Address
	logger *slog.Logger

	engine       *staking.Engine
	stakingToken *token.Ledger
	rewardToken  *token.Ledger
	nfts         *token.Collection

	subscribers []chan events.Event
	initialized bool
}

// NewNode constructs a node over the given database. Initialize must be
// called (or a previous snapshot restored) before operations run.
func NewNode(db storage.Database, owner common.Address, logger *slog.Logger) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	return &Node{db: db, owner: owner, logger: logger}
}

// Initialize applies the genesis parameters exactly once. A second call
// fails and changes nothing.
func (n *Node) Initialize(genesis GenesisConfig) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.initialized {
		return coreerrors.ErrAlreadyInitialized
	}
	state := storage.NewLedgerState(n.db)
	existing, err := state.Global()
	if err != nil {
		return err
	}
	if err := genesis.Epoch.Validate(); err != nil {
		return err
	}

	engine := staking.NewEngine(n.owner, staking.Params{
		MaximumStakingAmount: genesis.MaximumStakingAmount,
	})
	engine.SetState(state)
	engine.SetEmitter(n.record)

	rewardToken := token.NewLedger(genesis.RewardTokenName, genesis.RewardTokenSymbol)
	stakingToken := token.NewLedger(genesis.StakingTokenName, genesis.StakingTokenSymbol)
	nfts := token.NewCollection(genesis.NFTName, genesis.NFTSymbol, genesis.NFTURI)

	if genesis.NativeCurrency {
		engine.SetCurrencyChannel(token.NativeChannel{Bank: stakingToken, Module: ModuleAddress})
	} else {
		engine.SetCurrencyChannel(token.PullChannel{Token: stakingToken, Module: ModuleAddress})
		stakingToken.RegisterHandler(ModuleAddress, engine)
	}
	engine.SetRewardChannel(token.RewardChannel{Token: rewardToken, Module: ModuleAddress})
	engine.SetPositionNFT(nfts)

	if existing == nil {
		now := engine.Now()
		global := &staking.GlobalState{
			TotalStaked:  new(big.Int),
			BotLiability: new(big.Int),
			Epoch:        genesis.Epoch.GenesisState(now),
		}
		if err := state.PutGlobal(global); err != nil {
			return err
		}
		n.logger.Info("ledger initialized",
			"epochStart", global.Epoch.Window.Start,
			"epochEnd", global.Epoch.Window.End,
			"rewardRate", global.Epoch.RewardRate.String(),
		)
	} else {
		n.logger.Info("ledger snapshot restored",
			"epochNumber", existing.Epoch.Number,
			"totalStaked", existing.TotalStaked.String(),
		)
	}

	n.engine = engine
	n.stakingToken = stakingToken
	n.rewardToken = rewardToken
	n.nfts = nfts
	n.initialized = true
	return nil
}

// Engine exposes the staking engine for read paths and tests. Mutations
// must go through the node's operation wrappers.
func (n *Node) Engine() *staking.Engine { return n.engine }

// StakingToken returns the staking-asset ledger.
func (n *Node) StakingToken() *token.Ledger { return n.stakingToken }

// RewardToken returns the reward-asset ledger.
func (n *Node) RewardToken() *token.Ledger { return n.rewardToken }

// Positions returns the position-ownership registry.
func (n *Node) Positions() *token.Collection { return n.nfts }

// Subscribe returns a channel receiving every ledger event. Slow
// consumers drop events rather than block state transitions.
func (n *Node) Subscribe() <-chan events.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan events.Event, 64)
	n.subscribers = append(n.subscribers, ch)
	return ch
}

func (n *Node) record(ev events.Event) {
	payload := ev.Event()
	n.logger.Info("ledger event", "type", payload.Type, "attributes", payload.Attributes)
	for _, ch := range n.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (n *Node) ready() error {
	if !n.initialized {
		return coreerrors.ErrNotInitialized
	}
	return nil
}

func (n *Node) refreshGauges() {
	total, err := n.engine.TotalStaked()
	if err != nil {
		return
	}
	liability, err := n.engine.GetBotBalance()
	if err != nil {
		return
	}
	pct, err := n.engine.CurrentWithdrawPercentage()
	if err != nil {
		return
	}
	number, err := n.engine.EpochNumber()
	if err != nil {
		return
	}
	metrics.Staking().SetLedgerGauges(total, new(big.Int).Neg(liability), pct, number)
}

// Deposit creates a new position funded by the caller.
func (n *Node) Deposit(caller common.Address, id, amount, attached *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	if err := n.engine.Deposit(caller, caller, id, amount, attached); err != nil {
		return err
	}
	metrics.Staking().ObserveDeposit()
	n.refreshGauges()
	return nil
}

// IncreasePosition adds stake to a position owned by the caller.
func (n *Node) IncreasePosition(caller common.Address, id, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	if err := n.engine.IncreasePosition(caller, id, amount); err != nil {
		return err
	}
	metrics.Staking().ObserveIncrease()
	n.refreshGauges()
	return nil
}

// Withdraw returns principal to the position owner.
func (n *Node) Withdraw(caller common.Address, id, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	if err := n.engine.Withdraw(caller, id, amount); err != nil {
		return err
	}
	metrics.Staking().ObserveWithdrawal()
	n.refreshGauges()
	return nil
}

// ClaimRewards pays the rewards due on a position to its owner.
func (n *Node) ClaimRewards(id *big.Int) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return nil, err
	}
	paid, err := n.engine.ClaimRewards(id)
	if err != nil {
		return nil, err
	}
	metrics.Staking().ObserveRewardPaid()
	return paid, nil
}

// ApproveAndCall mirrors the staking asset's approve-then-forward entry
// point: it records an allowance for the pool and forwards the tagged
// payload to the engine's relay handler.
func (n *Node) ApproveAndCall(caller common.Address, amount *big.Int, data []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	if err := n.stakingToken.ApproveAndCall(caller, ModuleAddress, amount, data); err != nil {
		return err
	}
	n.refreshGauges()
	return nil
}

// NextEpoch stages the next epoch window.
func (n *Node) NextEpoch(caller common.Address, pendingRate *big.Int, length uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	return n.engine.NextEpoch(caller, pendingRate, length)
}

// ApplyNewRewardRate activates the staged reward rate.
func (n *Node) ApplyNewRewardRate(caller common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	if err := n.engine.ApplyNewRewardRate(caller); err != nil {
		return err
	}
	n.refreshGauges()
	return nil
}

// WithdrawLiquidityToBot lends pool principal to a registered bot.
func (n *Node) WithdrawLiquidityToBot(caller, bot common.Address, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	if err := n.engine.WithdrawLiquidityToBot(caller, bot, amount); err != nil {
		return err
	}
	metrics.Staking().ObserveBotLoan()
	n.refreshGauges()
	return nil
}

// AddBot whitelists a bot account.
func (n *Node) AddBot(caller, addr common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	return n.engine.AddBot(caller, addr)
}

// RemoveBot removes a bot account from the whitelist.
func (n *Node) RemoveBot(caller, addr common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	return n.engine.RemoveBot(caller, addr)
}

// RegisterAsBot registers the caller as an active bot.
func (n *Node) RegisterAsBot(caller common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ready(); err != nil {
		return err
	}
	return n.engine.RegisterAsBot(caller)
}
