package staking

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "mvstaking/core/errors"
	"mvstaking/core/events"
)

var (
	errNilState            = errors.New("staking engine: state not configured")
	errNoCurrency          = errors.New("staking engine: currency channel not configured")
	errNoRewardChannel     = errors.New("staking engine: reward channel not configured")
	errNoOwnership         = errors.New("staking engine: position ownership registry not configured")
	errZeroAmount          = errors.New("staking engine: amount != 0")
	errInvalidID           = errors.New("staking engine: token id required")
	errPositionExists      = errors.New("staking engine: position id already exists")
	errMaximumStake        = errors.New("staking engine: maximum amount is reached")
	errNotWithdrawTime     = errors.New("staking engine: not withdraw time")
	errWithdrawTwice       = errors.New("staking engine: only one withdraw per epoche")
	errExceedsPercentage   = errors.New("staking engine: amount exceeds current withdraw percentage")
	errInsufficientStake   = errors.New("staking engine: amount exceeds position balance")
	errBotExists           = errors.New("staking engine: already exists")
	errNotABot             = errors.New("staking engine: not a bot")
	errBotNotWhitelisted   = errors.New("staking engine: only whitelisted bots can register")
	errBotNotRegistered    = errors.New("staking engine: recipient must be a registered bot")
	errNotLockingPhase     = errors.New("staking engine: can only use in locking phase")
	errRelaySenderMismatch = errors.New("staking engine: first param != sender")
	errMalformedRelay      = errors.New("staking engine: malformed relay payload")
)

type engineState interface {
	Position(id *big.Int) (*Position, error)
	PutPosition(pos *Position) error
	DeletePosition(id *big.Int) error
	Global() (*GlobalState, error)
	PutGlobal(global *GlobalState) error
	Bots() (*Registry, error)
	PutBots(bots *Registry) error
}

// CurrencyChannel is the staking-asset collaborator. Pull moves funds
// from a staker into the pool, Push moves pool funds out. For the native
// mode the attached value must equal the amount exactly; for the token
// mode no value may be attached.
type CurrencyChannel interface {
	Pull(from common.Address, amount, attached *big.Int) error
	Push(to common.Address, amount *big.Int) error
}

// RewardChannel is the reward-asset collaborator.
type RewardChannel interface {
	Push(to common.Address, amount *big.Int) error
}

// PositionNFT is the position-ownership collaborator: mint-on-create,
// transferable, queryable. The ledger never burns positions.
type PositionNFT interface {
	Mint(owner common.Address, id *big.Int) error
	OwnerOf(id *big.Int) (common.Address, error)
}

// Engine orchestrates every state transition of the staking ledger. All
// operations are atomic: any failure aborts with the persisted state
// untouched, and internal mutations are committed before collaborator
// transfers are issued.
type Engine struct {
	state    engineState
	owner    common.Address
	params   Params
	currency CurrencyChannel
	rewards  RewardChannel
	nft      PositionNFT
	now      func() uint64
	emit     func(events.Event)
}

// NewEngine constructs an engine bound to the administrative owner and
// the immutable ledger parameters.
func NewEngine(owner common.Address, params Params) *Engine {
	return &Engine{
		owner:  owner,
		params: params.Clone(),
		now:    func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetCurrencyChannel wires the staking-asset collaborator.
func (e *Engine) SetCurrencyChannel(c CurrencyChannel) {
	if e == nil {
		return
	}
	e.currency = c
}

// SetRewardChannel wires the reward-asset collaborator.
func (e *Engine) SetRewardChannel(c RewardChannel) {
	if e == nil {
		return
	}
	e.rewards = c
}

// SetPositionNFT wires the position-ownership collaborator.
func (e *Engine) SetPositionNFT(nft PositionNFT) {
	if e == nil {
		return
	}
	e.nft = nft
}

// SetClock overrides the time source. Tests inject a deterministic clock.
func (e *Engine) SetClock(now func() uint64) {
	if e == nil || now == nil {
		return
	}
	e.now = now
}

// SetEmitter registers the sink receiving ledger events.
func (e *Engine) SetEmitter(emit func(events.Event)) {
	if e == nil {
		return
	}
	e.emit = emit
}

// Owner returns the administrative owner address.
func (e *Engine) Owner() common.Address { return e.owner }

// Now returns the engine's current time in unix seconds.
func (e *Engine) Now() uint64 { return e.now() }

func (e *Engine) publish(ev events.Event) {
	if e.emit != nil {
		e.emit(ev)
	}
}

func (e *Engine) requireOwner(caller common.Address) error {
	if caller != e.owner {
		return coreerrors.ErrNotOwner
	}
	return nil
}

func (e *Engine) globalState() (*GlobalState, error) {
	global, err := e.state.Global()
	if err != nil {
		return nil, err
	}
	if global == nil || global.Epoch == nil {
		return nil, coreerrors.ErrNotInitialized
	}
	if global.TotalStaked == nil {
		global.TotalStaked = new(big.Int)
	}
	if global.BotLiability == nil {
		global.BotLiability = new(big.Int)
	}
	return global, nil
}

func (e *Engine) position(id *big.Int) (*Position, error) {
	if id == nil {
		return nil, errInvalidID
	}
	pos, err := e.state.Position(id)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, coreerrors.ErrUnknownPosition
	}
	if pos.Amount == nil {
		pos.Amount = new(big.Int)
	}
	if pos.RewardsSettled == nil {
		pos.RewardsSettled = new(big.Int)
	}
	return pos, nil
}

func (e *Engine) requirePositionOwner(caller common.Address, id *big.Int) error {
	owner, err := e.nft.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != caller {
		return coreerrors.ErrNotPositionOwner
	}
	return nil
}

// Deposit creates a new position for a fresh caller-supplied id, pulls
// the principal from the payer and grants position ownership to the
// staker. Payer and staker differ only on the relayed call path.
func (e *Engine) Deposit(caller, staker common.Address, id, amount, attached *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.currency == nil {
		return errNoCurrency
	}
	if e.nft == nil {
		return errNoOwnership
	}
	if id == nil {
		return errInvalidID
	}
	if amount == nil || amount.Sign() <= 0 {
		return errZeroAmount
	}
	existing, err := e.state.Position(id)
	if err != nil {
		return err
	}
	if existing != nil {
		return errPositionExists
	}
	global, err := e.globalState()
	if err != nil {
		return err
	}
	newTotal := new(big.Int).Add(global.TotalStaked, amount)
	if e.params.MaximumStakingAmount != nil && newTotal.Cmp(e.params.MaximumStakingAmount) > 0 {
		return errMaximumStake
	}

	now := e.now()
	prevGlobal := global.Clone()
	global.TotalStaked = newTotal
	pos := &Position{
		ID:             new(big.Int).Set(id),
		Amount:         new(big.Int).Set(amount),
		LastUpdate:     now,
		RewardsSettled: new(big.Int),
	}
	if err := e.state.PutGlobal(global); err != nil {
		return err
	}
	if err := e.state.PutPosition(pos); err != nil {
		return err
	}

	// State is committed before the external pull so a reentrant call
	// observes the updated totals.
	if err := e.currency.Pull(caller, amount, attached); err != nil {
		e.state.DeletePosition(id)
		e.state.PutGlobal(prevGlobal)
		return err
	}
	if err := e.nft.Mint(staker, id); err != nil {
		pushErr := e.currency.Push(caller, amount)
		e.state.DeletePosition(id)
		e.state.PutGlobal(prevGlobal)
		if pushErr != nil {
			return fmt.Errorf("%w (refund failed: %v)", err, pushErr)
		}
		return err
	}

	e.publish(events.Deposit{TokenID: pos.ID, Staker: staker, Amount: pos.Amount})
	return nil
}

// IncreasePosition adds stake to an existing position owned by the
// caller. Pending rewards are settled first so the accrual never spans a
// stake-amount change.
func (e *Engine) IncreasePosition(caller common.Address, id, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.currency == nil {
		return errNoCurrency
	}
	if e.nft == nil {
		return errNoOwnership
	}
	if amount == nil || amount.Sign() <= 0 {
		return errZeroAmount
	}
	pos, err := e.position(id)
	if err != nil {
		return err
	}
	if err := e.requirePositionOwner(caller, id); err != nil {
		return err
	}
	global, err := e.globalState()
	if err != nil {
		return err
	}

	now := e.now()
	prevGlobal := global.Clone()
	prevPos := pos.Clone()
	settle(pos, global.Epoch, now)
	pos.Amount = new(big.Int).Add(pos.Amount, amount)
	global.TotalStaked = new(big.Int).Add(global.TotalStaked, amount)
	if err := e.state.PutGlobal(global); err != nil {
		return err
	}
	if err := e.state.PutPosition(pos); err != nil {
		return err
	}

	if err := e.currency.Pull(caller, amount, nil); err != nil {
		e.state.PutPosition(prevPos)
		e.state.PutGlobal(prevGlobal)
		return err
	}

	e.publish(events.PositionIncreased{TokenID: pos.ID, Staker: caller, Amount: amount})
	return nil
}

// Withdraw returns principal to the position owner. Before the first
// epoch has ever started, withdrawal is unrestricted. During locking it
// is disallowed entirely; during a withdraw phase it is capped by the
// current withdraw percentage and limited to one per position and epoch.
func (e *Engine) Withdraw(caller common.Address, id, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.currency == nil {
		return errNoCurrency
	}
	if e.nft == nil {
		return errNoOwnership
	}
	if amount == nil || amount.Sign() <= 0 {
		return errZeroAmount
	}
	pos, err := e.position(id)
	if err != nil {
		return err
	}
	if err := e.requirePositionOwner(caller, id); err != nil {
		return err
	}
	global, err := e.globalState()
	if err != nil {
		return err
	}

	now := e.now()
	es := global.Epoch
	rationed := !es.InBootstrap(now)
	if rationed {
		if !es.IsWithdrawPhase(now) {
			return errNotWithdrawTime
		}
		if pos.withdrawnInEpoch(es.Number) {
			return errWithdrawTwice
		}
		pct := WithdrawPercentage(global.TotalStaked, global.BotLiability)
		if amount.Cmp(WithdrawCap(pos.Amount, pct)) > 0 {
			return errExceedsPercentage
		}
	}
	if amount.Cmp(pos.Amount) > 0 {
		return errInsufficientStake
	}

	prevGlobal := global.Clone()
	prevPos := pos.Clone()
	settle(pos, es, now)
	pos.Amount = new(big.Int).Sub(pos.Amount, amount)
	global.TotalStaked = new(big.Int).Sub(global.TotalStaked, amount)
	if rationed {
		pos.LastWithdrawTag = es.Number + 1
	}
	if err := e.state.PutGlobal(global); err != nil {
		return err
	}
	if err := e.state.PutPosition(pos); err != nil {
		return err
	}

	if err := e.currency.Push(caller, amount); err != nil {
		e.state.PutPosition(prevPos)
		e.state.PutGlobal(prevGlobal)
		return err
	}

	e.publish(events.Withdrawn{TokenID: pos.ID, Recipient: caller, Amount: amount})
	return nil
}

// ClaimRewards settles and pays out the rewards due on a position. It is
// deliberately permissionless: anyone may trigger the payout, but the
// funds always flow to the position owner. The paid amount is returned.
func (e *Engine) ClaimRewards(id *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.rewards == nil {
		return nil, errNoRewardChannel
	}
	if e.nft == nil {
		return nil, errNoOwnership
	}
	pos, err := e.position(id)
	if err != nil {
		return nil, err
	}
	recipient, err := e.nft.OwnerOf(id)
	if err != nil {
		return nil, err
	}
	global, err := e.globalState()
	if err != nil {
		return nil, err
	}

	now := e.now()
	due := rewardsDue(pos, global.Epoch, now)
	prevPos := pos.Clone()
	pos.LastUpdate = now
	pos.RewardsSettled = new(big.Int)
	if err := e.state.PutPosition(pos); err != nil {
		return nil, err
	}

	if err := e.rewards.Push(recipient, due); err != nil {
		e.state.PutPosition(prevPos)
		return nil, err
	}

	e.publish(events.RewardPaid{TokenID: pos.ID, Recipient: recipient, Amount: due})
	return due, nil
}

// NextEpoch stages the next epoch window together with its pending
// reward rate. Owner-only, withdraw-phase-only, once per withdraw phase.
// The epoch number is unchanged until the rate is applied.
func (e *Engine) NextEpoch(caller common.Address, pendingRate *big.Int, length uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	global, err := e.globalState()
	if err != nil {
		return err
	}
	if err := global.Epoch.ScheduleNext(e.now(), pendingRate, length); err != nil {
		return err
	}
	if err := e.state.PutGlobal(global); err != nil {
		return err
	}
	e.publish(events.NewEpoch{
		Start:             global.Epoch.Window.Start,
		End:               global.Epoch.Window.End,
		PendingRewardRate: global.Epoch.PendingRate,
	})
	return nil
}

// ApplyNewRewardRate activates the staged reward rate once the locking
// phase of the staged epoch has begun, and advances the epoch number.
func (e *Engine) ApplyNewRewardRate(caller common.Address) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	global, err := e.globalState()
	if err != nil {
		return err
	}
	if err := global.Epoch.ApplyPendingRate(e.now()); err != nil {
		return err
	}
	return e.state.PutGlobal(global)
}

// WithdrawLiquidityToBot lends pool principal to a registered bot during
// the locking phase, increasing the outstanding bot liability that the
// withdraw percentage is derived from.
func (e *Engine) WithdrawLiquidityToBot(caller, bot common.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.currency == nil {
		return errNoCurrency
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errZeroAmount
	}
	bots, err := e.state.Bots()
	if err != nil {
		return err
	}
	if !bots.IsRegistered(bot) {
		return errBotNotRegistered
	}
	global, err := e.globalState()
	if err != nil {
		return err
	}
	if global.Epoch.IsWithdrawPhase(e.now()) {
		return errNotLockingPhase
	}

	prevGlobal := global.Clone()
	global.BotLiability = new(big.Int).Add(global.BotLiability, amount)
	if err := e.state.PutGlobal(global); err != nil {
		return err
	}

	if err := e.currency.Push(bot, amount); err != nil {
		e.state.PutGlobal(prevGlobal)
		return err
	}

	e.publish(events.WithdrawToBot{Recipient: bot, Amount: amount})
	return nil
}

// AddBot whitelists an account for bot registration. Owner-only.
func (e *Engine) AddBot(caller, addr common.Address) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	bots, err := e.state.Bots()
	if err != nil {
		return err
	}
	if bots == nil {
		bots = NewRegistry()
	}
	if err := bots.add(addr); err != nil {
		return err
	}
	if err := e.state.PutBots(bots); err != nil {
		return err
	}
	e.publish(events.BotWhitelisted{Account: addr})
	return nil
}

// RemoveBot removes an account from the whitelist, revoking any
// completed registration. Owner-only.
func (e *Engine) RemoveBot(caller, addr common.Address) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	bots, err := e.state.Bots()
	if err != nil {
		return err
	}
	if bots == nil {
		bots = NewRegistry()
	}
	if err := bots.remove(addr); err != nil {
		return err
	}
	return e.state.PutBots(bots)
}

// RegisterAsBot is the whitelisted account's own opt-in to borrowing.
func (e *Engine) RegisterAsBot(caller common.Address) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	bots, err := e.state.Bots()
	if err != nil {
		return err
	}
	if bots == nil {
		bots = NewRegistry()
	}
	if err := bots.register(caller); err != nil {
		return err
	}
	if err := e.state.PutBots(bots); err != nil {
		return err
	}
	e.publish(events.BotRegistered{Account: caller})
	return nil
}
