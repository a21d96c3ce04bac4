package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"mvstaking/core/types"
)

const (
	// TypeDeposit captures the creation of a new staking position.
	TypeDeposit = "staking.deposit"
	// TypePositionIncreased captures stake added to an existing position.
	TypePositionIncreased = "staking.positionIncreased"
	// TypeWithdrawn captures principal returned to a position owner.
	TypeWithdrawn = "staking.withdrawn"
	// TypeRewardPaid is emitted when accrued rewards are paid out.
	TypeRewardPaid = "staking.rewardPaid"
	// TypeNewEpoch signals that the owner staged the next epoch window.
	TypeNewEpoch = "staking.newEpoch"
	// TypeWithdrawToBot captures pool liquidity lent to a registered bot.
	TypeWithdrawToBot = "staking.withdrawToBot"
	// TypeBotWhitelisted is emitted when the owner whitelists a bot account.
	TypeBotWhitelisted = "staking.botWhitelisted"
	// TypeBotRegistered is emitted when a whitelisted bot opts in.
	TypeBotRegistered = "staking.botRegistered"
)

// Deposit captures a freshly created position.
type Deposit struct {
	TokenID *big.Int
	Staker  common.Address
	Amount  *big.Int
}

// EventType satisfies the Event interface.
func (Deposit) EventType() string { return TypeDeposit }

// Event converts the structured payload into a broadcastable event.
func (e Deposit) Event() *types.Event {
	return &types.Event{Type: TypeDeposit, Attributes: map[string]string{
		"tokenId": formatAmount(e.TokenID),
		"staker":  e.Staker.Hex(),
		"amount":  formatAmount(e.Amount),
	}}
}

// PositionIncreased captures stake added to an existing position.
type PositionIncreased struct {
	TokenID *big.Int
	Staker  common.Address
	Amount  *big.Int
}

// EventType satisfies the Event interface.
func (PositionIncreased) EventType() string { return TypePositionIncreased }

// Event converts the structured payload into a broadcastable event.
func (e PositionIncreased) Event() *types.Event {
	return &types.Event{Type: TypePositionIncreased, Attributes: map[string]string{
		"tokenId": formatAmount(e.TokenID),
		"staker":  e.Staker.Hex(),
		"amount":  formatAmount(e.Amount),
	}}
}

// Withdrawn captures principal paid back out of a position.
type Withdrawn struct {
	TokenID   *big.Int
	Recipient common.Address
	Amount    *big.Int
}

// EventType satisfies the Event interface.
func (Withdrawn) EventType() string { return TypeWithdrawn }

// Event converts the structured payload into a broadcastable event.
func (e Withdrawn) Event() *types.Event {
	return &types.Event{Type: TypeWithdrawn, Attributes: map[string]string{
		"tokenId":   formatAmount(e.TokenID),
		"recipient": e.Recipient.Hex(),
		"amount":    formatAmount(e.Amount),
	}}
}

// RewardPaid captures a reward payout to a position owner.
type RewardPaid struct {
	TokenID   *big.Int
	Recipient common.Address
	Amount    *big.Int
}

// EventType satisfies the Event interface.
func (RewardPaid) EventType() string { return TypeRewardPaid }

// Event converts the structured payload into a broadcastable event.
func (e RewardPaid) Event() *types.Event {
	return &types.Event{Type: TypeRewardPaid, Attributes: map[string]string{
		"tokenId":   formatAmount(e.TokenID),
		"recipient": e.Recipient.Hex(),
		"amount":    formatAmount(e.Amount),
	}}
}

// NewEpoch announces the staged epoch window and its pending reward rate.
type NewEpoch struct {
	Start             uint64
	End               uint64
	PendingRewardRate *big.Int
}

// EventType satisfies the Event interface.
func (NewEpoch) EventType() string { return TypeNewEpoch }

// Event converts the structured payload into a broadcastable event.
func (e NewEpoch) Event() *types.Event {
	return &types.Event{Type: TypeNewEpoch, Attributes: map[string]string{
		"start":             strconv.FormatUint(e.Start, 10),
		"end":               strconv.FormatUint(e.End, 10),
		"pendingRewardRate": formatAmount(e.PendingRewardRate),
	}}
}

// WithdrawToBot captures pool liquidity moved to a registered bot.
type WithdrawToBot struct {
	Recipient common.Address
	Amount    *big.Int
}

// EventType satisfies the Event interface.
func (WithdrawToBot) EventType() string { return TypeWithdrawToBot }

// Event converts the structured payload into a broadcastable event.
func (e WithdrawToBot) Event() *types.Event {
	return &types.Event{Type: TypeWithdrawToBot, Attributes: map[string]string{
		"recipient": e.Recipient.Hex(),
		"amount":    formatAmount(e.Amount),
	}}
}

// BotWhitelisted captures an account added to the bot whitelist.
type BotWhitelisted struct {
	Account common.Address
}

// EventType satisfies the Event interface.
func (BotWhitelisted) EventType() string { return TypeBotWhitelisted }

// Event converts the structured payload into a broadcastable event.
func (e BotWhitelisted) Event() *types.Event {
	return &types.Event{Type: TypeBotWhitelisted, Attributes: map[string]string{
		"account": e.Account.Hex(),
	}}
}

// BotRegistered captures a whitelisted bot opting into borrowing.
type BotRegistered struct {
	Account common.Address
}

// EventType satisfies the Event interface.
func (BotRegistered) EventType() string { return TypeBotRegistered }

// Event converts the structured payload into a broadcastable event.
func (e BotRegistered) Event() *types.Event {
	return &types.Event{Type: TypeBotRegistered, Attributes: map[string]string{
		"account": e.Account.Hex(),
	}}
}
