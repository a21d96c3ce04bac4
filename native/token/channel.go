package token

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnexpectedValue = errors.New("token: unexpected attached value")
	ErrValueMismatch   = errors.New("token: attached value must match amount")
)

// PullChannel funds the staking pool by pulling approved token balances.
// Pull and native payment are mutually exclusive: an attached value is
// rejected here.
type PullChannel struct {
	Token  *Ledger
	Module common.Address
}

// Pull consumes the staker's allowance and moves the amount into the
// module account.
func (c PullChannel) Pull(from common.Address, amount, attached *big.Int) error {
	if attached != nil && attached.Sign() != 0 {
		return ErrUnexpectedValue
	}
	return c.Token.TransferFrom(c.Module, from, c.Module, amount)
}

// Push returns pool funds to a recipient.
func (c PullChannel) Push(to common.Address, amount *big.Int) error {
	return c.Token.Transfer(c.Module, to, amount)
}

// NativeChannel funds the staking pool with the execution environment's
// native currency. The amount must equal the attached payment exactly.
type NativeChannel struct {
	Bank   *Ledger
	Module common.Address
}

// Pull verifies the attached payment and moves it into the module
// account.
func (c NativeChannel) Pull(from common.Address, amount, attached *big.Int) error {
	if attached == nil || attached.Cmp(amount) != 0 {
		return ErrValueMismatch
	}
	return c.Bank.Transfer(from, c.Module, amount)
}

// Push returns pool funds to a recipient.
func (c NativeChannel) Push(to common.Address, amount *big.Int) error {
	return c.Bank.Transfer(c.Module, to, amount)
}

// RewardChannel pays accrued rewards out of the module's reward-asset
// balance.
type RewardChannel struct {
	Token  *Ledger
	Module common.Address
}

// Push transfers the reward amount to the recipient.
func (c RewardChannel) Push(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	return c.Token.Transfer(c.Module, to, amount)
}
