package epoch

import (
	"fmt"
	"math/big"
)

// Config describes the genesis epoch parameters.
type Config struct {
	// Start is the unix timestamp of the first locking phase. A zero
	// value means "one withdraw-length after initialization".
	Start uint64

	// Length is the duration of the locking phase in seconds. Must be
	// greater than zero.
	Length uint64

	// WithdrawLength is the duration of the withdraw phase between two
	// epochs in seconds. Must be greater than zero.
	WithdrawLength uint64

	// RewardRate is the initial reward rate, denominated in reward units
	// per staked unit and year.
	RewardRate *big.Int
}

// Validate ensures the configuration is self-consistent.
func (c Config) Validate() error {
	if c.Length == 0 {
		return fmt.Errorf("epoch length must be greater than zero")
	}
	if c.WithdrawLength == 0 {
		return fmt.Errorf("withdraw length must be greater than zero")
	}
	if c.RewardRate == nil || c.RewardRate.Sign() < 0 {
		return fmt.Errorf("reward rate must be zero or positive")
	}
	return nil
}

// GenesisState builds the scheduler state for the first epoch. The first
// window keeps the invariant Start-LastEnd == WithdrawLength.
func (c Config) GenesisState(now uint64) *State {
	start := c.Start
	if start < now+c.WithdrawLength {
		start = now + c.WithdrawLength
	}
	return &State{
		Window: Window{
			Start:   start,
			End:     start + c.Length,
			LastEnd: start - c.WithdrawLength,
		},
		RewardRate:     new(big.Int).Set(c.RewardRate),
		WithdrawLength: c.WithdrawLength,
	}
}
