package staking

import (
	"math/big"

	"mvstaking/core/epoch"
)

var secondsPerYearInt = big.NewInt(SecondsPerYear)

// accruedSince computes the rewards earned by a position between its last
// settlement and now. Only time spent inside the current locking phase
// accrues; once now has moved into a withdraw phase the accrual window is
// clamped to the epoch's end.
//
//	accrued = amount * rewardRate * lockingSeconds / SecondsPerYear
func accruedSince(pos *Position, es *epoch.State, now uint64) *big.Int {
	if pos == nil || pos.Amount == nil || pos.Amount.Sign() == 0 {
		return new(big.Int)
	}
	if es == nil || es.RewardRate == nil || es.RewardRate.Sign() == 0 {
		return new(big.Int)
	}
	seconds := es.Window.LockingOverlap(pos.LastUpdate, now)
	if seconds == 0 {
		return new(big.Int)
	}
	accrued := new(big.Int).Mul(pos.Amount, es.RewardRate)
	accrued.Mul(accrued, new(big.Int).SetUint64(seconds))
	return accrued.Quo(accrued, secondsPerYearInt)
}

// rewardsDue returns the total claimable amount for a position: settled
// rewards plus the accrual since the last settlement.
func rewardsDue(pos *Position, es *epoch.State, now uint64) *big.Int {
	due := accruedSince(pos, es, now)
	if pos != nil && pos.RewardsSettled != nil {
		due.Add(due, pos.RewardsSettled)
	}
	return due
}

// settle folds the pending accrual into the position's settled balance
// and restarts the accrual clock. Both increase and withdraw settle
// before mutating the stake so that reward math never spans a
// stake-amount change.
func settle(pos *Position, es *epoch.State, now uint64) {
	accrued := accruedSince(pos, es, now)
	if pos.RewardsSettled == nil {
		pos.RewardsSettled = new(big.Int)
	}
	pos.RewardsSettled = new(big.Int).Add(pos.RewardsSettled, accrued)
	pos.LastUpdate = now
}
