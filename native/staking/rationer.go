package staking

import "math/big"

var precisionInt = big.NewInt(Precision)

// WithdrawPercentage computes the fraction of a position that may be
// withdrawn in the current withdraw phase, as a fixed-point value scaled
// by Precision. The inputs are a snapshot of the global accounting taken
// at call time, which keeps the formula independent of call ordering.
//
//	pct = floor((totalStaked - botLiability) / totalStaked * Precision)
//
// An empty pool has no shortfall and reports 100%. A liability exceeding
// the pool clamps to zero rather than going negative.
func WithdrawPercentage(totalStaked, botLiability *big.Int) *big.Int {
	if totalStaked == nil || totalStaked.Sign() == 0 {
		return big.NewInt(Precision)
	}
	available := new(big.Int).Set(totalStaked)
	if botLiability != nil {
		available.Sub(available, botLiability)
	}
	if available.Sign() <= 0 {
		return new(big.Int)
	}
	pct := available.Mul(available, precisionInt)
	pct.Quo(pct, totalStaked)
	if pct.Cmp(precisionInt) > 0 {
		return big.NewInt(Precision)
	}
	return pct
}

// WithdrawCap returns the maximum amount withdrawable from a position of
// the given size under the supplied percentage.
func WithdrawCap(amount, percentage *big.Int) *big.Int {
	if amount == nil || percentage == nil {
		return new(big.Int)
	}
	limit := new(big.Int).Mul(amount, percentage)
	return limit.Quo(limit, precisionInt)
}

// BotBalance reports the outstanding bot liability as a signed balance;
// lending pushes it negative, matching the external accounting view.
func BotBalance(botLiability *big.Int) *big.Int {
	if botLiability == nil {
		return new(big.Int)
	}
	return new(big.Int).Neg(botLiability)
}
