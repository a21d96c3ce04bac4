package staking

import "math/big"

// Precision is the fixed-point scale of the withdraw percentage; a value
// of Precision represents 100%.
const Precision = 1_000_000_000

// SecondsPerYear is the accrual year used by the reward rate, 52 weeks of
// unix seconds. A rate of SecondsPerYear pays one reward unit per staked
// unit and second.
const SecondsPerYear = 31_449_600

// Params groups the immutable ledger parameters fixed at initialization.
type Params struct {
	// MaximumStakingAmount caps the global staked total. Deposits pushing
	// TotalStaked past the cap are rejected.
	MaximumStakingAmount *big.Int `json:"maximumStakingAmount"`
}

// Clone returns a deep copy of the parameters.
func (p Params) Clone() Params {
	out := Params{}
	if p.MaximumStakingAmount != nil {
		out.MaximumStakingAmount = new(big.Int).Set(p.MaximumStakingAmount)
	}
	return out
}
