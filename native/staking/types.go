package staking

import (
	"math/big"

	"mvstaking/core/epoch"
)

// Position is the accounting record for one staking commitment. Ownership
// of the position is tracked by the external NFT collaborator; only
// accounting fields live here. Amounts are denominated in the staking
// asset's smallest unit and expressed as big integers.
type Position struct {
	// ID is the caller-supplied identifier. Ids are a one-time-use
	// namespace; collisions are rejected, never overwritten.
	ID *big.Int `json:"id"`
	// Amount is the currently staked principal.
	Amount *big.Int `json:"amount"`
	// LastUpdate is the unix timestamp of the last reward settlement.
	LastUpdate uint64 `json:"lastUpdate"`
	// RewardsSettled holds rewards accounted for but not yet paid out.
	RewardsSettled *big.Int `json:"rewardsSettled"`
	// LastWithdrawTag records the epoch of the most recent rationed
	// withdrawal, offset by one so that zero means "never".
	LastWithdrawTag uint64 `json:"lastWithdrawTag,omitempty"`
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	out := &Position{
		LastUpdate:      p.LastUpdate,
		LastWithdrawTag: p.LastWithdrawTag,
	}
	if p.ID != nil {
		out.ID = new(big.Int).Set(p.ID)
	}
	if p.Amount != nil {
		out.Amount = new(big.Int).Set(p.Amount)
	}
	if p.RewardsSettled != nil {
		out.RewardsSettled = new(big.Int).Set(p.RewardsSettled)
	}
	return out
}

func (p *Position) withdrawnInEpoch(number uint64) bool {
	return p.LastWithdrawTag == number+1
}

// GlobalState is the singleton accounting record shared by every
// operation. TotalStaked equals the sum of all position amounts at all
// times; BotLiability tracks principal currently lent to bots and is
// reported externally as a negative balance.
type GlobalState struct {
	TotalStaked  *big.Int     `json:"totalStaked"`
	BotLiability *big.Int     `json:"botLiability"`
	Epoch        *epoch.State `json:"epoch"`
}

// Clone returns a deep copy of the global record.
func (g *GlobalState) Clone() *GlobalState {
	if g == nil {
		return nil
	}
	out := &GlobalState{Epoch: g.Epoch.Clone()}
	if g.TotalStaked != nil {
		out.TotalStaked = new(big.Int).Set(g.TotalStaked)
	}
	if g.BotLiability != nil {
		out.BotLiability = new(big.Int).Set(g.BotLiability)
	}
	return out
}

// PositionStats is the read-only view over one position.
type PositionStats struct {
	Amount             *big.Int `json:"amount"`
	LastUpdate         uint64   `json:"lastUpdate"`
	RewardsSettled     *big.Int `json:"rewardsSettled"`
	RewardsDue         *big.Int `json:"rewardsDue"`
	WithdrawnThisEpoch bool     `json:"withdrawnThisEpoch"`
}
