package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"mvstaking/core/epoch"
)

// CurrentEpoch returns the current epoch window.
func (e *Engine) CurrentEpoch() (epoch.Window, error) {
	global, err := e.globalState()
	if err != nil {
		return epoch.Window{}, err
	}
	return global.Epoch.Window, nil
}

// EpochNumber returns the active epoch number.
func (e *Engine) EpochNumber() (uint64, error) {
	global, err := e.globalState()
	if err != nil {
		return 0, err
	}
	return global.Epoch.Number, nil
}

// RewardRate returns the active reward rate per staked unit and year.
func (e *Engine) RewardRate() (*big.Int, error) {
	global, err := e.globalState()
	if err != nil {
		return nil, err
	}
	if global.Epoch.RewardRate == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(global.Epoch.RewardRate), nil
}

// PendingRewardRate returns the staged reward rate, zero when none.
func (e *Engine) PendingRewardRate() (*big.Int, error) {
	global, err := e.globalState()
	if err != nil {
		return nil, err
	}
	if global.Epoch.PendingRate == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(global.Epoch.PendingRate), nil
}

// IsWithdrawPhase reports whether ordinary withdrawal is currently open.
func (e *Engine) IsWithdrawPhase() (bool, error) {
	global, err := e.globalState()
	if err != nil {
		return false, err
	}
	return global.Epoch.IsWithdrawPhase(e.now()), nil
}

// TotalStaked returns the aggregate staked principal.
func (e *Engine) TotalStaked() (*big.Int, error) {
	global, err := e.globalState()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(global.TotalStaked), nil
}

// CurrentWithdrawPercentage returns the rationed withdraw fraction scaled
// by Precision, derived from a snapshot of the global accounting.
func (e *Engine) CurrentWithdrawPercentage() (*big.Int, error) {
	global, err := e.globalState()
	if err != nil {
		return nil, err
	}
	return WithdrawPercentage(global.TotalStaked, global.BotLiability), nil
}

// GetBotBalance reports the outstanding bot liability as a signed
// balance; lending pushes it negative.
func (e *Engine) GetBotBalance() (*big.Int, error) {
	global, err := e.globalState()
	if err != nil {
		return nil, err
	}
	return BotBalance(global.BotLiability), nil
}

// RewardsDue returns the total claimable reward amount for a position.
func (e *Engine) RewardsDue(id *big.Int) (*big.Int, error) {
	pos, err := e.position(id)
	if err != nil {
		return nil, err
	}
	global, err := e.globalState()
	if err != nil {
		return nil, err
	}
	return rewardsDue(pos, global.Epoch, e.now()), nil
}

// Stats returns the read-only view over one position.
func (e *Engine) Stats(id *big.Int) (*PositionStats, error) {
	pos, err := e.position(id)
	if err != nil {
		return nil, err
	}
	global, err := e.globalState()
	if err != nil {
		return nil, err
	}
	return &PositionStats{
		Amount:             new(big.Int).Set(pos.Amount),
		LastUpdate:         pos.LastUpdate,
		RewardsSettled:     new(big.Int).Set(pos.RewardsSettled),
		RewardsDue:         rewardsDue(pos, global.Epoch, e.now()),
		WithdrawnThisEpoch: pos.withdrawnInEpoch(global.Epoch.Number),
	}, nil
}

// IsBot reports whether the account is whitelisted.
func (e *Engine) IsBot(addr common.Address) (bool, error) {
	bots, err := e.state.Bots()
	if err != nil {
		return false, err
	}
	return bots.IsBot(addr), nil
}

// IsRegisteredBot reports whether the account completed registration.
func (e *Engine) IsRegisteredBot(addr common.Address) (bool, error) {
	bots, err := e.state.Bots()
	if err != nil {
		return false, err
	}
	return bots.IsRegistered(addr), nil
}
