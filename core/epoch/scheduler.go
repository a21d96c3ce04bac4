package epoch

import "math/big"

// State is the scheduler's portion of the global ledger record. Exactly
// one window is current at any time; a replacement window is staged by
// ScheduleNext and its reward rate activated by ApplyPendingRate.
type State struct {
	Window         Window   `json:"window"`
	Number         uint64   `json:"number"`
	RewardRate     *big.Int `json:"rewardRate"`
	PendingRate    *big.Int `json:"pendingRate,omitempty"`
	Scheduled      bool     `json:"scheduled"`
	WithdrawLength uint64   `json:"withdrawLength"`
}

// Clone returns a deep copy so callers can mutate a working copy and
// discard it on failure.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{
		Window:         s.Window,
		Number:         s.Number,
		Scheduled:      s.Scheduled,
		WithdrawLength: s.WithdrawLength,
	}
	if s.RewardRate != nil {
		out.RewardRate = new(big.Int).Set(s.RewardRate)
	}
	if s.PendingRate != nil {
		out.PendingRate = new(big.Int).Set(s.PendingRate)
	}
	return out
}

// IsWithdrawPhase reports the current phase for the scheduler's window.
func (s *State) IsWithdrawPhase(now uint64) bool {
	return s.Window.IsWithdrawPhase(now)
}

// InBootstrap reports whether the first epoch's locking phase has never
// begun. Withdrawals are unrestricted during this window.
func (s *State) InBootstrap(now uint64) bool {
	return s.Number == 0 && !s.Scheduled && now < s.Window.Start
}

// ScheduleNext stages the next epoch window. It may only be called during
// a withdraw phase and only once per withdraw phase. The staged window
// starts one withdraw-length after now; the pending reward rate takes
// effect only via ApplyPendingRate. The epoch number is not advanced here.
func (s *State) ScheduleNext(now uint64, pendingRate *big.Int, length uint64) error {
	if length == 0 {
		return ErrZeroLength
	}
	if !s.Window.IsWithdrawPhase(now) {
		return ErrNotWithdrawPhase
	}
	if now >= s.Window.End {
		// The previous epoch ran out; a fresh withdraw phase began at
		// Window.End, which resets the one-shot guard.
		s.Scheduled = false
	}
	if s.Scheduled {
		return ErrAlreadyScheduled
	}
	start := now + s.WithdrawLength
	s.Window = Window{Start: start, End: start + length, LastEnd: now}
	if pendingRate != nil {
		s.PendingRate = new(big.Int).Set(pendingRate)
	} else {
		s.PendingRate = new(big.Int)
	}
	s.Scheduled = true
	return nil
}

// ApplyPendingRate activates the staged reward rate. It fails while the
// withdraw phase is still running and when no rate is staged. On success
// the epoch number advances.
func (s *State) ApplyPendingRate(now uint64) error {
	if now < s.Window.Start {
		return ErrLockingNotActive
	}
	// A zero pending rate means "nothing staged".
	if s.PendingRate == nil || s.PendingRate.Sign() == 0 {
		return ErrNoPendingRate
	}
	s.RewardRate = s.PendingRate
	s.PendingRate = nil
	s.Number++
	return nil
}
