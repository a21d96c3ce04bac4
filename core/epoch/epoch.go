package epoch

import "errors"

var (
	ErrZeroLength       = errors.New("epoch: length != 0")
	ErrNotWithdrawPhase = errors.New("epoch: not withdraw time")
	ErrAlreadyScheduled = errors.New("epoch: only once in withdraw phase")
	ErrLockingNotActive = errors.New("epoch: only after withdraw phase")
	ErrNoPendingRate    = errors.New("epoch: no pending reward rate")
)

// Window describes one epoch cycle on the time axis. The interval
// [LastEnd, Start) is the withdraw phase and [Start, End) the locking
// phase. Timestamps are unix seconds.
type Window struct {
	Start   uint64 `json:"start"`
	End     uint64 `json:"end"`
	LastEnd uint64 `json:"lastEnd"`
}

// IsWithdrawPhase reports whether now falls outside the locking interval.
// Time past End counts as withdraw phase until the owner stages the next
// window.
func (w Window) IsWithdrawPhase(now uint64) bool {
	return now < w.Start || now >= w.End
}

// LockingOverlap returns the number of seconds the interval [from, to]
// spends inside the locking phase of this window. Reward accrual is
// clamped to this overlap.
func (w Window) LockingOverlap(from, to uint64) uint64 {
	lo := from
	if lo < w.Start {
		lo = w.Start
	}
	hi := to
	if hi > w.End {
		hi = w.End
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
