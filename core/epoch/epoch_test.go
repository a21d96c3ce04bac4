package epoch

import (
	"errors"
	"math/big"
	"testing"
)

func TestWindowPhases(t *testing.T) {
	w := Window{Start: 1000, End: 2000, LastEnd: 900}

	cases := []struct {
		now      uint64
		withdraw bool
	}{
		{900, true},
		{999, true},
		{1000, false},
		{1500, false},
		{1999, false},
		{2000, true},
		{5000, true},
	}
	for _, tc := range cases {
		if got := w.IsWithdrawPhase(tc.now); got != tc.withdraw {
			t.Fatalf("at %d: got withdraw=%v want %v", tc.now, got, tc.withdraw)
		}
	}
}

func TestLockingOverlap(t *testing.T) {
	w := Window{Start: 1000, End: 2000, LastEnd: 900}

	cases := []struct {
		from, to uint64
		want     uint64
	}{
		{1000, 1100, 100},
		{900, 1100, 100},  // clipped at Start
		{1900, 2500, 100}, // clipped at End
		{500, 900, 0},     // entirely before
		{2000, 3000, 0},   // entirely after
		{1100, 1100, 0},   // empty interval
		{1000, 2000, 1000},
	}
	for _, tc := range cases {
		if got := w.LockingOverlap(tc.from, tc.to); got != tc.want {
			t.Fatalf("overlap(%d, %d): got %d want %d", tc.from, tc.to, got, tc.want)
		}
	}
}

func testState() *State {
	return &State{
		Window:         Window{Start: 1000, End: 2000, LastEnd: 900},
		RewardRate:     big.NewInt(10),
		WithdrawLength: 100,
	}
}

func TestScheduleNextStagesWindow(t *testing.T) {
	s := testState()

	if err := s.ScheduleNext(2100, big.NewInt(20), 1000); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	want := Window{Start: 2200, End: 3200, LastEnd: 2100}
	if s.Window != want {
		t.Fatalf("unexpected window: %+v", s.Window)
	}
	if s.PendingRate.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("pending rate not staged: %s", s.PendingRate)
	}
	if s.RewardRate.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("active rate changed early: %s", s.RewardRate)
	}
	if s.Number != 0 {
		t.Fatalf("number advanced early: %d", s.Number)
	}
}

func TestScheduleNextRejectsLockingPhase(t *testing.T) {
	s := testState()
	if err := s.ScheduleNext(1500, big.NewInt(20), 1000); !errors.Is(err, ErrNotWithdrawPhase) {
		t.Fatalf("expected phase error, got %v", err)
	}
}

func TestScheduleNextRejectsZeroLength(t *testing.T) {
	s := testState()
	if err := s.ScheduleNext(2100, big.NewInt(20), 0); !errors.Is(err, ErrZeroLength) {
		t.Fatalf("expected length error, got %v", err)
	}
}

func TestScheduleNextOncePerWithdrawPhase(t *testing.T) {
	s := testState()

	if err := s.ScheduleNext(2100, big.NewInt(20), 1000); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := s.ScheduleNext(2150, big.NewInt(30), 1000); !errors.Is(err, ErrAlreadyScheduled) {
		t.Fatalf("expected one-shot error, got %v", err)
	}

	// Once the staged epoch runs out, the next withdraw phase resets the
	// guard.
	if err := s.ApplyPendingRate(2200); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := s.ScheduleNext(3300, big.NewInt(30), 1000); err != nil {
		t.Fatalf("reschedule after expiry: %v", err)
	}
}

func TestApplyPendingRate(t *testing.T) {
	s := testState()

	if err := s.ApplyPendingRate(2100); !errors.Is(err, ErrNoPendingRate) {
		t.Fatalf("expected no-pending error, got %v", err)
	}
	if err := s.ScheduleNext(2100, big.NewInt(20), 1000); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	// The staged locking phase has not begun yet.
	if err := s.ApplyPendingRate(2150); !errors.Is(err, ErrLockingNotActive) {
		t.Fatalf("expected locking-not-active error, got %v", err)
	}
	if err := s.ApplyPendingRate(2200); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.RewardRate.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("rate not applied: %s", s.RewardRate)
	}
	if s.PendingRate != nil {
		t.Fatalf("pending rate not cleared: %s", s.PendingRate)
	}
	if s.Number != 1 {
		t.Fatalf("number not advanced: %d", s.Number)
	}
}

func TestApplyPendingRateTreatsZeroAsUnstaged(t *testing.T) {
	s := testState()
	if err := s.ScheduleNext(2100, nil, 1000); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := s.ApplyPendingRate(2200); !errors.Is(err, ErrNoPendingRate) {
		t.Fatalf("expected no-pending error for zero rate, got %v", err)
	}
}

func TestInBootstrap(t *testing.T) {
	s := testState()

	if !s.InBootstrap(999) {
		t.Fatalf("expected bootstrap before first locking phase")
	}
	if s.InBootstrap(1000) {
		t.Fatalf("bootstrap must end when locking starts")
	}
	if s.InBootstrap(2100) {
		t.Fatalf("bootstrap must not return after the first epoch")
	}

	scheduled := testState()
	if err := scheduled.ScheduleNext(2100, big.NewInt(20), 1000); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if scheduled.InBootstrap(2150) {
		t.Fatalf("a scheduled state is never in bootstrap")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Length: 1000, WithdrawLength: 100, RewardRate: big.NewInt(1)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := (Config{WithdrawLength: 100, RewardRate: big.NewInt(1)}).Validate(); err == nil {
		t.Fatalf("zero length accepted")
	}
	if err := (Config{Length: 1000, RewardRate: big.NewInt(1)}).Validate(); err == nil {
		t.Fatalf("zero withdraw length accepted")
	}
	if err := (Config{Length: 1000, WithdrawLength: 100}).Validate(); err == nil {
		t.Fatalf("nil reward rate accepted")
	}
}

func TestGenesisState(t *testing.T) {
	cfg := Config{Start: 5000, Length: 1000, WithdrawLength: 100, RewardRate: big.NewInt(7)}

	s := cfg.GenesisState(1000)
	want := Window{Start: 5000, End: 6000, LastEnd: 4900}
	if s.Window != want {
		t.Fatalf("unexpected window: %+v", s.Window)
	}
	if s.RewardRate.Cmp(big.NewInt(7)) != 0 || s.Number != 0 {
		t.Fatalf("unexpected state: %+v", s)
	}

	// A start in the past is pushed to one withdraw-length from now.
	late := cfg
	late.Start = 0
	s = late.GenesisState(9000)
	if s.Window.Start != 9100 || s.Window.End != 10100 || s.Window.LastEnd != 9000 {
		t.Fatalf("unexpected pushed window: %+v", s.Window)
	}
}
