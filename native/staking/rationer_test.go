package staking

import (
	"math/big"
	"testing"
)

func TestWithdrawPercentage(t *testing.T) {
	cases := []struct {
		name      string
		total     int64
		liability int64
		want      int64
	}{
		{"no liability", 100, 0, Precision},
		{"half lent", 100, 50, Precision / 2},
		{"one percent lent", 100, 1, 990_000_000},
		{"empty pool", 0, 0, Precision},
		{"liability equals pool", 100, 100, 0},
		{"liability exceeds pool", 100, 150, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WithdrawPercentage(big.NewInt(tc.total), big.NewInt(tc.liability))
			if got.Cmp(big.NewInt(tc.want)) != 0 {
				t.Fatalf("got %s want %d", got, tc.want)
			}
		})
	}
}

func TestWithdrawPercentageRoundsDown(t *testing.T) {
	// 2/3 of the pool available: the fixed-point result truncates.
	got := WithdrawPercentage(big.NewInt(3), big.NewInt(1))
	if got.Cmp(big.NewInt(666_666_666)) != 0 {
		t.Fatalf("got %s want 666666666", got)
	}
}

func TestWithdrawCap(t *testing.T) {
	cap50 := big.NewInt(Precision / 2)
	if got := WithdrawCap(big.NewInt(96), cap50); got.Cmp(big.NewInt(48)) != 0 {
		t.Fatalf("got %s want 48", got)
	}
	if got := WithdrawCap(big.NewInt(1), cap50); got.Sign() != 0 {
		t.Fatalf("expected truncation to zero, got %s", got)
	}
	if got := WithdrawCap(big.NewInt(100), big.NewInt(Precision)); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("got %s want 100", got)
	}
}

func TestBotBalanceIsNegative(t *testing.T) {
	if got := BotBalance(big.NewInt(40)); got.Cmp(big.NewInt(-40)) != 0 {
		t.Fatalf("got %s want -40", got)
	}
	if got := BotBalance(nil); got.Sign() != 0 {
		t.Fatalf("got %s want 0", got)
	}
}
