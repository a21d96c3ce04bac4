package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// StakingMetrics groups the operational gauges and counters of the
// staking ledger.
type StakingMetrics struct {
	deposits           prometheus.Counter
	increases          prometheus.Counter
	withdrawals        prometheus.Counter
	rewardsPaid        prometheus.Counter
	botLoans           prometheus.Counter
	totalStaked        prometheus.Gauge
	botLiability       prometheus.Gauge
	withdrawPercentage prometheus.Gauge
	epochNumber        prometheus.Gauge
}

var (
	stakingOnce     sync.Once
	stakingRegistry *StakingMetrics
)

// Staking returns the process-wide staking metrics registry.
func Staking() *StakingMetrics {
	stakingOnce.Do(func() {
		stakingRegistry = &StakingMetrics{
			deposits: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_deposits_total",
				Help: "Count of successful position deposits.",
			}),
			increases: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_increases_total",
				Help: "Count of successful position increases.",
			}),
			withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_withdrawals_total",
				Help: "Count of successful principal withdrawals.",
			}),
			rewardsPaid: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_rewards_paid_total",
				Help: "Count of reward payouts.",
			}),
			botLoans: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_bot_loans_total",
				Help: "Count of liquidity withdrawals to registered bots.",
			}),
			totalStaked: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "staking_total_staked",
				Help: "Aggregate staked principal.",
			}),
			botLiability: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "staking_bot_liability",
				Help: "Outstanding principal lent to bots.",
			}),
			withdrawPercentage: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "staking_withdraw_percentage",
				Help: "Current rationed withdraw percentage, scaled by 1e9.",
			}),
			epochNumber: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "staking_epoch_number",
				Help: "Active epoch number.",
			}),
		}
		prometheus.MustRegister(
			stakingRegistry.deposits,
			stakingRegistry.increases,
			stakingRegistry.withdrawals,
			stakingRegistry.rewardsPaid,
			stakingRegistry.botLoans,
			stakingRegistry.totalStaked,
			stakingRegistry.botLiability,
			stakingRegistry.withdrawPercentage,
			stakingRegistry.epochNumber,
		)
	})
	return stakingRegistry
}

// ObserveDeposit counts one successful deposit.
func (m *StakingMetrics) ObserveDeposit() {
	if m == nil {
		return
	}
	m.deposits.Inc()
}

// ObserveIncrease counts one successful position increase.
func (m *StakingMetrics) ObserveIncrease() {
	if m == nil {
		return
	}
	m.increases.Inc()
}

// ObserveWithdrawal counts one successful withdrawal.
func (m *StakingMetrics) ObserveWithdrawal() {
	if m == nil {
		return
	}
	m.withdrawals.Inc()
}

// ObserveRewardPaid counts one reward payout.
func (m *StakingMetrics) ObserveRewardPaid() {
	if m == nil {
		return
	}
	m.rewardsPaid.Inc()
}

// ObserveBotLoan counts one bot liquidity withdrawal.
func (m *StakingMetrics) ObserveBotLoan() {
	if m == nil {
		return
	}
	m.botLoans.Inc()
}

// SetLedgerGauges refreshes the gauge snapshot after a state transition.
func (m *StakingMetrics) SetLedgerGauges(totalStaked, botLiability, withdrawPct *big.Int, epochNumber uint64) {
	if m == nil {
		return
	}
	m.totalStaked.Set(approx(totalStaked))
	m.botLiability.Set(approx(botLiability))
	m.withdrawPercentage.Set(approx(withdrawPct))
	m.epochNumber.Set(float64(epochNumber))
}

func approx(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
