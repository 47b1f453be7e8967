package compute

import (
	"sort"
	"time"
)

// Simulation bounds: too few runs gives meaningless statistics, too many
// blocks a bridge node for longer than a report cycle.
const (
	minSimulations = 100
	maxSimulations = 100000
)

// RiskInput parameterizes a Monte Carlo portfolio risk simulation. Monetary
// values and rates are in basis points (100000 = $1000.00, 2000 = 20%).
type RiskInput struct {
	NumSimulations uint64 `json:"num_simulations"`
	PortfolioValue uint64 `json:"portfolio_value"`
	Volatility     uint64 `json:"volatility"`
	TimeHorizon    uint64 `json:"time_horizon"` // days
	Seed           uint64 `json:"seed,omitempty"`
}

// RiskOutput carries the simulation statistics, in basis points. SharpeRatio
// is scaled by 10000.
type RiskOutput struct {
	MeanReturn     int64  `json:"mean_return"`
	ValueAtRisk    int64  `json:"value_at_risk"` // 95% VaR, expressed as a positive loss
	SharpeRatio    int64  `json:"sharpe_ratio"`
	SimulationsRun uint64 `json:"simulations_run"`
}

// CalculateRisk runs a geometric-Brownian-motion Monte Carlo over the
// portfolio parameters and reports mean return, 95% value at risk, and
// Sharpe ratio. A zero seed picks one from the clock.
func CalculateRisk(input RiskInput) *RiskOutput {
	if input.NumSimulations < minSimulations {
		input.NumSimulations = minSimulations
	}
	if input.NumSimulations > maxSimulations {
		input.NumSimulations = maxSimulations
	}
	if input.PortfolioValue == 0 {
		input.PortfolioValue = 100000
	}
	if input.Volatility == 0 {
		input.Volatility = 2000 // 20% annual volatility
	}
	if input.TimeHorizon == 0 {
		input.TimeHorizon = 30
	}

	seed := input.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := newLCG(seed)

	sims := input.NumSimulations
	returns := make([]int64, sims)
	var sumReturns, sumSquared int64

	for i := uint64(0); i < sims; i++ {
		r := simulateReturn(rng, input.Volatility, input.TimeHorizon)
		returns[i] = r
		sumReturns += r
		sumSquared += (r * r) / 10000
	}

	meanReturn := sumReturns / int64(sims)

	variance := (sumSquared / int64(sims)) - ((meanReturn * meanReturn) / 10000)
	var stdDev int64
	if variance > 0 {
		stdDev = intSqrt(variance)
	}

	sort.Slice(returns, func(i, j int) bool { return returns[i] < returns[j] })

	// 95% VaR is the 5th-percentile return, reported as a positive loss
	varIndex := (sims * 5) / 100
	var95 := -returns[varIndex]

	var sharpe int64
	if stdDev > 0 {
		sharpe = (meanReturn * 10000) / stdDev
	}

	return &RiskOutput{
		MeanReturn:     meanReturn,
		ValueAtRisk:    var95,
		SharpeRatio:    sharpe,
		SimulationsRun: sims,
	}
}

// simulateReturn models one return path: volatility scaled by the time
// horizon times a normal draw, with zero drift.
func simulateReturn(rng *lcg, volatility, timeHorizon uint64) int64 {
	scaledTime := int64(timeHorizon*10000) / 365
	randomComponent := rng.normal(0, int64(volatility))
	return (randomComponent * scaledTime) / 10000
}

// lcg is a linear congruential generator (Numerical Recipes parameters).
// Deterministic for a given seed, which keeps simulations reproducible.
type lcg struct {
	state uint64
}

func newLCG(seed uint64) *lcg {
	return &lcg{state: seed}
}

func (r *lcg) next() uint64 {
	r.state = r.state*1664525 + 1013904223
	return r.state
}

// uniform returns a draw in [0, 10000).
func (r *lcg) uniform() int64 {
	return int64(r.next() % 10000)
}

// normal approximates a normal draw via the central limit theorem: the sum
// of 12 uniform draws is close to N(6, 1) in scaled units.
func (r *lcg) normal(mean, stdDev int64) int64 {
	var sum int64
	for i := 0; i < 12; i++ {
		sum += r.uniform()
	}
	z := (sum - 60000) / 10 // ~N(0,1) scaled by 1000
	return mean + (z*stdDev)/1000
}

// intSqrt is Newton's method on integers, enough precision for basis points.
func intSqrt(v int64) int64 {
	if v <= 0 {
		return 0
	}
	guess := v / 2
	for i := 0; i < 10; i++ {
		if guess == 0 {
			break
		}
		guess = (guess + v/guess) / 2
	}
	return guess
}
