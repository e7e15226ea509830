package backtest

import "math"

// PremiumEstimator prices the simulated call sold at each window start.
// It exists as a seam: swapping in real historical chain data must not
// touch the simulation loop.
type PremiumEstimator interface {
	// Estimate returns a per-share premium for a call dte days out,
	// given an annualized volatility for the underlying.
	Estimate(price, strike float64, dte int, vol float64) float64
}

// HeuristicEstimator is a deterministic approximation, not a replay of
// real option prices: time value scaled by sqrt-time volatility, plus
// intrinsic value, discounted exponentially with OTM distance.
type HeuristicEstimator struct{}

const premiumFloor = 0.10

func (HeuristicEstimator) Estimate(price, strike float64, dte int, vol float64) float64 {
	if price <= 0 || strike <= 0 || dte <= 0 {
		return premiumFloor
	}

	moneyness := (strike - price) / price
	timeValue := vol * math.Sqrt(float64(dte)/365) * price * 0.4
	intrinsic := math.Max(0, price-strike)

	premium := intrinsic + timeValue
	if moneyness > 0 {
		premium *= math.Exp(-moneyness * 5)
	}

	return math.Max(premiumFloor, premium)
}
