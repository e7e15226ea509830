package greeks

import (
	"fmt"
	"math"

	"covcall/models"
)

const (
	maxIterations = 100
	epsilon       = 1e-8
	initialGuess  = 0.30

	// Bisection bounds for the fallback search.
	sigmaFloor = 0.01
	sigmaCeil  = 5.0

	// Below this vega the Newton step is ill-conditioned.
	minVega = 1e-6
)

// ImpliedVolatility solves for the volatility implied by a market price.
// Newton-Raphson with vega as the derivative converges in a handful of
// iterations for liquid strikes; deep ITM/OTM contracts where vega
// underflows fall back to bisection over [0.01, 5.0]. Both searches are
// iteration-bounded and the failure mode is models.ErrNoConvergence.
func ImpliedVolatility(marketPrice, S, K, T, r float64, optType models.OptionType) (float64, error) {
	if marketPrice <= 0 {
		return 0, fmt.Errorf("%w: market price %.4f must be positive", models.ErrInvalidInput, marketPrice)
	}
	if err := validate(S, K, T, 1); err != nil {
		return 0, err
	}

	sigma := initialGuess
	for i := 0; i < maxIterations; i++ {
		got := price(S, K, T, r, sigma, optType)
		diff := got - marketPrice
		if math.Abs(diff) < epsilon {
			return sigma, nil
		}

		v := vega(S, K, T, r, sigma)
		if v < minVega || math.IsNaN(v) {
			return bisectIV(marketPrice, S, K, T, r, optType)
		}

		sigma -= diff / v
		if sigma <= 0 || sigma > sigmaCeil || math.IsNaN(sigma) {
			return bisectIV(marketPrice, S, K, T, r, optType)
		}
	}

	return bisectIV(marketPrice, S, K, T, r, optType)
}

func bisectIV(marketPrice, S, K, T, r float64, optType models.OptionType) (float64, error) {
	lo, hi := sigmaFloor, sigmaCeil

	pLo := price(S, K, T, r, lo, optType)
	pHi := price(S, K, T, r, hi, optType)
	if marketPrice < pLo || marketPrice > pHi {
		return 0, fmt.Errorf("%w: price %.4f outside [%.4f, %.4f] for sigma in [%.2f, %.2f]",
			models.ErrNoConvergence, marketPrice, pLo, pHi, sigmaFloor, sigmaCeil)
	}

	for i := 0; i < maxIterations; i++ {
		mid := (lo + hi) / 2
		diff := price(S, K, T, r, mid, optType) - marketPrice
		if math.Abs(diff) < epsilon || (hi-lo)/2 < 1e-10 {
			return mid, nil
		}
		if diff > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}

	return 0, fmt.Errorf("%w: bisection exhausted %d iterations", models.ErrNoConvergence, maxIterations)
}
