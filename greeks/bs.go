// Package greeks implements closed-form Black-Scholes option pricing,
// sensitivities and an implied-volatility solver.
package greeks

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"covcall/models"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

func validate(S, K, T, sigma float64) error {
	if S <= 0 {
		return fmt.Errorf("%w: underlying price %.4f must be positive", models.ErrInvalidInput, S)
	}
	if K <= 0 {
		return fmt.Errorf("%w: strike %.4f must be positive", models.ErrInvalidInput, K)
	}
	if T <= 0 {
		return fmt.Errorf("%w: time to expiration %.6f must be positive", models.ErrInvalidInput, T)
	}
	if sigma <= 0 {
		return fmt.Errorf("%w: volatility %.4f must be positive", models.ErrInvalidInput, sigma)
	}
	return nil
}

func d1(S, K, T, r, sigma float64) float64 {
	return (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
}

func d2(d1, sigma, T float64) float64 {
	return d1 - sigma*math.Sqrt(T)
}

// Price is the Black-Scholes fair value of a European option.
func Price(S, K, T, r, sigma float64, optType models.OptionType) (float64, error) {
	if err := validate(S, K, T, sigma); err != nil {
		return 0, err
	}
	return price(S, K, T, r, sigma, optType), nil
}

func price(S, K, T, r, sigma float64, optType models.OptionType) float64 {
	dOne := d1(S, K, T, r, sigma)
	dTwo := d2(dOne, sigma, T)
	if optType == models.Call {
		return S*stdNormal.CDF(dOne) - K*math.Exp(-r*T)*stdNormal.CDF(dTwo)
	}
	return K*math.Exp(-r*T)*stdNormal.CDF(-dTwo) - S*stdNormal.CDF(-dOne)
}

// Delta is in [0,1] for calls and [-1,0] for puts.
func Delta(S, K, T, r, sigma float64, optType models.OptionType) (float64, error) {
	if err := validate(S, K, T, sigma); err != nil {
		return 0, err
	}
	dOne := d1(S, K, T, r, sigma)
	if optType == models.Call {
		return stdNormal.CDF(dOne), nil
	}
	return stdNormal.CDF(dOne) - 1, nil
}

func Gamma(S, K, T, r, sigma float64) (float64, error) {
	if err := validate(S, K, T, sigma); err != nil {
		return 0, err
	}
	dOne := d1(S, K, T, r, sigma)
	return stdNormal.Prob(dOne) / (S * sigma * math.Sqrt(T)), nil
}

// Theta is the annual time decay; divide by 365 for a daily figure.
func Theta(S, K, T, r, sigma float64, optType models.OptionType) (float64, error) {
	if err := validate(S, K, T, sigma); err != nil {
		return 0, err
	}
	dOne := d1(S, K, T, r, sigma)
	dTwo := d2(dOne, sigma, T)

	decay := -(S * stdNormal.Prob(dOne) * sigma) / (2 * math.Sqrt(T))
	if optType == models.Call {
		return decay - r*K*math.Exp(-r*T)*stdNormal.CDF(dTwo), nil
	}
	return decay + r*K*math.Exp(-r*T)*stdNormal.CDF(-dTwo), nil
}

// Vega is the sensitivity to a full point of volatility.
func Vega(S, K, T, r, sigma float64) (float64, error) {
	if err := validate(S, K, T, sigma); err != nil {
		return 0, err
	}
	return vega(S, K, T, r, sigma), nil
}

func vega(S, K, T, r, sigma float64) float64 {
	return S * stdNormal.Prob(d1(S, K, T, r, sigma)) * math.Sqrt(T)
}

// Snapshot computes the full set of sensitivities in one pass.
func Snapshot(S, K, T, r, sigma float64, optType models.OptionType) (models.Greeks, error) {
	if err := validate(S, K, T, sigma); err != nil {
		return models.Greeks{}, err
	}

	dOne := d1(S, K, T, r, sigma)
	dTwo := d2(dOne, sigma, T)

	g := models.Greeks{
		Gamma: stdNormal.Prob(dOne) / (S * sigma * math.Sqrt(T)),
		Vega:  S * stdNormal.Prob(dOne) * math.Sqrt(T),
	}
	decay := -(S * stdNormal.Prob(dOne) * sigma) / (2 * math.Sqrt(T))
	if optType == models.Call {
		g.Delta = stdNormal.CDF(dOne)
		g.Theta = decay - r*K*math.Exp(-r*T)*stdNormal.CDF(dTwo)
		g.Rho = K * T * math.Exp(-r*T) * stdNormal.CDF(dTwo)
	} else {
		g.Delta = stdNormal.CDF(dOne) - 1
		g.Theta = decay + r*K*math.Exp(-r*T)*stdNormal.CDF(-dTwo)
		g.Rho = -K * T * math.Exp(-r*T) * stdNormal.CDF(-dTwo)
	}
	return g, nil
}
