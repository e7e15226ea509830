package greeks

import "covcall/models"

// ShadowGamma measures delta sensitivity under joint price and
// volatility shocks, up and down. priceShock and volShock are relative
// moves, e.g. 0.01 and 0.05.
func ShadowGamma(S, K, T, r, sigma float64, optType models.OptionType, priceShock, volShock float64) (up, down float64, err error) {
	base, err := Delta(S, K, T, r, sigma, optType)
	if err != nil {
		return 0, 0, err
	}

	upS, upSigma := S*(1+priceShock), sigma*(1+volShock)
	upDelta, err := Delta(upS, K, T, r, upSigma, optType)
	if err != nil {
		return 0, 0, err
	}

	downS, downSigma := S*(1-priceShock), sigma*(1-volShock)
	downDelta, err := Delta(downS, K, T, r, downSigma, optType)
	if err != nil {
		return 0, 0, err
	}

	return (upDelta - base) / (upS - S), (base - downDelta) / (S - downS), nil
}

// SkewGamma (volga) is the second derivative of price with respect to
// volatility, estimated by central difference over volStep.
func SkewGamma(S, K, T, r, sigma, volStep float64) (float64, error) {
	vegaUp, err := Vega(S, K, T, r, sigma+volStep)
	if err != nil {
		return 0, err
	}
	vegaDown, err := Vega(S, K, T, r, sigma-volStep)
	if err != nil {
		return 0, err
	}
	return (vegaUp - vegaDown) / (2 * volStep), nil
}
