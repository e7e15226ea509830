package positions

import (
	"fmt"

	"covcall/greeks"
	"covcall/models"
)

const (
	defaultAssignmentDelta = 0.70
	defaultDTEThreshold    = 7
)

// RollAdvisor makes stateless roll-or-hold decisions for an open short
// call. Both thresholds are boundary-inclusive.
type RollAdvisor struct {
	DeltaThreshold float64
	DTEThreshold   int
	RiskFreeRate   float64
}

func NewRollAdvisor(riskFreeRate float64) *RollAdvisor {
	return &RollAdvisor{
		DeltaThreshold: defaultAssignmentDelta,
		DTEThreshold:   defaultDTEThreshold,
		RiskFreeRate:   riskFreeRate,
	}
}

// ShouldRoll is true when expiration is at most DTEThreshold days away
// or the call's delta has reached DeltaThreshold. Delta is recomputed
// from the current price and the contract's implied volatility when
// possible; otherwise the fetched snapshot delta is used.
func (a *RollAdvisor) ShouldRoll(pos *Position, currentPrice float64, daysToExpiration int) (bool, error) {
	if pos == nil {
		return false, fmt.Errorf("%w: nil position", models.ErrInvalidInput)
	}
	if currentPrice <= 0 {
		return false, fmt.Errorf("%w: current price %.4f", models.ErrInvalidInput, currentPrice)
	}

	if daysToExpiration <= a.DTEThreshold {
		return true, nil
	}

	delta := pos.Contract.Greeks.Delta
	if iv := pos.Contract.ImpliedVolatility; iv > 0 {
		T := float64(daysToExpiration) / 365
		if d, err := greeks.Delta(currentPrice, pos.Contract.Strike, T, a.RiskFreeRate, iv, models.Call); err == nil {
			delta = d
		}
	}

	return delta >= a.DeltaThreshold, nil
}

// RollCredit is the cash flow of closing one call and opening another.
type RollCredit struct {
	BuyToCloseCost   float64 `json:"buy_to_close_cost"`
	SellToOpenCredit float64 `json:"sell_to_open_credit"`
	NetCredit        float64 `json:"net_credit"`
}

// CalculateRollCredit prices both legs at mid, scaled by quantity x 100.
// The function only computes the figure; enforcing a credit-only policy
// is the caller's decision.
func CalculateRollCredit(old, new models.OptionContract, quantity int) (RollCredit, error) {
	if quantity <= 0 {
		return RollCredit{}, fmt.Errorf("%w: quantity %d", models.ErrInvalidInput, quantity)
	}
	oldMid, newMid := old.MidPrice(), new.MidPrice()
	if oldMid <= 0 || newMid <= 0 {
		return RollCredit{}, fmt.Errorf("%w: both legs need a usable quote", models.ErrInvalidInput)
	}

	scale := float64(quantity * 100)
	rc := RollCredit{
		BuyToCloseCost:   oldMid * scale,
		SellToOpenCredit: newMid * scale,
	}
	rc.NetCredit = rc.SellToOpenCredit - rc.BuyToCloseCost
	return rc, nil
}
