package models

import (
	"math"
	"time"
)

type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Stock is an owned share position. It is supplied by the portfolio
// provider and mutated only through position lifecycle events.
type Stock struct {
	Symbol       string  `json:"symbol"`
	Quantity     int     `json:"quantity"`
	AvgCost      float64 `json:"avg_cost"`
	CurrentPrice float64 `json:"current_price"`
}

func (s Stock) MarketValue() float64 {
	return float64(s.Quantity) * s.CurrentPrice
}

func (s Stock) UnrealizedPnL() float64 {
	return (s.CurrentPrice - s.AvgCost) * float64(s.Quantity)
}

// Greeks is a snapshot of option sensitivities, either fetched from a
// provider chain or computed by the greeks package.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// OptionContract is a single option quote. A contract is immutable once
// fetched; a fresh fetch produces a new value.
type OptionContract struct {
	Underlying        string     `json:"underlying"`
	Strike            float64    `json:"strike"`
	Expiration        time.Time  `json:"expiration"`
	Type              OptionType `json:"option_type"`
	Bid               float64    `json:"bid"`
	Ask               float64    `json:"ask"`
	Last              float64    `json:"last"`
	Volume            int        `json:"volume"`
	OpenInterest      int        `json:"open_interest"`
	ImpliedVolatility float64    `json:"implied_volatility"`
	Greeks            Greeks     `json:"greeks"`
}

// MidPrice falls back to whichever side is quoted when the other is missing.
func (o OptionContract) MidPrice() float64 {
	if o.Bid > 0 && o.Ask > 0 {
		return (o.Bid + o.Ask) / 2
	}
	if o.Ask > 0 {
		return o.Ask
	}
	return o.Bid
}

func (o OptionContract) DaysToExpiration(now time.Time) int {
	return int(o.Expiration.Sub(now).Hours() / 24)
}

// TimeToExpiration returns T in years.
func (o OptionContract) TimeToExpiration(now time.Time) float64 {
	return o.Expiration.Sub(now).Hours() / 24 / 365
}

// OTMPercent is the strike distance above the spot, negative when ITM.
func (o OptionContract) OTMPercent(currentPrice float64) float64 {
	if currentPrice <= 0 {
		return 0
	}
	return (o.Strike - currentPrice) / currentPrice
}

func (o OptionContract) IntrinsicValue(currentPrice float64) float64 {
	if o.Type == Call {
		return math.Max(0, currentPrice-o.Strike)
	}
	return math.Max(0, o.Strike-currentPrice)
}

func (o OptionContract) BidAskSpreadPct() float64 {
	mid := o.MidPrice()
	if mid <= 0 {
		return 0
	}
	return (o.Ask - o.Bid) / mid * 100
}

// Bar is one historical trading day. High/Low/Open may be zero when the
// provider only supplies closes.
type Bar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// PriceSeries is a date-ordered sequence of daily bars. Gaps and
// irregular spacing are tolerated by consumers.
type PriceSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

func (p PriceSeries) Len() int { return len(p.Bars) }

// HasOHLC reports whether every bar carries a usable high/low range,
// which the Garman-Klass and Parkinson estimators require.
func (p PriceSeries) HasOHLC() bool {
	if len(p.Bars) == 0 {
		return false
	}
	for _, b := range p.Bars {
		if b.High <= 0 || b.Low <= 0 || b.Open <= 0 {
			return false
		}
	}
	return true
}
