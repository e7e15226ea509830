package positions

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"covcall/models"
)

// Aggregate is the net exposure of all OPEN positions. A short call
// offsets share delta, and its decay accrues to the seller, so NetTheta
// is positive for a typical book.
type Aggregate struct {
	OpenPositions int             `json:"open_positions"`
	NetDelta      float64         `json:"net_delta"`
	NetTheta      float64         `json:"net_theta"`
	TotalPremium  decimal.Decimal `json:"total_premium"`
	StockValue    float64         `json:"stock_value"`
}

// PortfolioAggregate sums delta and theta exposure across open positions:
// shares minus delta x 100 x contracts per position, and the negated
// contract theta x 100 x contracts.
func (l *Ledger) PortfolioAggregate() Aggregate {
	agg := Aggregate{TotalPremium: decimal.Zero}

	for _, pos := range l.OpenPositions() {
		pos.mu.Lock()
		contracts := float64(pos.Quantity)
		agg.NetDelta += float64(pos.Stock.Quantity) - pos.Contract.Greeks.Delta*100*contracts
		agg.NetTheta += -pos.Contract.Greeks.Theta * 100 * contracts
		agg.TotalPremium = agg.TotalPremium.Add(pos.PremiumCollected)
		agg.StockValue += pos.Stock.MarketValue()
		agg.OpenPositions++
		pos.mu.Unlock()
	}
	return agg
}

// ValueAtRisk95 is a one-day parametric VaR of the book's delta-dollar
// exposure: z(0.95) x daily vol x net delta dollars. dailyVol is a daily
// (not annualized) return volatility of the underlying.
func (l *Ledger) ValueAtRisk95(dailyVol float64) (float64, error) {
	if dailyVol <= 0 {
		return 0, fmt.Errorf("%w: daily volatility %.6f", models.ErrInvalidInput, dailyVol)
	}

	deltaDollars := 0.0
	for _, pos := range l.OpenPositions() {
		pos.mu.Lock()
		perPosition := float64(pos.Stock.Quantity) - pos.Contract.Greeks.Delta*100*float64(pos.Quantity)
		deltaDollars += perPosition * pos.Stock.CurrentPrice
		pos.mu.Unlock()
	}

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.95)
	return z * dailyVol * deltaDollars, nil
}
