// Package positions ranks candidate covered-call strikes, advises on
// rolls and tracks open positions and their P&L.
package positions

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"covcall/models"
)

type PositionStatus string

const (
	StatusOpen     PositionStatus = "OPEN"
	StatusAssigned PositionStatus = "ASSIGNED"
	StatusExpired  PositionStatus = "EXPIRED"
	StatusRolled   PositionStatus = "ROLLED"
	StatusClosed   PositionStatus = "CLOSED"
)

// CloseReason selects the terminal state a close books into.
type CloseReason string

const (
	ReasonExpired  CloseReason = "EXPIRED"
	ReasonAssigned CloseReason = "ASSIGNED"
	ReasonRolled   CloseReason = "ROLLED"
	ReasonManual   CloseReason = "MANUAL"
)

func (r CloseReason) status() PositionStatus {
	switch r {
	case ReasonExpired:
		return StatusExpired
	case ReasonAssigned:
		return StatusAssigned
	case ReasonRolled:
		return StatusRolled
	default:
		return StatusClosed
	}
}

// legalTransitions is the position lifecycle machine. Every terminal
// state rejects further transitions.
var legalTransitions = map[PositionStatus][]PositionStatus{
	StatusOpen: {StatusAssigned, StatusExpired, StatusRolled, StatusClosed},
}

func transitionAllowed(from, to PositionStatus) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Position is one stock leg plus a short call leg. Concurrent
// mark-to-market and close calls on the same position serialize on mu;
// distinct positions are independent.
type Position struct {
	mu sync.Mutex

	ID        string                `json:"id"`
	Stock     models.Stock          `json:"stock"`
	Contract  models.OptionContract `json:"contract"`
	Quantity  int                   `json:"quantity"`
	EntryDate time.Time             `json:"entry_date"`
	Status    PositionStatus        `json:"status"`

	PremiumCollected decimal.Decimal `json:"premium_collected"`
	UnrealizedPnL    decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnL      decimal.Decimal `json:"realized_pnl"`
	ClosedAt         time.Time       `json:"closed_at,omitempty"`
}

// MaxProfit is the best case if assigned: capped stock gain plus premium.
func (p *Position) MaxProfit() decimal.Decimal {
	stockGain := decimal.NewFromFloat(p.Contract.Strike - p.Stock.AvgCost).
		Mul(decimal.NewFromInt(int64(p.Quantity * 100)))
	return stockGain.Add(p.PremiumCollected)
}

// BreakevenPrice is the stock price below which the position loses money
// net of premium.
func (p *Position) BreakevenPrice() float64 {
	premium, _ := p.PremiumCollected.Float64()
	return p.Stock.AvgCost - premium/float64(p.Quantity*100)
}
