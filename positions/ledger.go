package positions

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"covcall/logging"
	"covcall/models"
)

// Ledger is the mutable book of covered-call positions. The book itself
// is guarded by an RWMutex; P&L updates on an individual position hold
// that position's own lock, so distinct positions update independently.
type Ledger struct {
	mu     sync.RWMutex
	open   map[string]*Position
	closed []*Position
	seq    int
}

func NewLedger() *Ledger {
	return &Ledger{open: make(map[string]*Position)}
}

// Open sells quantity contracts against the stock leg. Premium is booked
// at the bid. Fails without mutation when the share count cannot cover
// the contracts.
func (l *Ledger) Open(stock models.Stock, contract models.OptionContract, quantity int, now time.Time) (*Position, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity %d must be positive", models.ErrInvalidInput, quantity)
	}
	if contract.Strike <= 0 {
		return nil, fmt.Errorf("%w: strike %.4f must be positive", models.ErrInvalidInput, contract.Strike)
	}
	if !contract.Expiration.After(now) {
		return nil, fmt.Errorf("%w: contract expired %s", models.ErrInvalidInput, contract.Expiration.Format("2006-01-02"))
	}
	if quantity*100 > stock.Quantity {
		return nil, fmt.Errorf("%w: %d contracts need %d shares, have %d",
			models.ErrInsufficientShares, quantity, quantity*100, stock.Quantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	pos := &Position{
		ID:        fmt.Sprintf("CC-%s-%03d", stock.Symbol, l.seq),
		Stock:     stock,
		Contract:  contract,
		Quantity:  quantity,
		EntryDate: now,
		Status:    StatusOpen,
		PremiumCollected: decimal.NewFromFloat(contract.Bid).
			Mul(decimal.NewFromInt(int64(quantity * 100))),
	}
	l.open[pos.ID] = pos

	logging.L().Infow("opened position",
		"id", pos.ID, "symbol", stock.Symbol, "strike", contract.Strike,
		"contracts", quantity, "premium", pos.PremiumCollected.StringFixed(2))
	return pos, nil
}

// MarkToMarket recomputes unrealized P&L from the current stock price and
// the current cost of buying the call back. State is unchanged.
func (l *Ledger) MarkToMarket(id string, stockPrice, contractPrice float64) (decimal.Decimal, error) {
	if stockPrice <= 0 || contractPrice < 0 {
		return decimal.Zero, fmt.Errorf("%w: stock %.4f / contract %.4f", models.ErrInvalidInput, stockPrice, contractPrice)
	}

	pos, err := l.lookup(id)
	if err != nil {
		return decimal.Zero, err
	}

	pos.mu.Lock()
	defer pos.mu.Unlock()
	if pos.Status != StatusOpen {
		return decimal.Zero, fmt.Errorf("%w: %s is %s", models.ErrIllegalTransition, id, pos.Status)
	}

	shares := decimal.NewFromInt(int64(pos.Stock.Quantity))
	stockPnL := decimal.NewFromFloat(stockPrice - pos.Stock.AvgCost).Mul(shares)
	buyback := decimal.NewFromFloat(contractPrice).Mul(decimal.NewFromInt(int64(pos.Quantity * 100)))

	pos.Stock.CurrentPrice = stockPrice
	pos.UnrealizedPnL = stockPnL.Add(pos.PremiumCollected).Sub(buyback)
	return pos.UnrealizedPnL, nil
}

// Close books realized P&L and transitions state atomically: validation
// happens before any mutation, so either both apply or neither does.
// ASSIGNED delivers shares at the strike and reduces the stock leg; the
// other reasons only release the call obligation. fillPrice is the
// buy-to-close price per share (zero for an expired call).
func (l *Ledger) Close(id string, reason CloseReason, fillPrice float64, now time.Time) (*Position, error) {
	if fillPrice < 0 {
		return nil, fmt.Errorf("%w: fill price %.4f", models.ErrInvalidInput, fillPrice)
	}
	target := reason.status()

	pos, err := l.lookup(id)
	if err != nil {
		return nil, err
	}

	pos.mu.Lock()
	if !transitionAllowed(pos.Status, target) {
		pos.mu.Unlock()
		return nil, fmt.Errorf("%w: %s -> %s on %s", models.ErrIllegalTransition, pos.Status, target, id)
	}

	contractShares := decimal.NewFromInt(int64(pos.Quantity * 100))
	realized := pos.PremiumCollected.Sub(decimal.NewFromFloat(fillPrice).Mul(contractShares))

	if reason == ReasonAssigned {
		stockGain := decimal.NewFromFloat(pos.Contract.Strike - pos.Stock.AvgCost).Mul(contractShares)
		realized = realized.Add(stockGain)
		pos.Stock.Quantity -= pos.Quantity * 100
	}

	pos.RealizedPnL = realized
	pos.UnrealizedPnL = decimal.Zero
	pos.Status = target
	pos.ClosedAt = now
	pos.mu.Unlock()

	l.mu.Lock()
	delete(l.open, id)
	l.closed = append(l.closed, pos)
	l.mu.Unlock()

	logging.L().Infow("closed position",
		"id", id, "reason", reason, "realized", realized.StringFixed(2))
	return pos, nil
}

// OpenPositions snapshots the open book, ordered arbitrarily.
func (l *Ledger) OpenPositions() []*Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Position, 0, len(l.open))
	for _, p := range l.open {
		out = append(out, p)
	}
	return out
}

// ClosedPositions returns the archive in close order.
func (l *Ledger) ClosedPositions() []*Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Position(nil), l.closed...)
}

func (l *Ledger) lookup(id string) (*Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pos, ok := l.open[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrPositionNotFound, id)
	}
	return pos, nil
}
