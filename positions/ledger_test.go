package positions

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covcall/models"
)

var ledgerNow = time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC)

func testStock() models.Stock {
	return models.Stock{Symbol: "AAPL", Quantity: 300, AvgCost: 180, CurrentPrice: 195}
}

func testContract() models.OptionContract {
	return models.OptionContract{
		Underlying: "AAPL",
		Strike:     200,
		Expiration: ledgerNow.AddDate(0, 0, 45),
		Type:       models.Call,
		Bid:        4.20,
		Ask:        4.40,
		Greeks:     models.Greeks{Delta: 0.30, Theta: -0.05},
	}
}

func TestOpen_BooksPremiumAtBid(t *testing.T) {
	l := NewLedger()

	pos, err := l.Open(testStock(), testContract(), 3, ledgerNow)
	require.NoError(t, err)

	assert.Equal(t, "CC-AAPL-001", pos.ID)
	assert.Equal(t, StatusOpen, pos.Status)
	// 3 contracts x 100 shares x 4.20 bid
	assert.True(t, pos.PremiumCollected.Equal(decimal.NewFromFloat(1260.0)),
		"premium %s", pos.PremiumCollected)
	assert.Len(t, l.OpenPositions(), 1)
}

func TestOpen_InsufficientShares(t *testing.T) {
	l := NewLedger()

	_, err := l.Open(testStock(), testContract(), 4, ledgerNow)
	assert.ErrorIs(t, err, models.ErrInsufficientShares)
	assert.Empty(t, l.OpenPositions(), "failed open must not mutate the book")
}

func TestOpen_RejectsExpiredContract(t *testing.T) {
	l := NewLedger()

	c := testContract()
	c.Expiration = ledgerNow.AddDate(0, 0, -1)
	_, err := l.Open(testStock(), c, 1, ledgerNow)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestMarkToMarket(t *testing.T) {
	l := NewLedger()
	pos, err := l.Open(testStock(), testContract(), 3, ledgerNow)
	require.NoError(t, err)

	// stock P&L (198-180)x300 = 5400, premium 1260, buyback 5.10x300 = 1530
	pnl, err := l.MarkToMarket(pos.ID, 198, 5.10)
	require.NoError(t, err)
	assert.True(t, pnl.Equal(decimal.NewFromFloat(5130.0)), "unrealized %s", pnl)

	_, err = l.MarkToMarket("CC-AAPL-999", 198, 5.10)
	assert.ErrorIs(t, err, models.ErrPositionNotFound)
}

func TestClose_Assigned(t *testing.T) {
	l := NewLedger()
	pos, err := l.Open(testStock(), testContract(), 3, ledgerNow)
	require.NoError(t, err)

	closed, err := l.Close(pos.ID, ReasonAssigned, 0, ledgerNow.AddDate(0, 0, 45))
	require.NoError(t, err)

	assert.Equal(t, StatusAssigned, closed.Status)
	// premium 1260 + (200-180)x300 delivered at the strike
	assert.True(t, closed.RealizedPnL.Equal(decimal.NewFromFloat(7260.0)),
		"realized %s", closed.RealizedPnL)
	assert.Equal(t, 0, closed.Stock.Quantity, "assignment delivers the covered shares")
	assert.Empty(t, l.OpenPositions())
	assert.Len(t, l.ClosedPositions(), 1)
}

func TestClose_ManualBuyback(t *testing.T) {
	l := NewLedger()
	pos, err := l.Open(testStock(), testContract(), 3, ledgerNow)
	require.NoError(t, err)

	closed, err := l.Close(pos.ID, ReasonManual, 2.00, ledgerNow.AddDate(0, 0, 20))
	require.NoError(t, err)

	assert.Equal(t, StatusClosed, closed.Status)
	// premium 1260 - buyback 2.00x300; shares stay put
	assert.True(t, closed.RealizedPnL.Equal(decimal.NewFromFloat(660.0)),
		"realized %s", closed.RealizedPnL)
	assert.Equal(t, 300, closed.Stock.Quantity)
}

func TestClose_TwiceIsIllegal(t *testing.T) {
	l := NewLedger()
	pos, err := l.Open(testStock(), testContract(), 3, ledgerNow)
	require.NoError(t, err)

	_, err = l.Close(pos.ID, ReasonExpired, 0, ledgerNow.AddDate(0, 0, 45))
	require.NoError(t, err)

	// The position left the open book, so a second close cannot find it.
	_, err = l.Close(pos.ID, ReasonAssigned, 0, ledgerNow.AddDate(0, 0, 46))
	assert.Error(t, err)
}

func TestTransitionAllowed_OnlyFromOpen(t *testing.T) {
	for _, from := range []PositionStatus{StatusAssigned, StatusExpired, StatusRolled, StatusClosed} {
		assert.False(t, transitionAllowed(from, StatusClosed), "from %s", from)
	}
	for _, to := range []PositionStatus{StatusAssigned, StatusExpired, StatusRolled, StatusClosed} {
		assert.True(t, transitionAllowed(StatusOpen, to), "to %s", to)
	}
	assert.False(t, transitionAllowed(StatusOpen, StatusOpen))
}

func TestPortfolioAggregate(t *testing.T) {
	l := NewLedger()
	_, err := l.Open(testStock(), testContract(), 3, ledgerNow)
	require.NoError(t, err)

	second := testStock()
	second.Symbol = "MSFT"
	second.Quantity = 100
	second.CurrentPrice = 420
	c := testContract()
	c.Underlying = "MSFT"
	c.Strike = 440
	c.Bid, c.Ask = 6.0, 6.2
	c.Greeks = models.Greeks{Delta: 0.25, Theta: -0.08}
	_, err = l.Open(second, c, 1, ledgerNow)
	require.NoError(t, err)

	agg := l.PortfolioAggregate()

	assert.Equal(t, 2, agg.OpenPositions)
	// (300 - 0.30x100x3) + (100 - 0.25x100x1)
	assert.InDelta(t, 210+75, agg.NetDelta, 1e-9)
	// short calls collect decay: 0.05x100x3 + 0.08x100x1
	assert.InDelta(t, 15+8, agg.NetTheta, 1e-9)
	assert.True(t, agg.TotalPremium.Equal(decimal.NewFromFloat(1260+600)),
		"premium %s", agg.TotalPremium)
	assert.InDelta(t, 300*195+100*420, agg.StockValue, 1e-9)
}

func TestValueAtRisk95(t *testing.T) {
	l := NewLedger()
	_, err := l.Open(testStock(), testContract(), 3, ledgerNow)
	require.NoError(t, err)

	v, err := l.ValueAtRisk95(0.02)
	require.NoError(t, err)
	// z(0.95) ~ 1.6449, delta dollars = 210 x 195
	assert.InDelta(t, 1.6449*0.02*210*195, v, 1.0)

	_, err = l.ValueAtRisk95(0)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLedger_ConcurrentMarkToMarket(t *testing.T) {
	l := NewLedger()
	pos, err := l.Open(testStock(), testContract(), 3, ledgerNow)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.MarkToMarket(pos.ID, 190+float64(i), 4.0)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	pos.mu.Lock()
	defer pos.mu.Unlock()
	assert.False(t, pos.UnrealizedPnL.IsZero())
}
