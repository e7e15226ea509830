package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covcall/models"
)

var seriesStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func flatSeries(n int, price float64) models.PriceSeries {
	s := models.PriceSeries{Symbol: "FLAT"}
	for i := 0; i < n; i++ {
		s.Bars = append(s.Bars, models.Bar{
			Date:  seriesStart.AddDate(0, 0, i),
			Close: price,
		})
	}
	return s
}

func risingSeries(n int, start, step float64) models.PriceSeries {
	s := models.PriceSeries{Symbol: "UP"}
	for i := 0; i < n; i++ {
		s.Bars = append(s.Bars, models.Bar{
			Date:  seriesStart.AddDate(0, 0, i),
			Close: start + step*float64(i),
		})
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	_, err := New(flatSeries(60, 100), 99)
	assert.ErrorIs(t, err, models.ErrInsufficientShares)

	_, err = New(flatSeries(1, 100), 300)
	assert.ErrorIs(t, err, models.ErrDataGap)
}

func TestCompare_RejectsInvalidPolicy(t *testing.T) {
	b, err := New(flatSeries(60, 100), 300)
	require.NoError(t, err)

	_, err = b.Compare([]Policy{{Label: "bad", OTMPercent: 0.05, Days: 0}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = b.Compare([]Policy{{Label: "bad", OTMPercent: -0.01, Days: 30}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCompare_DefaultsWhenNoPolicies(t *testing.T) {
	b, err := New(flatSeries(120, 100), 300)
	require.NoError(t, err)

	run, err := b.Compare(nil)
	require.NoError(t, err)

	assert.Len(t, run.Results, len(DefaultPolicies()))
	assert.Equal(t, "FLAT", run.Symbol)
	assert.Equal(t, seriesStart, run.StartDate)
}

// On a flat series no call ever finishes in the money: every window is a
// win and the whole return is premium.
func TestRunPolicy_FlatSeries(t *testing.T) {
	b, err := New(flatSeries(60, 100), 300)
	require.NoError(t, err)

	run, err := b.Compare([]Policy{{Label: "5pct/10d", OTMPercent: 0.05, Days: 10}})
	require.NoError(t, err)
	r := run.Results[0]

	assert.Equal(t, 5, r.NumWindows)
	assert.Equal(t, 0, r.NumAssigned)
	assert.Equal(t, 0, r.NumExcluded)
	assert.InDelta(t, 1.0, r.WinRate, 1e-9)
	assert.InDelta(t, 1.0, r.ProfitableRate, 1e-9)
	assert.Positive(t, r.TotalPremium)
	assert.Zero(t, r.TotalStockGains)
	assert.Zero(t, r.TotalMissedGain)
	assert.InDelta(t, r.TotalPremium, r.TotalReturn, 1e-9)
	assert.InDelta(t, r.TotalPremium/5, r.AvgPremium, 1e-9)
}

// A relentless rally assigns every window; the win rate is zero even
// though every window still makes money.
func TestRunPolicy_RisingSeries(t *testing.T) {
	b, err := New(risingSeries(60, 100, 1), 300)
	require.NoError(t, err)

	run, err := b.Compare([]Policy{{Label: "2pct/10d", OTMPercent: 0.02, Days: 10}})
	require.NoError(t, err)
	r := run.Results[0]

	assert.Equal(t, r.NumWindows, r.NumAssigned)
	assert.Positive(t, r.NumWindows)
	assert.Zero(t, r.WinRate)
	assert.InDelta(t, 1.0, r.ProfitableRate, 1e-9)
	assert.Positive(t, r.TotalMissedGain)
	for _, w := range r.Windows {
		assert.True(t, w.Assigned)
		assert.Positive(t, w.MissedGain)
		assert.InDelta(t, w.EntryPrice*1.02, w.Strike, 1e-9)
	}
}

func TestRunPolicy_GapWindowExcluded(t *testing.T) {
	s := models.PriceSeries{Symbol: "GAP"}
	for i := 0; i < 40; i++ {
		offset := i
		if i >= 20 {
			offset += 60 // missing two months of data
		}
		s.Bars = append(s.Bars, models.Bar{
			Date:  seriesStart.AddDate(0, 0, offset),
			Close: 100,
		})
	}

	b, err := New(s, 300)
	require.NoError(t, err)

	run, err := b.Compare([]Policy{{Label: "5pct/10d", OTMPercent: 0.05, Days: 10}})
	require.NoError(t, err)
	r := run.Results[0]

	assert.Equal(t, 1, r.NumExcluded)
	assert.Equal(t, 2, r.NumWindows)
	for _, w := range r.Windows {
		span := w.ExpiryDate.Sub(w.OpenDate).Hours() / 24
		assert.LessOrEqual(t, span, gapSpanFactor*10)
	}
}

func TestRunPolicy_AnnualizedReturn(t *testing.T) {
	b, err := New(flatSeries(60, 100), 300)
	require.NoError(t, err)

	run, err := b.Compare([]Policy{{Label: "5pct/10d", OTMPercent: 0.05, Days: 10}})
	require.NoError(t, err)
	r := run.Results[0]

	totalDays := 59.0
	assert.InDelta(t, r.TotalReturnPct*(365/totalDays), r.AnnualizedPct, 1e-9)
	assert.InDelta(t, r.TotalReturn/(100*300)*100, r.TotalReturnPct, 1e-9)
}

// Fewer than 300 shares in round lots: 250 shares covers only 2 contracts.
func TestRunPolicy_RoundLotsOnly(t *testing.T) {
	b, err := New(flatSeries(60, 100), 250)
	require.NoError(t, err)

	run, err := b.Compare([]Policy{{Label: "5pct/10d", OTMPercent: 0.05, Days: 10}})
	require.NoError(t, err)
	r := run.Results[0]

	// Premium accrues on 200 shares, not 250.
	perShare := r.Windows[0].Premium
	assert.InDelta(t, perShare*200, r.Windows[0].PremiumTotal, 1e-9)
}

func TestVolatilityProxy_PrefersGarmanKlass(t *testing.T) {
	s := models.PriceSeries{Symbol: "OHLC"}
	for i := 0; i < 30; i++ {
		c := 100 + float64(i%5)
		s.Bars = append(s.Bars, models.Bar{
			Date:  seriesStart.AddDate(0, 0, i),
			Open:  c - 0.5,
			High:  c + 2,
			Low:   c - 2,
			Close: c,
		})
	}
	b, err := New(s, 300)
	require.NoError(t, err)

	gk := models.GarmanKlassVolatility(s, s.Len())
	require.Positive(t, gk)
	assert.InDelta(t, gk, b.volatilityProxy(), 1e-12)
}

func TestVolatilityProxy_FlatSeriesFallback(t *testing.T) {
	b, err := New(flatSeries(30, 100), 300)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, b.volatilityProxy(), 1e-12)
}
