package backtest

import (
	"fmt"
	"math"
	"sync"

	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"

	"covcall/logging"
	"covcall/models"
)

// A window whose calendar span exceeds this multiple of the target DTE
// is treated as a data gap and excluded from aggregates.
const gapSpanFactor = 2.0

// Backtester replays one price series under competing policies. The
// series is read-only during a run, so policies simulate in parallel.
type Backtester struct {
	Series       models.PriceSeries
	Shares       int
	Estimator    PremiumEstimator
	ShowProgress bool
}

func New(series models.PriceSeries, shares int) (*Backtester, error) {
	if shares < 100 {
		return nil, fmt.Errorf("%w: %d shares cannot cover a contract", models.ErrInsufficientShares, shares)
	}
	if series.Len() < 2 {
		return nil, fmt.Errorf("%w: %d bars", models.ErrDataGap, series.Len())
	}
	return &Backtester{Series: series, Shares: shares, Estimator: HeuristicEstimator{}}, nil
}

// Compare simulates every policy independently over the identical series
// and returns the aggregated comparison. The volatility proxy prefers
// the Garman-Klass estimator when OHLC bars are available.
func (b *Backtester) Compare(policies []Policy) (models.BacktestRun, error) {
	if len(policies) == 0 {
		policies = DefaultPolicies()
	}
	for _, p := range policies {
		if err := p.validate(); err != nil {
			return models.BacktestRun{}, err
		}
	}

	vol := b.volatilityProxy()
	logging.L().Infow("starting policy comparison",
		"symbol", b.Series.Symbol, "bars", b.Series.Len(), "policies", len(policies), "vol_proxy", vol)

	var progress *mpb.Progress
	if b.ShowProgress {
		progress = mpb.New(mpb.WithWidth(64))
	}

	results := make([]models.PolicyResult, len(policies))
	var wg sync.WaitGroup
	for i, policy := range policies {
		wg.Add(1)
		go func(i int, policy Policy) {
			defer wg.Done()
			results[i] = b.runPolicy(policy, vol, b.policyBar(progress, policy))
		}(i, policy)
	}
	wg.Wait()
	if progress != nil {
		progress.Wait()
	}

	bars := b.Series.Bars
	return models.BacktestRun{
		Symbol:    b.Series.Symbol,
		StartDate: bars[0].Date,
		EndDate:   bars[len(bars)-1].Date,
		Shares:    b.Shares,
		Results:   results,
	}, nil
}

// runPolicy is the per-policy state machine: holding shares without a
// call at each window start, short a call until the window closes, then
// back again. Assignment rebases the entry to the strike and the run
// continues.
func (b *Backtester) runPolicy(policy Policy, vol float64, bar *mpb.Bar) models.PolicyResult {
	result := models.PolicyResult{
		Label:      policy.Label,
		OTMPercent: policy.OTMPercent,
		Days:       policy.Days,
	}

	bars := b.Series.Bars
	coveredShares := (b.Shares / 100) * 100
	shares := float64(coveredShares)

	profitableWindows := 0
	entryPrice := 0.0
	initialEntry := 0.0
	idx := 0

	for idx+policy.Days < len(bars) {
		open := bars[idx]
		expiry := bars[idx+policy.Days]

		// Gap check: a window stretching far beyond its target DTE in
		// calendar time is missing data, not a long hold.
		span := expiry.Date.Sub(open.Date).Hours() / 24
		if span > gapSpanFactor*float64(policy.Days) {
			result.NumExcluded++
			idx += policy.Days + 1
			if bar != nil {
				bar.Increment()
			}
			continue
		}

		if entryPrice == 0 {
			entryPrice = open.Close
			initialEntry = open.Close
		}

		strike := open.Close * (1 + policy.OTMPercent)
		premium := b.Estimator.Estimate(open.Close, strike, policy.Days, vol)
		premiumTotal := premium * shares

		assigned := expiry.Close > strike

		var stockGain, missedGain float64
		if assigned {
			stockGain = (strike - entryPrice) * shares
			missedGain = math.Max(0, (expiry.Close-strike)*shares)
			entryPrice = strike
		} else {
			stockGain = (expiry.Close - entryPrice) * shares
			entryPrice = expiry.Close
		}

		totalProfit := premiumTotal + stockGain
		if totalProfit > 0 {
			profitableWindows++
		}

		result.Windows = append(result.Windows, models.WindowResult{
			OpenDate:     open.Date,
			ExpiryDate:   expiry.Date,
			EntryPrice:   open.Close,
			Strike:       strike,
			ExpiryPrice:  expiry.Close,
			Premium:      premium,
			PremiumTotal: premiumTotal,
			Assigned:     assigned,
			StockGain:    stockGain,
			MissedGain:   missedGain,
			TotalProfit:  totalProfit,
		})

		result.NumWindows++
		if assigned {
			result.NumAssigned++
		}
		result.TotalPremium += premiumTotal
		result.TotalStockGains += stockGain
		result.TotalMissedGain += missedGain

		idx += policy.Days + 1
		if bar != nil {
			bar.Increment()
		}
	}

	if bar != nil {
		bar.SetTotal(bar.Current(), true)
	}

	if result.NumWindows == 0 {
		return result
	}

	result.WinRate = float64(result.NumWindows-result.NumAssigned) / float64(result.NumWindows)
	result.ProfitableRate = float64(profitableWindows) / float64(result.NumWindows)
	result.AvgPremium = result.TotalPremium / float64(result.NumWindows)
	result.TotalReturn = result.TotalPremium + result.TotalStockGains
	if initialEntry > 0 {
		result.TotalReturnPct = result.TotalReturn / (initialEntry * shares) * 100
	}

	totalDays := bars[len(bars)-1].Date.Sub(bars[0].Date).Hours() / 24
	if totalDays > 0 {
		result.AnnualizedPct = result.TotalReturnPct * (365 / totalDays)
	}
	return result
}

func (b *Backtester) volatilityProxy() float64 {
	if b.Series.HasOHLC() {
		if v := models.GarmanKlassVolatility(b.Series, b.Series.Len()); v > 0 {
			return v
		}
	}
	if v := models.CloseToCloseVolatility(b.Series); v > 0 {
		return v
	}
	// Flat or tiny series; any positive proxy keeps the estimator sane.
	return 0.5
}

func (b *Backtester) policyBar(progress *mpb.Progress, policy Policy) *mpb.Bar {
	if progress == nil {
		return nil
	}
	total := int64(b.Series.Len() / (policy.Days + 1))
	return progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(policy.Label),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)
}
