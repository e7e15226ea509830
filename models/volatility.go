package models

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252

// CloseToCloseVolatility is the annualized standard deviation of daily
// log returns over the whole series. Returns 0 when fewer than three
// bars are available.
func CloseToCloseVolatility(series PriceSeries) float64 {
	n := series.Len()
	if n < 3 {
		return 0
	}

	returns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		prev, cur := series.Bars[i-1].Close, series.Bars[i].Close
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) < 2 {
		return 0
	}

	return stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
}

// ParkinsonVolatility is the annualized Parkinson range estimator over
// the trailing window of days. Requires high/low bars.
func ParkinsonVolatility(series PriceSeries, days int) float64 {
	bars := trailingBars(series, days)
	if len(bars) == 0 {
		return 0
	}

	sum := 0.0
	n := 0
	for _, b := range bars {
		if b.High <= 0 || b.Low <= 0 {
			continue
		}
		logRatio := math.Log(b.High / b.Low)
		sum += logRatio * logRatio
		n++
	}
	if n == 0 {
		return 0
	}

	daily := math.Sqrt(sum / (4 * float64(n) * math.Log(2)))
	return daily * math.Sqrt(tradingDaysPerYear)
}

// GarmanKlassVolatility is the annualized Garman-Klass OHLC estimator
// over the trailing window of days.
func GarmanKlassVolatility(series PriceSeries, days int) float64 {
	bars := trailingBars(series, days)
	if len(bars) == 0 {
		return 0
	}

	sum := 0.0
	n := 0
	for _, b := range bars {
		if b.High <= 0 || b.Low <= 0 || b.Open <= 0 || b.Close <= 0 {
			continue
		}
		hl := 0.5 * math.Pow(math.Log(b.High/b.Low), 2)
		co := (2*math.Log(2) - 1) * math.Pow(math.Log(b.Close/b.Open), 2)
		sum += hl - co
		n++
	}
	if n == 0 || sum <= 0 {
		return 0
	}

	return math.Sqrt(sum / float64(n) * tradingDaysPerYear)
}

func trailingBars(series PriceSeries, days int) []Bar {
	n := series.Len()
	if days <= 0 || n == 0 {
		return nil
	}
	if days > n {
		days = n
	}
	return series.Bars[n-days:]
}
