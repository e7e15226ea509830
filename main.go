package main

import (
	"math"
	"os"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/xhhuango/json"

	"covcall/backtest"
	"covcall/config"
	"covcall/logging"
	"covcall/models"
	"covcall/positions"
	covcallslack "covcall/slack"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logging.Init(cfg.LogLevel, cfg.Env); err != nil {
		os.Stderr.WriteString("logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logging.L()

	// In production the series and chain come from a market-data
	// provider; this binary stands in for that collaborator with a
	// deterministic synthetic dataset.
	now := time.Now()
	series := demoSeries("TSLA", 420, now)
	currentPrice := series.Bars[len(series.Bars)-1].Close
	candidates := demoChain("TSLA", currentPrice, now)

	profile := models.ProfileByLabel(cfg.RiskProfile)
	scorer := positions.NewScorer(profile, cfg.RiskFreeRate)

	ranked, err := scorer.FindBestStrikes(candidates, currentPrice, 300, 5, now)
	if err != nil {
		log.Fatalw("strike scan failed", "err", err)
	}
	for _, r := range ranked {
		log.Infow("candidate strike",
			"strike", r.Contract.Strike,
			"score", math.Round(r.Score*100)/100,
			"delta", r.Contract.Greeks.Delta,
			"assignment_prob", r.AssignmentProbability)
	}

	ledger := positions.NewLedger()
	notifier := covcallslack.NewNotifier(cfg.SlackBotToken, cfg.SlackChannel)

	if len(ranked) > 0 {
		stock := models.Stock{Symbol: "TSLA", Quantity: 300, AvgCost: 390, CurrentPrice: currentPrice}
		pos, err := ledger.Open(stock, ranked[0].Contract, 3, now)
		if err != nil {
			log.Fatalw("open failed", "err", err)
		}

		if _, err := ledger.MarkToMarket(pos.ID, currentPrice, ranked[0].Contract.MidPrice()); err != nil {
			log.Warnw("mark to market failed", "err", err)
		}

		advisor := positions.NewRollAdvisor(cfg.RiskFreeRate)
		roll, err := advisor.ShouldRoll(pos, currentPrice, ranked[0].Contract.DaysToExpiration(now))
		if err != nil {
			log.Warnw("roll evaluation failed", "err", err)
		}
		agg := ledger.PortfolioAggregate()
		log.Infow("portfolio state",
			"net_delta", agg.NetDelta, "net_theta", agg.NetTheta,
			"premium", agg.TotalPremium.StringFixed(2), "should_roll", roll)

		if alerts := ledger.CheckAlerts(now); len(alerts) > 0 {
			if err := notifier.PostAlerts(alerts); err != nil {
				log.Warnw("slack alert post failed", "err", err)
			}
		}
	}

	stopCPU := make(chan struct{})
	go monitorCPUUsage(stopCPU)

	bt, err := backtest.New(series, 300)
	if err != nil {
		log.Fatalw("backtester init failed", "err", err)
	}
	bt.ShowProgress = cfg.ShowProgress

	policies, err := config.LoadPolicies(cfg.PolicyFile)
	if err != nil {
		log.Fatalw("policy config failed", "err", err)
	}

	run, err := bt.Compare(policies)
	close(stopCPU)
	if err != nil {
		log.Fatalw("backtest failed", "err", err)
	}

	for _, r := range run.Results {
		log.Infow("policy result",
			"policy", r.Label, "windows", r.NumWindows, "assigned", r.NumAssigned,
			"excluded", r.NumExcluded, "win_rate", r.WinRate,
			"total_return", math.Round(r.TotalReturn*100)/100,
			"annualized_pct", math.Round(r.AnnualizedPct*100)/100)
	}

	payload, err := json.Marshal(run)
	if err != nil {
		log.Fatalw("marshalling results failed", "err", err)
	}
	if err := os.WriteFile(cfg.OutputFile, payload, 0644); err != nil {
		log.Fatalw("writing results failed", "file", cfg.OutputFile, "err", err)
	}
	log.Infow("wrote backtest results", "file", cfg.OutputFile)

	if err := notifier.PostBacktestRun(run); err != nil {
		log.Warnw("slack summary post failed", "err", err)
	}
}

func monitorCPUUsage(stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			percentage, err := cpu.Percent(time.Second, false)
			if err == nil && len(percentage) > 0 {
				logging.L().Debugw("cpu usage", "percent", percentage[0])
			}
		}
	}
}

// demoSeries is two years of synthetic daily bars: a gentle drift with a
// seasonal swing, weekends skipped.
func demoSeries(symbol string, base float64, now time.Time) models.PriceSeries {
	series := models.PriceSeries{Symbol: symbol}
	date := now.AddDate(-2, 0, 0)
	price := base

	for i := 0; date.Before(now); i++ {
		if wd := date.Weekday(); wd != time.Saturday && wd != time.Sunday {
			price += 0.0004*price + 0.006*price*math.Sin(float64(i)/13)
			series.Bars = append(series.Bars, models.Bar{
				Date:  date,
				Open:  price * 0.998,
				High:  price * 1.012,
				Low:   price * 0.989,
				Close: price,
			})
		}
		date = date.AddDate(0, 0, 1)
	}
	return series
}

// demoChain fabricates a call chain around the spot, 35 days out.
func demoChain(symbol string, spot float64, now time.Time) []models.OptionContract {
	expiration := now.AddDate(0, 0, 35)
	var chain []models.OptionContract

	for pct := -0.02; pct <= 0.15; pct += 0.01 {
		strike := math.Round(spot*(1+pct)/2.5) * 2.5
		iv := 0.42 - pct*0.5
		mid := backtest.HeuristicEstimator{}.Estimate(spot, strike, 35, iv)
		chain = append(chain, models.OptionContract{
			Underlying:        symbol,
			Strike:            strike,
			Expiration:        expiration,
			Type:              models.Call,
			Bid:               mid * 0.97,
			Ask:               mid * 1.03,
			Last:              mid,
			Volume:            1500,
			OpenInterest:      6000,
			ImpliedVolatility: iv,
		})
	}
	return chain
}
