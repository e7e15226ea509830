package models

import "time"

// WindowResult is one simulated covered-call window inside a policy run.
type WindowResult struct {
	OpenDate     time.Time `json:"open_date"`
	ExpiryDate   time.Time `json:"expiry_date"`
	EntryPrice   float64   `json:"entry_price"`
	Strike       float64   `json:"strike"`
	ExpiryPrice  float64   `json:"expiry_price"`
	Premium      float64   `json:"premium"`
	PremiumTotal float64   `json:"premium_total"`
	Assigned     bool      `json:"assigned"`
	StockGain    float64   `json:"stock_gain"`
	MissedGain   float64   `json:"missed_gain"`
	TotalProfit  float64   `json:"total_profit"`
}

// PolicyResult aggregates one policy's simulation over the full series.
type PolicyResult struct {
	Label           string         `json:"label"`
	OTMPercent      float64        `json:"otm_percent"`
	Days            int            `json:"days"`
	Windows         []WindowResult `json:"windows"`
	NumWindows      int            `json:"num_windows"`
	NumAssigned     int            `json:"num_assigned"`
	NumExcluded     int            `json:"num_excluded"`
	TotalPremium    float64        `json:"total_premium"`
	TotalStockGains float64        `json:"total_stock_gains"`
	TotalMissedGain float64        `json:"total_missed_gains"`
	AvgPremium      float64        `json:"avg_premium_per_window"`
	TotalReturn     float64        `json:"total_return"`
	TotalReturnPct  float64        `json:"total_return_pct"`
	AnnualizedPct   float64        `json:"annualized_return_pct"`

	// WinRate counts unassigned windows; ProfitableRate counts windows
	// whose premium plus capped stock gain was net positive. The two
	// deliberately diverge for assigned-but-profitable windows.
	WinRate        float64 `json:"win_rate"`
	ProfitableRate float64 `json:"profitable_rate"`
}

// BacktestRun is the read-only outcome of one policy comparison.
type BacktestRun struct {
	Symbol    string         `json:"symbol"`
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Shares    int            `json:"shares"`
	Results   []PolicyResult `json:"results"`
}
