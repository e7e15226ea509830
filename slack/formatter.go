package covcallslack

import (
	"fmt"
	"strings"

	"covcall/models"
)

var severityEmoji = map[models.AlertSeverity]string{
	models.SeverityHigh:   ":red_circle:",
	models.SeverityMedium: ":large_yellow_circle:",
	models.SeverityLow:    ":white_circle:",
}

// FormatAlerts renders an alert batch as a single Slack message.
func FormatAlerts(alerts []models.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Covered-call alerts (%d)*\n", len(alerts))
	for _, a := range alerts {
		fmt.Fprintf(&b, "%s `%s` %s — %s (_%s_)\n",
			severityEmoji[a.Severity], a.PositionID, a.Type, a.Message, a.Action)
	}
	return b.String()
}

// FormatBacktestRun renders the policy comparison as an aligned table.
func FormatBacktestRun(run models.BacktestRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Backtest %s* %s → %s (%d shares)\n```\n",
		run.Symbol, run.StartDate.Format("2006-01-02"), run.EndDate.Format("2006-01-02"), run.Shares)
	fmt.Fprintf(&b, "%-40s %7s %8s %8s %12s %12s %9s %11s\n",
		"Policy", "Windows", "Assigned", "Win %", "Premium", "Return", "Return %", "Annualized")
	for _, r := range run.Results {
		fmt.Fprintf(&b, "%-40s %7d %8d %7.1f%% %12.2f %12.2f %8.2f%% %10.2f%%\n",
			r.Label, r.NumWindows, r.NumAssigned, r.WinRate*100,
			r.TotalPremium, r.TotalReturn, r.TotalReturnPct, r.AnnualizedPct)
	}
	b.WriteString("```")
	return b.String()
}
