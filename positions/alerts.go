package positions

import (
	"fmt"
	"time"

	"covcall/models"
)

// CheckAlerts scans the open book for assignment risk, imminent
// expiration and thinning liquidity, returning records for the caller
// to render or forward.
func (l *Ledger) CheckAlerts(now time.Time) []models.Alert {
	var alerts []models.Alert

	for _, pos := range l.OpenPositions() {
		pos.mu.Lock()
		symbol := pos.Stock.Symbol
		price := pos.Stock.CurrentPrice
		contract := pos.Contract
		id := pos.ID
		pos.mu.Unlock()

		if price >= contract.Strike {
			alerts = append(alerts, models.Alert{
				Type:       models.AlertAssignmentRisk,
				Severity:   models.SeverityHigh,
				PositionID: id,
				Message:    fmt.Sprintf("%s is ITM at %.2f vs strike %.2f", symbol, price, contract.Strike),
				Action:     "consider rolling or accepting assignment",
			})
		}

		if dte := contract.DaysToExpiration(now); dte <= defaultDTEThreshold {
			alerts = append(alerts, models.Alert{
				Type:       models.AlertExpirationSoon,
				Severity:   models.SeverityMedium,
				PositionID: id,
				Message:    fmt.Sprintf("%s call expires in %d days", symbol, dte),
				Action:     "decide: let expire, roll, or close",
			})
		}

		if contract.Volume < defaultMinVolume || contract.OpenInterest < defaultMinOpenInterest {
			alerts = append(alerts, models.Alert{
				Type:       models.AlertLowLiquidity,
				Severity:   models.SeverityLow,
				PositionID: id,
				Message:    fmt.Sprintf("%s call has thin liquidity (vol %d, OI %d)", symbol, contract.Volume, contract.OpenInterest),
				Action:     "may be difficult to roll or close",
			})
		}
	}
	return alerts
}
