package models

type AlertType string

const (
	AlertAssignmentRisk AlertType = "ASSIGNMENT_RISK"
	AlertExpirationSoon AlertType = "EXPIRATION_SOON"
	AlertLowLiquidity   AlertType = "LOW_LIQUIDITY"
)

type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "HIGH"
	SeverityMedium AlertSeverity = "MEDIUM"
	SeverityLow    AlertSeverity = "LOW"
)

// Alert is a computed record for the caller to render or forward; the
// core never acts on it.
type Alert struct {
	Type       AlertType     `json:"type"`
	Severity   AlertSeverity `json:"severity"`
	PositionID string        `json:"position_id"`
	Message    string        `json:"message"`
	Action     string        `json:"action"`
}
