package models

// FactorScore is one normalized component of a candidate score.
type FactorScore struct {
	Name     string  `json:"name"`
	Raw      float64 `json:"raw"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// ScoreResult is an ephemeral per-candidate scoring outcome, recomputed
// on every request.
type ScoreResult struct {
	Contract              OptionContract `json:"contract"`
	Score                 float64        `json:"score"`
	Factors               []FactorScore  `json:"factors"`
	AssignmentProbability float64        `json:"assignment_probability"`
}
