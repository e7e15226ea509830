package models

// ScoreWeights is the factor weighting applied by the strike scorer.
// Weights sum to 1.
type ScoreWeights struct {
	Delta    float64 `yaml:"delta"`
	Premium  float64 `yaml:"premium"`
	IV       float64 `yaml:"iv"`
	Distance float64 `yaml:"distance"`
}

// RiskProfile is a tagged configuration value carrying the target delta
// range and preferred OTM band for a selling style. It replaces a bare
// risk-level enum so the scoring tables live with the profile.
type RiskProfile struct {
	Label          string       `yaml:"label"`
	TargetDeltaLow float64      `yaml:"target_delta_low"`
	TargetDeltaHi  float64      `yaml:"target_delta_high"`
	OTMBandLow     float64      `yaml:"otm_band_low"`
	OTMBandHigh    float64      `yaml:"otm_band_high"`
	MaxDTE         int          `yaml:"max_dte"`
	Weights        ScoreWeights `yaml:"weights"`
}

// TargetDeltaMid is the midpoint of the profile's delta range, used for
// tie-breaking between equally scored candidates.
func (p RiskProfile) TargetDeltaMid() float64 {
	return (p.TargetDeltaLow + p.TargetDeltaHi) / 2
}

var defaultWeights = ScoreWeights{Delta: 0.40, Premium: 0.30, IV: 0.20, Distance: 0.10}

var (
	Conservative = RiskProfile{
		Label:          "conservative",
		TargetDeltaLow: 0.15, TargetDeltaHi: 0.25,
		OTMBandLow: 0.05, OTMBandHigh: 0.12,
		MaxDTE:  60,
		Weights: defaultWeights,
	}
	Moderate = RiskProfile{
		Label:          "moderate",
		TargetDeltaLow: 0.25, TargetDeltaHi: 0.35,
		OTMBandLow: 0.03, OTMBandHigh: 0.08,
		MaxDTE:  45,
		Weights: defaultWeights,
	}
	Aggressive = RiskProfile{
		Label:          "aggressive",
		TargetDeltaLow: 0.35, TargetDeltaHi: 0.50,
		OTMBandLow: 0.00, OTMBandHigh: 0.05,
		MaxDTE:  30,
		Weights: defaultWeights,
	}
)

// ProfileByLabel resolves a configured profile name, defaulting to Moderate.
func ProfileByLabel(label string) RiskProfile {
	switch label {
	case Conservative.Label:
		return Conservative
	case Aggressive.Label:
		return Aggressive
	default:
		return Moderate
	}
}
