package scoring

import "math"

// Credit score range. Probability 0 maps to the floor, 1 to the ceiling.
const (
	ScoreFloor   = 300
	ScoreCeiling = 900
)

// ProbabilityToScore maps a repayment probability to an alternative credit
// score: 300 + p*600, rounded to nearest, clamped to [300, 900]. Monotonic
// non-decreasing in p.
func ProbabilityToScore(repaymentProbability float64) int {
	score := int(math.Round(float64(ScoreFloor) + repaymentProbability*float64(ScoreCeiling-ScoreFloor)))
	if score < ScoreFloor {
		return ScoreFloor
	}
	if score > ScoreCeiling {
		return ScoreCeiling
	}
	return score
}

// RiskBand is the coarse three-level summary of default probability.
type RiskBand string

const (
	RiskLow    RiskBand = "Low"
	RiskMedium RiskBand = "Medium"
	RiskHigh   RiskBand = "High"
)

// Band transition points on P(default). Exact equality moves to the
// riskier band: 0.30 is Medium, 0.55 is High.
const (
	riskMediumFloor = 0.30
	riskHighFloor   = 0.55
)

// ProbabilityToRiskBand maps a default probability to its risk band.
func ProbabilityToRiskBand(defaultProbability float64) RiskBand {
	switch {
	case defaultProbability >= riskHighFloor:
		return RiskHigh
	case defaultProbability >= riskMediumFloor:
		return RiskMedium
	default:
		return RiskLow
	}
}

// roundTo rounds v to the given number of decimal places. Response
// probabilities use 6 places, factor impacts 4.
func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
