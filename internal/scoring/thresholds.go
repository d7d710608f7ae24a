package scoring

import "github.com/altcredit/credscore/internal/features"

// Per-profile P(default) decision thresholds. Lower threshold = more
// sensitive: more predicted defaults at the cost of false positives.
// Students and rural borrowers carry thinner credit history, so both
// lean cautious.
var profileThresholds = map[features.Profile]float64{
	features.ProfileSalaried:   0.40,
	features.ProfileStudent:    0.35,
	features.ProfileGig:        0.40,
	features.ProfileShopkeeper: 0.40,
	features.ProfileRural:      0.35,
}

const defaultDecisionThreshold = 0.40

// DecisionThreshold returns the default-prediction threshold for a
// profile, falling back to 0.40 for anything absent from the table.
func DecisionThreshold(p features.Profile) float64 {
	if t, ok := profileThresholds[p]; ok {
		return t
	}
	return defaultDecisionThreshold
}
