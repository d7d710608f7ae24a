package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/altcredit/credscore/internal/features"
	"github.com/altcredit/credscore/internal/model"
	"github.com/altcredit/credscore/internal/types"
)

// MaxFactors is the number of explanation entries reported per prediction.
const MaxFactors = 5

// FoldSource exposes a classifier's calibration-fold linear structure.
// *model.Classifier satisfies it; tests substitute broken sources.
type FoldSource interface {
	Folds() []model.Fold
}

// TopFactors returns the features driving a prediction, strictly
// best-effort: any internal failure yields an empty list and a log line,
// never an error. Scoring must succeed even when explanation cannot.
func TopFactors(src FoldSource, v features.Vector, n int) []types.TopFactor {
	factors, err := topFactors(src, v, n)
	if err != nil {
		slog.Warn("Explanation unavailable for this prediction", "reason", err)
		return []types.TopFactor{}
	}
	return factors
}

// topFactors carries the real outcome, success or failure, so tests and
// logs see why an explanation degraded instead of a silent empty list.
func topFactors(src FoldSource, v features.Vector, n int) (_ []types.TopFactor, err error) {
	// The fold structure comes from an external artifact; treat any panic
	// while walking it as a malformed-classifier failure.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while computing factors: %v", r)
		}
	}()

	folds := src.Folds()
	if len(folds) == 0 {
		return nil, fmt.Errorf("classifier exposes no calibration folds")
	}

	// Average the per-fold coefficients after undoing standardization, so
	// impacts are in original feature units: coef_unscaled = coef / scale.
	var coefSum [features.FeatureCount]float64
	for fi, fold := range folds {
		if len(fold.Coef) != features.FeatureCount {
			return nil, fmt.Errorf("fold %d: coefficient vector has %d entries, want %d",
				fi, len(fold.Coef), features.FeatureCount)
		}
		if len(fold.Scale) != features.FeatureCount {
			return nil, fmt.Errorf("fold %d: scale vector has %d entries, want %d",
				fi, len(fold.Scale), features.FeatureCount)
		}
		for i := 0; i < features.FeatureCount; i++ {
			scale := fold.Scale[i]
			if scale == 0 {
				return nil, fmt.Errorf("fold %d: zero scaling divisor at feature %d", fi, i)
			}
			coefSum[i] += fold.Coef[i] / scale
		}
	}

	// impact[i] is the signed contribution of feature i to the log-odds of
	// default under the fold-averaged model.
	var impacts [features.FeatureCount]float64
	for i := 0; i < features.FeatureCount; i++ {
		impact := (coefSum[i] / float64(len(folds))) * v[i]
		if math.IsNaN(impact) || math.IsInf(impact, 0) {
			return nil, fmt.Errorf("non-finite impact at feature %d", i)
		}
		impacts[i] = impact
	}

	// Rank by absolute impact, ties broken by canonical feature position.
	idx := make([]int, features.FeatureCount)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(impacts[idx[a]]) > math.Abs(impacts[idx[b]])
	})

	if n <= 0 {
		n = MaxFactors
	}
	if n > features.FeatureCount {
		n = features.FeatureCount
	}

	factors := make([]types.TopFactor, 0, n)
	for _, i := range idx[:n] {
		direction := "positive"
		if impacts[i] > 0 {
			// Raises default log-odds, so it hurts the credit score.
			direction = "negative"
		}
		factors = append(factors, types.TopFactor{
			Label:     features.Label(features.Order[i]),
			Direction: direction,
			Impact:    roundTo(math.Abs(impacts[i]), 4),
		})
	}
	return factors, nil
}
