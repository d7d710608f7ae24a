// Package model loads and serves the trained credit classifier: a
// Platt-calibrated logistic regression ensemble exported by the training
// step as a JSON artifact. The package owns prediction and exposes the
// per-fold linear structure for score explanation; it never trains.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/altcredit/credscore/internal/features"
)

// Fold is one calibration-fold sub-model: a scaled-space logistic
// regression plus the standardization parameters it was fit against and
// the Platt sigmoid calibrating its decision values.
type Fold struct {
	Coef      []float64 `json:"coef"`      // scaled-space coefficients, one per feature
	Intercept float64   `json:"intercept"` // scaled-space intercept
	Scale     []float64 `json:"scale"`     // per-feature standardization divisor
	Mean      []float64 `json:"mean"`      // per-feature standardization offset
	PlattA    float64   `json:"platt_a"`   // calibration sigmoid slope
	PlattB    float64   `json:"platt_b"`   // calibration sigmoid offset
}

// Artifact is the on-disk model format. FeatureOrder is recorded at export
// time and checked against the builder's canonical order on load: a
// mismatch means the artifact was trained against a different feature
// contract and would silently corrupt every prediction.
type Artifact struct {
	Version      string   `json:"version"`
	TrainedAt    string   `json:"trained_at,omitempty"`
	FeatureOrder []string `json:"feature_order"`
	Folds        []Fold   `json:"folds"`
}

// Classifier is the loaded, immutable scoring capability. It is shared
// read-only across all concurrent requests.
type Classifier struct {
	version string
	folds   []Fold
}

// Load reads and validates a model artifact from disk.
func Load(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}

	return FromArtifact(artifact)
}

// FromArtifact builds a Classifier from an already-decoded artifact,
// validating every shape against the canonical feature order.
func FromArtifact(artifact Artifact) (*Classifier, error) {
	if len(artifact.Folds) == 0 {
		return nil, fmt.Errorf("model artifact has no calibration folds")
	}

	if len(artifact.FeatureOrder) != features.FeatureCount {
		return nil, fmt.Errorf("model artifact expects %d features, builder produces %d",
			len(artifact.FeatureOrder), features.FeatureCount)
	}
	for i, name := range artifact.FeatureOrder {
		if name != features.Order[i] {
			return nil, fmt.Errorf("feature order mismatch at position %d: artifact %q, builder %q",
				i, name, features.Order[i])
		}
	}

	for i, fold := range artifact.Folds {
		if len(fold.Coef) != features.FeatureCount {
			return nil, fmt.Errorf("fold %d: coefficient vector has %d entries, want %d",
				i, len(fold.Coef), features.FeatureCount)
		}
		if len(fold.Scale) != features.FeatureCount {
			return nil, fmt.Errorf("fold %d: scale vector has %d entries, want %d",
				i, len(fold.Scale), features.FeatureCount)
		}
		if len(fold.Mean) != features.FeatureCount {
			return nil, fmt.Errorf("fold %d: mean vector has %d entries, want %d",
				i, len(fold.Mean), features.FeatureCount)
		}
	}

	return &Classifier{version: artifact.Version, folds: artifact.Folds}, nil
}

// Version reports the artifact version string.
func (c *Classifier) Version() string { return c.version }

// Folds exposes the calibration-fold linear structure for the explanation
// engine. Callers must treat the returned slices as read-only.
func (c *Classifier) Folds() []Fold { return c.folds }

// PredictDefaultProbability returns P(default) for a feature vector:
// each fold standardizes the input, computes its decision value, and
// pushes it through its Platt sigmoid; fold probabilities are averaged.
func (c *Classifier) PredictDefaultProbability(v features.Vector) float64 {
	sum := 0.0
	for _, fold := range c.folds {
		z := fold.Intercept
		for i := 0; i < features.FeatureCount; i++ {
			scale := fold.Scale[i]
			if scale == 0 {
				scale = 1
			}
			z += fold.Coef[i] * (v[i] - fold.Mean[i]) / scale
		}
		sum += plattSigmoid(z, fold.PlattA, fold.PlattB)
	}
	return sum / float64(len(c.folds))
}

// plattSigmoid maps a decision value to a calibrated probability:
// p = 1 / (1 + exp(a*z + b)).
func plattSigmoid(z, a, b float64) float64 {
	return 1.0 / (1.0 + math.Exp(a*z+b))
}
