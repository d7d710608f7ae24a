package scoring

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/altcredit/credscore/internal/errors"
	"github.com/altcredit/credscore/internal/features"
	"github.com/altcredit/credscore/internal/model"
	"github.com/altcredit/credscore/internal/types"
)

// constantFold produces a fold whose prediction is a fixed probability p
// for every input: zero coefficients and a Platt sigmoid pinned at p.
func constantFold(p float64) model.Fold {
	return newFold(func(f *model.Fold) {
		f.PlattA = 0
		f.PlattB = math.Log((1 - p) / p)
	})
}

func loadedStore(t *testing.T, folds ...model.Fold) *model.Store {
	t.Helper()

	artifact := model.Artifact{
		Version:      "test",
		FeatureOrder: append([]string(nil), features.Order...),
		Folds:        folds,
	}

	path := filepath.Join(t.TempDir(), "model.json")
	raw, err := json.Marshal(artifact)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	store := model.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("loading test artifact: %v", err)
	}
	return store
}

func emptyStore(t *testing.T) *model.Store {
	t.Helper()
	return model.NewStore(filepath.Join(t.TempDir(), "missing.json"))
}

func assertAppError(t *testing.T, err error, wantStatus int) {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected an AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != wantStatus {
		t.Errorf("HTTP status = %d, want %d", appErr.HTTPStatus, wantStatus)
	}
}

func TestOrchestrator_ScoreModelNotLoaded(t *testing.T) {
	orch := NewOrchestrator(emptyStore(t))

	if orch.Ready() {
		t.Error("orchestrator should not be ready without a model")
	}

	_, err := orch.Score(types.ScoreRequest{ProfileType: "salaried"})
	if err == nil {
		t.Fatal("expected an error")
	}
	assertAppError(t, err, http.StatusServiceUnavailable)
}

func TestOrchestrator_ScoreInvalidProfile(t *testing.T) {
	orch := NewOrchestrator(loadedStore(t, constantFold(0.2)))

	_, err := orch.Score(types.ScoreRequest{ProfileType: "astronaut"})
	if err == nil {
		t.Fatal("expected an error")
	}
	assertAppError(t, err, http.StatusUnprocessableEntity)
}

func TestOrchestrator_ScoreSalariedBorrower(t *testing.T) {
	orch := NewOrchestrator(loadedStore(t, newFold(func(f *model.Fold) {
		f.Coef[0] = -0.0001 // higher income lowers default odds
		f.Coef[1] = 0.001
		f.PlattA = -1
	})))

	res, err := orch.Score(types.ScoreRequest{
		ProfileType:       "salaried",
		MonthlyIncome:     8000,
		IncomeVariance:    200,
		SavingsBalance:    15000,
		MonthsActive:      24,
		TotalCredits:      50000,
		TotalDebits:       35000,
		TotalTransactions: 120,
		RecurringRatio:    0.4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.AlternativeCreditScore < ScoreFloor || res.AlternativeCreditScore > ScoreCeiling {
		t.Errorf("score = %d, out of [%d, %d]", res.AlternativeCreditScore, ScoreFloor, ScoreCeiling)
	}
	if math.Abs(res.RepaymentProbability+res.DefaultProbability-1) > 1e-5 {
		t.Errorf("probabilities do not complement: %v + %v", res.RepaymentProbability, res.DefaultProbability)
	}
	if res.RiskBand != string(ProbabilityToRiskBand(res.DefaultProbability)) {
		t.Errorf("risk band %q inconsistent with default probability %v", res.RiskBand, res.DefaultProbability)
	}
	if len(res.TopFactors) != MaxFactors {
		t.Errorf("got %d top factors, want %d", len(res.TopFactors), MaxFactors)
	}
}

func TestOrchestrator_EmptyProfileDefaultsToSalaried(t *testing.T) {
	orch := NewOrchestrator(loadedStore(t, constantFold(0.37)))

	res, err := orch.Score(types.ScoreRequest{MonthlyIncome: 5000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 0.37 clears the student threshold but not the salaried one.
	if res.PredictedDefault {
		t.Error("empty profile must score under the salaried 0.40 threshold")
	}
}

func TestOrchestrator_ThresholdByProfile(t *testing.T) {
	orch := NewOrchestrator(loadedStore(t, constantFold(0.37)))

	tests := []struct {
		profile          string
		predictedDefault bool
	}{
		{"salaried", false},
		{"gig", false},
		{"shopkeeper", false},
		{"student", true},
		{"rural", true},
	}

	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			res, err := orch.Score(types.ScoreRequest{ProfileType: tt.profile})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.PredictedDefault != tt.predictedDefault {
				t.Errorf("predicted_default = %v at p=0.37, want %v", res.PredictedDefault, tt.predictedDefault)
			}
			if res.RiskBand != string(RiskMedium) {
				t.Errorf("risk band = %q, want Medium at p=0.37", res.RiskBand)
			}
		})
	}
}

func TestOrchestrator_ScoreBatch(t *testing.T) {
	orch := NewOrchestrator(loadedStore(t, newFold(func(f *model.Fold) {
		f.Coef[0] = -0.0002
		f.PlattA = -1
	})))

	req := types.BatchScoreRequest{Borrowers: []types.ScoreRequest{
		{ProfileType: "salaried", MonthlyIncome: 9000},
		{ProfileType: "student", GPA: 3.2},
		{ProfileType: "rural", SubsidyAmount: 4000},
	}}

	res, err := orch.ScoreBatch(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Count != 3 || len(res.Results) != 3 {
		t.Fatalf("count = %d, results = %d, want 3 each", res.Count, len(res.Results))
	}

	// The high-income salaried borrower sees lower default odds than the
	// zero-income entries; order must follow the input.
	if res.Results[0].DefaultProbability >= res.Results[1].DefaultProbability {
		t.Errorf("results out of input order: %v vs %v",
			res.Results[0].DefaultProbability, res.Results[1].DefaultProbability)
	}
}

func TestOrchestrator_ScoreBatchAbortsOnInvalidProfile(t *testing.T) {
	orch := NewOrchestrator(loadedStore(t, constantFold(0.2)))

	req := types.BatchScoreRequest{Borrowers: []types.ScoreRequest{
		{ProfileType: "salaried"},
		{ProfileType: "pirate"},
		{ProfileType: "gig"},
	}}

	res, err := orch.ScoreBatch(req)
	if err == nil {
		t.Fatal("one invalid profile must abort the whole batch")
	}
	assertAppError(t, err, http.StatusUnprocessableEntity)
	if len(res.Results) != 0 {
		t.Error("no partial results on batch failure")
	}
}

func TestOrchestrator_ScoreBatchSizeBounds(t *testing.T) {
	orch := NewOrchestrator(loadedStore(t, constantFold(0.2)))

	_, err := orch.ScoreBatch(types.BatchScoreRequest{})
	assertAppError(t, err, http.StatusUnprocessableEntity)

	oversized := make([]types.ScoreRequest, MaxBatchSize+1)
	for i := range oversized {
		oversized[i] = types.ScoreRequest{ProfileType: "salaried"}
	}
	_, err = orch.ScoreBatch(types.BatchScoreRequest{Borrowers: oversized})
	assertAppError(t, err, http.StatusUnprocessableEntity)

	atLimit := oversized[:MaxBatchSize]
	res, err := orch.ScoreBatch(types.BatchScoreRequest{Borrowers: atLimit})
	if err != nil {
		t.Fatalf("a batch of %d should succeed: %v", MaxBatchSize, err)
	}
	if res.Count != MaxBatchSize {
		t.Errorf("count = %d, want %d", res.Count, MaxBatchSize)
	}
}

func TestOrchestrator_PredictUsesSalariedThreshold(t *testing.T) {
	orch := NewOrchestrator(loadedStore(t, constantFold(0.37)))

	// Even with the student one-hot column set, the legacy path scores
	// under the salaried threshold.
	res, err := orch.Predict(types.PredictRequest{
		FMonthlyIncome: 1200,
		FIsStudent:     1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PredictedDefault {
		t.Error("legacy predict must use the salaried 0.40 threshold")
	}
}

func TestOrchestrator_PredictModelNotLoaded(t *testing.T) {
	orch := NewOrchestrator(emptyStore(t))

	_, err := orch.Predict(types.PredictRequest{FMonthlyIncome: 1000})
	if err == nil {
		t.Fatal("expected an error")
	}
	assertAppError(t, err, http.StatusServiceUnavailable)
}

func TestOrchestrator_ProbabilityRounding(t *testing.T) {
	orch := NewOrchestrator(loadedStore(t, constantFold(0.123456789)))

	res, err := orch.Score(types.ScoreRequest{ProfileType: "salaried"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DefaultProbability != 0.123457 {
		t.Errorf("default_probability = %v, want 0.123457", res.DefaultProbability)
	}
	if res.RepaymentProbability != 0.876543 {
		t.Errorf("repayment_probability = %v, want 0.876543", res.RepaymentProbability)
	}
}
