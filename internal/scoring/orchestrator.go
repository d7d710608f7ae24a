package scoring

import (
	"github.com/altcredit/credscore/internal/errors"
	"github.com/altcredit/credscore/internal/features"
	"github.com/altcredit/credscore/internal/model"
	"github.com/altcredit/credscore/internal/types"
)

// MaxBatchSize bounds a single batch call.
const MaxBatchSize = 50

// Orchestrator composes the scoring pipeline: feature construction,
// probability prediction, score mapping, risk banding, decision threshold,
// and best-effort explanation. All methods are pure per request; the only
// shared state is the read-only model store.
type Orchestrator struct {
	store *model.Store
}

// NewOrchestrator creates an orchestrator bound to a model store.
func NewOrchestrator(store *model.Store) *Orchestrator {
	return &Orchestrator{store: store}
}

// Ready reports whether the classifier capability is loaded.
func (o *Orchestrator) Ready() bool {
	return o.store.Ready()
}

// Score handles one raw-signal scoring request.
func (o *Orchestrator) Score(req types.ScoreRequest) (types.ScoreResponse, error) {
	clf, ok := o.store.Get()
	if !ok {
		return types.ScoreResponse{}, errors.NewModelUnavailableError()
	}

	profile, err := features.ParseProfile(req.ProfileType)
	if err != nil {
		return types.ScoreResponse{}, errors.NewValidationError(err.Error())
	}

	vector := features.Build(recordFromRequest(req, profile))
	return o.scoreVector(clf, vector, profile), nil
}

// ScoreBatch scores 1-50 borrowers independently, returning results in
// input order. Any invalid profile tag aborts the whole batch: no partial
// results are ever returned.
func (o *Orchestrator) ScoreBatch(req types.BatchScoreRequest) (types.BatchScoreResponse, error) {
	clf, ok := o.store.Get()
	if !ok {
		return types.BatchScoreResponse{}, errors.NewModelUnavailableError()
	}

	if len(req.Borrowers) == 0 || len(req.Borrowers) > MaxBatchSize {
		return types.BatchScoreResponse{}, errors.NewValidationError(
			"borrowers must contain between 1 and 50 records")
	}

	results := make([]types.ScoreResponse, 0, len(req.Borrowers))
	for _, borrower := range req.Borrowers {
		profile, err := features.ParseProfile(borrower.ProfileType)
		if err != nil {
			return types.BatchScoreResponse{}, errors.NewValidationError(
				"invalid profile_type in batch item", err.Error())
		}

		vector := features.Build(recordFromRequest(borrower, profile))
		results = append(results, o.scoreVector(clf, vector, profile))
	}

	return types.BatchScoreResponse{Results: results, Count: len(results)}, nil
}

// Predict handles the legacy pre-engineered column path. It always scores
// under the salaried threshold regardless of any one-hot flags present.
func (o *Orchestrator) Predict(req types.PredictRequest) (types.ScoreResponse, error) {
	clf, ok := o.store.Get()
	if !ok {
		return types.ScoreResponse{}, errors.NewModelUnavailableError()
	}

	vector := features.BuildFromColumns(columnsFromPredictRequest(req))
	return o.scoreVector(clf, vector, features.ProfileSalaried), nil
}

// scoreVector runs inference and assembles the full response for one
// already-built vector.
func (o *Orchestrator) scoreVector(clf *model.Classifier, v features.Vector, profile features.Profile) types.ScoreResponse {
	defaultProbability := clf.PredictDefaultProbability(v)
	repaymentProbability := 1.0 - defaultProbability
	threshold := DecisionThreshold(profile)

	return types.ScoreResponse{
		RepaymentProbability:   roundTo(repaymentProbability, 6),
		DefaultProbability:     roundTo(defaultProbability, 6),
		AlternativeCreditScore: ProbabilityToScore(repaymentProbability),
		PredictedDefault:       defaultProbability >= threshold,
		RiskBand:               string(ProbabilityToRiskBand(defaultProbability)),
		TopFactors:             TopFactors(clf, v, MaxFactors),
	}
}

func recordFromRequest(req types.ScoreRequest, profile features.Profile) features.BorrowerRecord {
	return features.BorrowerRecord{
		Profile: profile,

		MonthlyIncome:  req.MonthlyIncome,
		IncomeVariance: req.IncomeVariance,
		SavingsBalance: req.SavingsBalance,
		MonthsActive:   req.MonthsActive,

		TotalCredits:      req.TotalCredits,
		TotalDebits:       req.TotalDebits,
		TotalTransactions: req.TotalTransactions,
		AvgCreditAmount:   req.AvgCreditAmount,
		AvgDebitAmount:    req.AvgDebitAmount,
		RecurringRatio:    req.RecurringRatio,

		GPA:              req.GPA,
		AttendanceRate:   req.AttendanceRate,
		PlatformRating:   req.PlatformRating,
		AvgWeeklyHours:   req.AvgWeeklyHours,
		BusinessYears:    req.BusinessYears,
		AvgDailyRevenue:  req.AvgDailyRevenue,
		LandSizeAcres:    req.LandSizeAcres,
		SubsidyAmount:    req.SubsidyAmount,
		SeasonalityIndex: req.SeasonalityIndex,
	}
}

func columnsFromPredictRequest(req types.PredictRequest) map[string]float64 {
	return map[string]float64{
		features.FMonthlyIncome:     req.FMonthlyIncome,
		features.FIncomeVariance:    req.FIncomeVariance,
		features.FSavingsBalance:    req.FSavingsBalance,
		features.FMonthsActive:      req.FMonthsActive,
		features.FTotalCredits:      req.FTotalCredits,
		features.FTotalDebits:       req.FTotalDebits,
		features.FTotalTransactions: req.FTotalTransactions,
		features.FAvgCreditAmount:   req.FAvgCreditAmount,
		features.FAvgDebitAmount:    req.FAvgDebitAmount,
		features.FRecurringRatio:    req.FRecurringRatio,
		features.FGPA:               req.FGPA,
		features.FAttendanceRate:    req.FAttendanceRate,
		features.FPlatformRating:    req.FPlatformRating,
		features.FAvgWeeklyHours:    req.FAvgWeeklyHours,
		features.FBusinessYears:     req.FBusinessYears,
		features.FAvgDailyRevenue:   req.FAvgDailyRevenue,
		features.FLandSizeAcres:     req.FLandSizeAcres,
		features.FSubsidyAmount:     req.FSubsidyAmount,
		features.FSeasonalityIndex:  req.FSeasonalityIndex,
		features.FIsStudent:         req.FIsStudent,
		features.FIsGig:             req.FIsGig,
		features.FIsShopkeeper:      req.FIsShopkeeper,
		features.FIsRural:           req.FIsRural,
	}
}
