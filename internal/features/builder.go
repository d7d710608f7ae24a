package features

import "math"

// Vector is a fixed-length feature vector in canonical Order. Values are
// plain float64; a Vector is built once per request and never mutated.
type Vector [FeatureCount]float64

// BorrowerRecord carries the raw signals for one borrower. Fields that do
// not apply to the borrower's profile stay at their zero value.
type BorrowerRecord struct {
	Profile Profile

	MonthlyIncome  float64
	IncomeVariance float64
	SavingsBalance float64
	MonthsActive   float64

	TotalCredits      float64
	TotalDebits       float64
	TotalTransactions float64
	AvgCreditAmount   float64
	AvgDebitAmount    float64
	RecurringRatio    float64

	GPA              float64
	AttendanceRate   float64
	PlatformRating   float64
	AvgWeeklyHours   float64
	BusinessYears    float64
	AvgDailyRevenue  float64
	LandSizeAcres    float64
	SubsidyAmount    float64
	SeasonalityIndex float64
}

// safeRatio divides num by den with a floor of 1.0 on the denominator, so
// zero-activity borrowers never produce NaN or Inf.
func safeRatio(num, den float64) float64 {
	return num / math.Max(den, 1.0)
}

// oneHot derives the profile flags. Exactly one flag is set for non-salaried
// profiles; salaried borrowers are the implicit baseline with all four at 0.
func oneHot(p Profile) (isStudent, isGig, isShopkeeper, isRural float64) {
	switch p {
	case ProfileStudent:
		isStudent = 1.0
	case ProfileGig:
		isGig = 1.0
	case ProfileShopkeeper:
		isShopkeeper = 1.0
	case ProfileRural:
		isRural = 1.0
	case ProfileSalaried:
		// baseline: no dedicated flag
	}
	return
}

// Build maps a borrower record to the canonical 35-feature vector,
// computing all derived and engineered features. It never fails: missing
// signals are zeros and every division is guarded.
func Build(rec BorrowerRecord) Vector {
	isStudent, isGig, isShopkeeper, isRural := oneHot(rec.Profile)
	return assemble(rawSignals{
		monthlyIncome:     rec.MonthlyIncome,
		incomeVariance:    rec.IncomeVariance,
		savingsBalance:    rec.SavingsBalance,
		monthsActive:      rec.MonthsActive,
		totalCredits:      rec.TotalCredits,
		totalDebits:       rec.TotalDebits,
		totalTransactions: rec.TotalTransactions,
		avgCreditAmount:   rec.AvgCreditAmount,
		avgDebitAmount:    rec.AvgDebitAmount,
		recurringRatio:    rec.RecurringRatio,
		gpa:               rec.GPA,
		attendanceRate:    rec.AttendanceRate,
		platformRating:    rec.PlatformRating,
		avgWeeklyHours:    rec.AvgWeeklyHours,
		businessYears:     rec.BusinessYears,
		avgDailyRevenue:   rec.AvgDailyRevenue,
		landSizeAcres:     rec.LandSizeAcres,
		subsidyAmount:     rec.SubsidyAmount,
		seasonalityIndex:  rec.SeasonalityIndex,
		isStudent:         isStudent,
		isGig:             isGig,
		isShopkeeper:      isShopkeeper,
		isRural:           isRural,
	})
}

// BuildFromColumns is the legacy construction path: a map of pre-engineered
// f_* column values, including explicit one-hot flags. Missing keys default
// to 0.0. Derived and engineered features are always recomputed from the
// raw columns, exactly as the primary path does.
func BuildFromColumns(cols map[string]float64) Vector {
	return assemble(rawSignals{
		monthlyIncome:     cols[FMonthlyIncome],
		incomeVariance:    cols[FIncomeVariance],
		savingsBalance:    cols[FSavingsBalance],
		monthsActive:      cols[FMonthsActive],
		totalCredits:      cols[FTotalCredits],
		totalDebits:       cols[FTotalDebits],
		totalTransactions: cols[FTotalTransactions],
		avgCreditAmount:   cols[FAvgCreditAmount],
		avgDebitAmount:    cols[FAvgDebitAmount],
		recurringRatio:    cols[FRecurringRatio],
		gpa:               cols[FGPA],
		attendanceRate:    cols[FAttendanceRate],
		platformRating:    cols[FPlatformRating],
		avgWeeklyHours:    cols[FAvgWeeklyHours],
		businessYears:     cols[FBusinessYears],
		avgDailyRevenue:   cols[FAvgDailyRevenue],
		landSizeAcres:     cols[FLandSizeAcres],
		subsidyAmount:     cols[FSubsidyAmount],
		seasonalityIndex:  cols[FSeasonalityIndex],
		isStudent:         cols[FIsStudent],
		isGig:             cols[FIsGig],
		isShopkeeper:      cols[FIsShopkeeper],
		isRural:           cols[FIsRural],
	})
}

type rawSignals struct {
	monthlyIncome, incomeVariance, savingsBalance, monthsActive  float64
	totalCredits, totalDebits, totalTransactions                 float64
	avgCreditAmount, avgDebitAmount, recurringRatio              float64
	gpa, attendanceRate, platformRating, avgWeeklyHours          float64
	businessYears, avgDailyRevenue, landSizeAcres, subsidyAmount float64
	seasonalityIndex, isStudent, isGig, isShopkeeper, isRural    float64
}

func assemble(s rawSignals) Vector {
	// Income stability: 1 / (1 + variance). Higher variance, less stable.
	incomeStability := 1.0 / (1.0 + s.incomeVariance)

	// savings_ratio and liquidity_buffer are the same quantity on purpose:
	// the trained coefficients expect the duplicate slot. Collapsing them
	// would silently break bit-compatibility with the loaded model.
	savingsRatio := safeRatio(s.savingsBalance, s.monthlyIncome)
	liquidityBuffer := savingsRatio

	netCashflow := s.totalCredits - s.totalDebits
	creditDebitRatio := safeRatio(s.totalCredits, s.totalDebits)

	stabilityAdjustedIncome := s.monthlyIncome * incomeStability
	incomeRiskIndex := s.monthlyIncome * (1.0 - incomeStability)

	// Debit concentration stands in for a missed-payment count, which the
	// raw signal set does not carry.
	missedPaymentProxy := math.Max(s.avgDebitAmount-s.avgCreditAmount, 0.0)

	netCashflowRatio := safeRatio(netCashflow, s.totalCredits)

	// Whichever profile-specific income proxy is active.
	profileIncomeSignal := s.avgDailyRevenue*s.isShopkeeper +
		s.subsidyAmount*s.isRural +
		s.gpa*s.isStudent +
		s.platformRating*s.isGig

	profileRatingSignal := s.platformRating*s.isGig +
		s.gpa*s.isStudent +
		s.attendanceRate*s.isStudent +
		s.avgWeeklyHours*s.isGig

	transactionDensity := safeRatio(s.totalTransactions, s.monthsActive)

	return Vector{
		s.monthlyIncome,
		s.incomeVariance,
		s.savingsBalance,
		s.monthsActive,
		incomeStability,
		savingsRatio,
		liquidityBuffer,

		s.totalCredits,
		s.totalDebits,
		s.totalTransactions,
		s.avgCreditAmount,
		s.avgDebitAmount,
		s.recurringRatio,
		netCashflow,
		creditDebitRatio,

		s.gpa,
		s.attendanceRate,
		s.platformRating,
		s.avgWeeklyHours,
		s.businessYears,
		s.avgDailyRevenue,
		s.landSizeAcres,
		s.subsidyAmount,
		s.seasonalityIndex,

		s.isStudent,
		s.isGig,
		s.isShopkeeper,
		s.isRural,

		stabilityAdjustedIncome,
		incomeRiskIndex,
		missedPaymentProxy,
		netCashflowRatio,
		profileIncomeSignal,
		profileRatingSignal,
		transactionDensity,
	}
}
