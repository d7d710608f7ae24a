package features

// FeatureCount is the fixed length of every feature vector. The model
// artifact is validated against it at load time.
const FeatureCount = 35

// Canonical feature names. The slice below fixes their positions; the
// constants exist so the builder and tests never index by bare string.
const (
	FMonthlyIncome     = "f_monthly_income"
	FIncomeVariance    = "f_income_variance"
	FSavingsBalance    = "f_savings_balance"
	FMonthsActive      = "f_months_active"
	FIncomeStability   = "f_income_stability"
	FSavingsRatio      = "f_savings_ratio"
	FLiquidityBuffer   = "f_liquidity_buffer"
	FTotalCredits      = "f_total_credits"
	FTotalDebits       = "f_total_debits"
	FTotalTransactions = "f_total_transactions"
	FAvgCreditAmount   = "f_avg_credit_amount"
	FAvgDebitAmount    = "f_avg_debit_amount"
	FRecurringRatio    = "f_recurring_ratio"
	FNetCashflow       = "f_net_cashflow"
	FCreditDebitRatio  = "f_credit_debit_ratio"
	FGPA               = "f_gpa"
	FAttendanceRate    = "f_attendance_rate"
	FPlatformRating    = "f_platform_rating"
	FAvgWeeklyHours    = "f_avg_weekly_hours"
	FBusinessYears     = "f_business_years"
	FAvgDailyRevenue   = "f_avg_daily_revenue"
	FLandSizeAcres     = "f_land_size_acres"
	FSubsidyAmount     = "f_subsidy_amount"
	FSeasonalityIndex  = "f_seasonality_index"
	FIsStudent         = "f_is_student"
	FIsGig             = "f_is_gig"
	FIsShopkeeper      = "f_is_shopkeeper"
	FIsRural           = "f_is_rural"

	StabilityAdjustedIncome = "stability_adjusted_income"
	IncomeRiskIndex         = "income_risk_index"
	MissedPaymentProxy      = "missed_payment_proxy"
	NetCashflowRatio        = "net_cashflow_ratio"
	ProfileIncomeSignal     = "profile_income_signal"
	ProfileRatingSignal     = "profile_rating_signal"
	TransactionDensity      = "transaction_density"
)

// Order is the canonical 35-feature order. It is a wire contract shared
// with model training: positions must never be rearranged independently
// of a retrained artifact. Groups, in sequence: 7 core financial,
// 8 transaction behaviour, 9 profile-specific raw, 4 one-hot, 7 engineered.
var Order = []string{
	FMonthlyIncome,
	FIncomeVariance,
	FSavingsBalance,
	FMonthsActive,
	FIncomeStability,
	FSavingsRatio,
	FLiquidityBuffer,

	FTotalCredits,
	FTotalDebits,
	FTotalTransactions,
	FAvgCreditAmount,
	FAvgDebitAmount,
	FRecurringRatio,
	FNetCashflow,
	FCreditDebitRatio,

	FGPA,
	FAttendanceRate,
	FPlatformRating,
	FAvgWeeklyHours,
	FBusinessYears,
	FAvgDailyRevenue,
	FLandSizeAcres,
	FSubsidyAmount,
	FSeasonalityIndex,

	FIsStudent,
	FIsGig,
	FIsShopkeeper,
	FIsRural,

	StabilityAdjustedIncome,
	IncomeRiskIndex,
	MissedPaymentProxy,
	NetCashflowRatio,
	ProfileIncomeSignal,
	ProfileRatingSignal,
	TransactionDensity,
}

// labels maps feature names to the human-readable strings used in
// explanation output.
var labels = map[string]string{
	FMonthlyIncome:     "Monthly income",
	FIncomeVariance:    "Income variance",
	FSavingsBalance:    "Savings balance",
	FMonthsActive:      "Months of economic activity",
	FIncomeStability:   "Income stability",
	FSavingsRatio:      "Savings-to-income ratio",
	FLiquidityBuffer:   "Liquidity buffer",
	FTotalCredits:      "Total credits",
	FTotalDebits:       "Total debits",
	FTotalTransactions: "Transaction volume",
	FAvgCreditAmount:   "Avg credit size",
	FAvgDebitAmount:    "Avg debit size",
	FRecurringRatio:    "Recurring payment rate",
	FNetCashflow:       "Net cashflow",
	FCreditDebitRatio:  "Credit-to-debit ratio",
	FGPA:               "GPA",
	FAttendanceRate:    "Attendance rate",
	FPlatformRating:    "Platform rating",
	FAvgWeeklyHours:    "Avg weekly hours worked",
	FBusinessYears:     "Years in business",
	FAvgDailyRevenue:   "Avg daily revenue",
	FLandSizeAcres:     "Land size (acres)",
	FSubsidyAmount:     "Subsidy amount",
	FSeasonalityIndex:  "Seasonality index",
	FIsStudent:         "Student profile",
	FIsGig:             "Gig worker profile",
	FIsShopkeeper:      "Shopkeeper profile",
	FIsRural:           "Rural/agri profile",

	StabilityAdjustedIncome: "Stability-adjusted income",
	IncomeRiskIndex:         "Income risk index",
	MissedPaymentProxy:      "Missed payment signal",
	NetCashflowRatio:        "Net cashflow ratio",
	ProfileIncomeSignal:     "Profile income signal",
	ProfileRatingSignal:     "Profile quality signal",
	TransactionDensity:      "Transaction density",
}

// Label returns the human-readable label for a canonical feature name,
// falling back to the raw name for anything unmapped.
func Label(name string) string {
	if l, ok := labels[name]; ok {
		return l
	}
	return name
}
