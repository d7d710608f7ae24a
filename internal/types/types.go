package types

// ScoreRequest is the primary scoring request: raw borrower form fields.
// Every numeric field is optional and defaults to 0.0; profile-inapplicable
// signals are simply left unset.
type ScoreRequest struct {
	// ProfileType is one of: salaried | student | gig | shopkeeper | rural.
	// Matching is case-insensitive; empty defaults to "salaried".
	ProfileType string `json:"profile_type"`

	MonthlyIncome  float64 `json:"monthly_income" binding:"omitempty,gte=0"`
	IncomeVariance float64 `json:"income_variance" binding:"omitempty,gte=0"`
	SavingsBalance float64 `json:"savings_balance" binding:"omitempty,gte=0"`
	MonthsActive   float64 `json:"months_active" binding:"omitempty,gte=0"`

	TotalCredits      float64 `json:"total_credits" binding:"omitempty,gte=0"`
	TotalDebits       float64 `json:"total_debits" binding:"omitempty,gte=0"`
	TotalTransactions float64 `json:"total_transactions" binding:"omitempty,gte=0"`
	AvgCreditAmount   float64 `json:"avg_credit_amount" binding:"omitempty,gte=0"`
	AvgDebitAmount    float64 `json:"avg_debit_amount" binding:"omitempty,gte=0"`
	RecurringRatio    float64 `json:"recurring_ratio" binding:"omitempty,gte=0,lte=1"`

	GPA              float64 `json:"gpa" binding:"omitempty,gte=0,lte=4"`
	AttendanceRate   float64 `json:"attendance_rate" binding:"omitempty,gte=0,lte=1"`
	PlatformRating   float64 `json:"platform_rating" binding:"omitempty,gte=0,lte=5"`
	AvgWeeklyHours   float64 `json:"avg_weekly_hours" binding:"omitempty,gte=0"`
	BusinessYears    float64 `json:"business_years" binding:"omitempty,gte=0"`
	AvgDailyRevenue  float64 `json:"avg_daily_revenue" binding:"omitempty,gte=0"`
	LandSizeAcres    float64 `json:"land_size_acres" binding:"omitempty,gte=0"`
	SubsidyAmount    float64 `json:"subsidy_amount" binding:"omitempty,gte=0"`
	SeasonalityIndex float64 `json:"seasonality_index" binding:"omitempty,gte=0,lte=1"`
}

// BatchScoreRequest scores up to 50 borrowers in a single request.
type BatchScoreRequest struct {
	Borrowers []ScoreRequest `json:"borrowers" binding:"required,min=1,max=50,dive"`
}

// PredictRequest is the legacy schema: pre-engineered f_* feature columns.
// Requests on this path are always scored under the salaried threshold.
type PredictRequest struct {
	FMonthlyIncome     float64 `json:"f_monthly_income" binding:"omitempty,gte=0"`
	FIncomeVariance    float64 `json:"f_income_variance" binding:"omitempty,gte=0"`
	FSavingsBalance    float64 `json:"f_savings_balance" binding:"omitempty,gte=0"`
	FMonthsActive      float64 `json:"f_months_active" binding:"omitempty,gte=0"`
	FTotalCredits      float64 `json:"f_total_credits" binding:"omitempty,gte=0"`
	FTotalDebits       float64 `json:"f_total_debits" binding:"omitempty,gte=0"`
	FTotalTransactions float64 `json:"f_total_transactions" binding:"omitempty,gte=0"`
	FAvgCreditAmount   float64 `json:"f_avg_credit_amount" binding:"omitempty,gte=0"`
	FAvgDebitAmount    float64 `json:"f_avg_debit_amount" binding:"omitempty,gte=0"`
	FRecurringRatio    float64 `json:"f_recurring_ratio" binding:"omitempty,gte=0,lte=1"`
	FGPA               float64 `json:"f_gpa" binding:"omitempty,gte=0,lte=4"`
	FAttendanceRate    float64 `json:"f_attendance_rate" binding:"omitempty,gte=0,lte=1"`
	FPlatformRating    float64 `json:"f_platform_rating" binding:"omitempty,gte=0,lte=5"`
	FAvgWeeklyHours    float64 `json:"f_avg_weekly_hours" binding:"omitempty,gte=0"`
	FBusinessYears     float64 `json:"f_business_years" binding:"omitempty,gte=0"`
	FAvgDailyRevenue   float64 `json:"f_avg_daily_revenue" binding:"omitempty,gte=0"`
	FLandSizeAcres     float64 `json:"f_land_size_acres" binding:"omitempty,gte=0"`
	FSubsidyAmount     float64 `json:"f_subsidy_amount" binding:"omitempty,gte=0"`
	FSeasonalityIndex  float64 `json:"f_seasonality_index" binding:"omitempty,gte=0,lte=1"`
	FIsStudent         float64 `json:"f_is_student" binding:"omitempty,gte=0,lte=1"`
	FIsGig             float64 `json:"f_is_gig" binding:"omitempty,gte=0,lte=1"`
	FIsShopkeeper      float64 `json:"f_is_shopkeeper" binding:"omitempty,gte=0,lte=1"`
	FIsRural           float64 `json:"f_is_rural" binding:"omitempty,gte=0,lte=1"`
}

// TopFactor describes one feature driving a prediction.
type TopFactor struct {
	Label     string  `json:"label"`
	Direction string  `json:"direction"` // "positive" helps the score, "negative" hurts it
	Impact    float64 `json:"impact"`    // non-negative, rounded to 4 decimals
}

// ScoreResponse is the full scoring result for one borrower.
type ScoreResponse struct {
	RepaymentProbability   float64     `json:"repayment_probability"`
	DefaultProbability     float64     `json:"default_probability"`
	AlternativeCreditScore int         `json:"alternative_credit_score"`
	PredictedDefault       bool        `json:"predicted_default"`
	RiskBand               string      `json:"risk_band"` // "Low" | "Medium" | "High"
	TopFactors             []TopFactor `json:"top_factors"`
}

// BatchScoreResponse carries batch results in input order.
type BatchScoreResponse struct {
	Results []ScoreResponse `json:"results"`
	Count   int             `json:"count"`
}
