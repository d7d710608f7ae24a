package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/altcredit/credscore/internal/types"
	"github.com/google/uuid"
)

// HistoryEntry is one persisted scoring result summary. Raw borrower
// signals are never stored, only the outcome.
type HistoryEntry struct {
	ID                   string    `json:"id"`
	Source               string    `json:"source"` // "score" | "batch" | "predict"
	Profile              string    `json:"profile"`
	CreditScore          int       `json:"credit_score"`
	RiskBand             string    `json:"risk_band"`
	DefaultProbability   float64   `json:"default_probability"`
	RepaymentProbability float64   `json:"repayment_probability"`
	PredictedDefault     bool      `json:"predicted_default"`
	TopFactor            string    `json:"top_factor,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// HistoryStats aggregates persisted results for the stats endpoint.
type HistoryStats struct {
	TotalScored      int64            `json:"total_scored"`
	AverageScore     float64          `json:"average_score"`
	PredictedDefault int64            `json:"predicted_defaults"`
	ByProfile        map[string]int64 `json:"by_profile"`
	ByRiskBand       map[string]int64 `json:"by_risk_band"`
}

// HistoryService persists and queries scoring outcomes.
type HistoryService struct {
	db *DB
}

// NewHistoryService creates a history service over an open database.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db}
}

// SaveResult records one scoring outcome. Called from a goroutine off the
// request path; failures are logged, never surfaced to the caller.
func (s *HistoryService) SaveResult(res types.ScoreResponse, profile, source string) error {
	topFactor := ""
	if len(res.TopFactors) > 0 {
		topFactor = res.TopFactors[0].Label
	}

	query := `
		INSERT INTO scoring_history (
			id, source, profile, credit_score, risk_band,
			default_probability, repayment_probability, predicted_default,
			top_factor, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		uuid.New().String(), source, profile,
		res.AlternativeCreditScore, res.RiskBand,
		res.DefaultProbability, res.RepaymentProbability, res.PredictedDefault,
		topFactor, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save scoring result: %w", err)
	}

	slog.Debug("Scoring result saved",
		"profile", profile,
		"score", res.AlternativeCreditScore,
		"risk_band", res.RiskBand,
	)

	return nil
}

// Recent returns the most recent history entries, newest first.
func (s *HistoryService) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, source, profile, credit_score, risk_band,
		       default_probability, repayment_probability, predicted_default,
		       top_factor, created_at
		FROM scoring_history
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.Source, &e.Profile, &e.CreditScore, &e.RiskBand,
			&e.DefaultProbability, &e.RepaymentProbability, &e.PredictedDefault,
			&e.TopFactor, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Stats aggregates the stored history.
func (s *HistoryService) Stats() (HistoryStats, error) {
	stats := HistoryStats{
		ByProfile:  make(map[string]int64),
		ByRiskBand: make(map[string]int64),
	}

	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(AVG(credit_score), 0),
		       COALESCE(SUM(predicted_default), 0)
		FROM scoring_history
	`)
	if err := row.Scan(&stats.TotalScored, &stats.AverageScore, &stats.PredictedDefault); err != nil {
		return stats, fmt.Errorf("failed to aggregate history: %w", err)
	}

	byProfile, err := s.db.Query(`
		SELECT profile, COUNT(*) FROM scoring_history GROUP BY profile
	`)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate by profile: %w", err)
	}
	defer byProfile.Close()
	for byProfile.Next() {
		var profile string
		var count int64
		if err := byProfile.Scan(&profile, &count); err != nil {
			return stats, fmt.Errorf("failed to scan profile count: %w", err)
		}
		stats.ByProfile[profile] = count
	}
	if err := byProfile.Err(); err != nil {
		return stats, err
	}

	byBand, err := s.db.Query(`
		SELECT risk_band, COUNT(*) FROM scoring_history GROUP BY risk_band
	`)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate by risk band: %w", err)
	}
	defer byBand.Close()
	for byBand.Next() {
		var band string
		var count int64
		if err := byBand.Scan(&band, &count); err != nil {
			return stats, fmt.Errorf("failed to scan risk band count: %w", err)
		}
		stats.ByRiskBand[band] = count
	}

	return stats, byBand.Err()
}
