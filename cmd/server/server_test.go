package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altcredit/credscore/internal/features"
	"github.com/altcredit/credscore/internal/model"
	"github.com/altcredit/credscore/internal/types"
)

func writeTestArtifact(t *testing.T) string {
	t.Helper()

	fold := model.Fold{
		Coef:   make([]float64, features.FeatureCount),
		Scale:  make([]float64, features.FeatureCount),
		Mean:   make([]float64, features.FeatureCount),
		PlattA: -1,
	}
	for i := range fold.Scale {
		fold.Scale[i] = 1
	}
	fold.Coef[0] = -0.0001 // income lowers default odds
	fold.Coef[1] = 0.002   // variance raises them

	artifact := model.Artifact{
		Version:      "test-1",
		FeatureOrder: append([]string(nil), features.Order...),
		Folds:        []model.Fold{fold},
	}

	path := filepath.Join(t.TempDir(), "credit_model.json")
	raw, err := json.Marshal(artifact)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func newTestApp(t *testing.T, withModel bool) *application {
	t.Helper()
	gin.SetMode(gin.TestMode)

	modelPath := filepath.Join(t.TempDir(), "missing.json")
	if withModel {
		modelPath = writeTestArtifact(t)
	}

	app, err := newApplication(config{
		port:           "0",
		modelPath:      modelPath,
		dataDir:        t.TempDir(),
		allowedOrigins: []string{"*"},
		cacheTTL:       time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(app.close)

	return app
}

func postJSON(r http.Handler, path, payload string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func getJSON(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := getJSON(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["model_loaded"])
	assert.Equal(t, version, body["version"])
}

func TestServer_HealthDegraded(t *testing.T) {
	r := newTestApp(t, false).setupRouter()

	w := getJSON(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code, "health stays reachable without a model")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["model_loaded"])
}

func TestServer_Root(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := getJSON(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alternative Credit Scoring API")
}

func TestServer_Score(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := postJSON(r, "/score", `{
		"profile_type": "salaried",
		"monthly_income": 8000,
		"income_variance": 200,
		"savings_balance": 15000,
		"months_active": 24,
		"total_credits": 50000,
		"total_debits": 35000,
		"total_transactions": 120,
		"recurring_ratio": 0.4
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res types.ScoreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	assert.GreaterOrEqual(t, res.AlternativeCreditScore, 300)
	assert.LessOrEqual(t, res.AlternativeCreditScore, 900)
	assert.InDelta(t, 1.0, res.RepaymentProbability+res.DefaultProbability, 1e-5)
	assert.Contains(t, []string{"Low", "Medium", "High"}, res.RiskBand)
	assert.Len(t, res.TopFactors, 5)
	for _, factor := range res.TopFactors {
		assert.GreaterOrEqual(t, factor.Impact, 0.0)
		assert.Contains(t, []string{"positive", "negative"}, factor.Direction)
	}
}

func TestServer_ScoreDeterministic(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	payload := `{"profile_type": "gig", "monthly_income": 3000, "platform_rating": 4.5}`

	first := postJSON(r, "/score", payload)
	second := postJSON(r, "/score", payload)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestServer_ScoreUnknownProfile(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := postJSON(r, "/score", `{"profile_type": "astronaut"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "astronaut")
}

func TestServer_ScoreOutOfRangeField(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	tests := []struct {
		name    string
		payload string
	}{
		{"negative income", `{"profile_type": "salaried", "monthly_income": -100}`},
		{"ratio above one", `{"profile_type": "salaried", "recurring_ratio": 1.5}`},
		{"gpa above four", `{"profile_type": "student", "gpa": 4.5}`},
		{"malformed json", `{"profile_type": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/score", tt.payload)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestServer_ScoreModelNotLoaded(t *testing.T) {
	r := newTestApp(t, false).setupRouter()

	w := postJSON(r, "/score", `{"profile_type": "salaried", "monthly_income": 5000}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Model not loaded")
}

func TestServer_ScoreBatch(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := postJSON(r, "/score/batch", `{"borrowers": [
		{"profile_type": "salaried", "monthly_income": 9000},
		{"profile_type": "student", "gpa": 3.4, "attendance_rate": 0.92},
		{"profile_type": "rural", "land_size_acres": 3, "subsidy_amount": 2000}
	]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res types.BatchScoreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 3, res.Count)
	require.Len(t, res.Results, 3)
}

func TestServer_ScoreBatchRejectsOversize(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	borrowers := make([]map[string]interface{}, 51)
	for i := range borrowers {
		borrowers[i] = map[string]interface{}{"profile_type": "salaried"}
	}
	payload, err := json.Marshal(map[string]interface{}{"borrowers": borrowers})
	require.NoError(t, err)

	w := postJSON(r, "/score/batch", string(payload))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestServer_ScoreBatchRejectsEmpty(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := postJSON(r, "/score/batch", `{"borrowers": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestServer_ScoreBatchAbortsOnBadProfile(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := postJSON(r, "/score/batch", `{"borrowers": [
		{"profile_type": "salaried"},
		{"profile_type": "pirate"}
	]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestServer_Predict(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := postJSON(r, "/predict", `{
		"f_monthly_income": 6500,
		"f_savings_balance": 12000,
		"f_total_credits": 30000,
		"f_total_debits": 22000,
		"f_is_gig": 1
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res types.ScoreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.GreaterOrEqual(t, res.AlternativeCreditScore, 300)
	assert.LessOrEqual(t, res.AlternativeCreditScore, 900)
}

func TestServer_Metrics(t *testing.T) {
	app := newTestApp(t, true)
	r := app.setupRouter()

	postJSON(r, "/score", `{"profile_type": "salaried", "monthly_income": 4000}`)

	w := getJSON(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Contains(t, stats, "total_requests")
	assert.Contains(t, stats, "single_scores")
	assert.Contains(t, stats, "scores_by_profile")
}

func TestServer_CacheStats(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := getJSON(r, "/cache/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_items")
}

func TestServer_DatabasePoolStats(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := getJSON(r, "/pools/database")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "open_connections")
}

func TestServer_HistoryEndpoints(t *testing.T) {
	app := newTestApp(t, true)
	r := app.setupRouter()

	postJSON(r, "/score", `{"profile_type": "shopkeeper", "avg_daily_revenue": 900}`)

	// History writes happen off the request path.
	deadline := time.Now().Add(2 * time.Second)
	for {
		stats, err := app.history.Stats()
		require.NoError(t, err)
		if stats.TotalScored > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	w := getJSON(r, "/history/recent")
	assert.Equal(t, http.StatusOK, w.Code)

	var recent map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recent))
	assert.Contains(t, recent, "entries")
	assert.Contains(t, recent, "count")

	w = getJSON(r, "/history/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_scored")
}

func TestServer_ContentTypeRejected(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewBufferString("<xml/>"))
	req.Header.Set("Content-Type", "application/xml")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestServer_SecurityHeaders(t *testing.T) {
	r := newTestApp(t, true).setupRouter()

	w := getJSON(r, "/health")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestServer_BatchLimitMatchesBodyCap(t *testing.T) {
	// A full 50-record batch with every field populated must stay inside
	// the request body cap.
	borrowers := make([]map[string]interface{}, 50)
	for i := range borrowers {
		borrowers[i] = map[string]interface{}{
			"profile_type": "shopkeeper", "monthly_income": 5000.55,
			"income_variance": 120.5, "savings_balance": 20000.25,
			"months_active": 36, "total_credits": 90000, "total_debits": 70000,
			"total_transactions": 450, "avg_credit_amount": 200, "avg_debit_amount": 155,
			"recurring_ratio": 0.35, "business_years": 6, "avg_daily_revenue": 1100,
			"seasonality_index": 0.2,
		}
	}
	payload, err := json.Marshal(map[string]interface{}{"borrowers": borrowers})
	require.NoError(t, err)
	require.Less(t, len(payload), 256*1024,
		fmt.Sprintf("a max batch of %d bytes must fit the body cap", len(payload)))

	r := newTestApp(t, true).setupRouter()
	w := postJSON(r, "/score/batch", string(payload))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
