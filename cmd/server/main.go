package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/altcredit/credscore/internal/cache"
	"github.com/altcredit/credscore/internal/database"
	"github.com/altcredit/credscore/internal/errors"
	"github.com/altcredit/credscore/internal/model"
	"github.com/altcredit/credscore/internal/monitoring"
	"github.com/altcredit/credscore/internal/scoring"
	"github.com/altcredit/credscore/internal/security"
	"github.com/altcredit/credscore/internal/types"
)

const version = "6.0.0"

type config struct {
	port           string
	modelPath      string
	dataDir        string
	allowedOrigins []string
	cacheTTL       time.Duration
}

func loadConfig() config {
	return config{
		port:           getEnvOrDefault("PORT", "8080"),
		modelPath:      getEnvOrDefault("MODEL_PATH", "./credit_model.json"),
		dataDir:        getEnvOrDefault("DATA_DIR", "./data"),
		allowedOrigins: parseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		cacheTTL:       parseDurationOrDefault(os.Getenv("CACHE_TTL"), 15*time.Minute),
	}
}

// application holds the long-lived service state: everything here is
// created once at startup and shared read-only by the handlers.
type application struct {
	cfg       config
	store     *model.Store
	orch      *scoring.Orchestrator
	db        *database.DB
	history   *database.HistoryService
	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	respCache *cache.Cache
}

func newApplication(cfg config) (*application, error) {
	store := model.NewStore(cfg.modelPath)
	if err := store.Load(); err != nil {
		// Degraded startup: the server still answers health checks, but
		// scoring requests get 503 until a valid artifact is provided.
		slog.Warn("Model not loaded; scoring endpoints will return 503",
			"path", cfg.modelPath, "error", err)
	}

	db, err := database.NewDB(cfg.dataDir)
	if err != nil {
		return nil, err
	}

	return &application{
		cfg:       cfg,
		store:     store,
		orch:      scoring.NewOrchestrator(store),
		db:        db,
		history:   database.NewHistoryService(db),
		metrics:   monitoring.NewMetrics(),
		logger:    monitoring.NewLogger(),
		respCache: cache.NewCache(cfg.cacheTTL),
	}, nil
}

func (app *application) close() {
	app.store.Shutdown()
	errors.SafeClose(app.db, "database")
}

// saveHistory persists a scoring outcome off the request path.
func (app *application) saveHistory(res types.ScoreResponse, profile, source string) {
	go func() {
		if err := app.history.SaveResult(res, profile, source); err != nil {
			slog.Error("Failed to save scoring history", "error", err, "source", source)
		}
	}()
}

func (app *application) setupRouter() *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(app.metrics, app.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	sm := security.NewSecurityMiddleware(security.DefaultSecurityConfig())
	r.Use(sm.SecurityHeaders)
	r.Use(sm.RequestTimeout)
	r.Use(sm.ValidateContentType)
	r.Use(sm.LimitBodySize)
	r.Use(sm.RateLimitByIP)

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(app.cfg.allowedOrigins) == 1 && app.cfg.allowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = app.cfg.allowedOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	r.Use(app.respCache.Middleware(app.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"model_loaded": app.store.Ready(),
			"model":        app.store.Stats(),
			"version":      version,
			"timestamp":    time.Now().Format(time.RFC3339),
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Alternative Credit Scoring API",
			"version": version,
			"docs":    "/swagger/index.html",
			"health":  "/health",
		})
	})

	r.POST("/score", app.handleScore)
	r.POST("/score/batch", app.handleScoreBatch)
	r.POST("/predict", app.handlePredict)

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.metrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.respCache.Stats())
	})

	r.GET("/pools/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "database",
			"stats": app.db.GetPoolStats(),
		})
	})

	r.GET("/history/recent", func(c *gin.Context) {
		limit := 50
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
				limit = l
			}
		}

		entries, err := app.history.Recent(limit)
		if err != nil {
			app.logger.APIErrorLogger(err, "GET", "/history/recent", c.ClientIP(), http.StatusInternalServerError)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve scoring history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
	})

	r.GET("/history/stats", func(c *gin.Context) {
		stats, err := app.history.Stats()
		if err != nil {
			app.logger.APIErrorLogger(err, "GET", "/history/stats", c.ClientIP(), http.StatusInternalServerError)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate scoring history"})
			return
		}

		c.JSON(http.StatusOK, stats)
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if os.Getenv("ENABLE_PROFILING") == "true" {
		slog.Info("Enabling performance profiling endpoints")
		r.GET("/debug/pprof/*filepath", gin.WrapF(pprof.Index))
		r.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
		r.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
		r.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
		r.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	}

	return r
}

func (app *application) handleScore(c *gin.Context) {
	start := time.Now()

	var req types.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError(err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	res, err := app.orch.Score(req)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	profile := strings.ToLower(strings.TrimSpace(req.ProfileType))
	if profile == "" {
		profile = "salaried"
	}

	app.metrics.RecordScore(profile, res.RiskBand)
	app.logger.ScoringLogger(profile, res.AlternativeCreditScore, res.RiskBand,
		res.DefaultProbability, len(res.TopFactors), time.Since(start), c.GetBool("cache_hit"))
	app.saveHistory(res, profile, "score")

	c.JSON(http.StatusOK, res)
}

func (app *application) handleScoreBatch(c *gin.Context) {
	var req types.BatchScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError(err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	res, err := app.orch.ScoreBatch(req)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	app.metrics.RecordBatch(res.Count)
	for i, result := range res.Results {
		profile := strings.ToLower(strings.TrimSpace(req.Borrowers[i].ProfileType))
		if profile == "" {
			profile = "salaried"
		}
		app.saveHistory(result, profile, "batch")
	}

	c.JSON(http.StatusOK, res)
}

func (app *application) handlePredict(c *gin.Context) {
	var req types.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError(err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	res, err := app.orch.Predict(req)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	app.metrics.RecordLegacyPredict()
	app.saveHistory(res, "salaried", "predict")

	c.JSON(http.StatusOK, res)
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	app, err := newApplication(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.close()

	r := app.setupRouter()

	srv := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.port, "model_loaded", app.store.Ready())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(raw string) []string {
	parts := []string{}
	for _, o := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return []string{"*"}
	}
	return parts
}

func parseDurationOrDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}
