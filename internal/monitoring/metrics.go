package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	// Scoring metrics
	SingleScores   int64
	BatchScores    int64
	BatchRecords   int64
	LegacyPredicts int64

	ScoresByProfile map[string]int64
	ScoresByBand    map[string]int64
	ScoringMutex    sync.RWMutex

	// Response time samples for percentiles
	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	// Status code tracking
	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		ScoresByProfile:      make(map[string]int64),
		ScoresByBand:         make(map[string]int64),
		ResponseTimes:        make([]time.Duration, 0, 1000),
		RequestCountByStatus: make(map[int]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// RecordScore records a completed single-record scoring operation
func (m *Metrics) RecordScore(profile, riskBand string) {
	atomic.AddInt64(&m.SingleScores, 1)

	m.ScoringMutex.Lock()
	m.ScoresByProfile[profile]++
	m.ScoresByBand[riskBand]++
	m.ScoringMutex.Unlock()
}

// RecordBatch records a completed batch scoring operation of n records
func (m *Metrics) RecordBatch(n int) {
	atomic.AddInt64(&m.BatchScores, 1)
	atomic.AddInt64(&m.BatchRecords, int64(n))
}

// RecordLegacyPredict records a completed legacy predict operation
func (m *Metrics) RecordLegacyPredict() {
	atomic.AddInt64(&m.LegacyPredicts, 1)
}

// RecordResponseTime records response time for averaging and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	// Keep the last 1000 samples
	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > 1000 {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetPercentileResponseTime returns the given percentile of recorded
// response times in nanoseconds
func (m *Metrics) GetPercentileResponseTime(percentile int) int64 {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(m.ResponseTimes))
	copy(sorted, m.ResponseTimes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (percentile * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx].Nanoseconds()
}

// GetStatusCodeDistribution returns a copy of the status code counts
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	dist := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		dist[code] = count
	}
	return dist
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)
	avgResponseTime := atomic.LoadInt64(&m.AverageResponseTime)
	singleScores := atomic.LoadInt64(&m.SingleScores)
	batchScores := atomic.LoadInt64(&m.BatchScores)
	batchRecords := atomic.LoadInt64(&m.BatchRecords)
	legacyPredicts := atomic.LoadInt64(&m.LegacyPredicts)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	totalCacheRequests := cacheHits + cacheMisses
	if totalCacheRequests > 0 {
		cacheHitRate = float64(cacheHits) / float64(totalCacheRequests) * 100
	}

	m.ScoringMutex.RLock()
	byProfile := make(map[string]int64, len(m.ScoresByProfile))
	for profile, count := range m.ScoresByProfile {
		byProfile[profile] = count
	}
	byBand := make(map[string]int64, len(m.ScoresByBand))
	for band, count := range m.ScoresByBand {
		byBand[band] = count
	}
	m.ScoringMutex.RUnlock()

	uptime := time.Since(m.StartTime)

	return map[string]interface{}{
		"uptime_seconds":         uptime.Seconds(),
		"total_requests":         requests,
		"error_count":            errors,
		"error_rate_percent":     errorRate,
		"cache_hits":             cacheHits,
		"cache_misses":           cacheMisses,
		"cache_hit_rate_percent": cacheHitRate,
		"avg_response_time_ms":   float64(avgResponseTime) / 1000000,
		"start_time":             m.StartTime.Format(time.RFC3339),

		"single_scores":      singleScores,
		"batch_scores":       batchScores,
		"batch_records":      batchRecords,
		"legacy_predictions": legacyPredicts,
		"scores_by_profile":  byProfile,
		"scores_by_band":     byBand,

		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),
	}
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.RequestCount, 0)
	atomic.StoreInt64(&m.ErrorCount, 0)
	atomic.StoreInt64(&m.CacheHits, 0)
	atomic.StoreInt64(&m.CacheMisses, 0)
	atomic.StoreInt64(&m.AverageResponseTime, 0)
	atomic.StoreInt64(&m.SingleScores, 0)
	atomic.StoreInt64(&m.BatchScores, 0)
	atomic.StoreInt64(&m.BatchRecords, 0)
	atomic.StoreInt64(&m.LegacyPredicts, 0)

	m.ScoringMutex.Lock()
	m.ScoresByProfile = make(map[string]int64)
	m.ScoresByBand = make(map[string]int64)
	m.ScoringMutex.Unlock()

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = m.ResponseTimes[:0]
	m.ResponseTimesMutex.Unlock()

	m.StatusMutex.Lock()
	m.RequestCountByStatus = make(map[int]int64)
	m.StatusMutex.Unlock()
}
