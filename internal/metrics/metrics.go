package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	InsightsServed      int64
	SnapshotHits        int64
	DefaultSnapshotHits int64
	DatasetsSynthesized int64
	InvalidDateInputs   int64
	SavesSucceeded      int64
	SaveFailures        int64
	ExpertsSkipped      int64
	ExpertFeedFailures  int64
	ItemsImported       int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRequestTime time.Time
	LastErrorTime   time.Time
	LastError       string
	IsHealthy       bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) add(counter *int64, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter += n
}

func (m *Metrics) IncrementInsightsServed()      { m.add(&m.InsightsServed, 1) }
func (m *Metrics) IncrementSnapshotHits()        { m.add(&m.SnapshotHits, 1) }
func (m *Metrics) IncrementDefaultSnapshotHits() { m.add(&m.DefaultSnapshotHits, 1) }
func (m *Metrics) IncrementSynthesized()         { m.add(&m.DatasetsSynthesized, 1) }
func (m *Metrics) IncrementInvalidDates()        { m.add(&m.InvalidDateInputs, 1) }
func (m *Metrics) IncrementExpertsSkipped()      { m.add(&m.ExpertsSkipped, 1) }
func (m *Metrics) IncrementExpertFeedFailures()  { m.add(&m.ExpertFeedFailures, 1) }
func (m *Metrics) AddItemsImported(n int)        { m.add(&m.ItemsImported, int64(n)) }

func (m *Metrics) RecordSave(ok bool) {
	if ok {
		m.add(&m.SavesSucceeded, 1)
		m.SetHealthy()
		return
	}
	m.add(&m.SaveFailures, 1)
	m.SetError("snapshot save failed")
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++
	m.LastRequestTime = time.Now()

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

// SetError records the latest failure. Health recovers on the next successful save.
func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) SetHealthy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsHealthy = true
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"insights_served":            m.InsightsServed,
		"snapshot_hits":              m.SnapshotHits,
		"default_snapshot_hits":      m.DefaultSnapshotHits,
		"datasets_synthesized":       m.DatasetsSynthesized,
		"invalid_date_inputs":        m.InvalidDateInputs,
		"saves_succeeded":            m.SavesSucceeded,
		"save_failures":              m.SaveFailures,
		"experts_skipped":            m.ExpertsSkipped,
		"expert_feed_failures":       m.ExpertFeedFailures,
		"items_imported":             m.ItemsImported,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_request_time":          m.LastRequestTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
