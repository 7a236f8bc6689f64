package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordSave_TogglesHealth(t *testing.T) {
	m := New()
	assert.True(t, m.Healthy())

	m.RecordSave(false)
	assert.False(t, m.Healthy())
	assert.Equal(t, "snapshot save failed", m.GetStats()["last_error"])

	m.RecordSave(true)
	assert.True(t, m.Healthy())

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["saves_succeeded"])
	assert.Equal(t, int64(1), stats["save_failures"])
}

func TestRecordProcessingTime_Average(t *testing.T) {
	m := New()
	m.RecordProcessingTime(10 * time.Millisecond)
	m.RecordProcessingTime(30 * time.Millisecond)

	assert.Equal(t, 20*time.Millisecond, m.AverageProcessingTime)
	assert.Equal(t, int64(30), m.GetStats()["last_processing_time_ms"])
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncrementInsightsServed()
	m.IncrementSynthesized()
	m.IncrementExpertsSkipped()
	m.AddItemsImported(4)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["insights_served"])
	assert.Equal(t, int64(1), stats["datasets_synthesized"])
	assert.Equal(t, int64(1), stats["experts_skipped"])
	assert.Equal(t, int64(4), stats["items_imported"])
}
