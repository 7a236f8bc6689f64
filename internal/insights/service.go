// Package insights resolves, synthesizes and shapes the daily AI digest.
package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/deusflow/aidigest/internal/dates"
	"github.com/deusflow/aidigest/internal/logger"
	"github.com/deusflow/aidigest/internal/metrics"
	"github.com/deusflow/aidigest/internal/model"
	"github.com/deusflow/aidigest/internal/storage"
)

type Service struct {
	store     *storage.DatasetStore
	synth     *Synthesizer
	processor *Processor
	clock     dates.Clock
	metrics   *metrics.Metrics
}

func NewService(store *storage.DatasetStore, synth *Synthesizer, processor *Processor, clock dates.Clock, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.Global
	}
	return &Service{
		store:     store,
		synth:     synth,
		processor: processor,
		clock:     clock,
		metrics:   m,
	}
}

// ResolveDate turns caller input into a canonical date. Empty or invalid
// input means today.
func (s *Service) ResolveDate(raw string) string {
	today := dates.Today(s.clock)
	if raw == "" {
		return today
	}
	d, err := dates.Normalize(raw)
	if err != nil {
		logger.Debug("invalid date input, using today", "input", raw, "error", err)
		s.metrics.IncrementInvalidDates()
		return today
	}
	return d
}

// GetInsights returns the processed digest for raw. Resolution order:
// dated snapshot, undated snapshot with a matching date, synthesized
// dataset. It never fails.
func (s *Service) GetInsights(ctx context.Context, raw string) *model.Dataset {
	start := time.Now()
	defer func() {
		s.metrics.IncrementInsightsServed()
		s.metrics.RecordProcessingTime(time.Since(start))
	}()

	date := s.ResolveDate(raw)

	if ds, err := s.store.Load(ctx, date); err == nil {
		logger.Debug("serving dated snapshot", "date", date)
		s.metrics.IncrementSnapshotHits()
		return s.processor.Process(ctx, ds, date)
	}

	if ds, err := s.store.LoadDefault(ctx, date); err == nil {
		logger.Debug("serving default snapshot", "date", date)
		s.metrics.IncrementDefaultSnapshotHits()
		return s.processor.Process(ctx, ds, date)
	}

	ds, err := s.synth.Synthesize(date)
	if err != nil {
		// ResolveDate only yields valid dates; keep the chain total anyway.
		logger.Error("synthesis failed, using today", "date", date, "error", err)
		ds, _ = s.synth.Synthesize(dates.Today(s.clock))
	}
	logger.Debug("serving synthesized dataset", "date", date)
	s.metrics.IncrementSynthesized()
	return s.processor.Process(ctx, ds, date)
}

// SnapshotKeyFor derives the storage key from a dataset's own date field.
// An empty date means today; a malformed one maps to the undated snapshot.
func (s *Service) SnapshotKeyFor(ds *model.Dataset) string {
	raw := ds.Date
	if raw == "" {
		raw = dates.Today(s.clock)
	}
	d, err := dates.Normalize(raw)
	if err != nil {
		logger.Warn("dataset date is malformed, saving as default snapshot", "date", ds.Date)
		return s.store.DefaultKey()
	}
	return storage.SnapshotKey(d)
}

// SaveInsights persists ds as a full-document replace.
func (s *Service) SaveInsights(ctx context.Context, ds *model.Dataset) bool {
	if ds == nil {
		s.metrics.RecordSave(false)
		return false
	}
	ok := s.store.Save(ctx, ds, s.SnapshotKeyFor(ds))
	s.metrics.RecordSave(ok)
	return ok
}

// AvailableDates lists stored dated snapshots, newest first.
func (s *Service) AvailableDates(ctx context.Context) ([]model.DateEntry, error) {
	return s.store.AvailableDates(ctx)
}

// ImportSection replaces one section's items in the snapshot for raw and
// writes the whole snapshot back. Without a stored snapshot the
// synthesized dataset is used as the starting point.
func (s *Service) ImportSection(ctx context.Context, raw string, key model.SectionKey, items []model.Item) (string, error) {
	if key.IsExpertFeed() {
		return "", fmt.Errorf("section %q is regenerated on every read and cannot be imported", key)
	}

	date := s.ResolveDate(raw)
	ds, err := s.store.Load(ctx, date)
	if err != nil {
		ds, err = s.synth.Synthesize(date)
		if err != nil {
			return "", fmt.Errorf("failed to prepare dataset: %w", err)
		}
	}
	ds.Date = dates.Display(date)

	section, ok := ds.Sections[key]
	if !ok {
		logger.Warn("import creates a section missing from the dataset", "section", key)
	}
	section.Items = items
	if ds.Sections == nil {
		ds.Sections = make(map[model.SectionKey]model.Section)
	}
	ds.Sections[key] = section

	if !s.SaveInsights(ctx, ds) {
		return "", fmt.Errorf("failed to save snapshot for %s", date)
	}
	s.metrics.AddItemsImported(len(items))
	return date, nil
}
