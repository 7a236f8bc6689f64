package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/deusflow/aidigest/internal/dates"
	"github.com/deusflow/aidigest/internal/logger"
	"github.com/deusflow/aidigest/internal/model"
)

const (
	snapshotPrefix = "insights_"
	snapshotSuffix = ".json"

	DefaultKey = "insights.json"
)

// ErrNotFound is returned when no usable snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// Backend is the key/value surface snapshots live on.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	List(ctx context.Context) ([]string, error)
}

// SnapshotKey is the storage key of the snapshot for a canonical date.
func SnapshotKey(date string) string {
	return snapshotPrefix + date + snapshotSuffix
}

// DateFromKey extracts the date part of a dated snapshot key.
func DateFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, snapshotPrefix) || !strings.HasSuffix(key, snapshotSuffix) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(key, snapshotPrefix), snapshotSuffix), true
}

// DisplayDateMatches is the loose match used for the undated snapshot:
// the canonical date appears inside the display date, or the display date
// with its unit markers replaced (no zero padding) equals it.
func DisplayDateMatches(display, canonical string) bool {
	return strings.Contains(display, canonical) || dates.ReplaceMarkers(display) == canonical
}

// DatasetStore reads and writes per-date Dataset snapshots.
type DatasetStore struct {
	backend    Backend
	defaultKey string
}

func NewDatasetStore(backend Backend, defaultKey string) *DatasetStore {
	if defaultKey == "" {
		defaultKey = DefaultKey
	}
	return &DatasetStore{backend: backend, defaultKey: defaultKey}
}

// DefaultKey returns the key of the undated snapshot.
func (s *DatasetStore) DefaultKey() string {
	return s.defaultKey
}

// Load returns the snapshot stored for a canonical date. Read and decode
// failures are logged and reported as ErrNotFound.
func (s *DatasetStore) Load(ctx context.Context, date string) (*model.Dataset, error) {
	return s.read(ctx, SnapshotKey(date))
}

// LoadDefault returns the undated snapshot if its display date loosely
// matches the canonical date.
func (s *DatasetStore) LoadDefault(ctx context.Context, date string) (*model.Dataset, error) {
	ds, err := s.read(ctx, s.defaultKey)
	if err != nil {
		return nil, err
	}
	if !DisplayDateMatches(ds.Date, date) {
		logger.Debug("default snapshot date mismatch", "snapshot_date", ds.Date, "requested", date)
		return nil, ErrNotFound
	}
	return ds, nil
}

func (s *DatasetStore) read(ctx context.Context, key string) (*model.Dataset, error) {
	data, err := s.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("failed to read snapshot", "key", key, "error", err)
		}
		return nil, ErrNotFound
	}

	var ds model.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		logger.Warn("failed to decode snapshot", "key", key, "error", err)
		return nil, ErrNotFound
	}
	return &ds, nil
}

// Save writes ds under key as indented UTF-8 JSON. It never returns an
// error; failures are logged and reported as false.
func (s *DatasetStore) Save(ctx context.Context, ds *model.Dataset, key string) bool {
	if ds == nil {
		logger.Error("refusing to save nil dataset", "key", key)
		return false
	}

	data, err := Encode(ds)
	if err != nil {
		logger.Error("failed to encode snapshot", "key", key, "error", err)
		return false
	}

	if err := s.backend.Write(ctx, key, data); err != nil {
		logger.Error("failed to save snapshot", "key", key, "error", err)
		return false
	}

	logger.Info("snapshot saved", "key", key, "bytes", len(data))
	return true
}

// AvailableDates lists dated snapshots, newest first. Keys whose date part
// is not a valid canonical date are ignored.
func (s *DatasetStore) AvailableDates(ctx context.Context) ([]model.DateEntry, error) {
	keys, err := s.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	entries := make([]model.DateEntry, 0, len(keys))
	for _, key := range keys {
		date, ok := DateFromKey(key)
		if !ok {
			continue
		}
		canonical, err := dates.Normalize(date)
		if err != nil || canonical != date {
			continue
		}
		entries = append(entries, model.DateEntry{Date: date, Display: dates.Display(date)})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	return entries, nil
}

// Encode renders ds the way snapshots are stored: two-space indent,
// non-ASCII text kept verbatim.
func Encode(ds *model.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return nil, fmt.Errorf("failed to marshal dataset: %w", err)
	}
	return buf.Bytes(), nil
}
