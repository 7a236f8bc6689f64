package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/aidigest/internal/model"
)

func newTestStore(t *testing.T) (*DatasetStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	return NewDatasetStore(fb, ""), dir
}

func sampleDataset(date string) *model.Dataset {
	return &model.Dataset{
		Date: date,
		Sections: map[model.SectionKey]model.Section{
			model.SectionAIResearch: {
				Title: "AI算法研究前沿",
				Icon:  "🔬",
				Items: []model.Item{{Title: "AlphaFold 3", Date: "2024-03-15", Highlight: true}},
			},
		},
	}
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "insights_2024-05-01.json", SnapshotKey("2024-05-01"))

	d, ok := DateFromKey("insights_2024-05-01.json")
	require.True(t, ok)
	assert.Equal(t, "2024-05-01", d)

	_, ok = DateFromKey("insights.json")
	assert.False(t, ok)
}

func TestDisplayDateMatches(t *testing.T) {
	assert.True(t, DisplayDateMatches("2024年03月15日", "2024-03-15"))
	assert.True(t, DisplayDateMatches("updated 2024-03-15", "2024-03-15"))
	assert.False(t, DisplayDateMatches("2024年3月15日", "2024-03-15"), "no zero padding in the loose match")
	assert.False(t, DisplayDateMatches("2024年03月16日", "2024-03-15"))
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	ds := sampleDataset("2024年03月15日")
	require.True(t, store.Save(ctx, ds, SnapshotKey("2024-03-15")))

	raw, err := os.ReadFile(filepath.Join(dir, "insights_2024-03-15.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"date\": \"2024年03月15日\"", "pretty-printed, unescaped UTF-8")

	got, err := store.Load(ctx, "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, ds, got)
}

func TestLoad_Missing(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load(context.Background(), "2024-03-15")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoad_CorruptIsNotFound(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "insights_2024-03-15.json"), []byte("{not json"), 0644))

	_, err := store.Load(context.Background(), "2024-03-15")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDefault_LooseMatch(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.True(t, store.Save(ctx, sampleDataset("2024年03月15日"), store.DefaultKey()))

	got, err := store.LoadDefault(ctx, "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024年03月15日", got.Date)

	_, err = store.LoadDefault(ctx, "2024-03-16")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_WriteFailureReturnsFalse(t *testing.T) {
	store, dir := newTestStore(t)
	// a directory where the file should go makes the write fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "insights_2024-03-15.json"), 0755))

	assert.False(t, store.Save(context.Background(), sampleDataset("2024年03月15日"), SnapshotKey("2024-03-15")))
	assert.False(t, store.Save(context.Background(), nil, SnapshotKey("2024-03-16")))
	assert.False(t, store.Save(context.Background(), sampleDataset("x"), "../escape.json"))
}

func TestAvailableDates(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)
	for _, d := range []string{"2024-03-15", "2024-05-01", "2023-12-31"} {
		require.True(t, store.Save(ctx, sampleDataset(d), SnapshotKey(d)))
	}
	require.True(t, store.Save(ctx, sampleDataset("x"), store.DefaultKey()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "insights_bogus.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	entries, err := store.AvailableDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.DateEntry{
		{Date: "2024-05-01", Display: "2024年05月01日"},
		{Date: "2024-03-15", Display: "2024年03月15日"},
		{Date: "2023-12-31", Display: "2023年12月31日"},
	}, entries)
}

func TestEncode_UnknownSectionsSurvive(t *testing.T) {
	ds := sampleDataset("2024年03月15日")
	ds.Sections["robotics"] = model.Section{Title: "机器人"}

	data, err := Encode(ds)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"robotics"`))
}
