package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/aidigest/internal/dates"
	"github.com/deusflow/aidigest/internal/model"
)

func testBaseline(t *testing.T) *model.Dataset {
	t.Helper()
	b, err := DefaultBaseline()
	require.NoError(t, err)
	return b
}

func TestDefaultBaseline(t *testing.T) {
	b := testBaseline(t)
	require.Len(t, b.Sections, len(model.SectionOrder))
	for _, k := range model.SectionOrder {
		sec, ok := b.Sections[k]
		require.True(t, ok, k)
		assert.NotEmpty(t, sec.Title)
		assert.GreaterOrEqual(t, len(sec.Items), 2, k)
		assert.LessOrEqual(t, len(sec.Items), 13, k)
	}
	assert.Len(t, b.Sections[model.SectionGPUComputing].Items, 13)
}

func TestDefaultRoster(t *testing.T) {
	roster, err := DefaultRoster()
	require.NoError(t, err)
	require.Len(t, roster, 8)
	assert.Equal(t, "唐杰", roster[0].Name)
	assert.Equal(t, "智谱AI", roster[0].Keywords[0])
}

func TestSeed(t *testing.T) {
	assert.Equal(t, uint32(59430748), Seed("2024-03-15"))
	assert.Equal(t, uint32(1171935939), Seed("2030-01-01"))
	assert.Equal(t, Seed("2024-03-15"), Seed("2024-03-15"))
}

func TestSynthesize_DatesFollowSeed(t *testing.T) {
	synth := NewSynthesizer(testBaseline(t))

	ds, err := synth.Synthesize("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024年03月15日", ds.Date)

	// offsets for 2024-03-15 are 1, 2, 0, 1, ...
	items := ds.Sections[model.SectionAIExperts].Items
	require.Len(t, items, 4)
	assert.Equal(t, "2024-03-14", items[0].Date)
	assert.Equal(t, "2024-03-13", items[1].Date)
	assert.Equal(t, "2024-03-15", items[2].Date)
	assert.Equal(t, "2024-03-14", items[3].Date)
}

func TestSynthesize_Deterministic(t *testing.T) {
	synth := NewSynthesizer(testBaseline(t))

	a, err := synth.Synthesize("2030-01-01")
	require.NoError(t, err)
	b, err := synth.Synthesize("2030-01-01")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSynthesize_EachCallIsFresh(t *testing.T) {
	synth := NewSynthesizer(testBaseline(t))

	a, err := synth.Synthesize("2030-01-01")
	require.NoError(t, err)
	a.Date = "changed"
	a.Sections[model.SectionAIResearch] = model.Section{Title: "changed"}

	b, err := synth.Synthesize("2030-1-1")
	require.NoError(t, err)
	assert.Equal(t, "2030年01月01日", b.Date)
	assert.NotEqual(t, "changed", b.Sections[model.SectionAIResearch].Title)

	fresh, err := NewSynthesizer(testBaseline(t)).Synthesize("2030-01-01")
	require.NoError(t, err)
	assert.Equal(t, fresh, b)
}

func TestSynthesize_NeverFutureNeverOlderThanTwoDays(t *testing.T) {
	synth := NewSynthesizer(testBaseline(t))
	target := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	ds, err := synth.Synthesize("2030-01-01")
	require.NoError(t, err)
	for key, sec := range ds.Sections {
		for _, it := range sec.Items {
			d, err := dates.Parse(it.Date)
			require.NoError(t, err, key)
			diff := dates.DaysBetween(d, target)
			assert.GreaterOrEqual(t, diff, 0, "%s %s", key, it.Date)
			assert.LessOrEqual(t, diff, 2, "%s %s", key, it.Date)
		}
	}
}

func TestSynthesize_BaselineUntouched(t *testing.T) {
	b := testBaseline(t)
	before := b.Clone()

	_, err := NewSynthesizer(b).Synthesize("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, before, b)
}

func TestSynthesize_InvalidDate(t *testing.T) {
	_, err := NewSynthesizer(testBaseline(t)).Synthesize("2024-13-45")
	assert.ErrorIs(t, err, dates.ErrInvalidDateFormat)
}
