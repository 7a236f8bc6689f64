package insights

import (
	"context"
	"sort"
	"time"

	"github.com/deusflow/aidigest/internal/dates"
	"github.com/deusflow/aidigest/internal/logger"
	"github.com/deusflow/aidigest/internal/metrics"
	"github.com/deusflow/aidigest/internal/model"
)

const (
	MaxItemsPerSection = 8
	ProximityDays      = 3
)

// ExpertFeed produces the live items of the expert section.
type ExpertFeed interface {
	Fetch(ctx context.Context, roster []model.ExpertRecord, maxPerExpert int) ([]model.Item, error)
}

// Processor shapes a dataset for display: proximity filter, newest-first
// sort, truncation, and the expert-feed substitution.
type Processor struct {
	feed         ExpertFeed
	roster       []model.ExpertRecord
	maxPerExpert int
	clock        dates.Clock
	metrics      *metrics.Metrics
}

func NewProcessor(feed ExpertFeed, roster []model.ExpertRecord, maxPerExpert int, clock dates.Clock, m *metrics.Metrics) *Processor {
	if m == nil {
		m = metrics.Global
	}
	return &Processor{
		feed:         feed,
		roster:       roster,
		maxPerExpert: maxPerExpert,
		clock:        clock,
		metrics:      m,
	}
}

// Process returns a processed copy of ds; ds itself is not modified.
// target is a date string or "" for no proximity filtering.
func (p *Processor) Process(ctx context.Context, ds *model.Dataset, target string) *model.Dataset {
	if ds == nil {
		return nil
	}

	out := &model.Dataset{Date: ds.Date, Sections: make(map[model.SectionKey]model.Section, len(ds.Sections))}
	for _, key := range ds.Keys() {
		if !key.Known() {
			logger.Debug("processing unknown section with generic rules", "section", key)
		}
		out.Sections[key] = p.ProcessSection(ctx, key, ds.Sections[key], target)
	}
	return out
}

// ProcessSection applies the section rules to a copy of section.
func (p *Processor) ProcessSection(ctx context.Context, key model.SectionKey, section model.Section, target string) model.Section {
	out := section.Clone()

	if key.IsExpertFeed() {
		items, err := p.feed.Fetch(ctx, p.roster, p.maxPerExpert)
		if err == nil {
			out.Items = items
			return out
		}
		logger.Warn("expert feed failed, using stored items", "error", err)
		p.metrics.IncrementExpertFeedFailures()
		out.Items = Limit(SortByDate(section.Items), MaxItemsPerSection)
		return out
	}

	items := section.Items
	if target != "" {
		t, err := dates.Parse(target)
		if err != nil {
			t, _ = dates.Parse(dates.Today(p.clock))
		}
		if filtered := FilterByProximity(items, t, ProximityDays); len(filtered) > 0 {
			items = filtered
		}
	}

	out.Items = Limit(SortByDate(items), MaxItemsPerSection)
	return out
}

// itemTime parses an item date; unparseable dates sort as the zero time.
func itemTime(it model.Item) time.Time {
	t, err := dates.Parse(it.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortByDate returns a newest-first copy of items. Ties keep their order
// and unparseable dates go last.
func SortByDate(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return itemTime(out[i]).After(itemTime(out[j]))
	})
	return out
}

// Limit keeps at most n items.
func Limit(items []model.Item, n int) []model.Item {
	if len(items) > n {
		return items[:n]
	}
	if items == nil {
		return []model.Item{}
	}
	return items
}

// FilterByProximity keeps items dated within days of target (inclusive).
// Items with unparseable dates are always kept.
func FilterByProximity(items []model.Item, target time.Time, days int) []model.Item {
	var out []model.Item
	for _, it := range items {
		t, err := dates.Parse(it.Date)
		if err != nil {
			out = append(out, it)
			continue
		}
		diff := dates.DaysBetween(target, t)
		if diff < 0 {
			diff = -diff
		}
		if diff <= days {
			out = append(out, it)
		}
	}
	return out
}
