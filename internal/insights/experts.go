package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deusflow/aidigest/internal/dates"
	"github.com/deusflow/aidigest/internal/logger"
	"github.com/deusflow/aidigest/internal/metrics"
	"github.com/deusflow/aidigest/internal/model"
)

const (
	// MaxExpertsQueried caps how many roster entries a fetch looks at.
	MaxExpertsQueried = 5

	maxMockResultsPerExpert = 3
)

var ErrExpertSkipped = errors.New("expert skipped")

var activityTypes = []string{
	"发表主题演讲",
	"接受媒体专访",
	"发布技术观点",
	"参加行业峰会",
	"发布新产品",
}

// StubFeed fabricates placeholder expert activity dated "today". It is
// re-run on every request, so its output follows the clock, not the
// requested date.
type StubFeed struct {
	clock   dates.Clock
	metrics *metrics.Metrics
}

func NewStubFeed(clock dates.Clock, m *metrics.Metrics) *StubFeed {
	if m == nil {
		m = metrics.Global
	}
	return &StubFeed{clock: clock, metrics: m}
}

func (f *StubFeed) Fetch(ctx context.Context, roster []model.ExpertRecord, maxPerExpert int) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("expert feed: %w", err)
	}

	experts := roster
	if len(experts) > MaxExpertsQueried {
		experts = experts[:MaxExpertsQueried]
	}

	today := dates.Today(f.clock)
	var all []model.Item
	for _, expert := range experts {
		items, err := f.expertItems(expert, maxPerExpert, today)
		if err != nil {
			logger.Warn("skipping expert", "expert", expert.Name, "error", err)
			f.metrics.IncrementExpertsSkipped()
			continue
		}
		all = append(all, items...)
	}

	return Limit(SortByDate(all), MaxItemsPerSection), nil
}

func (f *StubFeed) expertItems(expert model.ExpertRecord, maxPerExpert int, today string) ([]model.Item, error) {
	name := strings.TrimSpace(expert.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: roster entry has no name", ErrExpertSkipped)
	}

	keyword := name
	if len(expert.Keywords) > 0 {
		keyword = expert.Keywords[0]
	}

	n := max(0, min(maxPerExpert, maxMockResultsPerExpert))
	items := make([]model.Item, 0, n)
	for i := 0; i < n; i++ {
		activity := activityTypes[i%len(activityTypes)]
		items = append(items, model.Item{
			Title:       fmt.Sprintf("%s：%s", name, activity),
			Description: fmt.Sprintf("%s相关专家%s近日%s，分享了对人工智能发展趋势的见解，认为AI技术正在快速发展，未来将在多个领域产生深远影响。", keyword, name, activity),
			Who:         name,
			Impact:      "分享AI发展趋势见解",
			Date:        today,
			Source:      fmt.Sprintf("%s官方/行业媒体", keyword),
			Highlight:   i == 0,
		})
	}
	return items, nil
}
