package insights

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/deusflow/aidigest/internal/dates"
	"github.com/deusflow/aidigest/internal/model"
)

// Synthesizer builds a dataset for a date that has no snapshot. The output
// depends only on the date and the baseline.
type Synthesizer struct {
	baseline *model.Dataset
}

func NewSynthesizer(baseline *model.Dataset) *Synthesizer {
	return &Synthesizer{baseline: baseline}
}

// Seed derives the per-date seed: the first 8 hex digits of MD5(date).
func Seed(date string) uint32 {
	sum := md5.Sum([]byte(date))
	v, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:8], 16, 32)
	return uint32(v)
}

// dayOffset is how many days before the target item i is dated (0-2).
func dayOffset(seed uint32, i int) int {
	return int((uint64(seed) + uint64(i)) % 3)
}

// contentVariant is derived per item but not applied to any text field yet.
func contentVariant(seed uint32, i int) int {
	return int((uint64(seed) + uint64(i)*17) % 5)
}

// Synthesize clones the baseline for a canonical date and spreads item
// dates over the target day and the two days before it.
func (s *Synthesizer) Synthesize(date string) (*model.Dataset, error) {
	target, err := dates.Parse(date)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	canonical := target.Format(dates.CanonicalLayout)
	seed := Seed(canonical)

	ds := s.baseline.Clone()
	ds.Date = target.Format(dates.DisplayLayout)
	for key, section := range ds.Sections {
		for i := range section.Items {
			offset := dayOffset(seed, i)
			section.Items[i].Date = target.AddDate(0, 0, -offset).Format(dates.CanonicalLayout)
			_ = contentVariant(seed, i)
		}
		ds.Sections[key] = section
	}
	return ds, nil
}
