package insights

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/aidigest/internal/model"
)

//go:embed baseline.yaml
var baselineYAML []byte

//go:embed experts.yaml
var expertsYAML []byte

type rosterFile struct {
	Experts []model.ExpertRecord `yaml:"experts"`
}

var defaultBaseline = sync.OnceValues(func() (*model.Dataset, error) {
	return ParseBaseline(baselineYAML)
})

var defaultRoster = sync.OnceValues(func() ([]model.ExpertRecord, error) {
	return ParseRoster(expertsYAML)
})

// DefaultBaseline returns the embedded template. The value is shared and
// must be cloned before any modification.
func DefaultBaseline() (*model.Dataset, error) {
	return defaultBaseline()
}

// DefaultRoster returns the embedded expert roster.
func DefaultRoster() ([]model.ExpertRecord, error) {
	return defaultRoster()
}

// ParseBaseline decodes a YAML baseline template.
func ParseBaseline(data []byte) (*model.Dataset, error) {
	var ds model.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse baseline: %w", err)
	}
	if len(ds.Sections) == 0 {
		return nil, fmt.Errorf("baseline has no sections")
	}
	return &ds, nil
}

// ParseRoster decodes a YAML expert roster.
func ParseRoster(data []byte) ([]model.ExpertRecord, error) {
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse expert roster: %w", err)
	}
	return rf.Experts, nil
}

// LoadBaseline reads the template from path, or the embedded one when path is empty.
func LoadBaseline(path string) (*model.Dataset, error) {
	if path == "" {
		return DefaultBaseline()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}
	return ParseBaseline(data)
}

// LoadRoster reads the roster from path, or the embedded one when path is empty.
func LoadRoster(path string) ([]model.ExpertRecord, error) {
	if path == "" {
		return DefaultRoster()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expert roster: %w", err)
	}
	return ParseRoster(data)
}
