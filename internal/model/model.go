// Package model holds the digest document types shared by storage, synthesis and the API.
package model

import "sort"

// SectionKey identifies one of the digest's topical sections.
type SectionKey string

const (
	SectionEnterpriseAI  SectionKey = "enterprise_ai"
	SectionAIAgents      SectionKey = "ai_agents"
	SectionSemiconductor SectionKey = "semiconductor"
	SectionGPUComputing  SectionKey = "gpu_computing"
	SectionAIResearch    SectionKey = "ai_research"
	// SectionAIExperts is regenerated from the expert feed on every read.
	SectionAIExperts SectionKey = "ai_experts"
)

// SectionOrder is the presentation order of the known sections.
var SectionOrder = []SectionKey{
	SectionEnterpriseAI,
	SectionAIAgents,
	SectionSemiconductor,
	SectionGPUComputing,
	SectionAIResearch,
	SectionAIExperts,
}

// Known reports whether k is one of the six digest sections. Unknown keys
// survive a load/save round trip but get no special treatment.
func (k SectionKey) Known() bool {
	for _, known := range SectionOrder {
		if k == known {
			return true
		}
	}
	return false
}

// IsExpertFeed reports whether k is the live expert-feed section.
func (k SectionKey) IsExpertFeed() bool {
	return k == SectionAIExperts
}

// Item is one news entry. Date is canonical (YYYY-MM-DD) or localized and
// may be unparseable in hand-edited snapshots.
type Item struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Who         string `json:"who" yaml:"who"`
	Impact      string `json:"impact" yaml:"impact"`
	Date        string `json:"date" yaml:"date"`
	Source      string `json:"source" yaml:"source"`
	Highlight   bool   `json:"highlight" yaml:"highlight"`
}

type Section struct {
	Title string `json:"title" yaml:"title"`
	Icon  string `json:"icon" yaml:"icon"`
	Items []Item `json:"items" yaml:"items"`
}

// Clone copies s including its item slice.
func (s Section) Clone() Section {
	out := s
	if s.Items != nil {
		out.Items = make([]Item, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}

// Dataset is one day's digest. Date is the localized display date.
type Dataset struct {
	Date     string                 `json:"date" yaml:"date"`
	Sections map[SectionKey]Section `json:"sections" yaml:"sections"`
}

// Clone returns a deep copy; mutating it never affects d.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{Date: d.Date}
	if d.Sections != nil {
		out.Sections = make(map[SectionKey]Section, len(d.Sections))
		for k, s := range d.Sections {
			out.Sections[k] = s.Clone()
		}
	}
	return out
}

// Keys lists the dataset's section keys: known sections in presentation
// order first, then unknown ones sorted.
func (d *Dataset) Keys() []SectionKey {
	keys := make([]SectionKey, 0, len(d.Sections))
	for _, k := range SectionOrder {
		if _, ok := d.Sections[k]; ok {
			keys = append(keys, k)
		}
	}
	var unknown []SectionKey
	for k := range d.Sections {
		if !k.Known() {
			unknown = append(unknown, k)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(keys, unknown...)
}

// ExpertRecord is one entry of the static expert roster.
type ExpertRecord struct {
	Name     string   `json:"name" yaml:"name"`
	Company  string   `json:"company" yaml:"company"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// DateEntry describes one stored dated snapshot.
type DateEntry struct {
	Date    string `json:"date"`
	Display string `json:"display"`
}
