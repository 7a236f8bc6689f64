// Package rss turns local RSS/Atom files into digest items.
package rss

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/aidigest/internal/dates"
	"github.com/deusflow/aidigest/internal/logger"
	"github.com/deusflow/aidigest/internal/model"
)

// Manifest is the YAML import list:
//
//	imports:
//	  - section: ai_research
//	    file: feeds/research.xml
//	    limit: 8
type Manifest struct {
	Imports []ImportSpec `yaml:"imports"`
}

type ImportSpec struct {
	Section model.SectionKey `yaml:"section"`
	File    string           `yaml:"file"`
	Limit   int              `yaml:"limit"`
}

// LoadManifest reads an import manifest from a YAML file.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m Manifest
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	for i, spec := range m.Imports {
		if spec.Section == "" || spec.File == "" {
			return nil, fmt.Errorf("manifest entry %d needs both section and file", i)
		}
	}
	return &m, nil
}

// ParseFile parses a feed stored on disk. Only local files are read.
func ParseFile(path string) (*gofeed.Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	feed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing feed %s: %w", path, err)
	}
	logger.Info("loaded feed", "file", path, "items", len(feed.Items))
	return feed, nil
}

// ToItems converts feed entries into digest items, keeping at most limit
// (all when limit <= 0). The first entry is highlighted.
func ToItems(feed *gofeed.Feed, limit int) []model.Item {
	entries := feed.Items
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	items := make([]model.Item, 0, len(entries))
	for i, e := range entries {
		who := feed.Title
		if e.Author != nil && e.Author.Name != "" {
			who = e.Author.Name
		} else if len(e.Authors) > 0 && e.Authors[0] != nil && e.Authors[0].Name != "" {
			who = e.Authors[0].Name
		}

		description := PlainText(e.Description)
		if description == "" {
			description = PlainText(e.Content)
		}

		items = append(items, model.Item{
			Title:       strings.TrimSpace(e.Title),
			Description: description,
			Who:         who,
			Impact:      strings.Join(e.Categories, "、"),
			Date:        entryDate(e),
			Source:      feed.Title,
			Highlight:   i == 0,
		})
	}
	return items
}

// entryDate prefers the parsed publish time, then the update time, then
// whatever text the feed carried.
func entryDate(e *gofeed.Item) string {
	switch {
	case e.PublishedParsed != nil:
		return e.PublishedParsed.Format(dates.CanonicalLayout)
	case e.UpdatedParsed != nil:
		return e.UpdatedParsed.Format(dates.CanonicalLayout)
	case e.Published != "":
		return e.Published
	default:
		return e.Updated
	}
}

// PlainText strips markup from an HTML fragment and collapses whitespace.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
