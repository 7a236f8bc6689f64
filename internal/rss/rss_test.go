package rss

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/aidigest/internal/model"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>AI Research Weekly</title>
    <link>https://example.com</link>
    <description>Research digest</description>
    <item>
      <title> New agent benchmark </title>
      <description><![CDATA[<p>Agents now <b>plan</b> across   tools.</p>]]></description>
      <author>lab@example.com (Example Lab)</author>
      <category>agents</category>
      <category>benchmarks</category>
      <pubDate>Fri, 15 Mar 2024 08:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Protein model update</title>
      <description>Plain text summary</description>
      <pubDate>Thu, 14 Mar 2024 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Undated note</title>
    </item>
  </channel>
</rss>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestParseFileAndToItems(t *testing.T) {
	feed, err := ParseFile(writeFile(t, "feed.xml", sampleRSS))
	require.NoError(t, err)

	items := ToItems(feed, 0)
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, "New agent benchmark", first.Title)
	assert.Equal(t, "Agents now plan across tools.", first.Description)
	assert.Equal(t, "Example Lab", first.Who)
	assert.Equal(t, "agents、benchmarks", first.Impact)
	assert.Equal(t, "2024-03-15", first.Date)
	assert.Equal(t, "AI Research Weekly", first.Source)
	assert.True(t, first.Highlight)

	assert.Equal(t, "AI Research Weekly", items[1].Who, "feed title when no author")
	assert.Equal(t, "2024-03-14", items[1].Date)
	assert.False(t, items[1].Highlight)
	assert.Equal(t, "", items[2].Date)

	assert.Len(t, ToItems(feed, 2), 2)
}

func TestParseFile_Errors(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)

	_, err = ParseFile(writeFile(t, "bad.xml", "this is not a feed"))
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "", PlainText("   "))
	assert.Equal(t, "hello world", PlainText("<div>hello\n\n <i>world</i></div>"))
	assert.Equal(t, "no markup", PlainText("no markup"))
}

func TestLoadManifest(t *testing.T) {
	p := writeFile(t, "imports.yaml", `
imports:
  - section: ai_research
    file: feeds/research.xml
    limit: 5
  - section: semiconductor
    file: feeds/chips.xml
`)
	m, err := LoadManifest(p)
	require.NoError(t, err)
	require.Len(t, m.Imports, 2)
	assert.Equal(t, model.SectionAIResearch, m.Imports[0].Section)
	assert.Equal(t, 5, m.Imports[0].Limit)
	assert.Equal(t, 0, m.Imports[1].Limit)

	_, err = LoadManifest(writeFile(t, "bad.yaml", "imports:\n  - section: ai_research\n"))
	assert.Error(t, err)
}
