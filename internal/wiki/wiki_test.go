package wiki

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cell Biology 101", "cell-biology-101"},
		{"  Hello,   World! ", "hello-world"},
		{"Ünïcode only", "n-code-only"},
		{"", "wiki"},
		{"!!!", "wiki"},
		{strings.Repeat("ab ", 40), "ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "Slug(%q)", tt.in)
	}
}

func TestDocument_Validate(t *testing.T) {
	var nilDoc *Document
	assert.Error(t, nilDoc.Validate())
	assert.Error(t, (&Document{Title: "  "}).Validate())
	assert.Error(t, (&Document{Title: "x", ReadingTimeMinutes: -1}).Validate())
	assert.NoError(t, (&Document{Title: "x"}).Validate())
}

func TestDocument_Section(t *testing.T) {
	doc := &Document{Title: "t", Sections: []Section{{Heading: "a"}, {Heading: "b"}}}
	s, ok := doc.Section(1)
	require.True(t, ok)
	assert.Equal(t, "b", s.Heading)

	_, ok = doc.Section(2)
	assert.False(t, ok)
	_, ok = doc.Section(-1)
	assert.False(t, ok)

	var nilDoc *Document
	assert.Equal(t, 0, nilDoc.SectionCount())
}

func TestLoad_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"title": "Cells",
		"summary": "All about cells.",
		"readingTimeMinutes": 3,
		"sections": [{"heading": "Intro", "content": "The **cell** is small.", "keyPoints": ["small"], "citations": []}],
		"relatedTopics": ["Biology"]
	}`), 0o644))

	yamlPath := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`title: Cells
summary: All about cells.
readingTimeMinutes: 3
sections:
  - heading: Intro
    content: The **cell** is small.
    keyPoints: [small]
relatedTopics: [Biology]
`), 0o644))

	for _, path := range []string{jsonPath, yamlPath} {
		doc, err := Load(path)
		require.NoError(t, err, path)
		assert.Equal(t, "Cells", doc.Title)
		assert.Equal(t, 3, doc.ReadingTimeMinutes)
		require.Len(t, doc.Sections, 1)
		assert.Equal(t, "The **cell** is small.", doc.Sections[0].Content)
		assert.Equal(t, []string{"Biology"}, doc.RelatedTopics)
	}
}

func TestRead_RejectsMissingTitle(t *testing.T) {
	_, err := Read(strings.NewReader(`{"sections": []}`), ".json")
	assert.ErrorContains(t, err, "title is required")
}

func TestRead_FractionalReadingTime(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		in   string
		want int
	}{
		{"json half rounds up", ".json", `{"title": "T", "readingTimeMinutes": 4.5}`, 5},
		{"json below half", ".json", `{"title": "T", "readingTimeMinutes": 4.4}`, 4},
		{"json integer", ".json", `{"title": "T", "readingTimeMinutes": 7}`, 7},
		{"json absent", ".json", `{"title": "T"}`, 0},
		{"yaml fraction", ".yaml", "title: T\nreadingTimeMinutes: 2.5\n", 3},
		{"yaml integer", ".yml", "title: T\nreadingTimeMinutes: 6\n", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Read(strings.NewReader(tt.in), tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.ReadingTimeMinutes)
			assert.Equal(t, "T", doc.Title)
		})
	}
}

func TestRead_RejectsUnusableReadingTime(t *testing.T) {
	_, err := Read(strings.NewReader("title: T\nreadingTimeMinutes: .inf\n"), ".yaml")
	assert.Error(t, err)

	_, err = Read(strings.NewReader(`{"title": "T", "readingTimeMinutes": -0.7}`), ".json")
	assert.ErrorContains(t, err, "non-negative")

	_, err = Read(strings.NewReader(`{"title": "T", "readingTimeMinutes": "soon"}`), ".json")
	assert.Error(t, err)
}
