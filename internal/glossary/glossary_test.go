package glossary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

func sections(contents ...string) []wiki.Section {
	out := make([]wiki.Section, len(contents))
	for i, c := range contents {
		out[i] = wiki.Section{Heading: "s", Content: c}
	}
	return out
}

func TestExtract_MitochondriaScenario(t *testing.T) {
	doc := &wiki.Document{
		Title: "Cells",
		Sections: sections(
			"The **mitochondria** is the powerhouse of the cell.",
			"**Mitochondria** produce ATP.",
		),
	}

	g := Extract(doc.Sections)
	require.Equal(t, 1, g.Len())

	e, ok := g.Entry("MITOCHONDRIA")
	require.True(t, ok)
	assert.Equal(t, "mitochondria", e.Term)
	assert.Equal(t, "The powerhouse of the cell", e.Definition)

	// Both sections render a term fragment resolving to the single entry.
	for _, sec := range doc.Sections {
		var terms []markup.Fragment
		for f := range markup.Format(sec.Content, g) {
			if f.Kind == markup.KindTerm {
				terms = append(terms, f)
			}
		}
		require.Len(t, terms, 1)
		assert.True(t, terms[0].Defined)
		assert.Equal(t, "The powerhouse of the cell", terms[0].Definition)
	}
}

func TestExtract_FirstDefinitionWins(t *testing.T) {
	g := Extract(sections(
		"An **Enzyme**: a protein catalyst. Later an **enzyme** means something else.",
		"**ENZYME** refers to a third thing.",
	))
	require.Equal(t, 1, g.Len())
	e, _ := g.Entry("enzyme")
	assert.Equal(t, "Enzyme", e.Term)
	assert.Equal(t, "A protein catalyst", e.Definition)
}

func TestExtract_TermFiltering(t *testing.T) {
	g := Extract(sections("Values **42** and **3.14** and **1,000** and **x** and **-7** and **50%** and **ok** here."))
	for _, bad := range []string{"42", "3.14", "1,000", "x", "-7", "50%"} {
		_, ok := g.Lookup(bad)
		assert.False(t, ok, "term %q must be filtered", bad)
	}
	_, ok := g.Lookup("ok")
	assert.True(t, ok)
	assert.Equal(t, 1, g.Len())
}

func TestExtract_Idempotent(t *testing.T) {
	secs := sections("A **cell** is small.", "The **nucleus** — holds DNA.", "**Gene**\nnext line")
	a := Extract(secs)
	b := Extract(secs)
	assert.Equal(t, a.Entries(), b.Entries())
}

func TestExtract_NoDefinitionKeepsTerm(t *testing.T) {
	g := Extract(sections("Look at **ribosomes**.", "**Golgi**\nSecond line."))
	for _, term := range []string{"ribosomes", "golgi"} {
		def, ok := g.Lookup(term)
		assert.True(t, ok, term)
		assert.Empty(t, def, term)
	}
}

func TestDefine_LeadIns(t *testing.T) {
	tests := []struct {
		following string
		want      string
	}{
		{" is the powerhouse of the cell.", "The powerhouse of the cell"},
		{" are tiny machines. More.", "Tiny machines"},
		{": a short definition", "A short definition"},
		{", which matters.", "Which matters"},
		{" - dash lead. x", "Dash lead"},
		{" — em dash lead.", "Em dash lead"},
		{" refers to the thing.", "The thing"},
		{" means nothing.", "Nothing"},
		{" represents value.", "Value"},
		{" isotopes differ.", "Isotopes differ"},
		{" holds **DNA** inside.", "Holds DNA inside"},
		{".", ""},
		{"", ""},
		{"\nnew line", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Define(tt.following), "Define(%q)", tt.following)
	}
}

func TestDefine_Truncates(t *testing.T) {
	def := Define(" is " + strings.Repeat("word ", 100))
	assert.True(t, strings.HasSuffix(def, "..."))
	assert.LessOrEqual(t, len([]rune(def)), MaxDefinitionRunes+3)
}

func TestEntries_SortedCaseInsensitive(t *testing.T) {
	g := Extract(sections("**beta** b. **Alpha** a. **gamma** g. **Delta** d."))
	var terms []string
	for _, e := range g.Entries() {
		terms = append(terms, e.Term)
	}
	assert.Equal(t, []string{"Alpha", "beta", "Delta", "gamma"}, terms)
}

func TestMemo_RecomputesOnlyOnNewDocument(t *testing.T) {
	doc := &wiki.Document{Title: "t", Sections: sections("A **cell** is small.")}
	var memo Memo

	first := memo.Get(doc)
	second := memo.Get(doc)
	assert.Equal(t, 1, memo.Runs())
	assert.Equal(t, first.Entries(), second.Entries())

	copyDoc := *doc
	memo.Get(&copyDoc)
	assert.Equal(t, 2, memo.Runs())

	empty := memo.Get(nil)
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.Entries())
}
