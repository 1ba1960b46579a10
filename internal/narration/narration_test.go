package narration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/tinywiki/internal/wiki"
)

func TestScript_ShortSection(t *testing.T) {
	sec := wiki.Section{
		Heading:   "Energy",
		Content:   "The **mitochondria** is the powerhouse of the cell.",
		KeyPoints: []string{"Makes **ATP**", "  ", "Has its own DNA."},
	}
	got := Script(sec, DefaultConfig())
	assert.Equal(t, []string{
		"Energy.",
		"The mitochondria is the powerhouse of the cell.",
		"Key points. Makes ATP. Has its own DNA.",
	}, got)
}

func TestScript_ParagraphsAndWrappedLines(t *testing.T) {
	sec := wiki.Section{Content: "First line\ncontinues here.\n\n\n\nSecond paragraph."}
	got := Script(sec, DefaultConfig())
	assert.Equal(t, []string{"First line continues here.", "Second paragraph."}, got)
}

func TestScript_SplitsLongParagraphs(t *testing.T) {
	content := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 30)
	got := Script(wiki.Section{Content: content}, Config{SegmentWords: 20})

	require.Greater(t, len(got), 1)
	total := 0
	for i, seg := range got {
		words := CountWords(seg)
		assert.LessOrEqual(t, words, 20, "segment %d", i)
		total += words
	}
	assert.Equal(t, CountWords(content), total, "no words lost or duplicated")
}

func TestScript_SplitsOverlongSentence(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("word ", 25))
	got := Script(wiki.Section{Content: content}, Config{SegmentWords: 10})
	require.Len(t, got, 3)
	assert.Equal(t, 10, CountWords(got[0]))
	assert.Equal(t, 10, CountWords(got[1]))
	assert.Equal(t, 5, CountWords(got[2]))
}

func TestScript_EmptySection(t *testing.T) {
	assert.Empty(t, Script(wiki.Section{}, Config{}))
}
