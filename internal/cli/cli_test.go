package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/tinywiki/internal/export"
	"github.com/dgallion1/tinywiki/internal/glossary"
	"github.com/dgallion1/tinywiki/internal/navigator"
	"github.com/dgallion1/tinywiki/internal/viewer"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

func sampleDoc(title string) *wiki.Document {
	return &wiki.Document{
		Title:              title,
		Summary:            "How cells make energy.",
		ReadingTimeMinutes: 2,
		Sections: []wiki.Section{
			{
				Heading:   "Energy",
				Content:   "The **mitochondria** is the powerhouse of the cell.",
				KeyPoints: []string{"Makes ATP"},
			},
			{Heading: "Output", Content: "**Mitochondria** produce ATP."},
		},
		RelatedTopics: []string{"Chloroplasts"},
	}
}

func writeDoc(t *testing.T, dir string, doc *wiki.Document) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, wiki.Slug(doc.Title)+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// run executes the command tree with a config path that does not exist, so
// only defaults and environment apply.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yml")}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestGlossaryCmd(t *testing.T) {
	path := writeDoc(t, t.TempDir(), sampleDoc("Cells"))

	out, _, err := run(t, "glossary", path)
	require.NoError(t, err)
	assert.Contains(t, out, "mitochondria")
	assert.Contains(t, out, "The powerhouse of the cell")

	out, _, err = run(t, "glossary", "--json", path)
	require.NoError(t, err)
	var entries []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "mitochondria", entries[0]["term"])
}

func TestGlossaryCmd_MissingFile(t *testing.T) {
	_, _, err := run(t, "glossary", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestExportCmd_Glob(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs", "nested")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	writeDoc(t, docs, sampleDoc("Cells"))
	writeDoc(t, filepath.Join(dir, "docs"), sampleDoc("Tissues"))
	outDir := filepath.Join(dir, "out")

	out, _, err := run(t, "export", filepath.Join(dir, "docs", "**", "*.json"), "--format", "md", "--out", outDir)
	require.NoError(t, err)

	for _, name := range []string{"cells.md", "tissues.md"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(string(data), "# "), name)
		assert.Contains(t, out, name)
	}
}

func TestExportCmd_DuplicateOutput(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, sampleDoc("Cells"))
	b := filepath.Join(dir, "copy.json")
	data, err := os.ReadFile(a)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(b, data, 0o644))

	_, _, err = run(t, "export", a, b, "--out", filepath.Join(dir, "out"), "--workers", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already written")
}

func TestExportCmd_BadFormat(t *testing.T) {
	path := writeDoc(t, t.TempDir(), sampleDoc("Cells"))
	_, _, err := run(t, "export", path, "--format", "pdf")
	assert.Error(t, err)
}

func TestShareCmd_RoundTrip(t *testing.T) {
	path := writeDoc(t, t.TempDir(), sampleDoc("Cells"))

	out, _, err := run(t, "share", "encode", path, "--section", "1", "--base-url", "https://wiki.example.com/view")
	require.NoError(t, err)
	link := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(link, "https://wiki.example.com/view?share="))
	assert.True(t, strings.HasSuffix(link, "#"+navigator.Fragment(1)))

	out, errOut, err := run(t, "share", "decode", link)
	require.NoError(t, err)
	assert.Contains(t, errOut, "section 1")
	var doc wiki.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, *sampleDoc("Cells"), doc)
}

func TestShareCmd_Errors(t *testing.T) {
	path := writeDoc(t, t.TempDir(), sampleDoc("Cells"))

	_, _, err := run(t, "share", "encode", path, "--section", "5")
	assert.Error(t, err)

	_, _, err = run(t, "share", "decode", "https://x.test/view?share=%%%")
	assert.Error(t, err)
}

func TestImportCmd(t *testing.T) {
	dir := t.TempDir()
	md := export.Markdown(sampleDoc("Cells"))
	path := filepath.Join(dir, md.Name)
	require.NoError(t, os.WriteFile(path, md.Data, 0o644))

	out, _, err := run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "title: Cells")
	assert.Contains(t, out, "heading: Energy")

	out, _, err = run(t, "import", path, "--output", "json")
	require.NoError(t, err)
	var doc wiki.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Cells", doc.Title)
}

func TestConfigCmd(t *testing.T) {
	out, _, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url:")
	assert.Contains(t, out, "segment_words:")
}

func TestExpandInputs_NoMatch(t *testing.T) {
	_, err := expandInputs([]string{filepath.Join(t.TempDir(), "*.json")})
	assert.Error(t, err)
}

func TestOpenDocument_ShareLink(t *testing.T) {
	path := writeDoc(t, t.TempDir(), sampleDoc("Cells"))
	out, _, err := run(t, "share", "encode", path, "--section", "1", "--base-url", "https://wiki.example.com/view")
	require.NoError(t, err)

	doc, section, err := openDocument(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "Cells", doc.Title)
	assert.Equal(t, 1, section)
}

func TestSystemClipboard(t *testing.T) {
	var got []string
	write := func(s string) error {
		got = append(got, s)
		return nil
	}

	t.Run("unsupported", func(t *testing.T) {
		clip := systemClipboard{unsupported: true, write: write}
		assert.ErrorIs(t, clip.WriteText(context.Background(), "x"), errNoClipboard)
		assert.Empty(t, got)
	})

	t.Run("writes", func(t *testing.T) {
		clip := systemClipboard{write: write}
		require.NoError(t, clip.WriteText(context.Background(), "https://wiki.example.com/view?share=abc"))
		assert.Equal(t, []string{"https://wiki.example.com/view?share=abc"}, got)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		clip := systemClipboard{write: write}
		assert.ErrorIs(t, clip.WriteText(ctx, "late"), context.Canceled)
		assert.Len(t, got, 1)
	})

	t.Run("write error surfaces as clipboard error", func(t *testing.T) {
		var out bytes.Buffer
		clip := systemClipboard{write: func(string) error { return errors.New("exit status 1") }}
		r := newReader(&out, &scripted{answers: []string{actionShare}}, clip, t.TempDir())
		r.open(viewer.Options{BaseURL: "https://wiki.example.com/view"}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
		defer r.v.Close()
		require.NoError(t, r.v.OnDocumentChanged(sampleDoc("Cells"), ""))
		require.NoError(t, r.run(context.Background()))
		assert.Contains(t, out.String(), "Could not copy the link.")
	})
}

// scripted answers each Select with the item equal to the next answer.
type scripted struct {
	answers []string
	labels  []string
}

func (s *scripted) Select(label string, items []string) (int, error) {
	s.labels = append(s.labels, label)
	if len(s.answers) == 0 {
		return 0, io.EOF
	}
	want := s.answers[0]
	s.answers = s.answers[1:]
	for i, it := range items {
		if it == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%q not offered in %v", want, items)
}

func TestReader_Session(t *testing.T) {
	outDir := t.TempDir()
	var out bytes.Buffer
	var copied []string
	clip := viewer.ClipboardFunc(func(_ context.Context, text string) error {
		copied = append(copied, text)
		return nil
	})
	ask := &scripted{answers: []string{
		actionSection, "2. Output",
		actionBack,
		actionGlossary,
		actionSpeak,
		actionSpeak,
		actionShare,
		actionExport, "md",
		actionRelated, "Chloroplasts",
		actionClose,
	}}

	r := newReader(&out, ask, clip, outDir)
	r.open(viewer.Options{BaseURL: "https://wiki.example.com/view"}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer r.v.Close()
	require.NoError(t, r.v.OnDocumentChanged(sampleDoc("Cells"), ""))
	require.NoError(t, r.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Cells\n=====")
	assert.Contains(t, text, "v 1. Energy")
	assert.Contains(t, text, "v 2. Output")
	assert.Contains(t, text, "[Mitochondria] produce ATP.")
	assert.Contains(t, text, "mitochondria: The powerhouse of the cell")
	assert.Equal(t, 1, strings.Count(text, "Read aloud is not available"), "missing speech warns once")
	assert.Contains(t, text, "Related topic selected: Chloroplasts")

	require.Len(t, copied, 1)
	assert.True(t, strings.HasPrefix(copied[0], "https://wiki.example.com/view?share="))
	assert.True(t, strings.HasSuffix(copied[0], "#section-0"), "back returned to the first section")

	_, err := os.Stat(filepath.Join(outDir, "cells.md"))
	assert.NoError(t, err)

	assert.True(t, r.closed)
	assert.Nil(t, r.v.Document())
	assert.Empty(t, ask.answers)
}

func TestReader_ClipboardFailurePrintsLink(t *testing.T) {
	var out bytes.Buffer
	clip := viewer.ClipboardFunc(func(context.Context, string) error { return errors.New("denied") })
	ask := &scripted{answers: []string{actionShare}}

	r := newReader(&out, ask, clip, t.TempDir())
	r.open(viewer.Options{BaseURL: "https://wiki.example.com/view"}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer r.v.Close()
	require.NoError(t, r.v.OnDocumentChanged(sampleDoc("Cells"), navigator.Fragment(1)))
	require.NoError(t, r.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Could not copy the link.")
	assert.Contains(t, text, "https://wiki.example.com/view?share=")
	assert.Contains(t, text, "v 2. Output", "deep link prints the linked section first")
}

func TestWriteSection_Collapsed(t *testing.T) {
	var out bytes.Buffer
	doc := sampleDoc("Cells")
	writeSection(&out, doc, 0, glossary.Map{}, navigator.State{Collapsed: []int{0}})
	assert.Equal(t, "\n> 1. Energy\n", out.String())
}
