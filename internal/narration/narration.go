// Package narration turns a section into the utterances read aloud.
package narration

import (
	"strings"

	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// Config controls how spoken text is split into utterances.
type Config struct {
	SegmentWords int // Target words per utterance.
}

// DefaultConfig returns sensible defaults. Speech engines tend to stall or
// cut off on very long utterances, so segments stay short.
func DefaultConfig() Config {
	return Config{SegmentWords: 60}
}

// Script returns the utterances that read a section aloud: heading, content
// without emphasis delimiters, then key points.
func Script(sec wiki.Section, cfg Config) []string {
	if cfg.SegmentWords <= 0 {
		cfg.SegmentWords = DefaultConfig().SegmentWords
	}

	var paragraphs []string
	if h := strings.TrimSpace(sec.Heading); h != "" {
		paragraphs = append(paragraphs, terminate(h))
	}
	paragraphs = append(paragraphs, splitByParagraphs(markup.Strip(sec.Content))...)
	if len(sec.KeyPoints) > 0 {
		var kp strings.Builder
		kp.WriteString("Key points.")
		for _, p := range sec.KeyPoints {
			p = strings.TrimSpace(markup.Strip(p))
			if p == "" {
				continue
			}
			kp.WriteString(" ")
			kp.WriteString(terminate(p))
		}
		paragraphs = append(paragraphs, kp.String())
	}

	var segments []string
	for _, para := range paragraphs {
		if CountWords(para) > cfg.SegmentWords {
			segments = append(segments, splitBySentences(para, cfg.SegmentWords)...)
			continue
		}
		segments = append(segments, para)
	}
	return segments
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// splitByParagraphs splits on blank lines and joins wrapped lines.
func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences packs sentences into segments of about targetWords. A
// single sentence longer than the target is split on word boundaries.
func splitBySentences(text string, targetWords int) []string {
	var result []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			result = append(result, strings.Join(current, " "))
			current = current[:0]
		}
	}

	for _, sent := range splitSentences(text) {
		words := strings.Fields(sent)
		if len(current)+len(words) > targetWords {
			flush()
		}
		for len(words) > targetWords {
			result = append(result, strings.Join(words[:targetWords], " "))
			words = words[targetWords:]
		}
		current = append(current, words...)
	}
	flush()
	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func terminate(s string) string {
	switch s[len(s)-1] {
	case '.', '!', '?', ':':
		return s
	}
	return s + "."
}
