// Package markup splits generated prose into plain text and emphasized glossary
// terms. The only convention understood is a doubled asterisk around a run of
// text; nesting is not supported and malformed input renders literally.
package markup

import "strings"

// Delimiter opens and closes an emphasized run.
const Delimiter = "**"

// Span is one emphasized run located in a content string.
type Span struct {
	Start int    // Byte offset of the opening delimiter
	End   int    // Byte offset just past the closing delimiter
	Inner string // Text between the delimiters, untrimmed
}

// Term returns the trimmed inner text.
func (s Span) Term() string {
	return strings.TrimSpace(s.Inner)
}

// Spans returns the emphasized runs of content in order. A run extends from
// one delimiter to the next. Runs with blank inner text are skipped so they
// render literally, and an opener without a closer ends the scan.
func Spans(content string) []Span {
	var spans []Span
	i := 0
	for i < len(content) {
		open := strings.Index(content[i:], Delimiter)
		if open < 0 {
			break
		}
		open += i
		innerStart := open + len(Delimiter)
		closing := strings.Index(content[innerStart:], Delimiter)
		if closing < 0 {
			break
		}
		closing += innerStart
		end := closing + len(Delimiter)
		inner := content[innerStart:closing]
		if strings.TrimSpace(inner) != "" {
			spans = append(spans, Span{Start: open, End: end, Inner: inner})
		}
		i = end
	}
	return spans
}

// Strip removes every delimiter, leaving the emphasized words in place.
func Strip(content string) string {
	return strings.ReplaceAll(content, Delimiter, "")
}

// Rewrite rebuilds content by passing plain runs through text and emphasized
// terms through term. Either function may be nil to keep that part unchanged
// (terms are then written without delimiters).
func Rewrite(content string, text, term func(string) string) string {
	if text == nil {
		text = identity
	}
	if term == nil {
		term = identity
	}
	var sb strings.Builder
	for f := range Format(content, nil) {
		switch f.Kind {
		case KindTerm:
			sb.WriteString(term(f.Text))
		default:
			sb.WriteString(text(f.Text))
		}
	}
	return sb.String()
}

func identity(s string) string { return s }
