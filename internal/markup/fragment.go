package markup

import "iter"

// Kind distinguishes plain text from glossary terms.
type Kind int

const (
	KindText Kind = iota
	KindTerm
)

func (k Kind) String() string {
	if k == KindTerm {
		return "term"
	}
	return "text"
}

// Fragment is one renderable piece of a content string.
type Fragment struct {
	Kind       Kind
	Text       string
	Definition string // Set for terms found in the glossary (may be empty)
	Defined    bool   // Whether the term has a glossary entry
}

// Glossary resolves a term to its definition, ignoring case.
type Glossary interface {
	Lookup(term string) (definition string, ok bool)
}

// Format lazily splits content into plain and term fragments. Terms are
// resolved against g when it is non-nil. It never fails: unmatched delimiters
// come through as part of a plain fragment.
func Format(content string, g Glossary) iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		pos := 0
		for _, sp := range Spans(content) {
			if sp.Start > pos {
				if !yield(Fragment{Kind: KindText, Text: content[pos:sp.Start]}) {
					return
				}
			}
			f := Fragment{Kind: KindTerm, Text: sp.Term()}
			if g != nil {
				f.Definition, f.Defined = g.Lookup(f.Text)
			}
			if !yield(f) {
				return
			}
			pos = sp.End
		}
		if pos < len(content) {
			yield(Fragment{Kind: KindText, Text: content[pos:]})
		}
	}
}
