package glossary

import (
	"sync"

	"github.com/dgallion1/tinywiki/internal/wiki"
)

// Memo caches the glossary of the most recent document. Extraction runs again
// only when a different *wiki.Document is passed in.
type Memo struct {
	mu   sync.Mutex
	doc  *wiki.Document
	m    Map
	runs int
}

// Get returns the glossary for doc, extracting it if doc is not the cached one.
func (c *Memo) Get(doc *wiki.Document) Map {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runs > 0 && c.doc == doc {
		return c.m
	}
	var sections []wiki.Section
	if doc != nil {
		sections = doc.Sections
	}
	c.doc = doc
	c.m = Extract(sections)
	c.runs++
	return c.m
}

// Runs returns how many extractions the memo has performed.
func (c *Memo) Runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}
