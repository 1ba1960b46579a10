// Package navigator tracks where a reader is in a document and how they got there.
package navigator

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ErrNoSuchSection is returned for indices outside the current document.
var ErrNoSuchSection = errors.New("no such section")

const fragmentPrefix = "section-"

// Fragment returns the deep-link fragment (without '#') for section i.
func Fragment(i int) string {
	return fragmentPrefix + strconv.Itoa(i)
}

// ParseFragment extracts a section index from a fragment such as
// "#section-3". It does not check the index against any document.
func ParseFragment(fragment string) (int, bool) {
	fragment = strings.TrimPrefix(fragment, "#")
	rest, ok := strings.CutPrefix(fragment, fragmentPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Effects receives presentation side effects. They are invoked after the
// navigator state change has been committed, never while it is locked.
type Effects interface {
	// ScrollTo brings a section into view. deferred asks the host to wait for
	// layout to settle first.
	ScrollTo(index int, deferred bool)
	// SetFragment replaces the URL fragment without adding platform history.
	SetFragment(fragment string)
}

// NopEffects ignores all side effects.
type NopEffects struct{}

func (NopEffects) ScrollTo(int, bool) {}
func (NopEffects) SetFragment(string) {}

// State is a consistent copy of the navigator state.
type State struct {
	Active     int   `json:"activeSection"` // -1 when there is nothing to navigate
	Collapsed  []int `json:"collapsed"`
	History    []int `json:"history"`
	Cursor     int   `json:"historyCursor"`
	CanBack    bool  `json:"canGoBack"`
	CanForward bool  `json:"canGoForward"`
}

// Navigator tracks the active section, collapsed sections and an in-document
// visit history with browser-style back/forward semantics.
type Navigator struct {
	mu        sync.Mutex
	count     int
	active    int
	collapsed map[int]bool
	history   []int
	cursor    int
	effects   Effects
}

// New creates a navigator for an empty document. Call Reset with the section
// count of each new document.
func New(effects Effects) *Navigator {
	if effects == nil {
		effects = NopEffects{}
	}
	n := &Navigator{effects: effects}
	n.Reset(0)
	return n
}

// Reset returns to the initial state for a document with count sections:
// first section active, nothing collapsed, history holding only that section.
func (n *Navigator) Reset(count int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count = max(count, 0)
	n.collapsed = make(map[int]bool)
	n.cursor = 0
	if n.count == 0 {
		n.active = -1
		n.history = nil
		return
	}
	n.active = 0
	n.history = []int{0}
}

// Select makes section i active, expanding it and recording it in history
// unless it is already the entry under the cursor. Forward entries are
// dropped when a new entry is recorded.
func (n *Navigator) Select(i int) error {
	n.mu.Lock()
	if !n.validLocked(i) {
		n.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoSuchSection, i)
	}
	delete(n.collapsed, i)
	if n.history[n.cursor] != i {
		n.history = append(n.history[:n.cursor+1], i)
		n.cursor = len(n.history) - 1
	}
	n.active = i
	n.mu.Unlock()

	n.reveal(i, false)
	return nil
}

// ToggleCollapse flips the collapsed state of section i. The active section
// does not change.
func (n *Navigator) ToggleCollapse(i int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.validLocked(i) {
		return fmt.Errorf("%w: %d", ErrNoSuchSection, i)
	}
	if n.collapsed[i] {
		delete(n.collapsed, i)
	} else {
		n.collapsed[i] = true
	}
	return nil
}

// Back moves one entry back in history. It reports false at the start.
func (n *Navigator) Back() bool {
	return n.step(-1)
}

// Forward moves one entry forward in history. It reports false at the end.
func (n *Navigator) Forward() bool {
	return n.step(1)
}

func (n *Navigator) step(delta int) bool {
	n.mu.Lock()
	next := n.cursor + delta
	if len(n.history) == 0 || next < 0 || next >= len(n.history) {
		n.mu.Unlock()
		return false
	}
	n.cursor = next
	i := n.history[next]
	n.active = i
	delete(n.collapsed, i)
	n.mu.Unlock()

	n.reveal(i, false)
	return true
}

// LoadDeepLink seeds history from a "section-<n>" fragment. Invalid or
// out-of-range fragments leave the state untouched and report false.
func (n *Navigator) LoadDeepLink(fragment string) bool {
	i, ok := ParseFragment(fragment)
	if !ok {
		return false
	}
	n.mu.Lock()
	if !n.validLocked(i) {
		n.mu.Unlock()
		return false
	}
	n.history = []int{i}
	n.cursor = 0
	n.active = i
	delete(n.collapsed, i)
	n.mu.Unlock()

	n.effects.ScrollTo(i, true)
	return true
}

// Active returns the active section index, or -1.
func (n *Navigator) Active() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// IsCollapsed reports whether section i is collapsed.
func (n *Navigator) IsCollapsed(i int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.collapsed[i]
}

// State returns a copy of the current state.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	collapsed := make([]int, 0, len(n.collapsed))
	for i := range n.collapsed {
		collapsed = append(collapsed, i)
	}
	slices.Sort(collapsed)
	history := slices.Clone(n.history)
	if history == nil {
		history = []int{}
	}
	return State{
		Active:     n.active,
		Collapsed:  collapsed,
		History:    history,
		Cursor:     n.cursor,
		CanBack:    n.cursor > 0,
		CanForward: n.cursor < len(n.history)-1,
	}
}

func (n *Navigator) validLocked(i int) bool {
	return i >= 0 && i < n.count
}

func (n *Navigator) reveal(i int, deferred bool) {
	n.effects.ScrollTo(i, deferred)
	n.effects.SetFragment(Fragment(i))
}
