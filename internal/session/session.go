// Package session keeps one Viewer per API client in memory with TTL eviction.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/tinywiki/internal/viewer"
)

// ErrTooManySessions is returned when the store is full of live sessions.
var ErrTooManySessions = errors.New("too many sessions")

// Session is one reader's viewer plus the host-side state the API reports.
type Session struct {
	ID        string
	CreatedAt time.Time
	Viewer    *viewer.Viewer

	inbox viewer.Inbox

	mu           sync.Mutex
	updatedAt    time.Time
	fragment     string
	scrollTo     int
	relatedTopic string
	resets       int
}

func newSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		updatedAt: now,
		scrollTo:  -1,
	}
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
}

// UpdatedAt returns the last time the session was used.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// ScrollTo and SetFragment record navigator effects for the client to apply.
func (s *Session) ScrollTo(index int, _ bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollTo = index
}

func (s *Session) SetFragment(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragment = fragment
}

// OnReset and OnRelatedTopicSelected record host callbacks.
func (s *Session) OnReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	s.fragment = ""
	s.scrollTo = -1
	s.relatedTopic = ""
}

func (s *Session) OnRelatedTopicSelected(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relatedTopic = topic
}

// Snapshot is the JSON view of a session. Pending notices are drained.
type Snapshot struct {
	ID string `json:"session_id"`
	viewer.Snapshot
	Fragment     string          `json:"fragment,omitempty"`
	ScrollTo     int             `json:"scrollTo"`
	RelatedTopic string          `json:"relatedTopic,omitempty"`
	Resets       int             `json:"resets"`
	Notices      []viewer.Notice `json:"notices"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (s *Session) Snapshot() Snapshot {
	vs := s.Viewer.Snapshot()
	notices := s.inbox.Drain()
	if notices == nil {
		notices = []viewer.Notice{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:           s.ID,
		Snapshot:     vs,
		Fragment:     s.fragment,
		ScrollTo:     s.scrollTo,
		RelatedTopic: s.relatedTopic,
		Resets:       s.resets,
		Notices:      notices,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.updatedAt,
	}
}

// Store is a thread-safe in-memory session registry with TTL eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
}

func NewStore(ttl time.Duration, max int) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      max,
	}
}

// Put adds s unless the store is full.
func (st *Store) Put(s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.max > 0 && len(st.sessions) >= st.max {
		return ErrTooManySessions
	}
	st.sessions[s.ID] = s
	return nil
}

func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// Remove deletes and returns the session with id, or nil.
func (st *Store) Remove(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := st.sessions[id]
	delete(st.sessions, id)
	return s
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Cleanup removes expired sessions and returns them so their viewers can be
// closed outside the store lock.
func (st *Store) Cleanup() []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	var expired []*Session
	now := time.Now()
	for id, s := range st.sessions {
		if now.Sub(s.UpdatedAt()) > st.ttl {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	return expired
}

// Drain removes and returns every session.
func (st *Store) Drain() []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*Session, 0, len(st.sessions))
	for id, s := range st.sessions {
		out = append(out, s)
		delete(st.sessions, id)
	}
	return out
}
