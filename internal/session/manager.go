package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/tinywiki/internal/speech"
	"github.com/dgallion1/tinywiki/internal/viewer"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// Config controls session lifetime and the viewers sessions get.
type Config struct {
	TTL             time.Duration
	MaxSessions     int
	CleanupInterval time.Duration
	Viewer          viewer.Options
	// Engine returns a speech engine for a new session. Nil, or a nil result,
	// leaves read-aloud unavailable.
	Engine func() speech.Engine
}

// Manager creates sessions and evicts idle ones in the background.
type Manager struct {
	store *Store
	cfg   Config
	log   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(cfg Config, log *slog.Logger) *Manager {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return &Manager{
		store: NewStore(cfg.TTL, cfg.MaxSessions),
		cfg:   cfg,
		log:   log,
	}
}

// Start launches the cleanup loop.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
}

// Stop ends the cleanup loop and closes every session.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	for _, s := range m.store.Drain() {
		s.Viewer.Close()
	}
}

// Cleanup evicts expired sessions now, closing their viewers.
func (m *Manager) Cleanup() int {
	expired := m.store.Cleanup()
	for _, s := range expired {
		s.Viewer.Close()
		m.log.Info("session expired", "session_id", s.ID)
	}
	return len(expired)
}

// Create opens a session viewing doc, deep-linked to fragment.
func (m *Manager) Create(doc *wiki.Document, fragment string) (*Session, error) {
	s := newSession()
	var engine speech.Engine
	if m.cfg.Engine != nil {
		engine = m.cfg.Engine()
	}
	s.Viewer = viewer.New(m.cfg.Viewer, s, s, engine, &s.inbox, m.log.With("session_id", s.ID))

	if err := s.Viewer.OnDocumentChanged(doc, fragment); err != nil {
		s.Viewer.Close()
		return nil, err
	}
	if err := m.store.Put(s); err != nil {
		// Make room from idle sessions before giving up.
		if m.Cleanup() == 0 {
			s.Viewer.Close()
			return nil, fmt.Errorf("create session: %w", err)
		}
		if err := m.store.Put(s); err != nil {
			s.Viewer.Close()
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
	m.log.Info("session created", "session_id", s.ID, "title", doc.Title)
	return s, nil
}

// Get returns a live session and marks it used.
func (m *Manager) Get(id string) (*Session, bool) {
	s := m.store.Get(id)
	if s == nil {
		return nil, false
	}
	s.Touch()
	return s, true
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) bool {
	s := m.store.Remove(id)
	if s == nil {
		return false
	}
	s.Viewer.Close()
	m.log.Info("session closed", "session_id", id)
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.store.Len()
}
