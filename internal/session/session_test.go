package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/tinywiki/internal/speech"
	"github.com/dgallion1/tinywiki/internal/viewer"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDoc() *wiki.Document {
	return &wiki.Document{
		Title: "Tides",
		Sections: []wiki.Section{
			{Heading: "Moon", Content: "The **moon** pulls the oceans."},
			{Heading: "Sun", Content: "The sun helps."},
		},
		RelatedTopics: []string{"Gravity"},
	}
}

type countingEngine struct{ cancels int }

func (e *countingEngine) Speak(string, func(error)) error { return nil }
func (e *countingEngine) Pause() error { return nil }
func (e *countingEngine) Resume() error { return nil }
func (e *countingEngine) Cancel() { e.cancels++ }

func TestStore_CleanupExpired(t *testing.T) {
	st := NewStore(10*time.Millisecond, 0)
	old, fresh := newSession(), newSession()
	require.NoError(t, st.Put(old))
	require.NoError(t, st.Put(fresh))

	time.Sleep(20 * time.Millisecond)
	fresh.Touch()

	expired := st.Cleanup()
	require.Len(t, expired, 1)
	assert.Equal(t, old.ID, expired[0].ID)
	assert.Nil(t, st.Get(old.ID))
	assert.NotNil(t, st.Get(fresh.ID))
}

func TestStore_MaxSessions(t *testing.T) {
	st := NewStore(time.Hour, 1)
	require.NoError(t, st.Put(newSession()))
	assert.ErrorIs(t, st.Put(newSession()), ErrTooManySessions)
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(Config{TTL: time.Hour, MaxSessions: 10}, testLogger())
	m.Start(context.Background())
	defer m.Stop()

	s, err := m.Create(testDoc(), "#section-1")
	require.NoError(t, err)
	assert.Len(t, s.ID, 36)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	snap := got.Snapshot()
	assert.Equal(t, "Tides", snap.Title)
	assert.Equal(t, 1, snap.Navigation.Active)
	assert.Equal(t, 1, snap.ScrollTo)

	require.NoError(t, got.Viewer.SelectSection(0))
	assert.Equal(t, "section-0", got.Snapshot().Fragment)

	require.NoError(t, got.Viewer.SelectRelatedTopic("Gravity"))
	assert.Equal(t, "Gravity", got.Snapshot().RelatedTopic)

	assert.True(t, m.Delete(s.ID))
	assert.False(t, m.Delete(s.ID))
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
}

func TestManager_NoticesDrain(t *testing.T) {
	m := NewManager(Config{TTL: time.Hour}, testLogger())
	s, err := m.Create(testDoc(), "")
	require.NoError(t, err)

	_, err = s.Viewer.ToggleSpeech(0)
	require.NoError(t, err)

	first := s.Snapshot()
	require.Len(t, first.Notices, 1)
	assert.Equal(t, viewer.LevelWarning, first.Notices[0].Level)
	assert.Empty(t, s.Snapshot().Notices)
}

func TestManager_RejectsInvalidDocument(t *testing.T) {
	m := NewManager(Config{TTL: time.Hour}, testLogger())
	_, err := m.Create(&wiki.Document{}, "")
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestManager_EvictsIdleWhenFull(t *testing.T) {
	m := NewManager(Config{TTL: 10 * time.Millisecond, MaxSessions: 1}, testLogger())

	_, err := m.Create(testDoc(), "")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	_, err = m.Create(testDoc(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestManager_FullWithLiveSessions(t *testing.T) {
	m := NewManager(Config{TTL: time.Hour, MaxSessions: 1}, testLogger())
	_, err := m.Create(testDoc(), "")
	require.NoError(t, err)

	_, err = m.Create(testDoc(), "")
	assert.True(t, errors.Is(err, ErrTooManySessions))
}

func TestManager_StopCancelsSpeech(t *testing.T) {
	engine := &countingEngine{}
	m := NewManager(Config{
		TTL:    time.Hour,
		Engine: func() speech.Engine { return engine },
	}, testLogger())
	m.Start(context.Background())

	s, err := m.Create(testDoc(), "")
	require.NoError(t, err)
	_, err = s.Viewer.ToggleSpeech(0)
	require.NoError(t, err)
	before := engine.cancels

	m.Stop()
	assert.Greater(t, engine.cancels, before)
	assert.Equal(t, speech.Stopped, s.Viewer.Snapshot().Speech)
	assert.Equal(t, 0, m.Len())
}
