//go:build unix

package speech

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandEngine_Lifecycle(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	e, err := NewCommandEngine("sleep")
	require.NoError(t, err)

	done := make(chan error, 1)
	require.NoError(t, e.Speak("30", func(err error) { done <- err }))
	require.NoError(t, e.Pause())
	require.NoError(t, e.Resume())
	e.Cancel()

	select {
	case err := <-done:
		assert.Error(t, err, "killed process reports an error")
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not end the utterance")
	}
}

func TestCommandEngine_NaturalEnd(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	e, err := NewCommandEngine("true")
	require.NoError(t, err)

	done := make(chan error, 1)
	require.NoError(t, e.Speak("ignored", func(err error) { done <- err }))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("utterance never finished")
	}
	// Nothing running: pause and resume are no-ops.
	assert.NoError(t, e.Pause())
	assert.NoError(t, e.Resume())
}

func TestNewCommandEngine_Missing(t *testing.T) {
	_, err := NewCommandEngine("tinywiki-no-such-tts-binary")
	assert.ErrorIs(t, err, ErrUnavailable)
}
