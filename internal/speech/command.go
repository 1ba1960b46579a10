package speech

import (
	"fmt"
	"os/exec"
	"slices"
	"sync"
)

// DefaultCommands are the text-to-speech programs tried by Detect, in order.
var DefaultCommands = []string{"espeak-ng", "espeak", "say", "spd-say"}

// CommandEngine speaks by running an external text-to-speech program with the
// utterance as its last argument.
type CommandEngine struct {
	path string
	args []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewCommandEngine resolves command on PATH.
func NewCommandEngine(command string, args ...string) (*CommandEngine, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, command, err)
	}
	return &CommandEngine{path: path, args: args}, nil
}

// Detect returns an engine for preferred when set, otherwise for the first of
// DefaultCommands found on PATH.
func Detect(preferred string) (*CommandEngine, error) {
	if preferred != "" {
		return NewCommandEngine(preferred)
	}
	for _, c := range DefaultCommands {
		if e, err := NewCommandEngine(c); err == nil {
			return e, nil
		}
	}
	return nil, ErrUnavailable
}

func (e *CommandEngine) Speak(text string, done func(error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmd := exec.Command(e.path, append(slices.Clone(e.args), text)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", e.path, err)
	}
	e.cmd = cmd
	go func() {
		err := cmd.Wait()
		e.mu.Lock()
		if e.cmd == cmd {
			e.cmd = nil
		}
		e.mu.Unlock()
		done(err)
	}()
	return nil
}

func (e *CommandEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd == nil || e.cmd.Process == nil {
		return nil
	}
	return suspend(e.cmd.Process)
}

func (e *CommandEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd == nil || e.cmd.Process == nil {
		return nil
	}
	return resume(e.cmd.Process)
}

func (e *CommandEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd != nil && e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
	e.cmd = nil
}
