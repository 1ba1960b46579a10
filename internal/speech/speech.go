// Package speech owns the speech-synthesis engine and enforces that at most
// one section is being read aloud at a time.
package speech

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrUnavailable means the host has no speech engine. Callers treat it as
	// a capability signal, not a failure.
	ErrUnavailable = errors.New("speech synthesis unavailable")
	// ErrClosed is returned after the controller has been torn down.
	ErrClosed = errors.New("speech controller closed")
)

// Status is the playback status of the active section.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
)

// State is the controller state. Active is -1 whenever Status is stopped.
type State struct {
	Active int    `json:"activeIndex"`
	Status Status `json:"status"`
}

// Stopped is the idle state.
var Stopped = State{Active: -1, Status: StatusStopped}

// Engine is a speech-synthesis capability.
//
// Speak starts an utterance and returns immediately; done is called exactly
// once when the utterance ends, fails, or is cancelled. Implementations must
// call done from their own goroutine, never from inside Speak or Cancel.
type Engine interface {
	Speak(text string, done func(err error)) error
	Pause() error
	Resume() error
	Cancel()
}

// Controller is a play/pause/resume/stop state machine over one Engine.
type Controller struct {
	mu      sync.Mutex
	engine  Engine
	log     *slog.Logger
	state   State
	gen     uint64 // Bumped whenever the current utterance is abandoned
	script  []string
	segment int
	closed  bool
}

// NewController wraps engine. A nil engine yields a controller whose requests
// report ErrUnavailable.
func NewController(engine Engine, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{engine: engine, log: log, state: Stopped}
}

// Available reports whether an engine is present.
func (c *Controller) Available() bool {
	return c.engine != nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Request toggles playback of section index. Requesting the section that is
// playing pauses it, requesting a paused section resumes it, and any other
// request cancels whatever is in flight and starts reading script.
func (c *Controller) Request(index int, script []string) (State, error) {
	if c.engine == nil {
		return Stopped, ErrUnavailable
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state, ErrClosed
	}

	if c.state.Active == index {
		switch c.state.Status {
		case StatusPlaying:
			if err := c.engine.Pause(); err != nil {
				c.log.Warn("pause failed, stopping", "section", index, "error", err)
				c.stopLocked()
				return c.state, fmt.Errorf("pause: %w", err)
			}
			c.state.Status = StatusPaused
			return c.state, nil
		case StatusPaused:
			if err := c.engine.Resume(); err != nil {
				c.log.Warn("resume failed, stopping", "section", index, "error", err)
				c.stopLocked()
				return c.state, fmt.Errorf("resume: %w", err)
			}
			c.state.Status = StatusPlaying
			return c.state, nil
		}
	}

	c.stopLocked()
	if len(script) == 0 {
		return c.state, nil
	}
	c.script = script
	c.segment = 0
	c.state = State{Active: index, Status: StatusPlaying}
	if err := c.speakLocked(); err != nil {
		c.stopLocked()
		return c.state, err
	}
	return c.state, nil
}

// Stop cancels any utterance and returns to the stopped state.
func (c *Controller) Stop() {
	if c.engine == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Close stops playback and rejects further requests.
func (c *Controller) Close() {
	if c.engine == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.closed = true
}

// stopLocked cancels the engine unconditionally so nothing from a previous
// owner keeps speaking, and invalidates pending callbacks.
func (c *Controller) stopLocked() {
	c.engine.Cancel()
	c.gen++
	c.script = nil
	c.segment = 0
	c.state = Stopped
}

func (c *Controller) speakLocked() error {
	gen, segment := c.gen, c.segment
	err := c.engine.Speak(c.script[segment], func(err error) {
		c.finished(gen, segment, err)
	})
	if err != nil {
		return fmt.Errorf("speak section %d: %w", c.state.Active, err)
	}
	return nil
}

// finished handles the end of one utterance. Callbacks for abandoned
// utterances are ignored.
func (c *Controller) finished(gen uint64, segment int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || segment != c.segment || c.state.Status == StatusStopped {
		return
	}
	if err != nil {
		c.log.Warn("utterance failed", "section", c.state.Active, "segment", segment, "error", err)
		c.gen++
		c.script = nil
		c.state = Stopped
		return
	}
	if c.segment+1 < len(c.script) {
		c.segment++
		if err := c.speakLocked(); err != nil {
			c.log.Warn("next utterance failed", "error", err)
			c.stopLocked()
		}
		return
	}
	c.gen++
	c.script = nil
	c.state = Stopped
}
