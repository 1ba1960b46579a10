package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Level is the severity of a Notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is transient, non-blocking feedback for the reader.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier shows notices to the reader.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Inbox collects notices until they are drained. Hosts that poll (such as the
// HTTP API) use it as their Notifier.
type Inbox struct {
	mu      sync.Mutex
	notices []Notice
}

func (b *Inbox) Notify(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
}

// Drain returns and clears the pending notices.
func (b *Inbox) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

// Clipboard writes text to the reader's clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(ctx context.Context, text string) error

func (f ClipboardFunc) WriteText(ctx context.Context, text string) error { return f(ctx, text) }

// ClipboardError reports a failed clipboard write.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("clipboard write failed: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error { return e.Err }

// IsClipboardError reports whether err is a *ClipboardError.
func IsClipboardError(err error) bool {
	var c *ClipboardError
	return errors.As(err, &c)
}

// Messages shown to the reader.
const (
	msgSpeechUnavailable = "Read aloud is not available on this system."
	msgSpeechFailed      = "Read aloud stopped unexpectedly."
	msgShareTooLarge     = "This wiki is too large to share as a link. Export or print it instead."
	msgShareCorrupted    = "This share link is corrupted or incomplete."
	msgShareFailed       = "Could not create a share link."
	msgLinkCopied        = "Link copied to clipboard."
	msgCopyFailed        = "Could not copy the link."
	msgExportFailed      = "Export failed."
)
