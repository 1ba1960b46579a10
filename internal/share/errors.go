package share

import (
	"errors"
	"fmt"
)

// CorruptedLinkError reports a share value that could not be turned into a
// valid Document.
type CorruptedLinkError struct {
	Reason string
	Err    error
}

func (e *CorruptedLinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupted share link: %s: %v", e.Reason, e.Err)
	}
	return "corrupted share link: " + e.Reason
}

func (e *CorruptedLinkError) Unwrap() error { return e.Err }

// PayloadTooLargeError reports a share URL longer than the configured limit.
type PayloadTooLargeError struct {
	Size  int
	Limit int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("share link is %d bytes, limit is %d", e.Size, e.Limit)
}

// IsCorrupted reports whether err is a *CorruptedLinkError.
func IsCorrupted(err error) bool {
	var c *CorruptedLinkError
	return errors.As(err, &c)
}

// IsTooLarge reports whether err is a *PayloadTooLargeError.
func IsTooLarge(err error) bool {
	var p *PayloadTooLargeError
	return errors.As(err, &p)
}
