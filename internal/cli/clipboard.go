package cli

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
)

var errNoClipboard = errors.New("no clipboard command found")

// systemClipboard writes through the platform clipboard. On Unix that needs
// one of xclip, xsel, wl-copy or termux-clipboard-set on PATH.
type systemClipboard struct {
	unsupported bool
	write       func(string) error
}

func newSystemClipboard() systemClipboard {
	return systemClipboard{unsupported: clipboard.Unsupported, write: clipboard.WriteAll}
}

func (c systemClipboard) WriteText(ctx context.Context, text string) error {
	if c.unsupported {
		return errNoClipboard
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.write(text)
}
