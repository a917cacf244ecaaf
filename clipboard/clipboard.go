// Package clipboard copies text from the terminal viewer to the system
// clipboard, falling back to the OSC 52 terminal escape when no clipboard
// utility is available (for example over SSH).
package clipboard

import (
	"errors"
	"io"

	nucleus "github.com/HariCharanK/Nucleus"
	atotto "github.com/atotto/clipboard"
	"github.com/muesli/termenv"
)

// Compile-time interface verification.
var (
	_ nucleus.Clipboard = (*System)(nil)
	_ nucleus.Clipboard = (*OSC52)(nil)
)

// ErrUnsupported is returned by System when no clipboard utility is installed.
var ErrUnsupported = errors.New("no system clipboard available")

// System writes to the OS clipboard (pbcopy, xclip, xsel, wl-copy or the
// Windows API).
type System struct{}

// NewSystem returns a System clipboard.
func NewSystem() *System {
	return &System{}
}

// Copy writes content to the system clipboard.
func (s *System) Copy(content string) error {
	if atotto.Unsupported {
		return ErrUnsupported
	}
	return atotto.WriteAll(content)
}

// OSC52 asks the terminal to set its clipboard by writing an OSC 52 escape
// sequence to w.
type OSC52 struct {
	out *termenv.Output
}

// NewOSC52 returns an OSC52 clipboard writing to w.
func NewOSC52(w io.Writer) *OSC52 {
	return &OSC52{out: termenv.NewOutput(w)}
}

// Copy emits the escape sequence. Terminals that do not support OSC 52
// ignore it, so there is no error to report.
func (o *OSC52) Copy(content string) error {
	o.out.Copy(content)
	return nil
}

// New returns the system clipboard when one is available and an OSC52
// clipboard writing to w otherwise.
func New(w io.Writer) nucleus.Clipboard {
	if atotto.Unsupported {
		return NewOSC52(w)
	}
	return NewSystem()
}
