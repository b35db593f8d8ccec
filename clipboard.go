package sopdoc

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard abstracts the platform clipboard. WriteRich writes a
// multi-representation payload (text/plain + text/html); WritePlain writes
// only the plain-text entry.
type Clipboard interface {
	WriteRich(plain, rich string) error
	WritePlain(plain string) error
}

// CopyOutcome reports which representation actually reached the clipboard,
// so the caller can phrase the user notice: "copied" versus "rich copy
// failed, plain text copied".
type CopyOutcome struct {
	Rich bool
}

// copyRenders writes the current renders to the clipboard, falling back to
// plain text when the rich write is unsupported or denied. A failure of the
// fallback itself is the only error surfaced.
func copyRenders(cb Clipboard, plain, rich string) (CopyOutcome, error) {
	if err := cb.WriteRich(plain, rich); err == nil {
		return CopyOutcome{Rich: true}, nil
	}
	if err := cb.WritePlain(plain); err != nil {
		return CopyOutcome{}, err
	}
	return CopyOutcome{Rich: false}, nil
}

// Compile-time interface check.
var _ Clipboard = systemClipboard{}

// systemClipboard writes through the OS clipboard utilities. The platform
// layer carries a single text buffer, so the rich representation degrades to
// the plain-text fallback path.
type systemClipboard struct{}

func (systemClipboard) WriteRich(plain, rich string) error {
	return fmt.Errorf("%w: platform clipboard has no text/html entry", ErrRichClipboard)
}

func (systemClipboard) WritePlain(plain string) error {
	if err := clipboard.WriteAll(plain); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardWrite, err)
	}
	return nil
}
