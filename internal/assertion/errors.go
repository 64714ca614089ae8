package assertion

import (
	"github.com/funaisokenhd/passbolt-browser-extension/internal/i18n"
)

// FormatError reports an input of the wrong shape, kind, or state: unparsable
// armored text, a session-key string that misses the grammar, or an object
// that is not the expected kind of cryptographic material. The message is a
// single stable, localized template; the library's raw error, when there is
// one, is kept as the wrapped cause.
type FormatError struct {
	msg   string
	cause error
}

func (e *FormatError) Error() string {
	return e.msg
}

func (e *FormatError) Unwrap() error {
	return e.cause
}

func newFormatError(msg string) *FormatError {
	return &FormatError{msg: msg}
}

func wrapFormatError(msg string, cause error) *FormatError {
	return &FormatError{msg: msg, cause: cause}
}

// localize produces user-facing error text. Swappable so callers can plug in
// their own localization collaborator; the default resolves through the i18n
// package and falls back to the English template.
var localize i18n.Localizer = i18n.T

// SetLocalizer replaces the localization collaborator used for error
// messages. Passing nil restores the default.
func SetLocalizer(l i18n.Localizer) {
	if l == nil {
		localize = i18n.T
		return
	}
	localize = l
}
