package intent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/intent/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	// Mutation guards
	CodeSelfSelector            = "self_selector"
	CodeSelectorPackageConflict = "selector_package_conflict"
	// Decoding
	CodeBadMagic           = "bad_magic"
	CodeUnsupportedVersion = "unsupported_version"
	CodeTruncated          = "truncated"
	CodeUnknownType        = "unknown_type"
	CodeInvalidLength      = "invalid_length"
	CodeInvalidFormat      = "invalid_format"
	CodeInvalidEscape      = "invalid_escape"
	CodeMissingEnd         = "missing_end"
	CodeTrailingData       = "trailing_data"
	CodeTooDeep            = "too_deep"
	CodeDuplicateKey       = "duplicate_key"
	CodeUnknownKey         = "unknown_key"
	CodeInvalidState       = "invalid_state"
)

// ErrInvalidState matches every *InvalidStateError via errors.Is.
var ErrInvalidState = errors.New("intent: invalid state")

// ErrDecode matches every *DecodeError via errors.Is.
var ErrDecode = errors.New("intent: decode failed")

// InvalidStateError reports a mutation rejected by a Descriptor invariant. The
// descriptor is left untouched.
type InvalidStateError struct {
	Code    string
	Message string
}

func (e *InvalidStateError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = i18n.T(e.Code, nil)
	}
	return "intent: " + msg
}

// Is reports true for ErrInvalidState.
func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// DecodeError reports a malformed encoded descriptor.
type DecodeError struct {
	Code    string
	Field   string // Field being decoded when known (for example: "selector.action").
	Offset  int64  // Byte offset in the input (-1 when unknown).
	Message string
	Cause   error // Optional: underlying error.
}

func (e *DecodeError) Error() string {
	b := &strings.Builder{}
	b.WriteString("intent: decode: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(i18n.T(e.Code, nil))
	}
	if e.Field != "" {
		fmt.Fprintf(b, " (field %s)", e.Field)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(b, " at offset %d", e.Offset)
	}
	if e.Cause != nil {
		fmt.Fprintf(b, ": %v", e.Cause)
	}
	return b.String()
}

// Is reports true for ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Cause }

// NewDecodeError builds a DecodeError with an unknown field. Codec packages use
// it to keep the error shape uniform.
func NewDecodeError(code string, offset int64, format string, args ...any) *DecodeError {
	return &DecodeError{Code: code, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// AsDecodeError extracts a *DecodeError from an error using errors.As internally.
func AsDecodeError(err error) (*DecodeError, bool) {
	if err == nil {
		return nil, false
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// AsInvalidState extracts an *InvalidStateError from an error.
func AsInvalidState(err error) (*InvalidStateError, bool) {
	if err == nil {
		return nil, false
	}
	var ie *InvalidStateError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
