// Package faults defines the error taxonomy shared by the acquisition
// pipeline. Every terminal failure carries a Kind so callers can decide
// between retrying, surfacing, and user-input messaging without string
// matching.
package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindUnknown is the zero value for errors that did not originate here.
	KindUnknown Kind = iota

	// KindInvalidImage indicates captcha image bytes that could not be decoded.
	KindInvalidImage

	// KindInvalidQuery indicates a search query that failed structural
	// validation before any network call.
	KindInvalidQuery

	// KindUnknownCourt indicates a jurisdiction selector absent from the
	// static bench table.
	KindUnknownCourt

	// KindTransient covers network failures, timeouts of individual calls,
	// 5xx responses and malformed payloads. Retryable.
	KindTransient

	// KindTimeout indicates the per-run wall-clock ceiling was exceeded.
	KindTimeout

	// KindExhaustedRetries indicates a transient failure persisted through
	// the configured retry budget.
	KindExhaustedRetries

	// KindCaptchaExhausted indicates the portal rejected every captcha
	// guess within the attempt bound.
	KindCaptchaExhausted

	// KindParseFailure indicates the result payload could not be turned
	// into a case record.
	KindParseFailure

	// KindNotFound indicates the portal affirmatively reported no such
	// case. A valid terminal outcome, not retried.
	KindNotFound
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindInvalidImage:     "invalid_image",
	KindInvalidQuery:     "invalid_query",
	KindUnknownCourt:     "unknown_court",
	KindTransient:        "transient",
	KindTimeout:          "timeout",
	KindExhaustedRetries: "exhausted_retries",
	KindCaptchaExhausted: "captcha_exhausted",
	KindParseFailure:     "parse_failure",
	KindNotFound:         "not_found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Retryable reports whether the retry policy may re-attempt this kind.
// Only transient failures qualify; everything else is deterministic given
// the same input.
func (k Kind) Retryable() bool {
	return k == KindTransient
}

// Error is a classified pipeline error.
type Error struct {
	Kind Kind
	Msg  string

	// Attempts is the number of attempts made before giving up.
	// Zero when not applicable.
	Attempts int

	// PayloadRef identifies a preserved raw payload for diagnostics.
	// Set for parse failures only.
	PayloadRef string

	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. Returns nil if err is nil.
func Wrap(kind Kind, msg string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors
// report KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// AttemptsOf extracts the attempt count from an error chain, or zero.
func AttemptsOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Attempts
	}
	return 0
}
