// Package apperrors provides a wrapped-error type with status-code and
// message-chaining support, used throughout the engine instead of bare
// errors so that every failure carries both a stable identity (for
// errors.Is/As) and an HTTP-equivalent status code for collaborators that
// need one (see spec §7).
package apperrors

// Error is implemented by every error value produced by the engine. It
// wraps the standard error interface and adds chaining helpers so callers
// can derive new, more specific errors from a shared root while keeping
// errors.Is/As working against the root.
type Error interface {
	error

	// ErrorAll returns the full message including wrapped errors when
	// expansion is enabled; otherwise behaves like Error().
	ErrorAll() string

	// Unwrap returns the base error for errors.Is/errors.As.
	Unwrap() error

	// UnwrapAll returns every wrapped error in insertion order.
	UnwrapAll() []error

	// Msg derives a new error with a different message, preserving status
	// code and chaining back to the receiver as the base error.
	Msg(msg string) Error

	// New derives a fresh error using the receiver as a template: the new
	// error starts with a new message but keeps the receiver's status code.
	New(msg string) Error

	// MsgErr derives a new error with a new message and additional wrapped
	// errors.
	MsgErr(msg string, errs ...error) Error

	// Err derives a new error that attaches additional wrapped errors
	// while keeping the receiver's message.
	Err(errs ...error) Error

	// Prefix returns a copy with a message prefix.
	Prefix(p string) Error

	// Suffix returns a copy with a message suffix.
	Suffix(s string) Error

	// SetExpandError toggles whether ErrorAll includes wrapped errors.
	SetExpandError(flag bool) Error

	// SetStatusCode returns a copy carrying a different status code.
	SetStatusCode(code int) Error

	// StatusCode returns the current status code.
	StatusCode() int
}

// New creates a root-level error with the given message and no status code.
func New(msg string) Error {
	return newAppError(msg)
}
