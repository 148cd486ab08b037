package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors for common SDK error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNotFound indicates the requested attribute or object was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a value was rejected before any network call,
	// for example an assignment whose runtime type mismatches the attribute's
	// declared kind.
	ErrValidation = errors.New("validation failed")

	// ErrDecode indicates a raw server value could not be coerced to its
	// declared enum or composite type. This signals client/server version
	// skew the caller must resolve, not retry.
	ErrDecode = errors.New("decode failed")

	// ErrVersionGated indicates the connected server is below the minimum
	// version required for the requested attribute or operation.
	ErrVersionGated = errors.New("server version too low")

	// ErrTransport indicates a remote call failed for a reason other than
	// version gating. It is propagated unchanged; no automatic retry exists
	// in this core.
	ErrTransport = errors.New("transport failure")

	// ErrImmutable indicates an attempt to reassign an immutable attribute
	// such as an object's identifier.
	ErrImmutable = errors.New("attribute is immutable")
)

// Error kinds categorize errors by their type.
const (
	// KindNotFound represents errors where a resource or attribute was not found.
	KindNotFound = "not_found"

	// KindValidation represents errors related to local input validation.
	KindValidation = "validation"

	// KindDecode represents errors raised while decoding server payloads.
	KindDecode = "decode"

	// KindVersion represents version-gated unavailability.
	KindVersion = "version"

	// KindTransport represents errors related to remote calls.
	KindTransport = "transport"

	// KindInternal represents internal SDK errors.
	KindInternal = "internal"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of
// error.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
//
// Example usage:
//
//	err := &Error{
//		Op:   "Object.Commit",
//		Kind: KindTransport,
//		Err:  ErrTransport,
//	}
type Error struct {
	// Op is the operation that failed (e.g., "Object.Get", "Registry.Decode").
	Op string

	// Kind categorizes the error (e.g., KindDecode, KindValidation).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include object IDs, attribute names, or raw values.
	Context map[string]any
}

// Error implements the error interface, returning a formatted error message
// that includes the operation, kind, and underlying error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("sdk: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("sdk: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("sdk: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Error, allowing comparison based on
// the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	// Check if target is an Error with matching Kind
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	// Delegate to underlying error
	return errors.Is(e.Err, target)
}

// WithContext returns a new Error with the provided context added.
// This is useful for adding debugging information to errors.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewNotFoundError creates a new Error with KindNotFound.
func NewNotFoundError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindNotFound,
		Err:  err,
	}
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindValidation,
		Err:  err,
	}
}

// NewDecodeError creates a new Error with KindDecode.
func NewDecodeError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindDecode,
		Err:  err,
	}
}

// NewVersionError creates a new Error with KindVersion.
func NewVersionError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindVersion,
		Err:  err,
	}
}

// NewTransportError creates a new Error with KindTransport.
func NewTransportError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindTransport,
		Err:  err,
	}
}

// NewInternalError creates a new Error with KindInternal.
func NewInternalError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindInternal,
		Err:  err,
	}
}

// IsVersionGated reports whether err represents version-gated
// unavailability, either as the sentinel or as a KindVersion Error.
func IsVersionGated(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrVersionGated) {
		return true
	}
	var e *Error
	return errors.As(err, &e) && e.Kind == KindVersion
}
