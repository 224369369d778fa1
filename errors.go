package options

import (
	"errors"
	"fmt"
)

// ErrNotPointerToStruct indicates that a provided target is not a pointer
// to a struct. Only pointers to structs can own option registries or be
// parsed into.
var ErrNotPointerToStruct = errors.New("target must be a pointer to struct")

// ErrNilTarget indicates that a nil target was passed where an object
// instance was required.
var ErrNilTarget = errors.New("target cannot be nil")

// ConfigurationError reports a misuse of the declarative API itself: a bad
// option name, conflicting value/type settings, a metavar given for a flag
// that takes no argument, or a declaration against a field that does not
// exist. These are programming defects, so declaration calls panic with
// this type rather than returning it.
type ConfigurationError struct {
	Message string
}

// Error returns the error's message.
func (e *ConfigurationError) Error() string {
	return e.Message
}

func newConfErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// InvocationError reports a problem with the actual command-line arguments
// being parsed: an unknown option, a value that fails conversion or
// validation, an option repeated when it may only appear once, or an error
// raised by a handler. It is the only error kind that callers of Parse are
// expected to catch and present to the end user.
type InvocationError struct {
	Message string
}

// Error returns the error's message.
func (e *InvocationError) Error() string {
	return e.Message
}

func newInvocationErrorf(format string, args ...any) *InvocationError {
	return &InvocationError{Message: fmt.Sprintf(format, args...)}
}

// ExitError requests process termination with the carried status. The
// framework never produces it on its own: it is returned unchanged from
// Parse when a handler uses it to stop the program deliberately, the usual
// case being a --version handler. Callers forward the status to os.Exit.
type ExitError struct {
	Status int
}

// Error returns a printable form of the exit request.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Status)
}

// wrapInvocation turns an arbitrary parse-time error into an
// InvocationError, leaving already-typed errors untouched.
func wrapInvocation(err error) error {
	var inv *InvocationError
	if errors.As(err, &inv) {
		return inv
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		return exit
	}

	return &InvocationError{Message: err.Error()}
}
