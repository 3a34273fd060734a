// Package diag defines the transpile-time error domain (§7): the four
// sentinel-comparable categories every pipeline stage reports through, each
// wrapped with pkg/errors-style call-site context the way moby/moby and
// open-policy-agent/opa wrap their own internal errors.
package diag

import "github.com/pkg/errors"

// The four transpile-time error categories (§7). Each is a package-level
// sentinel so callers can match it with errors.Is after a chain of
// errors.Wrap calls has added position context.
var (
	// ErrMalformedInput is a parser failure: the input did not decode as a
	// valid WebAssembly binary.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnsupportedFeature is an IR-builder or parser failure: the module
	// uses an opcode or section outside the implemented subset (§1).
	ErrUnsupportedFeature = errors.New("unsupported feature")
	// ErrInvalidIndex is a defensive failure: an index referenced a
	// declaration outside its index space. Should be unreachable if the
	// parser's own invariants hold; kept because the IR builder and code
	// generator still read the parsed module and a corrupt in-memory Module
	// built by a future alternate parser should fail loudly rather than
	// panic.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrIO is a failure reading the input or writing the output.
	ErrIO = errors.New("i/o failure")
)

// Wrap attaches msg as context to cause while preserving cause's identity
// for errors.Is(err, ErrMalformedInput) and friends.
func Wrap(cause error, msg string) error {
	return errors.Wrap(cause, msg)
}

// Wrapf is Wrap with a format string.
func Wrapf(cause error, format string, args ...interface{}) error {
	return errors.Wrapf(cause, format, args...)
}

// MalformedInput wraps cause as ErrMalformedInput with msg context.
func MalformedInput(msg string) error {
	return errors.Wrap(ErrMalformedInput, msg)
}

// MalformedInputf is MalformedInput with a format string.
func MalformedInputf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedInput, format, args...)
}

// UnsupportedFeaturef wraps ErrUnsupportedFeature with a format string.
func UnsupportedFeaturef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnsupportedFeature, format, args...)
}

// InvalidIndexf wraps ErrInvalidIndex with a format string.
func InvalidIndexf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidIndex, format, args...)
}

// IOf wraps ErrIO with a format string.
func IOf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrIO, format, args...)
}
