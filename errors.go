package polars

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Error kinds returned by the list kernels and the apply machinery.
// Callers match them with errors.Is; messages carry the offending
// operation and, where useful, expected vs. actual type or shape.
var (
	// ErrInvalidLayout indicates malformed offsets or a values buffer
	// whose length disagrees with the final offset.
	ErrInvalidLayout = errors.New("invalid layout")

	// ErrTypeMismatch indicates an element type unsuitable for the
	// requested kernel, or an unexpected container shape.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrIndexOutOfBounds indicates an index beyond sublist bounds
	// when the out-of-bounds policy demands failure.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrTypeCoercion indicates a produced value that cannot be
	// represented in an explicitly requested return dtype.
	ErrTypeCoercion = errors.New("type coercion failed")
)

func invalidLayoutf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidLayout)...)
}

func typeMismatchf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrTypeMismatch)...)
}

func indexOOBf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrIndexOutOfBounds)...)
}

func coercionErrf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrTypeCoercion)...)
}

// ============================================================================
// Warning Channel
// ============================================================================

// WarningHandler receives non-fatal diagnostic messages, currently
// only the inefficient-apply advisory. Warnings never alter results.
type WarningHandler func(msg string)

var (
	warnMu      sync.RWMutex
	warnHandler WarningHandler = func(msg string) {
		fmt.Fprintln(os.Stderr, "polars warning: "+msg)
	}
)

// SetWarningHandler replaces the global warning handler. Passing nil
// silences warnings entirely.
func SetWarningHandler(h WarningHandler) {
	warnMu.Lock()
	defer warnMu.Unlock()
	if h == nil {
		h = func(string) {}
	}
	warnHandler = h
}

func emitWarning(msg string) {
	warnMu.RLock()
	h := warnHandler
	warnMu.RUnlock()
	h(msg)
}
