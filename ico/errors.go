package ico

import (
	"errors"
	"fmt"
)

// The two error kinds this package produces.  Everything returned from a
// decode or read path wraps ErrFormat: the input bytes violated the ICO/CUR
// or BMP/PNG structure, and the caller can test for it with errors.Is.
// ErrUsage marks caller contract violations on the encode/write paths (for
// example, asking to write a directory with more than 65535 entries).
// Misuse that can never be triggered by untrusted input (building a raster
// with a mismatched buffer, appending an entry of the wrong resource type)
// panics instead of returning an error.
var (
	ErrFormat = errors.New("ico: malformed data")
	ErrUsage  = errors.New("ico: invalid usage")
)

// invalidDataf wraps ErrFormat with a formatted detail message.
func invalidDataf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, a...))
}

// invalidInputf wraps ErrUsage with a formatted detail message.
func invalidInputf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, a...))
}
