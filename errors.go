package yomu

import "fmt"

// Kind discriminates the flat error taxonomy raised by this package and
// its internal pipeline stages. There is no hierarchy: every failure path
// in the decode pipeline returns an *Error with one of these kinds.
type Kind int

const (
	// ArgumentError means the caller passed invalid input: non-positive
	// dimensions, a buffer too small for the stated stride, or a stride
	// below the per-pixel minimum.
	ArgumentError Kind = iota
	// ImageProcessingError means ImagePrep (or a recovered panic deeper
	// in the pipeline) failed unexpectedly.
	ImageProcessingError
	// DetectionError means finder/alignment pattern search or the
	// module-size/dimension sanity checks failed. The façade treats this
	// as locally recoverable and falls through to barcode scanning (or
	// the loose-allowance retry) rather than surfacing it immediately.
	DetectionError
	// DecodeError means the BitMatrixParser walked off the grid, or
	// format/version/mode bits were invalid.
	DecodeError
	// ReedSolomonError means error correction was exhausted: the error
	// locator's degree exceeded the number of roots found, or a
	// corrected position fell outside the block.
	ReedSolomonError
)

func (k Kind) String() string {
	switch k {
	case ArgumentError:
		return "ArgumentError"
	case ImageProcessingError:
		return "ImageProcessingError"
	case DetectionError:
		return "DetectionError"
	case DecodeError:
		return "DecodeError"
	case ReedSolomonError:
		return "ReedSolomonError"
	default:
		return "UnknownError"
	}
}

// Error is the single error type raised anywhere in the decode pipeline.
type Error struct {
	Kind    Kind
	Message string
	// Err wraps an underlying cause, when one exists (e.g. a panic
	// recovered at the Decode boundary).
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("yomu: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("yomu: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, &yomu.Error{Kind: yomu.DetectionError}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// ErrNoSymbolFound is the single user-visible failure the façade raises
// when neither the QR path nor barcode scanning (if enabled) produced a
// result.
var ErrNoSymbolFound = &Error{Kind: DetectionError, Message: "no QR code or barcode found"}
