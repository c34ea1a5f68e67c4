package wirebuf

import "github.com/pkg/errors"

// Sentinel errors for decode and positioning failures. Call sites wrap these
// with offset context, so compare with errors.Is or errors.Cause rather than
// by equality.
var (
	// ErrBufferUnderflow means a read needed more bytes than remain between
	// the cursor and the end of the buffer. The cursor is left untouched.
	ErrBufferUnderflow = errors.New("buffer underflow")

	// ErrInvalidString means a string body decoded to a plausible length but
	// was not valid UTF-8. The cursor is left untouched.
	ErrInvalidString = errors.New("invalid UTF-8 string")

	// ErrBufferOverflow means a write on a fixed-capacity buffer would cross
	// the end of its storage. Growable buffers never return it.
	ErrBufferOverflow = errors.New("buffer overflow")

	// ErrOutOfRange means SetPos was given a position outside [0, Len()].
	ErrOutOfRange = errors.New("position out of range")
)
