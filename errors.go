package apng

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated indicates a chunk runs past the end of its buffer.
	ErrTruncated = errors.New("apng: truncated chunk stream")

	// ErrChecksum indicates a chunk whose trailing CRC does not match.
	ErrChecksum = errors.New("apng: chunk checksum mismatch")

	// ErrNotPNG indicates a buffer that does not start with the PNG signature.
	ErrNotPNG = errors.New("apng: not a PNG stream")

	// ErrChunkTooLarge indicates chunk data that does not fit the 4 byte
	// length field.
	ErrChunkTooLarge = errors.New("apng: chunk data exceeds 2^32-1 bytes")

	// ErrDimensions indicates a frame whose size differs from the canvas.
	ErrDimensions = errors.New("apng: frame dimensions differ from canvas")

	// ErrPixelFormat indicates a frame that is not 8-bit RGBA, non-interlaced.
	ErrPixelFormat = errors.New("apng: frame pixel format is not 8-bit RGBA")
)

// MalformedImageError reports a still image whose chunk stream the extractor
// cannot handle. Type is the offending chunk type, empty when the stream ended
// early.
type MalformedImageError struct {
	Type   string
	Offset int
	Err    error
}

func (e *MalformedImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("apng: malformed image at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("apng: malformed image: unexpected chunk %q at offset %d", e.Type, e.Offset)
}

func (e *MalformedImageError) Unwrap() error { return e.Err }

// PreconditionError is a caller error: input the format cannot represent, or
// frames that contradict the Animation they are assembled into.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string { return "apng: " + e.Op + ": " + e.Err.Error() }

func (e *PreconditionError) Unwrap() error { return e.Err }
