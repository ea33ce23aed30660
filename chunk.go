package apng

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Chunk types written by this package.
const (
	TypeIHDR = "IHDR"
	TypeIDAT = "IDAT"
	TypeIEND = "IEND"
	TypeacTL = "acTL"
	TypefcTL = "fcTL"
	TypefdAT = "fdAT"
)

const (
	sizeOfLength   = 4
	sizeOfType     = 4
	sizeOfCRC      = 4
	chunkOverhead  = sizeOfLength + sizeOfType + sizeOfCRC
	maxChunkLength = math.MaxUint32
)

// Chunk is a PNG segment: a four letter type and its data. The serialized form
// is length | type | data | crc32(type | data), integers big-endian.
type Chunk struct {
	Type string
	Data []byte
}

// Len is the serialized size of the chunk.
func (c Chunk) Len() int {
	return chunkOverhead + len(c.Data)
}

// Bytes serializes the chunk into a new buffer. It panics on a chunk that
// cannot be represented; use WriteTo to get an error instead.
func (c Chunk) Bytes() []byte {
	if err := c.check(); err != nil {
		panic(err)
	}
	b := make([]byte, c.Len())
	binary.BigEndian.PutUint32(b[0:4], uint32(len(c.Data)))
	copy(b[4:8], c.Type)
	copy(b[8:], c.Data)
	binary.BigEndian.PutUint32(b[8+len(c.Data):], chunkChecksum(c.Type, c.Data))
	return b
}

// WriteTo encodes the chunk to the io.Writer.  This supports the io.WriterTo
// interface.
func (c Chunk) WriteTo(w io.Writer) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	return writeChunkTo(c.Type, c.Data, w)
}

func (c Chunk) check() error {
	if len(c.Type) != sizeOfType {
		return &PreconditionError{Op: "chunk", Err: fmt.Errorf("type %q is not four bytes", c.Type)}
	}
	if uint64(len(c.Data)) > maxChunkLength {
		return &PreconditionError{Op: "chunk " + c.Type, Err: ErrChunkTooLarge}
	}
	return nil
}

// BuildChunk wraps data in a chunk of the given type and returns its serialized
// form. typ must be four bytes and data must fit a 32 bit length; anything else
// is a programming error and panics.
func BuildChunk(typ string, data []byte) []byte {
	return Chunk{Type: typ, Data: data}.Bytes()
}

// ReadChunk decodes the chunk at the head of b and reports how many bytes it
// occupied. The returned Data aliases b. The CRC is verified.
func ReadChunk(b []byte) (Chunk, int, error) {
	if len(b) < sizeOfLength+sizeOfType {
		return Chunk{}, 0, ErrTruncated
	}
	n := uint64(binary.BigEndian.Uint32(b[0:4]))
	if uint64(len(b)) < n+chunkOverhead {
		return Chunk{}, 0, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrTruncated, b[4:8], n+chunkOverhead, len(b))
	}
	c := Chunk{Type: string(b[4:8]), Data: b[8 : 8+n]}
	want := binary.BigEndian.Uint32(b[8+n:])
	if got := chunkChecksum(c.Type, c.Data); got != want {
		return Chunk{}, 0, fmt.Errorf("%w: %s has %08x, computed %08x", ErrChecksum, c.Type, want, got)
	}
	return c, c.Len(), nil
}

// writeChunkTo frames b without allocating a full copy of it.
func writeChunkTo(name string, b []byte, w io.Writer) (int64, error) {
	header := [sizeOfLength + sizeOfType]byte{}
	footer := [sizeOfCRC]byte{}

	binary.BigEndian.PutUint32(header[:4], uint32(len(b)))
	copy(header[4:], name)
	binary.BigEndian.PutUint32(footer[:], chunkChecksum(name, b))

	hl, err := w.Write(header[:])
	if err != nil {
		return int64(hl), err
	}
	bl, err := w.Write(b)
	if err != nil {
		return int64(hl + bl), err
	}
	fl, err := w.Write(footer[:])
	return int64(hl + bl + fl), err
}
