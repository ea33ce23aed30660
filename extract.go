package apng

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
)

// RawFrame is one complete standalone PNG encoding of a single frame: the
// signature, an IHDR, any number of IDAT chunks and IEND, with no ancillary
// chunks in between.
type RawFrame []byte

// Encode returns the frame itself, so a RawFrame can be passed to Build as is.
func (f RawFrame) Encode(context.Context) (RawFrame, error) { return f, nil }

// FramePayload is the ordered list of IDAT data blocks of one frame. The
// blocks are one zlib stream split across chunks, so their order matters.
type FramePayload [][]byte

// Len is the total number of compressed bytes in the payload.
func (p FramePayload) Len() int {
	n := 0
	for _, b := range p {
		n += len(b)
	}
	return n
}

// stillPrefixLen is the signature plus an IHDR chunk with its 13 data bytes.
const stillPrefixLen = len(PngHeader) + chunkOverhead + sizeOfIHDR

// ExtractPayload returns the IDAT data blocks of a standalone PNG. The
// signature and IHDR are skipped without being checked; use ReadHeader to
// inspect them. Chunk CRCs are not verified. Any chunk other than IDAT before
// IEND, or a stream that ends before IEND, yields a *MalformedImageError.
func ExtractPayload(raw RawFrame) (FramePayload, error) {
	var payload FramePayload
	off := stillPrefixLen
	for {
		if len(raw)-off < sizeOfLength+sizeOfType {
			return nil, &MalformedImageError{Offset: off, Err: ErrTruncated}
		}
		n := int(binary.BigEndian.Uint32(raw[off : off+4]))
		typ := string(raw[off+4 : off+8])
		switch typ {
		case TypeIDAT:
			start := off + sizeOfLength + sizeOfType
			if n < 0 || len(raw)-start < n+sizeOfCRC {
				return nil, &MalformedImageError{Type: typ, Offset: off, Err: ErrTruncated}
			}
			payload = append(payload, bytes.Clone(raw[start:start+n]))
			off += n + chunkOverhead
		case TypeIEND:
			return payload, nil
		default:
			return nil, &MalformedImageError{Type: typ, Offset: off}
		}
	}
}

// ReadHeader validates the signature and decodes the IHDR chunk that
// ExtractPayload skips.
func ReadHeader(raw RawFrame) (Chunk_IHDR, error) {
	if !bytes.HasPrefix(raw, []byte(PngHeader)) {
		return Chunk_IHDR{}, ErrNotPNG
	}
	c, _, err := ReadChunk(raw[len(PngHeader):])
	if err != nil {
		return Chunk_IHDR{}, &MalformedImageError{Type: c.Type, Offset: len(PngHeader), Err: err}
	}
	if c.Type != TypeIHDR || len(c.Data) != sizeOfIHDR {
		return Chunk_IHDR{}, &MalformedImageError{
			Type:   c.Type,
			Offset: len(PngHeader),
			Err:    fmt.Errorf("first chunk is %q with %d bytes, want %s with %d", c.Type, len(c.Data), TypeIHDR, sizeOfIHDR),
		}
	}
	return parseIHDR(c.Data), nil
}
