// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apng

import (
	"encoding/binary"
	"io"
)

// PngHeader is the eight byte signature every PNG and APNG stream starts with.
const PngHeader = "\x89PNG\r\n\x1a\n"

// ColorType is the type of color of the image, per the PNG spec.
type ColorType uint8

const (
	ColorType_Grayscale      = ColorType(0)
	ColorType_TrueColor      = ColorType(2)
	ColorType_Paletted       = ColorType(3)
	ColorType_GrayscaleAlpha = ColorType(4)
	ColorType_TrueColorAlpha = ColorType(6)
)

// BitDepth is the bit depth of the image, as per the PNG spec.
type BitDepth uint8

const (
	BitDepth_8  = BitDepth(8)
	BitDepth_16 = BitDepth(16)
)

// CompressionMethod is the compression method, as per the PNG spec.
type CompressionMethod uint8

const CompressionMethod_Default = CompressionMethod(0)

// FilterMethod is the filter method, as per the PNG spec.
type FilterMethod uint8

const FilterMethod_Default = FilterMethod(0)

// InterlaceMethod is the interlace method, as per the PNG spec.
type InterlaceMethod uint8

const (
	InterlaceMethod_NonInterlaced = InterlaceMethod(0)
	InterlaceMethod_Interlaced    = InterlaceMethod(1)
)

const sizeOfIHDR = 13

// Chunk_IHDR is the image header chunk, as per the PNG spec.
type Chunk_IHDR struct {
	Width             uint32
	Height            uint32
	BitDepth          BitDepth
	ColorType         ColorType
	CompressionMethod CompressionMethod
	FilterMethod      FilterMethod
	InterlaceMethod   InterlaceMethod
}

// NewChunk_IHDR is the header for an 8-bit RGBA, non-interlaced image, the
// only pixel format the assembler emits.
func NewChunk_IHDR(width, height uint32) *Chunk_IHDR {
	return &Chunk_IHDR{
		Width:     width,
		Height:    height,
		BitDepth:  BitDepth_8,
		ColorType: ColorType_TrueColorAlpha,
	}
}

// Chunk returns the generic form of the header.
func (c *Chunk_IHDR) Chunk() Chunk {
	buf := make([]byte, sizeOfIHDR)
	binary.BigEndian.PutUint32(buf[0:4], c.Width)
	binary.BigEndian.PutUint32(buf[4:8], c.Height)
	buf[8] = byte(c.BitDepth)
	buf[9] = byte(c.ColorType)
	buf[10] = byte(c.CompressionMethod)
	buf[11] = byte(c.FilterMethod)
	buf[12] = byte(c.InterlaceMethod)
	return Chunk{Type: TypeIHDR, Data: buf}
}

// WriteTo encodes the IHDR chunk to the io.Writer.  This supports the
// io.WriterTo interface.
func (c *Chunk_IHDR) WriteTo(w io.Writer) (int64, error) {
	return c.Chunk().WriteTo(w)
}

func parseIHDR(b []byte) Chunk_IHDR {
	return Chunk_IHDR{
		Width:             binary.BigEndian.Uint32(b[0:4]),
		Height:            binary.BigEndian.Uint32(b[4:8]),
		BitDepth:          BitDepth(b[8]),
		ColorType:         ColorType(b[9]),
		CompressionMethod: CompressionMethod(b[10]),
		FilterMethod:      FilterMethod(b[11]),
		InterlaceMethod:   InterlaceMethod(b[12]),
	}
}

// Chunk_IEND is the ending chunk, as per the PNG spec.  Write this after all other chunks.
type Chunk_IEND struct{}

// WriteTo encodes the ending chunk to the io.Writer.  This supports the
// io.WriterTo interface.
func (c *Chunk_IEND) WriteTo(w io.Writer) (int64, error) {
	return writeChunkTo(TypeIEND, nil, w)
}

// Chunk_acTL is the animation control chunk, as per the APNG spec.  Write this
// before any image data.
type Chunk_acTL struct {
	NumFrames uint32 // Number of frames
	NumPlays  uint32 // Number of times to loop this APNG. 0 indicates infinite looping.
}

// WriteTo encodes the animation control chunk to the io.Writer.  This supports
// the io.WriterTo interface.
func (c *Chunk_acTL) WriteTo(w io.Writer) (int64, error) {
	buf := [8]byte{}
	binary.BigEndian.PutUint32(buf[0:4], c.NumFrames)
	binary.BigEndian.PutUint32(buf[4:8], c.NumPlays)
	return writeChunkTo(TypeacTL, buf[:], w)
}

// DisposeOp is the dispose operator, as per the APNG spec.
type DisposeOp uint8

const (
	DisposeOp_None       = DisposeOp(0)
	DisposeOp_Background = DisposeOp(1)
	DisposeOp_Previous   = DisposeOp(2)
)

// BlendOp is the blend operator, as per the APNG spec.
type BlendOp uint8

const (
	BlendOp_Source = BlendOp(0)
	BlendOp_Over   = BlendOp(1)
)

const sizeOffcTL = 26

// Chunk_fcTL is the frame control chunk, as per the APNG spec.
type Chunk_fcTL struct {
	SequenceNumber uint32    // Sequence number of the animation chunk, starting from 0
	Width          uint32    // Width of the following frame
	Height         uint32    // Height of the following frame
	XOffset        uint32    // X position at which to render the following frame
	YOffset        uint32    // Y position at which to render the following frame
	DelayNum       uint16    // Frame delay fraction numerator
	DelayDen       uint16    // Frame delay fraction denominator
	DisposeOp      DisposeOp // Type of frame area disposal to be done after rendering this frame
	BlendOp        BlendOp   // Type of frame area rendering for this frame
}

// WriteTo encodes the frame control chunk to the io.Writer.  This supports the
// io.WriterTo interface.
func (c *Chunk_fcTL) WriteTo(w io.Writer) (int64, error) {
	buf := [sizeOffcTL]byte{}
	binary.BigEndian.PutUint32(buf[0:4], c.SequenceNumber)
	binary.BigEndian.PutUint32(buf[4:8], c.Width)
	binary.BigEndian.PutUint32(buf[8:12], c.Height)
	binary.BigEndian.PutUint32(buf[12:16], c.XOffset)
	binary.BigEndian.PutUint32(buf[16:20], c.YOffset)
	binary.BigEndian.PutUint16(buf[20:22], c.DelayNum)
	binary.BigEndian.PutUint16(buf[22:24], c.DelayDen)
	buf[24] = byte(c.DisposeOp)
	buf[25] = byte(c.BlendOp)
	return writeChunkTo(TypefcTL, buf[:], w)
}

// SequenceNumbers is used to track sequence numbers across all frames and
// chunks; use this with Chunk_fcTL and Encoder_fdAT.
type SequenceNumbers uint32

func NewSequenceNumbers() *SequenceNumbers {
	return new(SequenceNumbers)
}

// Next returns the current number and advances the counter.
func (s *SequenceNumbers) Next() uint32 {
	tmp := uint32(*s)
	*s++
	return tmp
}

// Chunk_IDAT is one image data chunk, as per the PNG spec.
type Chunk_IDAT []byte

// WriteTo encodes the image data chunk to the io.Writer.  This supports the
// io.WriterTo interface.
func (c Chunk_IDAT) WriteTo(w io.Writer) (int64, error) {
	return Chunk{Type: TypeIDAT, Data: c}.WriteTo(w)
}

// Chunk_fdAT is the frame data chunk, as per the APNG spec.
type Chunk_fdAT struct {
	SequenceNumber uint32
	Chunk_IDAT     Chunk_IDAT
}

// WriteTo encodes the frame data chunk to the io.Writer.  This supports the
// io.WriterTo interface.
func (c *Chunk_fdAT) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 4+len(c.Chunk_IDAT))
	binary.BigEndian.PutUint32(buf[0:4], c.SequenceNumber)
	copy(buf[4:], c.Chunk_IDAT)
	return Chunk{Type: TypefdAT, Data: buf}.WriteTo(w)
}
