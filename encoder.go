// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apng

import (
	"bufio"
	"bytes"
	"context"
	"image"
	"image/color"
	"io"

	"github.com/klauspost/compress/zlib"
)

// CompressionLevel tells the encoding algorithm how to trade compression speed
// for image size.
type CompressionLevel int

func (l CompressionLevel) zlib() int {
	switch l {
	case DefaultCompression:
		return zlib.DefaultCompression
	case NoCompression:
		return zlib.NoCompression
	case BestSpeed:
		return zlib.BestSpeed
	case BestCompression:
		return zlib.BestCompression
	default:
		return zlib.DefaultCompression
	}
}

const (
	DefaultCompression CompressionLevel = 0
	NoCompression      CompressionLevel = -1
	BestSpeed          CompressionLevel = -2
	BestCompression    CompressionLevel = -3
)

// maxIDATSize is the largest IDAT chunk the encoders emit.
const maxIDATSize = 1 << 15

type atom struct {
	buf []byte
	err error
}

// atomWriter hands each write to the reading side of an encoder. It stops
// accepting writes once stop is closed.
type atomWriter struct {
	c    chan *atom
	stop chan struct{}
}

// Write sends b as one or more atoms of at most maxIDATSize bytes. bufio
// hands large writes through unbuffered, so the split happens here.
func (aw atomWriter) Write(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		l := min(len(b), maxIDATSize)
		select {
		case aw.c <- &atom{buf: bytes.Clone(b[:l])}:
		case <-aw.stop:
			return n, io.ErrClosedPipe
		}
		n += l
		b = b[l:]
	}
	return n, nil
}

func (aw atomWriter) fail(err error) {
	select {
	case aw.c <- &atom{err: err}:
	case <-aw.stop:
	}
}

// Encoder_IDAT is used to encode an image into one or more image data chunks.
type Encoder_IDAT struct {
	aw atomWriter
	a  *atom
}

// NewEncoder_IDAT makes a new image data encoder for the given image and
// compression level. Pixels are written as 8-bit RGBA whatever the header
// says. Consume it until Next returns false, or call Close.
func (c *Chunk_IHDR) NewEncoder_IDAT(m image.Image, cl CompressionLevel) *Encoder_IDAT {
	aw := atomWriter{c: make(chan *atom), stop: make(chan struct{})}
	go func() {
		defer close(aw.c)
		bw := bufio.NewWriterSize(aw, maxIDATSize)
		z, err := zlib.NewWriterLevel(bw, cl.zlib())
		if err != nil {
			aw.fail(err)
			return
		}
		if err := writeImage(z, m, cl != NoCompression); err != nil {
			aw.fail(err)
			return
		}
		if err := z.Close(); err != nil {
			aw.fail(err)
			return
		}
		if err := bw.Flush(); err != nil {
			aw.fail(err)
		}
	}()
	return &Encoder_IDAT{aw: aw}
}

// Next is used to advance the encoder to the next chunk.  Call this before
// using either Chunk or Err.
func (e *Encoder_IDAT) Next() bool {
	var ok bool
	if e.Err() != nil {
		return false
	}
	e.a, ok = <-e.aw.c
	return ok && e.a.err == nil
}

// Err returns any errors encountered while encoding image data chunks.
func (e *Encoder_IDAT) Err() error {
	if e.a != nil && e.a.err != nil {
		return e.a.err
	}
	return nil
}

// Chunk returns the current image data chunk.
func (e *Encoder_IDAT) Chunk() Chunk_IDAT {
	return Chunk_IDAT(e.a.buf)
}

// Close abandons the encoder and waits for its goroutine to finish.
func (e *Encoder_IDAT) Close() {
	select {
	case <-e.aw.stop:
		return
	default:
	}
	close(e.aw.stop)
	for range e.aw.c {
	}
}

type Encoder_fdAT struct {
	seq          *SequenceNumbers
	encoder_IDAT *Encoder_IDAT
}

// NewEncoder_fdAT makes a new frame data encoder for the given sequence
// numbers, image, and compression level.
func (c *Chunk_IHDR) NewEncoder_fdAT(seq *SequenceNumbers, m image.Image, cl CompressionLevel) *Encoder_fdAT {
	return &Encoder_fdAT{
		seq:          seq,
		encoder_IDAT: c.NewEncoder_IDAT(m, cl),
	}
}

// Next is used to advance the encoder to the next chunk.  Call this before
// using either Chunk or Err.
func (e *Encoder_fdAT) Next() bool {
	return e.encoder_IDAT.Next()
}

// Err returns any errors encountered while encoding image data chunks.
func (e *Encoder_fdAT) Err() error {
	return e.encoder_IDAT.Err()
}

// Chunk returns the current frame data chunk, taking the next sequence number.
func (e *Encoder_fdAT) Chunk() *Chunk_fdAT {
	return &Chunk_fdAT{
		SequenceNumber: e.seq.Next(),
		Chunk_IDAT:     e.encoder_IDAT.Chunk(),
	}
}

// Close abandons the encoder and waits for its goroutine to finish.
func (e *Encoder_fdAT) Close() {
	e.encoder_IDAT.Close()
}

// EncodeStill writes m as a standalone 8-bit RGBA PNG made of the signature,
// IHDR, IDAT chunks of at most 32 KiB and IEND. This is the shape
// ExtractPayload accepts.
func EncodeStill(w io.Writer, m image.Image, cl CompressionLevel) error {
	b := m.Bounds()
	if _, err := io.WriteString(w, PngHeader); err != nil {
		return err
	}
	ihdr := NewChunk_IHDR(uint32(b.Dx()), uint32(b.Dy()))
	if _, err := ihdr.WriteTo(w); err != nil {
		return err
	}

	e := ihdr.NewEncoder_IDAT(m, cl)
	defer e.Close()
	for e.Next() {
		if _, err := e.Chunk().WriteTo(w); err != nil {
			return err
		}
	}
	if err := e.Err(); err != nil {
		return err
	}

	iend := &Chunk_IEND{}
	_, err := iend.WriteTo(w)
	return err
}

// ImageFrame is a Frame that encodes Image with EncodeStill.
type ImageFrame struct {
	Image image.Image
	Level CompressionLevel
}

// Encode implements Frame.
func (f ImageFrame) Encode(ctx context.Context) (RawFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := EncodeStill(buf, f.Image, f.Level); err != nil {
		return nil, err
	}
	return RawFrame(buf.Bytes()), nil
}

// writeImage writes the filtered 8-bit RGBA rows of m.
func writeImage(w io.Writer, m image.Image, applyFilter bool) error {
	const bpp = 4 // Bytes per pixel.

	// cr[*] and pr are the bytes for the current and previous row.
	// cr[0] is unfiltered (or equivalently, filtered with the ftNone filter).
	// cr[ft], for non-zero filter types ft, are buffers for transforming cr[0] under the
	// other PNG filter types. These buffers are allocated once and re-used for each row.
	// The +1 is for the per-row filter type, which is at cr[*][0].
	b := m.Bounds()
	var cr [nFilter][]uint8
	for i := range cr {
		cr[i] = make([]uint8, 1+bpp*b.Dx())
		cr[i][0] = uint8(i)
	}
	pr := make([]uint8, 1+bpp*b.Dx())

	nrgba, _ := m.(*image.NRGBA)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		if nrgba != nil {
			offset := nrgba.PixOffset(b.Min.X, y)
			copy(cr[0][1:], nrgba.Pix[offset:offset+b.Dx()*bpp])
		} else {
			// Convert from image.Image (which is alpha-premultiplied) to PNG's non-alpha-premultiplied.
			i := 1
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
				cr[0][i+0] = c.R
				cr[0][i+1] = c.G
				cr[0][i+2] = c.B
				cr[0][i+3] = c.A
				i += bpp
			}
		}

		f := ftNone
		if applyFilter {
			f = filter(&cr, pr, bpp)
		}

		if _, err := w.Write(cr[f]); err != nil {
			return err
		}

		// The current row for y is the previous row for y+1.
		pr, cr[0] = cr[0], pr
	}
	return nil
}
