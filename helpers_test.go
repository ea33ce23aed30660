package apng_test

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"

	apng "github.com/raph-of-burgondy/APNG-Builder"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// readChunks splits an APNG into its chunks, failing the test on a bad
// signature, a bad CRC or trailing garbage.
func readChunks(t *testing.T, b []byte) []apng.Chunk {
	t.Helper()
	if !bytes.HasPrefix(b, []byte(apng.PngHeader)) {
		t.Fatalf("missing PNG signature: % x", b[:min(8, len(b))])
	}
	var cs []apng.Chunk
	for off := len(apng.PngHeader); off < len(b); {
		c, n, err := apng.ReadChunk(b[off:])
		if err != nil {
			t.Fatalf("chunk at offset %d: %v", off, err)
		}
		cs = append(cs, c)
		off += n
	}
	return cs
}

func chunkTypes(cs []apng.Chunk) []string {
	var ts []string
	for _, c := range cs {
		ts = append(ts, c.Type)
	}
	return ts
}

// sequenceNumbers returns the sequence numbers of fcTL and fdAT chunks in
// stream order.
func sequenceNumbers(cs []apng.Chunk) []uint32 {
	var seqs []uint32
	for _, c := range cs {
		if c.Type == apng.TypefcTL || c.Type == apng.TypefdAT {
			seqs = append(seqs, binary.BigEndian.Uint32(c.Data[0:4]))
		}
	}
	return seqs
}

type decodedFrame struct {
	fctl  apng.Chunk_fcTL
	image image.Image
}

type decodedAnimation struct {
	numFrames uint32
	numPlays  uint32
	frames    []decodedFrame
}

// decodeAnimation decodes every frame of an APNG by rebuilding each one as a
// still PNG and handing it to image/png.
func decodeAnimation(t *testing.T, b []byte) decodedAnimation {
	t.Helper()
	cs := readChunks(t, b)
	var (
		a    decodedAnimation
		ihdr []byte
		cur  *apng.Chunk_fcTL
		data []byte
	)
	flush := func() {
		if cur == nil {
			return
		}
		still := &bytes.Buffer{}
		still.WriteString(apng.PngHeader)
		hdr := append([]byte(nil), ihdr...)
		binary.BigEndian.PutUint32(hdr[0:4], cur.Width)
		binary.BigEndian.PutUint32(hdr[4:8], cur.Height)
		still.Write(apng.BuildChunk(apng.TypeIHDR, hdr))
		still.Write(apng.BuildChunk(apng.TypeIDAT, data))
		still.Write(apng.BuildChunk(apng.TypeIEND, nil))
		m, err := png.Decode(still)
		if err != nil {
			t.Fatalf("frame %d: %v", len(a.frames), err)
		}
		a.frames = append(a.frames, decodedFrame{fctl: *cur, image: m})
		cur, data = nil, nil
	}
	for _, c := range cs {
		switch c.Type {
		case apng.TypeIHDR:
			ihdr = c.Data
		case apng.TypeacTL:
			a.numFrames = binary.BigEndian.Uint32(c.Data[0:4])
			a.numPlays = binary.BigEndian.Uint32(c.Data[4:8])
		case apng.TypefcTL:
			flush()
			cur = &apng.Chunk_fcTL{
				SequenceNumber: binary.BigEndian.Uint32(c.Data[0:4]),
				Width:          binary.BigEndian.Uint32(c.Data[4:8]),
				Height:         binary.BigEndian.Uint32(c.Data[8:12]),
				XOffset:        binary.BigEndian.Uint32(c.Data[12:16]),
				YOffset:        binary.BigEndian.Uint32(c.Data[16:20]),
				DelayNum:       binary.BigEndian.Uint16(c.Data[20:22]),
				DelayDen:       binary.BigEndian.Uint16(c.Data[22:24]),
				DisposeOp:      apng.DisposeOp(c.Data[24]),
				BlendOp:        apng.BlendOp(c.Data[25]),
			}
		case apng.TypeIDAT:
			data = append(data, c.Data...)
		case apng.TypefdAT:
			data = append(data, c.Data[4:]...)
		case apng.TypeIEND:
			flush()
		}
	}
	return a
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, c)
		}
	}
	return m
}

func encodeStill(t *testing.T, m image.Image) apng.RawFrame {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := apng.EncodeStill(buf, m, apng.DefaultCompression); err != nil {
		t.Fatal(err)
	}
	return apng.RawFrame(buf.Bytes())
}

// stillWith builds a PNG with the given chunks between IHDR and IEND.
func stillWith(width, height uint32, chunks ...apng.Chunk) apng.RawFrame {
	buf := &bytes.Buffer{}
	buf.WriteString(apng.PngHeader)
	apng.NewChunk_IHDR(width, height).WriteTo(buf)
	for _, c := range chunks {
		c.WriteTo(buf)
	}
	(&apng.Chunk_IEND{}).WriteTo(buf)
	return apng.RawFrame(buf.Bytes())
}

func sameImage(a, b image.Image) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ca := color.NRGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y))
			cb := color.NRGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y))
			if ca != cb {
				return false
			}
		}
	}
	return true
}
