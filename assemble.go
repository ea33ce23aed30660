package apng

import (
	"bytes"
	"io"
)

// MediaType of an assembled stream. APNG keeps the PNG media type so that
// decoders without animation support still show the first frame.
const MediaType = "image/png"

// Animation describes the canvas and timing shared by every frame.
type Animation struct {
	Width    uint32 // Canvas width; every frame must have it
	Height   uint32 // Canvas height; every frame must have it
	DelayDen uint16 // Frames per second: each frame lasts 1/DelayDen s
	NumPlays uint32 // Number of times to loop. 0 indicates infinite looping.
}

// Stream is an assembled APNG.
type Stream struct {
	MediaType string
	Data      []byte
}

// WriteTo writes the stream's bytes to the io.Writer.  This supports the
// io.WriterTo interface.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Data)
	return int64(n), err
}

// Assemble re-packages the IDAT payloads of already encoded frames into one
// APNG. Frame 0 is also the default image and keeps its IDAT chunks; later
// frames are written as fdAT chunks. One sequence counter numbers every fcTL
// and fdAT in stream order. No frames gives a valid stream declaring zero
// frames.
func Assemble(a Animation, payloads []FramePayload) (*Stream, error) {
	size := len(PngHeader) + chunkOverhead + sizeOfIHDR + chunkOverhead + 8 + chunkOverhead
	for _, p := range payloads {
		size += chunkOverhead + sizeOffcTL + len(p)*(chunkOverhead+4) + p.Len()
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.WriteString(PngHeader)

	// Writes into a bytes.Buffer only fail on chunks that are too large.
	if _, err := NewChunk_IHDR(a.Width, a.Height).WriteTo(buf); err != nil {
		return nil, err
	}
	actl := &Chunk_acTL{
		NumFrames: uint32(len(payloads)),
		NumPlays:  a.NumPlays,
	}
	if _, err := actl.WriteTo(buf); err != nil {
		return nil, err
	}

	seq := NewSequenceNumbers()
	for i, p := range payloads {
		fctl := &Chunk_fcTL{
			SequenceNumber: seq.Next(),
			Width:          a.Width,
			Height:         a.Height,
			DelayNum:       1,
			DelayDen:       a.DelayDen,
			DisposeOp:      DisposeOp_None,
			BlendOp:        BlendOp_Source,
		}
		if _, err := fctl.WriteTo(buf); err != nil {
			return nil, err
		}
		for _, block := range p {
			var c io.WriterTo = Chunk_IDAT(block)
			if i > 0 {
				c = &Chunk_fdAT{SequenceNumber: seq.Next(), Chunk_IDAT: block}
			}
			if _, err := c.WriteTo(buf); err != nil {
				return nil, err
			}
		}
	}

	iend := &Chunk_IEND{}
	if _, err := iend.WriteTo(buf); err != nil {
		return nil, err
	}

	return &Stream{MediaType: MediaType, Data: buf.Bytes()}, nil
}
