package apng_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"

	apng "github.com/raph-of-burgondy/APNG-Builder"
)

const frames = 10

func Example() {
	b := image.Rect(0, 0, 100, 100)

	// Each frame is encoded on its own; Build only re-packages the results.
	var fs []apng.Frame
	m := image.NewNRGBA(b)
	for i := 0; i < frames; i++ {
		m.Set(i*b.Max.X/frames, i*b.Max.Y/frames, color.NRGBA{R: 255, A: 255})
		frame := image.NewNRGBA(b)
		copy(frame.Pix, m.Pix)
		fs = append(fs, apng.ImageFrame{Image: frame})
	}

	a := apng.Animation{
		Width:    uint32(b.Max.X),
		Height:   uint32(b.Max.Y),
		DelayDen: 10, // 10 fps
		NumPlays: 1,
	}
	s, err := apng.Build(context.Background(), a, fs, apng.WithLogger(discardLogger))
	if err != nil {
		panic(err)
	}

	for off := len(apng.PngHeader); off < len(s.Data); {
		c, n, err := apng.ReadChunk(s.Data[off:])
		if err != nil {
			panic(err)
		}
		off += n
		if c.Type == apng.TypeIHDR || c.Type == apng.TypeacTL || c.Type == apng.TypeIEND {
			fmt.Println(c.Type)
		}
	}
	fmt.Println(s.MediaType)

	// Output:
	// IHDR
	// acTL
	// IEND
	// image/png
}

func Example_lowLevel() {
	buf := bytes.NewBuffer(nil)
	buf.WriteString(apng.PngHeader)

	ihdr := apng.NewChunk_IHDR(16, 16)
	ihdr.WriteTo(buf)

	actl := &apng.Chunk_acTL{NumFrames: 2}
	actl.WriteTo(buf)

	seq := apng.NewSequenceNumbers()
	m := image.NewNRGBA(image.Rect(0, 0, 16, 16))

	fctl := &apng.Chunk_fcTL{SequenceNumber: seq.Next(), Width: 16, Height: 16, DelayNum: 1, DelayDen: 2}
	fctl.WriteTo(buf)
	e := ihdr.NewEncoder_IDAT(m, apng.DefaultCompression)
	for e.Next() {
		e.Chunk().WriteTo(buf)
	}
	if err := e.Err(); err != nil {
		panic(err)
	}

	m.Set(8, 8, color.NRGBA{G: 255, A: 255})
	fctl = &apng.Chunk_fcTL{SequenceNumber: seq.Next(), Width: 16, Height: 16, DelayNum: 1, DelayDen: 2}
	fctl.WriteTo(buf)
	f := ihdr.NewEncoder_fdAT(seq, m, apng.DefaultCompression)
	for f.Next() {
		c := f.Chunk()
		fmt.Printf("fdAT sequence %d\n", c.SequenceNumber)
		c.WriteTo(buf)
	}
	if err := f.Err(); err != nil {
		panic(err)
	}

	(&apng.Chunk_IEND{}).WriteTo(buf)
	fmt.Println(*seq)

	// Output:
	// fdAT sequence 2
	// 3
}
