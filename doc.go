// Package apng assembles animated PNGs out of independently encoded PNG
// frames.  Each frame is a standalone still image (signature, IHDR, IDAT
// chunks, IEND); the package lifts the compressed IDAT payloads out of every
// frame and re-packages them behind a shared IHDR, an acTL and one fcTL per
// frame, without ever touching the pixel data.
//
// Build runs the whole pipeline, encoding and extracting frames concurrently:
//
//	s, err := apng.Build(ctx, apng.Animation{Width: 4, Height: 4, DelayDen: 30}, frames)
//
// The lower level pieces (ExtractPayload, Assemble, the Chunk_* types and
// SequenceNumbers) can also be used on their own.
//
// For encoding details, see:
//
// https://en.wikipedia.org/wiki/APNG#Technical_details
// https://wiki.mozilla.org/APNG_Specification
// https://www.w3.org/TR/PNG/
package apng
