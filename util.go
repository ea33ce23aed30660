// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apng

// Filter type, as per the PNG spec.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
	nFilter   = 5
)

// The absolute value of a byte interpreted as a signed int8.
func abs8(d uint8) int {
	if d < 128 {
		return int(d)
	}
	return 256 - int(d)
}

// paeth implements the Paeth predictor: whichever of left, up and upper-left
// is closest to left + up - upper-left.
func paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// predict is the value filter type ft subtracts from the byte whose left, up
// and upper-left neighbours are a, b and c.
func predict(ft int, a, b, c uint8) uint8 {
	switch ft {
	case ftSub:
		return a
	case ftUp:
		return b
	case ftAverage:
		return uint8((int(a) + int(b)) / 2)
	case ftPaeth:
		return paeth(a, b, c)
	}
	return 0
}

// Chooses the filter to use for encoding the current row, and applies it.
// The return value is the index of the filter and also of the row in cr that has had it applied.
// Like libpng, it picks the filter minimizing the sum of absolute differences.
func filter(cr *[nFilter][]byte, pr []byte, bpp int) int {
	cdat := cr[0][1:]
	pdat := pr[1:]

	best := 0
	for _, v := range cdat {
		best += abs8(v)
	}
	f := ftNone

	for ft := ftSub; ft < nFilter; ft++ {
		out := cr[ft][1:]
		sum := 0
		for i := range cdat {
			var a, c uint8
			if i >= bpp {
				a, c = cdat[i-bpp], pdat[i-bpp]
			}
			out[i] = cdat[i] - predict(ft, a, pdat[i], c)
			sum += abs8(out[i])
			if sum >= best {
				break
			}
		}
		if sum < best {
			best = sum
			f = ft
		}
	}
	return f
}
