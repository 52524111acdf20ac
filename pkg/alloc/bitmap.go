package alloc

import (
	"github.com/weberc2/osfs/pkg/math"
)

const bitsPerByte = 8

// Bitmap is a fixed-length bit array. Bit `i` lives in byte `i/8`, most
// significant bit first.
type Bitmap struct {
	bytes []byte
	len   uint64
}

// New returns a cleared bitmap with `bits` addressable bits.
func New(bits uint64) Bitmap {
	return Bitmap{
		bytes: make([]byte, math.DivRoundUp(bits, bitsPerByte)),
		len:   bits,
	}
}

// FromBytes wraps `bytes` (as read from a volume) as a bitmap of `bits` bits.
func FromBytes(bytes []byte, bits uint64) Bitmap {
	return Bitmap{bytes: bytes, len: bits}
}

func (bm Bitmap) Len() uint64 { return bm.len }

func (bm Bitmap) Bytes() []byte { return bm.bytes }

func (bm Bitmap) Test(i uint64) bool {
	return !byteIsZero(bm.bytes[i/bitsPerByte], uint8(i%bitsPerByte))
}

func (bm Bitmap) Set(i uint64) {
	b := &bm.bytes[i/bitsPerByte]
	*b = byteSetHigh(*b, uint8(i%bitsPerByte))
}

func (bm Bitmap) Clear(i uint64) {
	b := &bm.bytes[i/bitsPerByte]
	*b = byteSetLow(*b, uint8(i%bitsPerByte))
}

// IsRangeClear reports whether every bit in `[start, start+n)` is clear. A
// range that extends past the end of the bitmap is never clear.
func (bm Bitmap) IsRangeClear(start, n uint64) bool {
	if start+n > bm.len || start+n < start {
		return false
	}
	for i := start; i < start+n; i++ {
		if bm.Test(i) {
			return false
		}
	}
	return true
}

// FirstClearRun returns the lowest `start` such that `[start, start+n)` is
// entirely clear.
func (bm Bitmap) FirstClearRun(n uint64) (uint64, bool) {
	if n == 0 || n > bm.len {
		return 0, false
	}
	var run uint64
	for i := uint64(0); i < bm.len; i++ {
		if bm.Test(i) {
			run = 0
			continue
		}
		run++
		if run == n {
			return i + 1 - n, true
		}
	}
	return 0, false
}

// FirstClearFrom returns the lowest clear bit at or after `start`.
func (bm Bitmap) FirstClearFrom(start uint64) (uint64, bool) {
	for i := start; i < bm.len; {
		// skip full bytes when aligned
		if i%bitsPerByte == 0 && bm.bytes[i/bitsPerByte] == 0xff {
			i += bitsPerByte
			continue
		}
		if !bm.Test(i) {
			return i, true
		}
		i++
	}
	return 0, false
}

// CountClear returns the number of clear bits.
func (bm Bitmap) CountClear() uint64 {
	var n uint64
	for i := uint64(0); i < bm.len; i++ {
		if !bm.Test(i) {
			n++
		}
	}
	return n
}

func byteIsZero(byt byte, bit uint8) bool {
	return byt&(0b1000_0000>>bit) == 0
}

func byteSetHigh(byt byte, bit uint8) byte {
	return byt | (0b1000_0000 >> bit)
}

func byteSetLow(byt byte, bit uint8) byte {
	return byt & ^(0b1000_0000 >> bit)
}
