package encode

import (
	"encoding/binary"
	"time"

	. "github.com/weberc2/osfs/pkg/types"
)

func putIno(b []byte, start Byte, u Ino) {
	putU64(b, start, uint64(u))
}

func getIno(b []byte, start Byte) Ino {
	return Ino(getU64(b, start))
}

func putBlock(b []byte, start Byte, u Block) {
	putU64(b, start, uint64(u))
}

func getBlock(b []byte, start Byte) Block {
	return Block(getU64(b, start))
}

func putBytePointer(b []byte, start Byte, u Byte) {
	putU64(b, start, uint64(u))
}

func getBytePointer(b []byte, start Byte) Byte {
	return Byte(getU64(b, start))
}

// putTime stores `t` as unix nanoseconds; the zero time is stored as `0`.
func putTime(b []byte, start Byte, t time.Time) {
	if t.IsZero() {
		putU64(b, start, 0)
		return
	}
	putU64(b, start, uint64(t.UnixNano()))
}

func getTime(b []byte, start Byte) time.Time {
	nanos := int64(getU64(b, start))
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos).UTC()
}

// putString stores `s` NUL-padded in `b[start:start+size]`, truncating to
// `size` bytes.
func putString(b []byte, start, size Byte, s string) {
	field := b[start : start+size]
	n := copy(field, s)
	for i := range field[n:] {
		field[n+i] = 0
	}
}

func getString(b []byte, start, size Byte) string {
	field := b[start : start+size]
	for i, c := range field {
		if c == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}

func putU64(b []byte, start Byte, u uint64) {
	binary.LittleEndian.PutUint64(b[start:start+8], u)
}

func getU64(b []byte, start Byte) uint64 {
	return binary.LittleEndian.Uint64(b[start : start+8])
}

func putU32(b []byte, start Byte, u uint32) {
	binary.LittleEndian.PutUint32(b[start:start+4], u)
}

func getU32(b []byte, start Byte) uint32 {
	return binary.LittleEndian.Uint32(b[start : start+4])
}

func putU16(b []byte, start Byte, u uint16) {
	binary.LittleEndian.PutUint16(b[start:start+2], u)
}

func getU16(b []byte, start Byte) uint16 {
	return binary.LittleEndian.Uint16(b[start : start+2])
}

func putU8(b []byte, start Byte, u uint8) {
	b[start] = u
}

func getU8(b []byte, start Byte) uint8 {
	return b[start]
}
