package types

type Block uint64

const (
	BlockSize        Byte = 4096
	BlockPointerSize Byte = Size64
)

// Bytes returns the size of `b` blocks in bytes.
func (b Block) Bytes() Byte { return Byte(b) * BlockSize }
