package types

type Byte int64

const (
	Size64 Byte = 8
	Size32 Byte = 4
	Size16 Byte = 2
)
