package types

import "github.com/google/uuid"

const (
	SuperblockMagic uint32 = 0x051AB520
	MaxLabelLen     Byte   = 32
)

// Superblock holds the volume geometry and free counters. The bitmaps live
// with the allocator; the superblock only carries their counts.
type Superblock struct {
	Magic      uint32
	UUID       uuid.UUID
	Label      string
	BlockSize  Byte
	BlockCount Block
	InodeCount Ino
	FreeBlocks Block
	FreeInodes Ino
}
