package volume

import (
	"github.com/weberc2/osfs/pkg/encode"
	"github.com/weberc2/osfs/pkg/math"
	. "github.com/weberc2/osfs/pkg/types"
)

// The on-disk image is laid out as:
//
//	block 0               superblock
//	block 1..             block bitmap, inode bitmap, extent-used bitmap
//	                      (packed back to back)
//	next block boundary   inode table, `InodeSize` bytes per ino
//	next block boundary   extent table, `ExtentRecordSize` bytes per record
//	next block boundary   data region, `BlockCount` blocks
//
// Data block numbers are relative to the start of the data region.

const SuperblockOffset Byte = 0

// ExtentCapacity is the number of extent records a volume carries. Every
// extent covers at least one block, so a volume never needs more records than
// it has blocks.
func ExtentCapacity(blockCount Block) uint64 { return uint64(blockCount) }

func BlockBitmapOffset() Byte {
	return math.RoundUp(SuperblockOffset+encode.SuperblockSize, BlockSize)
}

func BlockBitmapSize(blockCount Block) Byte {
	return Byte(math.DivRoundUp(blockCount, 8))
}

func InodeBitmapOffset(blockCount Block) Byte {
	return BlockBitmapOffset() + BlockBitmapSize(blockCount)
}

func InodeBitmapSize(inodeCount Ino) Byte {
	return Byte(math.DivRoundUp(inodeCount, 8))
}

func ExtentBitmapOffset(blockCount Block, inodeCount Ino) Byte {
	return InodeBitmapOffset(blockCount) + InodeBitmapSize(inodeCount)
}

func ExtentBitmapSize(blockCount Block) Byte {
	return Byte(math.DivRoundUp(ExtentCapacity(blockCount), 8))
}

func InodeTableOffset(blockCount Block, inodeCount Ino) Byte {
	return math.RoundUp(
		ExtentBitmapOffset(blockCount, inodeCount)+ExtentBitmapSize(blockCount),
		BlockSize,
	)
}

func InodeTableSize(inodeCount Ino) Byte { return Byte(inodeCount) * InodeSize }

func ExtentTableOffset(blockCount Block, inodeCount Ino) Byte {
	return math.RoundUp(
		InodeTableOffset(blockCount, inodeCount)+InodeTableSize(inodeCount),
		BlockSize,
	)
}

func ExtentTableSize(blockCount Block) Byte {
	return Byte(ExtentCapacity(blockCount)) * ExtentRecordSize
}

// DataOffset is the byte offset of data block 0. Everything before it is
// metadata.
func DataOffset(blockCount Block, inodeCount Ino) Byte {
	return math.RoundUp(
		ExtentTableOffset(blockCount, inodeCount)+ExtentTableSize(blockCount),
		BlockSize,
	)
}

// Size is the number of bytes an image with the given geometry occupies.
func Size(blockCount Block, inodeCount Ino) Byte {
	return DataOffset(blockCount, inodeCount) + blockCount.Bytes()
}
