package encode

import (
	"fmt"

	. "github.com/weberc2/osfs/pkg/types"
)

const SuperblockSize = superblockLabelEnd

func EncodeSuperblock(sb *Superblock, b *[SuperblockSize]byte) {
	p := b[:]
	putU32(p, superblockMagicStart, sb.Magic)
	putBytePointer(p, superblockBlockSizeStart, sb.BlockSize)
	putBlock(p, superblockBlockCountStart, sb.BlockCount)
	putIno(p, superblockInodeCountStart, sb.InodeCount)
	putBlock(p, superblockFreeBlocksStart, sb.FreeBlocks)
	putIno(p, superblockFreeInodesStart, sb.FreeInodes)
	copy(p[superblockUUIDStart:superblockUUIDEnd], sb.UUID[:])
	putString(p, superblockLabelStart, superblockLabelSize, sb.Label)
}

func DecodeSuperblock(sb *Superblock, b *[SuperblockSize]byte) error {
	p := b[:]
	if magic := getU32(p, superblockMagicStart); magic != SuperblockMagic {
		return fmt.Errorf(
			"decoding superblock: wanted magic `%#x`; found `%#x`: %w",
			SuperblockMagic,
			magic,
			InvalidSuperblockErr,
		)
	}
	sb.Magic = SuperblockMagic
	sb.BlockSize = getBytePointer(p, superblockBlockSizeStart)
	sb.BlockCount = getBlock(p, superblockBlockCountStart)
	sb.InodeCount = getIno(p, superblockInodeCountStart)
	sb.FreeBlocks = getBlock(p, superblockFreeBlocksStart)
	sb.FreeInodes = getIno(p, superblockFreeInodesStart)
	copy(sb.UUID[:], p[superblockUUIDStart:superblockUUIDEnd])
	sb.Label = getString(p, superblockLabelStart, superblockLabelSize)
	return nil
}

const (
	InvalidSuperblockErr ConstError = "invalid superblock"
)

const (
	superblockMagicStart = 0
	superblockMagicSize  = Size32
	superblockMagicEnd   = superblockMagicStart + superblockMagicSize

	superblockBlockSizeStart = superblockMagicEnd + 4
	superblockBlockSizeSize  = Size64
	superblockBlockSizeEnd   = superblockBlockSizeStart + superblockBlockSizeSize

	superblockBlockCountStart = superblockBlockSizeEnd
	superblockBlockCountSize  = BlockPointerSize
	superblockBlockCountEnd   = superblockBlockCountStart + superblockBlockCountSize

	superblockInodeCountStart = superblockBlockCountEnd
	superblockInodeCountSize  = InoSize
	superblockInodeCountEnd   = superblockInodeCountStart + superblockInodeCountSize

	superblockFreeBlocksStart = superblockInodeCountEnd
	superblockFreeBlocksSize  = BlockPointerSize
	superblockFreeBlocksEnd   = superblockFreeBlocksStart + superblockFreeBlocksSize

	superblockFreeInodesStart = superblockFreeBlocksEnd
	superblockFreeInodesSize  = InoSize
	superblockFreeInodesEnd   = superblockFreeInodesStart + superblockFreeInodesSize

	superblockUUIDStart = superblockFreeInodesEnd
	superblockUUIDSize  = 16
	superblockUUIDEnd   = superblockUUIDStart + superblockUUIDSize

	superblockLabelStart = superblockUUIDEnd
	superblockLabelSize  = MaxLabelLen
	superblockLabelEnd   = superblockLabelStart + superblockLabelSize
)
