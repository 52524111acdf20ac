package encode

import (
	. "github.com/weberc2/osfs/pkg/types"
)

// EncodeInode writes `inode` into `b`. The ino itself is not stored; it is
// implied by the record's position in the inode table.
func EncodeInode(inode *Inode, b *[InodeSize]byte) {
	p := b[:]
	*b = [InodeSize]byte{}

	putU8(p, inodeFileTypeStart, uint8(inode.Mode.Type))
	putU16(p, inodePermStart, inode.Mode.Perm)
	putU16(p, inodeLinksCountStart, inode.LinksCount)
	putU32(p, inodeUIDStart, inode.UID)
	putU32(p, inodeGIDStart, inode.GID)
	putBytePointer(p, inodeSizeStart, inode.Size)
	putBlock(p, inodeBlocksStart, inode.Blocks)
	putU64(p, inodeExtentsStart, uint64(inode.Extents))
	putTime(p, inodeATimeStart, inode.ATime)
	putTime(p, inodeMTimeStart, inode.MTime)
	putTime(p, inodeCTimeStart, inode.CTime)
}

// DecodeInode reads the record in `b` into `inode`. The file type is not
// validated because unallocated records are all zeroes; callers that expect
// an allocated inode must validate.
func DecodeInode(inode *Inode, b *[InodeSize]byte) {
	p := b[:]

	inode.Mode = Mode{
		Type: FileType(getU8(p, inodeFileTypeStart)),
		Perm: getU16(p, inodePermStart),
	}
	inode.LinksCount = getU16(p, inodeLinksCountStart)
	inode.UID = getU32(p, inodeUIDStart)
	inode.GID = getU32(p, inodeGIDStart)
	inode.Size = getBytePointer(p, inodeSizeStart)
	inode.Blocks = getBlock(p, inodeBlocksStart)
	inode.Extents = ExtentID(getU64(p, inodeExtentsStart))
	inode.ATime = getTime(p, inodeATimeStart)
	inode.MTime = getTime(p, inodeMTimeStart)
	inode.CTime = getTime(p, inodeCTimeStart)
}

const (
	inodeFileTypeStart = 0
	inodeFileTypeSize  = 1
	inodeFileTypeEnd   = inodeFileTypeStart + inodeFileTypeSize

	// one byte of padding keeps the 16-bit fields aligned
	inodePermStart = inodeFileTypeEnd + 1
	inodePermSize  = Size16
	inodePermEnd   = inodePermStart + inodePermSize

	inodeLinksCountStart = inodePermEnd
	inodeLinksCountSize  = Size16
	inodeLinksCountEnd   = inodeLinksCountStart + inodeLinksCountSize

	// two bytes of padding before the 32-bit ids
	inodeUIDStart = inodeLinksCountEnd + 2
	inodeUIDSize  = Size32
	inodeUIDEnd   = inodeUIDStart + inodeUIDSize

	inodeGIDStart = inodeUIDEnd
	inodeGIDSize  = Size32
	inodeGIDEnd   = inodeGIDStart + inodeGIDSize

	inodeSizeStart = inodeGIDEnd
	inodeSizeSize  = Size64
	inodeSizeEnd   = inodeSizeStart + inodeSizeSize

	inodeBlocksStart = inodeSizeEnd
	inodeBlocksSize  = BlockPointerSize
	inodeBlocksEnd   = inodeBlocksStart + inodeBlocksSize

	inodeExtentsStart = inodeBlocksEnd
	inodeExtentsSize  = Size64
	inodeExtentsEnd   = inodeExtentsStart + inodeExtentsSize

	inodeATimeStart = inodeExtentsEnd
	inodeATimeSize  = Size64
	inodeATimeEnd   = inodeATimeStart + inodeATimeSize

	inodeMTimeStart = inodeATimeEnd
	inodeMTimeSize  = Size64
	inodeMTimeEnd   = inodeMTimeStart + inodeMTimeSize

	inodeCTimeStart = inodeMTimeEnd
	inodeCTimeSize  = Size64
	inodeCTimeEnd   = inodeCTimeStart + inodeCTimeSize
)

// ensure the layout fits in a record; this fails to compile otherwise
var _ [InodeSize - inodeCTimeEnd]struct{}
