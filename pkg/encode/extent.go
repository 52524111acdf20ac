package encode

import (
	. "github.com/weberc2/osfs/pkg/types"
)

func EncodeExtent(extent *Extent, b *[ExtentRecordSize]byte) {
	p := b[:]
	putBlock(p, extentStartStart, extent.Start)
	putBlock(p, extentLengthStart, extent.Length)
	putU64(p, extentNextStart, uint64(extent.Next))
}

func DecodeExtent(extent *Extent, b *[ExtentRecordSize]byte) {
	p := b[:]
	extent.Start = getBlock(p, extentStartStart)
	extent.Length = getBlock(p, extentLengthStart)
	extent.Next = ExtentID(getU64(p, extentNextStart))
}

const (
	extentStartStart = 0
	extentStartSize  = BlockPointerSize
	extentStartEnd   = extentStartStart + extentStartSize

	extentLengthStart = extentStartEnd
	extentLengthSize  = BlockPointerSize
	extentLengthEnd   = extentLengthStart + extentLengthSize

	extentNextStart = extentLengthEnd
	extentNextSize  = Size64
	extentNextEnd   = extentNextStart + extentNextSize
)

var _ [ExtentRecordSize - extentNextEnd]struct{}
