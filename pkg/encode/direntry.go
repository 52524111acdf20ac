package encode

import (
	. "github.com/weberc2/osfs/pkg/types"
)

// EncodeDirEntry writes a fixed-size slot. Names longer than `MaxNameLen`
// must be rejected by the caller; they are truncated here.
func EncodeDirEntry(entry *DirEntry, b *[DirEntrySize]byte) {
	p := b[:]
	name := entry.Name
	if Byte(len(name)) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	putString(p, dirEntryNameStart, dirEntryNameSize, name)
	putIno(p, dirEntryInoStart, entry.Ino)
}

func DecodeDirEntry(entry *DirEntry, b *[DirEntrySize]byte) {
	p := b[:]
	entry.Name = getString(p, dirEntryNameStart, MaxNameLen)
	entry.Ino = getIno(p, dirEntryInoStart)
}

const (
	dirEntryNameStart = 0
	dirEntryNameSize  = DirEntryNameSize
	dirEntryNameEnd   = dirEntryNameStart + dirEntryNameSize

	dirEntryInoStart = dirEntryNameEnd
	dirEntryInoSize  = InoSize
	dirEntryInoEnd   = dirEntryInoStart + dirEntryInoSize
)

var _ [DirEntrySize - dirEntryInoEnd]struct{}
