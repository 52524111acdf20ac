package directory

import (
	"fmt"

	"github.com/weberc2/osfs/pkg/encode"
	. "github.com/weberc2/osfs/pkg/types"
)

// Slots are packed `DirEntriesPerBlock` to a block; the remainder of each
// block is unused. Slot `i` therefore lives in logical block
// `i/DirEntriesPerBlock`.
func slotOffset(slot uint64) Byte {
	perBlock := uint64(DirEntriesPerBlock)
	return Byte(slot/perBlock)*BlockSize +
		Byte(slot%perBlock)*DirEntrySize
}

func slotCount(dir *Inode) uint64 {
	return uint64(dir.Blocks) * uint64(DirEntriesPerBlock)
}

func readSlot(fs *FileSystem, dir *Inode, slot uint64, out *DirEntry) error {
	buf := new([DirEntrySize]byte)
	offset := slotOffset(slot)
	n, err := fs.ReadWriter.ReadRaw(dir, offset, buf[:])
	if err != nil {
		return fmt.Errorf(
			"reading slot `%d` of dir `%d`: %w",
			slot,
			dir.Ino,
			err,
		)
	}
	if n != DirEntrySize {
		return fmt.Errorf(
			"reading slot `%d` of dir `%d`: chain ends at offset `%d`: %w",
			slot,
			dir.Ino,
			offset+n,
			InvalidRangeErr,
		)
	}
	encode.DecodeDirEntry(out, buf)
	return nil
}

func writeSlot(fs *FileSystem, dir *Inode, slot uint64, entry *DirEntry) error {
	buf := new([DirEntrySize]byte)
	encode.EncodeDirEntry(entry, buf)
	offset := slotOffset(slot)
	n, err := fs.ReadWriter.WriteRaw(dir, offset, buf[:])
	if err != nil {
		return fmt.Errorf(
			"writing slot `%d` of dir `%d`: %w",
			slot,
			dir.Ino,
			err,
		)
	}
	if n != DirEntrySize {
		return fmt.Errorf(
			"writing slot `%d` of dir `%d`: chain ends at offset `%d`: %w",
			slot,
			dir.Ino,
			offset+n,
			InvalidRangeErr,
		)
	}
	return nil
}

// scan visits slots `[start, slotCount)` in order, stopping when `fn`
// returns `true`. It returns the slot `fn` stopped at, or `slotCount` if it
// ran off the end.
func scan(
	fs *FileSystem,
	dir *Inode,
	start uint64,
	fn func(slot uint64, entry *DirEntry) bool,
) (uint64, error) {
	count := slotCount(dir)
	var entry DirEntry
	for slot := start; slot < count; slot++ {
		if err := readSlot(fs, dir, slot, &entry); err != nil {
			return slot, err
		}
		if fn(slot, &entry) {
			return slot, nil
		}
	}
	return count, nil
}
