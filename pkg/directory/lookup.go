package directory

import (
	"fmt"

	. "github.com/weberc2/osfs/pkg/types"
)

// Lookup scans the slots of `dirIno` in order and fills `out` with the first
// entry whose name equals `name` exactly. Empty slots are skipped. A miss
// fails with `EntryNotFoundErr`, including names that `Insert` would never
// have accepted.
func Lookup(fs *FileSystem, dirIno Ino, name string, out *FileInfo) error {
	if ValidateName(name) != nil {
		return fmt.Errorf(
			"looking up `%s` in dir `%d`: %w",
			name,
			dirIno,
			EntryNotFoundErr,
		)
	}

	dir, err := lockDir(fs, dirIno)
	if err != nil {
		return fmt.Errorf("looking up `%s` in dir `%d`: %w", name, dirIno, err)
	}

	var entry DirEntry
	slot, err := scan(fs, dir, 0, func(_ uint64, e *DirEntry) bool {
		if !e.Empty() && e.Name == name {
			entry = *e
			return true
		}
		return false
	})
	count := slotCount(dir)
	fs.Inodes.Unlock(dirIno)

	if err != nil {
		return fmt.Errorf("looking up `%s` in dir `%d`: %w", name, dirIno, err)
	}
	if slot >= count {
		return fmt.Errorf(
			"looking up `%s` in dir `%d`: %w",
			name,
			dirIno,
			EntryNotFoundErr,
		)
	}

	*out = FileInfo{
		Ino:      entry.Ino,
		Name:     entry.Name,
		FileType: fileType(fs, dirIno, entry.Ino),
	}
	return nil
}
