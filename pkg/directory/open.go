package directory

import (
	"fmt"

	. "github.com/weberc2/osfs/pkg/types"
)

// Handle is a resumable position within a directory. The position counts
// slots visited from the start of the directory's chain, whether or not they
// held an entry, so resuming never depends on how many slots were empty.
type Handle struct {
	ino Ino
	pos uint64
}

// Pos returns the slot index the next `ReadNext` will start scanning from.
func (h *Handle) Pos() uint64 { return h.pos }

func Open(fs *FileSystem, ino Ino, h *Handle) error {
	return OpenAt(fs, ino, 0, h)
}

// OpenAt opens `ino` for iteration starting at slot `pos`, typically a value
// previously returned by `Handle.Pos`.
func OpenAt(fs *FileSystem, ino Ino, pos uint64, h *Handle) error {
	dir, err := fs.Inodes.Get(ino)
	if err != nil {
		return fmt.Errorf("opening inode `%d` as directory: %w", ino, err)
	}

	fs.Inodes.Lock(ino)
	isDir := dir.IsDir()
	fs.Inodes.Unlock(ino)
	if !isDir {
		return fmt.Errorf(
			"opening inode `%d` as directory: %w",
			ino,
			NotADirErr,
		)
	}

	*h = Handle{ino: ino, pos: pos}
	return nil
}

// lockDir fetches `ino`, locks it, and checks that it is a directory. On
// success the caller must unlock `ino`.
func lockDir(fs *FileSystem, ino Ino) (*Inode, error) {
	dir, err := fs.Inodes.Get(ino)
	if err != nil {
		return nil, err
	}
	fs.Inodes.Lock(ino)
	if !dir.IsDir() {
		fs.Inodes.Unlock(ino)
		return nil, fmt.Errorf("inode `%d`: %w", ino, NotADirErr)
	}
	return dir, nil
}
