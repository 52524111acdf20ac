package file

import (
	"fmt"

	"github.com/weberc2/osfs/pkg/directory"
	. "github.com/weberc2/osfs/pkg/types"
)

type FileSystem = directory.FileSystem

type Handle struct {
	ino Ino
}

// Open returns a handle for reading and writing the regular file or symlink
// `ino`. Directories are rejected with `IsADirErr`.
func Open(fs *FileSystem, ino Ino) (Handle, error) {
	inode, err := fs.Inodes.Get(ino)
	if err != nil {
		return Handle{}, fmt.Errorf("opening inode `%d` as file: %w", ino, err)
	}

	fs.Inodes.Lock(ino)
	ft := inode.Mode.Type
	fs.Inodes.Unlock(ino)

	switch ft {
	case FileTypeRegular, FileTypeSymlink:
		return Handle{ino}, nil
	case FileTypeDir:
		return Handle{}, fmt.Errorf("opening inode `%d` as file: %w", ino, IsADirErr)
	default:
		return Handle{}, fmt.Errorf(
			"opening inode `%d` as file: %w",
			ino,
			NotARegularFileErr,
		)
	}
}

// Read copies up to `len(b)` bytes from offset `offset`, never past the end
// of the file. It returns `0` at or past the end of the file.
func Read(fs *FileSystem, h Handle, offset Byte, b []byte) (Byte, error) {
	inode, err := fs.Inodes.Get(h.ino)
	if err != nil {
		return 0, fmt.Errorf("reading data from file `%d`: %w", h.ino, err)
	}

	fs.Inodes.Lock(h.ino)
	defer fs.Inodes.Unlock(h.ino)

	n, err := fs.ReadWriter.Read(inode, offset, b)
	if err != nil {
		return n, fmt.Errorf("reading data from file `%d`: %w", h.ino, err)
	}
	return n, nil
}

// Write copies `b` into the file at `offset`, growing the file's extent
// chain as needed. On failure it returns the number of bytes that were
// written before the failure; the file's size reflects them.
func Write(fs *FileSystem, h Handle, offset Byte, b []byte) (Byte, error) {
	inode, err := fs.Inodes.Get(h.ino)
	if err != nil {
		return 0, fmt.Errorf("writing data to file `%d`: %w", h.ino, err)
	}

	fs.Inodes.Lock(h.ino)
	defer fs.Inodes.Unlock(h.ino)

	n, err := fs.ReadWriter.Write(inode, offset, b)
	if n > 0 {
		fs.Inodes.MarkDirty(h.ino)
	}
	if err != nil {
		return n, fmt.Errorf("writing data to file `%d`: %w", h.ino, err)
	}
	return n, nil
}

// Stat returns a snapshot of the file's inode.
func Stat(fs *FileSystem, h Handle) (Inode, error) {
	inode, err := fs.Inodes.Get(h.ino)
	if err != nil {
		return Inode{}, fmt.Errorf("stating file `%d`: %w", h.ino, err)
	}
	fs.Inodes.Lock(h.ino)
	defer fs.Inodes.Unlock(h.ino)
	return *inode, nil
}

var (
	NotARegularFileErr = &Error{Kind: InvalidArgumentErr, Message: "not a regular file"}
)
