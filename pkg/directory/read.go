package directory

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	. "github.com/weberc2/osfs/pkg/types"
)

// ReadNext fills `info` with the next non-empty slot at or after the
// handle's position and advances the handle past it. It returns `io.EOF`
// once every slot has been visited.
func ReadNext(fs *FileSystem, handle *Handle, info *FileInfo) error {
	dir, err := lockDir(fs, handle.ino)
	if err != nil {
		return fmt.Errorf(
			"reading entry from `%d` at slot `%d`: %w",
			handle.ino,
			handle.pos,
			err,
		)
	}

	var entry DirEntry
	slot, err := scan(fs, dir, handle.pos, func(_ uint64, e *DirEntry) bool {
		if e.Empty() {
			return false
		}
		entry = *e
		return true
	})
	count := slotCount(dir)
	fs.Inodes.Unlock(handle.ino)

	if err != nil {
		return fmt.Errorf(
			"reading entry from `%d` at slot `%d`: %w",
			handle.ino,
			handle.pos,
			err,
		)
	}
	if slot >= count {
		if handle.pos < count {
			handle.pos = count
		}
		return io.EOF
	}

	handle.pos = slot + 1
	info.Ino = entry.Ino
	info.Name = entry.Name
	info.FileType = fileType(fs, handle.ino, entry.Ino)
	return nil
}

// List returns every entry of the directory `ino` in slot order.
func List(fs *FileSystem, ino Ino) ([]FileInfo, error) {
	var h Handle
	if err := Open(fs, ino, &h); err != nil {
		return nil, fmt.Errorf("listing dir `%d`: %w", ino, err)
	}

	var infos []FileInfo
	for {
		var info FileInfo
		if err := ReadNext(fs, &h, &info); err != nil {
			if err == io.EOF {
				return infos, nil
			}
			return nil, fmt.Errorf("listing dir `%d`: %w", ino, err)
		}
		infos = append(infos, info)
	}
}

// fileType fetches the type of the inode an entry points at. It is called
// without the directory's lock held so that an entry naming its own
// directory cannot deadlock.
func fileType(fs *FileSystem, dirIno, ino Ino) FileType {
	inode, err := fs.Inodes.Get(ino)
	if err != nil {
		fs.Log.WithError(err).WithFields(logrus.Fields{
			"dir": dirIno,
			"ino": ino,
		}).Warn("dir entry points at an unusable inode")
		return FileTypeInvalid
	}
	fs.Inodes.Lock(ino)
	defer fs.Inodes.Unlock(ino)
	return inode.Mode.Type
}
