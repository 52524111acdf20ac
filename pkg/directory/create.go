package directory

import (
	"fmt"

	. "github.com/weberc2/osfs/pkg/types"
)

// Create makes a new inode of the given mode and links it into `dirIno`
// under `name`. If the entry cannot be inserted the new inode is torn down
// again, so a failed create leaves no allocation behind.
func Create(
	fs *FileSystem,
	dirIno Ino,
	name string,
	mode Mode,
) (*Inode, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf(
			"creating `%s` in dir `%d`: %w",
			name,
			dirIno,
			err,
		)
	}
	if err := mode.Type.Validate(); err != nil {
		return nil, fmt.Errorf(
			"creating `%s` in dir `%d`: %w",
			name,
			dirIno,
			err,
		)
	}
	if _, err := lockDir(fs, dirIno); err != nil {
		return nil, fmt.Errorf(
			"creating `%s` in dir `%d`: %w",
			name,
			dirIno,
			err,
		)
	}
	fs.Inodes.Unlock(dirIno)

	child, err := fs.Inodes.NewInode(mode)
	if err != nil {
		return nil, fmt.Errorf(
			"creating `%s` in dir `%d`: %w",
			name,
			dirIno,
			err,
		)
	}

	if err := Insert(fs, dirIno, name, child.Ino); err != nil {
		fs.Inodes.Lock(child.Ino)
		discardErr := fs.Inodes.Discard(child)
		fs.Inodes.Unlock(child.Ino)
		if discardErr != nil {
			fs.Log.WithError(discardErr).WithField("ino", child.Ino).
				Error("discarding inode after failed insert")
		}
		return nil, fmt.Errorf(
			"creating `%s` in dir `%d`: %w",
			name,
			dirIno,
			err,
		)
	}

	fs.Log.WithField("dir", dirIno).WithField("name", name).
		WithField("ino", child.Ino).Debug("created entry")
	return child, nil
}
