package directory

import (
	"fmt"

	"github.com/sirupsen/logrus"
	. "github.com/weberc2/osfs/pkg/types"
)

// Insert adds the entry `name -> ino` to `dirIno`. The entry takes the
// first empty slot; if there is none the directory grows by one zeroed block
// and the entry takes that block's first slot. The directory's size grows by
// one slot either way. Names are validated and duplicates rejected before
// anything is modified.
func Insert(fs *FileSystem, dirIno Ino, name string, ino Ino) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf(
			"inserting inode `%d` into dir `%d` with name `%s`: %w",
			ino,
			dirIno,
			name,
			err,
		)
	}
	if ino == InoNil {
		return fmt.Errorf(
			"inserting inode `%d` into dir `%d` with name `%s`: %w",
			ino,
			dirIno,
			name,
			InvalidRangeErr,
		)
	}

	dir, err := lockDir(fs, dirIno)
	if err != nil {
		return fmt.Errorf(
			"inserting inode `%d` into dir `%d` with name `%s`: %w",
			ino,
			dirIno,
			name,
			err,
		)
	}
	defer fs.Inodes.Unlock(dirIno)

	if err := insert(fs, dir, name, ino); err != nil {
		return fmt.Errorf(
			"inserting inode `%d` into dir `%d` with name `%s`: %w",
			ino,
			dirIno,
			name,
			err,
		)
	}
	return nil
}

// insert does the work of `Insert`; the caller holds `dir`'s lock.
func insert(fs *FileSystem, dir *Inode, name string, ino Ino) error {
	empty := uint64(0)
	haveEmpty, exists := false, false
	if _, err := scan(fs, dir, 0, func(slot uint64, e *DirEntry) bool {
		if e.Empty() {
			if !haveEmpty {
				empty, haveEmpty = slot, true
			}
			return false
		}
		if e.Name == name {
			exists = true
			return true
		}
		return false
	}); err != nil {
		return err
	}
	if exists {
		return EntryExistsErr
	}

	if !haveEmpty {
		empty = slotCount(dir)
		e, err := fs.Extents.Grow(dir, 1)
		if err != nil {
			return fmt.Errorf("growing directory: %w", err)
		}
		if err := fs.ReadWriter.Zero(&e); err != nil {
			return fmt.Errorf("growing directory: %w", err)
		}
		fs.Log.WithFields(logrus.Fields{
			"dir":   dir.Ino,
			"block": e.Start,
		}).Debug("grew directory")
	}

	if err := writeSlot(fs, dir, empty, &DirEntry{
		Name: name,
		Ino:  ino,
	}); err != nil {
		return err
	}

	dir.Size += DirEntrySize
	dir.Touch(fs.ReadWriter.Now().UTC())
	fs.Inodes.MarkDirty(dir.Ino)
	return nil
}
