package filesystem

import (
	"errors"
	"fmt"

	"github.com/weberc2/osfs/pkg/directory"
	"github.com/weberc2/osfs/pkg/file"
	. "github.com/weberc2/osfs/pkg/types"
)

// MakeDir creates the directory `path`. Its parent must already exist.
func MakeDir(fs *FileSystem, path string, perm uint16) (Ino, error) {
	return create(fs, path, Mode{Type: FileTypeDir, Perm: perm})
}

// MakeFile creates the empty regular file `path`. Its parent must already
// exist.
func MakeFile(fs *FileSystem, path string, perm uint16) (Ino, error) {
	return create(fs, path, Mode{Type: FileTypeRegular, Perm: perm})
}

func create(fs *FileSystem, path string, mode Mode) (Ino, error) {
	parent, name, err := lookupParent(fs, path)
	if err != nil {
		return 0, fmt.Errorf("creating `%s`: %w", path, err)
	}
	inode, err := directory.Create(fs, parent, name, mode)
	if err != nil {
		return 0, fmt.Errorf("creating `%s`: %w", path, err)
	}
	return inode.Ino, nil
}

// WriteFile writes `data` at the start of the regular file `path`, creating
// it with `PermDefaultFile` if it does not exist. Bytes past `len(data)` in
// an existing file are left alone.
func WriteFile(fs *FileSystem, path string, data []byte) (Byte, error) {
	var info FileInfo
	err := Lookup(fs, path, &info)
	if errors.Is(err, EntryNotFoundErr) {
		info.Ino, err = MakeFile(fs, path, PermDefaultFile)
	}
	if err != nil {
		return 0, fmt.Errorf("writing file `%s`: %w", path, err)
	}

	h, err := file.Open(fs, info.Ino)
	if err != nil {
		return 0, fmt.Errorf("writing file `%s`: %w", path, err)
	}
	n, err := file.Write(fs, h, 0, data)
	if err != nil {
		return n, fmt.Errorf("writing file `%s`: %w", path, err)
	}
	return n, nil
}

// ReadFile returns the whole contents of the regular file `path`.
func ReadFile(fs *FileSystem, path string) ([]byte, error) {
	var info FileInfo
	if err := Lookup(fs, path, &info); err != nil {
		return nil, fmt.Errorf("reading file `%s`: %w", path, err)
	}
	h, err := file.Open(fs, info.Ino)
	if err != nil {
		return nil, fmt.Errorf("reading file `%s`: %w", path, err)
	}
	inode, err := file.Stat(fs, h)
	if err != nil {
		return nil, fmt.Errorf("reading file `%s`: %w", path, err)
	}

	data := make([]byte, inode.Size)
	n, err := file.Read(fs, h, 0, data)
	if err != nil {
		return nil, fmt.Errorf("reading file `%s`: %w", path, err)
	}
	return data[:n], nil
}

// Stat returns a snapshot of the inode at `path`.
func Stat(fs *FileSystem, path string) (Inode, error) {
	var info FileInfo
	if err := Lookup(fs, path, &info); err != nil {
		return Inode{}, fmt.Errorf("stating `%s`: %w", path, err)
	}
	inode, err := fs.Inodes.Get(info.Ino)
	if err != nil {
		return Inode{}, fmt.Errorf("stating `%s`: %w", path, err)
	}
	fs.Inodes.Lock(info.Ino)
	defer fs.Inodes.Unlock(info.Ino)
	return *inode, nil
}

// ReadDir lists the entries of the directory at `path`.
func ReadDir(fs *FileSystem, path string) ([]FileInfo, error) {
	var info FileInfo
	if err := Lookup(fs, path, &info); err != nil {
		return nil, fmt.Errorf("listing `%s`: %w", path, err)
	}
	entries, err := directory.List(fs, info.Ino)
	if err != nil {
		return nil, fmt.Errorf("listing `%s`: %w", path, err)
	}
	return entries, nil
}
