package io

import (
	"fmt"
	"io"
	"os"

	. "github.com/weberc2/osfs/pkg/types"
)

// FileVolume is a volume backed by a regular file (a disk image).
type FileVolume struct {
	file *os.File
}

// OpenFileVolume opens an existing image for reading and writing.
func OpenFileVolume(path string) (*FileVolume, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening volume `%s`: %w", path, err)
	}
	return &FileVolume{f}, nil
}

// CreateFileVolume creates (or truncates) an image of exactly `size` bytes.
func CreateFileVolume(path string, size Byte) (*FileVolume, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating volume `%s`: %w", path, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, fmt.Errorf(
			"creating volume `%s`: truncating to `%d` bytes: %w",
			path,
			size,
			err,
		)
	}
	return &FileVolume{f}, nil
}

// CreateTempFileVolume creates an empty image in `dir`, named after
// `pattern` as `os.CreateTemp` does. Callers move it into place once it is
// complete.
func CreateTempFileVolume(dir, pattern string) (*FileVolume, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating temporary volume in `%s`: %w", dir, err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf(
			"creating temporary volume `%s`: %w",
			f.Name(),
			err,
		)
	}
	return &FileVolume{f}, nil
}

func (volume *FileVolume) ReadAt(offset Byte, b []byte) error {
	if _, err := volume.file.ReadAt(b, int64(offset)); err != nil {
		return fmt.Errorf(
			"reading file `%s` at offset `%d`: %w",
			volume.file.Name(),
			offset,
			err,
		)
	}
	return nil
}

func (volume *FileVolume) WriteAt(offset Byte, b []byte) error {
	if _, err := volume.file.WriteAt(b, int64(offset)); err != nil {
		return fmt.Errorf(
			"writing file `%s` at offset `%d`: %w",
			volume.file.Name(),
			offset,
			err,
		)
	}
	return nil
}

func (volume *FileVolume) Name() string { return volume.file.Name() }

func (volume *FileVolume) Sync() error { return volume.file.Sync() }

func (volume *FileVolume) Close() error { return volume.file.Close() }

// Section returns a seekable reader over the first `size` bytes of `volume`.
func Section(volume ReadAt, size Byte) *io.SectionReader {
	return io.NewSectionReader(readerAt{volume}, 0, int64(size))
}

type readerAt struct {
	inner ReadAt
}

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	if err := r.inner.ReadAt(Byte(off), p); err != nil {
		return 0, err
	}
	return len(p), nil
}
