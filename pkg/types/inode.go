package types

import (
	"fmt"
	"time"
)

type Ino uint64

const (
	InodeSize Byte = 128
	InoSize   Byte = Size64
	InoNil    Ino  = 0
	InoRoot   Ino  = 1
)

type Inode struct {
	Ino        Ino
	Mode       Mode
	UID        uint32
	GID        uint32
	LinksCount uint16
	Size       Byte
	Blocks     Block
	Extents    ExtentID
	ATime      time.Time
	MTime      time.Time
	CTime      time.Time
}

func (inode *Inode) IsDir() bool { return inode.Mode.Type == FileTypeDir }

// Touch sets the modification and change times to `now`.
func (inode *Inode) Touch(now time.Time) {
	inode.MTime = now
	inode.CTime = now
}

// Mode is an inode's file type plus its permission bits.
type Mode struct {
	Type FileType
	Perm uint16
}

const (
	PermDefaultDir  uint16 = 0o755
	PermDefaultFile uint16 = 0o644
)

func (m Mode) String() string {
	return fmt.Sprintf("%s:%04o", m.Type, m.Perm)
}

type FileType uint8

const (
	FileTypeInvalid FileType = iota
	FileTypeRegular
	FileTypeDir
	FileTypeCharDev
	FileTypeBlockDev
	FileTypeFifo
	FileTypeSocket
	FileTypeSymlink
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeInvalid:
		return "Invalid"
	case FileTypeRegular:
		return "Regular"
	case FileTypeDir:
		return "Dir"
	case FileTypeCharDev:
		return "CharDev"
	case FileTypeBlockDev:
		return "BlockDev"
	case FileTypeFifo:
		return "Fifo"
	case FileTypeSocket:
		return "Socket"
	case FileTypeSymlink:
		return "Symlink"
	default:
		return fmt.Sprintf("FileType(%d)", uint8(ft))
	}
}

func (ft FileType) MarshalJSON() ([]byte, error) {
	s := ft.String()
	out := make([]byte, len(s)+2)
	out[0] = '"'
	out[len(out)-1] = '"'
	copy(out[1:], s)
	return out, nil
}

// Validate checks that `ft` is a type the engine can create: a directory, a
// regular file, or a symlink.
func (ft FileType) Validate() error {
	switch ft {
	case FileTypeRegular, FileTypeDir, FileTypeSymlink:
		return nil
	default:
		return fmt.Errorf(
			"validating file type `%s`: %w",
			ft,
			UnsupportedModeErr,
		)
	}
}

// InodeStore persists inode records by ino.
type InodeStore interface {
	Put(inode *Inode) error
	Get(ino Ino, output *Inode) error
}
