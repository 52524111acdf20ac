package store

import (
	"fmt"

	"github.com/weberc2/osfs/pkg/encode"
	"github.com/weberc2/osfs/pkg/io"
	. "github.com/weberc2/osfs/pkg/types"
)

var _ InodeStore = VolumeInodeStore{}

// VolumeInodeStore keeps one `InodeSize` record per ino in `volume`, record
// `ino` starting at `ino*InodeSize`. Record 0 is never written.
type VolumeInodeStore struct {
	volume io.Volume
	count  Ino
}

func NewVolumeInodeStore(volume io.Volume, count Ino) VolumeInodeStore {
	return VolumeInodeStore{volume: volume, count: count}
}

func (store VolumeInodeStore) offset(ino Ino) (Byte, error) {
	if ino == InoNil || ino >= store.count {
		return 0, fmt.Errorf(
			"ino `%d` outside table of `%d`: %w",
			ino,
			store.count,
			InoOutOfRangeErr,
		)
	}
	return Byte(ino) * InodeSize, nil
}

func (store VolumeInodeStore) Put(inode *Inode) error {
	offset, err := store.offset(inode.Ino)
	if err != nil {
		return fmt.Errorf("storing inode: %w", err)
	}
	var record [InodeSize]byte
	encode.EncodeInode(inode, &record)
	if err := store.volume.WriteAt(offset, record[:]); err != nil {
		return fmt.Errorf("storing inode `%d`: %w", inode.Ino, err)
	}
	return nil
}

// Get decodes the record for `ino` into `output`. The record's type is not
// checked here; the inode table does that when it loads.
func (store VolumeInodeStore) Get(ino Ino, output *Inode) error {
	offset, err := store.offset(ino)
	if err != nil {
		return fmt.Errorf("loading inode: %w", err)
	}
	var record [InodeSize]byte
	if err := store.volume.ReadAt(offset, record[:]); err != nil {
		return fmt.Errorf("loading inode `%d`: %w", ino, err)
	}
	encode.DecodeInode(output, &record)
	output.Ino = ino
	return nil
}
