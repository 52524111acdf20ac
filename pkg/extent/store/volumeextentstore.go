package store

import (
	"fmt"

	"github.com/weberc2/osfs/pkg/encode"
	"github.com/weberc2/osfs/pkg/extent"
	"github.com/weberc2/osfs/pkg/io"
	. "github.com/weberc2/osfs/pkg/types"
)

var _ extent.RecordStore = VolumeExtentStore{}

// VolumeExtentStore persists extent records at `(id-1)*ExtentRecordSize`
// within `volume`.
type VolumeExtentStore struct {
	volume io.Volume
}

func NewVolumeExtentStore(volume io.Volume) VolumeExtentStore {
	return VolumeExtentStore{volume}
}

func (store VolumeExtentStore) Put(id ExtentID, e *Extent) error {
	buf := new([ExtentRecordSize]byte)
	encode.EncodeExtent(e, buf)
	offset := Byte(id-1) * ExtentRecordSize
	if err := store.volume.WriteAt(offset, buf[:]); err != nil {
		return fmt.Errorf(
			"writing extent `%d` to volume at offset `%d`: %w",
			id,
			offset,
			err,
		)
	}
	return nil
}

// GetAll reads `count` consecutive records starting at ID 1.
func (store VolumeExtentStore) GetAll(count uint64) ([]Extent, error) {
	data := make([]byte, Byte(count)*ExtentRecordSize)
	if err := store.volume.ReadAt(0, data); err != nil {
		return nil, fmt.Errorf("reading `%d` extent records: %w", count, err)
	}
	records := make([]Extent, count)
	for i := range records {
		encode.DecodeExtent(
			&records[i],
			(*[ExtentRecordSize]byte)(data[Byte(i)*ExtentRecordSize:]),
		)
	}
	return records, nil
}
