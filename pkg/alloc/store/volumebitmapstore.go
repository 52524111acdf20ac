package store

import (
	"fmt"

	"github.com/weberc2/osfs/pkg/alloc"
	"github.com/weberc2/osfs/pkg/io"
)

var _ alloc.BitmapStore = VolumeBitmapStore{}

// VolumeBitmapStore persists a bitmap's bytes at offset zero of `volume`,
// which is typically an `io.OffsetVolume` positioned at the bitmap's region.
type VolumeBitmapStore struct {
	volume io.Volume
}

func NewVolumeBitmapStore(volume io.Volume) VolumeBitmapStore {
	return VolumeBitmapStore{volume}
}

func (store VolumeBitmapStore) Put(bitmap alloc.Bitmap) error {
	if err := store.volume.WriteAt(0, bitmap.Bytes()); err != nil {
		return fmt.Errorf("storing bitmap: %w", err)
	}
	return nil
}

// Get reads a bitmap of `bits` bits back from the volume.
func (store VolumeBitmapStore) Get(bits uint64) (alloc.Bitmap, error) {
	bitmap := alloc.New(bits)
	if err := store.volume.ReadAt(0, bitmap.Bytes()); err != nil {
		return alloc.Bitmap{}, fmt.Errorf("loading bitmap: %w", err)
	}
	return bitmap, nil
}
