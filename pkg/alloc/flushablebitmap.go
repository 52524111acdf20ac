package alloc

import "fmt"

type BitmapStore interface {
	Put(Bitmap) error
}

// FlushableBitmap tracks whether a bitmap has changed since it was last
// written to its store. It does no locking of its own; the `Allocator` that
// owns it serializes access.
type FlushableBitmap struct {
	bitmap Bitmap
	store  BitmapStore
	dirty  bool
}

func NewFlushable(bitmap Bitmap, store BitmapStore) FlushableBitmap {
	return FlushableBitmap{bitmap: bitmap, store: store}
}

func (bitmap *FlushableBitmap) Set(i uint64) {
	bitmap.bitmap.Set(i)
	bitmap.dirty = true
}

func (bitmap *FlushableBitmap) Clear(i uint64) {
	bitmap.bitmap.Clear(i)
	bitmap.dirty = true
}

func (bitmap *FlushableBitmap) Test(i uint64) bool { return bitmap.bitmap.Test(i) }

func (bitmap *FlushableBitmap) Bitmap() Bitmap { return bitmap.bitmap }

func (bitmap *FlushableBitmap) SetStore(store BitmapStore) {
	bitmap.store = store
}

func (bitmap *FlushableBitmap) MarkDirty() { bitmap.dirty = true }

func (bitmap *FlushableBitmap) Flush() error {
	if bitmap.dirty && bitmap.store != nil {
		if err := bitmap.store.Put(bitmap.bitmap); err != nil {
			return fmt.Errorf("flushing bitmap: %w", err)
		}
		bitmap.dirty = false
	}
	return nil
}
