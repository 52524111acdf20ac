package alloc

import (
	"fmt"

	. "github.com/weberc2/osfs/pkg/types"
)

// AllocIno claims the lowest free ino, scanning from `InoRoot`.
func (a *Allocator) AllocIno() (Ino, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	i, ok := a.inodes.bitmap.FirstClearFrom(uint64(InoRoot))
	if !ok {
		a.logger().WithField("inodeCount", a.inodes.bitmap.Len()).
			Warn("no free inode")
		return InoNil, fmt.Errorf("allocating ino: %w", OutOfInodesErr)
	}
	a.inodes.Set(i)
	a.freeInodes--
	return Ino(i), nil
}

// FreeIno returns `ino` to the free pool. Freeing a free ino is a no-op.
func (a *Allocator) FreeIno(ino Ino) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if ino == InoNil || uint64(ino) >= a.inodes.bitmap.Len() {
		return fmt.Errorf("freeing ino `%d`: %w", ino, InoOutOfRangeErr)
	}
	if a.inodes.bitmap.Test(uint64(ino)) {
		a.inodes.Clear(uint64(ino))
		a.freeInodes++
	}
	return nil
}

// InoAllocated reports whether `ino` is marked used. Ino 0 and out-of-range
// inos report `false`.
func (a *Allocator) InoAllocated(ino Ino) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if ino == InoNil || uint64(ino) >= a.inodes.bitmap.Len() {
		return false
	}
	return a.inodes.bitmap.Test(uint64(ino))
}
