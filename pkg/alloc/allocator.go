package alloc

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	. "github.com/weberc2/osfs/pkg/types"
)

// Allocator owns the block and inode bitmaps of a volume along with their
// free counters. Every method holds the same mutex, so a find-and-mark
// sequence (`AllocRun`, `AllocIno`) is atomic with respect to every other
// allocation on the volume.
//
// Invariant: `FreeBlocks()` equals the number of clear bits in the block
// bitmap and `FreeInodes()` equals the number of clear bits in the inode
// bitmap. Ino 0 is permanently set.
type Allocator struct {
	Log logrus.FieldLogger

	mutex      sync.Mutex
	blocks     FlushableBitmap
	inodes     FlushableBitmap
	freeBlocks Block
	freeInodes Ino
}

// NewAllocator returns an allocator for an empty volume. Ino 0 is reserved.
// Both bitmaps start dirty since they have never been stored.
func NewAllocator(blockCount Block, inodeCount Ino) *Allocator {
	inodes := New(uint64(inodeCount))
	if inodeCount > 0 {
		inodes.Set(uint64(InoNil))
	}
	a := Allocator{
		blocks:     NewFlushable(New(uint64(blockCount)), nil),
		inodes:     NewFlushable(inodes, nil),
		freeBlocks: blockCount,
		freeInodes: Ino(inodes.CountClear()),
	}
	a.blocks.MarkDirty()
	a.inodes.MarkDirty()
	return &a
}

// LoadAllocator wraps bitmaps read back from a volume, recomputing the free
// counters from the bitmaps themselves.
func LoadAllocator(blocks, inodes Bitmap) (*Allocator, error) {
	if inodes.Len() == 0 || !inodes.Test(uint64(InoNil)) {
		return nil, fmt.Errorf(
			"loading allocator: reserved ino `%d` is not marked used: %w",
			InoNil,
			CorruptBitmapErr,
		)
	}
	return &Allocator{
		blocks:     NewFlushable(blocks, nil),
		inodes:     NewFlushable(inodes, nil),
		freeBlocks: Block(blocks.CountClear()),
		freeInodes: Ino(inodes.CountClear()),
	}, nil
}

// SetStores attaches the stores that `Flush` writes to.
func (a *Allocator) SetStores(blocks, inodes BitmapStore) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.blocks.SetStore(blocks)
	a.inodes.SetStore(inodes)
}

func (a *Allocator) BlockCount() Block { return Block(a.blocks.bitmap.Len()) }

func (a *Allocator) InodeCount() Ino { return Ino(a.inodes.bitmap.Len()) }

func (a *Allocator) FreeBlocks() Block {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.freeBlocks
}

func (a *Allocator) FreeInodes() Ino {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.freeInodes
}

// Flush writes any dirty bitmaps to their stores.
func (a *Allocator) Flush() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if err := a.blocks.Flush(); err != nil {
		return fmt.Errorf("flushing block bitmap: %w", err)
	}
	if err := a.inodes.Flush(); err != nil {
		return fmt.Errorf("flushing inode bitmap: %w", err)
	}
	return nil
}

func (a *Allocator) logger() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

const (
	CorruptBitmapErr ConstError = "corrupt bitmap"
)
