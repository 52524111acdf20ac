package alloc

import (
	"fmt"

	"github.com/sirupsen/logrus"
	. "github.com/weberc2/osfs/pkg/types"
)

// IsRangeFree reports whether every block in `[start, start+length)` is
// free. Ranges that extend past the end of the volume are never free.
func (a *Allocator) IsRangeFree(start, length Block) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.blocks.bitmap.IsRangeClear(uint64(start), uint64(length))
}

// FindFreeRun returns the first block `start` such that `length` blocks
// beginning at `start` are free. Nothing is marked.
func (a *Allocator) FindFreeRun(length Block) (Block, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.findFreeRun(length)
}

// AllocRun finds the first free run of `length` blocks and marks it used
// under a single acquisition of the allocator lock.
func (a *Allocator) AllocRun(length Block) (Block, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	start, err := a.findFreeRun(length)
	if err != nil {
		return 0, err
	}
	a.markUsed(start, length)
	return start, nil
}

// MarkUsed sets the bits for `[start, start+length)`. Only bits that were
// clear move the free counter.
func (a *Allocator) MarkUsed(start, length Block) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if err := a.checkRange(start, length); err != nil {
		return fmt.Errorf("marking blocks used: %w", err)
	}
	a.markUsed(start, length)
	return nil
}

// MarkFree clears the bits for `[start, start+length)`. Only bits that were
// set move the free counter.
func (a *Allocator) MarkFree(start, length Block) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if err := a.checkRange(start, length); err != nil {
		return fmt.Errorf("marking blocks free: %w", err)
	}
	for b := start; b < start+length; b++ {
		if a.blocks.bitmap.Test(uint64(b)) {
			a.blocks.Clear(uint64(b))
			a.freeBlocks++
		}
	}
	return nil
}

func (a *Allocator) findFreeRun(length Block) (Block, error) {
	if length == 0 {
		return 0, fmt.Errorf(
			"finding free run of `%d` blocks: %w",
			length,
			InvalidRangeErr,
		)
	}
	if length <= a.freeBlocks {
		if start, ok := a.blocks.bitmap.FirstClearRun(
			uint64(length),
		); ok {
			return Block(start), nil
		}
	}
	a.logger().WithFields(logrus.Fields{
		"length":     length,
		"freeBlocks": a.freeBlocks,
	}).Warn("no free block run")
	return 0, fmt.Errorf(
		"finding free run of `%d` blocks: %w",
		length,
		OutOfBlocksErr,
	)
}

func (a *Allocator) markUsed(start, length Block) {
	for b := start; b < start+length; b++ {
		if !a.blocks.bitmap.Test(uint64(b)) {
			a.blocks.Set(uint64(b))
			a.freeBlocks--
		}
	}
}

func (a *Allocator) checkRange(start, length Block) error {
	count := Block(a.blocks.bitmap.Len())
	if length == 0 || start >= count || length > count-start {
		return fmt.Errorf(
			"checking range `[%d, %d)` against `%d` blocks: %w",
			start,
			start+length,
			count,
			InvalidRangeErr,
		)
	}
	return nil
}
