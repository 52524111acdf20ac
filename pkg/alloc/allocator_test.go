package alloc

import (
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	. "github.com/weberc2/osfs/pkg/types"
	"golang.org/x/sync/errgroup"
)

func quietAllocator(blocks Block, inodes Ino) *Allocator {
	a := NewAllocator(blocks, inodes)
	log := logrus.New()
	log.SetOutput(io.Discard)
	a.Log = log
	return a
}

func checkCounters(t *testing.T, a *Allocator) {
	t.Helper()
	if found, wanted := a.FreeBlocks(), Block(a.blocks.bitmap.CountClear()); found != wanted {
		t.Fatalf("FreeBlocks(): wanted `%d` (clear bits); found `%d`", wanted, found)
	}
	if found, wanted := a.FreeInodes(), Ino(a.inodes.bitmap.CountClear()); found != wanted {
		t.Fatalf("FreeInodes(): wanted `%d` (clear bits); found `%d`", wanted, found)
	}
}

func TestAllocator_AllocRunThenFree(t *testing.T) {
	a := quietAllocator(64, 16)
	if _, err := a.AllocRun(5); err != nil {
		t.Fatalf("AllocRun(5): unexpected err: %v", err)
	}

	for _, length := range []Block{1, 7, 20, 32} {
		before := a.FreeBlocks()
		start, err := a.AllocRun(length)
		if err != nil {
			t.Fatalf("AllocRun(%d): unexpected err: %v", length, err)
		}
		if a.IsRangeFree(start, length) {
			t.Fatalf("AllocRun(%d): range `%d` still free", length, start)
		}
		if found := a.FreeBlocks(); found != before-length {
			t.Fatalf(
				"AllocRun(%d): wanted `%d` free blocks; found `%d`",
				length,
				before-length,
				found,
			)
		}
		if err := a.MarkFree(start, length); err != nil {
			t.Fatalf("MarkFree(): unexpected err: %v", err)
		}
		if found := a.FreeBlocks(); found != before {
			t.Fatalf(
				"MarkFree(): wanted `%d` free blocks; found `%d`",
				before,
				found,
			)
		}
		if !a.IsRangeFree(start, length) {
			t.Fatalf("MarkFree(): range `%d`+`%d` not free", start, length)
		}
		checkCounters(t, a)
	}
}

func TestAllocator_FirstFit(t *testing.T) {
	a := quietAllocator(16, 4)
	for _, r := range [][2]Block{{0, 2}, {3, 1}, {6, 4}} {
		if err := a.MarkUsed(r[0], r[1]); err != nil {
			t.Fatalf("MarkUsed(%d, %d): unexpected err: %v", r[0], r[1], err)
		}
	}
	for _, tc := range []struct{ length, wanted Block }{
		{1, 2},
		{2, 4},
		{3, 10},
	} {
		start, err := a.FindFreeRun(tc.length)
		if err != nil {
			t.Fatalf("FindFreeRun(%d): unexpected err: %v", tc.length, err)
		}
		if start != tc.wanted {
			t.Fatalf(
				"FindFreeRun(%d): wanted `%d`; found `%d`",
				tc.length,
				tc.wanted,
				start,
			)
		}
	}
	checkCounters(t, a)
}

func TestAllocator_Exhausted(t *testing.T) {
	a := quietAllocator(8, 4)
	if err := a.MarkUsed(0, 3); err != nil {
		t.Fatalf("MarkUsed(): unexpected err: %v", err)
	}
	if err := a.MarkUsed(4, 1); err != nil {
		t.Fatalf("MarkUsed(): unexpected err: %v", err)
	}
	before := a.FreeBlocks()

	_, err := a.AllocRun(4)
	if !errors.Is(err, OutOfBlocksErr) || !errors.Is(err, ResourceExhaustedErr) {
		t.Fatalf("AllocRun(4): wanted `%v`; found `%v`", OutOfBlocksErr, err)
	}
	if _, err := a.AllocRun(9); !errors.Is(err, ResourceExhaustedErr) {
		t.Fatalf("AllocRun(9): wanted `%v`; found `%v`", OutOfBlocksErr, err)
	}
	if _, err := a.AllocRun(0); !errors.Is(err, InvalidArgumentErr) {
		t.Fatalf("AllocRun(0): wanted `%v`; found `%v`", InvalidRangeErr, err)
	}
	if found := a.FreeBlocks(); found != before {
		t.Fatalf("AllocRun(): failed allocation changed free blocks to `%d`", found)
	}
	checkCounters(t, a)
}

func TestAllocator_MarkOutOfRange(t *testing.T) {
	a := quietAllocator(8, 4)
	if err := a.MarkUsed(6, 3); !errors.Is(err, InvalidRangeErr) {
		t.Fatalf("MarkUsed(6, 3): wanted `%v`; found `%v`", InvalidRangeErr, err)
	}
	if err := a.MarkFree(8, 1); !errors.Is(err, InvalidRangeErr) {
		t.Fatalf("MarkFree(8, 1): wanted `%v`; found `%v`", InvalidRangeErr, err)
	}
	if a.FreeBlocks() != 8 {
		t.Fatalf("FreeBlocks(): wanted `8`; found `%d`", a.FreeBlocks())
	}
}

func TestAllocator_DoubleMarkKeepsCounter(t *testing.T) {
	a := quietAllocator(8, 4)
	if err := a.MarkUsed(0, 4); err != nil {
		t.Fatalf("MarkUsed(): unexpected err: %v", err)
	}
	if err := a.MarkUsed(2, 4); err != nil {
		t.Fatalf("MarkUsed(): unexpected err: %v", err)
	}
	if a.FreeBlocks() != 2 {
		t.Fatalf("FreeBlocks(): wanted `2`; found `%d`", a.FreeBlocks())
	}
	checkCounters(t, a)
}

func TestAllocator_SingleBlocksDisjoint(t *testing.T) {
	const n = 10
	a := quietAllocator(32, 4)
	before := a.FreeBlocks()
	seen := map[Block]struct{}{}
	for i := 0; i < n; i++ {
		b, err := a.AllocRun(1)
		if err != nil {
			t.Fatalf("AllocRun(1): unexpected err: %v", err)
		}
		if _, dup := seen[b]; dup {
			t.Fatalf("AllocRun(1): block `%d` returned twice", b)
		}
		seen[b] = struct{}{}
	}
	if found := a.FreeBlocks(); found != before-n {
		t.Fatalf("FreeBlocks(): wanted `%d`; found `%d`", before-n, found)
	}
}

func TestAllocator_ConcurrentAllocRun(t *testing.T) {
	const m = 64
	a := quietAllocator(m, 4)

	blocks := make([]Block, m)
	var group errgroup.Group
	for i := 0; i < m; i++ {
		i := i
		group.Go(func() error {
			b, err := a.AllocRun(1)
			blocks[i] = b
			return err
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("AllocRun(1): unexpected err: %v", err)
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	for i, b := range blocks {
		if b != Block(i) {
			t.Fatalf("AllocRun(1): wanted blocks `0..%d`; found `%v`", m-1, blocks)
		}
	}
	if a.FreeBlocks() != 0 {
		t.Fatalf("FreeBlocks(): wanted `0`; found `%d`", a.FreeBlocks())
	}
}

func TestAllocator_Inos(t *testing.T) {
	a := quietAllocator(8, 4)
	if a.FreeInodes() != 3 {
		t.Fatalf("FreeInodes(): wanted `3`; found `%d`", a.FreeInodes())
	}

	for _, wanted := range []Ino{1, 2, 3} {
		ino, err := a.AllocIno()
		if err != nil {
			t.Fatalf("AllocIno(): unexpected err: %v", err)
		}
		if ino != wanted {
			t.Fatalf("AllocIno(): wanted `%d`; found `%d`", wanted, ino)
		}
	}

	if _, err := a.AllocIno(); !errors.Is(err, OutOfInodesErr) {
		t.Fatalf("AllocIno(): wanted `%v`; found `%v`", OutOfInodesErr, err)
	}

	if err := a.FreeIno(2); err != nil {
		t.Fatalf("FreeIno(2): unexpected err: %v", err)
	}
	if err := a.FreeIno(2); err != nil {
		t.Fatalf("FreeIno(2): second free: unexpected err: %v", err)
	}
	if a.FreeInodes() != 1 {
		t.Fatalf("FreeInodes(): wanted `1`; found `%d`", a.FreeInodes())
	}
	if ino, err := a.AllocIno(); err != nil || ino != 2 {
		t.Fatalf("AllocIno(): wanted `2`; found `%d` (err=%v)", ino, err)
	}
	if err := a.FreeIno(InoNil); !errors.Is(err, NotFoundErr) {
		t.Fatalf("FreeIno(0): wanted `%v`; found `%v`", InoOutOfRangeErr, err)
	}
	checkCounters(t, a)
}

func TestLoadAllocator(t *testing.T) {
	blocks := New(16)
	blocks.Set(3)
	inodes := New(8)
	inodes.Set(0)
	inodes.Set(1)

	a, err := LoadAllocator(blocks, inodes)
	if err != nil {
		t.Fatalf("LoadAllocator(): unexpected err: %v", err)
	}
	if a.FreeBlocks() != 15 || a.FreeInodes() != 6 {
		t.Fatalf(
			"LoadAllocator(): wanted `15` blocks and `6` inodes free; found "+
				"`%d` and `%d`",
			a.FreeBlocks(),
			a.FreeInodes(),
		)
	}

	if _, err := LoadAllocator(blocks, New(8)); !errors.Is(
		err,
		CorruptBitmapErr,
	) {
		t.Fatalf("LoadAllocator(): wanted `%v`; found `%v`", CorruptBitmapErr, err)
	}
}

type bitmapStoreFake struct {
	puts int
	last []byte
}

func (store *bitmapStoreFake) Put(bitmap Bitmap) error {
	store.puts++
	store.last = append([]byte(nil), bitmap.Bytes()...)
	return nil
}

func TestAllocator_Flush(t *testing.T) {
	a := quietAllocator(16, 8)
	var blocks, inodes bitmapStoreFake
	a.SetStores(&blocks, &inodes)
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush(): unexpected err: %v", err)
	}
	if blocks.puts != 1 || inodes.puts != 1 {
		t.Fatalf("Flush(): wanted new bitmaps to be stored once each")
	}
	blocks.puts, inodes.puts = 0, 0

	if _, err := a.AllocRun(2); err != nil {
		t.Fatalf("AllocRun(): unexpected err: %v", err)
	}
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush(): unexpected err: %v", err)
	}
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush(): unexpected err: %v", err)
	}

	// only the block bitmap was dirtied since the first flush
	if blocks.puts != 1 || inodes.puts != 0 {
		t.Fatalf(
			"Flush(): wanted `1` block put and `0` inode puts; found `%d` "+
				"and `%d`",
			blocks.puts,
			inodes.puts,
		)
	}
	if blocks.last[0] != 0b1100_0000 {
		t.Fatalf("Flush(): wanted `0xc0`; found `%#x`", blocks.last[0])
	}
}
