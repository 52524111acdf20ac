package inode

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/weberc2/osfs/pkg/alloc"
	"github.com/weberc2/osfs/pkg/extent"
	. "github.com/weberc2/osfs/pkg/types"
)

// Owner is the uid/gid stamped on newly created inodes.
type Owner struct {
	UID uint32
	GID uint32
}

// Zeroer clears the data blocks of an extent.
type Zeroer interface {
	Zero(e *Extent) error
}

// Table is the in-memory inode table of a mounted volume. Records are
// addressed by ino and never move, so the pointers handed out by `Get` and
// `NewInode` stay valid for the life of the table. A record's fields may only
// be read or written while holding that ino's lock (`Lock`/`Unlock`).
type Table struct {
	Log   logrus.FieldLogger
	Now   func() time.Time
	Owner Owner

	// Zeroer clears each new inode's initial extent. Without one, a new
	// directory on a reused device may read stale bytes as entries.
	Zeroer Zeroer

	allocator *alloc.Allocator
	extents   *extent.Manager
	inodes    []Inode
	locks     []sync.Mutex

	mutex sync.Mutex
	dirty map[Ino]struct{}
	store InodeStore
}

// NewTable returns an empty table sized to the allocator's inode count.
func NewTable(allocator *alloc.Allocator, extents *extent.Manager) *Table {
	count := allocator.InodeCount()
	return &Table{
		Now:       time.Now,
		allocator: allocator,
		extents:   extents,
		inodes:    make([]Inode, count),
		locks:     make([]sync.Mutex, count),
		dirty:     make(map[Ino]struct{}),
	}
}

// LoadTable reads every allocated inode from `store`. Records whose file type
// is not one the engine creates are reported as corrupt.
func LoadTable(
	allocator *alloc.Allocator,
	extents *extent.Manager,
	store InodeStore,
) (*Table, error) {
	t := NewTable(allocator, extents)
	t.store = store
	for ino := InoRoot; ino < Ino(len(t.inodes)); ino++ {
		if !allocator.InoAllocated(ino) {
			continue
		}
		if err := store.Get(ino, &t.inodes[ino]); err != nil {
			return nil, fmt.Errorf("loading inode table: %w", err)
		}
		if err := t.inodes[ino].Mode.Type.Validate(); err != nil {
			return nil, fmt.Errorf(
				"loading inode table: inode `%d`: %w",
				ino,
				err,
			)
		}
	}
	return t, nil
}

// SetStore attaches the store that `Flush` writes to.
func (t *Table) SetStore(store InodeStore) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.store = store
}

func (t *Table) Capacity() Ino { return Ino(len(t.inodes)) }

// NewInode allocates and initializes an inode of the given mode with a
// single one-block extent, zeroed through `Zeroer` when one is set.
// Unsupported modes and exhausted counters are rejected before anything is
// allocated. If the initial extent cannot be allocated or zeroed, everything
// allocated so far is returned to the free pools.
func (t *Table) NewInode(mode Mode) (*Inode, error) {
	if err := mode.Type.Validate(); err != nil {
		return nil, fmt.Errorf("creating inode: %w", err)
	}
	if t.allocator.FreeInodes() == 0 {
		return nil, fmt.Errorf("creating inode: %w", OutOfInodesErr)
	}
	if t.allocator.FreeBlocks() == 0 {
		return nil, fmt.Errorf("creating inode: %w", OutOfBlocksErr)
	}

	ino, err := t.allocator.AllocIno()
	if err != nil {
		return nil, fmt.Errorf("creating inode: %w", err)
	}

	t.locks[ino].Lock()
	defer t.locks[ino].Unlock()

	now := t.Now().UTC()
	inode := Inode{
		Ino:        ino,
		Mode:       mode,
		UID:        t.Owner.UID,
		GID:        t.Owner.GID,
		LinksCount: 1,
		ATime:      now,
		MTime:      now,
		CTime:      now,
	}
	if mode.Type == FileTypeDir {
		inode.LinksCount = 2
	}

	initial, err := t.extents.Grow(&inode, 1)
	if err != nil {
		if freeErr := t.allocator.FreeIno(ino); freeErr != nil {
			t.logger().WithError(freeErr).WithField("ino", ino).
				Error("returning ino after failed extent allocation")
		}
		return nil, fmt.Errorf("creating inode `%d`: %w", ino, err)
	}
	if t.Zeroer != nil {
		if err := t.Zeroer.Zero(&initial); err != nil {
			if releaseErr := t.release(&inode); releaseErr != nil {
				t.logger().WithError(releaseErr).WithField("ino", ino).
					Error("releasing inode after failed zeroing")
			}
			return nil, fmt.Errorf(
				"creating inode `%d`: zeroing initial extent: %w",
				ino,
				err,
			)
		}
	}

	t.inodes[ino] = inode
	t.MarkDirty(ino)
	t.logger().WithFields(logrus.Fields{
		"ino":  ino,
		"mode": mode.String(),
	}).Debug("created inode")
	return &t.inodes[ino], nil
}

// Get returns the record for `ino`. It fails with `InoOutOfRangeErr` for ino
// 0 or inos beyond the table and with `InodeNotAllocatedErr` for inos that
// are not in use.
func (t *Table) Get(ino Ino) (*Inode, error) {
	if ino == InoNil || ino >= Ino(len(t.inodes)) {
		return nil, fmt.Errorf("getting inode `%d`: %w", ino, InoOutOfRangeErr)
	}
	if !t.allocator.InoAllocated(ino) {
		return nil, fmt.Errorf(
			"getting inode `%d`: %w",
			ino,
			InodeNotAllocatedErr,
		)
	}
	return &t.inodes[ino], nil
}

// Lock acquires the per-inode lock for `ino`, which must be in range.
func (t *Table) Lock(ino Ino) { t.locks[ino].Lock() }

func (t *Table) Unlock(ino Ino) { t.locks[ino].Unlock() }

// MarkDirty schedules `ino` to be written on the next `Flush`.
func (t *Table) MarkDirty(ino Ino) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.dirty[ino] = struct{}{}
}

// Discard tears down a freshly created inode: its chain records are
// released, the blocks they covered are marked free, and its ino is returned
// to the pool. The caller must hold the inode's lock.
func (t *Table) Discard(inode *Inode) error {
	ino := inode.Ino
	if err := t.release(inode); err != nil {
		return fmt.Errorf("discarding inode `%d`: %w", ino, err)
	}
	*inode = Inode{Ino: ino}
	t.MarkDirty(ino)
	return nil
}

// release frees the chain of `inode`, the blocks it covered and its ino.
func (t *Table) release(inode *Inode) error {
	ranges, err := t.extents.FreeChain(inode)
	if err != nil {
		return err
	}
	for _, r := range ranges {
		if err := t.allocator.MarkFree(r.Start, r.Length); err != nil {
			return err
		}
	}
	return t.allocator.FreeIno(inode.Ino)
}

// Flush writes every dirty inode to the store. It takes each dirty inode's
// lock, so it must not be called while holding one.
func (t *Table) Flush() error {
	t.mutex.Lock()
	store, dirty := t.store, t.dirty
	if store == nil {
		t.mutex.Unlock()
		return nil
	}
	t.dirty = make(map[Ino]struct{})
	t.mutex.Unlock()

	for ino := range dirty {
		t.locks[ino].Lock()
		err := store.Put(&t.inodes[ino])
		t.locks[ino].Unlock()
		if err != nil {
			t.mutex.Lock()
			for ino := range dirty {
				t.dirty[ino] = struct{}{}
			}
			t.mutex.Unlock()
			return fmt.Errorf("flushing inode table: %w", err)
		}
		delete(dirty, ino)
	}
	return nil
}

func (t *Table) logger() logrus.FieldLogger {
	if t.Log == nil {
		return logrus.StandardLogger()
	}
	return t.Log
}
