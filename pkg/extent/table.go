package extent

import (
	"fmt"
	"sync"

	"github.com/weberc2/osfs/pkg/alloc"
	. "github.com/weberc2/osfs/pkg/types"
)

// RecordStore persists individual extent records.
type RecordStore interface {
	Put(id ExtentID, extent *Extent) error
}

// Table is an arena of extent records. Records are addressed by 1-based
// `ExtentID`s so that `ExtentNil` can terminate a chain, and chains link
// records by ID rather than by pointer.
type Table struct {
	mutex   sync.Mutex
	records []Extent
	used    alloc.FlushableBitmap
	dirty   map[ExtentID]struct{}
	store   RecordStore
}

// NewTable returns an empty table with room for `capacity` records. Its
// used-record bitmap starts dirty since it has never been stored.
func NewTable(capacity uint64) *Table {
	t := Table{
		records: make([]Extent, capacity),
		used:    alloc.NewFlushable(alloc.New(capacity), nil),
		dirty:   make(map[ExtentID]struct{}),
	}
	t.used.MarkDirty()
	return &t
}

// LoadTable wraps records and a used-record bitmap read back from a volume.
func LoadTable(records []Extent, used alloc.Bitmap) (*Table, error) {
	if used.Len() != uint64(len(records)) {
		return nil, fmt.Errorf(
			"loading extent table: `%d` records but bitmap has `%d` bits: %w",
			len(records),
			used.Len(),
			alloc.CorruptBitmapErr,
		)
	}
	return &Table{
		records: records,
		used:    alloc.NewFlushable(used, nil),
		dirty:   make(map[ExtentID]struct{}),
	}, nil
}

// SetStores attaches the stores that `Flush` writes to.
func (t *Table) SetStores(records RecordStore, used alloc.BitmapStore) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.store = records
	t.used.SetStore(used)
}

func (t *Table) Capacity() uint64 { return uint64(len(t.records)) }

// Get returns a copy of the record `id`.
func (t *Table) Get(id ExtentID) (Extent, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.check(id); err != nil {
		return Extent{}, fmt.Errorf("getting extent `%d`: %w", id, err)
	}
	return t.records[id-1], nil
}

// Alloc stores `extent` in the first free record and returns its ID.
func (t *Table) Alloc(extent Extent) (ExtentID, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	i, ok := t.usedBitmap().FirstClearFrom(0)
	if !ok {
		return ExtentNil, fmt.Errorf(
			"allocating extent record for `[%d, %d)`: %w",
			extent.Start,
			extent.End(),
			ExtentTableFullErr,
		)
	}
	t.used.Set(i)
	id := ExtentID(i + 1)
	t.records[i] = extent
	t.dirty[id] = struct{}{}
	return id, nil
}

// Link points record `id` at `next`.
func (t *Table) Link(id, next ExtentID) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.check(id); err != nil {
		return fmt.Errorf("linking extent `%d` to `%d`: %w", id, next, err)
	}
	t.records[id-1].Next = next
	t.dirty[id] = struct{}{}
	return nil
}

// Release returns record `id` to the arena.
func (t *Table) Release(id ExtentID) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.check(id); err != nil {
		return fmt.Errorf("releasing extent `%d`: %w", id, err)
	}
	t.used.Clear(uint64(id - 1))
	t.records[id-1] = Extent{}
	t.dirty[id] = struct{}{}
	return nil
}

// Used returns the number of live records.
func (t *Table) Used() uint64 {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return uint64(len(t.records)) - t.usedBitmap().CountClear()
}

// Flush writes dirty records and the used-record bitmap to their stores.
func (t *Table) Flush() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.store != nil {
		for id := range t.dirty {
			if err := t.store.Put(id, &t.records[id-1]); err != nil {
				return fmt.Errorf("flushing extent `%d`: %w", id, err)
			}
			delete(t.dirty, id)
		}
	}
	if err := t.used.Flush(); err != nil {
		return fmt.Errorf("flushing extent table: %w", err)
	}
	return nil
}

func (t *Table) usedBitmap() alloc.Bitmap { return t.used.Bitmap() }

func (t *Table) check(id ExtentID) error {
	if id == ExtentNil || uint64(id) > uint64(len(t.records)) {
		return ExtentOutOfRangeErr
	}
	if !t.used.Test(uint64(id - 1)) {
		return ExtentNotAllocatedErr
	}
	return nil
}

var (
	ExtentOutOfRangeErr   = &Error{Kind: NotFoundErr, Message: "extent out of range"}
	ExtentNotAllocatedErr = &Error{Kind: NotFoundErr, Message: "extent not allocated"}
	CorruptChainErr       = &Error{Kind: InvalidArgumentErr, Message: "corrupt extent chain"}
)
