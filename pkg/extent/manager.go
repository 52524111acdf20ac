package extent

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/weberc2/osfs/pkg/alloc"
	. "github.com/weberc2/osfs/pkg/types"
)

// Manager builds and tears down inode extent chains. It does not lock
// inodes; callers must hold the owning inode's lock while a chain is being
// appended to or freed.
type Manager struct {
	Allocator *alloc.Allocator
	Table     *Table
	Log       logrus.FieldLogger
}

func NewManager(allocator *alloc.Allocator, table *Table) *Manager {
	return &Manager{Allocator: allocator, Table: table}
}

// AllocExtent reserves the first free run of `length` blocks. The returned
// extent is not linked into any chain.
func (m *Manager) AllocExtent(length Block) (Extent, error) {
	start, err := m.Allocator.AllocRun(length)
	if err != nil {
		return Extent{}, fmt.Errorf("allocating extent: %w", err)
	}
	return Extent{Start: start, Length: length}, nil
}

// AppendExtent links a new record covering `[start, start+length)` at the
// tail of `inode`'s chain and grows `inode.Blocks` by `length`. The tail is
// found by walking the chain.
func (m *Manager) AppendExtent(inode *Inode, start, length Block) error {
	id, err := m.Table.Alloc(Extent{Start: start, Length: length})
	if err != nil {
		return fmt.Errorf(
			"appending extent `[%d, %d)` to inode `%d`: %w",
			start,
			start+length,
			inode.Ino,
			err,
		)
	}

	if inode.Extents == ExtentNil {
		inode.Extents = id
	} else {
		tail, err := m.tail(inode)
		if err == nil {
			err = m.Table.Link(tail, id)
		}
		if err != nil {
			// the new record is unreachable; give it back
			if releaseErr := m.Table.Release(id); releaseErr != nil {
				m.logger().WithError(releaseErr).
					WithField("extent", id).
					Error("releasing orphaned extent record")
			}
			return fmt.Errorf(
				"appending extent `[%d, %d)` to inode `%d`: %w",
				start,
				start+length,
				inode.Ino,
				err,
			)
		}
	}

	inode.Blocks += length
	return nil
}

// Grow allocates `length` blocks and appends them to `inode`'s chain. If the
// append fails the blocks are returned to the allocator.
func (m *Manager) Grow(inode *Inode, length Block) (Extent, error) {
	extent, err := m.AllocExtent(length)
	if err != nil {
		return Extent{}, fmt.Errorf("growing inode `%d`: %w", inode.Ino, err)
	}
	if err := m.AppendExtent(inode, extent.Start, extent.Length); err != nil {
		if freeErr := m.Allocator.MarkFree(
			extent.Start,
			extent.Length,
		); freeErr != nil {
			m.logger().WithError(freeErr).WithFields(logrus.Fields{
				"start":  extent.Start,
				"length": extent.Length,
			}).Error("returning blocks after failed append")
		}
		return Extent{}, fmt.Errorf("growing inode `%d`: %w", inode.Ino, err)
	}
	m.logger().WithFields(logrus.Fields{
		"ino":    inode.Ino,
		"start":  extent.Start,
		"length": extent.Length,
	}).Debug("grew extent chain")
	return extent, nil
}

// FreeChain releases every record of `inode`'s chain, resets the chain head
// and sets `inode.Blocks` to zero. The blocks the chain covered are NOT
// marked free; they are returned so that a caller that wants the space back
// can pass them to `Allocator.MarkFree`.
func (m *Manager) FreeChain(inode *Inode) ([]Extent, error) {
	chain, err := m.Chain(inode)
	if err != nil {
		return nil, fmt.Errorf("freeing chain of inode `%d`: %w", inode.Ino, err)
	}

	id := inode.Extents
	for i := range chain {
		next := chain[i].Next
		if err := m.Table.Release(id); err != nil {
			return nil, fmt.Errorf(
				"freeing chain of inode `%d`: %w",
				inode.Ino,
				err,
			)
		}
		id = next
	}

	inode.Extents = ExtentNil
	inode.Blocks = 0
	return chain, nil
}

// Walk calls `fn` for each extent in chain order. Returning `StopWalk` from
// `fn` ends the walk early without error.
func (m *Manager) Walk(
	inode *Inode,
	fn func(id ExtentID, extent *Extent) error,
) error {
	limit := m.Table.Capacity()
	var visited uint64
	for id := inode.Extents; id != ExtentNil; visited++ {
		if visited >= limit {
			return fmt.Errorf(
				"walking chain of inode `%d`: chain longer than the extent "+
					"table: %w",
				inode.Ino,
				CorruptChainErr,
			)
		}
		extent, err := m.Table.Get(id)
		if err != nil {
			return fmt.Errorf("walking chain of inode `%d`: %w", inode.Ino, err)
		}
		if err := fn(id, &extent); err != nil {
			if errors.Is(err, StopWalk) {
				return nil
			}
			return err
		}
		id = extent.Next
	}
	return nil
}

// Capacity is the number of bytes the chain of `inode` can hold.
func (m *Manager) Capacity(inode *Inode) Byte { return inode.Blocks.Bytes() }

// Chain returns the extents of `inode` in chain order.
func (m *Manager) Chain(inode *Inode) ([]Extent, error) {
	var chain []Extent
	if err := m.Walk(inode, func(_ ExtentID, extent *Extent) error {
		chain = append(chain, *extent)
		return nil
	}); err != nil {
		return nil, err
	}
	return chain, nil
}

func (m *Manager) tail(inode *Inode) (ExtentID, error) {
	var tail ExtentID
	if err := m.Walk(inode, func(id ExtentID, _ *Extent) error {
		tail = id
		return nil
	}); err != nil {
		return ExtentNil, err
	}
	return tail, nil
}

func (m *Manager) logger() logrus.FieldLogger {
	if m.Log == nil {
		return logrus.StandardLogger()
	}
	return m.Log
}

const (
	StopWalk ConstError = "stop walk"
)
