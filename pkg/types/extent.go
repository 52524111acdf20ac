package types

// ExtentID identifies a record in the extent table. IDs are 1-based so the
// zero value terminates a chain.
type ExtentID uint64

const (
	ExtentNil        ExtentID = 0
	ExtentRecordSize Byte     = 3 * Size64
)

// Extent is a contiguous run of data blocks `[Start, Start+Length)` plus a
// link to the next extent in the owning inode's chain.
type Extent struct {
	Start  Block
	Length Block
	Next   ExtentID
}

func (e *Extent) End() Block { return e.Start + e.Length }

// Overlaps reports whether `e` and `other` share at least one block.
func (e *Extent) Overlaps(other *Extent) bool {
	return e.Start < other.End() && other.Start < e.End()
}
