package data

import (
	"fmt"

	"github.com/weberc2/osfs/pkg/math"
	. "github.com/weberc2/osfs/pkg/types"
)

type Reader struct {
	rw *ReadWriter
}

// Read copies up to `len(b)` bytes starting at `offset`, never reading past
// `inode.Size`. Reading at or past the end of the file, or from an inode
// without extents, returns `0` and no error.
func (r Reader) Read(inode *Inode, offset Byte, b []byte) (Byte, error) {
	if offset < 0 {
		return 0, fmt.Errorf(
			"reading inode `%d` at offset `%d`: %w",
			inode.Ino,
			offset,
			InvalidRangeErr,
		)
	}
	if offset >= inode.Size || inode.Extents == ExtentNil {
		return 0, nil
	}

	length := math.Min(Byte(len(b)), inode.Size-offset)
	n, err := r.rw.ReadRaw(inode, offset, b[:length])
	if err != nil {
		return n, fmt.Errorf(
			"reading up to `%d` bytes from inode `%d` at offset `%d`: %w",
			len(b),
			inode.Ino,
			offset,
			err,
		)
	}
	return n, nil
}
