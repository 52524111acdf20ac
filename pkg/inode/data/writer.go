package data

import (
	"fmt"

	"github.com/weberc2/osfs/pkg/math"
	. "github.com/weberc2/osfs/pkg/types"
)

type Writer struct {
	rw *ReadWriter
}

// Write copies `b` into the file starting at `offset`, growing the chain
// whenever the write position is past the end of the last extent. Each
// growth appends one zeroed extent large enough for the rest of the write
// (including any gap between the old end of the chain and `offset`).
//
// `inode.Size` becomes the larger of its old value and the end of the bytes
// actually written, even if the write fails part way through.
func (w Writer) Write(inode *Inode, offset Byte, b []byte) (Byte, error) {
	if offset < 0 {
		return 0, fmt.Errorf(
			"writing inode `%d` at offset `%d`: %w",
			inode.Ino,
			offset,
			InvalidRangeErr,
		)
	}

	var done Byte
	var err error
	for done < Byte(len(b)) {
		pos := offset + done
		if capacity := inode.Blocks.Bytes(); pos >= capacity {
			need := pos + Byte(len(b)) - done - capacity
			blocks := Block(math.DivRoundUp(need, BlockSize))
			e, growErr := w.rw.extents.Grow(inode, blocks)
			if growErr != nil {
				err = growErr
				break
			}
			if zeroErr := w.rw.Zero(&e); zeroErr != nil {
				err = zeroErr
				break
			}
		}

		n, copyErr := w.rw.WriteRaw(inode, pos, b[done:])
		done += n
		if copyErr != nil {
			err = copyErr
			break
		}
		if n == 0 {
			// the chain covers less than `Blocks` claims
			err = fmt.Errorf(
				"no extent covers offset `%d` of `%d` allocated bytes",
				pos,
				inode.Blocks.Bytes(),
			)
			break
		}
	}

	if done > 0 {
		inode.Size = math.Max(inode.Size, offset+done)
		inode.Touch(w.rw.Now().UTC())
	}

	if err != nil {
		return done, fmt.Errorf(
			"writing `%d` bytes to inode `%d` at offset `%d`: %w",
			len(b),
			inode.Ino,
			offset,
			err,
		)
	}
	return done, nil
}
