package data

import (
	"fmt"
	"time"

	"github.com/weberc2/osfs/pkg/extent"
	"github.com/weberc2/osfs/pkg/io"
	"github.com/weberc2/osfs/pkg/math"
	. "github.com/weberc2/osfs/pkg/types"
)

// ReadWriter moves bytes between callers and the data blocks covered by an
// inode's extent chain. Logical offsets map onto the chain in order: extent
// `k` covers the bytes after the combined length of extents `0..k-1`.
//
// No method locks the inode; callers must hold its lock.
type ReadWriter struct {
	// Now stamps modification times on written inodes.
	Now func() time.Time

	volume  io.Volume
	extents *extent.Manager
}

// NewReadWriter returns a ReadWriter over the data region `volume`, where
// block `b` starts at byte `b*BlockSize`.
func NewReadWriter(volume io.Volume, extents *extent.Manager) ReadWriter {
	return ReadWriter{Now: time.Now, volume: volume, extents: extents}
}

func (rw *ReadWriter) Reader() Reader { return Reader{rw} }

func (rw *ReadWriter) Writer() Writer { return Writer{rw} }

func (rw *ReadWriter) Read(inode *Inode, offset Byte, b []byte) (Byte, error) {
	r := rw.Reader()
	return r.Read(inode, offset, b)
}

func (rw *ReadWriter) Write(inode *Inode, offset Byte, b []byte) (Byte, error) {
	w := rw.Writer()
	return w.Write(inode, offset, b)
}

// ReadRaw reads from the chain without clamping to `inode.Size`. It stops at
// the end of the chain and returns the number of bytes copied.
func (rw *ReadWriter) ReadRaw(
	inode *Inode,
	offset Byte,
	b []byte,
) (Byte, error) {
	return rw.copy(inode, offset, b, false)
}

// WriteRaw writes into the existing chain without growing it or updating
// `inode.Size`. It stops at the end of the chain.
func (rw *ReadWriter) WriteRaw(
	inode *Inode,
	offset Byte,
	b []byte,
) (Byte, error) {
	return rw.copy(inode, offset, b, true)
}

// Zero fills every block of `e` with zeroes.
func (rw *ReadWriter) Zero(e *Extent) error {
	var zeroes [BlockSize]byte
	for b := e.Start; b < e.End(); b++ {
		if err := rw.volume.WriteAt(b.Bytes(), zeroes[:]); err != nil {
			return fmt.Errorf("zeroing block `%d`: %w", b, err)
		}
	}
	return nil
}

func (rw *ReadWriter) copy(
	inode *Inode,
	offset Byte,
	b []byte,
	write bool,
) (Byte, error) {
	var done, extentBegin Byte
	length := Byte(len(b))
	if length == 0 {
		return 0, nil
	}

	if err := rw.extents.Walk(inode, func(_ ExtentID, e *Extent) error {
		extentEnd := extentBegin + e.Length.Bytes()
		pos := offset + done
		if pos >= extentBegin && pos < extentEnd {
			n := math.Min(extentEnd-pos, length-done)
			physical := e.Start.Bytes() + (pos - extentBegin)
			chunk := b[done : done+n]

			var err error
			if write {
				err = rw.volume.WriteAt(physical, chunk)
			} else {
				err = rw.volume.ReadAt(physical, chunk)
			}
			if err != nil {
				return fmt.Errorf(
					"copying `%d` bytes at logical offset `%d` (physical "+
						"`%d`): %w",
					n,
					pos,
					physical,
					err,
				)
			}
			done += n
		}
		if done == length {
			return extent.StopWalk
		}
		extentBegin = extentEnd
		return nil
	}); err != nil {
		return done, fmt.Errorf(
			"accessing `%d` bytes of inode `%d` at offset `%d`: %w",
			length,
			inode.Ino,
			offset,
			err,
		)
	}
	return done, nil
}
