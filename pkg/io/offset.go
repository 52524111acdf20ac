package io

import (
	"fmt"

	. "github.com/weberc2/osfs/pkg/types"
)

// OffsetVolume exposes the region of `inner` starting at `offset` as if it
// were its own volume beginning at zero.
type OffsetVolume struct {
	inner  Volume
	offset Byte
}

func NewOffsetVolume(inner Volume, offset Byte) *OffsetVolume {
	return &OffsetVolume{inner: inner, offset: offset}
}

func (v *OffsetVolume) ReadAt(offset Byte, b []byte) error {
	if err := v.inner.ReadAt(offset+v.offset, b); err != nil {
		return fmt.Errorf(
			"reading additional offset `%d` from base offset `%d` (total "+
				"offset `%d` bytes): %w",
			offset,
			v.offset,
			offset+v.offset,
			err,
		)
	}
	return nil
}

func (v *OffsetVolume) WriteAt(offset Byte, b []byte) error {
	if err := v.inner.WriteAt(offset+v.offset, b); err != nil {
		return fmt.Errorf(
			"writing additional offset `%d` from base offset `%d` (total "+
				"offset `%d` bytes): %w",
			offset,
			v.offset,
			offset+v.offset,
			err,
		)
	}
	return nil
}
