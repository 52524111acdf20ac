package io

import (
	. "github.com/weberc2/osfs/pkg/types"
)

// ReadAt fills all of `b` from `offset` or fails. Short reads are errors.
type ReadAt interface {
	ReadAt(offset Byte, b []byte) error
}

// WriteAt stores all of `p` at `offset` or fails.
type WriteAt interface {
	WriteAt(offset Byte, p []byte) error
}

// Volume is a fixed-size, randomly addressable byte device: an image file,
// an in-memory buffer or a region of either.
type Volume interface {
	ReadAt
	WriteAt
}

// Syncer is implemented by volumes whose writes are buffered by the host,
// such as `FileVolume`.
type Syncer interface {
	Sync() error
}

var (
	_ Volume = (*Buffer)(nil)
	_ Volume = (*FileVolume)(nil)
	_ Volume = (*OffsetVolume)(nil)
	_ Syncer = (*FileVolume)(nil)
)
