package directory

import (
	"github.com/sirupsen/logrus"
	"github.com/weberc2/osfs/pkg/alloc"
	"github.com/weberc2/osfs/pkg/extent"
	"github.com/weberc2/osfs/pkg/inode"
	"github.com/weberc2/osfs/pkg/inode/data"
	"github.com/weberc2/osfs/pkg/io"
)

// FileSystem bundles the engine components of one mounted volume.
type FileSystem struct {
	Log        logrus.FieldLogger
	Allocator  *alloc.Allocator
	Extents    *extent.Manager
	Inodes     *inode.Table
	ReadWriter data.ReadWriter
}

// Init wires the components together over the data region `dataVolume` and
// points every component's logger at `log`.
func (fs *FileSystem) Init(
	allocator *alloc.Allocator,
	extents *extent.Manager,
	inodes *inode.Table,
	dataVolume io.Volume,
	log logrus.FieldLogger,
) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	allocator.Log = log.WithField("component", "alloc")
	extents.Log = log.WithField("component", "extent")
	inodes.Log = log.WithField("component", "inode")
	*fs = FileSystem{
		Log:        log,
		Allocator:  allocator,
		Extents:    extents,
		Inodes:     inodes,
		ReadWriter: data.NewReadWriter(dataVolume, extents),
	}
	fs.ReadWriter.Now = inodes.Now
	inodes.Zeroer = &fs.ReadWriter
}
