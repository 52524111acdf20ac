package volume

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/weberc2/osfs/pkg/alloc"
	allocstore "github.com/weberc2/osfs/pkg/alloc/store"
	"github.com/weberc2/osfs/pkg/directory"
	"github.com/weberc2/osfs/pkg/encode"
	"github.com/weberc2/osfs/pkg/extent"
	extentstore "github.com/weberc2/osfs/pkg/extent/store"
	"github.com/weberc2/osfs/pkg/inode"
	inodestore "github.com/weberc2/osfs/pkg/inode/store"
	"github.com/weberc2/osfs/pkg/io"
	"github.com/weberc2/osfs/pkg/math"
	. "github.com/weberc2/osfs/pkg/types"
)

// Params describes the geometry of a volume to format. A zero `UUID` is
// replaced with a random one.
type Params struct {
	BlockCount Block
	InodeCount Ino
	Label      string
	UUID       uuid.UUID
}

func (params *Params) Validate() error {
	if params.BlockCount < 1 {
		return fmt.Errorf(
			"validating volume params: block count must be positive: %w",
			InvalidParamsErr,
		)
	}
	// ino 0 is reserved and ino 1 is the root
	if params.InodeCount < InoRoot+1 {
		return fmt.Errorf(
			"validating volume params: inode count must be at least `%d`: %w",
			InoRoot+1,
			InvalidParamsErr,
		)
	}
	if Byte(len(params.Label)) > MaxLabelLen {
		return fmt.Errorf(
			"validating volume params: label `%s` exceeds `%d` bytes: %w",
			params.Label,
			MaxLabelLen,
			InvalidParamsErr,
		)
	}
	if strings.ContainsRune(params.Label, 0) {
		return fmt.Errorf(
			"validating volume params: label contains NUL: %w",
			InvalidParamsErr,
		)
	}
	return nil
}

// Volume is a mounted image: the engine's file system plus the superblock
// and the device it was read from.
type Volume struct {
	directory.FileSystem

	device     io.Volume
	mutex      sync.Mutex
	superblock Superblock
}

// Format writes an empty file system with a root directory onto `device`.
// Only the metadata region is zeroed; data blocks are zeroed as they are
// handed out.
func Format(
	device io.Volume,
	params Params,
	log logrus.FieldLogger,
) (*Volume, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("formatting volume: %w", err)
	}
	if params.UUID == uuid.Nil {
		params.UUID = uuid.New()
	}

	blocks, inodes := params.BlockCount, params.InodeCount
	if err := checkCapacity(device, blocks, inodes); err != nil {
		return nil, fmt.Errorf("formatting volume: %w", err)
	}
	if err := zero(device, DataOffset(blocks, inodes)); err != nil {
		return nil, fmt.Errorf("formatting volume: %w", err)
	}

	allocator := alloc.NewAllocator(blocks, inodes)
	table := extent.NewTable(ExtentCapacity(blocks))
	extents := extent.NewManager(allocator, table)
	v := Volume{
		device: device,
		superblock: Superblock{
			Magic:      SuperblockMagic,
			UUID:       params.UUID,
			Label:      params.Label,
			BlockSize:  BlockSize,
			BlockCount: blocks,
			InodeCount: inodes,
		},
	}
	v.attach(allocator, extents, inode.NewTable(allocator, extents), log)

	root, err := v.Inodes.NewInode(
		Mode{Type: FileTypeDir, Perm: PermDefaultDir},
	)
	if err != nil {
		return nil, fmt.Errorf("formatting volume: creating root: %w", err)
	}
	if root.Ino != InoRoot {
		return nil, fmt.Errorf(
			"formatting volume: wanted root ino `%d`; found `%d`",
			InoRoot,
			root.Ino,
		)
	}

	if err := v.Flush(); err != nil {
		return nil, fmt.Errorf("formatting volume: %w", err)
	}
	v.FileSystem.Log.WithFields(logrus.Fields{
		"uuid":   v.superblock.UUID,
		"label":  v.superblock.Label,
		"blocks": blocks,
		"inodes": inodes,
	}).Info("formatted volume")
	return &v, nil
}

// Mount reads an image previously written by `Format`. The free counters are
// recomputed from the bitmaps; if they disagree with the superblock a warning
// is logged and the superblock is corrected on the next `Flush`.
func Mount(device io.Volume, log logrus.FieldLogger) (*Volume, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	var v Volume
	v.device = device
	if err := v.readSuperblock(); err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}
	blocks, inodes := v.superblock.BlockCount, v.superblock.InodeCount
	if err := checkCapacity(device, blocks, inodes); err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}

	blockBitmap, err := allocstore.NewVolumeBitmapStore(
		io.NewOffsetVolume(device, BlockBitmapOffset()),
	).Get(uint64(blocks))
	if err != nil {
		return nil, fmt.Errorf("mounting volume: block bitmap: %w", err)
	}
	inodeBitmap, err := allocstore.NewVolumeBitmapStore(
		io.NewOffsetVolume(device, InodeBitmapOffset(blocks)),
	).Get(uint64(inodes))
	if err != nil {
		return nil, fmt.Errorf("mounting volume: inode bitmap: %w", err)
	}
	allocator, err := alloc.LoadAllocator(blockBitmap, inodeBitmap)
	if err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}
	if free := allocator.FreeBlocks(); free != v.superblock.FreeBlocks {
		log.WithFields(logrus.Fields{
			"superblock": v.superblock.FreeBlocks,
			"bitmap":     free,
		}).Warn("free block count disagrees with bitmap; using bitmap")
	}
	if free := allocator.FreeInodes(); free != v.superblock.FreeInodes {
		log.WithFields(logrus.Fields{
			"superblock": v.superblock.FreeInodes,
			"bitmap":     free,
		}).Warn("free inode count disagrees with bitmap; using bitmap")
	}

	extentBitmap, err := allocstore.NewVolumeBitmapStore(
		io.NewOffsetVolume(device, ExtentBitmapOffset(blocks, inodes)),
	).Get(ExtentCapacity(blocks))
	if err != nil {
		return nil, fmt.Errorf("mounting volume: extent bitmap: %w", err)
	}
	records, err := extentstore.NewVolumeExtentStore(
		io.NewOffsetVolume(device, ExtentTableOffset(blocks, inodes)),
	).GetAll(ExtentCapacity(blocks))
	if err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}
	table, err := extent.LoadTable(records, extentBitmap)
	if err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}
	extents := extent.NewManager(allocator, table)

	inodeTable, err := inode.LoadTable(
		allocator,
		extents,
		inodestore.NewVolumeInodeStore(
			io.NewOffsetVolume(device, InodeTableOffset(blocks, inodes)),
			inodes,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}
	v.attach(allocator, extents, inodeTable, log)

	root, err := v.Inodes.Get(InoRoot)
	if err != nil {
		return nil, fmt.Errorf("mounting volume: root: %w", err)
	}
	if !root.IsDir() {
		return nil, fmt.Errorf(
			"mounting volume: root has type `%s`: %w",
			root.Mode.Type,
			NotADirErr,
		)
	}
	if err := v.checkChains(); err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}

	v.FileSystem.Log.WithFields(logrus.Fields{
		"uuid":    v.superblock.UUID,
		"label":   v.superblock.Label,
		"extents": v.Extents.Table.Used(),
	}).Debug("mounted volume")
	return &v, nil
}

// attach points every component at its region of the device and wires them
// into the embedded file system.
func (v *Volume) attach(
	allocator *alloc.Allocator,
	extents *extent.Manager,
	inodes *inode.Table,
	log logrus.FieldLogger,
) {
	blocks, count := v.superblock.BlockCount, v.superblock.InodeCount
	allocator.SetStores(
		allocstore.NewVolumeBitmapStore(
			io.NewOffsetVolume(v.device, BlockBitmapOffset()),
		),
		allocstore.NewVolumeBitmapStore(
			io.NewOffsetVolume(v.device, InodeBitmapOffset(blocks)),
		),
	)
	extents.Table.SetStores(
		extentstore.NewVolumeExtentStore(
			io.NewOffsetVolume(v.device, ExtentTableOffset(blocks, count)),
		),
		allocstore.NewVolumeBitmapStore(
			io.NewOffsetVolume(v.device, ExtentBitmapOffset(blocks, count)),
		),
	)
	inodes.SetStore(inodestore.NewVolumeInodeStore(
		io.NewOffsetVolume(v.device, InodeTableOffset(blocks, count)),
		count,
	))
	v.FileSystem.Init(
		allocator,
		extents,
		inodes,
		io.NewOffsetVolume(v.device, DataOffset(blocks, count)),
		log,
	)
}

// Superblock returns the superblock with the live free counters.
func (v *Volume) Superblock() Superblock {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	sb := v.superblock
	sb.FreeBlocks = v.Allocator.FreeBlocks()
	sb.FreeInodes = v.Allocator.FreeInodes()
	return sb
}

// Flush writes every dirty bitmap, extent record and inode back to the
// device, then the superblock with the current free counters. If the device
// can sync, it is synced last.
func (v *Volume) Flush() error {
	if err := v.Allocator.Flush(); err != nil {
		return fmt.Errorf("flushing volume: %w", err)
	}
	if err := v.Extents.Table.Flush(); err != nil {
		return fmt.Errorf("flushing volume: %w", err)
	}
	if err := v.Inodes.Flush(); err != nil {
		return fmt.Errorf("flushing volume: %w", err)
	}

	sb := v.Superblock()
	buf := new([encode.SuperblockSize]byte)
	encode.EncodeSuperblock(&sb, buf)
	if err := v.device.WriteAt(SuperblockOffset, buf[:]); err != nil {
		return fmt.Errorf("flushing volume: writing superblock: %w", err)
	}
	v.mutex.Lock()
	v.superblock = sb
	v.mutex.Unlock()

	if syncer, ok := v.device.(io.Syncer); ok {
		if err := syncer.Sync(); err != nil {
			return fmt.Errorf("flushing volume: %w", err)
		}
	}
	return nil
}

func (v *Volume) readSuperblock() error {
	buf := new([encode.SuperblockSize]byte)
	if err := v.device.ReadAt(SuperblockOffset, buf[:]); err != nil {
		return fmt.Errorf("reading superblock: %w", err)
	}
	if err := encode.DecodeSuperblock(&v.superblock, buf); err != nil {
		return fmt.Errorf("reading superblock: %w", err)
	}
	if v.superblock.BlockSize != BlockSize {
		return fmt.Errorf(
			"reading superblock: wanted block size `%d`; found `%d`: %w",
			BlockSize,
			v.superblock.BlockSize,
			UnsupportedBlockSizeErr,
		)
	}
	if v.superblock.BlockCount < 1 || v.superblock.InodeCount < InoRoot+1 {
		return fmt.Errorf(
			"reading superblock: geometry `%d` blocks, `%d` inodes: %w",
			v.superblock.BlockCount,
			v.superblock.InodeCount,
			encode.InvalidSuperblockErr,
		)
	}
	return nil
}

// checkCapacity fails if `device` ends before the last byte of an image with
// the given geometry.
func checkCapacity(device io.Volume, blocks Block, inodes Ino) error {
	var last [1]byte
	size := Size(blocks, inodes)
	if err := device.ReadAt(size-1, last[:]); err != nil {
		return fmt.Errorf(
			"device smaller than `%d` bytes: %v: %w",
			size,
			err,
			DeviceTooSmallErr,
		)
	}
	return nil
}

const zeroChunk = 64 * BlockSize

func zero(device io.Volume, size Byte) error {
	chunk := make([]byte, zeroChunk)
	for offset := Byte(0); offset < size; offset += zeroChunk {
		n := math.Min(size-offset, zeroChunk)
		if err := device.WriteAt(offset, chunk[:n]); err != nil {
			return fmt.Errorf("zeroing metadata: %w", err)
		}
	}
	return nil
}

var (
	InvalidParamsErr        = &Error{Kind: InvalidArgumentErr, Message: "invalid volume parameters"}
	UnsupportedBlockSizeErr = &Error{Kind: InvalidArgumentErr, Message: "unsupported block size"}
	DeviceTooSmallErr       = &Error{Kind: ResourceExhaustedErr, Message: "device too small"}
)
