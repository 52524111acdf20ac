package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/weberc2/osfs/pkg/io"
	. "github.com/weberc2/osfs/pkg/types"
)

func TestVolumeInodeStore(t *testing.T) {
	store := NewVolumeInodeStore(io.NewBuffer(make([]byte, 4*InodeSize)), 4)
	now := time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC)
	wanted := Inode{
		Ino:        3,
		Mode:       Mode{Type: FileTypeRegular, Perm: PermDefaultFile},
		UID:        1000,
		GID:        100,
		LinksCount: 1,
		Size:       5000,
		Blocks:     2,
		Extents:    7,
		ATime:      now,
		MTime:      now,
		CTime:      now,
	}
	if err := store.Put(&wanted); err != nil {
		t.Fatalf("Put(): unexpected err: %v", err)
	}

	var found Inode
	if err := store.Get(3, &found); err != nil {
		t.Fatalf("Get(): unexpected err: %v", err)
	}
	if diff := cmp.Diff(wanted, found); diff != "" {
		t.Fatalf("Get(): mismatch (-wanted +found):\n%s", diff)
	}
}

func TestVolumeInodeStoreOutOfRange(t *testing.T) {
	store := NewVolumeInodeStore(io.NewBuffer(make([]byte, 4*InodeSize)), 4)
	for _, ino := range []Ino{InoNil, 4, 100} {
		if err := store.Put(&Inode{Ino: ino}); !errors.Is(err, InoOutOfRangeErr) {
			t.Fatalf(
				"Put(%d): wanted err `%v`; found `%v`",
				ino,
				InoOutOfRangeErr,
				err,
			)
		}
		var found Inode
		if err := store.Get(ino, &found); !errors.Is(err, InoOutOfRangeErr) {
			t.Fatalf(
				"Get(%d): wanted err `%v`; found `%v`",
				ino,
				InoOutOfRangeErr,
				err,
			)
		}
	}
}
