package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/weberc2/osfs/pkg/io"
	. "github.com/weberc2/osfs/pkg/types"
)

func TestVolumeExtentStore(t *testing.T) {
	store := NewVolumeExtentStore(
		io.NewBuffer(make([]byte, 4*ExtentRecordSize)),
	)
	if err := store.Put(2, &Extent{Start: 10, Length: 3, Next: 4}); err != nil {
		t.Fatalf("Put(): unexpected err: %v", err)
	}
	if err := store.Put(4, &Extent{Start: 20, Length: 1}); err != nil {
		t.Fatalf("Put(): unexpected err: %v", err)
	}

	found, err := store.GetAll(4)
	if err != nil {
		t.Fatalf("GetAll(): unexpected err: %v", err)
	}
	wanted := []Extent{
		{},
		{Start: 10, Length: 3, Next: 4},
		{},
		{Start: 20, Length: 1},
	}
	if diff := cmp.Diff(wanted, found); diff != "" {
		t.Fatalf("GetAll(): mismatch (-wanted +found):\n%s", diff)
	}

	if err := store.Put(5, &Extent{}); err == nil {
		t.Fatal("Put(5): wanted out-of-bounds err; found `nil`")
	}
}
