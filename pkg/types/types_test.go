package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	for _, tc := range []struct {
		err  *Error
		kind ConstError
	}{
		{OutOfBlocksErr, ResourceExhaustedErr},
		{OutOfInodesErr, ResourceExhaustedErr},
		{UnsupportedModeErr, InvalidArgumentErr},
		{NameTooLongErr, InvalidArgumentErr},
		{InoOutOfRangeErr, NotFoundErr},
		{EntryNotFoundErr, NotFoundErr},
		{ExtentTableFullErr, AllocationFailureErr},
	} {
		wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", tc.err))
		if !errors.Is(wrapped, tc.err) {
			t.Fatalf("errors.Is(`%v`, `%v`): wanted `true`", wrapped, tc.err)
		}
		if !errors.Is(wrapped, tc.kind) {
			t.Fatalf("errors.Is(`%v`, `%v`): wanted `true`", wrapped, tc.kind)
		}
	}

	if errors.Is(OutOfBlocksErr, NotFoundErr) {
		t.Fatal("errors.Is(OutOfBlocksErr, NotFoundErr): wanted `false`")
	}
}

func TestFileTypeValidate(t *testing.T) {
	for _, ft := range []FileType{
		FileTypeRegular,
		FileTypeDir,
		FileTypeSymlink,
	} {
		if err := ft.Validate(); err != nil {
			t.Fatalf("Validate(`%s`): unexpected err: %v", ft, err)
		}
	}

	for _, ft := range []FileType{
		FileTypeInvalid,
		FileTypeFifo,
		FileTypeSocket,
		FileType(42),
	} {
		if err := ft.Validate(); !errors.Is(err, UnsupportedModeErr) {
			t.Fatalf(
				"Validate(`%s`): wanted `%v`; found `%v`",
				ft,
				UnsupportedModeErr,
				err,
			)
		}
	}
}

func TestDirEntriesPerBlock(t *testing.T) {
	if DirEntriesPerBlock != 15 {
		t.Fatalf("DirEntriesPerBlock: wanted `15`; found `%d`", DirEntriesPerBlock)
	}
}
