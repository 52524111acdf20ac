package alloc

import "testing"

func TestBitmap_FirstClearRun(t *testing.T) {
	type testCase struct {
		name        string
		bits        uint64
		set         []uint64
		length      uint64
		wantedStart uint64
		wantedOK    bool
	}

	for _, tc := range []testCase{{
		name:        "empty",
		bits:        16,
		length:      4,
		wantedStart: 0,
		wantedOK:    true,
	}, {
		name:        "skips-short-gap",
		bits:        16,
		set:         []uint64{0, 3},
		length:      3,
		wantedStart: 4,
		wantedOK:    true,
	}, {
		name:        "run-ends-at-last-bit",
		bits:        10,
		set:         []uint64{0, 1, 2, 3, 4, 5, 6},
		length:      3,
		wantedStart: 7,
		wantedOK:    true,
	}, {
		name:     "no-run",
		bits:     8,
		set:      []uint64{1, 3, 5, 7},
		length:   2,
		wantedOK: false,
	}, {
		name:     "zero-length",
		bits:     8,
		length:   0,
		wantedOK: false,
	}, {
		name:     "longer-than-bitmap",
		bits:     8,
		length:   9,
		wantedOK: false,
	}} {
		t.Run(tc.name, func(t *testing.T) {
			bm := New(tc.bits)
			for _, i := range tc.set {
				bm.Set(i)
			}
			start, ok := bm.FirstClearRun(tc.length)
			if ok != tc.wantedOK {
				t.Fatalf(
					"FirstClearRun(%d): wanted ok `%t`; found `%t`",
					tc.length,
					tc.wantedOK,
					ok,
				)
			}
			if ok && start != tc.wantedStart {
				t.Fatalf(
					"FirstClearRun(%d): wanted `%d`; found `%d`",
					tc.length,
					tc.wantedStart,
					start,
				)
			}
		})
	}
}

func TestBitmap_FirstClearFrom(t *testing.T) {
	bm := New(20)
	for i := uint64(0); i < 17; i++ {
		bm.Set(i)
	}
	if i, ok := bm.FirstClearFrom(1); !ok || i != 17 {
		t.Fatalf("FirstClearFrom(1): wanted `17`; found `%d` (ok=%t)", i, ok)
	}
	bm.Set(17)
	bm.Set(18)
	bm.Set(19)
	if i, ok := bm.FirstClearFrom(0); ok {
		t.Fatalf("FirstClearFrom(0): wanted none; found `%d`", i)
	}
}

func TestBitmap_MSBFirst(t *testing.T) {
	bm := New(16)
	bm.Set(0)
	bm.Set(15)
	if bm.Bytes()[0] != 0b1000_0000 || bm.Bytes()[1] != 0b0000_0001 {
		t.Fatalf("Set(): wanted `0x8001`; found `%#x`", bm.Bytes())
	}
	if bm.CountClear() != 14 {
		t.Fatalf("CountClear(): wanted `14`; found `%d`", bm.CountClear())
	}
	bm.Clear(0)
	if bm.Test(0) {
		t.Fatal("Clear(0): bit still set")
	}
}

func TestBitmap_IsRangeClear(t *testing.T) {
	bm := New(8)
	bm.Set(4)
	if !bm.IsRangeClear(0, 4) {
		t.Fatal("IsRangeClear(0, 4): wanted `true`")
	}
	if bm.IsRangeClear(2, 3) {
		t.Fatal("IsRangeClear(2, 3): wanted `false`")
	}
	if bm.IsRangeClear(6, 3) {
		t.Fatal("IsRangeClear(6, 3): out of range; wanted `false`")
	}
}
