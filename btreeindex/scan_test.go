package btreeindex

import (
	"testing"

	"github.com/dbtrees/bptreeidx/rid"
)

func populated(t *testing.T, keys []int32) *Index {
	t.Helper()
	ix := newTestIndex(t, 16)
	for _, k := range keys {
		if err := ix.Insert(k, rid.RID{Page: 1, Slot: uint32(k)}); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	return ix
}

func drain(t *testing.T, ix *Index) []int32 {
	t.Helper()
	var got []int32
	for {
		r, err := ix.ScanNext()
		if err == ErrIndexScanCompleted {
			break
		}
		if err != nil {
			t.Fatalf("ScanNext: %v", err)
		}
		got = append(got, int32(r.Slot))
	}
	return got
}

func TestScanClosedInterval(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10, 15, 20})
	if err := ix.StartScan(5, GTE, 15, LTE); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	got := drain(t, ix)
	want := []int32{5, 10, 15}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanOpenInterval(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10, 15, 20})
	if err := ix.StartScan(5, GT, 15, LT); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	got := drain(t, ix)
	if len(got) != 1 || got[0] != 10 {
		t.Fatalf("got %v, want [10]", got)
	}
}

func TestScanSingleKey(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10, 15, 20})
	if err := ix.StartScan(10, GTE, 10, LTE); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	got := drain(t, ix)
	if len(got) != 1 || got[0] != 10 {
		t.Fatalf("got %v, want [10]", got)
	}
}

func TestScanEmptyOpenRangeAtSameKey(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10, 15, 20})
	if err := ix.StartScan(10, GT, 10, LT); err == nil {
		t.Fatalf("expected ErrNoSuchKeyFound for an empty open range, got nil")
	} else if err != ErrNoSuchKeyFound {
		t.Fatalf("got %v, want ErrNoSuchKeyFound", err)
	}
}

func TestScanLowAboveMaxKey(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10, 15, 20})
	if err := ix.StartScan(100, GTE, 200, LTE); err != ErrNoSuchKeyFound {
		t.Fatalf("got %v, want ErrNoSuchKeyFound", err)
	}
}

func TestScanBadScanrange(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10})
	if err := ix.StartScan(20, GTE, 10, LTE); err != ErrBadScanrange {
		t.Fatalf("got %v, want ErrBadScanrange", err)
	}
}

func TestScanBadOpcodes(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10})
	if err := ix.StartScan(1, LT, 10, LTE); err != ErrBadOpcodes {
		t.Fatalf("low bound: got %v, want ErrBadOpcodes", err)
	}
	if err := ix.StartScan(1, GTE, 10, GTE); err != ErrBadOpcodes {
		t.Fatalf("high bound: got %v, want ErrBadOpcodes", err)
	}
}

func TestScanNextWithoutStartScanIsError(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10})
	if _, err := ix.ScanNext(); err != ErrScanNotInitialized {
		t.Fatalf("got %v, want ErrScanNotInitialized", err)
	}
	if err := ix.EndScan(); err != ErrScanNotInitialized {
		t.Fatalf("got %v, want ErrScanNotInitialized", err)
	}
}

func TestScanPastCompletionKeepsErroring(t *testing.T) {
	ix := populated(t, []int32{1, 5})
	if err := ix.StartScan(0, GTE, 10, LTE); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	drain(t, ix)
	if _, err := ix.ScanNext(); err != ErrIndexScanCompleted {
		t.Fatalf("got %v, want ErrIndexScanCompleted", err)
	}
	if err := ix.EndScan(); err != nil {
		t.Fatalf("EndScan: %v", err)
	}
	if _, err := ix.ScanNext(); err != ErrScanNotInitialized {
		t.Fatalf("after EndScan got %v, want ErrScanNotInitialized", err)
	}
}

func TestStartScanEndsPriorScanEvenOnFailure(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10, 15, 20})

	if err := ix.StartScan(5, GTE, 15, LTE); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	if _, err := ix.ScanNext(); err != nil {
		t.Fatalf("ScanNext: %v", err)
	}

	if err := ix.StartScan(100, GTE, 200, LTE); err != ErrNoSuchKeyFound {
		t.Fatalf("restart got %v, want ErrNoSuchKeyFound", err)
	}

	if _, err := ix.ScanNext(); err != ErrScanNotInitialized {
		t.Fatalf("after failed restart got %v, want ErrScanNotInitialized (index should be IDLE, not resuming the old scan)", err)
	}
	if err := ix.EndScan(); err != ErrScanNotInitialized {
		t.Fatalf("EndScan after failed restart got %v, want ErrScanNotInitialized", err)
	}
}

func TestStartScanWhileLiveReplacesCursor(t *testing.T) {
	ix := populated(t, []int32{1, 5, 10, 15, 20})

	if err := ix.StartScan(1, GTE, 20, LTE); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	if _, err := ix.ScanNext(); err != nil {
		t.Fatalf("ScanNext: %v", err)
	}

	if err := ix.StartScan(15, GTE, 20, LTE); err != nil {
		t.Fatalf("restart StartScan: %v", err)
	}
	got := drain(t, ix)
	want := []int32{15, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanCrossesLeafSplits(t *testing.T) {
	keys := make([]int32, LeafCapacity*3)
	for i := range keys {
		keys[i] = int32(i)
	}
	ix := populated(t, keys)

	if err := ix.StartScan(0, GTE, int32(len(keys)-1), LTE); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	got := drain(t, ix)
	if len(got) != len(keys) {
		t.Fatalf("scanned %d, want %d", len(got), len(keys))
	}
	for i := range got {
		if got[i] != int32(i) {
			t.Fatalf("entry %d = %d, want %d", i, got[i], i)
		}
	}
}
