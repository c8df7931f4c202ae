package btreeindex

import "github.com/dbtrees/bptreeidx/rid"

// scanState holds the cursor for an in-progress range scan. No page is
// pinned between calls; scanNext re-pins the current leaf each time it
// runs, which costs nothing extra once that leaf is resident in the buffer
// pool. A scanState survives past IndexScanCompleted — only endScan clears
// it — so repeated scanNext calls after exhaustion keep returning the same
// error rather than re-deriving it.
type scanState struct {
	lowVal  Key
	lowOp   Operator
	highVal Key
	highOp  Operator

	leaf pageID
	idx  int
}

func satisfiesLow(key, low Key, op Operator) bool {
	switch op {
	case GT:
		return key > low
	case GTE:
		return key >= low
	default:
		return false
	}
}

func satisfiesHigh(key, high Key, op Operator) bool {
	switch op {
	case LT:
		return key < high
	case LTE:
		return key <= high
	default:
		return false
	}
}

// startScan validates the bounds, ends any scan already in progress, locates
// the leaf that would hold lowVal, and positions the cursor at the first
// entry satisfying both bounds. If that leaf holds no such entry, the scan
// is not advanced into the right sibling chain — ErrNoSuchKeyFound is raised
// immediately, even if a later leaf would have matched, and the index is
// left IDLE rather than resuming whatever scan was live before this call.
func (ix *Index) startScan(lowVal Key, lowOp Operator, highVal Key, highOp Operator) error {
	if lowOp != GT && lowOp != GTE {
		return ErrBadOpcodes
	}
	if highOp != LT && highOp != LTE {
		return ErrBadOpcodes
	}
	if lowVal > highVal {
		return ErrBadScanrange
	}

	ix.scan = nil

	var discard []pageID
	leafID, err := ix.search(lowVal, &discard)
	if err != nil {
		return err
	}

	p, err := ix.bm.ReadPage(leafID)
	if err != nil {
		return err
	}

	n := leafNumOccupied(p)
	idx := 0
	for idx < n && !satisfiesLow(leafKeyAt(p, idx), lowVal, lowOp) {
		idx++
	}

	if idx >= n || !satisfiesHigh(leafKeyAt(p, idx), highVal, highOp) {
		ix.bm.UnpinPage(leafID, false)
		return ErrNoSuchKeyFound
	}

	if err := ix.bm.UnpinPage(leafID, false); err != nil {
		return err
	}

	ix.scan = &scanState{
		lowVal:  lowVal,
		lowOp:   lowOp,
		highVal: highVal,
		highOp:  highOp,
		leaf:    leafID,
		idx:     idx,
	}
	return nil
}

// scanNext returns the next matching rid, advancing across the right
// sibling chain as each leaf is exhausted, until a key fails the high
// bound or the chain runs out.
func (ix *Index) scanNext() (rid.RID, error) {
	s := ix.scan
	if s == nil {
		return rid.Zero, ErrScanNotInitialized
	}

	for {
		p, err := ix.bm.ReadPage(s.leaf)
		if err != nil {
			return rid.Zero, err
		}

		n := leafNumOccupied(p)
		if s.idx >= n {
			next := leafRightSibling(p)
			if err := ix.bm.UnpinPage(s.leaf, false); err != nil {
				return rid.Zero, err
			}
			if next == invalidPage {
				return rid.Zero, ErrIndexScanCompleted
			}
			s.leaf = next
			s.idx = 0
			continue
		}

		key := leafKeyAt(p, s.idx)
		if !satisfiesHigh(key, s.highVal, s.highOp) {
			if err := ix.bm.UnpinPage(s.leaf, false); err != nil {
				return rid.Zero, err
			}
			return rid.Zero, ErrIndexScanCompleted
		}

		r := leafRIDAt(p, s.idx)
		s.idx++
		if err := ix.bm.UnpinPage(s.leaf, false); err != nil {
			return rid.Zero, err
		}
		return r, nil
	}
}

// endScan discards the cursor. It is an error to end a scan that was never
// started or has already completed.
func (ix *Index) endScan() error {
	if ix.scan == nil {
		return ErrScanNotInitialized
	}
	ix.scan = nil
	return nil
}

// StartScan begins a range scan over (lowVal lowOp key) && (key highOp
// highVal), e.g. StartScan(10, GTE, 20, LT) for [10, 20). lowOp must be GT
// or GTE, highOp must be LT or LTE; ErrBadOpcodes otherwise. ErrBadScanrange
// is raised when lowVal > highVal, and ErrNoSuchKeyFound when nothing in
// the tree satisfies the range.
func (ix *Index) StartScan(lowVal Key, lowOp Operator, highVal Key, highOp Operator) error {
	return ix.startScan(lowVal, lowOp, highVal, highOp)
}

// ScanNext returns the rid of the next entry in the current scan, in
// ascending key order. It returns ErrScanNotInitialized if no scan is in
// progress, and ErrIndexScanCompleted once the range is exhausted.
func (ix *Index) ScanNext() (rid.RID, error) {
	return ix.scanNext()
}

// EndScan terminates the current scan.
func (ix *Index) EndScan() error {
	return ix.endScan()
}
