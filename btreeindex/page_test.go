package btreeindex

import (
	"testing"

	"github.com/dbtrees/bptreeidx/pagedfile"
	"github.com/dbtrees/bptreeidx/rid"
)

func TestMetaPageRoundTrip(t *testing.T) {
	var p pagedfile.Page
	initMetaPage(&p, "relA", 4, Integer, pageID(7))

	if got := metaRelationName(&p); got != "relA" {
		t.Fatalf("relation name = %q", got)
	}
	if got := metaAttrByteOffset(&p); got != 4 {
		t.Fatalf("attr byte offset = %d", got)
	}
	if got := metaAttrType(&p); got != Integer {
		t.Fatalf("attr type = %v", got)
	}
	if got := metaRootPageNo(&p); got != 7 {
		t.Fatalf("root page = %d", got)
	}

	setMetaRootPageNo(&p, 9)
	if got := metaRootPageNo(&p); got != 9 {
		t.Fatalf("root page after update = %d", got)
	}
}

func TestLeafPageEntries(t *testing.T) {
	var p pagedfile.Page
	initLeafPage(&p)

	if !isLeaf(&p) || isInternal(&p) {
		t.Fatalf("initLeafPage did not set leaf tag")
	}
	if n := leafNumOccupied(&p); n != 0 {
		t.Fatalf("fresh leaf has %d entries, want 0", n)
	}
	if sib := leafRightSibling(&p); sib != invalidPage {
		t.Fatalf("fresh leaf right sibling = %d, want invalid", sib)
	}

	setLeafEntry(&p, 0, 42, rid.RID{Page: 3, Slot: 1})
	setLeafNumOccupied(&p, 1)
	if k := leafKeyAt(&p, 0); k != 42 {
		t.Fatalf("key = %d", k)
	}
	if r := leafRIDAt(&p, 0); r != (rid.RID{Page: 3, Slot: 1}) {
		t.Fatalf("rid = %+v", r)
	}

	setLeafRightSibling(&p, 99)
	if sib := leafRightSibling(&p); sib != 99 {
		t.Fatalf("right sibling = %d", sib)
	}
}

func TestInternalPageEntries(t *testing.T) {
	var p pagedfile.Page
	initInternalPage(&p, 1)

	if !isInternal(&p) || isLeaf(&p) {
		t.Fatalf("initInternalPage did not set internal tag")
	}
	if !internalChildrenAreLeaves(&p) {
		t.Fatalf("level 1 internal node should report children as leaves")
	}

	setInternalKeyAt(&p, 0, 50)
	setInternalChildAt(&p, 0, 10)
	setInternalChildAt(&p, 1, 11)
	setInternalNumOccupied(&p, 1)

	if k := internalKeyAt(&p, 0); k != 50 {
		t.Fatalf("key = %d", k)
	}
	if c := internalChildAt(&p, 0); c != 10 {
		t.Fatalf("child[0] = %d", c)
	}
	if c := internalChildAt(&p, 1); c != 11 {
		t.Fatalf("child[1] = %d", c)
	}

	setInternalLevel(&p, 3)
	if internalChildrenAreLeaves(&p) {
		t.Fatalf("level 3 internal node should not report children as leaves")
	}
}

func TestCapacitiesFitInPage(t *testing.T) {
	if leafRIDArrayOffset+LeafCapacity*ridSize > pagedfile.PageSize {
		t.Fatalf("leaf layout overflows page: rid array ends at %d", leafRIDArrayOffset+LeafCapacity*ridSize)
	}
	if internalChildArrayOffset+(InternalCapacity+1)*childSize > pagedfile.PageSize {
		t.Fatalf("internal layout overflows page: child array ends at %d", internalChildArrayOffset+(InternalCapacity+1)*childSize)
	}
}
