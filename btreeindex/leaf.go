package btreeindex

import (
	"sort"

	"github.com/dbtrees/bptreeidx/rid"
)

type leafEntry struct {
	key Key
	rid rid.RID
}

// insertIntoLeaf adds (key, r) to the leaf at leafID. If the leaf has room
// the entry is shifted into place in ascending order and ok is true with no
// split. If the leaf is full, it is split via collect-sort-split: every
// existing entry plus the new one is gathered, sorted, and divided between
// the original page and a freshly allocated right sibling; the smallest key
// of the right sibling is returned as the separator to propagate upward.
func (ix *Index) insertIntoLeaf(leafID pageID, key Key, r rid.RID) (splitKey Key, rightID pageID, split bool, err error) {
	p, err := ix.bm.ReadPage(leafID)
	if err != nil {
		return 0, 0, false, err
	}

	n := leafNumOccupied(p)
	if n < LeafCapacity {
		i := n
		for i > 0 && leafKeyAt(p, i-1) >= key {
			setLeafEntry(p, i, leafKeyAt(p, i-1), leafRIDAt(p, i-1))
			i--
		}
		setLeafEntry(p, i, key, r)
		setLeafNumOccupied(p, n+1)
		return 0, 0, false, ix.bm.UnpinPage(leafID, true)
	}

	entries := make([]leafEntry, 0, n+1)
	for i := 0; i < n; i++ {
		entries = append(entries, leafEntry{leafKeyAt(p, i), leafRIDAt(p, i)})
	}
	entries = append(entries, leafEntry{key, r})
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	oldRightSibling := leafRightSibling(p)

	mid := (len(entries) + 1) / 2

	newID, newPage, err := ix.bm.AllocPage()
	if err != nil {
		ix.bm.UnpinPage(leafID, false)
		return 0, 0, false, err
	}
	initLeafPage(newPage)
	for i := mid; i < len(entries); i++ {
		setLeafEntry(newPage, i-mid, entries[i].key, entries[i].rid)
	}
	setLeafNumOccupied(newPage, len(entries)-mid)
	setLeafRightSibling(newPage, oldRightSibling)

	initLeafPage(p)
	for i := 0; i < mid; i++ {
		setLeafEntry(p, i, entries[i].key, entries[i].rid)
	}
	setLeafNumOccupied(p, mid)
	setLeafRightSibling(p, newID)

	if err := ix.bm.UnpinPage(leafID, true); err != nil {
		ix.bm.UnpinPage(newID, true)
		return 0, 0, false, err
	}
	if err := ix.bm.UnpinPage(newID, true); err != nil {
		return 0, 0, false, err
	}

	return entries[mid].key, newID, true, nil
}
