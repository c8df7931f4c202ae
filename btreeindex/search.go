package btreeindex

// search walks from the current root to the unique leaf that would
// contain key, appending every internal page visited (root-to-parent, the
// leaf itself excluded) onto path in descent order. Each internal page is
// unpinned clean as soon as the descent leaves it.
//
// Tie-break: a separator key equal to the search key routes into the
// right child (child_array[i+1] for the key at slot i), matching the
// invariant in §3 — max-key(child[i]) < key[i] <= min-key(child[i+1]).
func (ix *Index) search(key Key, path *[]pageID) (pageID, error) {
	curr := ix.rootPageID
	for {
		p, err := ix.bm.ReadPage(curr)
		if err != nil {
			return invalidPage, err
		}
		if isLeaf(p) {
			if err := ix.bm.UnpinPage(curr, false); err != nil {
				return invalidPage, err
			}
			return curr, nil
		}

		n := internalNumOccupied(p)
		i := 0
		for i < n && internalKeyAt(p, i) <= key {
			i++
		}
		child := internalChildAt(p, i)

		if err := ix.bm.UnpinPage(curr, false); err != nil {
			return invalidPage, err
		}
		*path = append(*path, curr)
		curr = child
	}
}
