package btreeindex

// insertIntoInternal adds the separator key and its right child to the
// internal page at parentID, the child being the right half produced by a
// split one level below. If the page has room the pair is shifted into
// place. If the page is full it is split by the same collect-sort-split
// approach as a leaf, except the median key is promoted rather than kept in
// either half — child is used to insert the pair, everything else shifts to
// make room for the extra key and child slot.
func (ix *Index) insertIntoInternal(parentID pageID, key Key, child pageID) (splitKey Key, rightID pageID, split bool, err error) {
	p, err := ix.bm.ReadPage(parentID)
	if err != nil {
		return 0, 0, false, err
	}

	n := internalNumOccupied(p)
	if n < InternalCapacity {
		i := n
		for i > 0 && internalKeyAt(p, i-1) > key {
			setInternalKeyAt(p, i, internalKeyAt(p, i-1))
			setInternalChildAt(p, i+1, internalChildAt(p, i))
			i--
		}
		setInternalKeyAt(p, i, key)
		setInternalChildAt(p, i+1, child)
		setInternalNumOccupied(p, n+1)
		return 0, 0, false, ix.bm.UnpinPage(parentID, true)
	}

	pos := 0
	for pos < n && internalKeyAt(p, pos) < key {
		pos++
	}

	keys := make([]Key, 0, n+1)
	for i := 0; i < pos; i++ {
		keys = append(keys, internalKeyAt(p, i))
	}
	keys = append(keys, key)
	for i := pos; i < n; i++ {
		keys = append(keys, internalKeyAt(p, i))
	}

	children := make([]pageID, 0, n+2)
	for i := 0; i <= pos; i++ {
		children = append(children, internalChildAt(p, i))
	}
	children = append(children, child)
	for i := pos + 1; i <= n; i++ {
		children = append(children, internalChildAt(p, i))
	}

	level := internalLevel(p)
	mid := (len(keys) + 1) / 2
	promoted := keys[mid]

	newID, newPage, err := ix.bm.AllocPage()
	if err != nil {
		ix.bm.UnpinPage(parentID, false)
		return 0, 0, false, err
	}
	initInternalPage(newPage, level)
	rightKeys, rightChildren := keys[mid+1:], children[mid+1:]
	for i, k := range rightKeys {
		setInternalKeyAt(newPage, i, k)
	}
	for i, c := range rightChildren {
		setInternalChildAt(newPage, i, c)
	}
	setInternalNumOccupied(newPage, len(rightKeys))

	initInternalPage(p, level)
	leftKeys, leftChildren := keys[:mid], children[:mid+1]
	for i, k := range leftKeys {
		setInternalKeyAt(p, i, k)
	}
	for i, c := range leftChildren {
		setInternalChildAt(p, i, c)
	}
	setInternalNumOccupied(p, len(leftKeys))

	if err := ix.bm.UnpinPage(parentID, true); err != nil {
		ix.bm.UnpinPage(newID, true)
		return 0, 0, false, err
	}
	if err := ix.bm.UnpinPage(newID, true); err != nil {
		return 0, 0, false, err
	}

	return promoted, newID, true, nil
}

// makeNewRoot allocates a fresh internal page with a single separator key
// pointing at leftChild and rightChild, used when a split propagates past
// the current root. childrenAreLeaves is true only when left/rightChild are
// leaf pages.
func (ix *Index) makeNewRoot(key Key, leftChild, rightChild pageID, childrenAreLeaves bool) (pageID, error) {
	newID, p, err := ix.bm.AllocPage()
	if err != nil {
		return invalidPage, err
	}
	level := uint32(2)
	if childrenAreLeaves {
		level = 1
	}
	initInternalPage(p, level)
	setInternalKeyAt(p, 0, key)
	setInternalChildAt(p, 0, leftChild)
	setInternalChildAt(p, 1, rightChild)
	setInternalNumOccupied(p, 1)
	if err := ix.bm.UnpinPage(newID, true); err != nil {
		return invalidPage, err
	}
	return newID, nil
}
