package btreeindex

import (
	"context"
	"io"

	"github.com/cockroachdb/tokenbucket"

	"github.com/dbtrees/bptreeidx/bufmgr"
	"github.com/dbtrees/bptreeidx/rid"
)

// Index is a disk-backed B+-tree mapping one integer attribute to a rid.RID.
// Page 1 of the underlying file is always the header; every other allocated
// page is a leaf or an internal node reachable from the header's root
// pointer. Index does not know how the attribute is extracted from a
// record; callers supply that as a function when bulk loading.
type Index struct {
	bm             *bufmgr.BufMgr
	headerPageID   pageID
	rootPageID     pageID
	relationName   string
	attrByteOffset int32
	attrType       AttrType
	scan           *scanState
}

// Construct opens an existing index over bm's file, or creates one if
// fresh is true. On open, the header is checked against relationName,
// attrByteOffset and attrType and ErrBadIndexInfo is returned on mismatch —
// this is the only case in which construction can fail for reasons other
// than I/O.
func Construct(bm *bufmgr.BufMgr, fresh bool, relationName string, attrByteOffset int32, attrType AttrType) (*Index, error) {
	if fresh {
		headerID, headerPage, err := bm.AllocPage()
		if err != nil {
			return nil, err
		}
		rootID, rootPage, err := bm.AllocPage()
		if err != nil {
			bm.UnpinPage(headerID, false)
			return nil, err
		}
		initLeafPage(rootPage)
		if err := bm.UnpinPage(rootID, true); err != nil {
			return nil, err
		}
		initMetaPage(headerPage, relationName, attrByteOffset, attrType, rootID)
		if err := bm.UnpinPage(headerID, true); err != nil {
			return nil, err
		}
		return &Index{
			bm:             bm,
			headerPageID:   headerID,
			rootPageID:     rootID,
			relationName:   relationName,
			attrByteOffset: attrByteOffset,
			attrType:       attrType,
		}, nil
	}

	headerID := pageID(1)
	p, err := bm.ReadPage(headerID)
	if err != nil {
		return nil, err
	}
	if metaRelationName(p) != relationName || metaAttrByteOffset(p) != attrByteOffset || metaAttrType(p) != attrType {
		bm.UnpinPage(headerID, false)
		return nil, ErrBadIndexInfo
	}
	root := metaRootPageNo(p)
	if err := bm.UnpinPage(headerID, false); err != nil {
		return nil, err
	}
	return &Index{
		bm:             bm,
		headerPageID:   headerID,
		rootPageID:     root,
		relationName:   relationName,
		attrByteOffset: attrByteOffset,
		attrType:       attrType,
	}, nil
}

// Insert adds (key, r) to the tree, splitting leaves and internal nodes and
// growing a new root as necessary.
func (ix *Index) Insert(key Key, r rid.RID) error {
	var path []pageID
	leafID, err := ix.search(key, &path)
	if err != nil {
		return err
	}

	sepKey, rightID, split, err := ix.insertIntoLeaf(leafID, key, r)
	if err != nil || !split {
		return err
	}

	leftID := leafID
	childrenAreLeaves := true
	for {
		if len(path) == 0 {
			newRoot, err := ix.makeNewRoot(sepKey, leftID, rightID, childrenAreLeaves)
			if err != nil {
				return err
			}
			ix.rootPageID = newRoot
			return ix.writeRootPointer(newRoot)
		}

		parent := path[len(path)-1]
		path = path[:len(path)-1]

		nextSep, nextRight, split, err := ix.insertIntoInternal(parent, sepKey, rightID)
		if err != nil {
			return err
		}
		if !split {
			return nil
		}

		sepKey, rightID = nextSep, nextRight
		leftID = parent
		childrenAreLeaves = false
	}
}

func (ix *Index) writeRootPointer(newRoot pageID) error {
	p, err := ix.bm.ReadPage(ix.headerPageID)
	if err != nil {
		return err
	}
	setMetaRootPageNo(p, newRoot)
	return ix.bm.UnpinPage(ix.headerPageID, true)
}

// RecordScanner is the base-relation file-scan interface consumed by
// BulkLoad. It returns io.EOF once exhausted, which BulkLoad treats as a
// normal end of input rather than an error.
type RecordScanner interface {
	Next() (rid.RID, []byte, error)
}

// BulkLoad drives scanner to completion, extracting a key from each record
// with keyOf and inserting (key, rid) into the tree. limiter, if non-nil,
// throttles the insert rate — useful for benchmarking against a cold cache
// without saturating the disk immediately.
func (ix *Index) BulkLoad(ctx context.Context, scanner RecordScanner, keyOf func([]byte) Key, limiter *tokenbucket.TokenBucket) error {
	for {
		r, buf, err := scanner.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if limiter != nil {
			if err := limiter.WaitCtx(ctx, 1); err != nil {
				return err
			}
		}
		if err := ix.Insert(keyOf(buf), r); err != nil {
			return err
		}
	}
}

// Metrics exposes the buffer manager's Prometheus counters for this index.
func (ix *Index) Metrics() *bufmgr.Metrics { return ix.bm.Metrics() }

// Destruct ends any live scan, flushes all dirty pages and closes the
// underlying file.
func (ix *Index) Destruct() error {
	ix.scan = nil
	return ix.bm.Close()
}
