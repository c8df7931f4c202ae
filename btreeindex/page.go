package btreeindex

// Page codec: reinterprets a fixed-size page as the index header, a leaf
// node, or an internal node, discriminated by a type tag in byte 0.
//
// Meta (header) page layout:
//
//	[0]      type tag
//	[1:65]   relation name, NUL-padded
//	[65:69]  attribute byte offset (int32)
//	[69]     attribute type tag
//	[70:74]  root page id (uint32)
//
// Leaf page layout:
//
//	[0]                type tag
//	[1:3]               num_occupied (uint16)
//	[3:7]               right_sibling page id (uint32)
//	[7:7+4*LeafCapacity]                     key_array (int32 each)
//	[7+4*LeafCapacity:7+12*LeafCapacity]      rid_array (8 bytes each)
//
// Internal page layout:
//
//	[0]                type tag
//	[1:3]               num_occupied (uint16)
//	[3:7]               level_above_leaf (uint32); 1 iff children are leaves
//	[7:7+4*InternalCapacity]                       key_array (int32 each)
//	[7+4*InternalCapacity:...+4*(InternalCapacity+1)]  child_array (page ids)

import (
	"bytes"
	"encoding/binary"

	"github.com/dbtrees/bptreeidx/pagedfile"
	"github.com/dbtrees/bptreeidx/rid"
)

const (
	pageTypeMeta     = byte(0)
	pageTypeLeaf     = byte(1)
	pageTypeInternal = byte(2)

	offType = 0

	offRelationName    = 1
	relationNameLen    = 64
	offAttrByteOffset  = offRelationName + relationNameLen
	offAttrType        = offAttrByteOffset + 4
	offRootPageNo      = offAttrType + 1

	offLeafNumOccupied   = 1
	offLeafRightSibling  = offLeafNumOccupied + 2
	leafHeaderSize       = offLeafRightSibling + 4
	leafKeyArrayOffset   = leafHeaderSize

	offInternalNumOccupied = 1
	offInternalLevel       = offInternalNumOccupied + 2
	internalHeaderSize     = offInternalLevel + 4
	internalKeyArrayOffset = internalHeaderSize

	keySize   = 4
	ridSize   = 8
	childSize = 4
)

const (
	// LeafCapacity is the maximum number of (key, rid) entries a leaf page
	// can hold.
	LeafCapacity = (pagedfile.PageSize - leafHeaderSize) / (keySize + ridSize)
	leafRIDArrayOffset = leafKeyArrayOffset + LeafCapacity*keySize

	// InternalCapacity is the maximum number of separator keys an internal
	// page can hold (it has InternalCapacity+1 children).
	InternalCapacity          = (pagedfile.PageSize - internalHeaderSize - childSize) / (keySize + childSize)
	internalChildArrayOffset  = internalKeyArrayOffset + InternalCapacity*keySize
)

// pageType reports which of the three variants a page currently holds.
func pageType(p *pagedfile.Page) byte { return p[offType] }

func isLeaf(p *pagedfile.Page) bool     { return pageType(p) == pageTypeLeaf }
func isInternal(p *pagedfile.Page) bool { return pageType(p) == pageTypeInternal }

// ─── meta page ──────────────────────────────────────────────────────────

func initMetaPage(p *pagedfile.Page, relationName string, attrByteOffset int32, attrType AttrType, rootPageNo pageID) {
	zeroPage(p)
	p[offType] = pageTypeMeta
	copy(p[offRelationName:offRelationName+relationNameLen], []byte(relationName))
	binary.LittleEndian.PutUint32(p[offAttrByteOffset:], uint32(attrByteOffset))
	p[offAttrType] = byte(attrType)
	setMetaRootPageNo(p, rootPageNo)
}

func metaRelationName(p *pagedfile.Page) string {
	raw := p[offRelationName : offRelationName+relationNameLen]
	return string(bytes.TrimRight(raw, "\x00"))
}

func metaAttrByteOffset(p *pagedfile.Page) int32 {
	return int32(binary.LittleEndian.Uint32(p[offAttrByteOffset:]))
}

func metaAttrType(p *pagedfile.Page) AttrType { return AttrType(p[offAttrType]) }

func metaRootPageNo(p *pagedfile.Page) pageID {
	return pageID(binary.LittleEndian.Uint32(p[offRootPageNo:]))
}

func setMetaRootPageNo(p *pagedfile.Page, id pageID) {
	binary.LittleEndian.PutUint32(p[offRootPageNo:], uint32(id))
}

// ─── leaf page ──────────────────────────────────────────────────────────

func initLeafPage(p *pagedfile.Page) {
	zeroPage(p)
	p[offType] = pageTypeLeaf
	setLeafNumOccupied(p, 0)
	setLeafRightSibling(p, invalidPage)
}

func leafNumOccupied(p *pagedfile.Page) int {
	return int(binary.LittleEndian.Uint16(p[offLeafNumOccupied:]))
}

func setLeafNumOccupied(p *pagedfile.Page, n int) {
	binary.LittleEndian.PutUint16(p[offLeafNumOccupied:], uint16(n))
}

func leafRightSibling(p *pagedfile.Page) pageID {
	return pageID(binary.LittleEndian.Uint32(p[offLeafRightSibling:]))
}

func setLeafRightSibling(p *pagedfile.Page, id pageID) {
	binary.LittleEndian.PutUint32(p[offLeafRightSibling:], uint32(id))
}

func leafKeyAt(p *pagedfile.Page, i int) Key {
	off := leafKeyArrayOffset + i*keySize
	return int32(binary.LittleEndian.Uint32(p[off:]))
}

func setLeafKeyAt(p *pagedfile.Page, i int, k Key) {
	off := leafKeyArrayOffset + i*keySize
	binary.LittleEndian.PutUint32(p[off:], uint32(k))
}

func leafRIDAt(p *pagedfile.Page, i int) rid.RID {
	off := leafRIDArrayOffset + i*ridSize
	return rid.RID{
		Page: pageID(binary.LittleEndian.Uint32(p[off:])),
		Slot: binary.LittleEndian.Uint32(p[off+4:]),
	}
}

func setLeafRIDAt(p *pagedfile.Page, i int, r rid.RID) {
	off := leafRIDArrayOffset + i*ridSize
	binary.LittleEndian.PutUint32(p[off:], uint32(r.Page))
	binary.LittleEndian.PutUint32(p[off+4:], r.Slot)
}

func setLeafEntry(p *pagedfile.Page, i int, k Key, r rid.RID) {
	setLeafKeyAt(p, i, k)
	setLeafRIDAt(p, i, r)
}

// ─── internal page ──────────────────────────────────────────────────────

func initInternalPage(p *pagedfile.Page, level uint32) {
	zeroPage(p)
	p[offType] = pageTypeInternal
	setInternalNumOccupied(p, 0)
	setInternalLevel(p, level)
}

func internalNumOccupied(p *pagedfile.Page) int {
	return int(binary.LittleEndian.Uint16(p[offInternalNumOccupied:]))
}

func setInternalNumOccupied(p *pagedfile.Page, n int) {
	binary.LittleEndian.PutUint16(p[offInternalNumOccupied:], uint16(n))
}

// internalLevel is the level_above_leaf field: 1 iff this node's children
// are leaves, else > 1.
func internalLevel(p *pagedfile.Page) uint32 {
	return binary.LittleEndian.Uint32(p[offInternalLevel:])
}

func setInternalLevel(p *pagedfile.Page, level uint32) {
	binary.LittleEndian.PutUint32(p[offInternalLevel:], level)
}

func internalChildrenAreLeaves(p *pagedfile.Page) bool { return internalLevel(p) == 1 }

func internalKeyAt(p *pagedfile.Page, i int) Key {
	off := internalKeyArrayOffset + i*keySize
	return int32(binary.LittleEndian.Uint32(p[off:]))
}

func setInternalKeyAt(p *pagedfile.Page, i int, k Key) {
	off := internalKeyArrayOffset + i*keySize
	binary.LittleEndian.PutUint32(p[off:], uint32(k))
}

func internalChildAt(p *pagedfile.Page, i int) pageID {
	off := internalChildArrayOffset + i*childSize
	return pageID(binary.LittleEndian.Uint32(p[off:]))
}

func setInternalChildAt(p *pagedfile.Page, i int, id pageID) {
	off := internalChildArrayOffset + i*childSize
	binary.LittleEndian.PutUint32(p[off:], uint32(id))
}

func zeroPage(p *pagedfile.Page) {
	for i := range p {
		p[i] = 0
	}
}
