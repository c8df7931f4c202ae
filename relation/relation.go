// Package relation provides the minimal base-relation store and scanner the
// B+-tree index bulk-loads from at construction time. It is an external
// collaborator from the index's point of view — the index core consumes
// only the Scanner interface it defines in btreeindex — but a runnable
// module needs a real one, modeled on BadgerDB's FileScan/RECORD tester
// fixture: one fixed-size record per slot, sequential scan order.
package relation

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/dbtrees/bptreeidx/pagedfile"
	"github.com/dbtrees/bptreeidx/rid"
)

// RecordSize is the width of one fixed-size record:
//
//	[0:4]   int32   I — the integer attribute indexes typically key on
//	[4:12]  float64 D
//	[12:76] [64]byte S
const (
	RecordSize  = 4 + 8 + 64
	OffsetI     = 0
	OffsetD     = 4
	OffsetS     = 12
	recsPerPage = pagedfile.PageSize / RecordSize
)

// Record mirrors the tester fixture's RECORD struct.
type Record struct {
	I int32
	D float64
	S [64]byte
}

// Encode writes r into a RecordSize-byte buffer.
func (r Record) Encode() []byte {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[OffsetI:], uint32(r.I))
	binary.LittleEndian.PutUint64(buf[OffsetD:], math.Float64bits(r.D))
	copy(buf[OffsetS:], r.S[:])
	return buf
}

// Decode reads a Record back out of a RecordSize-byte buffer.
func Decode(buf []byte) Record {
	var r Record
	r.I = int32(binary.LittleEndian.Uint32(buf[OffsetI:]))
	r.D = math.Float64frombits(binary.LittleEndian.Uint64(buf[OffsetD:]))
	copy(r.S[:], buf[OffsetS:OffsetS+64])
	return r
}

// Relation is an append-only heap of fixed-size records backed by a
// paged file: record k lives at page 1+k/recsPerPage, slot k%recsPerPage.
type Relation struct {
	file *pagedfile.File
	n    int64
}

// Create makes a new, empty relation file named name.
func Create(name string) (*Relation, error) {
	f, err := pagedfile.Create(name)
	if err != nil {
		return nil, errors.Wrapf(err, "relation: create %s", name)
	}
	return &Relation{file: f}, nil
}

// Insert appends a record and returns its RID.
func (r *Relation) Insert(rec Record) (rid.RID, error) {
	slot := r.n % recsPerPage
	if slot == 0 {
		if _, err := r.file.AllocatePage(); err != nil {
			return rid.Zero, err
		}
	}
	pageID := pagedfile.PageId(1 + r.n/recsPerPage)
	page, err := r.file.ReadPage(pageID)
	if err != nil {
		return rid.Zero, err
	}
	copy(page[slot*RecordSize:], Record(rec).Encode())
	if err := r.file.WritePage(pageID, page); err != nil {
		return rid.Zero, err
	}
	id := rid.RID{Page: pageID, Slot: uint32(slot)}
	r.n++
	return id, nil
}

// Fetch reads back the record named by id.
func (r *Relation) Fetch(id rid.RID) (Record, error) {
	page, err := r.file.ReadPage(id.Page)
	if err != nil {
		return Record{}, err
	}
	off := int(id.Slot) * RecordSize
	return Decode(page[off : off+RecordSize]), nil
}

// Close releases the underlying paged file.
func (r *Relation) Close() error { return r.file.Close() }

// Scanner walks every record in a relation in insertion order, the shape
// the index's bulk-load driver consumes.
type Scanner struct {
	rel  *Relation
	next int64
}

// NewScanner starts a fresh sequential scan over rel.
func NewScanner(rel *Relation) *Scanner {
	return &Scanner{rel: rel}
}

// Next returns the next (RID, record bytes) pair, or io.EOF once every
// record has been produced.
func (s *Scanner) Next() (rid.RID, []byte, error) {
	if s.next >= s.rel.n {
		return rid.Zero, nil, io.EOF
	}
	slot := s.next % recsPerPage
	pageID := pagedfile.PageId(1 + s.next/recsPerPage)
	id := rid.RID{Page: pageID, Slot: uint32(slot)}
	rec, err := s.rel.Fetch(id)
	if err != nil {
		return rid.Zero, nil, err
	}
	s.next++
	return id, Record(rec).Encode(), nil
}
