// Package pebblefile adapts a cockroachdb/pebble key-value store to the
// same fixed-page-id, fixed-page-size shape as pagedfile.File, so the
// benchmark tool can point the same B+-tree core at a log-structured
// store instead of a flat OS file and compare the two.
package pebblefile

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"github.com/dbtrees/bptreeidx/pagedfile"
)

// File stores pages as individual keys in a pebble database. It satisfies
// the same read/write/allocate shape as pagedfile.File.
type File struct {
	db       *pebble.DB
	numPages pagedfile.PageId
}

// Open opens (creating if necessary) a pebble-backed paged file at dir.
func Open(dir string) (*File, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "pebblefile: open %s", dir)
	}
	f := &File{db: db}
	if raw, closer, err := db.Get(countKey); err == nil {
		f.numPages = pagedfile.PageId(binary.LittleEndian.Uint32(raw))
		closer.Close()
	} else if !errors.Is(err, pebble.ErrNotFound) {
		db.Close()
		return nil, errors.Wrap(err, "pebblefile: read page count")
	}
	return f, nil
}

var countKey = []byte("__pagecount__")

func pageKey(id pagedfile.PageId) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], uint32(id))
	return k[:]
}

func (f *File) NumPages() pagedfile.PageId { return f.numPages }

func (f *File) AllocatePage() (pagedfile.PageId, error) {
	f.numPages++
	id := f.numPages
	var blank pagedfile.Page
	if err := f.WritePage(id, &blank); err != nil {
		return pagedfile.InvalidPage, err
	}
	if err := f.writePageCount(); err != nil {
		return pagedfile.InvalidPage, err
	}
	return id, nil
}

func (f *File) ReadPage(id pagedfile.PageId) (*pagedfile.Page, error) {
	raw, closer, err := f.db.Get(pageKey(id))
	if err != nil {
		return nil, errors.Wrapf(err, "pebblefile: read page %d", id)
	}
	defer closer.Close()
	p := new(pagedfile.Page)
	copy(p[:], raw)
	return p, nil
}

func (f *File) WritePage(id pagedfile.PageId, p *pagedfile.Page) error {
	if err := f.db.Set(pageKey(id), p[:], pebble.Sync); err != nil {
		return errors.Wrapf(err, "pebblefile: write page %d", id)
	}
	return nil
}

func (f *File) writePageCount() error {
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], uint32(f.numPages))
	return f.db.Set(countKey, v[:], pebble.Sync)
}

func (f *File) Flush() error {
	return errors.Wrap(f.db.Flush(), "pebblefile: flush")
}

func (f *File) Close() error {
	return errors.Wrap(f.db.Close(), "pebblefile: close")
}
