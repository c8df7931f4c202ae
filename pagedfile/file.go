// Package pagedfile is the on-disk collaborator the B+-tree core consumes
// through a narrow interface: fixed-size pages, identified by PageId,
// allocated and fetched by id. It does no caching and knows nothing about
// pins or dirty bits — that discipline lives one layer up, in bufmgr.
package pagedfile

import (
	"os"

	"github.com/cockroachdb/errors"
)

const (
	// PageSize is the fixed size of every page in a paged file, 4 KiB.
	PageSize = 4096

	// InvalidPage is the sentinel PageId naming no page.
	InvalidPage PageId = 0
)

// PageId identifies a page within a paged file.
type PageId uint32

// Page is a raw fixed-size block of bytes, reinterpreted by higher layers
// as a leaf node, an internal node, or the index header.
type Page [PageSize]byte

// File is a fixed-size-page file on disk. Page ids start at 1; 0 is
// reserved as InvalidPage.
type File struct {
	f        *os.File
	numPages PageId
}

// Exists reports whether a paged file already exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Create makes a new, empty paged file. It fails if one already exists.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "pagedfile: create %s", path)
	}
	return &File{f: f, numPages: 0}, nil
}

// Open opens an existing paged file and recovers its page count from the
// file's size on disk.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "pagedfile: open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "pagedfile: stat %s", path)
	}
	return &File{f: f, numPages: PageId(info.Size() / PageSize)}, nil
}

// Remove deletes the paged file at path.
func Remove(path string) error {
	return os.Remove(path)
}

// NumPages returns the number of pages currently allocated in the file.
func (pf *File) NumPages() PageId { return pf.numPages }

// AllocatePage extends the file by one zeroed page and returns its id.
// Page ids are 1-based; id 0 is reserved for InvalidPage.
func (pf *File) AllocatePage() (PageId, error) {
	pf.numPages++
	id := pf.numPages
	var blank Page
	if err := pf.WritePage(id, &blank); err != nil {
		return InvalidPage, err
	}
	return id, nil
}

// ReadPage fetches the page with the given id from disk.
func (pf *File) ReadPage(id PageId) (*Page, error) {
	if id == InvalidPage || id > pf.numPages {
		return nil, errors.Newf("pagedfile: page %d out of range", id)
	}
	p := new(Page)
	if _, err := pf.f.ReadAt(p[:], pf.offset(id)); err != nil {
		return nil, errors.Wrapf(err, "pagedfile: read page %d", id)
	}
	return p, nil
}

// WritePage writes a page back to disk at its slot.
func (pf *File) WritePage(id PageId, p *Page) error {
	if _, err := pf.f.WriteAt(p[:], pf.offset(id)); err != nil {
		return errors.Wrapf(err, "pagedfile: write page %d", id)
	}
	return nil
}

// Flush forces all written pages to stable storage.
func (pf *File) Flush() error {
	return errors.Wrap(pf.f.Sync(), "pagedfile: flush")
}

// Close releases the underlying file handle.
func (pf *File) Close() error {
	return errors.Wrap(pf.f.Close(), "pagedfile: close")
}

func (pf *File) offset(id PageId) int64 {
	return int64(id-1) * PageSize
}
