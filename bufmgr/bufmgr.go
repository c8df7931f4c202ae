// Package bufmgr is the buffer manager the B+-tree core pins and unpins
// pages against. It owns a fixed-size pool of frames over a pagedfile.File,
// evicting the least-recently-unpinned frame when the pool is full, and
// enforces that every page handed out is a borrowed reference released
// exactly once with an explicit dirty flag.
package bufmgr

import (
	"container/list"

	"github.com/cockroachdb/errors"

	"github.com/dbtrees/bptreeidx/pagedfile"
)

// ErrNoFreeFrame is returned when every frame in the pool is pinned and a
// new page must be brought in.
var ErrNoFreeFrame = errors.New("bufmgr: no free frame in pool")

// ErrPageNotPinned is returned by UnpinPage when the page named is not
// currently pinned. A correct core implementation never triggers this.
var ErrPageNotPinned = errors.New("bufmgr: page not pinned")

// pagedFile is the narrow interface bufmgr consumes. Both pagedfile.File
// and pagedfile/pebblefile.File satisfy it.
type pagedFile interface {
	NumPages() pagedfile.PageId
	AllocatePage() (pagedfile.PageId, error)
	ReadPage(pagedfile.PageId) (*pagedfile.Page, error)
	WritePage(pagedfile.PageId, *pagedfile.Page) error
	Flush() error
	Close() error
}

type frame struct {
	pageID   pagedfile.PageId
	page     *pagedfile.Page
	pinCount int
	dirty    bool
	lruElem  *list.Element // valid only while pinCount == 0
}

// BufMgr is a fixed-size pool of page frames over a single paged file.
type BufMgr struct {
	file     pagedFile
	poolSize int
	frames   map[pagedfile.PageId]*frame
	unpinned *list.List // front = least recently unpinned
	metrics  *Metrics
}

// New creates a buffer manager over file with room for poolSize frames.
func New(file pagedFile, poolSize int) *BufMgr {
	return &BufMgr{
		file:     file,
		poolSize: poolSize,
		frames:   make(map[pagedfile.PageId]*frame, poolSize),
		unpinned: list.New(),
		metrics:  newMetrics(),
	}
}

// Metrics exposes the Prometheus collectors tracking pin/unpin traffic.
func (m *BufMgr) Metrics() *Metrics { return m.metrics }

// AllocPage allocates a new page in the underlying file and returns it
// pinned, ready for the caller to initialize.
func (m *BufMgr) AllocPage() (pagedfile.PageId, *pagedfile.Page, error) {
	id, err := m.file.AllocatePage()
	if err != nil {
		return pagedfile.InvalidPage, nil, err
	}
	fr, err := m.bringIn(id, new(pagedfile.Page))
	if err != nil {
		return pagedfile.InvalidPage, nil, err
	}
	fr.pinCount = 1
	m.metrics.pins.Inc()
	return id, fr.page, nil
}

// ReadPage fetches and pins the page with the given id, from the pool if
// resident, otherwise from disk.
func (m *BufMgr) ReadPage(id pagedfile.PageId) (*pagedfile.Page, error) {
	if fr, ok := m.frames[id]; ok {
		m.metrics.hits.Inc()
		if fr.pinCount == 0 {
			m.unpinned.Remove(fr.lruElem)
			fr.lruElem = nil
		}
		fr.pinCount++
		m.metrics.pins.Inc()
		return fr.page, nil
	}

	m.metrics.misses.Inc()
	page, err := m.file.ReadPage(id)
	if err != nil {
		return nil, err
	}
	fr, err := m.bringIn(id, page)
	if err != nil {
		return nil, err
	}
	fr.pinCount = 1
	m.metrics.pins.Inc()
	return fr.page, nil
}

// UnpinPage releases one pin on id, flagging the page dirty if it was
// mutated while pinned. dirty accumulates: once true it stays true until
// the page is flushed out from under the pool.
func (m *BufMgr) UnpinPage(id pagedfile.PageId, dirty bool) error {
	fr, ok := m.frames[id]
	if !ok || fr.pinCount == 0 {
		return errors.Wrapf(ErrPageNotPinned, "page %d", id)
	}
	m.metrics.unpins.Inc()
	if dirty {
		fr.dirty = true
	}
	fr.pinCount--
	if fr.pinCount == 0 {
		fr.lruElem = m.unpinned.PushBack(id)
	}
	return nil
}

// FlushFile writes every dirty frame back to the paged file and fsyncs it.
func (m *BufMgr) FlushFile() error {
	for id, fr := range m.frames {
		if !fr.dirty {
			continue
		}
		if err := m.file.WritePage(id, fr.page); err != nil {
			return err
		}
		fr.dirty = false
		m.metrics.flushes.Inc()
	}
	return m.file.Flush()
}

// Close flushes the file and releases the underlying handle. The pool
// must hold no pins at this point; a live pin here is a caller bug.
func (m *BufMgr) Close() error {
	if err := m.FlushFile(); err != nil {
		return err
	}
	return m.file.Close()
}

// bringIn installs page under id as a resident frame, evicting the
// least-recently-unpinned frame if the pool is full.
func (m *BufMgr) bringIn(id pagedfile.PageId, page *pagedfile.Page) (*frame, error) {
	if len(m.frames) >= m.poolSize {
		if err := m.evictOne(); err != nil {
			return nil, err
		}
	}
	fr := &frame{pageID: id, page: page}
	m.frames[id] = fr
	return fr, nil
}

func (m *BufMgr) evictOne() error {
	elem := m.unpinned.Front()
	if elem == nil {
		return ErrNoFreeFrame
	}
	victimID := elem.Value.(pagedfile.PageId)
	victim := m.frames[victimID]
	m.unpinned.Remove(elem)
	if victim.dirty {
		if err := m.file.WritePage(victimID, victim.page); err != nil {
			return err
		}
		m.metrics.flushes.Inc()
	}
	delete(m.frames, victimID)
	m.metrics.evictions.Inc()
	return nil
}
