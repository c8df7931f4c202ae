// Package rid defines the record identifier the index stores alongside
// each key — an opaque pointer into the base relation that the index
// itself never interprets.
package rid

import "github.com/dbtrees/bptreeidx/pagedfile"

// RID locates a record in the base relation: the page it lives on and its
// slot within that page.
type RID struct {
	Page pagedfile.PageId
	Slot uint32
}

// Zero is the RID stored in unused slots; never confused with a real
// entry because num_occupied bounds which slots are meaningful.
var Zero = RID{}
