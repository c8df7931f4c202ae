// Package btreeindex is the core of a disk-backed B+-tree index mapping a
// single integer attribute to a record id. It consumes a paged file and a
// buffer manager through narrow interfaces; node layout, search, insertion
// with splitting, and range scans are all implemented here.
package btreeindex

import "github.com/dbtrees/bptreeidx/pagedfile"

// AttrType names the type of the indexed attribute. Only Integer is
// implemented by this core; the field exists so the header format and the
// BadIndexInfo check behave the way a multi-type index family would.
type AttrType byte

const (
	Integer AttrType = iota
	Double
	String
)

// Operator is a scan endpoint comparison operator.
type Operator byte

const (
	GT Operator = iota
	GTE
	LT
	LTE
)

// Key is the integer attribute value the tree is ordered on.
type Key = int32

type pageID = pagedfile.PageId

const invalidPage = pagedfile.InvalidPage
