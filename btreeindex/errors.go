package btreeindex

import "github.com/cockroachdb/errors"

// The error taxonomy exposed by index operations. Callers compare against
// these with errors.Is; nothing here is recovered internally.
var (
	// ErrBadIndexInfo is raised when an existing index file's header does
	// not match the (relation, offset, type) the caller asked to open.
	ErrBadIndexInfo = errors.New("btreeindex: header does not match requested relation/offset/type")

	// ErrBadOpcodes is raised when a scan endpoint operator is not in the
	// allowed set (GT/GTE for the low bound, LT/LTE for the high bound).
	ErrBadOpcodes = errors.New("btreeindex: bad scan opcodes")

	// ErrBadScanrange is raised when low > high.
	ErrBadScanrange = errors.New("btreeindex: low bound exceeds high bound")

	// ErrNoSuchKeyFound is raised when startScan's first candidate leaf has
	// no entry satisfying both bounds.
	ErrNoSuchKeyFound = errors.New("btreeindex: no entry satisfies the scan range")

	// ErrScanNotInitialized is raised by scanNext/endScan outside SCANNING.
	ErrScanNotInitialized = errors.New("btreeindex: no scan is in progress")

	// ErrIndexScanCompleted is raised by scanNext once the cursor is
	// exhausted.
	ErrIndexScanCompleted = errors.New("btreeindex: scan already completed")
)
