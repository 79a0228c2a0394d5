package selection

import "errors"

// Sentinel errors returned by tracker operations. A rejected operation never
// mutates the selection state.
var (
	// ErrInvalidBulkCount indicates a non-positive bulk count or an empty collection.
	ErrInvalidBulkCount = errors.New("bulk count must be a positive integer")

	// ErrInvalidPage indicates a page number or size below 1, or more IDs than the page size.
	ErrInvalidPage = errors.New("invalid page")

	// ErrCheckedNotOnPage indicates a checked ID that is not among the page IDs.
	ErrCheckedNotOnPage = errors.New("checked id is not on the page")

	// ErrIndexOutOfRange indicates a local row index outside the page.
	ErrIndexOutOfRange = errors.New("row index out of range")
)
