package selection

import "fmt"

// ID identifies one record across the whole collection.
type ID int64

// Page describes the records currently visible. The slice index of each ID is
// its local index on the page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Size is the page size used to paginate the collection. The last page may
	// carry fewer IDs than Size.
	Size int

	// IDs are the record identifiers in display order.
	IDs []ID
}

// Position returns the global position of the record at local index i.
func (p Page) Position(i int) int {
	return (p.Number-1)*p.Size + i
}

// Validate reports whether the page can be used for an edit.
func (p Page) Validate() error {
	if p.Number < 1 {
		return fmt.Errorf("%w: page number must be >= 1, got %d", ErrInvalidPage, p.Number)
	}
	if p.Size < 1 {
		return fmt.Errorf("%w: page size must be >= 1, got %d", ErrInvalidPage, p.Size)
	}
	if len(p.IDs) > p.Size {
		return fmt.Errorf("%w: %d ids exceed page size %d", ErrInvalidPage, len(p.IDs), p.Size)
	}
	return nil
}
