package selection

import (
	"fmt"
)

// Mode is the selection mode of a Tracker.
type Mode int

const (
	// ModeDirect selects exactly the explicitly checked IDs.
	ModeDirect Mode = iota
	// ModeBulk selects the first N records by global position, with exceptions.
	ModeBulk
)

// String returns the mode name used in logs and output.
func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeBulk:
		return "bulk"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Tracker holds the selection state for a paginated collection.
//
// In ModeDirect, included holds every selected ID and excluded is empty.
// In ModeBulk, excluded holds opt-outs from the range [0, count) and included
// holds opt-ins at positions >= count.
type Tracker struct {
	mode     Mode
	count    int
	included *IDSet
	excluded *IDSet
}

// State is a read-only copy of the tracker state.
type State struct {
	Mode     Mode `json:"mode"     yaml:"mode"`
	Count    int  `json:"count"    yaml:"count"`
	Included []ID `json:"included" yaml:"included"`
	Excluded []ID `json:"excluded" yaml:"excluded"`
	Total    int  `json:"total"    yaml:"total"`
}

// NewTracker returns an empty tracker in ModeDirect.
func NewTracker() *Tracker {
	return &Tracker{
		mode:     ModeDirect,
		included: NewIDSet(),
		excluded: NewIDSet(),
	}
}

// Mode returns the current mode.
func (t *Tracker) Mode() Mode {
	return t.mode
}

// BulkCount returns the declared bulk count, or 0 in ModeDirect.
func (t *Tracker) BulkCount() int {
	if t.mode != ModeBulk {
		return 0
	}
	return t.count
}

// IsSelected reports whether the record at local index i of p is selected.
// It returns false for an index outside the page or an invalid page.
func (t *Tracker) IsSelected(p Page, i int) bool {
	if i < 0 || i >= len(p.IDs) || p.Validate() != nil {
		return false
	}
	return t.selectedAt(p.IDs[i], p.Position(i))
}

// ProjectPage returns the IDs of p that are currently selected, in page order.
// It only reads p and the tracker state. An invalid page has no positions, so
// nothing on it is selected.
func (t *Tracker) ProjectPage(p Page) []ID {
	if p.Validate() != nil {
		return []ID{}
	}
	selected := make([]ID, 0, len(p.IDs))
	for i, id := range p.IDs {
		if t.selectedAt(id, p.Position(i)) {
			selected = append(selected, id)
		}
	}
	return selected
}

func (t *Tracker) selectedAt(id ID, position int) bool {
	if t.mode == ModeBulk && position < t.count {
		return !t.excluded.Contains(id)
	}
	return t.included.Contains(id)
}

// ApplyPageEdit merges the user's checked set for page p into the selection.
//
// checked must be a subset of p.IDs: every ID on the page that is not in
// checked is treated as unchecked. The full page is always passed, because a
// row that was deselected cannot otherwise be told apart from a row that is not
// on the page at all. The mode never changes, and applying the same edit twice
// yields the same state as applying it once.
func (t *Tracker) ApplyPageEdit(p Page, checked []ID) error {
	if err := p.Validate(); err != nil {
		return err
	}

	onPage := make(map[ID]struct{}, len(p.IDs))
	for _, id := range p.IDs {
		onPage[id] = struct{}{}
	}

	checkedSet := make(map[ID]struct{}, len(checked))
	for _, id := range checked {
		if _, ok := onPage[id]; !ok {
			return fmt.Errorf("%w: id %d on page %d", ErrCheckedNotOnPage, id, p.Number)
		}
		checkedSet[id] = struct{}{}
	}

	if t.mode == ModeBulk {
		t.mergeBulk(p, checkedSet)
		return nil
	}
	t.mergeDirect(p, checkedSet)
	return nil
}

// mergeDirect replaces this page's memberships in included with the checked set.
func (t *Tracker) mergeDirect(p Page, checked map[ID]struct{}) {
	for _, id := range p.IDs {
		t.included.Remove(id)
	}
	for id := range checked {
		t.included.Add(id)
	}
}

// mergeBulk records exceptions against the implicit range. Each record falls
// into exactly one of four cases, so excluded only ever holds in-range IDs and
// included only ever holds out-of-range IDs.
func (t *Tracker) mergeBulk(p Page, checked map[ID]struct{}) {
	for i, id := range p.IDs {
		inRange := p.Position(i) < t.count
		_, isChecked := checked[id]

		switch {
		case inRange && !isChecked:
			t.excluded.Add(id)
		case inRange && isChecked:
			t.excluded.Remove(id)
		case !inRange && isChecked:
			t.included.Add(id)
		default:
			t.included.Remove(id)
		}
	}
}

// Toggle flips the selection of the record at local index i of p.
func (t *Tracker) Toggle(p Page, i int) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if i < 0 || i >= len(p.IDs) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(p.IDs))
	}

	target := p.IDs[i]
	wasSelected := t.IsSelected(p, i)

	checked := make([]ID, 0, len(p.IDs))
	for _, id := range t.ProjectPage(p) {
		if id != target {
			checked = append(checked, id)
		}
	}
	if !wasSelected {
		checked = append(checked, target)
	}
	return t.ApplyPageEdit(p, checked)
}

// SetPageChecked checks or unchecks every record on p.
func (t *Tracker) SetPageChecked(p Page, on bool) error {
	if !on {
		return t.ApplyPageEdit(p, nil)
	}
	return t.ApplyPageEdit(p, p.IDs)
}

// PageFullyChecked reports whether every record on p is selected.
// An empty page is never fully checked.
func (t *Tracker) PageFullyChecked(p Page) bool {
	return len(p.IDs) > 0 && len(t.ProjectPage(p)) == len(p.IDs)
}

// DeclareBulk switches to ModeBulk selecting the first count records and drops
// every exception, including selections made in ModeDirect.
//
// The caller is expected to have clamped count to the collection size; see
// ClampBulkCount.
func (t *Tracker) DeclareBulk(count int) error {
	if count < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBulkCount, count)
	}
	t.mode = ModeBulk
	t.count = count
	t.included.Clear()
	t.excluded.Clear()
	return nil
}

// DeclareBulkWithin clamps requested to total and declares bulk selection.
// It returns the count actually declared and whether it was lowered to total.
// On error the tracker is unchanged.
func (t *Tracker) DeclareBulkWithin(requested, total int) (int, bool, error) {
	count, clamped, err := ClampBulkCount(requested, total)
	if err != nil {
		return 0, false, err
	}
	if err := t.DeclareBulk(count); err != nil {
		return 0, false, err
	}
	return count, clamped, nil
}

// Clear resets the tracker to an empty ModeDirect selection.
func (t *Tracker) Clear() {
	t.mode = ModeDirect
	t.count = 0
	t.included.Clear()
	t.excluded.Clear()
}

// TotalSelected returns the number of selected records across all pages.
func (t *Tracker) TotalSelected() int {
	if t.mode == ModeBulk {
		return t.count - t.excluded.Len() + t.included.Len()
	}
	return t.included.Len()
}

// ExceptionCount returns the number of per-record exceptions held in bulk mode,
// or the number of explicit selections in direct mode.
func (t *Tracker) ExceptionCount() int {
	return t.included.Len() + t.excluded.Len()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	return State{
		Mode:     t.mode,
		Count:    t.BulkCount(),
		Included: t.included.IDs(),
		Excluded: t.excluded.IDs(),
		Total:    t.TotalSelected(),
	}
}

// ClampBulkCount validates a requested bulk count against the known collection
// size. It returns the count to declare and whether it was lowered to total.
func ClampBulkCount(requested, total int) (int, bool, error) {
	if requested < 1 {
		return 0, false, fmt.Errorf("%w: got %d", ErrInvalidBulkCount, requested)
	}
	if total < 1 {
		return 0, false, fmt.Errorf("%w: collection is empty", ErrInvalidBulkCount)
	}
	if requested > total {
		return total, true, nil
	}
	return requested, false, nil
}
