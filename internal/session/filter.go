// Package session holds the in-memory state machine behind the UI: unit
// filtering and selection, the log viewport, modal pickers, and the action
// orchestrator. It knows nothing about rendering or key decoding.
package session

import (
	"strings"

	"unitctl/internal/systemd"
)

// noSelection marks an empty cursor.
const noSelection = -1

// FilterEngine owns the full unit list, the active predicates, the derived
// filtered view, and the selection cursor. The filtered index list is always
// a strictly increasing sequence of valid indices into the unit list.
type FilterEngine struct {
	units   []systemd.Unit
	loadErr error

	query     string
	subState  string
	fileState string

	filtered []int
	// cursor indexes into filtered, noSelection when empty.
	cursor int
}

// NewFilterEngine returns an engine with no units and no selection.
func NewFilterEngine() *FilterEngine {
	return &FilterEngine{cursor: noSelection}
}

// Replace swaps in a fresh unit snapshot, keeping the active predicates.
// Selection follows the previously selected unit by name; if that unit is
// gone or no longer matches, the cursor falls back to the top.
func (f *FilterEngine) Replace(units []systemd.Unit) {
	var keep string
	if u, ok := f.SelectedUnit(); ok {
		keep = u.Name
	}
	f.units = units
	f.loadErr = nil
	f.recompute(keep)
}

// SetError records an inventory fetch failure. The previous snapshot stays
// visible; the error renders as a banner until the next successful refresh.
func (f *FilterEngine) SetError(err error) {
	f.loadErr = err
}

// Err returns the pending inventory error, if any.
func (f *FilterEngine) Err() error {
	return f.loadErr
}

// SetQuery updates the case-insensitive name+description substring filter.
func (f *FilterEngine) SetQuery(query string) {
	f.query = query
	f.reapply()
}

// Query returns the active search substring.
func (f *FilterEngine) Query() string {
	return f.query
}

// SetSubState sets the sub-state predicate; empty matches all.
func (f *FilterEngine) SetSubState(sub string) {
	f.subState = sub
	f.reapply()
}

// SubState returns the active sub-state predicate.
func (f *FilterEngine) SubState() string {
	return f.subState
}

// SetFileState sets the enablement predicate; empty matches all.
func (f *FilterEngine) SetFileState(state string) {
	f.fileState = state
	f.reapply()
}

// FileState returns the active enablement predicate.
func (f *FilterEngine) FileState() string {
	return f.fileState
}

// ClearPredicates drops every predicate without touching the unit list.
func (f *FilterEngine) ClearPredicates() {
	f.query = ""
	f.subState = ""
	f.fileState = ""
	f.reapply()
}

// reapply recomputes the view after a predicate change, keeping the selected
// unit when it still matches.
func (f *FilterEngine) reapply() {
	var keep string
	if u, ok := f.SelectedUnit(); ok {
		keep = u.Name
	}
	f.recompute(keep)
}

func (f *FilterEngine) matches(u systemd.Unit) bool {
	if f.query != "" {
		q := strings.ToLower(f.query)
		if !strings.Contains(strings.ToLower(u.Name), q) &&
			!strings.Contains(strings.ToLower(u.Description), q) {
			return false
		}
	}
	if f.subState != "" && u.Sub != f.subState {
		return false
	}
	if f.fileState != "" && u.FileState != f.fileState {
		return false
	}
	return true
}

func (f *FilterEngine) recompute(keepName string) {
	f.filtered = f.filtered[:0]
	for i, u := range f.units {
		if f.matches(u) {
			f.filtered = append(f.filtered, i)
		}
	}

	if keepName != "" {
		for pos, idx := range f.filtered {
			if f.units[idx].Name == keepName {
				f.cursor = pos
				return
			}
		}
	}
	if len(f.filtered) == 0 {
		f.cursor = noSelection
		return
	}
	f.cursor = 0
}

// Units returns the full unfiltered snapshot.
func (f *FilterEngine) Units() []systemd.Unit {
	return f.units
}

// FilteredIndices returns indices into Units for every matching unit.
func (f *FilterEngine) FilteredIndices() []int {
	return f.filtered
}

// Len returns the number of units in the filtered view.
func (f *FilterEngine) Len() int {
	return len(f.filtered)
}

// Selection returns the cursor position within the filtered view.
func (f *FilterEngine) Selection() (int, bool) {
	if f.cursor == noSelection {
		return 0, false
	}
	return f.cursor, true
}

// SelectedUnit resolves the cursor to the underlying unit.
func (f *FilterEngine) SelectedUnit() (systemd.Unit, bool) {
	if f.cursor == noSelection || f.cursor >= len(f.filtered) {
		return systemd.Unit{}, false
	}
	return f.units[f.filtered[f.cursor]], true
}

// Select moves the cursor to a filtered position, clamping to range.
func (f *FilterEngine) Select(pos int) {
	if len(f.filtered) == 0 {
		f.cursor = noSelection
		return
	}
	f.cursor = min(max(pos, 0), len(f.filtered)-1)
}

// Next advances the cursor, wrapping past the end.
func (f *FilterEngine) Next() {
	if len(f.filtered) == 0 {
		return
	}
	if f.cursor == noSelection || f.cursor >= len(f.filtered)-1 {
		f.cursor = 0
		return
	}
	f.cursor++
}

// Prev moves the cursor back, wrapping past the start.
func (f *FilterEngine) Prev() {
	if len(f.filtered) == 0 {
		return
	}
	if f.cursor <= 0 {
		f.cursor = len(f.filtered) - 1
		return
	}
	f.cursor--
}

// Top selects the first filtered unit.
func (f *FilterEngine) Top() {
	if len(f.filtered) > 0 {
		f.cursor = 0
	}
}

// Bottom selects the last filtered unit.
func (f *FilterEngine) Bottom() {
	if len(f.filtered) > 0 {
		f.cursor = len(f.filtered) - 1
	}
}

// PageUp moves the cursor up a page without wrapping.
func (f *FilterEngine) PageUp(page int) {
	if len(f.filtered) == 0 {
		return
	}
	if f.cursor == noSelection {
		f.cursor = 0
		return
	}
	f.cursor = max(f.cursor-page, 0)
}

// PageDown moves the cursor down a page without wrapping.
func (f *FilterEngine) PageDown(page int) {
	if len(f.filtered) == 0 {
		return
	}
	if f.cursor == noSelection {
		f.cursor = 0
		return
	}
	f.cursor = min(f.cursor+page, len(f.filtered)-1)
}
