package session

import (
	"strings"

	"unitctl/internal/systemd"
)

// EntryKind distinguishes log records from the discontinuity markers the
// viewport inserts between them.
type EntryKind int

const (
	EntryRecord EntryKind = iota
	// MarkerBoot separates records from different host boots.
	MarkerBoot
	// MarkerInvocation separates records from different service runs within
	// the same boot.
	MarkerInvocation
)

// Entry is one visual row source in the log buffer: a record or a marker.
type Entry struct {
	Kind   EntryKind
	Record systemd.Record
}

// anchor is the scroll position: either pinned to a fixed entry index or
// tracking the latest content as it arrives.
type anchor struct {
	track bool
	index int
}

func trackLatest() anchor      { return anchor{track: true} }
func fixedAnchor(i int) anchor { return anchor{index: i} }

// HeightFunc reports the rendered height in visual lines of entry i at the
// current viewport width. Resolution only calls it for the entries it needs.
type HeightFunc func(i int) int

// LogView owns the append-only log buffer for the selected unit, the scroll
// anchor, the in-buffer search, and tailing continuity state.
type LogView struct {
	entries []Entry

	// lastBootID and lastInvocationID are the most recently seen non-empty
	// identifiers. Invocation comparison runs against the last known value,
	// not the immediately preceding record, to tolerate records that omit
	// the field.
	lastBootID       string
	lastInvocationID string

	// tailCursor is the continuity cursor of the newest record that carried
	// one; empty means tailing cannot resume and a reload is needed.
	tailCursor string

	scroll anchor

	searchQuery string
	matches     []int
	matchIdx    int

	filter systemd.Filter
	dirty  bool
	loaded bool
}

// NewLogView returns an empty viewport tracking the latest content.
func NewLogView() *LogView {
	return &LogView{scroll: trackLatest(), filter: systemd.NoFilter, dirty: true}
}

// Reset discards the buffer, search, and continuity state, and marks the
// view dirty so the next advance performs a full fetch.
func (v *LogView) Reset() {
	v.entries = nil
	v.lastBootID = ""
	v.lastInvocationID = ""
	v.tailCursor = ""
	v.scroll = trackLatest()
	v.clearSearch()
	v.dirty = true
	v.loaded = false
}

// Dirty reports whether the buffer needs a full refetch.
func (v *LogView) Dirty() bool {
	return v.dirty
}

// Loaded reports whether an initial fetch has completed since the last Reset.
func (v *LogView) Loaded() bool {
	return v.loaded
}

// Filter returns the active severity/time filter.
func (v *LogView) Filter() systemd.Filter {
	return v.filter
}

// SetMinPriority updates the severity threshold (-1 disables) and forces a
// full refetch, discarding scroll and search state.
func (v *LogView) SetMinPriority(p int) {
	if v.filter.MinPriority == p {
		return
	}
	v.filter.MinPriority = p
	v.Reset()
}

// SetTimeRange updates the time window and forces a full refetch.
func (v *LogView) SetTimeRange(r systemd.TimeRange) {
	if v.filter.Range == r {
		return
	}
	v.filter.Range = r
	v.Reset()
}

// Load replaces the buffer with a fresh bounded fetch. Scroll snaps to
// track-latest.
func (v *LogView) Load(records []systemd.Record) {
	v.entries = nil
	v.lastBootID = ""
	v.lastInvocationID = ""
	v.tailCursor = ""
	v.clearSearch()
	v.appendRecords(records)
	v.scroll = trackLatest()
	v.dirty = false
	v.loaded = true
}

// LoadError substitutes the buffer with a single synthetic error record.
func (v *LogView) LoadError(err error) {
	v.Load([]systemd.Record{{Priority: -1, Message: "Error fetching logs: " + err.Error()}})
}

// Append adds tailed records to the end of the buffer. An empty batch is a
// no-op. Search matches extend over the new records without rescanning.
func (v *LogView) Append(records []systemd.Record) {
	if len(records) == 0 {
		return
	}
	v.appendRecords(records)
}

func (v *LogView) appendRecords(records []systemd.Record) {
	for _, rec := range records {
		if marker, kind := v.discontinuity(rec); marker {
			v.entries = append(v.entries, Entry{Kind: kind})
		}
		if rec.BootID != "" {
			v.lastBootID = rec.BootID
		}
		if rec.InvocationID != "" {
			v.lastInvocationID = rec.InvocationID
		}
		if rec.Cursor != "" {
			v.tailCursor = rec.Cursor
		}
		v.entries = append(v.entries, Entry{Kind: EntryRecord, Record: rec})
		if v.searchQuery != "" && recordMatches(rec, v.searchQuery) {
			v.matches = append(v.matches, len(v.entries)-1)
		}
	}
}

// discontinuity decides whether a marker precedes rec. A boot change takes
// precedence over an invocation change at the same boundary.
func (v *LogView) discontinuity(rec systemd.Record) (bool, EntryKind) {
	if rec.BootID != "" && v.lastBootID != "" && rec.BootID != v.lastBootID {
		return true, MarkerBoot
	}
	if rec.InvocationID != "" && v.lastInvocationID != "" && rec.InvocationID != v.lastInvocationID {
		return true, MarkerInvocation
	}
	return false, EntryRecord
}

// TailCursor returns the resume cursor for incremental fetching, empty when
// none has been seen.
func (v *LogView) TailCursor() string {
	return v.tailCursor
}

// Entries exposes the buffer for rendering.
func (v *LogView) Entries() []Entry {
	return v.entries
}

// Tailing reports whether the viewport is pinned to the newest content.
func (v *LogView) Tailing() bool {
	return v.scroll.track
}

// resolveBottom returns the top index for a bottom-pinned viewport: the
// smallest index i such that the summed heights of entries i..end fit in
// the viewport, scanning backward from the end. When the final entry alone
// exceeds the viewport, its own index is returned.
func (v *LogView) resolveBottom(heightOf HeightFunc, viewport int) int {
	if len(v.entries) == 0 {
		return 0
	}
	last := len(v.entries) - 1
	used := heightOf(last)
	if used > viewport {
		return last
	}
	top := last
	for i := last - 1; i >= 0; i-- {
		used += heightOf(i)
		if used > viewport {
			break
		}
		top = i
	}
	return top
}

// Top resolves the scroll anchor to a concrete top entry index for the given
// geometry. Fixed anchors clamp so the viewport never scrolls past the
// bottom-pinned position.
func (v *LogView) Top(heightOf HeightFunc, viewport int) int {
	bottom := v.resolveBottom(heightOf, viewport)
	if v.scroll.track {
		return bottom
	}
	return min(max(v.scroll.index, 0), bottom)
}

// ScrollBy moves the anchor by delta entries. Any manual scroll converts the
// anchor to a fixed index and drops the live-tail pin.
func (v *LogView) ScrollBy(delta int, heightOf HeightFunc, viewport int) {
	top := v.Top(heightOf, viewport)
	bottom := v.resolveBottom(heightOf, viewport)
	v.scroll = fixedAnchor(min(max(top+delta, 0), bottom))
}

// ScrollTop pins the viewport to the first entry.
func (v *LogView) ScrollTop() {
	v.scroll = fixedAnchor(0)
}

// ScrollBottom re-enables latest-tracking, jumping back to the newest
// content.
func (v *LogView) ScrollBottom() {
	v.scroll = trackLatest()
}

// SetSearch recomputes the match list for a case-insensitive substring query
// over record message text and jumps to the first match.
func (v *LogView) SetSearch(query string, heightOf HeightFunc, viewport int) {
	v.searchQuery = query
	v.matches = v.matches[:0]
	v.matchIdx = 0
	if query == "" {
		return
	}
	for i, e := range v.entries {
		if e.Kind == EntryRecord && recordMatches(e.Record, query) {
			v.matches = append(v.matches, i)
		}
	}
	if len(v.matches) > 0 {
		v.jumpToMatch(heightOf, viewport)
	}
}

// ClearSearch drops the query and match state.
func (v *LogView) ClearSearch() {
	v.clearSearch()
}

func (v *LogView) clearSearch() {
	v.searchQuery = ""
	v.matches = nil
	v.matchIdx = 0
}

// SearchQuery returns the active in-buffer query.
func (v *LogView) SearchQuery() string {
	return v.searchQuery
}

// Matches returns the entry indices of every match.
func (v *LogView) Matches() []int {
	return v.matches
}

// MatchPosition returns the current match ordinal (1-based) and total.
func (v *LogView) MatchPosition() (int, int) {
	if len(v.matches) == 0 {
		return 0, 0
	}
	return v.matchIdx + 1, len(v.matches)
}

// CurrentMatch returns the entry index of the active match.
func (v *LogView) CurrentMatch() (int, bool) {
	if len(v.matches) == 0 {
		return 0, false
	}
	return v.matches[v.matchIdx], true
}

// NextMatch advances to the next match, wrapping circularly.
func (v *LogView) NextMatch(heightOf HeightFunc, viewport int) {
	if len(v.matches) == 0 {
		return
	}
	v.matchIdx = (v.matchIdx + 1) % len(v.matches)
	v.jumpToMatch(heightOf, viewport)
}

// PrevMatch moves to the previous match, wrapping circularly.
func (v *LogView) PrevMatch(heightOf HeightFunc, viewport int) {
	if len(v.matches) == 0 {
		return
	}
	v.matchIdx = (v.matchIdx - 1 + len(v.matches)) % len(v.matches)
	v.jumpToMatch(heightOf, viewport)
}

// jumpToMatch forces a scroll jump when the active match sits outside the
// visible window.
func (v *LogView) jumpToMatch(heightOf HeightFunc, viewport int) {
	target := v.matches[v.matchIdx]
	top := v.Top(heightOf, viewport)

	// Walk forward from the top to find the last fully applicable entry.
	used := 0
	end := top
	for i := top; i < len(v.entries); i++ {
		used += heightOf(i)
		if used > viewport {
			break
		}
		end = i
	}
	if target >= top && target <= end {
		return
	}
	bottom := v.resolveBottom(heightOf, viewport)
	v.scroll = fixedAnchor(min(target, bottom))
}

func recordMatches(rec systemd.Record, query string) bool {
	return strings.Contains(strings.ToLower(rec.Message), strings.ToLower(query))
}
