package session

import (
	"unitctl/internal/systemd"
)

// Session is the single long-lived state value behind the UI. The main loop
// owns it; every mutation goes through its methods.
type Session struct {
	category systemd.Category
	scope    systemd.Scope

	filter  *FilterEngine
	logs    *LogView
	actions *Orchestrator

	modal  Modal
	picker Picker
	// actionChoices backs the action picker; parallel to picker options.
	actionChoices []systemd.Action

	// props caches per-unit fact sheets until category or scope changes.
	props map[string]systemd.Properties
	// unitFile holds the lines shown by the unit file viewer.
	unitFile     []string
	unitFileName string

	// logUnit is the unit the log buffer currently belongs to.
	logUnit string

	detailScroll int
	fileScroll   int
}

// New builds a session for the given starting category and scope.
func New(category systemd.Category, scope systemd.Scope) *Session {
	return &Session{
		category: category,
		scope:    scope,
		filter:   NewFilterEngine(),
		logs:     NewLogView(),
		actions:  NewOrchestrator(),
		props:    make(map[string]systemd.Properties),
	}
}

// Filter exposes the filter & selection engine.
func (s *Session) Filter() *FilterEngine { return s.filter }

// Logs exposes the log viewport engine.
func (s *Session) Logs() *LogView { return s.logs }

// Actions exposes the action orchestrator.
func (s *Session) Actions() *Orchestrator { return s.actions }

// Category returns the active unit category.
func (s *Session) Category() systemd.Category { return s.category }

// Scope returns the active unit namespace.
func (s *Session) Scope() systemd.Scope { return s.scope }

// SetCategory switches the unit category. Derived state — log buffer,
// properties cache, non-category predicates — is discarded. Returns true
// when the category changed and the caller should refetch the inventory.
func (s *Session) SetCategory(c systemd.Category) bool {
	if c == s.category {
		return false
	}
	s.category = c
	s.invalidateDerived()
	return true
}

// ToggleScope flips between the system and user namespaces, discarding
// derived state. Always requires a refetch.
func (s *Session) ToggleScope() {
	if s.scope == systemd.ScopeSystem {
		s.scope = systemd.ScopeUser
	} else {
		s.scope = systemd.ScopeSystem
	}
	s.invalidateDerived()
}

func (s *Session) invalidateDerived() {
	s.filter.ClearPredicates()
	s.logs.Reset()
	s.props = make(map[string]systemd.Properties)
	s.unitFile = nil
	s.unitFileName = ""
	s.logUnit = ""
}

// CachedProperties returns the fact sheet for a unit if already fetched.
func (s *Session) CachedProperties(name string) (systemd.Properties, bool) {
	p, ok := s.props[name]
	return p, ok
}

// StoreProperties caches a fetched fact sheet.
func (s *Session) StoreProperties(name string, p systemd.Properties) {
	s.props[name] = p
}

// LogTarget returns the unit whose logs should fill the viewport, and
// whether the buffer needs a full (re)load because the selection moved or
// the log filters changed.
func (s *Session) LogTarget() (string, bool) {
	u, ok := s.filter.SelectedUnit()
	if !ok {
		return "", false
	}
	return u.Name, u.Name != s.logUnit || s.logs.Dirty()
}

// BeginLogLoad records which unit the next Load belongs to and resets the
// buffer when the selection moved.
func (s *Session) BeginLogLoad(name string) {
	if name != s.logUnit {
		s.logUnit = name
		s.logs.Reset()
	}
}

// LogUnit returns the unit that owns the current log buffer.
func (s *Session) LogUnit() string {
	return s.logUnit
}

// Modal state machine

// Modal returns the active exclusive overlay.
func (s *Session) Modal() Modal { return s.modal }

// Picker exposes the active picker's cursor state.
func (s *Session) Picker() *Picker { return &s.picker }

// CloseModal dismisses the active overlay without applying anything.
func (s *Session) CloseModal() {
	s.modal = ModalNone
	s.actionChoices = nil
}

// StartSearch enters the unit search typing mode.
func (s *Session) StartSearch() {
	s.modal = ModalSearch
}

// StartLogSearch enters the log search typing mode.
func (s *Session) StartLogSearch() {
	s.modal = ModalLogSearch
}

// OpenHelp shows the help overlay.
func (s *Session) OpenHelp() {
	s.modal = ModalHelp
}

// OpenStatusPicker opens the sub-state filter picker, preselecting the
// active filter or "All".
func (s *Session) OpenStatusPicker() {
	current := s.filter.SubState()
	if current == "" {
		current = "All"
	}
	s.picker = NewPicker(s.category.SubStateOptions(), current)
	s.modal = ModalStatusPicker
}

// OpenCategoryPicker opens the unit category picker.
func (s *Session) OpenCategoryPicker() {
	options := make([]string, len(systemd.Categories))
	for i, c := range systemd.Categories {
		options[i] = c.Label()
	}
	s.picker = NewPicker(options, s.category.Label())
	s.modal = ModalCategoryPicker
}

// OpenSeverityPicker opens the minimum-severity picker, preselecting the
// active threshold or "All".
func (s *Session) OpenSeverityPicker() {
	options := append([]string{"All"}, systemd.PriorityLabels[:]...)
	current := "All"
	if p := s.logs.Filter().MinPriority; p >= 0 {
		current = systemd.PriorityLabel(p)
	}
	s.picker = NewPicker(options, current)
	s.modal = ModalSeverityPicker
}

// OpenTimePicker opens the time-range picker.
func (s *Session) OpenTimePicker() {
	options := make([]string, len(systemd.TimeRanges))
	for i, r := range systemd.TimeRanges {
		options[i] = r.Label()
	}
	s.picker = NewPicker(options, s.logs.Filter().Range.Label())
	s.modal = ModalTimePicker
}

// OpenFileStatePicker opens the enablement filter picker.
func (s *Session) OpenFileStatePicker() {
	current := s.filter.FileState()
	if current == "" {
		current = "All"
	}
	s.picker = NewPicker(systemd.FileStateOptions, current)
	s.modal = ModalFileStatePicker
}

// OpenActionPicker opens the lifecycle action picker for the selected unit.
// Without a selection only daemon-reload is offered.
func (s *Session) OpenActionPicker() {
	var sub, fileState string
	if u, ok := s.filter.SelectedUnit(); ok {
		sub = u.Sub
		fileState = u.FileState
		s.actionChoices = systemd.AvailableActions(sub, fileState)
	} else {
		s.actionChoices = []systemd.Action{systemd.ActionDaemonReload}
	}
	options := make([]string, len(s.actionChoices))
	for i, a := range s.actionChoices {
		options[i] = a.Label()
	}
	s.picker = NewPicker(options, "")
	s.modal = ModalActionPicker
}

// OpenDetails shows the properties modal for the selected unit.
func (s *Session) OpenDetails() bool {
	if _, ok := s.filter.SelectedUnit(); !ok {
		return false
	}
	s.detailScroll = 0
	s.modal = ModalDetails
	return true
}

// OpenUnitFile shows the unit file viewer for the selected unit.
func (s *Session) OpenUnitFile() bool {
	u, ok := s.filter.SelectedUnit()
	if !ok {
		return false
	}
	if u.Name != s.unitFileName {
		s.unitFile = nil
		s.unitFileName = u.Name
	}
	s.fileScroll = 0
	s.modal = ModalUnitFile
	return true
}

// UnitFileContent returns the cached unit file lines for the viewer.
func (s *Session) UnitFileContent() (string, []string) {
	return s.unitFileName, s.unitFile
}

// StoreUnitFile caches fetched unit file lines, ignoring stale fetches for
// a different unit.
func (s *Session) StoreUnitFile(name string, lines []string) {
	if name == s.unitFileName {
		s.unitFile = lines
	}
}

// DetailScroll returns the details modal scroll offset.
func (s *Session) DetailScroll() int { return s.detailScroll }

// ScrollDetails moves the details modal by delta, clamped to content.
func (s *Session) ScrollDetails(delta, contentLines, visible int) {
	maxScroll := max(contentLines-visible, 0)
	s.detailScroll = min(max(s.detailScroll+delta, 0), maxScroll)
}

// FileScroll returns the unit file viewer scroll offset.
func (s *Session) FileScroll() int { return s.fileScroll }

// ScrollFile moves the unit file viewer by delta, clamped to content.
func (s *Session) ScrollFile(delta, contentLines, visible int) {
	maxScroll := max(contentLines-visible, 0)
	s.fileScroll = min(max(s.fileScroll+delta, 0), maxScroll)
}

// PickerConfirmResult tells the caller what follow-up a confirmed picker
// requires.
type PickerConfirmResult int

const (
	// PickerApplied means the selection took effect in place.
	PickerApplied PickerConfirmResult = iota
	// PickerNeedsUnits means the inventory must be refetched.
	PickerNeedsUnits
	// PickerNeedsLogs means the log buffer must be refetched.
	PickerNeedsLogs
	// PickerConfirmAction means an action now awaits confirmation.
	PickerConfirmAction
)

// ConfirmPicker applies the highlighted option to the owning engine and
// closes the picker.
func (s *Session) ConfirmPicker() PickerConfirmResult {
	selected := s.picker.Selected()
	modal := s.modal
	s.modal = ModalNone

	switch modal {
	case ModalStatusPicker:
		if selected == "All" {
			selected = ""
		}
		s.filter.SetSubState(selected)

	case ModalFileStatePicker:
		if selected == "All" {
			selected = ""
		}
		s.filter.SetFileState(selected)

	case ModalCategoryPicker:
		for _, c := range systemd.Categories {
			if c.Label() == selected {
				if s.SetCategory(c) {
					return PickerNeedsUnits
				}
				break
			}
		}

	case ModalSeverityPicker:
		p := -1
		for i, label := range systemd.PriorityLabels {
			if label == selected {
				p = i
				break
			}
		}
		before := s.logs.Filter().MinPriority
		s.logs.SetMinPriority(p)
		if before != p {
			return PickerNeedsLogs
		}

	case ModalTimePicker:
		before := s.logs.Filter().Range
		r := systemd.TimeRanges[s.picker.Cursor()]
		s.logs.SetTimeRange(r)
		if before != r {
			return PickerNeedsLogs
		}

	case ModalActionPicker:
		idx := s.picker.Cursor()
		if idx < len(s.actionChoices) {
			action := s.actionChoices[idx]
			var unit string
			if u, ok := s.filter.SelectedUnit(); ok {
				unit = u.Name
			}
			if s.actions.Confirm(action, unit) {
				s.actionChoices = nil
				s.modal = ModalConfirm
				return PickerConfirmAction
			}
		}
		s.actionChoices = nil
	}
	return PickerApplied
}

// DismissAction clears the pending action and closes the confirm dialog.
func (s *Session) DismissAction() {
	s.actions.Dismiss()
	if s.modal == ModalConfirm {
		s.modal = ModalNone
	}
}

// Advance performs the per-frame non-blocking polls: action settlement and
// the post-action inventory refresh. A failed refresh is dropped silently;
// the settled result is already on screen.
func (s *Session) Advance() (settled bool) {
	settled = s.actions.Poll()
	if units, err, ok := s.actions.PollRefresh(); ok && err == nil {
		s.filter.Replace(units)
	}
	return settled
}
