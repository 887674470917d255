// Package ui renders the terminal interface and translates key presses into
// session mutations. All systemd access happens through commands so the
// update loop never blocks.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"unitctl/internal/config"
	"unitctl/internal/session"
	"unitctl/internal/systemd"
)

type (
	tickMsg time.Time

	unitsMsg struct {
		category systemd.Category
		scope    systemd.Scope
		units    []systemd.Unit
		err      error
	}

	logLoadMsg struct {
		unit    string
		records []systemd.Record
		err     error
	}

	logTailMsg struct {
		unit    string
		records []systemd.Record
		err     error
	}

	propsMsg struct {
		name  string
		props systemd.Properties
	}

	unitFileMsg struct {
		name  string
		lines []string
		err   error
	}
)

// Model is the bubbletea root model.
type Model struct {
	ctx     context.Context
	units   systemd.UnitSource
	journal systemd.JournalSource
	sess    *session.Session
	cfg     config.Config
	log     zerolog.Logger

	keys  keyMap
	theme Theme

	width  int
	height int

	showLogs bool
	// blink drives the in-flight action indicator.
	blink bool

	searchInput    textinput.Model
	logSearchInput textinput.Model

	// logFetching guards against overlapping journal commands.
	logFetching bool
}

// New builds the root model.
func New(ctx context.Context, units systemd.UnitSource, journal systemd.JournalSource, cfg config.Config, log zerolog.Logger) Model {
	category := systemd.CategoryService
	for _, c := range systemd.Categories {
		if c.TypeArg() == cfg.Category {
			category = c
			break
		}
	}
	scope := systemd.ScopeSystem
	if cfg.Scope == "user" {
		scope = systemd.ScopeUser
	}

	search := textinput.New()
	search.Prompt = "/"
	search.CharLimit = 128
	logSearch := textinput.New()
	logSearch.Prompt = "/"
	logSearch.CharLimit = 128

	return Model{
		ctx:            ctx,
		units:          units,
		journal:        journal,
		sess:           session.New(category, scope),
		cfg:            cfg,
		log:            log,
		keys:           defaultKeyMap(),
		theme:          defaultTheme(),
		showLogs:       true,
		searchInput:    search,
		logSearchInput: logSearch,
	}
}

// Init starts the first inventory fetch and the poll ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchUnitsCmd(), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchUnitsCmd() tea.Cmd {
	ctx, category, scope := m.ctx, m.sess.Category(), m.sess.Scope()
	return func() tea.Msg {
		units, err := m.units.ListUnits(ctx, category, scope)
		return unitsMsg{category: category, scope: scope, units: units, err: err}
	}
}

func (m Model) loadLogsCmd(unit string) tea.Cmd {
	ctx, scope := m.ctx, m.sess.Scope()
	limit := m.cfg.LogLimit
	filter := m.sess.Logs().Filter()
	return func() tea.Msg {
		records, err := m.journal.Recent(ctx, unit, scope, limit, filter)
		return logLoadMsg{unit: unit, records: records, err: err}
	}
}

func (m Model) tailLogsCmd(unit, cursor string) tea.Cmd {
	ctx, scope := m.ctx, m.sess.Scope()
	filter := m.sess.Logs().Filter()
	return func() tea.Msg {
		records, err := m.journal.Since(ctx, unit, cursor, scope, filter)
		return logTailMsg{unit: unit, records: records, err: err}
	}
}

func (m Model) fetchPropsCmd(name string) tea.Cmd {
	ctx, scope := m.ctx, m.sess.Scope()
	return func() tea.Msg {
		return propsMsg{name: name, props: m.units.Properties(ctx, name, scope)}
	}
}

func (m Model) fetchUnitFileCmd(name string) tea.Cmd {
	ctx, scope := m.ctx, m.sess.Scope()
	return func() tea.Msg {
		lines, err := m.units.UnitFile(ctx, name, scope)
		return unitFileMsg{name: name, lines: lines, err: err}
	}
}

// Update is the bubbletea message handler.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.searchInput.Width = max(msg.Width-4, 10)
		m.logSearchInput.Width = max(msg.Width-4, 10)
		return m, nil

	case tickMsg:
		return m.handleTick()

	case unitsMsg:
		// A fetch started before a category or scope switch is stale.
		if msg.category != m.sess.Category() || msg.scope != m.sess.Scope() {
			return m, nil
		}
		if msg.err != nil {
			m.sess.Filter().SetError(msg.err)
		} else {
			m.sess.Filter().Replace(msg.units)
		}
		return m, nil

	case logLoadMsg:
		m.logFetching = false
		if msg.unit != m.sess.LogUnit() {
			return m, nil
		}
		if msg.err != nil {
			m.sess.Logs().LoadError(msg.err)
		} else {
			m.sess.Logs().Load(msg.records)
		}
		return m, nil

	case logTailMsg:
		m.logFetching = false
		if msg.unit != m.sess.LogUnit() {
			return m, nil
		}
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Str("unit", msg.unit).Msg("log tail failed")
			return m, nil
		}
		m.sess.Logs().Append(msg.records)
		return m, nil

	case propsMsg:
		m.sess.StoreProperties(msg.name, msg.props)
		return m, nil

	case unitFileMsg:
		if msg.err != nil {
			m.sess.StoreUnitFile(msg.name, []string{"Error reading unit file: " + msg.err.Error()})
		} else {
			m.sess.StoreUnitFile(msg.name, msg.lines)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// loadIfNeeded issues a log load right away when the selection moved or the
// log filters changed, so the pane does not wait out the poll interval.
func (m Model) loadIfNeeded() (Model, tea.Cmd) {
	if !m.showLogs || m.logFetching {
		return m, nil
	}
	unit, needsLoad := m.sess.LogTarget()
	if unit == "" || !needsLoad {
		return m, nil
	}
	m.sess.BeginLogLoad(unit)
	m.logFetching = true
	return m, m.loadLogsCmd(unit)
}

// handleTick advances the action orchestrator, keeps the log buffer current
// for the selected unit, and reschedules itself.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.blink = !m.blink
	m.sess.Advance()

	cmds := []tea.Cmd{m.tickCmd()}
	if m.showLogs && !m.logFetching {
		if unit, needsLoad := m.sess.LogTarget(); unit != "" {
			switch {
			case needsLoad:
				m.sess.BeginLogLoad(unit)
				m.logFetching = true
				cmds = append(cmds, m.loadLogsCmd(unit))
			case m.sess.Logs().TailCursor() != "":
				m.logFetching = true
				cmds = append(cmds, m.tailLogsCmd(unit, m.sess.Logs().TailCursor()))
			}
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.sess.Modal() {
	case session.ModalSearch:
		return m.handleSearchKey(msg)
	case session.ModalLogSearch:
		return m.handleLogSearchKey(msg)
	case session.ModalStatusPicker, session.ModalCategoryPicker, session.ModalSeverityPicker,
		session.ModalTimePicker, session.ModalFileStatePicker, session.ModalActionPicker:
		return m.handlePickerKey(msg)
	case session.ModalConfirm:
		return m.handleConfirmKey(msg)
	case session.ModalDetails:
		return m.handleDetailsKey(msg)
	case session.ModalUnitFile:
		return m.handleUnitFileKey(msg)
	case session.ModalHelp:
		// Help swallows the next key press, whatever it is.
		m.sess.CloseModal()
		return m, nil
	}
	return m.handleMainKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.sess.Filter().SetQuery("")
		m.sess.CloseModal()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searchInput.Blur()
		m.sess.CloseModal()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.sess.Filter().SetQuery(m.searchInput.Value())
	// Typing moves the selection, so the log pane follows immediately.
	m, loadCmd := m.loadIfNeeded()
	return m, tea.Batch(cmd, loadCmd)
}

func (m Model) handleLogSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.logSearchInput.SetValue("")
		m.logSearchInput.Blur()
		m.sess.Logs().ClearSearch()
		m.sess.CloseModal()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.logSearchInput.Blur()
		m.sess.CloseModal()
		return m, nil
	}
	var cmd tea.Cmd
	m.logSearchInput, cmd = m.logSearchInput.Update(msg)
	hf, vh := m.logGeometry()
	m.sess.Logs().SetSearch(m.logSearchInput.Value(), hf, vh)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.sess.CloseModal()
	case key.Matches(msg, m.keys.Up):
		m.sess.Picker().Prev()
	case key.Matches(msg, m.keys.Down):
		m.sess.Picker().Next()
	case key.Matches(msg, m.keys.Confirm):
		switch m.sess.ConfirmPicker() {
		case session.PickerNeedsUnits:
			m.searchInput.SetValue("")
			m.logSearchInput.SetValue("")
			return m, m.fetchUnitsCmd()
		default:
			// A changed log filter or a moved selection reloads right away.
			return m.loadIfNeeded()
		}
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	actions := m.sess.Actions()
	switch actions.Phase() {
	case session.ActionConfirming:
		switch {
		case key.Matches(msg, m.keys.Confirm), msg.String() == "y":
			// The closures run on the orchestrator's goroutine, which can
			// outlive a dismissed execution. They capture plain copies; the
			// session is owned by the update loop and never crosses over.
			units := m.units
			ctx := m.ctx
			scope := m.sess.Scope()
			category := m.sess.Category()
			actions.Execute(
				func(a systemd.Action, unit string) (string, error) {
					return units.RunAction(ctx, a, unit, scope)
				},
				func() ([]systemd.Unit, error) {
					return units.ListUnits(ctx, category, scope)
				},
			)
		case key.Matches(msg, m.keys.Escape), msg.String() == "n":
			m.sess.DismissAction()
		}
	case session.ActionExecuting:
		// A hung call stays here until the user walks away from it.
		if key.Matches(msg, m.keys.Escape) {
			m.sess.DismissAction()
		}
	case session.ActionSettled:
		if key.Matches(msg, m.keys.Confirm) || key.Matches(msg, m.keys.Escape) {
			m.sess.DismissAction()
		}
	default:
		m.sess.DismissAction()
	}
	return m, nil
}

func (m Model) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.modalBodyHeight()
	content := len(m.detailLines())
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Details):
		m.sess.CloseModal()
	case key.Matches(msg, m.keys.Up):
		m.sess.ScrollDetails(-1, content, visible)
	case key.Matches(msg, m.keys.Down):
		m.sess.ScrollDetails(1, content, visible)
	case key.Matches(msg, m.keys.PageUp):
		m.sess.ScrollDetails(-visible, content, visible)
	case key.Matches(msg, m.keys.PageDown):
		m.sess.ScrollDetails(visible, content, visible)
	}
	return m, nil
}

func (m Model) handleUnitFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.modalBodyHeight()
	_, lines := m.sess.UnitFileContent()
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.UnitFile):
		m.sess.CloseModal()
	case key.Matches(msg, m.keys.Up):
		m.sess.ScrollFile(-1, len(lines), visible)
	case key.Matches(msg, m.keys.Down):
		m.sess.ScrollFile(1, len(lines), visible)
	case key.Matches(msg, m.keys.PageUp):
		m.sess.ScrollFile(-visible, len(lines), visible)
	case key.Matches(msg, m.keys.PageDown):
		m.sess.ScrollFile(visible, len(lines), visible)
	}
	return m, nil
}

func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	filter := m.sess.Filter()
	logs := m.sess.Logs()
	hf, vh := m.logGeometry()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.sess.OpenHelp()

	case key.Matches(msg, keys.Reload):
		return m, m.fetchUnitsCmd()

	case key.Matches(msg, keys.ToggleScope):
		m.sess.ToggleScope()
		m.searchInput.SetValue("")
		m.logSearchInput.SetValue("")
		return m, m.fetchUnitsCmd()

	case key.Matches(msg, keys.ToggleLogs):
		m.showLogs = !m.showLogs
		return m.loadIfNeeded()

	case key.Matches(msg, keys.Escape):
		if filter.Query() != "" {
			filter.SetQuery("")
			m.searchInput.SetValue("")
			return m.loadIfNeeded()
		} else if logs.SearchQuery() != "" {
			logs.ClearSearch()
			m.logSearchInput.SetValue("")
		}

	case key.Matches(msg, keys.Search):
		// With the log panel open the search targets the log buffer.
		if m.showLogs {
			m.sess.StartLogSearch()
			m.logSearchInput.SetValue(logs.SearchQuery())
			m.logSearchInput.Focus()
			return m, textinput.Blink
		}
		m.sess.StartSearch()
		m.searchInput.SetValue(filter.Query())
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.NextMatch):
		logs.NextMatch(hf, vh)

	case key.Matches(msg, keys.PrevMatch):
		logs.PrevMatch(hf, vh)

	case key.Matches(msg, keys.Follow):
		logs.ScrollBottom()

	case key.Matches(msg, keys.StatusPicker):
		m.sess.OpenStatusPicker()

	case key.Matches(msg, keys.CategoryPicker):
		m.sess.OpenCategoryPicker()

	case key.Matches(msg, keys.SeverityPicker):
		m.sess.OpenSeverityPicker()

	case key.Matches(msg, keys.TimePicker):
		m.sess.OpenTimePicker()

	case key.Matches(msg, keys.FileStatePicker):
		m.sess.OpenFileStatePicker()

	case key.Matches(msg, keys.ActionPicker):
		m.sess.OpenActionPicker()

	case key.Matches(msg, keys.Details):
		if m.sess.OpenDetails() {
			if u, ok := filter.SelectedUnit(); ok {
				if _, cached := m.sess.CachedProperties(u.Name); !cached {
					return m, m.fetchPropsCmd(u.Name)
				}
			}
		}

	case key.Matches(msg, keys.UnitFile):
		if m.sess.OpenUnitFile() {
			if name, lines := m.sess.UnitFileContent(); lines == nil {
				return m, m.fetchUnitFileCmd(name)
			}
		}

	case key.Matches(msg, keys.Up):
		filter.Prev()
		return m.loadIfNeeded()

	case key.Matches(msg, keys.Down):
		filter.Next()
		return m.loadIfNeeded()

	case key.Matches(msg, keys.Top):
		filter.Top()
		return m.loadIfNeeded()

	case key.Matches(msg, keys.Bottom):
		filter.Bottom()
		return m.loadIfNeeded()

	case key.Matches(msg, keys.PageUp):
		filter.PageUp(m.unitPaneHeight())
		return m.loadIfNeeded()

	case key.Matches(msg, keys.PageDown):
		filter.PageDown(m.unitPaneHeight())
		return m.loadIfNeeded()

	case key.Matches(msg, keys.HalfPageUp):
		logs.ScrollBy(-max(vh/2, 1), hf, vh)

	case key.Matches(msg, keys.HalfPageDown):
		logs.ScrollBy(max(vh/2, 1), hf, vh)
	}
	return m, nil
}
