package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"unitctl/internal/session"
	"unitctl/internal/systemd"
)

func (m Model) modalBox() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border.GetForeground()).
		Padding(0, 1)
}

func (m Model) place(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderModal returns the active overlay, or "" when none replaces the frame.
// The typing modes render inline in the status bar instead.
func (m Model) renderModal() string {
	switch m.sess.Modal() {
	case session.ModalStatusPicker:
		return m.renderPicker("Filter by state")
	case session.ModalCategoryPicker:
		return m.renderPicker("Unit type")
	case session.ModalSeverityPicker:
		return m.renderPicker("Minimum severity")
	case session.ModalTimePicker:
		return m.renderPicker("Time range")
	case session.ModalFileStatePicker:
		return m.renderPicker("Filter by enablement")
	case session.ModalActionPicker:
		return m.renderPicker("Actions")
	case session.ModalConfirm:
		return m.renderConfirm()
	case session.ModalDetails:
		return m.renderDetails()
	case session.ModalUnitFile:
		return m.renderUnitFile()
	case session.ModalHelp:
		return m.renderHelp()
	}
	return ""
}

func (m Model) renderPicker(title string) string {
	picker := m.sess.Picker()
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(title))
	b.WriteByte('\n')
	for i, opt := range picker.Options() {
		b.WriteByte('\n')
		if i == picker.Cursor() {
			b.WriteString(m.theme.Selected.Render("> " + opt))
		} else {
			b.WriteString("  " + opt)
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.theme.Faint.Render("enter select  esc cancel"))
	return m.place(m.modalBox().Render(b.String()))
}

func (m Model) renderConfirm() string {
	actions := m.sess.Actions()
	var body string
	switch actions.Phase() {
	case session.ActionConfirming:
		body = actions.Action().ConfirmPrompt(actions.Unit()) + "\n\n" +
			m.theme.Faint.Render("enter/y confirm  esc/n cancel")
	case session.ActionExecuting:
		label := actions.Action().ProgressLabel()
		if m.blink {
			label = m.theme.Accent.Render(label)
		}
		body = label + "\n\n" + m.theme.Faint.Render("esc dismiss")
	case session.ActionSettled:
		result := actions.Result()
		msg := result.Message
		if result.OK {
			msg = m.theme.Success.Render(msg)
		} else {
			msg = m.theme.Danger.Render(msg)
		}
		body = msg + "\n\n" + m.theme.Faint.Render("enter/esc dismiss")
	default:
		return ""
	}
	return m.place(m.modalBox().Render(body))
}

// detailLines builds the fact sheet for the selected unit from its cached
// properties. Empty until the fetch lands.
func (m Model) detailLines() []string {
	u, ok := m.sess.Filter().SelectedUnit()
	if !ok {
		return nil
	}
	props, cached := m.sess.CachedProperties(u.Name)
	if !cached {
		return []string{"Fetching properties..."}
	}

	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%-14s %s", label, value))
		}
	}
	addList := func(label string, values []string) {
		if len(values) > 0 {
			add(label, strings.Join(values, " "))
		}
	}

	add("Description", props.Description)
	add("Path", props.FragmentPath)
	add("Load", props.LoadState)
	active := props.ActiveState
	if props.SubState != "" {
		active += " (" + props.SubState + ")"
	}
	add("Active", active)
	add("Since", props.ActiveEnterTimestamp)
	add("File state", props.UnitFileState)
	if props.MainPID != 0 {
		add("Main PID", fmt.Sprintf("%d", props.MainPID))
	}
	add("Started", props.ExecMainStartTimestamp)
	if props.MemoryCurrent != nil {
		add("Memory", systemd.FormatBytes(*props.MemoryCurrent))
	}
	if props.CPUUsageNSec != nil {
		add("CPU", systemd.FormatCPUTime(*props.CPUUsageNSec))
	}

	switch m.sess.Category() {
	case systemd.CategoryTimer:
		addList("Calendar", props.TimersCalendar)
		addList("Monotonic", props.TimersMonotonic)
		add("Next elapse", props.NextElapse)
		add("Last trigger", props.LastTrigger)
		add("Result", props.Result)
		add("Persistent", props.Persistent)
		add("Accuracy", props.AccuracyUSec)
		add("Rand. delay", props.RandomizedDelayUSec)
	case systemd.CategorySocket:
		add("Listen", props.Listen)
		add("Accept", props.Accept)
		add("Connections", props.NConnections)
		add("Accepted", props.NAccepted)
	case systemd.CategoryPath:
		add("Paths", props.Paths)
	}

	addList("Requires", props.Requires)
	addList("Wants", props.Wants)
	addList("After", props.After)
	addList("Before", props.Before)
	addList("Conflicts", props.Conflicts)
	addList("Triggered by", props.TriggeredBy)
	addList("Triggers", props.Triggers)

	if len(lines) == 0 {
		lines = append(lines, "No properties available")
	}
	return lines
}

func (m Model) renderDetails() string {
	u, ok := m.sess.Filter().SelectedUnit()
	if !ok {
		return ""
	}
	return m.renderScrollingModal(u.Name, m.detailLines(), m.sess.DetailScroll())
}

func (m Model) renderUnitFile() string {
	name, lines := m.sess.UnitFileContent()
	if lines == nil {
		lines = []string{"Fetching unit file..."}
	}
	return m.renderScrollingModal(name, lines, m.sess.FileScroll())
}

func (m Model) renderScrollingModal(title string, lines []string, scroll int) string {
	visible := m.modalBodyHeight()
	innerW := max(m.width-8, 20)

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(truncate(title, innerW)))
	b.WriteByte('\n')
	end := min(scroll+visible, len(lines))
	for i := scroll; i < end; i++ {
		b.WriteByte('\n')
		b.WriteString(truncate(lines[i], innerW))
	}
	b.WriteString("\n\n")
	footer := "j/k scroll  esc close"
	if len(lines) > visible {
		footer = fmt.Sprintf("%d-%d/%d  %s", scroll+1, end, len(lines), footer)
	}
	b.WriteString(m.theme.Faint.Render(footer))
	return m.place(m.modalBox().Width(innerW + 2).Render(b.String()))
}

func (m Model) renderHelp() string {
	rows := [][2]string{
		{"j/k, arrows", "Move selection"},
		{"g/G", "Top / bottom"},
		{"pgup/pgdn", "Page units"},
		{"ctrl+u/d", "Scroll logs"},
		{"space", "Follow latest logs"},
		{"/", "Search units (logs when panel open)"},
		{"n/N", "Next / previous log match"},
		{"enter", "Confirm"},
		{"a", "Unit actions"},
		{"i", "Unit details"},
		{"c", "View unit file"},
		{"s", "Filter by state"},
		{"f", "Filter by enablement"},
		{"t", "Unit type"},
		{"p", "Log severity"},
		{"T", "Log time range"},
		{"u", "System / user scope"},
		{"l", "Toggle log panel"},
		{"r", "Reload units"},
		{"esc", "Close / clear"},
		{"q", "Quit"},
	}
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Keys"))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteByte('\n')
		b.WriteString(m.theme.Accent.Render(padRight(row[0], 12)) + row[1])
	}
	b.WriteString("\n\n")
	b.WriteString(m.theme.Faint.Render("press any key to close"))
	return m.place(m.modalBox().Render(b.String()))
}
