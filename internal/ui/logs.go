package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"unitctl/internal/session"
	"unitctl/internal/systemd"
)

// recordText renders the plain text of one record, before styling. Height
// math and rendering both use it so they always agree.
func recordText(r systemd.Record) string {
	var b strings.Builder
	if ts := r.FormatTimestamp(); ts != "" {
		b.WriteString(ts)
		b.WriteByte(' ')
	}
	if r.Identifier != "" {
		b.WriteString(r.Identifier)
		if r.PID != "" {
			b.WriteString("[" + r.PID + "]")
		}
		b.WriteString(": ")
	}
	b.WriteString(r.Message)
	return b.String()
}

// renderLogSeparator draws the divider line with the log unit name, the tail
// state, and search match position.
func (m Model) renderLogSeparator() string {
	logs := m.sess.Logs()
	label := m.sess.LogUnit()
	if label == "" {
		label = "logs"
	}

	var parts []string
	parts = append(parts, label)
	if logs.Tailing() {
		parts = append(parts, "following")
	} else {
		parts = append(parts, "paused")
	}
	if f := logs.Filter(); f.MinPriority >= 0 {
		parts = append(parts, "prio<="+systemd.PriorityLabel(f.MinPriority))
	}
	if f := logs.Filter(); f.Range != systemd.RangeAll {
		parts = append(parts, f.Range.Label())
	}
	if cur, total := logs.MatchPosition(); total > 0 {
		parts = append(parts, fmt.Sprintf("match %d/%d", cur, total))
	}

	text := " " + strings.Join(parts, " | ") + " "
	pad := max(m.width-runewidth.StringWidth(text)-2, 0)
	return m.theme.Border.Render("--" + text + strings.Repeat("-", pad))
}

// renderLogs draws the log viewport: wrapped records and centered markers,
// starting at the resolved top entry, exactly logPaneHeight rows.
func (m Model) renderLogs() string {
	logs := m.sess.Logs()
	entries := logs.Entries()
	hf, vh := m.logGeometry()

	lines := make([]string, 0, vh)
	if len(entries) == 0 {
		if _, ok := m.sess.Filter().SelectedUnit(); !ok {
			lines = append(lines, m.theme.Muted.Render("  Select a unit to view its logs"))
		} else if !logs.Loaded() {
			lines = append(lines, m.theme.Muted.Render("  Fetching logs..."))
		} else {
			lines = append(lines, m.theme.Muted.Render("  No log entries"))
		}
	} else {
		current, hasMatch := logs.CurrentMatch()
		top := logs.Top(hf, vh)
		for i := top; i < len(entries) && len(lines) < vh; i++ {
			lines = append(lines, m.renderEntry(entries[i], i, current, hasMatch)...)
		}
	}
	for len(lines) < vh {
		lines = append(lines, "")
	}
	return strings.Join(lines[:vh], "\n")
}

func (m Model) renderEntry(e session.Entry, idx, currentMatch int, hasMatch bool) []string {
	width := max(m.width, 1)
	switch e.Kind {
	case session.MarkerBoot:
		return []string{m.theme.Marker.Render(centerLine("─── Reboot ───", width))}
	case session.MarkerInvocation:
		return []string{m.theme.Marker.Render(centerLine("─── Service restarted ───", width))}
	}

	style := m.theme.priorityStyle(e.Record.Priority)
	query := m.sess.Logs().SearchQuery()
	if query != "" && hasMatch && idx == currentMatch {
		style = m.theme.Selected
	} else if query != "" && strings.Contains(strings.ToLower(e.Record.Message), strings.ToLower(query)) {
		style = m.theme.Accent
	}

	wrapped := wrapLines(recordText(e.Record), width)
	for i, line := range wrapped {
		wrapped[i] = style.Render(line)
	}
	return wrapped
}

func centerLine(s string, width int) string {
	pad := (width - len([]rune(s))) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
