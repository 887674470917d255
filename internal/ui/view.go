package ui

import (
	"strings"

	"unitctl/internal/session"
)

// View renders the whole frame: header, unit list, optional log panel,
// status line, and any active overlay on top.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	if err := m.sess.Filter().Err(); err != nil {
		b.WriteString(m.theme.Danger.Render(truncate("Error: "+err.Error(), m.width)))
		b.WriteByte('\n')
	}

	b.WriteString(m.renderUnits(m.unitPaneHeight()))
	if m.showLogs {
		b.WriteByte('\n')
		b.WriteString(m.renderLogSeparator())
		b.WriteByte('\n')
		b.WriteString(m.renderLogs())
	}
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())

	frame := b.String()
	if overlay := m.renderModal(); overlay != "" {
		return overlay
	}
	return frame
}

// chromeHeight counts the fixed rows around the panes.
func (m Model) chromeHeight() int {
	h := 2 // header + status
	if m.sess.Filter().Err() != nil {
		h++
	}
	return h
}

// unitPaneHeight returns the row count of the unit list pane.
func (m Model) unitPaneHeight() int {
	content := m.height - m.chromeHeight()
	if m.showLogs {
		content -= 1 + m.logPaneHeight()
	}
	return max(content, 1)
}

// logPaneHeight returns the row count of the log pane.
func (m Model) logPaneHeight() int {
	content := m.height - m.chromeHeight() - 1
	return max(content/2, 1)
}

// logGeometry returns the per-entry height function and viewport height used
// by every scroll computation. Heights are measured at the current width, so
// wrapped records count every visual line.
func (m Model) logGeometry() (session.HeightFunc, int) {
	entries := m.sess.Logs().Entries()
	width := max(m.width, 1)
	hf := func(i int) int {
		e := entries[i]
		if e.Kind != session.EntryRecord {
			return 1
		}
		return wrapHeight(recordText(e.Record), width)
	}
	return hf, m.logPaneHeight()
}

// modalBodyHeight is the scrollable interior of the details and unit file
// overlays.
func (m Model) modalBodyHeight() int {
	return max(m.height-8, 3)
}
