package ui

import (
	"unitctl/internal/session"
)

// renderStatus draws the bottom line: the live search input while typing,
// otherwise a short key legend.
func (m Model) renderStatus() string {
	switch m.sess.Modal() {
	case session.ModalSearch:
		return "Filter units " + m.searchInput.View()
	case session.ModalLogSearch:
		return "Search logs " + m.logSearchInput.View()
	}

	legend := "j/k move  enter/a actions  i details  c cat  / search  s state  t type  u scope  l logs  ? help  q quit"
	return m.theme.Faint.Render(truncate(legend, m.width))
}
