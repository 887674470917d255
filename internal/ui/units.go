package ui

import (
	"fmt"
	"strings"

	"unitctl/internal/systemd"
)

// renderHeader shows the category, scope, counts, and the active predicates.
func (m Model) renderHeader() string {
	filter := m.sess.Filter()

	left := fmt.Sprintf("unitctl  %s (%s)", m.sess.Category().Label(), m.sess.Scope().Label())
	counts := fmt.Sprintf("%d/%d", filter.Len(), len(filter.Units()))

	var preds []string
	if q := filter.Query(); q != "" {
		preds = append(preds, "name~"+q)
	}
	if s := filter.SubState(); s != "" {
		preds = append(preds, "state="+s)
	}
	if f := filter.FileState(); f != "" {
		preds = append(preds, "file="+f)
	}
	predText := ""
	if len(preds) > 0 {
		predText = "  [" + strings.Join(preds, " ") + "]"
	}

	// Style each segment after truncating; escape codes have no cell width.
	predText = truncate(predText, max(m.width-len(left)-len(counts)-2, 0))
	return m.theme.Title.Render(left) + "  " + m.theme.Faint.Render(counts) + m.theme.Accent.Render(predText)
}

// renderUnits draws the windowed unit list, exactly height rows.
func (m Model) renderUnits(height int) string {
	filter := m.sess.Filter()
	indices := filter.FilteredIndices()
	units := filter.Units()
	cursor, hasCursor := filter.Selection()

	if len(indices) == 0 {
		empty := "No units match"
		if len(units) == 0 {
			empty = "No units loaded"
		}
		lines := make([]string, height)
		lines[0] = m.theme.Muted.Render("  " + empty)
		return strings.Join(lines, "\n")
	}

	// Keep the cursor roughly centered once the list outgrows the pane.
	offset := 0
	if hasCursor && len(indices) > height {
		offset = min(max(cursor-height/2, 0), len(indices)-height)
	}

	lines := make([]string, 0, height)
	for row := 0; row < height; row++ {
		pos := offset + row
		if pos >= len(indices) {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, m.renderUnitRow(units[indices[pos]], hasCursor && pos == cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderUnitRow(u systemd.Unit, selected bool) string {
	nameW := min(max(m.width/3, 20), 48)
	subW := 10
	fileW := 9

	name := padRight(u.Name, nameW)
	sub := padRight(u.Sub, subW)
	file := padRight(u.FileState, fileW)
	descW := m.width - nameW - subW - fileW - 6
	desc := u.Description
	if u.Detail != "" {
		desc = u.Detail + "  " + desc
	}
	desc = truncate(desc, max(descW, 0))

	if selected {
		return m.theme.Selected.Render(truncate("> "+name+"  "+sub+"  "+file+"  "+desc, m.width))
	}
	return "  " + name + "  " + m.theme.subStateStyle(u.Sub).Render(sub) + "  " + m.theme.Faint.Render(file) + "  " + desc
}
