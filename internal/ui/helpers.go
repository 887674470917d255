package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapLines hard-wraps s to the given display width, measuring in terminal
// cells so wide runes count as two. Returns at least one line.
func wrapLines(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var lines []string
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if r == '\n' {
			lines = append(lines, b.String())
			b.Reset()
			used = 0
			continue
		}
		if used+w > width && used > 0 {
			lines = append(lines, b.String())
			b.Reset()
			used = 0
		}
		b.WriteRune(r)
		used += w
	}
	lines = append(lines, b.String())
	return lines
}

// wrapHeight returns the number of display lines s occupies at the given
// width without building the wrapped strings.
func wrapHeight(s string, width int) int {
	if width <= 0 {
		return 1
	}
	lines := 1
	used := 0
	for _, r := range s {
		if r == '\n' {
			lines++
			used = 0
			continue
		}
		w := runewidth.RuneWidth(r)
		if used+w > width && used > 0 {
			lines++
			used = 0
		}
		used += w
	}
	return lines
}

// truncate shortens s to fit width display cells, appending an ellipsis when
// anything was cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// padRight extends s with spaces to exactly width display cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}
