package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// PortRow is one line of the --list output.
type PortRow struct {
	Name    string
	USBID   string // VID:PID, empty when the port is not USB
	Serial  string
	Product string
}

type portColumn struct {
	header string
	limit  int
	cell   func(PortRow) string
}

var portColumns = []portColumn{
	{"PORT", 24, func(r PortRow) string { return r.Name }},
	{"USB ID", 9, func(r PortRow) string { return r.USBID }},
	{"SERIAL", 16, func(r PortRow) string { return r.Serial }},
	{"PRODUCT", 32, func(r PortRow) string { return r.Product }},
}

// RenderPorts lays out the port listing. Each column is as wide as its widest
// cell, up to a per-column limit; missing values print as "-".
func RenderPorts(rows []PortRow) string {
	widths := make([]int, len(portColumns))
	headers := make([]string, len(portColumns))
	for i, col := range portColumns {
		headers[i] = col.header
		widths[i] = runewidth.StringWidth(col.header)
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(portColumns))
		for i, col := range portColumns {
			v := strings.TrimSpace(col.cell(row))
			if v == "" {
				v = "-"
			}
			cells[r][i] = v
			widths[i] = max(widths[i], min(runewidth.StringWidth(v), col.limit))
		}
	}

	var b strings.Builder
	writeRow(&b, widths, headers, HeaderStyle.Render)
	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	writeRow(&b, widths, rules, DimStyle.Render)
	for _, row := range cells {
		writeRow(&b, widths, row, nil)
	}
	return b.String()
}

// writeRow writes one line. The last column is not padded so rows carry no
// trailing blanks.
func writeRow(b *strings.Builder, widths []int, cells []string, render func(...string) string) {
	last := len(widths) - 1
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		cell := pad(cells[i], w)
		if i == last {
			cell = strings.TrimRight(cell, " ")
		}
		if render != nil {
			cell = render(cell)
		}
		b.WriteString(cell)
	}
	b.WriteByte('\n')
}

// pad fits s into exactly width terminal cells.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "")
	}
	return runewidth.FillRight(s, width)
}
