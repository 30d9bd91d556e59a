// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"iclicker-monitor/pkg/colorutil"

	"github.com/charmbracelet/lipgloss"
)

var (
	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorutil.Hex(colorutil.Green)))
	// WarningStyle formats warnings.
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorutil.Hex(colorutil.Orange)))
	// ErrorStyle formats errors.
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorutil.Hex(colorutil.Red)))
	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorutil.Hex(colorutil.Blue)))
	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	// HeaderStyle is used for table headers.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

// LabelStyle colors a resolved label name like the panel does.
func LabelStyle(name string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorutil.Hex(colorutil.ForLabel(name))))
}

// Table writes aligned rows under a styled header.
type Table struct {
	w *tabwriter.Writer
}

// NewTable writes the header row to out.
func NewTable(out io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", max(len(h), 4))
	}
	fmt.Fprintln(t.w, strings.Join(styled, "\t"))
	fmt.Fprintln(t.w, strings.Join(rules, "\t"))
	return t
}

// Row appends one row.
func (t *Table) Row(cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(t.w, strings.Join(parts, "\t"))
}

// Flush writes the table.
func (t *Table) Flush() error {
	return t.w.Flush()
}
