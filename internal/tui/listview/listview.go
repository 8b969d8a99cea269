// ABOUTME: Searchable record table for the TUI
// ABOUTME: Wraps a bubbles table; "/" focuses an accent-insensitive search box

package listview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/listing"
	"github.com/markalston/formationsgest/internal/tui/icons"
	"github.com/markalston/formationsgest/internal/tui/styles"
)

const maxColumnWidth = 30

// BackMsg is sent when the user leaves the list
type BackMsg struct{}

// List is a titled, searchable table
type List struct {
	title     string
	source    export.Table
	shown     [][]string
	table     table.Model
	search    textinput.Model
	searching bool
	height    int
}

// New creates a list over t
func New(title string, t export.Table, height int) *List {
	search := textinput.New()
	search.Placeholder = "rechercher..."
	search.Prompt = icons.Search.String() + " "

	l := &List{
		title:  title,
		source: t,
		search: search,
		height: height,
	}
	l.table = table.New(
		table.WithColumns(columns(t)),
		table.WithFocused(true),
		table.WithHeight(l.tableHeight()),
	)
	l.applyFilter()
	return l
}

func columns(t export.Table) []table.Column {
	cols := make([]table.Column, len(t.Headers))
	for i, h := range t.Headers {
		w := lipgloss.Width(h)
		for _, row := range t.Rows {
			if i < len(row) {
				w = max(w, lipgloss.Width(row[i]))
			}
		}
		cols[i] = table.Column{Title: h, Width: min(w, maxColumnWidth)}
	}
	return cols
}

func (l *List) tableHeight() int {
	// title, search line, footer count
	return max(5, l.height-6)
}

// SetHeight resizes the table
func (l *List) SetHeight(height int) {
	l.height = height
	l.table.SetHeight(l.tableHeight())
}

func (l *List) applyFilter() {
	l.shown = listing.Filter(l.source.Rows, l.search.Value(), func(r []string) []string { return r })
	rows := make([]table.Row, len(l.shown))
	for i, r := range l.shown {
		rows[i] = table.Row(r)
	}
	l.table.SetRows(rows)
	l.table.SetCursor(0)
}

// Visible returns the rows currently shown
func (l *List) Visible() [][]string {
	return l.shown
}

// Selected returns the highlighted row, or nil when the list is empty
func (l *List) Selected() []string {
	row := l.table.SelectedRow()
	if row == nil {
		return nil
	}
	return []string(row)
}

// Searching reports whether the search box has focus
func (l *List) Searching() bool {
	return l.searching
}

// Init implements tea.Model
func (l *List) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)

	if l.searching {
		if isKey {
			switch key.String() {
			case "esc", "enter":
				l.searching = false
				l.search.Blur()
				l.table.Focus()
				return l, nil
			}
		}
		var cmd tea.Cmd
		before := l.search.Value()
		l.search, cmd = l.search.Update(msg)
		if l.search.Value() != before {
			l.applyFilter()
		}
		return l, cmd
	}

	if isKey {
		switch key.String() {
		case "/":
			l.searching = true
			l.table.Blur()
			return l, l.search.Focus()
		case "esc", "b":
			return l, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	l.table, cmd = l.table.Update(msg)
	return l, cmd
}

// View implements tea.Model
func (l *List) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(l.title))
	sb.WriteString("\n")
	if l.searching || l.search.Value() != "" {
		sb.WriteString(l.search.View())
		sb.WriteString("\n")
	}
	sb.WriteString(l.table.View())
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d / %d", len(l.shown), len(l.source.Rows))))
	return sb.String()
}
