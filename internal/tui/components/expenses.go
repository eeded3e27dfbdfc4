package components

import (
	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ExpenseTableModel is the newest-first expense table.
type ExpenseTableModel struct {
	theme    themes.Theme
	expenses []model.Expense
	table    table.Model
}

// NewExpenseTable creates an empty expense table.
func NewExpenseTable(theme themes.Theme) ExpenseTableModel {
	t := table.New(
		table.WithColumns(expenseColumns(60)),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = theme.Selected
	t.SetStyles(s)

	return ExpenseTableModel{theme: theme, table: t}
}

func expenseColumns(width int) []table.Column {
	item := max(width-10-18-12-14-10, 12)
	return []table.Column{
		{Title: "Dato", Width: 10},
		{Title: "Beskrivelse", Width: item},
		{Title: "Kategori", Width: 18},
		{Title: "Tag", Width: 12},
		{Title: "Pris", Width: 14},
	}
}

// SetExpenses replaces the rows, keeping the cursor in range.
func (m *ExpenseTableModel) SetExpenses(expenses []model.Expense) {
	m.expenses = expenses
	rows := make([]table.Row, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, table.Row{
			format.Date(e.Date),
			e.Item,
			e.CategoryName("Uncategorized"),
			e.Tag,
			format.Kroner(e.Price),
		})
	}
	m.table.SetRows(rows)
	// An empty table leaves the cursor at -1.
	if n := len(rows); n > 0 && (m.table.Cursor() < 0 || m.table.Cursor() >= n) {
		m.table.SetCursor(min(max(m.table.Cursor(), 0), n-1))
	}
}

// Resize fits the table into width by height.
func (m *ExpenseTableModel) Resize(width, height int) {
	m.table.SetColumns(expenseColumns(width))
	m.table.SetWidth(width)
	m.table.SetHeight(max(height, 3))
}

// SetFocused toggles keyboard focus.
func (m *ExpenseTableModel) SetFocused(focused bool) {
	if focused {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

// Selected returns the expense under the cursor.
func (m ExpenseTableModel) Selected() (model.Expense, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.expenses) {
		return model.Expense{}, false
	}
	return m.expenses[i], true
}

// Len returns the number of rows.
func (m ExpenseTableModel) Len() int { return len(m.expenses) }

// Update forwards navigation keys to the table.
func (m ExpenseTableModel) Update(msg tea.Msg) (ExpenseTableModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table.
func (m ExpenseTableModel) View() string {
	title := m.theme.Subtitle.Render("Transaksjoner")
	if len(m.expenses) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Ingen transaksjoner i perioden"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, m.table.View())
}
