package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/ledger"
	"github.com/Veraticus/kroner/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// CategoryListModel shows per-category totals with budget utilization.
type CategoryListModel struct {
	theme      themes.Theme
	lines      []ledger.Line
	cursor     int
	offset     int
	width      int
	height     int
	focused    bool
	showBudget bool
}

// NewCategoryList creates an empty category list.
func NewCategoryList(theme themes.Theme) CategoryListModel {
	return CategoryListModel{theme: theme, width: 40, height: 10}
}

// SetLines replaces the rows. showBudget is false while all years are
// selected, which hides budget figures.
func (m *CategoryListModel) SetLines(lines []ledger.Line, showBudget bool) {
	m.lines = lines
	m.showBudget = showBudget
	if m.cursor >= len(lines) {
		m.cursor = max(len(lines)-1, 0)
	}
	m.clampOffset()
}

// Resize sets the available area.
func (m *CategoryListModel) Resize(width, height int) {
	m.width = width
	m.height = max(height, 2)
	m.clampOffset()
}

// SetFocused toggles cursor highlighting.
func (m *CategoryListModel) SetFocused(focused bool) { m.focused = focused }

// MoveUp moves the cursor up one row.
func (m *CategoryListModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
	m.clampOffset()
}

// MoveDown moves the cursor down one row.
func (m *CategoryListModel) MoveDown() {
	if m.cursor < len(m.lines)-1 {
		m.cursor++
	}
	m.clampOffset()
}

// Cursor returns the selected row index.
func (m CategoryListModel) Cursor() int { return m.cursor }

// Selected returns the line under the cursor.
func (m CategoryListModel) Selected() (ledger.Line, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return ledger.Line{}, false
	}
	return m.lines[m.cursor], true
}

// rows per line: label row plus bar row.
func (m *CategoryListModel) clampOffset() {
	visible := max(m.height/2, 1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

// View renders the list.
func (m CategoryListModel) View() string {
	title := m.theme.Subtitle.Render("Kategorier")
	if len(m.lines) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Ingen kategorier"))
	}

	visible := max(m.height/2, 1)
	end := min(m.offset+visible, len(m.lines))

	rows := []string{title}
	for i := m.offset; i < end; i++ {
		rows = append(rows, m.renderLine(m.lines[i], i == m.cursor && m.focused)...)
	}
	return strings.Join(rows, "\n")
}

func (m CategoryListModel) renderLine(line ledger.Line, selected bool) []string {
	name := lipgloss.NewStyle().Foreground(themes.CategoryColor(line.Name)).Bold(true).Render(line.Name)
	amount := format.Kroner(line.Total)
	if m.showBudget && line.Budget > 0 {
		amount = fmt.Sprintf("%s / %s", amount, format.Kroner(line.Budget))
	}

	gap := max(m.width-lipgloss.Width(name)-lipgloss.Width(amount)-2, 1)
	head := name + strings.Repeat(" ", gap) + amount
	if selected {
		head = m.theme.Selected.Render(lipgloss.NewStyle().Width(m.width).Render(head))
	}

	if !m.showBudget || line.Budget <= 0 {
		return []string{head, ""}
	}

	color := string(m.theme.UsageColor(themes.CategoryColor(line.Name), line.Utilization.Over))
	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithoutPercentage(),
		progress.WithWidth(max(m.width-8, 10)),
	)
	return []string{head, bar.ViewAs(line.Utilization.Width/100) + " " + format.Percent(line.Utilization.Percent)}
}
