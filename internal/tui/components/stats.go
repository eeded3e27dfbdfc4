package components

import (
	"strconv"

	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/ledger"
	"github.com/Veraticus/kroner/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StatCards renders the income, expense, net and count cards side by side.
func StatCards(theme themes.Theme, s ledger.Summary, width int) string {
	cardWidth := max((width-8)/4, 14)

	card := func(label, value string, color lipgloss.Color) string {
		return theme.RoundedBox.
			Padding(0, 1).
			Width(cardWidth).
			Render(lipgloss.JoinVertical(
				lipgloss.Left,
				lipgloss.NewStyle().Foreground(theme.Muted).Render(label),
				lipgloss.NewStyle().Foreground(color).Bold(true).Render(value),
			))
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		card("Inntekter", format.Kroner(s.Income), theme.Success),
		card("Utgifter", format.Kroner(s.Expenses), theme.Foreground),
		card("Netto", format.Kroner(s.Net), theme.AmountColor(s.Net)),
		card("Transaksjoner", strconv.Itoa(s.Count), theme.Foreground),
	)
}

// BudgetBar renders the overall budget summary with its fill bar.
func BudgetBar(theme themes.Theme, b ledger.BudgetSummary, width int) string {
	title := lipgloss.NewStyle().Foreground(theme.Muted).Render("Budsjett")
	if !b.HasBudget() {
		return lipgloss.JoinVertical(lipgloss.Left, title, theme.Normal.Render(b.Label()))
	}

	color := string(theme.UsageColor(theme.Primary, b.Over))
	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithoutPercentage(),
		progress.WithWidth(max(width-12, 10)),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		theme.Normal.Render(b.Label()),
		bar.ViewAs(b.Fill/ledger.SummaryFillCap)+" "+format.Percent(b.Percent),
	)
}
