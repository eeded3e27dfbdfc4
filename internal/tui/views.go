package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/tui/components"
	"github.com/charmbracelet/lipgloss"
)

// renderConfigError renders the blocking missing-settings screen.
func (m Model) renderConfigError() string {
	lines := []string{
		m.theme.Title.Render("Missing configuration"),
		m.theme.Normal.Render("kroner needs these settings before it can start:"),
		"",
	}
	for _, name := range m.config.Missing {
		lines = append(lines, "  "+m.theme.Code.Render(name))
	}
	lines = append(lines,
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Set them in config.yaml, .env or the environment, then restart."),
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press q to quit."),
	)
	return m.center(m.theme.BorderedBox.BorderForeground(m.theme.Error).Render(strings.Join(lines, "\n")))
}

// renderLoading renders the session restore screen.
func (m Model) renderLoading() string {
	return m.center(lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render("kroner"),
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Laster inn sesjonen din..."),
	))
}

// renderSignIn renders the sign-in form.
func (m Model) renderSignIn() string {
	parts := []string{
		m.theme.Title.Render("Velkommen tilbake"),
		m.theme.Subtitle.Render("Logg inn for å holde utgiftene dine ryddige og søkbare."),
		m.signInForm.View(),
		"",
	}
	switch {
	case m.busy:
		parts = append(parts, m.theme.StatusPending.Render("Logger inn..."))
	case m.status != "":
		parts = append(parts, m.renderStatus())
	default:
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Tab: neste felt  Enter: logg inn  Ctrl+C: avslutt"))
	}
	return m.center(m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)))
}

// renderDashboard renders the dashboard and any overlay on top of it.
func (m Model) renderDashboard() string {
	switch m.overlay {
	case OverlayHelp:
		return m.center(m.renderHelp())
	case OverlayDelete:
		return m.center(m.renderDeleteConfirm())
	case OverlayBudget:
		return m.center(m.renderBudgetEditor())
	case OverlayEntry:
		return m.center(m.renderEntryForm())
	}

	email := ""
	if m.session != nil {
		email = m.session.Email
	}
	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.theme.Title.Render("Regnskap"),
		"  ",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render(email),
	)

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.categoryList.View(),
		"   ",
		m.expenseTable.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		components.StatCards(m.theme, m.report.Summary, m.width),
		components.BudgetBar(m.theme, m.report.Budget, m.width/2),
		"",
		m.renderPeriodHeader(),
		"",
		body,
		"",
		m.renderStatusBar(),
	)
}

// renderPeriodHeader renders the selected period with its step controls.
func (m Model) renderPeriodHeader() string {
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)
	label := m.theme.Bold.Render(format.PeriodLabel(m.sel))

	prev, next := "← Forrige", "Neste →"
	if m.nav.CanStep(m.sel) {
		prev = lipgloss.NewStyle().Foreground(m.theme.Primary).Render(prev)
		next = lipgloss.NewStyle().Foreground(m.theme.Primary).Render(next)
	} else {
		prev, next = muted.Render(prev), muted.Render(next)
	}

	return fmt.Sprintf("%s %s   %s  %s   %s",
		muted.Render("Periode:"), label, prev, next,
		muted.Render("y: år  m: måned"),
	)
}

func (m Model) renderStatusBar() string {
	left := m.renderStatus()
	switch {
	case left != "":
	case m.loadingExpenses:
		left = m.theme.StatusPending.Render("Laster transaksjoner...")
	case m.loadingBudgets:
		left = m.theme.StatusPending.Render(MsgBudgetsLoading)
	}
	return lipgloss.JoinVertical(lipgloss.Left, left, m.help.ShortHelpView(m.keymap.ShortHelp()))
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	switch m.statusKind {
	case statusError:
		return m.theme.StatusError.Render(m.status)
	case statusSuccess:
		return m.theme.StatusSuccess.Render(m.status)
	default:
		return m.theme.StatusInfo.Render(m.status)
	}
}

func (m Model) renderDeleteConfirm() string {
	prompt := fmt.Sprintf("Delete %s? This cannot be undone.", m.deleteTarget.Item)
	hint := "y: slett  n: avbryt"
	if m.busy {
		hint = "Sletter..."
	}
	return m.theme.RoundedBox.BorderForeground(m.theme.Error).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Bold.Render(prompt),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render(hint),
	))
}

func (m Model) renderBudgetEditor() string {
	d := m.budgetDraft
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	previous := "Forrige periode"
	if d.PreviousLabel != "" {
		previous = "Forrige periode: " + d.PreviousLabel
	}

	var suggestion string
	switch {
	case d.HasValue:
		suggestion = muted.Render("Budsjett er satt for perioden.")
	case m.loadingSuggestion:
		suggestion = m.theme.StatusPending.Render(MsgBudgetsLoading)
	case d.Suggestion != nil:
		suggestion = lipgloss.NewStyle().Foreground(m.theme.Primary).
			Render(fmt.Sprintf("Ctrl+P: Kopier %s", format.Kroner(d.Suggestion.Amount)))
	default:
		suggestion = muted.Render("Ingen budsjett funnet")
	}

	hint := "Enter: Lagre  Esc: Avbryt"
	if m.busy {
		hint = "Lagrer..."
	}

	parts := []string{m.budgetForm.View(), ""}
	if !d.HasValue {
		parts = append(parts, muted.Render(previous))
	}
	parts = append(parts, suggestion, "")
	if m.status != "" {
		parts = append(parts, m.renderStatus())
	}
	parts = append(parts, muted.Render(hint))
	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderEntryForm() string {
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	names := make([]string, 0, len(m.categories))
	for _, c := range m.categories {
		names = append(names, c.Name)
	}
	available := "Ingen kategorier tilgjengelig"
	if len(names) > 0 {
		available = "Kategorier: " + strings.Join(names, ", ")
	}

	hint := "Tab: neste felt  Enter: lagre  Esc: avbryt"
	if m.busy {
		hint = "Lagrer..."
	}

	parts := []string{
		m.entryForm.View(),
		"",
		lipgloss.NewStyle().Width(m.formWidth()).Foreground(m.theme.Muted).Render(available),
		"",
	}
	if m.status != "" {
		parts = append(parts, m.renderStatus())
	}
	parts = append(parts, muted.Render(hint))
	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderHelp renders the help screen.
func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	return m.theme.BorderedBox.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render("kroner - Help"),
		h.View(m.keymap),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press any key to close help"),
	))
}

func (m Model) center(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
