package tui

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/Veraticus/kroner/internal/budget"
	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/entry"
	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/period"
	"github.com/Veraticus/kroner/internal/tui/components"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Status messages.
const (
	MsgExpenseSaved   = "Expense saved."
	MsgExpenseDeleted = "Expense deleted."
	MsgBudgetSaved    = "Budget saved."
	MsgSignedOut      = "Signed out."
	MsgTimedOut       = "The request timed out. Try again."
	MsgBudgetsLoading = "Henter budsjett..."
	MsgNoCategory     = "This row has no category to budget."
)

// errorText turns err into status text.
func errorText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimedOut
	}
	return common.UserMessage(err)
}

func (m *Model) fail(err error, action string) {
	slog.Warn("dashboard request failed", "action", action, "error", err)
	m.setStatus(statusError, errorText(err))
}

// Session handling.

func (m Model) handleSessionLoaded(msg sessionLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.fail(msg.err, "restore session")
	}
	if msg.session == nil {
		m.screen = ScreenSignIn
		return m, m.signInForm.FocusField(0)
	}
	return m, m.enterDashboard(msg.session)
}

func (m Model) handleSignedIn(msg signedInMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.fail(msg.err, "sign in")
		return m, nil
	}
	if m.screen == ScreenDashboard && m.owner() == msg.session.UserID {
		m.session = msg.session
		return m, nil
	}
	return m, m.enterDashboard(msg.session)
}

func (m Model) handleSignedOut(msg signedOutMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.leaveDashboard()
	if msg.err != nil {
		m.fail(msg.err, "sign out")
	} else {
		m.setStatus(statusInfo, MsgSignedOut)
	}
	return m, m.signInForm.FocusField(0)
}

func (m Model) handleSessionChanged(msg SessionChangedMsg) (tea.Model, tea.Cmd) {
	if m.screen == ScreenConfigError || m.screen == ScreenLoading {
		return m, nil
	}
	switch {
	case msg.Session == nil:
		if m.session == nil {
			return m, nil
		}
		m.leaveDashboard()
		return m, m.signInForm.FocusField(0)
	case m.session != nil && m.session.UserID == msg.Session.UserID:
		m.session = msg.Session
		return m, nil
	default:
		return m, m.enterDashboard(msg.Session)
	}
}

func (m *Model) enterDashboard(session *model.Session) tea.Cmd {
	m.session = session
	m.screen = ScreenDashboard
	m.clearStatus()
	m.resetData()
	m.signInForm = m.newSignInForm()
	return m.reloadAll()
}

func (m *Model) leaveDashboard() {
	m.session = nil
	m.screen = ScreenSignIn
	m.resetData()
	m.signInForm = m.newSignInForm()
}

// Loads.

func (m Model) handleMetaLoaded(msg metaLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen.meta {
		return m, nil
	}
	if msg.err != nil {
		m.fail(msg.err, "load periods")
		msg.dates = nil
	}

	avail := period.NewAvailability(msg.dates)
	m.nav = period.NewNavigator(avail, m.now)
	if !m.needsNormalize(avail) {
		return m, nil
	}
	m.normalized = true
	return m, m.selectPeriod(m.nav.Normalize(m.sel))
}

// needsNormalize reports whether the selection must move onto data: always
// on the first load, later only when the selected year or month lost its
// data.
func (m Model) needsNormalize(avail period.Availability) bool {
	if !m.normalized {
		return true
	}
	if !m.sel.HasYear() || avail.Empty() {
		return false
	}
	if !avail.HasYear(m.sel.Year) {
		return true
	}
	months := avail.MonthsIn(m.sel.Year)
	return m.sel.Month != 0 && len(months) > 0 && !slices.Contains(months, m.sel.Month)
}

func (m Model) handleCategoriesLoaded(msg categoriesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen.categories {
		return m, nil
	}
	if msg.err != nil {
		m.fail(msg.err, "load categories")
	}
	m.categories = msg.categories
	m.rebuild()
	return m, nil
}

func (m Model) handleExpensesLoaded(msg expensesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen.expenses {
		return m, nil
	}
	m.loadingExpenses = false
	if msg.err != nil {
		m.fail(msg.err, "load expenses")
	}
	m.expenses = msg.expenses
	m.rebuild()
	return m, nil
}

func (m Model) handleBudgetsLoaded(msg budgetsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen.budgets {
		return m, nil
	}
	m.loadingBudgets = false
	if msg.err != nil {
		m.fail(msg.err, "load budgets")
	}
	m.budgets = msg.budgets
	m.budgetYear = msg.year
	m.rebuild()
	return m, nil
}

func (m Model) handleSuggestionLoaded(msg suggestionLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen.suggestion || m.overlay != OverlayBudget {
		return m, nil
	}
	m.loadingSuggestion = false
	if msg.err != nil {
		m.fail(msg.err, "load previous budget")
		return m, nil
	}
	m.budgetDraft.Suggestion = msg.suggestion
	m.budgetDraft.NeedsLookup = false
	return m, nil
}

// Writes. A failed write leaves local state untouched.

func (m Model) handleExpenseSaved(msg expenseSavedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.fail(msg.err, "save expense")
		return m, nil
	}
	m.overlay = OverlayNone
	m.setStatus(statusSuccess, MsgExpenseSaved)
	return m, tea.Batch(m.loadExpenses(), m.loadMeta())
}

func (m Model) handleExpenseDeleted(msg expenseDeletedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.overlay = OverlayNone
	if msg.err != nil {
		m.fail(msg.err, "delete expense")
		return m, nil
	}
	m.expenses = slices.DeleteFunc(slices.Clone(m.expenses), func(e model.Expense) bool {
		return e.ID == msg.id
	})
	m.rebuild()
	m.setStatus(statusSuccess, MsgExpenseDeleted)
	return m, m.loadMeta()
}

func (m Model) handleBudgetSaved(msg budgetSavedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.fail(msg.err, "save budget")
		return m, nil
	}
	m.closeOverlay()
	m.setStatus(statusSuccess, MsgBudgetSaved)
	return m, m.loadBudgets()
}

// handleChangeEvent refetches whatever another session changed.
func (m Model) handleChangeEvent(msg ChangeEventMsg) (tea.Model, tea.Cmd) {
	if m.screen != ScreenDashboard {
		return m, nil
	}
	switch msg.Event.Kind {
	case model.ChangeExpenseCreated, model.ChangeExpenseDeleted:
		return m, tea.Batch(m.loadExpenses(), m.loadMeta())
	case model.ChangeBudgetSaved:
		if m.sel.HasYear() && msg.Event.Year == m.sel.Year {
			return m, m.loadBudgets()
		}
	case model.ChangeCategoryAdded:
		return m, m.loadCategories()
	}
	return m, nil
}

// selectPeriod moves the selection and refetches what depends on it.
func (m *Model) selectPeriod(next model.Period) tea.Cmd {
	if next == m.sel {
		return nil
	}
	yearChanged := next.Year != m.sel.Year
	m.sel = next
	m.rebuild()

	cmds := []tea.Cmd{m.loadExpenses()}
	if yearChanged || m.budgetYear != next.Year {
		cmds = append(cmds, m.loadBudgets())
	}
	return tea.Batch(cmds...)
}

// Keys.

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenConfigError, ScreenLoading:
		if key.Matches(msg, m.keymap.Quit) || msg.String() == "esc" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case ScreenSignIn:
		if m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.signInForm, cmd = m.signInForm.Update(msg)
		return m, cmd
	}

	switch m.overlay {
	case OverlayHelp:
		m.overlay = OverlayNone
		return m, nil
	case OverlayDelete:
		return m.handleDeleteKey(msg)
	case OverlayBudget:
		if m.busy {
			return m, nil
		}
		if key.Matches(msg, m.keymap.CopyPrevious) {
			m.budgetDraft = budget.ApplySuggestion(m.budgetDraft)
			m.budgetForm.SetValue(0, m.budgetDraft.Value)
			return m, nil
		}
		var cmd tea.Cmd
		m.budgetForm, cmd = m.budgetForm.Update(msg)
		return m, cmd
	case OverlayEntry:
		if m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.entryForm, cmd = m.entryForm.Update(msg)
		return m, cmd
	}

	return m.handleDashboardKey(msg)
}

func (m Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		m.busy = true
		return m, m.deleteExpense(m.deleteTarget)
	case key.Matches(msg, m.keymap.Cancel):
		m.overlay = OverlayNone
	}
	return m, nil
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keymap
	switch {
	case key.Matches(msg, km.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, km.Help):
		m.overlay = OverlayHelp

	case key.Matches(msg, km.Prev):
		if m.nav.CanStep(m.sel) {
			return m, m.selectPeriod(m.nav.Prev(m.sel))
		}

	case key.Matches(msg, km.Next):
		if m.nav.CanStep(m.sel) {
			return m, m.selectPeriod(m.nav.Next(m.sel))
		}

	case key.Matches(msg, km.Year):
		return m, m.selectPeriod(m.nav.SelectYear(m.sel, m.nextYearOption()))

	case key.Matches(msg, km.Month):
		if m.sel.HasYear() {
			return m, m.selectPeriod(m.nav.SelectMonth(m.sel, m.nextMonthOption()))
		}

	case key.Matches(msg, km.SwitchFocus):
		m.setFocus(1 - m.focus)

	case key.Matches(msg, km.Up), key.Matches(msg, km.Down):
		if m.focus == focusCategories {
			if key.Matches(msg, km.Up) {
				m.categoryList.MoveUp()
			} else {
				m.categoryList.MoveDown()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.expenseTable, cmd = m.expenseTable.Update(msg)
		return m, cmd

	case key.Matches(msg, km.EditBudget):
		if m.focus == focusCategories {
			return m, m.openBudgetEditor()
		}

	case key.Matches(msg, km.Delete):
		if e, ok := m.expenseTable.Selected(); ok && m.focus == focusExpenses {
			m.deleteTarget = e
			m.overlay = OverlayDelete
		}

	case key.Matches(msg, km.Add):
		return m, m.openEntryForm()

	case key.Matches(msg, km.Refresh):
		return m, m.reloadAll()

	case key.Matches(msg, km.SignOut):
		m.busy = true
		return m, m.signOut()
	}
	return m, nil
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.categoryList.SetFocused(f == focusCategories)
	m.expenseTable.SetFocused(f == focusExpenses)
}

// nextYearOption cycles through the recorded years, then all years.
func (m Model) nextYearOption() int {
	options := append(slices.Clone(m.nav.Availability().YearOptions(m.now())), 0)
	i := slices.Index(options, m.sel.Year)
	return options[(i+1)%len(options)]
}

// nextMonthOption cycles through the whole year, then each month.
func (m Model) nextMonthOption() int {
	options := append([]int{0}, m.nav.Availability().MonthOptions(m.sel.Year)...)
	i := slices.Index(options, m.sel.Month)
	return options[(i+1)%len(options)]
}

// Overlays.

func (m *Model) openBudgetEditor() tea.Cmd {
	line, ok := m.categoryList.Selected()
	if !ok {
		return nil
	}
	if m.loadingBudgets {
		m.setStatus(statusInfo, MsgBudgetsLoading)
		return nil
	}
	category, ok := findCategory(m.categories, line.Name)
	if !ok {
		m.setStatus(statusError, MsgNoCategory)
		return nil
	}

	d, err := budget.Prepare(m.sel, category, m.budgetsForSelection())
	if err != nil {
		m.setStatus(statusError, errorText(err))
		return nil
	}

	m.clearStatus()
	m.budgetDraft = d
	m.budgetForm = m.newBudgetForm(d)
	m.overlay = OverlayBudget
	if d.NeedsLookup {
		return m.lookupSuggestion(d)
	}
	return nil
}

func (m *Model) openEntryForm() tea.Cmd {
	m.clearStatus()
	m.entryForm = m.newEntryForm()
	m.overlay = OverlayEntry
	return m.entryForm.FocusField(0)
}

func (m Model) handleSubmit(msg components.FormSubmittedMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.Form {
	case formSignIn:
		if m.screen != ScreenSignIn {
			return m, nil
		}
		m.busy = true
		m.clearStatus()
		return m, m.signIn(m.signInForm.Value(0), m.signInForm.Value(1))

	case formEntry:
		if m.overlay != OverlayEntry {
			return m, nil
		}
		d, err := m.entryDraft()
		if err != nil {
			m.setStatus(statusError, errorText(err))
			return m, nil
		}
		m.busy = true
		return m, m.saveExpense(d)

	case formBudget:
		if m.overlay != OverlayBudget {
			return m, nil
		}
		d := m.budgetDraft
		d.Value = m.budgetForm.Value(0)
		m.busy = true
		return m, m.saveBudget(d)
	}
	return m, nil
}

// entryDraft reads the entry form. The date field starts as today; a
// cleared date saves the expense without one.
func (m Model) entryDraft() (entry.Draft, error) {
	d := entry.Draft{
		Item:  m.entryForm.Value(entryItem),
		Price: m.entryForm.Value(entryPrice),
		Tag:   m.entryForm.Value(entryTag),
		Date:  strings.TrimSpace(m.entryForm.Value(entryDate)),
	}
	d.NoDate = d.Date == ""

	if ref := strings.TrimSpace(m.entryForm.Value(entryCategory)); ref != "" {
		category, err := entry.ResolveCategory(m.categories, ref)
		if err != nil {
			return d, err
		}
		d.CategoryID = category.ID
	}
	return d, nil
}

// Entry form fields.
const (
	entryItem = iota
	entryPrice
	entryCategory
	entryTag
	entryDate
)

func (m Model) newSignInForm() components.FormModel {
	f := components.NewForm(m.theme, formSignIn, "",
		components.Field{Label: "e-post", Placeholder: "deg@example.com"},
		components.Field{Label: "passord", Password: true},
	)
	f.SetWidth(m.formWidth())
	return f
}

func (m Model) newEntryForm() components.FormModel {
	f := components.NewForm(m.theme, formEntry, "Legg til en ny utgift",
		components.Field{Label: "Beskrivelse", Placeholder: "Dagligvarer"},
		components.Field{Label: "Pris", Placeholder: "0", CharLimit: 16},
		components.Field{Label: "Kategori", Placeholder: "Velg kategori"},
		components.Field{Label: "Tag", Placeholder: "valgfritt"},
		components.Field{Label: "Dato", Placeholder: "YYYY-MM-DD", Value: entry.NewDraft(m.now()).Date, CharLimit: 10},
	)
	f.SetWidth(m.formWidth())
	return f
}

func (m Model) newBudgetForm(d budget.Draft) components.FormModel {
	f := components.NewForm(m.theme, formBudget, "Budsjett for "+format.PeriodLabel(d.Period),
		components.Field{Label: d.Category.Name, Placeholder: "0", Value: d.Value, CharLimit: 16},
	)
	f.SetWidth(m.formWidth())
	return f
}

func findCategory(categories []model.Category, name string) (model.Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return model.Category{}, false
}
