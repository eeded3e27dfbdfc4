// Package tui implements the interactive dashboard.
package tui

import (
	"context"
	"time"

	"github.com/Veraticus/kroner/internal/budget"
	"github.com/Veraticus/kroner/internal/ledger"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/period"
	"github.com/Veraticus/kroner/internal/service"
	"github.com/Veraticus/kroner/internal/tui/components"
	"github.com/Veraticus/kroner/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
)

// Screen is the top level view.
type Screen int

const (
	ScreenConfigError Screen = iota
	ScreenLoading
	ScreenSignIn
	ScreenDashboard
)

// Overlay is a modal drawn over the dashboard.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayBudget
	OverlayDelete
	OverlayEntry
	OverlayHelp
)

type focusArea int

const (
	focusCategories focusArea = iota
	focusExpenses
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// Form names.
const (
	formSignIn = "signin"
	formEntry  = "entry"
	formBudget = "budget"
)

// Model holds the dashboard state. Update is the only place it changes;
// store calls run in commands and report back through messages.
type Model struct {
	ctx          context.Context
	now          func() time.Time
	gateway      service.Gateway
	identity     Identity
	session      *model.Session
	theme        themes.Theme
	keymap       KeyMap
	help         help.Model
	config       Config
	nav          period.Navigator
	sel          model.Period
	report       ledger.Report
	categories   []model.Category
	expenses     []model.Expense
	budgets      []model.BudgetEntry
	budgetDraft  budget.Draft
	deleteTarget model.Expense
	signInForm   components.FormModel
	entryForm    components.FormModel
	budgetForm   components.FormModel
	categoryList components.CategoryListModel
	expenseTable components.ExpenseTableModel
	status       string
	gen          generations
	budgetYear   int
	screen       Screen
	overlay      Overlay
	focus        focusArea
	statusKind   statusKind
	width        int
	height       int

	normalized        bool
	loadingExpenses   bool
	loadingBudgets    bool
	loadingSuggestion bool
	busy              bool
	quitting          bool
}

// New creates the dashboard model.
func New(ctx context.Context, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(ctx, cfg)
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		ctx:          ctx,
		config:       cfg,
		now:          cfg.Now,
		gateway:      cfg.Gateway,
		identity:     cfg.Identity,
		theme:        cfg.Theme,
		keymap:       DefaultKeyMap(),
		help:         help.New(),
		categoryList: components.NewCategoryList(cfg.Theme),
		expenseTable: components.NewExpenseTable(cfg.Theme),
		width:        cfg.Width,
		height:       cfg.Height,
		screen:       ScreenLoading,
	}
	m.nav = period.NewNavigator(period.Availability{}, m.now)
	m.sel = m.nav.Initial()
	m.signInForm = m.newSignInForm()
	m.categoryList.SetFocused(true)

	if len(cfg.Missing) > 0 {
		m.screen = ScreenConfigError
	}
	m.resize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.screen == ScreenConfigError {
		return nil
	}
	return m.loadSession()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.FormSubmittedMsg:
		return m.handleSubmit(msg)

	case components.FormCancelledMsg:
		if msg.Form != formSignIn {
			m.closeOverlay()
		}
		return m, nil

	case sessionLoadedMsg:
		return m.handleSessionLoaded(msg)
	case signedInMsg:
		return m.handleSignedIn(msg)
	case signedOutMsg:
		return m.handleSignedOut(msg)
	case SessionChangedMsg:
		return m.handleSessionChanged(msg)
	case ChangeEventMsg:
		return m.handleChangeEvent(msg)

	case metaLoadedMsg:
		return m.handleMetaLoaded(msg)
	case categoriesLoadedMsg:
		return m.handleCategoriesLoaded(msg)
	case expensesLoadedMsg:
		return m.handleExpensesLoaded(msg)
	case budgetsLoadedMsg:
		return m.handleBudgetsLoaded(msg)
	case suggestionLoadedMsg:
		return m.handleSuggestionLoaded(msg)

	case expenseSavedMsg:
		return m.handleExpenseSaved(msg)
	case expenseDeletedMsg:
		return m.handleExpenseDeleted(msg)
	case budgetSavedMsg:
		return m.handleBudgetSaved(msg)
	}

	// Cursor blinks and other input plumbing go to the active form.
	var cmd tea.Cmd
	m, cmd = m.updateActiveForm(msg)
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case ScreenConfigError:
		return m.renderConfigError()
	case ScreenLoading:
		return m.renderLoading()
	case ScreenSignIn:
		return m.renderSignIn()
	default:
		return m.renderDashboard()
	}
}

// Screen returns the active screen.
func (m Model) Screen() Screen { return m.screen }

// Overlay returns the active overlay.
func (m Model) Overlay() Overlay { return m.overlay }

// Period returns the selected period.
func (m Model) Period() model.Period { return m.sel }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

func (m Model) owner() string {
	if m.session == nil {
		return ""
	}
	return m.session.UserID
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusKind = statusInfo
}

// budgetsForSelection returns the loaded budgets when they belong to the
// selected year.
func (m Model) budgetsForSelection() []model.BudgetEntry {
	if !m.sel.HasYear() || m.budgetYear != m.sel.Year {
		return nil
	}
	return m.budgets
}

// rebuild recomputes the report and pushes it into the components.
func (m *Model) rebuild() {
	m.report = ledger.Build(m.sel, m.expenses, m.categories, m.budgetsForSelection())
	m.categoryList.SetLines(m.report.Lines, m.sel.HasYear())
	m.expenseTable.SetExpenses(m.expenses)
}

// resize lays the dashboard panels out for the current terminal size.
func (m *Model) resize() {
	bodyHeight := max(m.height-16, 6)
	left := max(m.width*2/5, 30)
	right := max(m.width-left-6, 40)
	m.categoryList.Resize(left, bodyHeight)
	m.expenseTable.Resize(right, bodyHeight-2)
	m.help.Width = m.width
	m.signInForm.SetWidth(m.formWidth())
	m.entryForm.SetWidth(m.formWidth())
	m.budgetForm.SetWidth(m.formWidth())
}

func (m Model) formWidth() int {
	return min(max(m.width/2, 30), 60)
}

func (m *Model) closeOverlay() {
	if m.overlay == OverlayBudget {
		// Drop a lookup still in flight for the closed editor.
		m.gen.suggestion++
		m.loadingSuggestion = false
	}
	m.overlay = OverlayNone
	m.busy = false
}

// resetData clears everything owned by the previous session.
func (m *Model) resetData() {
	m.categories = nil
	m.expenses = nil
	m.budgets = nil
	m.budgetYear = 0
	m.overlay = OverlayNone
	m.normalized = false
	m.nav = period.NewNavigator(period.Availability{}, m.now)
	m.sel = m.nav.Initial()
	// Bump every generation so results for the old owner are dropped.
	m.gen.meta++
	m.gen.categories++
	m.gen.expenses++
	m.gen.budgets++
	m.gen.suggestion++
	m.rebuild()
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == ScreenSignIn:
		m.signInForm, cmd = m.signInForm.Update(msg)
	case m.overlay == OverlayEntry:
		m.entryForm, cmd = m.entryForm.Update(msg)
	case m.overlay == OverlayBudget:
		m.budgetForm, cmd = m.budgetForm.Update(msg)
	}
	return m, cmd
}
