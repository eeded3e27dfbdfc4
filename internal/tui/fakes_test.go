package tui

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

var (
	catIncome    = model.Category{ID: 1, Name: "Inntekter"}
	catFood      = model.Category{ID: 2, Name: "Mat"}
	catTransport = model.Category{ID: 3, Name: "Transport"}
)

type fakeGateway struct {
	insertErr      error
	deleteErr      error
	upsertErr      error
	categories     []model.Category
	expenses       []model.Expense
	budgets        []model.BudgetEntry
	inserted       []model.NewExpense
	upserts        []model.BudgetInput
	deleted        []int64
	expenseQueries []model.Period
	budgetQueries  []int
	dateQueries    int
	categoryLoads  int
	nextID         int64
	mu             sync.Mutex
	block          bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		nextID:     100,
		categories: []model.Category{catIncome, catFood, catTransport},
		expenses: []model.Expense{
			{ID: 5, Item: "Lønn", Price: 30000, CategoryID: 1, Category: &catIncome, Date: "2024-03-01", Owner: "u1"},
			{ID: 4, Item: "Rema", Price: 450, CategoryID: 2, Category: &catFood, Date: "2024-03-02", Owner: "u1"},
			{ID: 3, Item: "Ruter", Price: 800, CategoryID: 3, Category: &catTransport, Date: "2024-02-10", Owner: "u1"},
			{ID: 2, Item: "Buss", Price: 40, CategoryID: 3, Category: &catTransport, Date: "2024-01-05", Owner: "u1"},
			{ID: 1, Item: "Julemat", Price: 1200, CategoryID: 2, Category: &catFood, Date: "2023-12-24", Owner: "u1"},
			{ID: 9, Item: "Fremmed", Price: 5, CategoryID: 2, Category: &catFood, Date: "2024-03-03", Owner: "u2"},
		},
		budgets: []model.BudgetEntry{
			{ID: 1, CategoryID: 2, Category: &catFood, Year: 2024, Month: 2, Amount: 3000, Owner: "u1"},
			{ID: 2, CategoryID: 2, Category: &catFood, Year: 2024, Month: 3, Amount: 4000, Owner: "u1"},
			{ID: 3, CategoryID: 3, Category: &catTransport, Year: 2023, Month: 12, Amount: 900, Owner: "u1"},
		},
	}
}

func (f *fakeGateway) wait(ctx context.Context) error {
	if !f.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeGateway) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryLoads++
	return append([]model.Category(nil), f.categories...), nil
}

func (f *fakeGateway) CreateCategory(_ context.Context, name string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := model.Category{ID: f.nextID, Name: name}
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeGateway) ListExpenses(ctx context.Context, owner string, p model.Period) ([]model.Expense, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expenseQueries = append(f.expenseQueries, p)

	start, end, bounded := p.Range()
	var out []model.Expense
	for _, e := range f.expenses {
		if e.Owner != owner {
			continue
		}
		if bounded && (e.Date == "" || e.Date < start || e.Date > end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeGateway) ListExpenseDates(ctx context.Context, owner string) ([]string, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dateQueries++
	var dates []string
	for _, e := range f.expenses {
		if e.Owner == owner && e.Date != "" {
			dates = append(dates, e.Date)
		}
	}
	return dates, nil
}

func (f *fakeGateway) InsertExpense(_ context.Context, owner string, input model.NewExpense) (*model.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, input)
	f.nextID++
	e := model.Expense{
		ID: f.nextID, Item: input.Item, Price: input.Price, CategoryID: input.CategoryID,
		Tag: input.Tag, Date: input.Date, Owner: owner,
	}
	f.expenses = append([]model.Expense{e}, f.expenses...)
	return &e, nil
}

func (f *fakeGateway) DeleteExpense(_ context.Context, id int64, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, e := range f.expenses {
		if e.ID == id && e.Owner == owner {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeGateway) ListBudgets(ctx context.Context, owner string, year int) ([]model.BudgetEntry, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgetQueries = append(f.budgetQueries, year)
	var out []model.BudgetEntry
	for _, b := range f.budgets {
		if b.Owner == owner && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeGateway) FindBudget(_ context.Context, owner string, categoryID int64, year, month int) (*model.BudgetEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.budgets {
		if b.Owner == owner && b.CategoryID == categoryID && b.Year == year && b.Month == month {
			return &b, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeGateway) UpsertBudget(_ context.Context, owner string, input model.BudgetInput) (*model.BudgetEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts = append(f.upserts, input)
	for i, b := range f.budgets {
		if b.Owner == owner && b.CategoryID == input.CategoryID && b.Year == input.Year && b.Month == input.Month {
			f.budgets[i].Amount = input.Amount
			return &f.budgets[i], nil
		}
	}
	f.nextID++
	b := model.BudgetEntry{
		ID: f.nextID, CategoryID: input.CategoryID, Year: input.Year, Month: input.Month,
		Amount: input.Amount, Owner: owner,
	}
	f.budgets = append(f.budgets, b)
	return &b, nil
}

func (f *fakeGateway) Close() error { return nil }

type fakeIdentity struct {
	session   *model.Session
	signInErr error
	signIns   int
	signOuts  int
	mu        sync.Mutex
}

func (f *fakeIdentity) Session(context.Context) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, _ string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns++
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.session = &model.Session{UserID: "u1", Email: email, AccessToken: "token"}
	return f.session, nil
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.session = nil
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// collect runs cmd and returns the messages it produced, flattening
// batches. Commands that do not return promptly, such as cursor blinks,
// are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// settle feeds every message cmd produces back into m until nothing is
// left to run.
func settle(m Model, cmd tea.Cmd) Model {
	queue := collect(cmd)
	for i := 0; len(queue) > 0 && i < 200; i++ {
		msg := queue[0]
		queue = queue[1:]
		var next tea.Cmd
		m, next = update(m, msg)
		queue = append(queue, collect(next)...)
	}
	return m
}
