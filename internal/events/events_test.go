package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	err    error
	events []model.ChangeEvent
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, e model.ChangeEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

// stubGateway fails every write when err is set.
type stubGateway struct {
	service.Gateway
	err    error
	closed bool
}

func (g *stubGateway) InsertExpense(_ context.Context, owner string, in model.NewExpense) (*model.Expense, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &model.Expense{ID: 10, Item: in.Item, Owner: owner, Date: in.Date}, nil
}

func (g *stubGateway) DeleteExpense(context.Context, int64, string) error { return g.err }

func (g *stubGateway) UpsertBudget(_ context.Context, owner string, in model.BudgetInput) (*model.BudgetEntry, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &model.BudgetEntry{ID: 3, Owner: owner, CategoryID: in.CategoryID, Year: in.Year, Month: in.Month, Amount: in.Amount}, nil
}

func (g *stubGateway) CreateCategory(_ context.Context, name string) (*model.Category, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &model.Category{ID: 4, Name: name}, nil
}

func (g *stubGateway) Close() error {
	g.closed = true
	return nil
}

func TestPublishingGateway(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	newGateway := func(inner *stubGateway, pub *recordingPublisher) *PublishingGateway {
		g := NewPublishingGateway(inner, pub)
		g.now = func() time.Time { return at }
		return g
	}

	t.Run("publishes after writes", func(t *testing.T) {
		pub := &recordingPublisher{}
		g := newGateway(&stubGateway{}, pub)

		_, err := g.InsertExpense(ctx, "u1", model.NewExpense{Item: "Kaffe", Date: "2024-03-02"})
		require.NoError(t, err)
		require.NoError(t, g.DeleteExpense(ctx, 10, "u1"))
		_, err = g.UpsertBudget(ctx, "u1", model.BudgetInput{CategoryID: 2, Year: 2024, Month: 3, Amount: 100})
		require.NoError(t, err)
		_, err = g.CreateCategory(ctx, "Reise")
		require.NoError(t, err)

		assert.Equal(t, []model.ChangeEvent{
			{At: at, Kind: model.ChangeExpenseCreated, Owner: "u1", ID: 10, Year: 2024, Month: 3},
			{At: at, Kind: model.ChangeExpenseDeleted, Owner: "u1", ID: 10},
			{At: at, Kind: model.ChangeBudgetSaved, Owner: "u1", ID: 3, Year: 2024, Month: 3},
			{At: at, Kind: model.ChangeCategoryAdded, ID: 4},
		}, pub.events)
	})

	t.Run("failed writes publish nothing", func(t *testing.T) {
		pub := &recordingPublisher{}
		boom := errors.New("boom")
		g := newGateway(&stubGateway{err: boom}, pub)

		_, err := g.InsertExpense(ctx, "u1", model.NewExpense{Item: "Kaffe"})
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, g.DeleteExpense(ctx, 1, "u1"), boom)
		_, err = g.UpsertBudget(ctx, "u1", model.BudgetInput{})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, pub.events)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker down")}
		g := newGateway(&stubGateway{}, pub)

		e, err := g.InsertExpense(ctx, "u1", model.NewExpense{Item: "Kaffe"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), e.ID)
		require.Len(t, pub.events, 1)
		assert.Zero(t, pub.events[0].Year)
	})

	t.Run("close closes both", func(t *testing.T) {
		pub := &recordingPublisher{}
		inner := &stubGateway{}
		require.NoError(t, newGateway(inner, pub).Close())
		assert.True(t, pub.closed)
		assert.True(t, inner.closed)
	})
}

func TestEncodeDecode(t *testing.T) {
	event := model.ChangeEvent{
		At:    time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Kind:  model.ChangeBudgetSaved,
		Owner: "u1",
		ID:    3,
		Year:  2024,
		Month: 3,
	}
	body, err := Encode(event)
	require.NoError(t, err)

	decoded, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)

	_, err = Decode([]byte(`{"id":1}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`nope`))
	assert.Error(t, err)
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"own event", `{"kind":"expense.created","owner":"u1","id":1}`, true},
		{"shared category event", `{"kind":"category.created","id":4}`, true},
		{"other owner", `{"kind":"expense.created","owner":"u2","id":1}`, false},
		{"malformed", `{`, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []model.ChangeEvent
			ran := dispatch(context.Background(), []byte(tc.body), "u1", func(e model.ChangeEvent) {
				got = append(got, e)
			})
			assert.Equal(t, tc.want, ran)
			assert.Equal(t, tc.want, len(got) == 1)
		})
	}
}

func TestNoop(t *testing.T) {
	var p service.EventPublisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), model.ChangeEvent{Kind: model.ChangeBudgetSaved}))
	assert.NoError(t, p.Close())
}
