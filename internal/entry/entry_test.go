package entry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		want    model.NewExpense
		wantMsg string
	}{
		{
			name:  "rounds price and trims fields",
			draft: Draft{Item: "  Kaffe ", Price: " 39.5 ", CategoryID: 2, Tag: "  ", Date: "2024-03-01"},
			want:  model.NewExpense{Item: "Kaffe", Price: 40, CategoryID: 2, Date: "2024-03-01"},
		},
		{
			name:  "negative price rounds away from zero",
			draft: Draft{Item: "Refusjon", Price: "-12.5", CategoryID: 2, Tag: "jobb"},
			want:  model.NewExpense{Item: "Refusjon", Price: -13, CategoryID: 2, Tag: "jobb", Date: "2024-03-05"},
		},
		{
			name:  "missing date defaults to today",
			draft: Draft{Item: "Buss", Price: "42", CategoryID: 4},
			want:  model.NewExpense{Item: "Buss", Price: 42, CategoryID: 4, Date: "2024-03-05"},
		},
		{
			name:  "cleared date stays absent",
			draft: Draft{Item: "Buss", Price: "42", CategoryID: 4, NoDate: true, Date: "2024-03-01"},
			want:  model.NewExpense{Item: "Buss", Price: 42, CategoryID: 4},
		},
		{name: "blank item", draft: Draft{Item: "   ", Price: "10", CategoryID: 1}, wantMsg: MsgItemAndCategoryRequired},
		{name: "no category", draft: Draft{Item: "Kaffe", Price: "10"}, wantMsg: MsgItemAndCategoryRequired},
		{name: "unparseable price", draft: Draft{Item: "Kaffe", Price: "abc", CategoryID: 1}, wantMsg: MsgInvalidPrice},
		{name: "empty price", draft: Draft{Item: "Kaffe", Price: "", CategoryID: 1}, wantMsg: MsgInvalidPrice},
		{name: "infinite price", draft: Draft{Item: "Kaffe", Price: "Inf", CategoryID: 1}, wantMsg: MsgInvalidPrice},
		{name: "price beyond int64", draft: Draft{Item: "Kaffe", Price: "1e30", CategoryID: 1}, wantMsg: MsgInvalidPrice},
		{name: "negative price beyond int64", draft: Draft{Item: "Kaffe", Price: "-1e19", CategoryID: 1}, wantMsg: MsgInvalidPrice},
		{name: "bad date", draft: Draft{Item: "Kaffe", Price: "10", CategoryID: 1, Date: "05.03.24"}, wantMsg: MsgInvalidDate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Validate(tc.draft, today)
			if tc.wantMsg != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				assert.Equal(t, tc.wantMsg, common.UserMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewDraft(t *testing.T) {
	assert.Equal(t, "2024-03-05", NewDraft(today).Date)
}

type fakeInserter struct {
	err      error
	inserted []model.NewExpense
}

func (f *fakeInserter) InsertExpense(_ context.Context, owner string, input model.NewExpense) (*model.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inserted = append(f.inserted, input)
	return &model.Expense{ID: int64(len(f.inserted)), Item: input.Item, Price: input.Price, Owner: owner, Date: input.Date}, nil
}

func TestWorkflow_Submit(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return today }

	t.Run("inserts valid draft", func(t *testing.T) {
		store := &fakeInserter{}
		e, err := NewWorkflow(store, clock).Submit(ctx, "u1", Draft{Item: "Kaffe", Price: "39", CategoryID: 2})
		require.NoError(t, err)
		assert.Equal(t, "u1", e.Owner)
		assert.Equal(t, "2024-03-05", e.Date)
		assert.Len(t, store.inserted, 1)
	})

	t.Run("invalid draft writes nothing", func(t *testing.T) {
		store := &fakeInserter{}
		_, err := NewWorkflow(store, clock).Submit(ctx, "u1", Draft{Item: "Kaffe", Price: "x", CategoryID: 2})
		assert.Equal(t, MsgInvalidPrice, common.UserMessage(err))
		assert.Empty(t, store.inserted)
	})

	t.Run("requires owner", func(t *testing.T) {
		_, err := NewWorkflow(&fakeInserter{}, clock).Submit(ctx, "", Draft{Item: "Kaffe", Price: "1", CategoryID: 2})
		assert.ErrorIs(t, err, common.ErrNoSession)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewWorkflow(&fakeInserter{err: boom}, clock).Submit(ctx, "u1", Draft{Item: "Kaffe", Price: "1", CategoryID: 2})
		assert.ErrorIs(t, err, boom)
	})
}

func TestResolveCategory(t *testing.T) {
	categories := []model.Category{{ID: 1, Name: "Inntekter"}, {ID: 2, Name: "Mat"}}

	c, err := ResolveCategory(categories, "2")
	require.NoError(t, err)
	assert.Equal(t, "Mat", c.Name)

	c, err = ResolveCategory(categories, " inntekter ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	_, err = ResolveCategory(categories, "Reise")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, `Unknown category "Reise".`, common.UserMessage(err))
}
