package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	entries map[[3]int64]model.BudgetEntry
	findErr error
	finds   int
	nextID  int64
}

func newFakeStore(entries ...model.BudgetEntry) *fakeStore {
	s := &fakeStore{entries: make(map[[3]int64]model.BudgetEntry)}
	for _, e := range entries {
		s.nextID++
		e.ID = s.nextID
		s.entries[key(e.CategoryID, e.Year, e.Month)] = e
	}
	return s
}

func key(categoryID int64, year, month int) [3]int64 {
	return [3]int64{categoryID, int64(year), int64(month)}
}

func (s *fakeStore) FindBudget(_ context.Context, _ string, categoryID int64, year, month int) (*model.BudgetEntry, error) {
	s.finds++
	if s.findErr != nil {
		return nil, s.findErr
	}
	e, ok := s.entries[key(categoryID, year, month)]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &e, nil
}

func (s *fakeStore) UpsertBudget(_ context.Context, owner string, in model.BudgetInput) (*model.BudgetEntry, error) {
	k := key(in.CategoryID, in.Year, in.Month)
	e, ok := s.entries[k]
	if !ok {
		s.nextID++
		e = model.BudgetEntry{ID: s.nextID, CategoryID: in.CategoryID, Year: in.Year, Month: in.Month, Owner: owner}
	}
	e.Amount = in.Amount
	s.entries[k] = e
	return &e, nil
}

var mat = model.Category{ID: 2, Name: "Mat"}

func TestPrepare(t *testing.T) {
	loaded := []model.BudgetEntry{
		{ID: 1, CategoryID: 2, Year: 2024, Month: 2, Amount: 4000},
		{ID: 2, CategoryID: 2, Year: 2024, Month: 3, Amount: 4500},
	}

	t.Run("requires year and month", func(t *testing.T) {
		for _, p := range []model.Period{{}, {Year: 2024}} {
			_, err := Prepare(p, mat, loaded)
			assert.Equal(t, MsgSelectPeriod, common.UserMessage(err))
		}
	})

	t.Run("existing entry prefills value", func(t *testing.T) {
		d, err := Prepare(model.Period{Year: 2024, Month: 3}, mat, loaded)
		require.NoError(t, err)
		assert.True(t, d.HasValue)
		assert.Equal(t, "4500", d.Value)
		assert.Nil(t, d.Suggestion)
		assert.Empty(t, d.PreviousLabel)
	})

	t.Run("previous month in loaded year", func(t *testing.T) {
		d, err := Prepare(model.Period{Year: 2024, Month: 3}, model.Category{ID: 2, Name: "Mat"}, loaded[:1])
		require.NoError(t, err)
		assert.False(t, d.HasValue)
		assert.Empty(t, d.Value)
		require.NotNil(t, d.Suggestion)
		assert.Equal(t, int64(4000), d.Suggestion.Amount)
		assert.Equal(t, "februar 2024", d.Suggestion.Label)
		assert.False(t, d.NeedsLookup)
	})

	t.Run("previous month missing in same year needs no lookup", func(t *testing.T) {
		d, err := Prepare(model.Period{Year: 2024, Month: 5}, mat, loaded)
		require.NoError(t, err)
		assert.Nil(t, d.Suggestion)
		assert.False(t, d.NeedsLookup)
		assert.Equal(t, "april 2024", d.PreviousLabel)
	})

	t.Run("january looks back into december", func(t *testing.T) {
		d, err := Prepare(model.Period{Year: 2024, Month: 1}, mat, loaded)
		require.NoError(t, err)
		assert.True(t, d.NeedsLookup)
		assert.Equal(t, model.Period{Year: 2023, Month: 12}, d.Previous)
		assert.Equal(t, "desember 2023", d.PreviousLabel)
	})
}

func TestEditor_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches suggestion from previous year", func(t *testing.T) {
		store := newFakeStore(model.BudgetEntry{CategoryID: 2, Year: 2023, Month: 12, Amount: 3900})
		d, err := NewEditor(store, "u1").Open(ctx, model.Period{Year: 2024, Month: 1}, mat, nil)
		require.NoError(t, err)
		require.NotNil(t, d.Suggestion)
		assert.Equal(t, int64(3900), d.Suggestion.Amount)
		assert.Equal(t, "desember 2023", d.Suggestion.Label)
		assert.Equal(t, 1, store.finds)
	})

	t.Run("missing previous entry gives no suggestion", func(t *testing.T) {
		store := newFakeStore()
		d, err := NewEditor(store, "u1").Open(ctx, model.Period{Year: 2024, Month: 1}, mat, nil)
		require.NoError(t, err)
		assert.Nil(t, d.Suggestion)
	})

	t.Run("same year never hits the store", func(t *testing.T) {
		store := newFakeStore(model.BudgetEntry{CategoryID: 2, Year: 2024, Month: 4, Amount: 1})
		_, err := NewEditor(store, "u1").Open(ctx, model.Period{Year: 2024, Month: 5}, mat, nil)
		require.NoError(t, err)
		assert.Zero(t, store.finds)
	})

	t.Run("lookup failure is reported", func(t *testing.T) {
		store := newFakeStore()
		store.findErr = errors.New("offline")
		_, err := NewEditor(store, "u1").Open(ctx, model.Period{Year: 2024, Month: 1}, mat, nil)
		assert.Error(t, err)
	})
}

func TestApplySuggestion(t *testing.T) {
	d := ApplySuggestion(Draft{Value: "1", Suggestion: &Suggestion{Amount: 3900}})
	assert.Equal(t, "3900", d.Value)

	d = ApplySuggestion(Draft{Value: "1"})
	assert.Equal(t, "1", d.Value)
}

func TestEditor_Save(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	editor := NewEditor(store, "u1")
	period := model.Period{Year: 2024, Month: 3}

	first, err := editor.Save(ctx, Draft{Category: mat, Period: period, Value: "4999.6"})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), first.Amount)

	second, err := editor.Save(ctx, Draft{Category: mat, Period: period, Value: "5200"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(5200), second.Amount)
	assert.Len(t, store.entries, 1)

	zero, err := editor.Save(ctx, Draft{Category: mat, Period: period, Value: "mye"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), zero.Amount)

	_, err = editor.Save(ctx, Draft{Category: mat, Period: model.Period{Year: 2024}, Value: "1"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewEditor(store, "").Save(ctx, Draft{Category: mat, Period: period, Value: "1"})
	assert.ErrorIs(t, err, common.ErrNoSession)
}
