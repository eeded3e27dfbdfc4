package sheets

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/kroner/internal/ledger"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestPrepareReportData(t *testing.T) {
	mat := model.Category{ID: 1, Name: "mat"}
	inntekter := model.Category{ID: 2, Name: "inntekter"}
	period := model.Period{Year: 2024, Month: 3}

	expenses := []model.Expense{
		{ID: 3, Item: "Lønn", Price: 30000, CategoryID: 2, Category: &inntekter, Date: "2024-03-25"},
		{ID: 2, Item: "Kaffe", Price: 40, CategoryID: 1, Category: &mat, Date: "2024-03-02", Tag: "kafé"},
		{ID: 1, Item: "Ukjent", Price: 10, Date: "2024-03-01"},
	}
	budgets := []model.BudgetEntry{{CategoryID: 1, Category: &mat, Year: 2024, Month: 3, Amount: 200}}

	report := ledger.Build(period, expenses, []model.Category{mat, inntekter}, budgets)
	values := prepareReportData(&report)

	assert.Equal(t, []any{"Kroner", "mars 2024"}, values[0])
	assert.Contains(t, values, []any{"Inntekter", int64(30000)})
	assert.Contains(t, values, []any{"Utgifter", int64(50)})
	assert.Contains(t, values, []any{"Netto", int64(29950)})
	assert.Contains(t, values, []any{"Antall", 3})
	assert.Contains(t, values, []any{"Budsjett", "Brukt 50 kr av 200 kr"})

	assert.Contains(t, values, []any{"inntekter", int64(30000), int64(0), ""})
	assert.Contains(t, values, []any{"mat", int64(40), int64(200), "20%"})
	assert.Contains(t, values, []any{ledger.Uncategorized, int64(10), int64(0), ""})

	last := values[len(values)-3:]
	assert.Equal(t, []any{"2024-03-25", "Lønn", int64(30000), "inntekter", ""}, last[0])
	assert.Equal(t, []any{"2024-03-02", "Kaffe", int64(40), "mat", "kafé"}, last[1])
	assert.Equal(t, []any{"2024-03-01", "Ukjent", int64(10), ledger.Uncategorized, ""}, last[2])
}

func TestPrepareReportData_Empty(t *testing.T) {
	report := ledger.Build(model.Period{}, nil, nil, nil)
	values := prepareReportData(&report)

	assert.Equal(t, []any{"Kroner", "Alle år"}, values[0])
	assert.Contains(t, values, []any{"Budsjett", "Ingen budsjett"})
	assert.Equal(t, []any{"Dato", "Beskrivelse", "Beløp", "Kategori", "Tag"}, values[len(values)-1])
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, saveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, loaded.Expiry.Equal(token.Expiry))

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
