package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/kroner/internal/entry"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>NOK
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-89.50
<FITID>2024011501
<NAME>VAREKJOP 14.01 REMA 1000 GRUNERLOKKA
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-1249.00
<FITID>2024012001
<NAME>Elkjop Storo
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>32000.00
<FITID>2024012501
<NAME>LONN JANUAR
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>NOK
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := NewParser().ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.expectedCount)
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	records, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, records, 3)

	rema := records[0]
	assert.Equal(t, "2024011501", rema.FITID)
	assert.Equal(t, "REMA 1000 GRUNERLOKKA", rema.Item)
	assert.InDelta(t, -89.50, rema.Amount, 0.001)
	assert.Equal(t, "1234567890", rema.AccountID)
	assert.True(t, rema.IsDebit())
	assert.Equal(t, 2024, rema.Date.Year())
	assert.Equal(t, time.January, rema.Date.Month())
	assert.Equal(t, 15, rema.Date.Day())

	assert.Equal(t, "Elkjop Storo", records[1].Item)
	assert.InDelta(t, -1249.0, records[1].Amount, 0.001)

	salary := records[2]
	assert.Equal(t, "LONN JANUAR", salary.Item)
	assert.False(t, salary.IsDebit())
	assert.Equal(t, "CREDIT", salary.Type)
}

func TestParseCreditCardTransactions(t *testing.T) {
	records, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "CC2024011001", records[0].FITID)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", records[0].Item)
	assert.InDelta(t, -45.99, records[0].Amount, 0.001)
	assert.Equal(t, "4111111111111111", records[0].AccountID)

	assert.Equal(t, "NETFLIX.COM", records[1].Item)
}

func TestPreprocessOFX(t *testing.T) {
	p := NewParser()
	out := p.preprocessOFX("  \n<SEVERITY>Info</SEVERITY>\n<BANKTRANLIST\n")
	assert.Contains(t, out, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, out, "<BANKTRANLIST>")
	assert.True(t, strings.HasPrefix(out, "<SEVERITY>"))
}

func TestExtractMerchantName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		memo     string
		expected string
	}{
		{
			name:     "remove POS prefix",
			input:    "POS PURCHASE STARBUCKS",
			expected: "STARBUCKS",
		},
		{
			name:     "remove card purchase prefix and date",
			input:    "VAREKJØP 14.01 KIWI MAJORSTUEN",
			expected: "KIWI MAJORSTUEN",
		},
		{
			name:     "keep clean name",
			input:    "NETFLIX.COM",
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			input:    "  Vinmonopolet  ",
			expected: "Vinmonopolet",
		},
		{
			name:     "generic name falls back to memo",
			input:    "DEBIT",
			memo:     "Ruter billett",
			expected: "Ruter billett",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
				Memo: ofxgo.String(tt.memo),
			}
			assert.Equal(t, tt.expected, parser.extractMerchantName(tx))
		})
	}
}

func TestPlanImport(t *testing.T) {
	jan := func(day int) time.Time { return time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC) }

	records := []Record{
		{FITID: "1", AccountID: "A", Date: jan(15), Item: "REMA 1000", Amount: -89.5},
		{FITID: "1", AccountID: "A", Date: jan(15), Item: "REMA 1000", Amount: -89.5},
		{FITID: "2", AccountID: "A", Date: jan(16), Item: "Kiwi", Amount: -120},
		{FITID: "3", AccountID: "A", Date: jan(25), Item: "Lonn", Amount: 32000},
		{FITID: "4", AccountID: "A", Item: "Ukjent", Amount: -10.4},
	}
	existing := []model.Expense{
		{ID: 9, Item: "kiwi", Price: 120, Date: "2024-01-16"},
	}

	plan := PlanImport(records, existing, 3, "bank")

	assert.Equal(t, 1, plan.Credits)
	assert.Equal(t, 2, plan.Duplicates)
	require.Len(t, plan.Drafts, 2)

	assert.Equal(t, entry.Draft{
		Item:       "REMA 1000",
		Price:      "90",
		CategoryID: 3,
		Tag:        "bank",
		Date:       "2024-01-15",
	}, plan.Drafts[0])

	assert.Equal(t, "10", plan.Drafts[1].Price)
	assert.True(t, plan.Drafts[1].NoDate)
	assert.Empty(t, plan.Drafts[1].Date)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, Signature("2024-01-15", " Kiwi ", 120), Signature("2024-01-15", "KIWI", 120))
	assert.NotEqual(t, Signature("2024-01-15", "Kiwi", 120), Signature("2024-01-15", "Kiwi", 121))
	assert.NotEqual(t, Signature("2024-01-15", "Kiwi", 120), Signature("2024-01-16", "Kiwi", 120))
}

func TestGetAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)

	accounts, err = parser.GetAccounts(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)
}
