package rules_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/rules"
)

func TestFlatten_LowercasesAndJoins(t *testing.T) {
	table := rules.Flatten(map[string]any{
		"Allocation": map[string]any{
			"Above55": map[string]any{
				"OA": map[string]any{
					"61to65": map[string]any{"Amount": 420.5},
				},
			},
		},
		"Tags": []any{"a", map[string]any{"Name": "b"}},
	})

	assert.Equal(t, 420.5, table["allocation.above55.oa.61to65.amount"])
	assert.Equal(t, "a", table["tags[0]"])
	assert.Equal(t, "b", table["tags[1].name"])
	assert.Equal(t, []string{"allocation.above55.oa.61to65.amount", "tags[0]", "tags[1].name"}, table.Keys())
}

func TestLoad_JSONDocument(t *testing.T) {
	table, err := rules.Load("testdata/minimal.json")
	require.NoError(t, err)

	d, ok, err := table.Decimal("retirementsums.brs.amount")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(106500)))

	start, ok, err := table.Date("startdate")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), start)

	s, ok := table.Text("payouttype")
	assert.True(t, ok)
	assert.Equal(t, "brs", s)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := rules.Load("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestParse_YAMLDates(t *testing.T) {
	table, err := rules.Parse([]byte("startdate: 2025-01-01\nquoted: \"2025-02-03\"\n"))
	require.NoError(t, err)

	d, ok, err := table.Date("startdate")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), d)

	d, _, err = table.Date("quoted")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), d)
}

func TestParse_InvalidDocument(t *testing.T) {
	_, err := rules.Parse([]byte("startdate: [unterminated"))
	assert.Error(t, err)
}

func TestTable_Getters(t *testing.T) {
	table := rules.Table{
		"int":     42,
		"float":   2.5,
		"text":    "1,234.50",
		"bad":     "abc",
		"yes":     "Yes",
		"boolean": true,
		"nil":     nil,
	}

	d, ok, err := table.Decimal("text")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1234.5", d.String())

	_, ok, err = table.Decimal("bad")
	assert.True(t, ok)
	assert.ErrorIs(t, err, rules.ErrMalformedValue)

	_, ok, err = table.Decimal("nil")
	require.NoError(t, err)
	assert.False(t, ok)

	n, ok, err := table.Int("int")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	b, ok, err := table.Bool("yes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, b)

	b, _, err = table.Bool("boolean")
	require.NoError(t, err)
	assert.True(t, b)

	_, _, err = table.Bool("text")
	assert.ErrorIs(t, err, rules.ErrMalformedValue)

	assert.Equal(t, "2.5", table.Format("float"))
}

func TestResolve_TypedRuleBook(t *testing.T) {
	table, err := rules.Load("../../configs/cpf_config.yaml")
	require.NoError(t, err)

	res, err := rules.Resolve(table, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, res.Missing)

	book := res.Book
	assert.Equal(t, time.Date(1974, 7, 6, 0, 0, 0, 0, time.UTC), book.BirthDate)
	assert.True(t, book.OwnsProperty)
	assert.False(t, book.PledgesProperty)
	assert.Equal(t, "frs", book.PayoutType)
	assert.Equal(t, 65, book.PayoutAge)

	assert.Equal(t, "98500", book.Opening.Ordinary.String())
	assert.Equal(t, "120000", book.Opening.Loan.String())
	assert.Equal(t, "1380", book.Below55.Ordinary.String())
	assert.Equal(t, "420", book.Allocation55(domain.Band61to65).Ordinary.String())
	assert.Equal(t, "60", book.Allocation55(domain.BandAbove70).Retirement.String())

	assert.Equal(t, "0.025", book.Interest.OrdinaryBelow55.String())
	assert.Equal(t, "0.04", book.Interest.Retirement.String())
	assert.Equal(t, "0.02", book.Extra.Above55FirstRate.String())

	assert.Equal(t, "213000", book.RetirementTarget().String())
	assert.Equal(t, "1600", book.RetirementSum("FRS").Payout.String())
	assert.Equal(t, "1271.43", book.Loan.Year4Beyond.String())
}

func TestResolve_MissingKeysDefaultAndWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	table := rules.Table{
		"startdate": "2020-01-01",
		"enddate":   "2020-03-01",
		"birthdate": "1970-07-06",
	}

	res, err := rules.Resolve(table, logger)
	require.NoError(t, err)

	assert.Contains(t, res.Missing, "allocation.below55.oa.amount")
	assert.Contains(t, res.Missing, "cpfpayoutage")
	assert.Equal(t, rules.DefaultPayoutAge, res.Book.PayoutAge)
	assert.Equal(t, "20000", res.Book.Extra.OrdinaryCap.String())
	assert.Equal(t, "60000", res.Book.Extra.Below55Threshold.String())
	assert.True(t, res.Book.Below55.Ordinary.IsZero())
	assert.Contains(t, buf.String(), "rule table key missing")
}

func TestResolve_MissingDateIsFatal(t *testing.T) {
	table := rules.Table{
		"startdate": "2020-01-01",
		"birthdate": "1970-07-06",
	}

	_, err := rules.Resolve(table, zerolog.Nop())
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestResolve_MalformedValueIsFatal(t *testing.T) {
	table := rules.Table{
		"startdate":        "2020-01-01",
		"enddate":          "2020-03-01",
		"birthdate":        "1970-07-06",
		"interestrates.sa": "four",
	}

	_, err := rules.Resolve(table, zerolog.Nop())
	assert.ErrorIs(t, err, rules.ErrMalformedValue)
}

func TestResolve_PledgedPropertyHalvesTarget(t *testing.T) {
	table := rules.Table{
		"startdate":                 "2020-01-01",
		"enddate":                   "2020-03-01",
		"birthdate":                 "1970-07-06",
		"ownhdb":                    "yes",
		"pledgeyourhdbat55":         "yes",
		"payouttype":                "ers",
		"retirementsums.frs.amount": 213000,
		"retirementsums.ers.amount": 426000,
	}

	res, err := rules.Resolve(table, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "106500", res.Book.RetirementTarget().String())
}
