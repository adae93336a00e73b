package split

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/billing/share"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleLine() ServiceLine {
	dep := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	return ServiceLine{
		ServiceID:       7,
		Description:     "Aéreo EZE-MAD",
		Currency:        "ARS",
		Departure:       &dep,
		Return:          &ret,
		SalePrice:       d("250.00"),
		Taxable21:       d("150.00"),
		Commission21:    d("30.00"),
		Tax21:           d("52.50"),
		Taxable105:      d("10.00"),
		Commission105:   d("2.00"),
		Tax105:          d("1.26"),
		CardInterest:    d("3.00"),
		CardInterestTax: d("0.63"),
		Exempt:          d("0.50"),
		NonComputable:   d("0.11"),
	}
}

func TestServiceLinesPreservesPerFieldTotals(t *testing.T) {
	line := sampleLine()
	shares := share.Normalize([]float64{1, 1})

	perPayer := ServiceLines([]ServiceLine{line}, shares)
	require.Len(t, perPayer, 2)
	require.Len(t, perPayer[0], 1)
	require.Len(t, perPayer[1], 1)

	a, b := perPayer[0][0], perPayer[1][0]
	assert.True(t, d("250.00").Equal(a.SalePrice.Add(b.SalePrice)))
	assert.True(t, d("52.50").Equal(a.Tax21.Add(b.Tax21)))
	assert.True(t, d("125.00").Equal(a.SalePrice))
	assert.True(t, d("26.25").Equal(a.Tax21))

	// non-numeric fields travel unchanged
	assert.Equal(t, line.Description, a.Description)
	assert.Equal(t, line.Currency, b.Currency)
	assert.Equal(t, line.ServiceID, b.ServiceID)
	assert.Equal(t, line.Departure, a.Departure)
}

func TestServiceLinesThreePayersEveryFieldReconstructs(t *testing.T) {
	line := sampleLine()
	shares := share.Normalize([]float64{1, 1, 1})

	perPayer := ServiceLines([]ServiceLine{line}, shares)
	require.Len(t, perPayer, 3)

	orig := line.amounts()
	for fi := range orig {
		total := decimal.Zero
		for p := range perPayer {
			total = total.Add(*perPayer[p][0].amounts()[fi])
		}
		assert.True(t, orig[fi].Round(2).Equal(total),
			"field %d: want %s got %s", fi, orig[fi], total)
	}
}

func TestServiceLinesMultipleLines(t *testing.T) {
	lines := []ServiceLine{sampleLine(), sampleLine()}
	lines[1].Currency = "USD"
	lines[1].SalePrice = d("99.99")
	shares := share.Normalize([]float64{3, 1})

	perPayer := ServiceLines(lines, shares)
	require.Len(t, perPayer, 2)
	require.Len(t, perPayer[0], 2)

	assert.True(t, d("99.99").Equal(perPayer[0][1].SalePrice.Add(perPayer[1][1].SalePrice)))
	assert.Equal(t, "USD", perPayer[0][1].Currency)
	assert.Equal(t, "ARS", perPayer[0][0].Currency)
}

func TestManualTotalsAcross(t *testing.T) {
	totals := ManualTotals{
		Currency:      "ARS",
		Taxable21:     d("1000.00"),
		Tax21:         d("210.00"),
		Taxable105:    d("100.00"),
		Tax105:        d("10.50"),
		NonComputable: d("50.00"),
		Total:         d("1370.50"),
	}
	lines := []ServiceLine{sampleLine(), sampleLine()}
	shares := share.Normalize([]float64{1, 1, 1})

	perPayer, err := ManualTotalsAcross(totals, lines, shares)
	require.NoError(t, err)
	require.Len(t, perPayer, 3)

	base := decimal.Zero
	tax := decimal.Zero
	total := decimal.Zero
	for _, mt := range perPayer {
		assert.Equal(t, "ARS", mt.Currency)
		base = base.Add(mt.Taxable21)
		tax = tax.Add(mt.Tax21)
		total = total.Add(mt.Total)
	}
	assert.True(t, d("1000.00").Equal(base))
	assert.True(t, d("210.00").Equal(tax))
	assert.True(t, d("1370.50").Equal(total))
}

func TestManualTotalsRejectMixedCurrency(t *testing.T) {
	totals := ManualTotals{Currency: "ARS", Total: d("100.00")}
	lines := []ServiceLine{sampleLine(), sampleLine()}
	lines[1].Currency = "USD"

	_, err := ManualTotalsAcross(totals, lines, share.Normalize([]float64{1, 1}))
	require.ErrorIs(t, err, ErrMixedCurrency)
}
