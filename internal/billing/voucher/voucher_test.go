package voucher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/billing/split"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCurrencyCode(t *testing.T) {
	tests := []struct {
		internal string
		want     string
	}{
		{"ARS", "PES"},
		{"ars", "PES"},
		{"USD", "DOL"},
		{" usd ", "DOL"},
		{"EUR", "EUR"},
		{"brl", "BRL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CurrencyCode(tt.internal), "internal %q", tt.internal)
	}
}

func TestDocTypeFor(t *testing.T) {
	assert.Equal(t, DocTypeCUIT, DocTypeFor(TypeInvoiceA))
	assert.Equal(t, DocTypeCUIT, DocTypeFor(TypeCreditNoteA))
	assert.Equal(t, DocTypeDNI, DocTypeFor(TypeInvoiceB))
	assert.Equal(t, DocTypeDNI, DocTypeFor(TypeCreditNoteB))
}

func TestIsCreditNote(t *testing.T) {
	assert.True(t, IsCreditNote(TypeCreditNoteA))
	assert.True(t, IsCreditNote(TypeCreditNoteB))
	assert.False(t, IsCreditNote(TypeInvoiceA))
	assert.False(t, IsCreditNote(TypeInvoiceB))
}

func TestNumbering(t *testing.T) {
	assert.Equal(t, "0001-006-00000123", CanonicalNumber(1, TypeInvoiceB, 123))
	assert.Equal(t, "0032-001-00045678", CanonicalNumber(32, TypeInvoiceA, 45678))
	assert.Equal(t, "1-123", LegacyNumber(1, 123))
	assert.Equal(t, "32-45678", LegacyNumber(32, 45678))
}

func TestFromLinesAggregatesBuckets(t *testing.T) {
	dep := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	lateRet := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	lines := []split.ServiceLine{
		{
			Currency:        "ARS",
			Departure:       &dep,
			Return:          &ret,
			SalePrice:       d("1263.13"),
			Taxable21:       d("900.00"),
			Commission21:    d("100.00"),
			Tax21:           d("210.00"),
			CardInterest:    d("20.00"),
			CardInterestTax: d("4.20"),
			Exempt:          d("20.00"),
			NonComputable:   d("8.93"),
		},
		{
			Currency:      "ARS",
			Departure:     &dep,
			Return:        &lateRet,
			SalePrice:     d("110.50"),
			Taxable105:    d("90.00"),
			Commission105: d("10.00"),
			Tax105:        d("10.50"),
		},
	}

	reqs := FromLines(lines, Options{VoucherType: TypeInvoiceA, DocNumber: "30123456789"})
	require.Len(t, reqs, 1)

	req := reqs[0]
	assert.Equal(t, TypeInvoiceA, req.Type)
	assert.Equal(t, DocTypeCUIT, req.DocType)
	assert.Equal(t, "30123456789", req.DocNumber)
	assert.Equal(t, "PES", req.Currency)
	assert.True(t, d("1").Equal(req.ExchangeRate))

	require.Len(t, req.Buckets, 2)
	assert.Equal(t, VatID21, req.Buckets[0].ID)
	assert.True(t, d("1020.00").Equal(req.Buckets[0].Base), "21%% base: %s", req.Buckets[0].Base)
	assert.True(t, d("214.20").Equal(req.Buckets[0].Amount))
	assert.Equal(t, VatID105, req.Buckets[1].ID)
	assert.True(t, d("100.00").Equal(req.Buckets[1].Base))
	assert.True(t, d("10.50").Equal(req.Buckets[1].Amount))

	assert.True(t, d("28.93").Equal(req.Exempt))
	assert.True(t, d("1120.00").Equal(req.Net))
	assert.True(t, d("224.70").Equal(req.Vat))
	assert.True(t, d("1373.63").Equal(req.Total))

	require.NotNil(t, req.Period)
	assert.Equal(t, dep, req.Period.From)
	assert.Equal(t, lateRet, req.Period.To)
}

func TestFromLinesOmitsZeroBuckets(t *testing.T) {
	lines := []split.ServiceLine{{
		Currency:  "USD",
		SalePrice: d("121.00"),
		Taxable21: d("100.00"),
		Tax21:     d("21.00"),
	}}

	reqs := FromLines(lines, Options{VoucherType: TypeInvoiceB, DocNumber: "30222333"})
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Buckets, 1)
	assert.Equal(t, VatID21, reqs[0].Buckets[0].ID)
	assert.Equal(t, "DOL", reqs[0].Currency)
	assert.Nil(t, reqs[0].Period)
}

func TestFromLinesGroupsByCurrency(t *testing.T) {
	lines := []split.ServiceLine{
		{Currency: "ARS", SalePrice: d("100"), Taxable21: d("82.64"), Tax21: d("17.36")},
		{Currency: "USD", SalePrice: d("50"), Taxable105: d("45.25"), Tax105: d("4.75")},
		{Currency: "ARS", SalePrice: d("10"), Exempt: d("10")},
	}

	reqs := FromLines(lines, Options{VoucherType: TypeInvoiceB, DocNumber: "40111222"})
	require.Len(t, reqs, 2)
	assert.Equal(t, "PES", reqs[0].Currency)
	assert.True(t, d("110").Equal(reqs[0].Total))
	assert.Equal(t, "DOL", reqs[1].Currency)
	assert.True(t, d("50").Equal(reqs[1].Total))
}

func TestFromManualTotals(t *testing.T) {
	totals := split.ManualTotals{
		Currency:        "ARS",
		Taxable21:       d("1000.00"),
		Tax21:           d("210.00"),
		Taxable105:      d("200.00"),
		Tax105:          d("21.00"),
		CardInterest:    d("30.00"),
		CardInterestTax: d("6.30"),
		NonComputable:   d("15.00"),
		Total:           d("1482.30"),
	}

	rate := d("1050.25")
	req := FromManualTotals(totals, Options{
		VoucherType:  TypeInvoiceA,
		DocNumber:    "30555666777",
		ExchangeRate: rate,
	})

	assert.True(t, req.Manual)
	assert.Equal(t, "PES", req.Currency)
	assert.True(t, rate.Equal(req.ExchangeRate))
	require.Len(t, req.Buckets, 2)
	assert.True(t, d("1030.00").Equal(req.Buckets[0].Base))
	assert.True(t, d("216.30").Equal(req.Buckets[0].Amount))
	assert.True(t, d("200.00").Equal(req.Buckets[1].Base))
	assert.True(t, d("15.00").Equal(req.Exempt))
	assert.True(t, d("1482.30").Equal(req.Total))
}

func TestFromStoredPayload(t *testing.T) {
	original := Request{
		Type:         TypeInvoiceA,
		DocType:      DocTypeCUIT,
		DocNumber:    "30123456789",
		Currency:     "PES",
		ExchangeRate: d("1"),
		Buckets:      []VatBucket{{ID: VatID21, Base: d("1000"), Amount: d("210")}},
		Net:          d("1000"),
		Vat:          d("210"),
		Total:        d("1210"),
	}
	payload, err := json.Marshal(original)
	require.NoError(t, err)

	assoc := []Assoc{{PointOfSale: 3, Type: TypeInvoiceA, Number: 412}}
	req, err := FromStoredPayload(payload, Options{
		VoucherType: TypeCreditNoteA,
		DocNumber:   "30123456789",
		Assoc:       assoc,
	})
	require.NoError(t, err)

	assert.Equal(t, TypeCreditNoteA, req.Type)
	assert.Equal(t, DocTypeCUIT, req.DocType)
	require.Len(t, req.Buckets, 1)
	assert.True(t, d("1000").Equal(req.Buckets[0].Base))
	assert.True(t, d("210").Equal(req.Buckets[0].Amount))
	assert.True(t, d("1210").Equal(req.Total))
	require.Len(t, req.Assoc, 1)
	assert.Equal(t, 3, req.Assoc[0].PointOfSale)
	assert.Equal(t, int64(412), req.Assoc[0].Number)
}

func TestFromStoredPayloadRejectsGarbage(t *testing.T) {
	_, err := FromStoredPayload([]byte("not json"), Options{VoucherType: TypeCreditNoteB})
	require.Error(t, err)
}

func TestStoredManualTotals(t *testing.T) {
	manual := Request{
		Currency: "PES",
		Manual:   true,
		Buckets: []VatBucket{
			{ID: VatID21, Base: d("500"), Amount: d("105")},
			{ID: VatID105, Base: d("100"), Amount: d("10.50")},
		},
		Exempt: d("20"),
		Total:  d("735.50"),
	}
	payload, err := json.Marshal(manual)
	require.NoError(t, err)

	totals, err := StoredManualTotals(payload)
	require.NoError(t, err)
	require.NotNil(t, totals)
	assert.True(t, d("500").Equal(totals.Taxable21))
	assert.True(t, d("10.50").Equal(totals.Tax105))
	assert.True(t, d("20").Equal(totals.NonComputable))
	assert.Equal(t, "PES", totals.Currency)

	computed, err := json.Marshal(Request{Currency: "PES"})
	require.NoError(t, err)
	totals, err = StoredManualTotals(computed)
	require.NoError(t, err)
	assert.Nil(t, totals)
}

func TestBucketLabel(t *testing.T) {
	assert.Equal(t, "IVA 21%", BucketLabel(VatID21))
	assert.Equal(t, "IVA 10.5%", BucketLabel(VatID105))
	assert.Equal(t, "Exento", BucketLabel(0))
}
