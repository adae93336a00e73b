// Package voucher assembles tax-authority voucher requests from split
// service lines or manual totals, and handles voucher numbering and
// credit-note association against previously issued vouchers.
package voucher

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/billing/split"
)

// AFIP voucher types.
const (
	TypeInvoiceA    = 1
	TypeCreditNoteA = 3
	TypeInvoiceB    = 6
	TypeCreditNoteB = 8
)

// AFIP recipient document types.
const (
	DocTypeCUIT = 80
	DocTypeDNI  = 96
)

// AFIP VAT rate category ids.
const (
	VatID21  = 5
	VatID105 = 4
)

// currencyCodes maps internal currency codes to the AFIP vocabulary. New
// currencies are a data change here, not a code change.
var currencyCodes = map[string]string{
	"ARS": "PES",
	"USD": "DOL",
}

// CurrencyCode translates an internal currency code to the tax-authority
// vocabulary; unknown codes pass through uppercased.
func CurrencyCode(internal string) string {
	code := strings.ToUpper(strings.TrimSpace(internal))
	if mapped, ok := currencyCodes[code]; ok {
		return mapped
	}
	return code
}

// IsCreditNote reports whether the voucher type is a credit note.
func IsCreditNote(voucherType int) bool {
	return voucherType == TypeCreditNoteA || voucherType == TypeCreditNoteB
}

// DocTypeFor selects the recipient document type from the voucher type:
// A-type vouchers require a registered taxpayer (CUIT), B-type consumer
// vouchers take a DNI.
func DocTypeFor(voucherType int) int {
	if voucherType == TypeInvoiceA || voucherType == TypeCreditNoteA {
		return DocTypeCUIT
	}
	return DocTypeDNI
}

// VatBucket is one aggregated (taxable base, tax amount) pair for a VAT
// rate category.
type VatBucket struct {
	ID     int             `json:"id"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// Assoc references an already authorized voucher, used to tie credit notes
// to their original invoice.
type Assoc struct {
	PointOfSale int   `json:"punto_venta"`
	Type        int   `json:"cbte_tipo"`
	Number      int64 `json:"numero"`
}

// Period is the service date range disclosed on the voucher.
type Period struct {
	From time.Time `json:"desde"`
	To   time.Time `json:"hasta"`
}

// Request is the payload handed to the tax-authority integration for one
// payer and one currency group.
type Request struct {
	Type         int             `json:"cbte_tipo"`
	DocType      int             `json:"doc_tipo"`
	DocNumber    string          `json:"doc_numero"`
	Currency     string          `json:"moneda"`
	ExchangeRate decimal.Decimal `json:"cotizacion"`
	Date         *time.Time      `json:"fecha,omitempty"`
	Buckets      []VatBucket     `json:"iva"`
	Exempt       decimal.Decimal `json:"exento"`
	Net          decimal.Decimal `json:"neto"`
	Vat          decimal.Decimal `json:"iva_total"`
	Total        decimal.Decimal `json:"total"`
	Assoc        []Assoc         `json:"cbtes_asoc,omitempty"`
	Period       *Period         `json:"periodo,omitempty"`
	Manual       bool            `json:"manual,omitempty"`
}

// Options carries the per-request knobs shared by every builder.
type Options struct {
	VoucherType  int
	DocNumber    string
	ExchangeRate decimal.Decimal
	Date         *time.Time
	Assoc        []Assoc
}

func (o Options) rate() decimal.Decimal {
	if o.ExchangeRate.IsZero() {
		return decimal.NewFromInt(1)
	}
	return o.ExchangeRate
}

// FromLines builds one Request per currency present in a payer's split
// service lines. Card interest is financed at the 21% rate and folds into
// that bucket; exempt and non-computable amounts count as exempt turnover.
// Buckets with zero base and zero tax are omitted.
func FromLines(lines []split.ServiceLine, opts Options) []Request {
	groups := make(map[string][]split.ServiceLine)
	var order []string
	for _, l := range lines {
		code := CurrencyCode(l.Currency)
		if _, seen := groups[code]; !seen {
			order = append(order, code)
		}
		groups[code] = append(groups[code], l)
	}

	requests := make([]Request, 0, len(order))
	for _, code := range order {
		group := groups[code]

		var base21, vat21, base105, vat105, exempt, total decimal.Decimal
		var from, to *time.Time
		for _, l := range group {
			base21 = base21.Add(l.Taxable21).Add(l.Commission21).Add(l.CardInterest)
			vat21 = vat21.Add(l.Tax21).Add(l.CardInterestTax)
			base105 = base105.Add(l.Taxable105).Add(l.Commission105)
			vat105 = vat105.Add(l.Tax105)
			exempt = exempt.Add(l.Exempt).Add(l.NonComputable)
			total = total.Add(l.SalePrice)

			if l.Departure != nil && (from == nil || l.Departure.Before(*from)) {
				from = l.Departure
			}
			if l.Return != nil && (to == nil || l.Return.After(*to)) {
				to = l.Return
			}
		}

		req := Request{
			Type:         opts.VoucherType,
			DocType:      DocTypeFor(opts.VoucherType),
			DocNumber:    opts.DocNumber,
			Currency:     code,
			ExchangeRate: opts.rate(),
			Date:         opts.Date,
			Buckets:      buckets(base21, vat21, base105, vat105),
			Exempt:       exempt,
			Net:          base21.Add(base105),
			Vat:          vat21.Add(vat105),
			Total:        total,
			Assoc:        opts.Assoc,
		}
		if from != nil && to != nil {
			req.Period = &Period{From: *from, To: *to}
		}
		requests = append(requests, req)
	}
	return requests
}

// FromManualTotals builds the single-currency Request for operator-entered
// totals, replacing the computed service-line aggregation.
func FromManualTotals(totals split.ManualTotals, opts Options) Request {
	base21 := totals.Taxable21.Add(totals.CardInterest)
	vat21 := totals.Tax21.Add(totals.CardInterestTax)

	return Request{
		Type:         opts.VoucherType,
		DocType:      DocTypeFor(opts.VoucherType),
		DocNumber:    opts.DocNumber,
		Currency:     CurrencyCode(totals.Currency),
		ExchangeRate: opts.rate(),
		Date:         opts.Date,
		Buckets:      buckets(base21, vat21, totals.Taxable105, totals.Tax105),
		Exempt:       totals.NonComputable,
		Net:          base21.Add(totals.Taxable105),
		Vat:          vat21.Add(totals.Tax105),
		Total:        totals.Total,
		Assoc:        opts.Assoc,
		Manual:       true,
	}
}

func buckets(base21, vat21, base105, vat105 decimal.Decimal) []VatBucket {
	var out []VatBucket
	if !base21.IsZero() || !vat21.IsZero() {
		out = append(out, VatBucket{ID: VatID21, Base: base21, Amount: vat21})
	}
	if !base105.IsZero() || !vat105.IsZero() {
		out = append(out, VatBucket{ID: VatID105, Base: base105, Amount: vat105})
	}
	return out
}

// BucketLabel is the generic human-readable description for a reconstructed
// VAT bucket when the original invoice carried no item text for it.
func BucketLabel(vatID int) string {
	switch vatID {
	case VatID21:
		return "IVA 21%"
	case VatID105:
		return "IVA 10.5%"
	default:
		return "Exento"
	}
}

// CanonicalNumber formats the full display number of an authorized voucher:
// zero-padded point of sale, voucher type and raw number.
func CanonicalNumber(pointOfSale, voucherType int, number int64) string {
	return fmt.Sprintf("%04d-%03d-%08d", pointOfSale, voucherType, number)
}

// LegacyNumber formats the display number the way older stored records did,
// without padding or the voucher type.
func LegacyNumber(pointOfSale int, number int64) string {
	return fmt.Sprintf("%d-%d", pointOfSale, number)
}
