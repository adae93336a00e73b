package split

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/billing/share"
)

// ErrMixedCurrency is returned when manual totals are combined with service
// lines in more than one currency.
var ErrMixedCurrency = errors.New("manual totals require a single currency")

// ServiceLine is the monetary breakdown of one booked service at invoice
// build time. Amounts are immutable during a run; the splitter works on
// copies only.
type ServiceLine struct {
	ServiceID   uint
	Description string
	Currency    string
	Departure   *time.Time
	Return      *time.Time

	SalePrice       decimal.Decimal
	Taxable21       decimal.Decimal
	Commission21    decimal.Decimal
	Tax21           decimal.Decimal
	Taxable105      decimal.Decimal
	Commission105   decimal.Decimal
	Tax105          decimal.Decimal
	CardInterest    decimal.Decimal
	CardInterestTax decimal.Decimal
	Exempt          decimal.Decimal
	NonComputable   decimal.Decimal
}

// amounts returns pointers to every monetary field, in a fixed order shared
// between the source line and its per-payer slices.
func (l *ServiceLine) amounts() []*decimal.Decimal {
	return []*decimal.Decimal{
		&l.SalePrice,
		&l.Taxable21, &l.Commission21, &l.Tax21,
		&l.Taxable105, &l.Commission105, &l.Tax105,
		&l.CardInterest, &l.CardInterestTax,
		&l.Exempt, &l.NonComputable,
	}
}

// ManualTotals is an operator-entered override of the computed VAT buckets.
// It is always single-currency.
type ManualTotals struct {
	Currency        string
	Taxable21       decimal.Decimal
	Tax21           decimal.Decimal
	Taxable105      decimal.Decimal
	Tax105          decimal.Decimal
	CardInterest    decimal.Decimal
	CardInterestTax decimal.Decimal
	NonComputable   decimal.Decimal
	Total           decimal.Decimal
}

func (m *ManualTotals) amounts() []*decimal.Decimal {
	return []*decimal.Decimal{
		&m.Taxable21, &m.Tax21,
		&m.Taxable105, &m.Tax105,
		&m.CardInterest, &m.CardInterestTax,
		&m.NonComputable, &m.Total,
	}
}

// ServiceLines splits every monetary field of every line across the given
// normalized shares. The result has one entry per payer, each carrying that
// payer's slice of every line. Fields are split independently: a payer's
// sale price slice is not reconciled against the sum of its bucket slices,
// matching how vouchers have historically been issued.
func ServiceLines(lines []ServiceLine, shares []float64) [][]ServiceLine {
	out := make([][]ServiceLine, len(shares))
	for p := range out {
		out[p] = make([]ServiceLine, len(lines))
	}

	for li := range lines {
		src := lines[li]
		for p := range out {
			out[p][li] = src
		}

		fields := src.amounts()
		for fi, field := range fields {
			parts := share.SplitAmount(*field, shares)
			for p := range out {
				*out[p][li].amounts()[fi] = parts[p]
			}
		}
	}
	return out
}

// ManualTotalsAcross splits operator-entered totals across the shares, one
// ManualTotals per payer. Lines are only consulted to enforce the
// single-currency precondition; mixed currencies are a hard rejection.
func ManualTotalsAcross(totals ManualTotals, lines []ServiceLine, shares []float64) ([]ManualTotals, error) {
	currency := totals.Currency
	for _, l := range lines {
		if currency == "" {
			currency = l.Currency
			continue
		}
		if l.Currency != currency {
			return nil, ErrMixedCurrency
		}
	}

	out := make([]ManualTotals, len(shares))
	for p := range out {
		out[p] = totals
		out[p].Currency = currency
	}

	fields := totals.amounts()
	for fi, field := range fields {
		parts := share.SplitAmount(*field, shares)
		for p := range out {
			*out[p].amounts()[fi] = parts[p]
		}
	}
	return out, nil
}
