package voucher

import (
	"encoding/json"
	"fmt"

	"backoffice/internal/billing/split"
)

// FromStoredPayload reconstructs a credit-note Request from the voucher
// request persisted with the original invoice. The stored buckets, exempt
// amount and totals are reused as-is; type, recipient document, exchange
// rate, date and associations come from the new request's options.
func FromStoredPayload(payload []byte, opts Options) (Request, error) {
	var original Request
	if err := json.Unmarshal(payload, &original); err != nil {
		return Request{}, fmt.Errorf("failed to decode stored voucher payload: %w", err)
	}

	req := Request{
		Type:         opts.VoucherType,
		DocType:      DocTypeFor(opts.VoucherType),
		DocNumber:    opts.DocNumber,
		Currency:     original.Currency,
		ExchangeRate: opts.rate(),
		Date:         opts.Date,
		Buckets:      original.Buckets,
		Exempt:       original.Exempt,
		Net:          original.Net,
		Vat:          original.Vat,
		Total:        original.Total,
		Assoc:        opts.Assoc,
		Manual:       original.Manual,
	}
	return req, nil
}

// StoredManualTotals extracts the operator-entered totals shape from a
// stored payload, when the original invoice was issued from manual totals.
// Returns nil when the payload was built from computed service lines.
func StoredManualTotals(payload []byte) (*split.ManualTotals, error) {
	var original Request
	if err := json.Unmarshal(payload, &original); err != nil {
		return nil, fmt.Errorf("failed to decode stored voucher payload: %w", err)
	}
	if !original.Manual {
		return nil, nil
	}

	totals := split.ManualTotals{
		Currency:      original.Currency,
		NonComputable: original.Exempt,
		Total:         original.Total,
	}
	for _, b := range original.Buckets {
		switch b.ID {
		case VatID21:
			totals.Taxable21 = b.Base
			totals.Tax21 = b.Amount
		case VatID105:
			totals.Taxable105 = b.Base
			totals.Tax105 = b.Amount
		}
	}
	return &totals, nil
}
