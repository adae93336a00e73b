// Package invoicing runs the invoice and credit-note batches: share
// normalization, amount splitting, CAE authorization and voucher
// persistence, payer by payer.
package invoicing

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"backoffice/internal/app/afip"
	"backoffice/internal/app/ds"
	"backoffice/internal/app/dto"
	"backoffice/internal/app/repository"
	"backoffice/internal/billing/share"
	"backoffice/internal/billing/split"
	"backoffice/internal/billing/voucher"
)

const dateLayout = "2006-01-02"

// ValidationError marks failures detected before any external call.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ObjectStore is the slice of the storage client the invoicing flow needs:
// uploading a voucher's QR image and removing it again when the object key
// could not be recorded.
type ObjectStore interface {
	UploadVoucherQR(ctx context.Context, data []byte, voucherUUID string) (string, error)
	DeleteFile(filename string) error
}

// Service orchestrates invoicing. Payers are processed strictly
// sequentially so the duplicate-number check always sees the writes of the
// same batch before the next authorization goes out.
type Service struct {
	repo   *repository.Repository
	issuer afip.Issuer
	store  ObjectStore // optional, QR images are best-effort
}

func NewService(repo *repository.Repository, issuer afip.Issuer, store ObjectStore) *Service {
	return &Service{repo: repo, issuer: issuer, store: store}
}

// Result accumulates a batch outcome: every payer's voucher or error.
// Error messages are deduplicated, preserving first-seen order.
type Result struct {
	Vouchers []ds.Voucher
	Errors   []string
}

func (r *Result) addError(msg string) {
	for _, existing := range r.Errors {
		if existing == msg {
			return
		}
	}
	r.Errors = append(r.Errors, msg)
}

// Success reports whether at least one voucher was created.
func (r *Result) Success() bool { return len(r.Vouchers) > 0 }

// FirstError returns the message reported when the whole batch failed.
func (r *Result) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// InvoiceBooking invoices the selected services of a booking across its
// payers. Per-payer failures do not abort the batch; already persisted
// vouchers stay.
func (s *Service) InvoiceBooking(ctx context.Context, agencyID uint, req dto.InvoiceRequest) (*Result, error) {
	booking, err := s.repo.GetBooking(agencyID, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %d: %w", req.BookingID, err)
	}

	services, err := s.repo.GetBookingServices(booking.ID, req.ServiceIDs)
	if err != nil {
		return nil, err
	}

	payers, err := s.repo.GetClients(agencyID, req.PayerIDs)
	if err != nil {
		return nil, err
	}

	if len(req.PayerShares) > 0 {
		if len(req.PayerShares) != len(payers) {
			return nil, validationf("got %d shares for %d payers", len(req.PayerShares), len(payers))
		}
		if !share.HasPositive(req.PayerShares) {
			return nil, validationf("payer shares must contain at least one positive weight")
		}
	}
	shares := share.Normalize(sharesOrEqual(req.PayerShares, len(payers)))

	lines := toServiceLines(services)

	opts, err := buildOptions(req.VoucherType, req.ExchangeRate, req.InvoiceDate)
	if err != nil {
		return nil, err
	}

	// split once, before the payer loop
	var perPayerLines [][]split.ServiceLine
	var perPayerTotals []split.ManualTotals
	if req.ManualTotals != nil {
		perPayerTotals, err = split.ManualTotalsAcross(toManualTotals(req.ManualTotals), lines, shares)
		if errors.Is(err, split.ErrMixedCurrency) {
			// operator input problem, not a system failure
			return nil, validationf("%s", err)
		}
		if err != nil {
			return nil, err
		}
	} else {
		perPayerLines = split.ServiceLines(lines, shares)
	}

	result := &Result{}
	for i, payer := range payers {
		if err := checkRecipient(payer, req.VoucherType); err != nil {
			result.addError(fmt.Sprintf("%s: %s", payer.Name, err.Error()))
			continue
		}

		popts := opts
		popts.DocNumber = payer.DocNumber

		var requests []voucher.Request
		if perPayerTotals != nil {
			requests = []voucher.Request{voucher.FromManualTotals(perPayerTotals[i], popts)}
		} else {
			requests = voucher.FromLines(perPayerLines[i], popts)
		}

		for _, vreq := range requests {
			var items []ds.VoucherItem
			if perPayerTotals != nil {
				items = itemsFromBuckets(vreq, nil)
			} else {
				items = itemsFromLines(perPayerLines[i], vreq.Currency)
			}

			v, err := s.issueAndPersist(ctx, agencyID, &payer, &booking.ID, vreq, items)
			if err != nil {
				logrus.Errorf("invoicing: payer %d (%s): %v", payer.ID, payer.Name, err)
				result.addError(fmt.Sprintf("%s: %s", payer.Name, err.Error()))
				continue
			}
			result.Vouchers = append(result.Vouchers, *v)
		}
	}

	if result.Success() {
		if err := s.repo.MarkBookingInvoiced(booking.ID); err != nil {
			logrus.Errorf("invoicing: failed to mark booking %d invoiced: %v", booking.ID, err)
		}
	}
	return result, nil
}

// CreditInvoice issues a credit note against a previously authorized
// invoice, rebuilding the VAT buckets from its stored request payload (or
// from operator-corrected totals) and associating the new voucher to the
// original's identifiers.
func (s *Service) CreditInvoice(ctx context.Context, agencyID uint, req dto.CreditNoteRequest) (*Result, error) {
	if !voucher.IsCreditNote(req.VoucherType) {
		return nil, validationf("voucher type %d is not a credit note", req.VoucherType)
	}

	original, err := s.repo.GetVoucher(agencyID, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice %d: %w", req.InvoiceID, err)
	}
	if len(original.RequestPayload) == 0 || original.CAE == "" {
		return nil, validationf("invoice %d has no stored authorization and cannot be credited", req.InvoiceID)
	}

	opts, err := buildOptions(req.VoucherType, req.ExchangeRate, req.InvoiceDate)
	if err != nil {
		return nil, err
	}
	opts.DocNumber = original.DocNro
	opts.Assoc = []voucher.Assoc{{
		PointOfSale: original.PuntoVenta,
		Type:        original.CbteTipo,
		Number:      original.Numero,
	}}

	var vreq voucher.Request
	switch {
	case req.ManualTotals != nil:
		vreq = voucher.FromManualTotals(toManualTotals(req.ManualTotals), opts)
	default:
		stored, err := voucher.StoredManualTotals(original.RequestPayload)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			vreq = voucher.FromManualTotals(*stored, opts)
		} else {
			vreq, err = voucher.FromStoredPayload(original.RequestPayload, opts)
			if err != nil {
				return nil, err
			}
		}
	}

	client := original.Client
	items := itemsFromBuckets(vreq, bucketDescriptions(original.Items))

	result := &Result{}
	v, err := s.issueAndPersist(ctx, agencyID, &client, original.BookingID, vreq, items)
	if err != nil {
		logrus.Errorf("credit note for invoice %d: %v", original.ID, err)
		result.addError(err.Error())
		return result, nil
	}

	if err := s.repo.LinkCreditNote(v.ID, original.ID); err != nil {
		logrus.Errorf("credit note %d: failed to link original %d: %v", v.ID, original.ID, err)
	} else {
		v.AsociadaID = &original.ID
	}
	result.Vouchers = append(result.Vouchers, *v)
	return result, nil
}

// issueAndPersist is the shared tail of both flows: authorize, check for
// duplicates, persist voucher and items atomically, store the QR image.
func (s *Service) issueAndPersist(ctx context.Context, agencyID uint, payer *ds.Client, bookingID *uint, vreq voucher.Request, items []ds.VoucherItem) (*ds.Voucher, error) {
	auth, err := s.issuer.IssueVoucher(ctx, vreq)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.VoucherNumberExists(agencyID, auth.PuntoVenta, auth.CbteTipo, auth.Numero)
	if err != nil {
		return nil, err
	}
	if exists {
		// the CAE was already consumed; this must reach an operator, not
		// be retried silently
		return nil, fmt.Errorf("duplicate voucher %s: authorization %s granted but not persisted",
			voucher.CanonicalNumber(auth.PuntoVenta, auth.CbteTipo, auth.Numero), auth.CAE)
	}

	payload, err := json.Marshal(vreq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode voucher payload: %w", err)
	}

	v := &ds.Voucher{
		UUID:           uuid.New(),
		AgencyID:       agencyID,
		BookingID:      bookingID,
		ClientID:       payer.ID,
		PuntoVenta:     auth.PuntoVenta,
		CbteTipo:       auth.CbteTipo,
		Numero:         auth.Numero,
		NumeroCompleto: voucher.CanonicalNumber(auth.PuntoVenta, auth.CbteTipo, auth.Numero),
		NumeroLegacy:   voucher.LegacyNumber(auth.PuntoVenta, auth.Numero),
		CAE:            auth.CAE,
		CAEVencimiento: auth.Expiry,
		DocTipo:        vreq.DocType,
		DocNro:         vreq.DocNumber,
		RazonSocial:    payer.Name,
		Moneda:         vreq.Currency,
		Cotizacion:     vreq.ExchangeRate,
		ImporteTotal:   auth.Total,
		RequestPayload: payload,
	}
	if len(auth.Raw) > 0 {
		v.ResponsePayload = auth.Raw
	}

	if err := s.repo.CreateVoucher(v, items); err != nil {
		return nil, err
	}

	s.storeQR(ctx, v, auth.QRBase64)
	return v, nil
}

// storeQR uploads the authority's QR image; failures are logged, never
// fatal, since the voucher is already committed.
func (s *Service) storeQR(ctx context.Context, v *ds.Voucher, qrBase64 string) {
	if s.store == nil || qrBase64 == "" {
		return
	}
	data, err := base64.StdEncoding.DecodeString(qrBase64)
	if err != nil {
		logrus.Warnf("voucher %d: invalid QR payload: %v", v.ID, err)
		return
	}
	object, err := s.store.UploadVoucherQR(ctx, data, v.UUID.String())
	if err != nil {
		logrus.Warnf("voucher %d: failed to store QR: %v", v.ID, err)
		return
	}
	if err := s.repo.SetVoucherQRObject(v.ID, object); err != nil {
		logrus.Warnf("voucher %d: failed to record QR object: %v", v.ID, err)
		// the voucher row has no key to this object, so remove it rather
		// than leave it orphaned in the bucket
		if err := s.store.DeleteFile(object); err != nil {
			logrus.Warnf("voucher %d: failed to remove orphaned QR %s: %v", v.ID, object, err)
		}
		return
	}
	v.QRObject = object
}

func checkRecipient(payer ds.Client, voucherType int) error {
	if payer.DocNumber == "" {
		return validationf("missing recipient document number")
	}
	if voucher.DocTypeFor(voucherType) == voucher.DocTypeCUIT && payer.DocType != ds.ClientDocCUIT {
		return validationf("A-type vouchers require a CUIT, client has %s", payer.DocType)
	}
	return nil
}

func sharesOrEqual(weights []float64, n int) []float64 {
	if len(weights) > 0 {
		return weights
	}
	equal := make([]float64, n)
	for i := range equal {
		equal[i] = 1
	}
	return equal
}

func buildOptions(voucherType int, exchangeRate *float64, invoiceDate string) (voucher.Options, error) {
	opts := voucher.Options{VoucherType: voucherType}
	if exchangeRate != nil {
		opts.ExchangeRate = decimal.NewFromFloat(*exchangeRate)
	}
	if invoiceDate != "" {
		date, err := time.Parse(dateLayout, invoiceDate)
		if err != nil {
			return opts, validationf("invalid invoice date %q", invoiceDate)
		}
		opts.Date = &date
	}
	return opts, nil
}

func toServiceLines(services []ds.BookingService) []split.ServiceLine {
	lines := make([]split.ServiceLine, len(services))
	for i, svc := range services {
		lines[i] = split.ServiceLine{
			ServiceID:       svc.ID,
			Description:     svc.Description,
			Currency:        svc.Currency,
			Departure:       svc.Departure,
			Return:          svc.Return,
			SalePrice:       svc.SalePrice,
			Taxable21:       svc.Taxable21,
			Commission21:    svc.Commission21,
			Tax21:           svc.Tax21,
			Taxable105:      svc.Taxable105,
			Commission105:   svc.Commission105,
			Tax105:          svc.Tax105,
			CardInterest:    svc.CardInterest,
			CardInterestTax: svc.CardInterestTax,
			Exempt:          svc.Exempt,
			NonComputable:   svc.NonComputable,
		}
	}
	return lines
}

func toManualTotals(req *dto.ManualTotalsRequest) split.ManualTotals {
	return split.ManualTotals{
		Currency:        req.Currency,
		Taxable21:       decimal.NewFromFloat(req.Taxable21),
		Tax21:           decimal.NewFromFloat(req.Tax21),
		Taxable105:      decimal.NewFromFloat(req.Taxable105),
		Tax105:          decimal.NewFromFloat(req.Tax105),
		CardInterest:    decimal.NewFromFloat(req.CardInterest),
		CardInterestTax: decimal.NewFromFloat(req.CardInterestTax),
		NonComputable:   decimal.NewFromFloat(req.NonComputable),
		Total:           decimal.NewFromFloat(req.Total),
	}
}

func itemsFromLines(lines []split.ServiceLine, currency string) []ds.VoucherItem {
	items := make([]ds.VoucherItem, 0, len(lines))
	for _, l := range lines {
		if voucher.CurrencyCode(l.Currency) != currency {
			continue
		}
		serviceID := l.ServiceID
		items = append(items, ds.VoucherItem{
			ServiceID:       &serviceID,
			Description:     l.Description,
			Currency:        l.Currency,
			SalePrice:       l.SalePrice,
			Taxable21:       l.Taxable21,
			Commission21:    l.Commission21,
			Tax21:           l.Tax21,
			Taxable105:      l.Taxable105,
			Commission105:   l.Commission105,
			Tax105:          l.Tax105,
			CardInterest:    l.CardInterest,
			CardInterestTax: l.CardInterestTax,
			Exempt:          l.Exempt,
			NonComputable:   l.NonComputable,
		})
	}
	return items
}

// itemsFromBuckets describes a manual-totals or credit-note voucher: one
// item per VAT bucket plus one for the exempt amount when present.
// descriptions, when given, carries per-category text taken from the
// original invoice's items; missing categories fall back to generic labels.
func itemsFromBuckets(vreq voucher.Request, descriptions map[int]string) []ds.VoucherItem {
	label := func(vatID int) string {
		if d, ok := descriptions[vatID]; ok && d != "" {
			return d
		}
		return voucher.BucketLabel(vatID)
	}

	var items []ds.VoucherItem
	for _, b := range vreq.Buckets {
		item := ds.VoucherItem{
			Description: label(b.ID),
			Currency:    vreq.Currency,
		}
		switch b.ID {
		case voucher.VatID21:
			item.Taxable21 = b.Base
			item.Tax21 = b.Amount
		case voucher.VatID105:
			item.Taxable105 = b.Base
			item.Tax105 = b.Amount
		}
		items = append(items, item)
	}
	if !vreq.Exempt.IsZero() {
		items = append(items, ds.VoucherItem{
			Description: label(0),
			Currency:    vreq.Currency,
			Exempt:      vreq.Exempt,
		})
	}
	return items
}

// bucketDescriptions maps each VAT category to the first original item
// text that carried amounts in it.
func bucketDescriptions(items []ds.VoucherItem) map[int]string {
	out := make(map[int]string)
	for _, it := range items {
		if _, ok := out[voucher.VatID21]; !ok && (!it.Taxable21.IsZero() || !it.Tax21.IsZero()) {
			out[voucher.VatID21] = it.Description
		}
		if _, ok := out[voucher.VatID105]; !ok && (!it.Taxable105.IsZero() || !it.Tax105.IsZero()) {
			out[voucher.VatID105] = it.Description
		}
		if _, ok := out[0]; !ok && (!it.Exempt.IsZero() || !it.NonComputable.IsZero()) {
			out[0] = it.Description
		}
	}
	return out
}
