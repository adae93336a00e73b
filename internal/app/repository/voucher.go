package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backoffice/internal/app/ds"
	"backoffice/internal/billing/voucher"
)

// ErrDuplicateVoucher is returned when a voucher with the same agency,
// point of sale, type and number already exists. The unique index is the
// final authority; the pre-check only catches it before a row is written.
var ErrDuplicateVoucher = errors.New("voucher already exists for this point of sale and type")

// VoucherNumberExists checks for an already persisted voucher matching the
// authorized number in any of its stored formats: the raw number, the
// legacy display format and the canonical display format.
func (r *Repository) VoucherNumberExists(agencyID uint, puntoVenta, cbteTipo int, numero int64) (bool, error) {
	canonical := voucher.CanonicalNumber(puntoVenta, cbteTipo, numero)
	legacy := voucher.LegacyNumber(puntoVenta, numero)

	var count int64
	err := r.db.Model(&ds.Voucher{}).
		Where("agency_id = ? AND punto_venta = ? AND cbte_tipo = ?", agencyID, puntoVenta, cbteTipo).
		Where("numero = ? OR numero_completo IN ? OR numero_legacy = ?",
			numero, []string{canonical, legacy}, legacy).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateVoucher persists an authorized voucher with its items and assigns
// the agency's internal sequence number, all in one transaction. The
// counter row is locked so concurrent requests cannot allocate the same
// sequence; a race lost on the voucher number surfaces as
// ErrDuplicateVoucher.
func (r *Repository) CreateVoucher(v *ds.Voucher, items []ds.VoucherItem) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var counter ds.AgencyCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("agency_id = ? AND kind = ?", v.AgencyID, ds.CounterVoucher).
			First(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = ds.AgencyCounter{AgencyID: v.AgencyID, Kind: ds.CounterVoucher}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		counter.Value++
		if err := tx.Save(&counter).Error; err != nil {
			return err
		}
		v.InternalSeq = counter.Value

		if err := tx.Create(v).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].VoucherID = v.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateVoucher
	}
	return err
}

// GetVoucher loads one agency-scoped voucher with its items.
func (r *Repository) GetVoucher(agencyID, voucherID uint) (*ds.Voucher, error) {
	var v ds.Voucher
	err := r.db.Preload("Items").Preload("Client").
		Where("agency_id = ? AND id = ?", agencyID, voucherID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVouchers returns the agency's vouchers, newest first, optionally
// filtered by voucher type or booking.
func (r *Repository) ListVouchers(agencyID uint, cbteTipo int, bookingID uint) ([]ds.Voucher, error) {
	q := r.db.Preload("Client").Where("agency_id = ?", agencyID)
	if cbteTipo != 0 {
		q = q.Where("cbte_tipo = ?", cbteTipo)
	}
	if bookingID != 0 {
		q = q.Where("booking_id = ?", bookingID)
	}

	var vouchers []ds.Voucher
	if err := q.Order("id desc").Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// LinkCreditNote records which invoice a credit note corrects.
func (r *Repository) LinkCreditNote(creditNoteID, originalID uint) error {
	return r.db.Model(&ds.Voucher{}).
		Where("id = ?", creditNoteID).
		Update("asociada_id", originalID).Error
}

// SetVoucherQRObject records the object-storage key of the voucher's QR
// image after the upload succeeds.
func (r *Repository) SetVoucherQRObject(voucherID uint, object string) error {
	return r.db.Model(&ds.Voucher{}).
		Where("id = ?", voucherID).
		Update("qr_object", object).Error
}
