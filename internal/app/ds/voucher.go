package ds

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Voucher is an authorized fiscal document (invoice or credit note).
// Created only after a successful CAE authorization and never updated in
// place; corrections are new credit-note vouchers referencing the original.
// (AgencyID, PuntoVenta, CbteTipo, Numero) is unique.
type Voucher struct {
	ID        uint      `gorm:"primaryKey"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	AgencyID  uint      `gorm:"not null;uniqueIndex:idx_voucher_number;index"`
	BookingID *uint     `gorm:"index"`
	ClientID  uint      `gorm:"not null"`

	PuntoVenta     int    `gorm:"not null;uniqueIndex:idx_voucher_number"`
	CbteTipo       int    `gorm:"not null;uniqueIndex:idx_voucher_number"`
	Numero         int64  `gorm:"not null;uniqueIndex:idx_voucher_number"`
	NumeroCompleto string `gorm:"type:varchar(30);not null"`
	NumeroLegacy   string `gorm:"type:varchar(30);not null"`
	// InternalSeq is the agency-scoped display sequence, independent of the
	// AFIP numbering.
	InternalSeq int64 `gorm:"not null"`

	// CAE is the authorization code returned by AFIP.
	CAE            string    `gorm:"type:varchar(20);not null;column:cae"`
	CAEVencimiento time.Time `gorm:"not null;column:cae_vencimiento"`

	DocTipo      int             `gorm:"not null"`
	DocNro       string          `gorm:"type:varchar(20);not null"`
	RazonSocial  string          `gorm:"type:varchar(150);not null"`
	Moneda       string          `gorm:"type:varchar(3);not null"`
	Cotizacion   decimal.Decimal `gorm:"type:decimal(12,6);not null;default:1"`
	ImporteTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// RequestPayload is the voucher request as sent to AFIP; credit notes
	// rebuild their VAT buckets from it. ResponsePayload is the raw
	// integration response kept for reconciliation.
	RequestPayload  []byte `gorm:"type:jsonb"`
	ResponsePayload []byte `gorm:"type:jsonb"`

	// AsociadaID links a credit note to the invoice it corrects.
	AsociadaID *uint `gorm:"index"`
	// QRObject is the object-storage key of the AFIP QR image, if stored.
	QRObject string `gorm:"type:varchar(100)"`

	CreatedAt time.Time

	Items    []VoucherItem `gorm:"foreignKey:VoucherID;constraint:OnDelete:CASCADE"`
	Client   Client        `gorm:"foreignKey:ClientID"`
	Asociada *Voucher      `gorm:"foreignKey:AsociadaID"`
}

// VoucherItem is one persisted line of a voucher: a payer's slice of a
// booked service, or a reconstructed VAT bucket for credit notes. Owned
// exclusively by its voucher and removed only by cascade.
type VoucherItem struct {
	ID          uint   `gorm:"primaryKey"`
	VoucherID   uint   `gorm:"not null;index"`
	ServiceID   *uint  `gorm:"index"`
	Description string `gorm:"type:varchar(200);not null"`
	Currency    string `gorm:"type:varchar(3);not null"`

	SalePrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Taxable21       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Commission21    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax21           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Taxable105      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Commission105   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax105          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CardInterest    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CardInterestTax decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Exempt          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	NonComputable   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time
}
