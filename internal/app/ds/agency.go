package ds

import "time"

// Agency is one tenant: every booking, client and voucher is scoped to it.
type Agency struct {
	ID          uint   `gorm:"primaryKey"`
	CUIT        string `gorm:"type:varchar(20);unique;not null"`
	RazonSocial string `gorm:"type:varchar(150);not null"`
	// PuntoVenta is the AFIP-assigned point of sale this agency issues from.
	PuntoVenta int       `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"not null"`
}

// AgencyCounter is the per-agency monotonic sequence used for internal
// voucher display numbers. Incremented with a row lock inside the same
// transaction as the voucher insert.
type AgencyCounter struct {
	ID       uint   `gorm:"primaryKey"`
	AgencyID uint   `gorm:"not null;uniqueIndex:idx_agency_counter"`
	Kind     string `gorm:"type:varchar(30);not null;uniqueIndex:idx_agency_counter"`
	Value    int64  `gorm:"not null;default:0"`
}

// CounterVoucher is the counter kind backing voucher internal sequences.
const CounterVoucher = "voucher"
