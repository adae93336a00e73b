package ds

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking groups the services sold to a client in one file.
type Booking struct {
	ID        uint   `gorm:"primaryKey"`
	AgencyID  uint   `gorm:"not null;index"`
	Code      string `gorm:"type:varchar(30);not null"`
	ClientID  uint   `gorm:"not null"` // titular
	Status    string `gorm:"type:varchar(20);not null;default:'abierta'"` // abierta, facturada, cerrada
	CreatedAt time.Time
	UpdatedAt time.Time

	Client   Client           `gorm:"foreignKey:ClientID"`
	Services []BookingService `gorm:"foreignKey:BookingID"`
}

// BookingService is one booked service line with its full monetary
// breakdown. These rows feed the invoice splitter; they are never mutated
// by voucher issuance.
type BookingService struct {
	ID          uint   `gorm:"primaryKey"`
	BookingID   uint   `gorm:"not null;index"`
	Description string `gorm:"type:varchar(200);not null"`
	Currency    string `gorm:"type:varchar(3);not null;default:'ARS'"`
	Departure   *time.Time
	Return      *time.Time

	SalePrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
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
