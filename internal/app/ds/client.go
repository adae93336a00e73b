package ds

import "time"

// Recipient document types as stored on clients.
const (
	ClientDocCUIT = "CUIT"
	ClientDocDNI  = "DNI"
)

// Client is a payer: the person or company a voucher is issued to.
type Client struct {
	ID        uint   `gorm:"primaryKey"`
	AgencyID  uint   `gorm:"not null;index"`
	Name      string `gorm:"type:varchar(150);not null"`
	DocType   string `gorm:"type:varchar(10);not null"`
	DocNumber string `gorm:"type:varchar(20);not null"`
	Email     string `gorm:"type:varchar(150)"`
	CreatedAt time.Time

	Agency Agency `gorm:"foreignKey:AgencyID"`
}
