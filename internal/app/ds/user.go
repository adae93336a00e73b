package ds

import "backoffice/internal/app/role"

// User is a back-office operator belonging to one agency.
type User struct {
	ID       uint      `gorm:"primaryKey"`
	AgencyID uint      `gorm:"not null;index"`
	Login    string    `gorm:"type:varchar(50);unique;not null"`
	Password string    `gorm:"type:varchar(255);not null"`
	FullName string    `gorm:"type:varchar(100)"`
	Role     role.Role `gorm:"type:int;not null;default:0"`
}
