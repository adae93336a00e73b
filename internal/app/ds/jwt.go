package ds

import (
	"github.com/golang-jwt/jwt"

	"backoffice/internal/app/role"
)

// JWTClaims carries the authenticated user plus the agency every request is
// scoped to.
type JWTClaims struct {
	jwt.StandardClaims
	UserID   uint      `json:"user_id"`
	AgencyID uint      `json:"agency_id"`
	Role     role.Role `json:"role"`
}
