// Package afip talks to the fiscal web-service bridge that requests CAE
// authorizations from the tax authority (WSFE). The rest of the system only
// depends on the Issuer interface.
package afip

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/billing/voucher"
)

// Authorization is the outcome of a granted CAE request.
type Authorization struct {
	PuntoVenta int             `json:"punto_venta"`
	CbteTipo   int             `json:"cbte_tipo"`
	Numero     int64           `json:"numero"`
	CAE        string          `json:"cae"`
	Expiry     time.Time       `json:"cae_vencimiento"`
	Total      decimal.Decimal `json:"importe_total"`
	QRBase64   string          `json:"qr_base64,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// Issuer obtains a CAE for one voucher request. Implementations must treat
// the call as potentially non-idempotent: a granted authorization is
// consumed even if the caller later fails to persist it.
type Issuer interface {
	IssueVoucher(ctx context.Context, req voucher.Request) (*Authorization, error)
}
