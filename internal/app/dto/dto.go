package dto

import "time"

// ============ Common ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ============ Invoicing ============

// ManualTotalsRequest is the operator override of the computed VAT buckets.
// Single currency by definition; the request is rejected when the selected
// services span more than one.
type ManualTotalsRequest struct {
	Currency        string  `json:"currency" binding:"required,len=3"`
	Taxable21       float64 `json:"taxable_21" binding:"gte=0"`
	Tax21           float64 `json:"tax_21" binding:"gte=0"`
	Taxable105      float64 `json:"taxable_105" binding:"gte=0"`
	Tax105          float64 `json:"tax_105" binding:"gte=0"`
	CardInterest    float64 `json:"card_interest" binding:"gte=0"`
	CardInterestTax float64 `json:"card_interest_tax" binding:"gte=0"`
	NonComputable   float64 `json:"non_computable" binding:"gte=0"`
	Total           float64 `json:"total" binding:"required,gt=0"`
}

type InvoiceRequest struct {
	BookingID   uint      `json:"booking_id" binding:"required"`
	ServiceIDs  []uint    `json:"service_ids" binding:"required,min=1"`
	PayerIDs    []uint    `json:"payer_ids" binding:"required,min=1"`
	PayerShares []float64 `json:"payer_shares"`
	VoucherType int       `json:"voucher_type" binding:"required"`
	// ExchangeRate fixes the AFIP cotización; defaults to 1.
	ExchangeRate *float64 `json:"exchange_rate" binding:"omitempty,gt=0"`
	// InvoiceDate in YYYY-MM-DD; defaults to today at the authority.
	InvoiceDate  string               `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	ManualTotals *ManualTotalsRequest `json:"manual_totals"`
}

type CreditNoteRequest struct {
	InvoiceID    uint                 `json:"invoice_id" binding:"required"`
	VoucherType  int                  `json:"voucher_type" binding:"required"`
	ExchangeRate *float64             `json:"exchange_rate" binding:"omitempty,gt=0"`
	InvoiceDate  string               `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	ManualTotals *ManualTotalsRequest `json:"manual_totals"`
}

// ============ Vouchers ============

type VoucherItemResponse struct {
	ID              uint    `json:"id"`
	ServiceID       *uint   `json:"service_id,omitempty"`
	Description     string  `json:"description"`
	Currency        string  `json:"currency"`
	SalePrice       string  `json:"sale_price"`
	Taxable21       string  `json:"taxable_21"`
	Commission21    string  `json:"commission_21"`
	Tax21           string  `json:"tax_21"`
	Taxable105      string  `json:"taxable_105"`
	Commission105   string  `json:"commission_105"`
	Tax105          string  `json:"tax_105"`
	CardInterest    string  `json:"card_interest"`
	CardInterestTax string  `json:"card_interest_tax"`
	Exempt          string  `json:"exempt"`
	NonComputable   string  `json:"non_computable"`
}

type VoucherResponse struct {
	ID             uint                  `json:"id"`
	UUID           string                `json:"uuid"`
	BookingID      *uint                 `json:"booking_id,omitempty"`
	ClientID       uint                  `json:"client_id"`
	ClientName     string                `json:"client_name"`
	CbteTipo       int                   `json:"cbte_tipo"`
	PuntoVenta     int                   `json:"punto_venta"`
	Numero         int64                 `json:"numero"`
	NumeroCompleto string                `json:"numero_completo"`
	NumeroLegacy   string                `json:"numero_legacy"`
	InternalSeq    int64                 `json:"internal_seq"`
	CAE            string                `json:"cae"`
	CAEVencimiento time.Time             `json:"cae_vencimiento"`
	Moneda         string                `json:"moneda"`
	Cotizacion     string                `json:"cotizacion"`
	ImporteTotal   string                `json:"importe_total"`
	AsociadaID     *uint                 `json:"asociada_id,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	Items          []VoucherItemResponse `json:"items,omitempty"`
}

// InvoiceBatchResponse reports a possibly mixed outcome: some payers
// invoiced, others collected as error messages for manual follow-up.
type InvoiceBatchResponse struct {
	Status   string            `json:"status"`
	Message  string            `json:"message,omitempty"`
	Invoices []VoucherResponse `json:"invoices,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
}

type VoucherListResponse struct {
	Vouchers []VoucherResponse `json:"vouchers"`
	Total    int               `json:"total"`
}

// ============ Bookings ============

type BookingServiceResponse struct {
	ID          uint       `json:"id"`
	Description string     `json:"description"`
	Currency    string     `json:"currency"`
	Departure   *time.Time `json:"departure,omitempty"`
	Return      *time.Time `json:"return,omitempty"`
	SalePrice   string     `json:"sale_price"`
}

type BookingResponse struct {
	ID        uint                     `json:"id"`
	Code      string                   `json:"code"`
	ClientID  uint                     `json:"client_id"`
	Status    string                   `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	Services  []BookingServiceResponse `json:"services,omitempty"`
}

// ============ Users ============

type UserResponse struct {
	ID       uint   `json:"id"`
	AgencyID uint   `json:"agency_id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	AgencyID uint   `json:"agency_id" binding:"required"`
	Role     int    `json:"role" binding:"gte=0,lte=2"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
