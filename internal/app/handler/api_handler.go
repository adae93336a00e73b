package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backoffice/internal/app/ds"
	"backoffice/internal/app/dto"
	"backoffice/internal/app/invoicing"
	"backoffice/internal/app/middleware"
	"backoffice/internal/app/repository"
)

// ObjectStore is the slice of the storage client the API reads from.
type ObjectStore interface {
	FileExists(filename string) (bool, error)
	DownloadFile(filename string) ([]byte, error)
}

// APIHandler exposes the invoicing REST API.
type APIHandler struct {
	Repository  *repository.Repository
	Invoicing   *invoicing.Service
	MinIOClient ObjectStore
	AuthHandler *AuthHandler
}

func NewAPIHandler(r *repository.Repository, svc *invoicing.Service, minioClient ObjectStore, authHandler *AuthHandler) *APIHandler {
	return &APIHandler{
		Repository:  r,
		Invoicing:   svc,
		MinIOClient: minioClient,
		AuthHandler: authHandler,
	}
}

// ============ Helpers ============

func (h *APIHandler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

// serviceError maps invoicing errors onto HTTP statuses: bad input is the
// caller's fault, missing rows are 404, the rest is on us.
func (h *APIHandler) serviceError(c *gin.Context, err error) {
	var verr *invoicing.ValidationError
	switch {
	case errors.As(err, &verr):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		h.errorResponse(c, http.StatusNotFound, err.Error())
	default:
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

func toVoucherItemResponse(item ds.VoucherItem) dto.VoucherItemResponse {
	return dto.VoucherItemResponse{
		ID:              item.ID,
		ServiceID:       item.ServiceID,
		Description:     item.Description,
		Currency:        item.Currency,
		SalePrice:       item.SalePrice.StringFixed(2),
		Taxable21:       item.Taxable21.StringFixed(2),
		Commission21:    item.Commission21.StringFixed(2),
		Tax21:           item.Tax21.StringFixed(2),
		Taxable105:      item.Taxable105.StringFixed(2),
		Commission105:   item.Commission105.StringFixed(2),
		Tax105:          item.Tax105.StringFixed(2),
		CardInterest:    item.CardInterest.StringFixed(2),
		CardInterestTax: item.CardInterestTax.StringFixed(2),
		Exempt:          item.Exempt.StringFixed(2),
		NonComputable:   item.NonComputable.StringFixed(2),
	}
}

func toVoucherResponse(v ds.Voucher) dto.VoucherResponse {
	resp := dto.VoucherResponse{
		ID:             v.ID,
		UUID:           v.UUID.String(),
		BookingID:      v.BookingID,
		ClientID:       v.ClientID,
		ClientName:     v.RazonSocial,
		CbteTipo:       v.CbteTipo,
		PuntoVenta:     v.PuntoVenta,
		Numero:         v.Numero,
		NumeroCompleto: v.NumeroCompleto,
		NumeroLegacy:   v.NumeroLegacy,
		InternalSeq:    v.InternalSeq,
		CAE:            v.CAE,
		CAEVencimiento: v.CAEVencimiento,
		Moneda:         v.Moneda,
		Cotizacion:     v.Cotizacion.String(),
		ImporteTotal:   v.ImporteTotal.StringFixed(2),
		AsociadaID:     v.AsociadaID,
		CreatedAt:      v.CreatedAt,
	}
	for _, item := range v.Items {
		resp.Items = append(resp.Items, toVoucherItemResponse(item))
	}
	return resp
}

func toBatchResponse(result *invoicing.Result) dto.InvoiceBatchResponse {
	resp := dto.InvoiceBatchResponse{Errors: result.Errors}
	for _, v := range result.Vouchers {
		resp.Invoices = append(resp.Invoices, toVoucherResponse(v))
	}
	switch {
	case result.Success() && len(result.Errors) == 0:
		resp.Status = "success"
	case result.Success():
		resp.Status = "partial"
		resp.Message = "some payers could not be invoiced"
	default:
		resp.Status = "fail"
		resp.Message = result.FirstError()
	}
	return resp
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// ============ Invoicing ============

// CreateInvoices invoices selected booking services across payers
// @Summary Issue invoices for a booking
// @Description Splits the selected services across the payers and requests one CAE per payer and currency. Failed payers are reported without rolling back the rest.
// @Tags Invoicing
// @Accept json
// @Produce json
// @Param request body dto.InvoiceRequest true "Invoice batch"
// @Security BearerAuth
// @Success 201 {object} dto.InvoiceBatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.InvoiceBatchResponse
// @Router /api/invoices [post]
func (h *APIHandler) CreateInvoices(c *gin.Context) {
	var request dto.InvoiceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Invoicing.InvoiceBooking(c.Request.Context(), middleware.AgencyID(c), request)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	resp := toBatchResponse(result)
	if !result.Success() {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CreateCreditNote issues a credit note against an authorized invoice
// @Summary Issue a credit note
// @Tags Invoicing
// @Accept json
// @Produce json
// @Param request body dto.CreditNoteRequest true "Credit note"
// @Security BearerAuth
// @Success 201 {object} dto.InvoiceBatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/credit-notes [post]
func (h *APIHandler) CreateCreditNote(c *gin.Context) {
	var request dto.CreditNoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Invoicing.CreditInvoice(c.Request.Context(), middleware.AgencyID(c), request)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	resp := toBatchResponse(result)
	if !result.Success() {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ============ Vouchers ============

// GetVouchers lists the agency's vouchers
// @Summary List vouchers
// @Tags Vouchers
// @Produce json
// @Param cbte_tipo query int false "Filter by voucher type"
// @Param booking_id query int false "Filter by booking"
// @Security BearerAuth
// @Success 200 {object} dto.VoucherListResponse
// @Router /api/vouchers [get]
func (h *APIHandler) GetVouchers(c *gin.Context) {
	cbteTipo, _ := strconv.Atoi(c.Query("cbte_tipo"))
	bookingID, _ := strconv.ParseUint(c.Query("booking_id"), 10, 32)

	vouchers, err := h.Repository.ListVouchers(middleware.AgencyID(c), cbteTipo, uint(bookingID))
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := dto.VoucherListResponse{Total: len(vouchers)}
	for _, v := range vouchers {
		resp.Vouchers = append(resp.Vouchers, toVoucherResponse(v))
	}
	c.JSON(http.StatusOK, resp)
}

// GetVoucher returns one voucher with its items
// @Summary Voucher detail
// @Tags Vouchers
// @Produce json
// @Param id path int true "Voucher id"
// @Security BearerAuth
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/vouchers/{id} [get]
func (h *APIHandler) GetVoucher(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.Repository.GetVoucher(middleware.AgencyID(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "voucher not found")
			return
		}
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, toVoucherResponse(*v))
}

// GetVoucherQR serves the voucher's AFIP QR image
// @Summary Voucher QR image
// @Tags Vouchers
// @Produce png
// @Param id path int true "Voucher id"
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/vouchers/{id}/qr [get]
func (h *APIHandler) GetVoucherQR(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.Repository.GetVoucher(middleware.AgencyID(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "voucher not found")
			return
		}
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	if v.QRObject == "" || h.MinIOClient == nil {
		h.errorResponse(c, http.StatusNotFound, "voucher has no stored QR image")
		return
	}

	exists, err := h.MinIOClient.FileExists(v.QRObject)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		h.errorResponse(c, http.StatusNotFound, "voucher QR image is missing from storage")
		return
	}

	data, err := h.MinIOClient.DownloadFile(v.QRObject)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

// ============ Bookings ============

// GetBooking returns one booking with its services
// @Summary Booking detail
// @Tags Bookings
// @Produce json
// @Param id path int true "Booking id"
// @Security BearerAuth
// @Success 200 {object} dto.BookingResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/bookings/{id} [get]
func (h *APIHandler) GetBooking(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.Repository.GetBookingWithServices(middleware.AgencyID(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "booking not found")
			return
		}
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := dto.BookingResponse{
		ID:        booking.ID,
		Code:      booking.Code,
		ClientID:  booking.ClientID,
		Status:    booking.Status,
		CreatedAt: booking.CreatedAt,
	}
	for _, svc := range booking.Services {
		resp.Services = append(resp.Services, toBookingServiceResponse(svc))
	}
	c.JSON(http.StatusOK, resp)
}

// GetBookingServices returns the invoiceable lines of a booking
// @Summary Booking service lines
// @Tags Bookings
// @Produce json
// @Param id path int true "Booking id"
// @Security BearerAuth
// @Success 200 {array} dto.BookingServiceResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/bookings/{id}/services [get]
func (h *APIHandler) GetBookingServices(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.Repository.GetBookingWithServices(middleware.AgencyID(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "booking not found")
			return
		}
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	services := make([]dto.BookingServiceResponse, 0, len(booking.Services))
	for _, svc := range booking.Services {
		services = append(services, toBookingServiceResponse(svc))
	}
	c.JSON(http.StatusOK, services)
}

func toBookingServiceResponse(svc ds.BookingService) dto.BookingServiceResponse {
	return dto.BookingServiceResponse{
		ID:          svc.ID,
		Description: svc.Description,
		Currency:    svc.Currency,
		Departure:   svc.Departure,
		Return:      svc.Return,
		SalePrice:   svc.SalePrice.StringFixed(2),
	}
}
