package handler

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/app/middleware"
	"backoffice/internal/app/role"
)

// RegisterAPIRoutes wires the REST API. Every data endpoint sits behind the
// auth middleware; credit notes additionally require supervisor level since
// they reverse already reported turnover.
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	api := router.Group("/api")

	anyRole := authMiddleware.WithAuthCheck(role.Operator, role.Supervisor, role.Admin)

	// ============ Invoicing ============
	api.POST("/invoices", anyRole, h.CreateInvoices)
	api.POST("/credit-notes", authMiddleware.WithAuthCheck(role.Supervisor, role.Admin), h.CreateCreditNote)

	// ============ Vouchers ============
	vouchers := api.Group("/vouchers")
	vouchers.Use(anyRole)
	{
		vouchers.GET("", h.GetVouchers)
		vouchers.GET("/:id", h.GetVoucher)
		vouchers.GET("/:id/qr", h.GetVoucherQR)
	}

	// ============ Bookings ============
	bookings := api.Group("/bookings")
	bookings.Use(anyRole)
	{
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/services", h.GetBookingServices)
	}

	// ============ Authentication ============
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.AuthHandler.RegisterUser)
		auth.POST("/login", h.AuthHandler.LoginUser)

		auth.GET("/profile", anyRole, h.AuthHandler.GetUserProfile)
		auth.POST("/logout", anyRole, h.AuthHandler.LogoutUser)
	}

	router.GET("/ping", h.Ping)
}

// Ping reports liveness
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *APIHandler) Ping(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"message": "pong"})
}
