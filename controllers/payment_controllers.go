package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/realtime"
	"github.com/yeremiapane/venue-ops/services"
	"github.com/yeremiapane/venue-ops/utils"
)

type PaymentController struct {
	DB       *gorm.DB
	Payments *services.PaymentService
}

func NewPaymentController(db *gorm.DB, payments *services.PaymentService) *PaymentController {
	return &PaymentController{DB: db, Payments: payments}
}

// ProcessPayment -> catat satu pembayaran untuk invoice.
// Untuk cash, received boleh lebih dari due; change dihitung di sini
// (amount yang tercatat tetap maksimal sebesar balance).
func (pc *PaymentController) ProcessPayment(c *gin.Context) {
	invoiceID, err := paramUint(c, "invoice_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Method    string  `json:"method" binding:"required"`
		Amount    float64 `json:"amount" binding:"required"`
		Received  float64 `json:"received"` // cash only, optional
		Reference string  `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, invoice, err := pc.Payments.ProcessPayment(invoiceID, req.Method, req.Amount, req.Reference)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	var change float64
	if req.Method == models.PayCash && req.Received > 0 {
		change = services.CashChange(req.Received, req.Amount)
	}

	utils.InfoLogger.Printf("Payment of %s recorded for invoice %s (method=%s, status=%s)",
		utils.FormatCurrencyIDR(payment.Amount), invoice.InvoiceNumber, payment.Method, invoice.Status)

	realtime.BroadcastPaymentUpdate(*payment, *invoice)
	realtime.BroadcastSessionRefresh(invoice.SessionID)

	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", gin.H{
		"payment": payment,
		"invoice": invoice,
		"change":  change,
	})
}

// GetInvoicePayments -> riwayat pembayaran satu invoice (append-only)
func (pc *PaymentController) GetInvoicePayments(c *gin.Context) {
	invoiceID, err := paramUint(c, "invoice_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var payments []models.SessionPayment
	if err := pc.DB.Where("invoice_id = ?", invoiceID).
		Order("paid_at asc").
		Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice payments", payments)
}
