package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/billing"
	"github.com/yeremiapane/venue-ops/realtime"
	"github.com/yeremiapane/venue-ops/services"
	"github.com/yeremiapane/venue-ops/utils"
)

type InvoiceController struct {
	DB       *gorm.DB
	Invoices *services.InvoiceService
	Sessions *services.SessionService
	Settings *services.SettingsService
	Promos   *services.PromoService
}

func NewInvoiceController(db *gorm.DB, invoices *services.InvoiceService,
	sessions *services.SessionService, settings *services.SettingsService,
	promos *services.PromoService) *InvoiceController {
	return &InvoiceController{
		DB: db, Invoices: invoices, Sessions: sessions,
		Settings: settings, Promos: promos,
	}
}

// GenerateInvoice -> commit billable items menjadi satu invoice pending.
// Rate default dari venue settings, bisa di-override per request.
func (ic *InvoiceController) GenerateInvoice(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// discount bisa {kind: percent|fixed, value}; discount_amount lama
	// tetap diterima sebagai shorthand nominal
	var req struct {
		TaxRate           *float64            `json:"tax_rate"`
		ServiceChargeRate *float64            `json:"service_charge_rate"`
		Discount          *billing.Adjustment `json:"discount"`
		DiscountAmount    float64             `json:"discount_amount"`
		PromoCode         string              `json:"promo_code"`
		DiscountReason    string              `json:"discount_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := ic.Sessions.Reload(sessionID)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	taxRate, serviceRate, err := ic.Settings.Rates(session.VenueID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	if req.ServiceChargeRate != nil {
		serviceRate = *req.ServiceChargeRate
	}

	params := services.GenerateParams{
		TaxRate:           taxRate,
		ServiceChargeRate: serviceRate,
		DiscountAmount:    req.DiscountAmount,
		DiscountReason:    req.DiscountReason,
		DepositCredit:     session.DepositCredit(),
	}

	// Diskon persen dan promo sama-sama di-resolve terhadap subtotal
	// billable saat ini, sebelum pajak.
	var promoID uint
	if req.Discount != nil || req.PromoCode != "" {
		items, err := ic.Sessions.BillableItems(sessionID)
		if err != nil {
			utils.RespondError(c, services.HTTPStatus(err), err)
			return
		}
		subtotal := billing.ItemsSubtotal(items)

		if req.Discount != nil {
			params.DiscountAmount = req.Discount.Resolve(subtotal)
		}
		if req.PromoCode != "" {
			promo, err := ic.Promos.Lookup(req.PromoCode)
			if err != nil {
				utils.RespondError(c, services.HTTPStatus(err), err)
				return
			}
			params.PromoDiscount = ic.Promos.ResolveDiscount(promo, subtotal)
			if params.DiscountReason == "" {
				params.DiscountReason = "Promo " + promo.Code
			}
			promoID = promo.ID
		}
	}

	invoice, err := ic.Invoices.GenerateInvoice(sessionID, params)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	if promoID != 0 {
		ic.Promos.MarkRedeemed(promoID)
	}

	utils.InfoLogger.Printf("Invoice %s generated for session %d (total=%s)",
		invoice.InvoiceNumber, sessionID, utils.FormatCurrencyIDR(invoice.TotalAmount))
	realtime.BroadcastInvoiceUpdate(*invoice)
	realtime.BroadcastSessionRefresh(sessionID)

	utils.RespondJSON(c, http.StatusCreated, "Invoice generated", invoice)
}

// GetInvoice -> detail invoice beserta payments
func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	invoiceID, err := paramUint(c, "invoice_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	invoice, err := ic.Invoices.Load(invoiceID)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice detail", invoice)
}

// VoidInvoice -> batalkan invoice yang belum menerima pembayaran.
// Hanya admin; invoice dengan amount_paid > 0 ditolak di service.
func (ic *InvoiceController) VoidInvoice(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	invoiceID, err := paramUint(c, "invoice_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	invoice, err := ic.Invoices.VoidInvoice(invoiceID)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	utils.InfoLogger.Printf("Invoice %s voided", invoice.InvoiceNumber)
	realtime.BroadcastInvoiceUpdate(*invoice)
	realtime.BroadcastSessionRefresh(invoice.SessionID)

	utils.RespondJSON(c, http.StatusOK, "Invoice voided", invoice)
}
