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

type SplitController struct {
	DB          *gorm.DB
	Coordinator *services.SplitCoordinator
	Sessions    *services.SessionService
	Settings    *services.SettingsService
}

func NewSplitController(db *gorm.DB, coordinator *services.SplitCoordinator,
	sessions *services.SessionService, settings *services.SettingsService) *SplitController {
	return &SplitController{DB: db, Coordinator: coordinator, Sessions: sessions, Settings: settings}
}

// GetContext -> state split saat ini untuk satu session (mode, posisi
// payer, slot tamu). Console pakai ini setelah reload.
func (spc *SplitController) GetContext(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Split context", spc.Coordinator.Context(sessionID))
}

// ResetContext -> batalkan flow split yang sedang berjalan
func (spc *SplitController) ResetContext(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	spc.Coordinator.Reset(sessionID)
	utils.RespondJSON(c, http.StatusOK, "Split context reset", spc.Coordinator.Context(sessionID))
}

// StartSplitPayment -> satu invoice dibayar bergantian oleh N payer
func (spc *SplitController) StartSplitPayment(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		PayersCount int `json:"payers_count" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx, err := spc.Coordinator.StartSplitPayment(sessionID, req.PayersCount)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	utils.InfoLogger.Printf("Session %d: split payment started with %d payers",
		sessionID, req.PayersCount)
	utils.RespondJSON(c, http.StatusOK, "Split payment started", ctx)
}

// RecordSplitPayment -> catat pembayaran payer saat ini dan majukan flow
func (spc *SplitController) RecordSplitPayment(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		InvoiceID uint    `json:"invoice_id" binding:"required"`
		Method    string  `json:"method" binding:"required"`
		Amount    float64 `json:"amount" binding:"required"`
		Reference string  `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := spc.Coordinator.RecordSplitPayment(sessionID, req.InvoiceID,
		req.Method, req.Amount, req.Reference)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	realtime.BroadcastPaymentUpdate(*result.Payment, *result.Invoice)
	realtime.BroadcastSessionRefresh(sessionID)

	utils.RespondJSON(c, http.StatusCreated, "Split payment recorded", result)
}

// StartSplitInvoice -> mulai mode N invoice per tamu
func (spc *SplitController) StartSplitInvoice(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		SplitCount int `json:"split_count" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx, err := spc.Coordinator.StartSplitInvoice(sessionID, req.SplitCount)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	utils.InfoLogger.Printf("Session %d: split invoice started with %d slots",
		sessionID, req.SplitCount)
	utils.RespondJSON(c, http.StatusOK, "Split invoice started", ctx)
}

// ResizeSplit -> ubah jumlah slot. Menge-shrink di bawah jumlah tamu
// yang sudah ter-assign ditolak.
func (spc *SplitController) ResizeSplit(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		SplitCount int `json:"split_count" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx, err := spc.Coordinator.ResizeSplitCount(sessionID, req.SplitCount)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Split count updated", ctx)
}

// AssignGuest -> isi satu slot, dari lookup guest terdaftar atau entri
// manual (nama+phone+email wajib lengkap untuk manual)
func (spc *SplitController) AssignGuest(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Slot    int    `json:"slot"`
		GuestID *uint  `json:"guest_id"`
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var ctx *services.BillingContext
	if req.GuestID != nil {
		ctx, err = spc.Coordinator.AssignGuestByLookup(sessionID, req.Slot, *req.GuestID)
	} else {
		ctx, err = spc.Coordinator.AssignGuestManual(sessionID, req.Slot, req.Name, req.Phone, req.Email)
	}
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest assigned", ctx)
}

// GenerateSplitInvoices -> generate N invoice dari slot yang sudah
// lengkap. Semua slot wajib berisi tamu.
func (spc *SplitController) GenerateSplitInvoices(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// discount/tip bisa {kind: percent|fixed, value}; field nominal
	// lama tetap diterima
	var req struct {
		TaxRate           *float64            `json:"tax_rate"`
		ServiceChargeRate *float64            `json:"service_charge_rate"`
		Discount          *billing.Adjustment `json:"discount"`
		TotalDiscount     float64             `json:"total_discount"`
		DiscountReason    string              `json:"discount_reason"`
		Tip               *billing.Adjustment `json:"tip"`
		TipAmount         float64             `json:"tip_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := spc.Sessions.Reload(sessionID)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	taxRate, serviceRate, err := spc.Settings.Rates(session.VenueID)
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

	discountAmount := req.TotalDiscount
	tipAmount := req.TipAmount
	if req.Discount != nil || req.Tip != nil {
		items, err := spc.Sessions.BillableItems(sessionID)
		if err != nil {
			utils.RespondError(c, services.HTTPStatus(err), err)
			return
		}
		subtotal := billing.ItemsSubtotal(items)
		if req.Discount != nil {
			discountAmount = req.Discount.Resolve(subtotal)
		}
		if req.Tip != nil {
			tipAmount = req.Tip.Resolve(subtotal)
		}
	}

	invoices, err := spc.Coordinator.GenerateAssigned(sessionID, services.SplitParams{
		TaxRate:           taxRate,
		ServiceChargeRate: serviceRate,
		TotalDiscount:     discountAmount,
		DiscountReason:    req.DiscountReason,
		DepositCredit:     session.DepositCredit(),
		TipAmount:         tipAmount,
	})
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	utils.InfoLogger.Printf("Session %d: %d split invoices generated", sessionID, len(invoices))
	realtime.BroadcastSessionRefresh(sessionID)

	utils.RespondJSON(c, http.StatusCreated, "Split invoices generated", invoices)
}

// SelectInvoice -> pindahkan pilihan kasir ke invoice ke-index
func (spc *SplitController) SelectInvoice(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx, err := spc.Coordinator.SelectInvoice(sessionID, req.Index)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice selected", ctx)
}

// GetSelectedInvoice -> invoice yang sedang dipilih untuk display
func (spc *SplitController) GetSelectedInvoice(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	invoice, err := spc.Coordinator.SelectedInvoice(sessionID)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Selected invoice", invoice)
}

// PaySelected -> bayar invoice terpilih; pilihan otomatis maju ke
// invoice berikutnya yang belum paid
func (spc *SplitController) PaySelected(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Method    string  `json:"method" binding:"required"`
		Amount    float64 `json:"amount" binding:"required"`
		Reference string  `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := spc.Coordinator.PaySelected(sessionID, req.Method, req.Amount, req.Reference)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	realtime.BroadcastPaymentUpdate(*result.Payment, *result.Invoice)
	realtime.BroadcastSessionRefresh(sessionID)

	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", result)
}
