package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/billing"
	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/realtime"
	"github.com/yeremiapane/venue-ops/services"
	"github.com/yeremiapane/venue-ops/utils"
)

type SessionController struct {
	DB       *gorm.DB
	Sessions *services.SessionService
	Settings *services.SettingsService
	Promos   *services.PromoService
}

func NewSessionController(db *gorm.DB, sessions *services.SessionService,
	settings *services.SettingsService, promos *services.PromoService) *SessionController {
	return &SessionController{DB: db, Sessions: sessions, Settings: settings, Promos: promos}
}

// OpenSession -> buka sesi baru (walk-in atau dari booking)
func (sc *SessionController) OpenSession(c *gin.Context) {
	var req struct {
		VenueID    uint   `json:"venue_id" binding:"required"`
		TableID    *uint  `json:"table_id"`
		GuestCount int    `json:"guest_count"`
		GuestName  string `json:"guest_name" binding:"required"`
		BookingID  *uint  `json:"booking_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := sc.Sessions.Open(services.OpenParams{
		VenueID:    req.VenueID,
		TableID:    req.TableID,
		GuestCount: req.GuestCount,
		GuestName:  req.GuestName,
		BookingID:  req.BookingID,
	})
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	if result.Advisory != nil {
		utils.ErrorLogger.Printf("Session %d opened with advisory errors: %v",
			result.Session.ID, result.Advisory)
	}
	utils.InfoLogger.Printf("Session %d opened for %s (guests=%d)",
		result.Session.ID, result.Session.GuestName, result.Session.GuestCount)

	realtime.BroadcastSessionUpdate(*result.Session)

	utils.RespondJSON(c, http.StatusCreated, "Session opened", gin.H{
		"session":  result.Session,
		"warnings": advisoryMessages(result.Advisory),
	})
}

// GetSession -> detail 1 session dengan orders + invoices
func (sc *SessionController) GetSession(c *gin.Context) {
	id, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.Reload(id)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

// GetActiveSessions -> semua session yang belum closed, untuk floor view
func (sc *SessionController) GetActiveSessions(c *gin.Context) {
	var sessions []models.TableSession
	if err := sc.DB.Preload("Table").
		Where("status != ?", models.SessionClosed).
		Order("opened_at asc").
		Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active sessions", sessions)
}

// BillPreview -> hitung breakdown live tanpa menyimpan apa pun.
// Dipanggil kasir setiap cart atau adjustment berubah.
func (sc *SessionController) BillPreview(c *gin.Context) {
	id, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// discount/tip dikirim sebagai {kind: percent|fixed, value}; field
	// *_amount lama tetap diterima sebagai shorthand nominal.
	var req struct {
		TaxRate           *float64            `json:"tax_rate"`
		ServiceChargeRate *float64            `json:"service_charge_rate"`
		Discount          *billing.Adjustment `json:"discount"`
		DiscountAmount    float64             `json:"discount_amount"`
		PromoCode         string              `json:"promo_code"`
		Tip               *billing.Adjustment `json:"tip"`
		TipAmount         float64             `json:"tip_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.Reload(id)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	items, err := sc.Sessions.BillableItems(id)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	subtotal := billing.ItemsSubtotal(items)

	taxRate, serviceRate, err := sc.Settings.Rates(session.VenueID)
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

	var promoDiscount float64
	if req.PromoCode != "" {
		promo, err := sc.Promos.Lookup(req.PromoCode)
		if err != nil {
			utils.RespondError(c, services.HTTPStatus(err), err)
			return
		}
		promoDiscount = sc.Promos.ResolveDiscount(promo, subtotal)
	}

	// Persen selalu di-resolve terhadap subtotal, bukan nilai kena pajak
	discountAmount := req.DiscountAmount
	if req.Discount != nil {
		discountAmount = req.Discount.Resolve(subtotal)
	}
	tipAmount := req.TipAmount
	if req.Tip != nil {
		tipAmount = req.Tip.Resolve(subtotal)
	}

	breakdown := billing.Calculate(billing.BillInput{
		Subtotal:          subtotal,
		TaxRate:           taxRate,
		ServiceChargeRate: serviceRate,
		DiscountAmount:    discountAmount,
		PromoDiscount:     promoDiscount,
		DepositCredit:     session.DepositCredit(),
		TipAmount:         tipAmount,
	})

	utils.RespondJSON(c, http.StatusOK, "Bill preview", gin.H{
		"breakdown":   breakdown,
		"item_count":  len(items),
		"grand_total": utils.FormatCurrencyIDR(breakdown.GrandTotal),
	})
}

// CloseSession -> arsipkan session (hanya setelah lunas atau walk-out kosong)
func (sc *SessionController) CloseSession(c *gin.Context) {
	id, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := sc.Sessions.Close(id)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	if result.Advisory != nil {
		utils.ErrorLogger.Printf("Session %d closed with advisory errors: %v", id, result.Advisory)
	}
	utils.InfoLogger.Printf("Session %d closed", id)

	realtime.BroadcastSessionUpdate(*result.Session)
	if result.Session.TableID != nil {
		var table models.Table
		if err := sc.DB.First(&table, *result.Session.TableID).Error; err == nil {
			realtime.BroadcastTableUpdate(table)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Session closed", gin.H{
		"session":  result.Session,
		"warnings": advisoryMessages(result.Advisory),
	})
}

// paramUint parse path param menjadi uint.
func paramUint(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// advisoryMessages meratakan multierror advisory menjadi list string
// untuk ditampilkan sebagai warning di console kasir.
func advisoryMessages(err error) []string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		msgs := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}
