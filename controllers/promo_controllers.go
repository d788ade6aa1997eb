package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/services"
	"github.com/yeremiapane/venue-ops/utils"
)

type PromoController struct {
	DB     *gorm.DB
	Promos *services.PromoService
}

func NewPromoController(db *gorm.DB, promos *services.PromoService) *PromoController {
	return &PromoController{DB: db, Promos: promos}
}

// LookupPromo -> validasi kode promo dan hitung potongannya terhadap
// subtotal yang dikirim kasir
func (pc *PromoController) LookupPromo(c *gin.Context) {
	var req struct {
		Code     string  `json:"code" binding:"required"`
		Subtotal float64 `json:"subtotal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	promo, err := pc.Promos.Lookup(req.Code)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Promo valid", gin.H{
		"promo":    promo,
		"discount": pc.Promos.ResolveDiscount(promo, req.Subtotal),
	})
}

// CreatePromo -> admin membuat kode promo baru
func (pc *PromoController) CreatePromo(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Code           string    `json:"code" binding:"required"`
		Description    string    `json:"description"`
		DiscountType   string    `json:"discount_type" binding:"required"`
		DiscountValue  float64   `json:"discount_value" binding:"required"`
		MaxRedemptions int       `json:"max_redemptions"`
		StartsAt       time.Time `json:"starts_at" binding:"required"`
		EndsAt         time.Time `json:"ends_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	promo := models.Promo{
		Code:           req.Code,
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MaxRedemptions: req.MaxRedemptions,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		Active:         true,
	}
	if err := pc.DB.Create(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Promo %s created (%s %.2f)", promo.Code, promo.DiscountType, promo.DiscountValue)
	utils.RespondJSON(c, http.StatusCreated, "Promo created", promo)
}

// GetAllPromos -> daftar promo untuk admin
func (pc *PromoController) GetAllPromos(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var promos []models.Promo
	if err := pc.DB.Order("created_at desc").Find(&promos).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All promos", promos)
}

// DeactivatePromo -> matikan promo tanpa menghapus riwayatnya
func (pc *PromoController) DeactivatePromo(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	id, err := paramUint(c, "promo_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var promo models.Promo
	if err := pc.DB.First(&promo, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	promo.Active = false
	if err := pc.DB.Save(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Promo deactivated", promo)
}
