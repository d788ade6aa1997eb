package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/services"
	"github.com/yeremiapane/venue-ops/utils"
)

type GuestController struct {
	DB *gorm.DB
}

func NewGuestController(db *gorm.DB) *GuestController {
	return &GuestController{DB: db}
}

// SearchGuests -> cari tamu terdaftar by nama/phone/email, dipakai
// kasir saat mengisi slot split invoice
func (gc *GuestController) SearchGuests(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		utils.RespondJSON(c, http.StatusOK, "Guest search", []models.Guest{})
		return
	}

	var guests []models.Guest
	like := "%" + q + "%"
	if err := gc.DB.
		Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like).
		Limit(20).
		Find(&guests).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest search", guests)
}

// CreateGuest -> daftarkan tamu baru. Phone dan email unik; duplikat
// diarahkan ke search.
func (gc *GuestController) CreateGuest(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing int64
	gc.DB.Model(&models.Guest{}).
		Where("phone = ? OR email = ?", req.Phone, req.Email).
		Count(&existing)
	if existing > 0 {
		utils.RespondError(c, http.StatusConflict, services.ErrDuplicateGuest)
		return
	}

	guest := models.Guest{Name: req.Name, Phone: req.Phone, Email: req.Email}
	if err := gc.DB.Create(&guest).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Guest registered: %s (%s)", guest.Name, guest.Phone)
	utils.RespondJSON(c, http.StatusCreated, "Guest registered", guest)
}

// GetGuest -> detail 1 tamu
func (gc *GuestController) GetGuest(c *gin.Context) {
	id, err := paramUint(c, "guest_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var guest models.Guest
	if err := gc.DB.First(&guest, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest detail", guest)
}
