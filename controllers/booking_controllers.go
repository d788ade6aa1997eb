package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/utils"
)

type BookingController struct {
	DB *gorm.DB
}

func NewBookingController(db *gorm.DB) *BookingController {
	return &BookingController{DB: db}
}

// CreateBooking -> reservasi baru, opsional dengan deposit
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req struct {
		VenueID       uint      `json:"venue_id" binding:"required"`
		GuestName     string    `json:"guest_name" binding:"required"`
		GuestPhone    string    `json:"guest_phone"`
		PartySize     int       `json:"party_size"`
		DepositAmount float64   `json:"deposit_amount"`
		BookedFor     time.Time `json:"booked_for" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.DepositAmount < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("deposit cannot be negative"))
		return
	}
	if req.PartySize < 1 {
		req.PartySize = 1
	}

	booking := models.Booking{
		VenueID:       req.VenueID,
		GuestName:     req.GuestName,
		GuestPhone:    req.GuestPhone,
		PartySize:     req.PartySize,
		DepositAmount: req.DepositAmount,
		Status:        models.BookingConfirmed,
		BookedFor:     req.BookedFor,
	}
	if err := bc.DB.Create(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Booking %d created for %s (deposit=%s)",
		booking.ID, booking.GuestName, utils.FormatCurrencyIDR(booking.DepositAmount))
	utils.RespondJSON(c, http.StatusCreated, "Booking created", booking)
}

// GetBookings -> daftar booking, filter opsional by tanggal dan status
func (bc *BookingController) GetBookings(c *gin.Context) {
	query := bc.DB.Order("booked_for asc")
	if date := c.Query("date"); date != "" {
		query = query.Where("DATE(booked_for) = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bookings", bookings)
}

// CancelBooking -> batalkan booking yang belum check-in
func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, err := paramUint(c, "booking_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var booking models.Booking
	if err := bc.DB.First(&booking, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if booking.Status != models.BookingConfirmed {
		utils.RespondError(c, http.StatusUnprocessableEntity,
			errors.New("only confirmed bookings can be cancelled"))
		return
	}

	booking.Status = models.BookingCancelled
	if err := bc.DB.Save(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Booking %d cancelled", booking.ID)
	utils.RespondJSON(c, http.StatusOK, "Booking cancelled", booking)
}
