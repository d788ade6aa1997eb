package services

import (
	"errors"
	"os"
	"strconv"

	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
)

// SettingsService menyediakan rate default venue (tax & service
// charge). Kalau venue belum punya record settings, fallback ke env
// TAX_RATE_DEFAULT / SERVICE_CHARGE_DEFAULT.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Rates mengembalikan (taxRate, serviceChargeRate) dalam persen.
func (s *SettingsService) Rates(venueID uint) (float64, float64, error) {
	var settings models.VenueSettings
	err := s.db.Where("venue_id = ?", venueID).First(&settings).Error
	if err == nil {
		return settings.TaxRate, settings.ServiceChargeRate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, upstreamErr("failed to load venue settings", err)
	}

	return envRate("TAX_RATE_DEFAULT", 10), envRate("SERVICE_CHARGE_DEFAULT", 5), nil
}

func envRate(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
