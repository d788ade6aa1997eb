package models

import "time"

// Promo discount types
const (
	PromoPercent = "percent"
	PromoFixed   = "fixed"
)

type Promo struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description    string    `gorm:"type:varchar(255)" json:"description"`
	DiscountType   string    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue  float64   `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	MaxRedemptions int       `gorm:"not null;default:0" json:"max_redemptions"` // 0 = unlimited
	RedeemedCount  int       `gorm:"not null;default:0" json:"redeemed_count"`
	StartsAt       time.Time `gorm:"not null" json:"starts_at"`
	EndsAt         time.Time `gorm:"not null" json:"ends_at"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
