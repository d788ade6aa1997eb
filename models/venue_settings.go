package models

import "time"

// VenueSettings menyimpan rate default venue. TaxRate dan
// ServiceChargeRate dalam persen (10 = 10%).
type VenueSettings struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	VenueID           uint      `gorm:"uniqueIndex;not null" json:"venue_id"`
	TaxRate           float64   `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	ServiceChargeRate float64   `gorm:"type:decimal(5,2);not null;default:0" json:"service_charge_rate"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}
