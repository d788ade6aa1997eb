package models

import "time"

// Booking statuses
const (
	BookingConfirmed = "confirmed"
	BookingCheckedIn = "checked_in"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking adalah reservasi dengan deposit. Deposit-nya menjadi kredit
// yang dikurangkan dari invoice session yang ter-link.
type Booking struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	VenueID       uint       `gorm:"not null;index" json:"venue_id"`
	GuestName     string     `gorm:"type:varchar(100);not null" json:"guest_name"`
	GuestPhone    string     `gorm:"type:varchar(30)" json:"guest_phone"`
	PartySize     int        `gorm:"not null;default:1" json:"party_size"`
	DepositAmount float64    `gorm:"type:decimal(12,2);not null;default:0" json:"deposit_amount"`
	Status        string     `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	BookedFor     time.Time  `gorm:"not null" json:"booked_for"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
