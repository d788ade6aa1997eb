package models

import "time"

// Session statuses. A session is created directly in "open"; "unopened"
// only exists on the UI side before the party is seated.
const (
	SessionOpen    = "open"
	SessionBilling = "billing"
	SessionPaid    = "paid"
	SessionClosed  = "closed"
)

// TableSession adalah satu kunjungan (party) dari duduk sampai settlement.
// TableID nullable untuk walk-in tanpa meja.
type TableSession struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	VenueID    uint             `gorm:"not null;index" json:"venue_id"`
	TableID    *uint            `gorm:"index" json:"table_id,omitempty"`
	Table      *Table           `gorm:"foreignKey:TableID" json:"table,omitempty"`
	GuestCount int              `gorm:"not null;default:1" json:"guest_count"`
	GuestName  string           `gorm:"type:varchar(100);not null" json:"guest_name"`
	Status     string           `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	BookingID  *uint            `gorm:"index" json:"booking_id,omitempty"`
	Booking    *Booking         `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	OpenedAt   time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt   *time.Time       `json:"closed_at,omitempty"`
	Orders     []SessionOrder   `gorm:"foreignKey:SessionID" json:"orders"`
	Invoices   []SessionInvoice `gorm:"foreignKey:SessionID" json:"invoices"`
	CreatedAt  time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null" json:"updated_at"`
}

// DepositCredit mengembalikan kredit deposit dari booking yang ter-link
// (0 jika tidak ada booking).
func (s *TableSession) DepositCredit() float64 {
	if s.Booking == nil {
		return 0
	}
	return s.Booking.DepositAmount
}
