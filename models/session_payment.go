package models

import "time"

// Payment methods
const (
	PayCash     = "cash"
	PayCard     = "card"
	PayQRIS     = "qris"
	PayTransfer = "transfer"
	PayGopay    = "gopay"
	PayOvo      = "ovo"
	PayDana     = "dana"
)

// ValidPaymentMethod melaporkan apakah method dikenal.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PayCash, PayCard, PayQRIS, PayTransfer, PayGopay, PayOvo, PayDana:
		return true
	}
	return false
}

// SessionPayment adalah catatan uang masuk terhadap satu invoice.
// Append-only: tidak ada path edit/delete; koreksi = payment baru
// atau void invoice.
type SessionPayment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	InvoiceID uint           `gorm:"not null;index" json:"invoice_id"`
	Invoice   SessionInvoice `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Method    string         `gorm:"type:varchar(20);not null" json:"method"`
	Amount    float64        `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reference string         `gorm:"type:varchar(100)" json:"reference"`
	PaidAt    time.Time      `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}
