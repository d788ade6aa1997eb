package models

import "time"

// Invoice statuses
const (
	InvoicePending       = "pending"
	InvoicePartiallyPaid = "partially_paid"
	InvoicePaid          = "paid"
	InvoiceVoid          = "void"
)

// SessionInvoice adalah snapshot billing yang sudah di-commit.
// Invariant: TotalAmount = Subtotal + TaxAmount + ServiceCharge
// - DiscountAmount - DepositCredit. Tip tidak disimpan di total;
// tip ditambahkan saat pembayaran supaya invoice tidak perlu
// di-snapshot ulang tiap tip berubah.
type SessionInvoice struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	SessionID      uint         `gorm:"not null;index" json:"session_id"`
	Session        TableSession `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	InvoiceNumber  string       `gorm:"type:varchar(50);not null" json:"invoice_number"`
	Subtotal       float64      `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount      float64      `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	ServiceCharge  float64      `gorm:"type:decimal(12,2);not null;default:0" json:"service_charge"`
	DiscountAmount float64      `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	DiscountReason string       `gorm:"type:varchar(255)" json:"discount_reason"`
	DepositCredit  float64      `gorm:"type:decimal(12,2);not null;default:0" json:"deposit_credit"`
	TotalAmount    float64      `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	AmountPaid     float64      `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	Status         string       `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	// Identitas guest, hanya terisi untuk split invoice.
	GuestName  string `gorm:"type:varchar(100)" json:"guest_name,omitempty"`
	GuestPhone string `gorm:"type:varchar(30)" json:"guest_phone,omitempty"`
	GuestEmail string `gorm:"type:varchar(100)" json:"guest_email,omitempty"`
	GuestID    *uint  `json:"guest_id,omitempty"`

	Payments  []SessionPayment `gorm:"foreignKey:InvoiceID" json:"payments"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
}

// Active melaporkan apakah invoice masih ikut outstanding balance.
func (inv *SessionInvoice) Active() bool {
	return inv.Status != InvoiceVoid
}

// Balance adalah sisa yang harus dibayar. Invoice void tidak punya balance.
func (inv *SessionInvoice) Balance() float64 {
	if !inv.Active() {
		return 0
	}
	return inv.TotalAmount - inv.AmountPaid
}
