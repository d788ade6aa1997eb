package models

import "time"

// SessionOrderItem adalah satu line dalam order. MenuItemID nullable
// untuk custom item; nama dan harga di-snapshot saat pemesanan supaya
// perubahan katalog tidak mengubah bill berjalan.
type SessionOrderItem struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	OrderID     uint         `gorm:"not null;index" json:"order_id"`
	Order       SessionOrder `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID  *uint        `json:"menu_item_id,omitempty"`
	Name        string       `gorm:"type:varchar(100);not null" json:"name"`
	Quantity    int          `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Destination string       `gorm:"type:varchar(20);not null;default:'kitchen'" json:"destination"`
	Status      string       `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes       string       `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

// Billable melaporkan apakah line ini ikut dihitung ke subtotal.
func (i *SessionOrderItem) Billable() bool {
	return i.Status != OrderCancelled
}

// LineTotal = quantity * unit price.
func (i *SessionOrderItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}
