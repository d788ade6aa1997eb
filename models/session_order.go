package models

import "time"

// Order / item statuses
const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderServed    = "served"
	OrderCancelled = "cancelled"
)

// Item destinations
const (
	DestKitchen = "kitchen"
	DestBar     = "bar"
)

// SessionOrder adalah satu submission item ke dapur/bar, bernomor urut
// dalam session-nya. Order cancelled tidak pernah masuk ke billing.
type SessionOrder struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	SessionID   uint               `gorm:"not null;index" json:"session_id"`
	Session     TableSession       `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	OrderNumber int                `gorm:"not null" json:"order_number"`
	Status      string             `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes       string             `gorm:"type:text" json:"notes"`
	Items       []SessionOrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null" json:"updated_at"`
}
