package models

import "time"

// Table statuses
const (
	TableAvailable   = "available"
	TableReserved    = "reserved"
	TableOccupied    = "occupied"
	TableMaintenance = "maintenance"
)

// ValidTableStatus melaporkan apakah status dikenal.
func ValidTableStatus(status string) bool {
	switch status {
	case TableAvailable, TableReserved, TableOccupied, TableMaintenance:
		return true
	}
	return false
}

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableNumber string    `gorm:"type:varchar(50);not null" json:"table_number"`
	SeatCount   int       `gorm:"not null;default:2" json:"seat_count"`
	Zone        string    `gorm:"type:varchar(50)" json:"zone"`
	Status      string    `gorm:"type:varchar(50);not null;default:'available'" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
