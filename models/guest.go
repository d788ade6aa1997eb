package models

import "time"

// Guest adalah profil tamu yang dipakai untuk tagging split invoice.
// Phone dan email unik untuk dedup saat manual entry.
type Guest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(30);uniqueIndex" json:"phone"`
	Email     string    `gorm:"type:varchar(100);uniqueIndex" json:"email"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
