package models

import "time"

// Staff roles. Admin melihat laporan dan mengelola promo; cashier
// memegang billing dan payment; staff hanya console order.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
	RoleStaff   = "staff"
)

// ValidRole dipakai saat registrasi; role di luar daftar ditolak.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCashier, RoleStaff:
		return true
	}
	return false
}

// User adalah akun staff venue yang login ke console kasir/dapur.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
