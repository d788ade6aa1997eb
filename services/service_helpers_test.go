package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/utils"
)

// setupTestDB -> SQLite in-memory + migrate semua model engine
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Guest{},
		&models.Booking{},
		&models.TableSession{},
		&models.SessionOrder{},
		&models.SessionOrderItem{},
		&models.SessionInvoice{},
		&models.SessionPayment{},
		&models.Promo{},
		&models.VenueSettings{},
		&models.DBChange{},
	))
	return db
}

// openTestSession membuka session sederhana tanpa meja.
func openTestSession(t *testing.T, svc *SessionService) *models.TableSession {
	t.Helper()
	result, err := svc.Open(OpenParams{
		VenueID:    1,
		GuestCount: 2,
		GuestName:  "Budi",
	})
	require.NoError(t, err)
	require.NoError(t, result.Advisory)
	return result.Session
}

// seedOrderWithItems menaruh satu order berisi lines pada session.
func seedOrderWithItems(t *testing.T, ledger *OrderLedger, sessionID uint, lines []ItemLine) *models.SessionOrder {
	t.Helper()
	order, err := ledger.CreateOrder(sessionID, "", lines)
	require.NoError(t, err)
	return order
}

func kitchenLine(name string, qty int, price float64) ItemLine {
	return ItemLine{Name: name, Quantity: qty, UnitPrice: price, Destination: models.DestKitchen}
}

func uintPtr(v uint) *uint { return &v }
