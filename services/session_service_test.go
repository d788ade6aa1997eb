package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/venue-ops/models"
)

func TestOpenSessionRequiresGuestName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)

	_, err := svc.Open(OpenParams{VenueID: 1})
	assert.ErrorIs(t, err, ErrMissingGuest)
}

func TestOpenSessionDefaultsGuestCount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)

	result, err := svc.Open(OpenParams{VenueID: 1, GuestName: "Sari", GuestCount: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Session.GuestCount)
	assert.Equal(t, models.SessionOpen, result.Session.Status)
}

func TestOpenSessionOccupiesTable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)

	table := models.Table{TableNumber: "A1", SeatCount: 4, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)

	result, err := svc.Open(OpenParams{
		VenueID:   1,
		TableID:   &table.ID,
		GuestName: "Budi",
	})
	require.NoError(t, err)
	require.NoError(t, result.Advisory)

	var got models.Table
	require.NoError(t, db.First(&got, table.ID).Error)
	assert.Equal(t, models.TableOccupied, got.Status)
}

func TestOpenSessionChecksInBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)

	booking := models.Booking{
		VenueID: 1, GuestName: "Budi", PartySize: 2,
		DepositAmount: 100000, Status: models.BookingConfirmed,
	}
	require.NoError(t, db.Create(&booking).Error)

	result, err := svc.Open(OpenParams{
		VenueID:   1,
		GuestName: "Budi",
		BookingID: &booking.ID,
	})
	require.NoError(t, err)
	require.NoError(t, result.Advisory)

	var got models.Booking
	require.NoError(t, db.First(&got, booking.ID).Error)
	assert.Equal(t, models.BookingCheckedIn, got.Status)
	assert.NotNil(t, got.CheckedInAt)

	// Deposit booking kebaca sebagai kredit session
	session, err := svc.Reload(result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, session.DepositCredit())
}

func TestBillableItemsExcludesCancelled(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)

	session := openTestSession(t, svc)
	order := seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Nasi Goreng", 2, 45000),
		kitchenLine("Sate Ayam", 1, 35000),
	})

	_, err := ledger.DeleteItem(order.Items[1].ID)
	require.NoError(t, err)

	items, err := svc.BillableItems(session.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Nasi Goreng", items[0].Name)
}

// Close saat masih ada balance harus gagal dengan NotSettled.
func TestCloseSessionNotSettled(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	payments := NewPaymentService(db, svc, invoices)

	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Nasi Goreng", 2, 25000),
	})

	invoice, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	require.NoError(t, err)

	// Bayar sebagian saja
	_, _, err = payments.ProcessPayment(invoice.ID, models.PayCash, 20000, "")
	require.NoError(t, err)

	_, err = svc.Close(session.ID)
	assert.ErrorIs(t, err, ErrNotSettled)
}

// Walk-out tanpa pesanan: session boleh langsung ditutup.
func TestCloseSessionWalkOut(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)

	session := openTestSession(t, svc)
	result, err := svc.Close(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionClosed, result.Session.Status)
	assert.NotNil(t, result.Session.ClosedAt)
}

// Session dengan item billable tapi tanpa invoice tidak boleh ditutup.
func TestCloseSessionWithUnbilledItems(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)

	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Es Teh", 2, 10000),
	})

	_, err := svc.Close(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotPaid)
}

func TestCloseSessionReleasesTableAndBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	payments := NewPaymentService(db, svc, invoices)

	table := models.Table{TableNumber: "B2", Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)
	booking := models.Booking{VenueID: 1, GuestName: "Budi", Status: models.BookingConfirmed}
	require.NoError(t, db.Create(&booking).Error)

	result, err := svc.Open(OpenParams{
		VenueID: 1, TableID: &table.ID, GuestName: "Budi", BookingID: &booking.ID,
	})
	require.NoError(t, err)
	session := result.Session

	seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Nasi Goreng", 1, 45000),
	})
	invoice, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	require.NoError(t, err)
	_, _, err = payments.ProcessPayment(invoice.ID, models.PayCash, invoice.TotalAmount, "")
	require.NoError(t, err)

	closed, err := svc.Close(session.ID)
	require.NoError(t, err)
	require.NoError(t, closed.Advisory)

	var gotTable models.Table
	require.NoError(t, db.First(&gotTable, table.ID).Error)
	assert.Equal(t, models.TableAvailable, gotTable.Status)

	var gotBooking models.Booking
	require.NoError(t, db.First(&gotBooking, booking.ID).Error)
	assert.Equal(t, models.BookingCompleted, gotBooking.Status)
}

func TestCloseSessionTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)

	session := openTestSession(t, svc)
	_, err := svc.Close(session.ID)
	require.NoError(t, err)

	_, err = svc.Close(session.ID)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// ObserveSettlement menandai session paid saat semua invoice aktif paid;
// invoice void tidak ikut dihitung.
func TestObserveSettlementIgnoresVoid(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	payments := NewPaymentService(db, svc, invoices)

	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Nasi Goreng", 1, 50000),
	})

	first, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	require.NoError(t, err)
	_, err = invoices.VoidInvoice(first.ID)
	require.NoError(t, err)

	second, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	require.NoError(t, err)
	_, _, err = payments.ProcessPayment(second.ID, models.PayQRIS, second.TotalAmount, "")
	require.NoError(t, err)

	got, err := svc.Reload(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPaid, got.Status)
}
