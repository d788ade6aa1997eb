package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/venue-ops/models"
)

func TestGenerateInvoiceEmptyBill(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)

	_, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	assert.ErrorIs(t, err, ErrEmptyBill)
}

func TestGenerateInvoiceSnapshotsBreakdown(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)

	seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Nasi Goreng", 2, 45000), // 90rb
		kitchenLine("Es Teh", 1, 10000),      // 10rb
	})

	invoice, err := invoices.GenerateInvoice(session.ID, GenerateParams{
		TaxRate:           10,
		ServiceChargeRate: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, 100000.0, invoice.Subtotal)
	assert.Equal(t, 10000.0, invoice.TaxAmount)
	assert.Equal(t, 5000.0, invoice.ServiceCharge)
	assert.Equal(t, 115000.0, invoice.TotalAmount)
	assert.Equal(t, models.InvoicePending, invoice.Status)
	assert.Contains(t, invoice.InvoiceNumber, "INV-")

	// Invoice pertama memindahkan session ke billing
	got, err := svc.Reload(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionBilling, got.Status)
}

func TestGenerateInvoiceExcludesCancelledItems(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)

	order := seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Nasi Goreng", 1, 45000),
		kitchenLine("Sate Ayam", 1, 35000),
	})
	_, err := ledger.DeleteItem(order.Items[1].ID)
	require.NoError(t, err)

	invoice, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	require.NoError(t, err)
	assert.Equal(t, 45000.0, invoice.Subtotal)
}

func TestGenerateInvoiceRejectsSecondActive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Es Teh", 1, 10000)})

	_, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	require.NoError(t, err)

	_, err = invoices.GenerateInvoice(session.ID, GenerateParams{})
	assert.ErrorIs(t, err, ErrActiveInvoice)
}

// Void membuka jalan untuk invoice pengganti (mis. koreksi discount).
func TestGenerateInvoiceAfterVoid(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Es Teh", 1, 10000)})

	first, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	require.NoError(t, err)
	_, err = invoices.VoidInvoice(first.ID)
	require.NoError(t, err)

	// Void kedua kali adalah no-op
	again, err := invoices.VoidInvoice(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceVoid, again.Status)

	second, err := invoices.GenerateInvoice(session.ID, GenerateParams{DiscountAmount: 2000})
	require.NoError(t, err)
	assert.Equal(t, 8000.0, second.TotalAmount)
}

func TestGenerateInvoiceAppliesDepositCredit(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Nasi Goreng", 2, 50000)})

	invoice, err := invoices.GenerateInvoice(session.ID, GenerateParams{
		DepositCredit: 40000,
	})
	require.NoError(t, err)
	assert.Equal(t, 40000.0, invoice.DepositCredit)
	assert.Equal(t, 60000.0, invoice.TotalAmount)
}

func TestVoidInvoiceWithPaymentsRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	payments := NewPaymentService(db, svc, invoices)
	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Es Teh", 1, 10000)})

	invoice, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	require.NoError(t, err)
	_, _, err = payments.ProcessPayment(invoice.ID, models.PayCash, 5000, "")
	require.NoError(t, err)

	_, err = invoices.VoidInvoice(invoice.ID)
	assert.Error(t, err)

	// Invoice tetap aktif, jadi generate ulang masih ditolak
	fresh, err := invoices.GenerateInvoice(session.ID, GenerateParams{})
	assert.ErrorIs(t, err, ErrActiveInvoice)
	assert.Nil(t, fresh)
}

func TestGenerateSplitInvoicesPartitionsExactly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Paket Keluarga", 1, 100000),
	})

	guests := []GuestInfo{
		{Name: "Budi", Phone: "0811", Email: "budi@example.com"},
		{Name: "Sari", Phone: "0812", Email: "sari@example.com"},
		{Name: "Tono", Phone: "0813", Email: "tono@example.com"},
	}

	out, err := invoices.GenerateSplitInvoices(session.ID, SplitParams{
		SplitCount: 3,
		Guests:     guests,
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, 33334.0, out[0].TotalAmount)
	assert.Equal(t, 33333.0, out[1].TotalAmount)
	assert.Equal(t, 33333.0, out[2].TotalAmount)

	var sum float64
	for i, inv := range out {
		sum += inv.TotalAmount
		assert.Equal(t, guests[i].Name, inv.GuestName)
		assert.Contains(t, inv.InvoiceNumber, fmt.Sprintf("-%d/3", i+1))
	}
	assert.Equal(t, 100000.0, sum)
}

func TestGenerateSplitInvoicesGuestCountMismatch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Es Teh", 1, 10000)})

	_, err := invoices.GenerateSplitInvoices(session.ID, SplitParams{
		SplitCount: 3,
		Guests:     []GuestInfo{{Name: "Budi"}},
	})
	assert.ErrorIs(t, err, ErrGuestCountMismatch)
}

// Tip ikut masuk ke grand total yang dipartisi pada split invoice.
func TestGenerateSplitInvoicesIncludesTip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Paket", 1, 90000)})

	out, err := invoices.GenerateSplitInvoices(session.ID, SplitParams{
		SplitCount: 2,
		TipAmount:  10000,
		Guests: []GuestInfo{
			{Name: "Budi", Phone: "0811", Email: "budi@example.com"},
			{Name: "Sari", Phone: "0812", Email: "sari@example.com"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 50000.0, out[0].TotalAmount)
	assert.Equal(t, 50000.0, out[1].TotalAmount)
}

// Rate negatif ditolak sebelum breakdown dihitung, baik single maupun
// split; tanpa validasi ini komponen negatif membuat partisi gagal.
func TestGenerateInvoiceRejectsNegativeRate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Es Teh", 1, 10000)})

	_, err := invoices.GenerateInvoice(session.ID, GenerateParams{TaxRate: -5})
	assert.ErrorIs(t, err, ErrNegativeRate)

	_, err = invoices.GenerateInvoice(session.ID, GenerateParams{ServiceChargeRate: -1})
	assert.ErrorIs(t, err, ErrNegativeRate)
}

func TestGenerateSplitInvoicesRejectsNegativeRate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	invoices := NewInvoiceService(db, svc)
	session := openTestSession(t, svc)
	seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Paket", 1, 100000)})

	guests := []GuestInfo{
		{Name: "Budi", Phone: "0811", Email: "budi@example.com"},
		{Name: "Sari", Phone: "0812", Email: "sari@example.com"},
	}

	_, err := invoices.GenerateSplitInvoices(session.ID, SplitParams{
		SplitCount: 2,
		TaxRate:    -5,
		Guests:     guests,
	})
	assert.ErrorIs(t, err, ErrNegativeRate)
	assert.Equal(t, 400, HTTPStatus(err))

	_, err = invoices.GenerateSplitInvoices(session.ID, SplitParams{
		SplitCount:    2,
		TotalDiscount: -10000,
		Guests:        guests,
	})
	assert.ErrorIs(t, err, ErrNegativeAdjustment)

	// Tidak ada invoice parsial yang bocor ke database
	var count int64
	db.Model(&models.SessionInvoice{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// Input yang sama dengan rate valid tetap jalan
	out, err := invoices.GenerateSplitInvoices(session.ID, SplitParams{
		SplitCount: 2,
		TaxRate:    10,
		Guests:     guests,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 110000.0, out[0].TotalAmount+out[1].TotalAmount)
}
