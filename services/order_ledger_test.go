package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/venue-ops/models"
)

func TestCreateOrderValidatesLines(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)

	cases := []struct {
		name string
		line ItemLine
	}{
		{"missing name", ItemLine{Quantity: 1, UnitPrice: 100, Destination: models.DestKitchen}},
		{"zero quantity", ItemLine{Name: "Es Teh", Quantity: 0, UnitPrice: 100, Destination: models.DestBar}},
		{"negative price", ItemLine{Name: "Es Teh", Quantity: 1, UnitPrice: -1, Destination: models.DestBar}},
		{"bad destination", ItemLine{Name: "Es Teh", Quantity: 1, UnitPrice: 100, Destination: "garage"}},
	}
	for _, tc := range cases {
		_, err := ledger.CreateOrder(session.ID, "", []ItemLine{tc.line})
		assert.Error(t, err, tc.name)
	}
}

func TestCreateOrderSequentialNumbers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)

	first := seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Nasi Goreng", 1, 45000)})
	second := seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Sate Ayam", 1, 35000)})

	assert.Equal(t, 1, first.OrderNumber)
	assert.Equal(t, 2, second.OrderNumber)
}

func TestCreateOrderLockedWhenSessionPaid(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)

	require.NoError(t, db.Model(&models.TableSession{}).
		Where("id = ?", session.ID).
		Update("status", models.SessionPaid).Error)

	_, err := ledger.CreateOrder(session.ID, "", []ItemLine{kitchenLine("Es Teh", 1, 10000)})
	assert.ErrorIs(t, err, ErrOrdersLocked)
}

// Order tetap bisa menerima item saat session billing: tamu sering
// menambah pesanan setelah minta bill pertama.
func TestOrdersStillEditableWhileBilling(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)

	require.NoError(t, db.Model(&models.TableSession{}).
		Where("id = ?", session.ID).
		Update("status", models.SessionBilling).Error)

	_, err := ledger.CreateOrder(session.ID, "", []ItemLine{kitchenLine("Es Teh", 1, 10000)})
	assert.NoError(t, err)
}

func TestUpdateItemQuantityRules(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)
	order := seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Nasi Goreng", 2, 45000)})
	itemID := order.Items[0].ID

	// qty < 1 ditolak, harus lewat delete
	_, err := ledger.UpdateItemQuantity(itemID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	item, err := ledger.UpdateItemQuantity(itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	// Setelah served, qty terkunci
	_, err = ledger.MarkItemServed(itemID)
	require.NoError(t, err)
	_, err = ledger.UpdateItemQuantity(itemID, 1)
	assert.ErrorIs(t, err, ErrItemServed)
}

func TestDeleteItemSoftCancels(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)
	order := seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Sate Ayam", 1, 35000)})

	item, err := ledger.DeleteItem(order.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, item.Status)

	// Record masih ada untuk audit
	var got models.SessionOrderItem
	require.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, models.OrderCancelled, got.Status)

	// Item cancelled tidak bisa di-serve
	_, err = ledger.MarkItemServed(item.ID)
	assert.Error(t, err)
}

func TestReconcileEditAppliesDiff(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)
	order := seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Nasi Goreng", 2, 45000),
		kitchenLine("Sate Ayam", 1, 35000),
		kitchenLine("Es Teh", 3, 10000),
	})

	keepID := order.Items[0].ID
	changeID := order.Items[1].ID
	dropID := order.Items[2].ID

	desired := []CartLine{
		{ItemID: &keepID, ItemLine: kitchenLine("Nasi Goreng", 2, 45000)},   // tidak berubah
		{ItemID: &changeID, ItemLine: kitchenLine("Sate Ayam", 4, 35000)},   // qty berubah
		{ItemLine: kitchenLine("Juice Alpukat", 1, 25000)},                  // baru
	}

	plan, err := ledger.ReconcileEdit(order.ID, desired)
	require.NoError(t, err)

	assert.Equal(t, []uint{dropID}, plan.Deletes)
	assert.Equal(t, map[uint]int{changeID: 4}, plan.Updates)
	require.Len(t, plan.Creates, 1)
	assert.Equal(t, "Juice Alpukat", plan.Creates[0].Name)
	require.Len(t, plan.Applied, 1)

	var dropped models.SessionOrderItem
	require.NoError(t, db.First(&dropped, dropID).Error)
	assert.Equal(t, models.OrderCancelled, dropped.Status)

	var changed models.SessionOrderItem
	require.NoError(t, db.First(&changed, changeID).Error)
	assert.Equal(t, 4, changed.Quantity)
}

// Edit dengan cart identik harus no-op: tidak ada operasi, tidak ada
// baris yang tersentuh.
func TestReconcileEditIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)
	order := seedOrderWithItems(t, ledger, session.ID, []ItemLine{
		kitchenLine("Nasi Goreng", 2, 45000),
		kitchenLine("Es Teh", 1, 10000),
	})

	desired := []CartLine{
		{ItemID: &order.Items[0].ID, ItemLine: kitchenLine("Nasi Goreng", 2, 45000)},
		{ItemID: &order.Items[1].ID, ItemLine: kitchenLine("Es Teh", 1, 10000)},
	}

	plan, err := ledger.ReconcileEdit(order.ID, desired)
	require.NoError(t, err)
	assert.True(t, plan.Empty())

	// Ulang sekali lagi dengan cart yang sama
	plan, err = ledger.ReconcileEdit(order.ID, desired)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestReconcileEditRejectsUnknownItem(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)
	order := seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Es Teh", 1, 10000)})

	ghost := uintPtr(9999)
	_, err := ledger.ReconcileEdit(order.ID, []CartLine{
		{ItemID: ghost, ItemLine: kitchenLine("Es Teh", 1, 10000)},
	})
	assert.ErrorIs(t, err, ErrItemNotFound)

	// Qty 0 di edit flow juga ditolak; menghapus = line hilang dari cart
	_, err = ledger.ReconcileEdit(order.ID, []CartLine{
		{ItemID: &order.Items[0].ID, ItemLine: kitchenLine("Es Teh", 0, 10000)},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestReconcileEditProtectsServedItems(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)
	ledger := NewOrderLedger(db, svc)
	session := openTestSession(t, svc)
	order := seedOrderWithItems(t, ledger, session.ID, []ItemLine{kitchenLine("Nasi Goreng", 2, 45000)})

	_, err := ledger.MarkItemServed(order.Items[0].ID)
	require.NoError(t, err)

	// Menghilangkan item served dari cart = delete terselubung, ditolak
	_, err = ledger.ReconcileEdit(order.ID, []CartLine{})
	assert.ErrorIs(t, err, ErrItemServed)

	// Mengubah qty item served juga ditolak
	_, err = ledger.ReconcileEdit(order.ID, []CartLine{
		{ItemID: &order.Items[0].ID, ItemLine: kitchenLine("Nasi Goreng", 9, 45000)},
	})
	assert.ErrorIs(t, err, ErrItemServed)
}
