package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/realtime"
	"github.com/yeremiapane/venue-ops/utils"
)

// OrderLedger mengakumulasi item pesanan ke dalam order per session
// dan mendukung edit-in-place terhadap order yang sudah ada.
type OrderLedger struct {
	db       *gorm.DB
	sessions *SessionService
}

func NewOrderLedger(db *gorm.DB, sessions *SessionService) *OrderLedger {
	return &OrderLedger{db: db, sessions: sessions}
}

// ItemLine adalah satu line masukan (dari cart UI).
type ItemLine struct {
	MenuItemID  *uint   `json:"menu_item_id,omitempty"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Destination string  `json:"destination"`
	Notes       string  `json:"notes"`
}

func (l ItemLine) validate() error {
	if l.Name == "" {
		return validationErr("MissingName", "item name is required")
	}
	if l.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if l.UnitPrice < 0 {
		return validationErr("NegativePrice", "unit price cannot be negative")
	}
	if l.Destination != models.DestKitchen && l.Destination != models.DestBar {
		return validationErr("InvalidDestination", "destination must be kitchen or bar")
	}
	return nil
}

// CreateOrder membuat order baru bernomor urut dalam session. Item
// hanya boleh masuk saat session open atau billing.
func (l *OrderLedger) CreateOrder(sessionID uint, notes string, lines []ItemLine) (*models.SessionOrder, error) {
	session, err := l.sessions.Reload(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionOpen && session.Status != models.SessionBilling {
		return nil, ErrOrdersLocked
	}
	for _, line := range lines {
		if err := line.validate(); err != nil {
			return nil, err
		}
	}

	order := models.SessionOrder{
		SessionID:   sessionID,
		OrderNumber: len(session.Orders) + 1,
		Status:      models.OrderPending,
		Notes:       notes,
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, line := range lines {
			item := newItem(order.ID, line)
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, upstreamErr("failed to create order", err)
	}

	realtime.BroadcastOrderUpdate(order)
	realtime.BroadcastSessionRefresh(sessionID)
	utils.InfoLogger.Printf("Order #%d created on session %d (%d items)", order.OrderNumber, sessionID, len(order.Items))
	return &order, nil
}

// AddItems menambahkan line ke order yang sudah ada.
func (l *OrderLedger) AddItems(orderID uint, lines []ItemLine) ([]models.SessionOrderItem, error) {
	order, err := l.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := l.ensureEditable(order.SessionID); err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := line.validate(); err != nil {
			return nil, err
		}
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			item := newItem(orderID, line)
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, upstreamErr("failed to add items", err)
	}

	realtime.BroadcastSessionRefresh(order.SessionID)
	return order.Items, nil
}

// UpdateItemQuantity mengganti quantity in place. Qty < 1 ditolak
// dengan InvalidQuantity (caller seharusnya delete), dan item yang
// sudah served tidak bisa diubah lagi.
func (l *OrderLedger) UpdateItemQuantity(itemID uint, qty int) (*models.SessionOrderItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := l.loadItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == models.OrderServed {
		return nil, ErrItemServed
	}

	item.Quantity = qty
	item.UpdatedAt = time.Now()
	if err := l.db.Save(item).Error; err != nil {
		return nil, upstreamErr("failed to update quantity", err)
	}

	realtime.BroadcastSessionRefresh(l.sessionIDForItem(item))
	return item, nil
}

// DeleteItem soft-remove: status jadi cancelled supaya audit trail
// tetap ada dan item keluar dari billing.
func (l *OrderLedger) DeleteItem(itemID uint) (*models.SessionOrderItem, error) {
	item, err := l.loadItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == models.OrderServed {
		return nil, ErrItemServed
	}

	item.Status = models.OrderCancelled
	item.UpdatedAt = time.Now()
	if err := l.db.Save(item).Error; err != nil {
		return nil, upstreamErr("failed to cancel item", err)
	}

	realtime.BroadcastSessionRefresh(l.sessionIDForItem(item))
	return item, nil
}

// MarkItemServed menandai item sudah diantar; sejak ini qty & harga
// immutable.
func (l *OrderLedger) MarkItemServed(itemID uint) (*models.SessionOrderItem, error) {
	item, err := l.loadItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == models.OrderCancelled {
		return nil, stateErr("ItemCancelled", "cancelled items cannot be served")
	}

	item.Status = models.OrderServed
	item.UpdatedAt = time.Now()
	if err := l.db.Save(item).Error; err != nil {
		return nil, upstreamErr("failed to mark item served", err)
	}
	return item, nil
}

// CartLine adalah satu line dari desired cart pada edit flow. ItemID
// terisi untuk line yang sudah ada; nil berarti line baru.
type CartLine struct {
	ItemID *uint `json:"item_id,omitempty"`
	ItemLine
}

// EditPlan adalah hasil diff ReconcileEdit, juga dikembalikan ke UI
// supaya kelihatan operasi apa saja yang dijalankan.
type EditPlan struct {
	Deletes []uint             `json:"deletes"`
	Updates map[uint]int       `json:"updates"` // item id -> new qty
	Creates []ItemLine         `json:"creates"`
	Applied []models.SessionOrderItem `json:"applied,omitempty"`
}

// Empty melaporkan plan tanpa operasi (edit no-op).
func (p *EditPlan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Updates) == 0 && len(p.Creates) == 0
}

// ReconcileEdit menghitung diff minimal antara item order sekarang dan
// desired cart, lalu menerapkannya: delete untuk yang hilang, update
// qty untuk yang berubah, create untuk yang baru. Idempotent: cart
// identik menghasilkan nol operasi, dan line dengan qty tidak berubah
// tidak pernah disentuh.
func (l *OrderLedger) ReconcileEdit(orderID uint, desired []CartLine) (*EditPlan, error) {
	order, err := l.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := l.ensureEditable(order.SessionID); err != nil {
		return nil, err
	}

	existing := make(map[uint]*models.SessionOrderItem, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		if item.Status == models.OrderCancelled {
			continue
		}
		existing[item.ID] = item
	}

	plan := &EditPlan{Updates: make(map[uint]int)}
	seen := make(map[uint]bool, len(desired))

	for _, line := range desired {
		if line.ItemID == nil {
			if err := line.validate(); err != nil {
				return nil, err
			}
			plan.Creates = append(plan.Creates, line.ItemLine)
			continue
		}
		item, ok := existing[*line.ItemID]
		if !ok {
			return nil, ErrItemNotFound
		}
		seen[item.ID] = true
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if line.Quantity != item.Quantity {
			if item.Status == models.OrderServed {
				return nil, ErrItemServed
			}
			plan.Updates[item.ID] = line.Quantity
		}
	}

	for id, item := range existing {
		if !seen[id] {
			if item.Status == models.OrderServed {
				return nil, ErrItemServed
			}
			plan.Deletes = append(plan.Deletes, id)
		}
	}

	if plan.Empty() {
		return plan, nil
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, id := range plan.Deletes {
			if err := tx.Model(&models.SessionOrderItem{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{"status": models.OrderCancelled, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		for id, qty := range plan.Updates {
			if err := tx.Model(&models.SessionOrderItem{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{"quantity": qty, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		for _, line := range plan.Creates {
			item := newItem(orderID, line)
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			plan.Applied = append(plan.Applied, item)
		}
		return nil
	})
	if err != nil {
		return nil, upstreamErr("failed to apply order edit", err)
	}

	realtime.BroadcastSessionRefresh(order.SessionID)
	utils.InfoLogger.Printf("Order %d reconciled: %d deletes, %d updates, %d creates",
		orderID, len(plan.Deletes), len(plan.Updates), len(plan.Creates))
	return plan, nil
}

func newItem(orderID uint, line ItemLine) models.SessionOrderItem {
	return models.SessionOrderItem{
		OrderID:     orderID,
		MenuItemID:  line.MenuItemID,
		Name:        line.Name,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		Destination: line.Destination,
		Status:      models.OrderPending,
		Notes:       line.Notes,
	}
}

func (l *OrderLedger) loadOrder(orderID uint) (*models.SessionOrder, error) {
	var order models.SessionOrder
	if err := l.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, upstreamErr("failed to load order", err)
	}
	return &order, nil
}

func (l *OrderLedger) loadItem(itemID uint) (*models.SessionOrderItem, error) {
	var item models.SessionOrderItem
	if err := l.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, upstreamErr("failed to load item", err)
	}
	return &item, nil
}

func (l *OrderLedger) ensureEditable(sessionID uint) error {
	var session models.TableSession
	if err := l.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return upstreamErr("failed to load session", err)
	}
	if session.Status != models.SessionOpen && session.Status != models.SessionBilling {
		return ErrOrdersLocked
	}
	return nil
}

func (l *OrderLedger) sessionIDForItem(item *models.SessionOrderItem) uint {
	var order models.SessionOrder
	if err := l.db.Select("session_id").First(&order, item.OrderID).Error; err != nil {
		return 0
	}
	return order.SessionID
}
