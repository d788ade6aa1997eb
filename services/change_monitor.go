package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/realtime"
)

// ChangeMonitor mem-poll tabel db_changes (diisi trigger SQL) dan
// menyiarkan event ke hub realtime. Untuk perubahan yang menyangkut
// satu session, yang disiarkan adalah session_refresh: client
// me-reload session penuh, tidak mem-patch.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		log.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "tables":
			cm.processTableChange(change)
		case "table_sessions":
			cm.processSessionChange(change)
		case "session_orders", "session_order_items":
			cm.processOrderChange(change)
		case "session_invoices":
			cm.processInvoiceChange(change)
		case "session_payments":
			cm.processPaymentChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			log.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Error committing change batch: %v", err)
		tx.Rollback()
		return
	}
}

func (cm *ChangeMonitor) processTableChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}
	var table models.Table
	if err := cm.DB.First(&table, change.RecordID).Error; err != nil {
		log.Printf("Error fetching table %d: %v", change.RecordID, err)
		return
	}
	realtime.BroadcastTableUpdate(table)
}

func (cm *ChangeMonitor) processSessionChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}
	realtime.BroadcastSessionRefresh(uint(change.RecordID))
}

func (cm *ChangeMonitor) processOrderChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}
	// Record id bisa order atau item; dua-duanya berujung ke reload
	// session pemiliknya.
	var order models.SessionOrder
	if change.TableName == "session_order_items" {
		var item models.SessionOrderItem
		if err := cm.DB.First(&item, change.RecordID).Error; err != nil {
			return
		}
		if err := cm.DB.First(&order, item.OrderID).Error; err != nil {
			return
		}
	} else {
		if err := cm.DB.First(&order, change.RecordID).Error; err != nil {
			return
		}
	}
	realtime.BroadcastSessionRefresh(order.SessionID)
}

func (cm *ChangeMonitor) processInvoiceChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}
	var invoice models.SessionInvoice
	if err := cm.DB.First(&invoice, change.RecordID).Error; err != nil {
		log.Printf("Error fetching invoice %d: %v", change.RecordID, err)
		return
	}
	realtime.BroadcastInvoiceUpdate(invoice)
	realtime.BroadcastSessionRefresh(invoice.SessionID)
}

func (cm *ChangeMonitor) processPaymentChange(change models.DBChange) {
	if change.ActionType != "INSERT" {
		return
	}
	var payment models.SessionPayment
	if err := cm.DB.First(&payment, change.RecordID).Error; err != nil {
		log.Printf("Error fetching payment %d: %v", change.RecordID, err)
		return
	}
	var invoice models.SessionInvoice
	if err := cm.DB.First(&invoice, payment.InvoiceID).Error; err != nil {
		return
	}
	realtime.BroadcastPaymentUpdate(payment, invoice)
	realtime.BroadcastSessionRefresh(invoice.SessionID)
}
