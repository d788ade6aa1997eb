package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
)

// SettlementMonitor adalah pengamat latar belakang untuk transisi
// billing -> paid. Transisi ini observed, bukan transaksional: payment
// recorder memanggil ObserveSettlement langsung, tapi kalau proses itu
// gagal (atau payment masuk lewat jalur lain), monitor ini yang
// menyapu session billing yang sebenarnya sudah lunas.
type SettlementMonitor struct {
	db       *gorm.DB
	sessions *SessionService
	stopChan chan struct{}
	Interval time.Duration
}

func NewSettlementMonitor(db *gorm.DB, sessions *SessionService) *SettlementMonitor {
	return &SettlementMonitor{
		db:       db,
		sessions: sessions,
		stopChan: make(chan struct{}),
		Interval: 30 * time.Second,
	}
}

func (m *SettlementMonitor) Start() {
	go func() {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stopChan:
				return
			}
		}
	}()
	log.Println("Settlement monitor started")
}

func (m *SettlementMonitor) Stop() {
	close(m.stopChan)
}

func (m *SettlementMonitor) sweep() {
	var ids []uint
	if err := m.db.Model(&models.TableSession{}).
		Where("status = ?", models.SessionBilling).
		Pluck("id", &ids).Error; err != nil {
		log.Printf("Settlement sweep query failed: %v", err)
		return
	}

	for _, id := range ids {
		if err := m.sessions.ObserveSettlement(id); err != nil {
			log.Printf("Settlement sweep: session %d observation failed: %v", id, err)
		}
	}
}
