package services

import (
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/realtime"
	"github.com/yeremiapane/venue-ops/utils"
)

// SessionService memiliki lifecycle table session:
// open -> billing -> paid -> closed.
type SessionService struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// OpenParams adalah masukan untuk membuka session baru.
type OpenParams struct {
	VenueID    uint
	TableID    *uint
	GuestCount int
	GuestName  string
	BookingID  *uint
}

// OpenResult memisahkan hasil primer dari hasil advisory. Advisory
// berisi kegagalan side effect best-effort (sync status meja, check-in
// booking) yang TIDAK membatalkan pembukaan session; session dan
// invoice adalah system of record, status meja hanya bookkeeping.
type OpenResult struct {
	Session  *models.TableSession
	Advisory error
}

// Open membuat session baru berstatus open. Gagal dengan MissingGuest
// jika tidak ada identitas tamu sama sekali.
func (s *SessionService) Open(p OpenParams) (*OpenResult, error) {
	if p.GuestName == "" {
		return nil, ErrMissingGuest
	}
	if p.GuestCount < 1 {
		p.GuestCount = 1
	}

	session := models.TableSession{
		VenueID:    p.VenueID,
		TableID:    p.TableID,
		GuestCount: p.GuestCount,
		GuestName:  p.GuestName,
		Status:     models.SessionOpen,
		BookingID:  p.BookingID,
		OpenedAt:   time.Now(),
	}

	if err := s.db.Create(&session).Error; err != nil {
		return nil, upstreamErr("failed to create session", err)
	}

	// Side effect advisory: gagal pun session tetap terbuka.
	var advisory error

	if p.TableID != nil {
		if err := s.db.Model(&models.Table{}).
			Where("id = ?", *p.TableID).
			Update("status", models.TableOccupied).Error; err != nil {
			utils.ErrorLogger.Printf("session %d: table %d occupy sync failed: %v", session.ID, *p.TableID, err)
			advisory = multierror.Append(advisory, err)
		}
	}

	if p.BookingID != nil {
		now := time.Now()
		if err := s.db.Model(&models.Booking{}).
			Where("id = ?", *p.BookingID).
			Updates(map[string]interface{}{
				"status":        models.BookingCheckedIn,
				"checked_in_at": now,
			}).Error; err != nil {
			utils.ErrorLogger.Printf("session %d: booking %d check-in failed: %v", session.ID, *p.BookingID, err)
			advisory = multierror.Append(advisory, err)
		}
	}

	realtime.BroadcastSessionUpdate(session)
	utils.InfoLogger.Printf("Session %d opened for %q (guests=%d)", session.ID, p.GuestName, p.GuestCount)

	return &OpenResult{Session: &session, Advisory: advisory}, nil
}

// Reload mengambil ulang session lengkap dengan orders/items, invoices/
// payments, meja, dan booking. Dipakai juga sebagai response untuk
// notifikasi realtime: client tidak mem-patch, tapi reload penuh.
func (s *SessionService) Reload(sessionID uint) (*models.TableSession, error) {
	var session models.TableSession
	err := s.db.
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("order_number asc") }).
		Preload("Orders.Items").
		Preload("Invoices", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Invoices.Payments").
		Preload("Table").
		Preload("Booking").
		First(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, upstreamErr("failed to load session", err)
	}
	return &session, nil
}

// BillableItems mengembalikan seluruh line billable session: item
// non-cancelled dari order non-cancelled. Ini surface yang dilihat
// calculator dan invoice generator; selalu fresh dari store supaya
// tidak billing terhadap item set yang basi.
func (s *SessionService) BillableItems(sessionID uint) ([]models.SessionOrderItem, error) {
	session, err := s.Reload(sessionID)
	if err != nil {
		return nil, err
	}

	var items []models.SessionOrderItem
	for _, order := range session.Orders {
		if order.Status == models.OrderCancelled {
			continue
		}
		for _, item := range order.Items {
			if item.Billable() {
				items = append(items, item)
			}
		}
	}
	return items, nil
}

// EnsureBilling mentransisikan open -> billing. Dipanggil oleh invoice
// generator saat invoice pertama dibuat; no-op kalau sudah billing.
func (s *SessionService) EnsureBilling(tx *gorm.DB, session *models.TableSession) error {
	if session.Status != models.SessionOpen {
		return nil
	}
	session.Status = models.SessionBilling
	if err := tx.Model(session).Update("status", models.SessionBilling).Error; err != nil {
		return upstreamErr("failed to move session to billing", err)
	}
	return nil
}

// ObserveSettlement memeriksa apakah semua invoice aktif sudah paid dan
// kalau ya menandai session paid. Transisi ini observed, bukan
// transaksional: payment recorder dan settlement monitor sama-sama
// memanggilnya.
func (s *SessionService) ObserveSettlement(sessionID uint) error {
	session, err := s.Reload(sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.SessionBilling {
		return nil
	}

	active := 0
	for _, inv := range session.Invoices {
		if !inv.Active() {
			continue
		}
		active++
		if inv.Status != models.InvoicePaid {
			return nil
		}
	}
	if active == 0 {
		return nil
	}

	if err := s.db.Model(session).Update("status", models.SessionPaid).Error; err != nil {
		return upstreamErr("failed to mark session paid", err)
	}
	session.Status = models.SessionPaid
	realtime.BroadcastSessionUpdate(*session)
	utils.InfoLogger.Printf("Session %d fully settled", sessionID)
	return nil
}

// CloseResult seperti OpenResult: penutupan bisa sukses walau sync
// status meja gagal.
type CloseResult struct {
	Session  *models.TableSession
	Advisory error
}

// Close mengarsipkan session. Hanya boleh dari paid; gagal dengan
// NotSettled selama masih ada balance di invoice aktif. Session tanpa
// invoice dan tanpa item billable (walk-out sebelum pesan) boleh
// langsung ditutup.
func (s *SessionService) Close(sessionID uint) (*CloseResult, error) {
	session, err := s.Reload(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionClosed {
		return nil, ErrSessionClosed
	}

	var outstanding float64
	active := 0
	for _, inv := range session.Invoices {
		if !inv.Active() {
			continue
		}
		active++
		outstanding += inv.Balance()
	}
	if outstanding > 0 {
		return nil, ErrNotSettled
	}

	if session.Status != models.SessionPaid {
		if active > 0 {
			// Semua invoice paid tapi transisi observed belum jalan.
			session.Status = models.SessionPaid
		} else {
			items, err := s.BillableItems(sessionID)
			if err != nil {
				return nil, err
			}
			if len(items) > 0 {
				return nil, ErrSessionNotPaid
			}
		}
	}

	now := time.Now()
	session.Status = models.SessionClosed
	session.ClosedAt = &now
	if err := s.db.Model(session).Updates(map[string]interface{}{
		"status":    models.SessionClosed,
		"closed_at": now,
	}).Error; err != nil {
		return nil, upstreamErr("failed to close session", err)
	}

	var advisory error
	if session.TableID != nil {
		if err := s.db.Model(&models.Table{}).
			Where("id = ?", *session.TableID).
			Update("status", models.TableAvailable).Error; err != nil {
			utils.ErrorLogger.Printf("session %d: table %d release failed: %v", session.ID, *session.TableID, err)
			advisory = multierror.Append(advisory, err)
		}
	}
	if session.BookingID != nil {
		if err := s.db.Model(&models.Booking{}).
			Where("id = ?", *session.BookingID).
			Update("status", models.BookingCompleted).Error; err != nil {
			utils.ErrorLogger.Printf("session %d: booking %d completion failed: %v", session.ID, *session.BookingID, err)
			advisory = multierror.Append(advisory, err)
		}
	}

	realtime.BroadcastSessionUpdate(*session)
	utils.InfoLogger.Printf("Session %d closed", sessionID)

	return &CloseResult{Session: session, Advisory: advisory}, nil
}
