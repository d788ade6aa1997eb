package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/billing"
	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/realtime"
	"github.com/yeremiapane/venue-ops/utils"
)

// InvoiceService mematerialisasi invoice dari billable surface session.
type InvoiceService struct {
	db       *gorm.DB
	sessions *SessionService
}

func NewInvoiceService(db *gorm.DB, sessions *SessionService) *InvoiceService {
	return &InvoiceService{db: db, sessions: sessions}
}

// GenerateParams adalah adjustment yang di-snapshot saat generate.
// Tip sengaja tidak ada di sini: tip dicatat saat pembayaran.
type GenerateParams struct {
	TaxRate           float64 `json:"tax_rate"`
	ServiceChargeRate float64 `json:"service_charge_rate"`
	DiscountAmount    float64 `json:"discount_amount"`
	PromoDiscount     float64 `json:"promo_discount"`
	DiscountReason    string  `json:"discount_reason"`
	DepositCredit     float64 `json:"deposit_credit"`
}

// GenerateInvoice membuat satu invoice pending dari billable item set
// saat ini. Gagal dengan EmptyBill kalau subtotal 0, dan dengan
// ActiveInvoice kalau masih ada invoice tunggal aktif (di luar mode
// split). Session open otomatis pindah ke billing.
func (s *InvoiceService) GenerateInvoice(sessionID uint, p GenerateParams) (*models.SessionInvoice, error) {
	if p.TaxRate < 0 || p.ServiceChargeRate < 0 {
		return nil, ErrNegativeRate
	}

	session, err := s.sessions.Reload(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionClosed {
		return nil, ErrSessionClosed
	}

	for _, inv := range session.Invoices {
		if inv.Active() {
			return nil, ErrActiveInvoice
		}
	}

	items, err := s.sessions.BillableItems(sessionID)
	if err != nil {
		return nil, err
	}
	subtotal := billing.ItemsSubtotal(items)
	if subtotal == 0 {
		return nil, ErrEmptyBill
	}

	breakdown := billing.Calculate(billing.BillInput{
		Subtotal:          subtotal,
		TaxRate:           p.TaxRate,
		ServiceChargeRate: p.ServiceChargeRate,
		DiscountAmount:    p.DiscountAmount,
		PromoDiscount:     p.PromoDiscount,
		DepositCredit:     p.DepositCredit,
	})

	invoice := models.SessionInvoice{
		SessionID:      sessionID,
		InvoiceNumber:  newInvoiceNumber(sessionID),
		Subtotal:       breakdown.Subtotal,
		TaxAmount:      breakdown.TaxAmount,
		ServiceCharge:  breakdown.ServiceCharge,
		DiscountAmount: breakdown.TotalDiscount,
		DiscountReason: p.DiscountReason,
		DepositCredit:  breakdown.DepositCredit,
		TotalAmount:    breakdown.GrandTotal,
		AmountPaid:     0,
		Status:         models.InvoicePending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		return s.sessions.EnsureBilling(tx, session)
	})
	if err != nil {
		return nil, upstreamErr("failed to generate invoice", err)
	}

	realtime.BroadcastInvoiceUpdate(invoice)
	utils.InfoLogger.Printf("Invoice %s generated for session %d (total=%s)",
		invoice.InvoiceNumber, sessionID, utils.FormatCurrencyIDR(invoice.TotalAmount))
	return &invoice, nil
}

// GuestInfo adalah identitas tamu yang ditempel ke tiap split invoice.
type GuestInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	GuestID *uint  `json:"guest_id,omitempty"`
}

// SplitParams adalah masukan generate split invoice. Tip ikut dipartisi
// karena untuk split-by-invoice breakdown gabungan (termasuk tip) yang
// dibagi rata ke tamu.
type SplitParams struct {
	SplitCount        int         `json:"split_count"`
	TaxRate           float64     `json:"tax_rate"`
	ServiceChargeRate float64     `json:"service_charge_rate"`
	TotalDiscount     float64     `json:"total_discount"`
	DiscountReason    string      `json:"discount_reason"`
	DepositCredit     float64     `json:"deposit_credit"`
	TipAmount         float64     `json:"tip_amount"`
	Guests            []GuestInfo `json:"guests"`
}

// GenerateSplitInvoices menghitung satu breakdown gabungan lalu
// mempartisi total menjadi SplitCount bagian yang jumlahnya persis
// sama dengan total (sisa pembagian ke share pertama). Tiap invoice
// diberi nomor i/N dan satu guest. Komponen (subtotal/tax/service/
// discount/deposit) ikut dipartisi dengan kebijakan sen yang sama;
// invariant yang dijaga ketat adalah sum(total_amount) == grand total.
func (s *InvoiceService) GenerateSplitInvoices(sessionID uint, p SplitParams) ([]models.SessionInvoice, error) {
	if p.SplitCount < 2 {
		return nil, validationErr("InvalidSplitCount", "split count must be at least 2")
	}
	if len(p.Guests) != p.SplitCount {
		return nil, ErrGuestCountMismatch
	}
	if p.TaxRate < 0 || p.ServiceChargeRate < 0 {
		return nil, ErrNegativeRate
	}
	if p.TotalDiscount < 0 || p.DepositCredit < 0 || p.TipAmount < 0 {
		return nil, ErrNegativeAdjustment
	}

	session, err := s.sessions.Reload(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionClosed {
		return nil, ErrSessionClosed
	}
	for _, inv := range session.Invoices {
		if inv.Active() {
			return nil, ErrActiveInvoice
		}
	}

	items, err := s.sessions.BillableItems(sessionID)
	if err != nil {
		return nil, err
	}
	subtotal := billing.ItemsSubtotal(items)
	if subtotal == 0 {
		return nil, ErrEmptyBill
	}

	breakdown := billing.Calculate(billing.BillInput{
		Subtotal:          subtotal,
		TaxRate:           p.TaxRate,
		ServiceChargeRate: p.ServiceChargeRate,
		DiscountAmount:    p.TotalDiscount,
		DepositCredit:     p.DepositCredit,
		TipAmount:         p.TipAmount,
	})
	if breakdown.GrandTotal < 0 {
		return nil, validationErr("NegativeTotal", "cannot split a negative total; reduce discounts or deposit credit")
	}

	totals, err := billing.SplitShares(breakdown.GrandTotal, p.SplitCount)
	if err != nil {
		return nil, validationErr("InvalidSplitCount", err.Error())
	}
	// Rate dan adjustment sudah divalidasi non-negatif, jadi komponen
	// breakdown juga non-negatif; splitErr menjaga kalau asumsi itu
	// dilanggar supaya tidak pernah mengindeks slice nil.
	var splitErr error
	split := func(value float64) []float64 {
		shares, err := billing.SplitShares(value, p.SplitCount)
		if err != nil && splitErr == nil {
			splitErr = err
		}
		return shares
	}
	subtotals := split(breakdown.Subtotal)
	taxes := split(breakdown.TaxAmount)
	serviceCharges := split(breakdown.ServiceCharge)
	discounts := split(breakdown.TotalDiscount)
	deposits := split(breakdown.DepositCredit)
	if splitErr != nil {
		return nil, validationErr("NegativeComponent", splitErr.Error())
	}

	base := newInvoiceNumber(sessionID)
	invoices := make([]models.SessionInvoice, 0, p.SplitCount)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < p.SplitCount; i++ {
			guest := p.Guests[i]
			invoice := models.SessionInvoice{
				SessionID:      sessionID,
				InvoiceNumber:  fmt.Sprintf("%s-%d/%d", base, i+1, p.SplitCount),
				Subtotal:       subtotals[i],
				TaxAmount:      taxes[i],
				ServiceCharge:  serviceCharges[i],
				DiscountAmount: discounts[i],
				DiscountReason: p.DiscountReason,
				DepositCredit:  deposits[i],
				TotalAmount:    totals[i],
				AmountPaid:     0,
				Status:         models.InvoicePending,
				GuestName:      guest.Name,
				GuestPhone:     guest.Phone,
				GuestEmail:     guest.Email,
				GuestID:        guest.GuestID,
			}
			if err := tx.Create(&invoice).Error; err != nil {
				return err
			}
			invoices = append(invoices, invoice)
		}
		return s.sessions.EnsureBilling(tx, session)
	})
	if err != nil {
		return nil, upstreamErr("failed to generate split invoices", err)
	}

	for _, inv := range invoices {
		realtime.BroadcastInvoiceUpdate(inv)
	}
	utils.InfoLogger.Printf("Session %d split into %d invoices (grand total=%s)",
		sessionID, p.SplitCount, utils.FormatCurrencyIDR(breakdown.GrandTotal))
	return invoices, nil
}

// VoidInvoice menandai invoice void. Void bersifat terminal; invoice
// yang sudah menerima pembayaran tidak bisa di-void lewat jalur ini.
func (s *InvoiceService) VoidInvoice(invoiceID uint) (*models.SessionInvoice, error) {
	invoice, err := s.Load(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceVoid {
		return invoice, nil
	}
	if invoice.AmountPaid > 0 {
		return nil, stateErr("InvoiceHasPayments", "an invoice with recorded payments cannot be voided")
	}

	invoice.Status = models.InvoiceVoid
	if err := s.db.Model(invoice).Update("status", models.InvoiceVoid).Error; err != nil {
		return nil, upstreamErr("failed to void invoice", err)
	}

	realtime.BroadcastInvoiceUpdate(*invoice)
	utils.InfoLogger.Printf("Invoice %s voided", invoice.InvoiceNumber)
	return invoice, nil
}

// Load mengambil satu invoice dengan payments-nya.
func (s *InvoiceService) Load(invoiceID uint) (*models.SessionInvoice, error) {
	var invoice models.SessionInvoice
	if err := s.db.Preload("Payments").First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, upstreamErr("failed to load invoice", err)
	}
	return &invoice, nil
}

// newInvoiceNumber: INV-YYYYMMDD-<session>-<fragment acak>. Fragment
// uuid menjaga unik saat beberapa invoice dibuat di hari yang sama.
func newInvoiceNumber(sessionID uint) string {
	frag := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("INV-%s-%d-%s", time.Now().Format("20060102"), sessionID, frag)
}
