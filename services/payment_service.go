package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/realtime"
	"github.com/yeremiapane/venue-ops/utils"
)

// PaymentService mencatat uang masuk terhadap invoice dan memutuskan
// kapan invoice selesai. Payment append-only: tidak ada retract;
// koreksi = void + invoice ulang (manual, di luar engine).
type PaymentService struct {
	db       *gorm.DB
	sessions *SessionService
	invoices *InvoiceService
}

func NewPaymentService(db *gorm.DB, sessions *SessionService, invoices *InvoiceService) *PaymentService {
	return &PaymentService{db: db, sessions: sessions, invoices: invoices}
}

// ProcessPayment menerapkan satu pembayaran ke invoice: validasi,
// append SessionPayment, naikkan amount_paid, dan hitung ulang status
// (paid bila amount_paid >= total_amount, selain itu partially_paid).
// amount_paid tidak pernah melewati total_amount; kelebihan bayar cash
// diselesaikan sebagai kembalian di boundary UI, bukan di sini.
func (s *PaymentService) ProcessPayment(invoiceID uint, method string, amount float64, reference string) (*models.SessionPayment, *models.SessionInvoice, error) {
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if !models.ValidPaymentMethod(method) {
		return nil, nil, ErrInvalidMethod
	}

	invoice, err := s.invoices.Load(invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice.Status == models.InvoiceVoid || invoice.Status == models.InvoicePaid {
		return nil, nil, ErrInvoiceNotOpen
	}
	if amount > invoice.Balance() {
		return nil, nil, ErrAmountExceedsBalance
	}

	if reference == "" {
		reference = "PAY-" + uuid.NewString()[:8]
	}

	payment := models.SessionPayment{
		InvoiceID: invoiceID,
		Method:    method,
		Amount:    amount,
		Reference: reference,
		PaidAt:    time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		invoice.AmountPaid += amount
		if invoice.AmountPaid >= invoice.TotalAmount {
			invoice.Status = models.InvoicePaid
		} else {
			invoice.Status = models.InvoicePartiallyPaid
		}

		return tx.Model(invoice).Updates(map[string]interface{}{
			"amount_paid": invoice.AmountPaid,
			"status":      invoice.Status,
		}).Error
	})
	if err != nil {
		return nil, nil, upstreamErr("failed to record payment", err)
	}

	realtime.BroadcastPaymentUpdate(payment, *invoice)
	utils.InfoLogger.Printf("Payment %s (%s %s) recorded on invoice %s, status=%s",
		payment.Reference, method, utils.FormatCurrencyIDR(amount), invoice.InvoiceNumber, invoice.Status)

	// Transisi session -> paid bersifat observed; kegagalan di sini
	// tidak membatalkan payment yang sudah tercatat.
	if invoice.Status == models.InvoicePaid {
		if err := s.sessions.ObserveSettlement(invoice.SessionID); err != nil {
			utils.ErrorLogger.Printf("settlement observation failed for session %d: %v", invoice.SessionID, err)
		}
	}

	return &payment, invoice, nil
}

// CashChange menghitung kembalian cash: received - due. Murni
// presentational, tidak disimpan.
func CashChange(received, due float64) float64 {
	change := received - due
	if change < 0 {
		return 0
	}
	return change
}
