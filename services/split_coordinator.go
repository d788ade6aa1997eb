package services

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/utils"
)

// SplitMode: satu billing cycle memilih paling banyak satu mode.
type SplitMode string

const (
	ModeNone    SplitMode = "none"
	ModePayment SplitMode = "split_payment" // satu invoice, N pembayaran berurutan
	ModeInvoice SplitMode = "split_invoice" // N invoice, satu per tamu
)

// SplitGuest adalah assignment transient untuk satu slot split invoice.
// Hanya hidup selama flow assignment; yang persisten adalah salinan di
// invoice hasil generate.
type SplitGuest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	GuestID *uint  `json:"guest_id,omitempty"`
}

func (g SplitGuest) filled() bool {
	return g.Name != ""
}

// BillingContext adalah seluruh state split untuk satu session dalam
// satu object eksplisit: mode, posisi payer, slot tamu, dan invoice
// yang sedang dipilih. Tidak ada flag yang tercecer di tempat lain.
type BillingContext struct {
	SessionID            uint         `json:"session_id"`
	Mode                 SplitMode    `json:"mode"`
	SplitPayersCount     int          `json:"split_payers_count"`
	CurrentPayerNumber   int          `json:"current_payer_number"`
	SplitCount           int          `json:"split_count"`
	SelectedInvoiceIndex int          `json:"selected_invoice_index"`
	Guests               []SplitGuest `json:"guests"`
	InvoiceIDs           []uint       `json:"invoice_ids"`

	// submitting mencegah re-entry: payment berikutnya tidak boleh
	// masuk sebelum hasil payment sebelumnya diketahui.
	submitting bool
}

func (ctx *BillingContext) reset() {
	ctx.Mode = ModeNone
	ctx.SplitPayersCount = 0
	ctx.CurrentPayerNumber = 0
	ctx.SplitCount = 0
	ctx.SelectedInvoiceIndex = 0
	ctx.Guests = nil
	ctx.InvoiceIDs = nil
	ctx.submitting = false
}

// AssignedCount menghitung slot yang sudah terisi tamu.
func (ctx *BillingContext) AssignedCount() int {
	n := 0
	for _, g := range ctx.Guests {
		if g.filled() {
			n++
		}
	}
	return n
}

// SplitCoordinator mengorkestrasi dua mode split yang saling eksklusif
// per billing cycle dan memegang BillingContext per session.
type SplitCoordinator struct {
	db       *gorm.DB
	invoices *InvoiceService
	payments *PaymentService

	mu       sync.Mutex
	contexts map[uint]*BillingContext
}

func NewSplitCoordinator(db *gorm.DB, invoices *InvoiceService, payments *PaymentService) *SplitCoordinator {
	return &SplitCoordinator{
		db:       db,
		invoices: invoices,
		payments: payments,
		contexts: make(map[uint]*BillingContext),
	}
}

// Context mengembalikan (atau membuat) BillingContext session.
func (c *SplitCoordinator) Context(sessionID uint) *BillingContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contextLocked(sessionID)
}

func (c *SplitCoordinator) contextLocked(sessionID uint) *BillingContext {
	ctx, ok := c.contexts[sessionID]
	if !ok {
		ctx = &BillingContext{SessionID: sessionID, Mode: ModeNone}
		c.contexts[sessionID] = ctx
	}
	return ctx
}

// Reset membuang state split session (dipanggil saat session ditutup).
func (c *SplitCoordinator) Reset(sessionID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx, ok := c.contexts[sessionID]; ok {
		ctx.reset()
	}
}

/* ---------- Split-payment mode: satu invoice, N pembayaran ---------- */

// StartSplitPayment mengaktifkan mode split payment terhadap invoice
// tunggal yang sudah ada.
func (c *SplitCoordinator) StartSplitPayment(sessionID uint, payersCount int) (*BillingContext, error) {
	if payersCount < 2 {
		return nil, validationErr("InvalidPayersCount", "split payment needs at least 2 payers")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.contextLocked(sessionID)
	if ctx.Mode == ModeInvoice {
		return nil, stateErr("ModeConflict", "session is already in split-invoice mode")
	}

	ctx.Mode = ModePayment
	ctx.SplitPayersCount = payersCount
	ctx.CurrentPayerNumber = 1
	utils.InfoLogger.Printf("Session %d: split payment started (%d payers)", sessionID, payersCount)
	return ctx, nil
}

// SplitPaymentResult melaporkan hasil satu pembayaran split dan posisi
// flow sesudahnya.
type SplitPaymentResult struct {
	Payment     *models.SessionPayment `json:"payment"`
	Invoice     *models.SessionInvoice `json:"invoice"`
	NextPayer   int                    `json:"next_payer"`   // 0 = flow selesai
	FlowDone    bool                   `json:"flow_done"`
	InvoicePaid bool                   `json:"invoice_paid"`
}

// RecordSplitPayment mencatat pembayaran payer saat ini. Selama invoice
// belum paid dan masih ada payer tersisa, flow dibuka lagi untuk payer
// berikutnya. Saat invoice paid ATAU semua payer sudah kontribusi,
// mode di-reset. Guard submitting menolak submit ganda untuk slot
// payer yang sama sebelum hasil sebelumnya diketahui.
func (c *SplitCoordinator) RecordSplitPayment(sessionID, invoiceID uint, method string, amount float64, reference string) (*SplitPaymentResult, error) {
	c.mu.Lock()
	ctx := c.contextLocked(sessionID)
	if ctx.Mode != ModePayment {
		c.mu.Unlock()
		return nil, ErrNotSplitMode
	}
	if ctx.submitting {
		c.mu.Unlock()
		return nil, ErrPaymentInFlight
	}
	ctx.submitting = true
	c.mu.Unlock()

	payment, invoice, err := c.payments.ProcessPayment(invoiceID, method, amount, reference)

	c.mu.Lock()
	defer c.mu.Unlock()
	ctx.submitting = false
	if err != nil {
		// Gagal: slot payer tidak maju, user retry eksplisit.
		return nil, err
	}

	result := &SplitPaymentResult{
		Payment:     payment,
		Invoice:     invoice,
		InvoicePaid: invoice.Status == models.InvoicePaid,
	}

	if result.InvoicePaid || ctx.CurrentPayerNumber >= ctx.SplitPayersCount {
		ctx.reset()
		result.FlowDone = true
		utils.InfoLogger.Printf("Session %d: split payment flow finished", sessionID)
		return result, nil
	}

	ctx.CurrentPayerNumber++
	result.NextPayer = ctx.CurrentPayerNumber
	return result, nil
}

/* ---------- Split-invoice mode: N invoice, satu per tamu ---------- */

// StartSplitInvoice menyiapkan slot tamu untuk split invoice.
func (c *SplitCoordinator) StartSplitInvoice(sessionID uint, splitCount int) (*BillingContext, error) {
	if splitCount < 2 {
		return nil, validationErr("InvalidSplitCount", "split invoice needs at least 2 guests")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.contextLocked(sessionID)
	if ctx.Mode == ModePayment {
		return nil, stateErr("ModeConflict", "session is already in split-payment mode")
	}

	ctx.Mode = ModeInvoice
	ctx.SplitCount = splitCount
	ctx.SelectedInvoiceIndex = 0
	ctx.Guests = make([]SplitGuest, splitCount)
	ctx.InvoiceIDs = nil
	utils.InfoLogger.Printf("Session %d: split invoice started (%d slots)", sessionID, splitCount)
	return ctx, nil
}

// ResizeSplitCount mengubah jumlah slot. Kebijakan eksplisit (bukan
// resize diam-diam): mengecilkan di bawah jumlah tamu yang sudah
// ter-assign ditolak supaya tidak ada assignment yang hilang tanpa
// sepengetahuan kasir.
func (c *SplitCoordinator) ResizeSplitCount(sessionID uint, newCount int) (*BillingContext, error) {
	if newCount < 2 {
		return nil, validationErr("InvalidSplitCount", "split invoice needs at least 2 guests")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.contextLocked(sessionID)
	if ctx.Mode != ModeInvoice {
		return nil, ErrNotSplitMode
	}
	if newCount < ctx.AssignedCount() {
		return nil, ErrSlotsAssigned
	}

	guests := make([]SplitGuest, newCount)
	copy(guests, ctx.Guests)
	ctx.Guests = guests
	ctx.SplitCount = newCount
	return ctx, nil
}

// AssignGuestByLookup mengisi slot dari profil Guest yang sudah ada.
func (c *SplitCoordinator) AssignGuestByLookup(sessionID uint, slot int, guestID uint) (*BillingContext, error) {
	var guest models.Guest
	if err := c.db.First(&guest, guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("GuestNotFound", "guest profile not found")
		}
		return nil, upstreamErr("failed to look up guest", err)
	}
	return c.assign(sessionID, slot, SplitGuest{
		Name:    guest.Name,
		Phone:   guest.Phone,
		Email:   guest.Email,
		GuestID: &guest.ID,
	})
}

// AssignGuestManual mengisi slot lewat entry manual. Nama, phone, dan
// email semua wajib; dedup terhadap profil yang ada berdasarkan phone/
// email. Konflik duplikat adalah error recoverable: caller diminta
// search, bukan gagal total.
func (c *SplitCoordinator) AssignGuestManual(sessionID uint, slot int, name, phone, email string) (*BillingContext, error) {
	if name == "" || phone == "" || email == "" {
		return nil, ErrGuestFieldsRequired
	}

	var existing models.Guest
	err := c.db.Where("phone = ? OR email = ?", phone, email).First(&existing).Error
	switch {
	case err == nil:
		return nil, ErrDuplicateGuest
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, upstreamErr("failed to check guest duplicates", err)
	}

	guest := models.Guest{Name: name, Phone: phone, Email: email}
	if err := c.db.Create(&guest).Error; err != nil {
		return nil, upstreamErr("failed to create guest profile", err)
	}

	return c.assign(sessionID, slot, SplitGuest{
		Name:    guest.Name,
		Phone:   guest.Phone,
		Email:   guest.Email,
		GuestID: &guest.ID,
	})
}

func (c *SplitCoordinator) assign(sessionID uint, slot int, guest SplitGuest) (*BillingContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.contextLocked(sessionID)
	if ctx.Mode != ModeInvoice {
		return nil, ErrNotSplitMode
	}
	if slot < 0 || slot >= len(ctx.Guests) {
		return nil, validationErr("InvalidSlot", "guest slot out of range")
	}

	ctx.Guests[slot] = guest
	return ctx, nil
}

// GenerateAssigned membuat split invoice dari slot yang sudah lengkap.
// Diblokir dengan IncompleteAssignment selama masih ada slot kosong.
func (c *SplitCoordinator) GenerateAssigned(sessionID uint, p SplitParams) ([]models.SessionInvoice, error) {
	c.mu.Lock()
	ctx := c.contextLocked(sessionID)
	if ctx.Mode != ModeInvoice {
		c.mu.Unlock()
		return nil, ErrNotSplitMode
	}
	if ctx.AssignedCount() < ctx.SplitCount {
		c.mu.Unlock()
		return nil, ErrIncompleteAssignment
	}

	p.SplitCount = ctx.SplitCount
	p.Guests = make([]GuestInfo, ctx.SplitCount)
	for i, g := range ctx.Guests {
		p.Guests[i] = GuestInfo{Name: g.Name, Phone: g.Phone, Email: g.Email, GuestID: g.GuestID}
	}
	c.mu.Unlock()

	invoices, err := c.invoices.GenerateSplitInvoices(sessionID, p)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ctx.InvoiceIDs = make([]uint, len(invoices))
	for i, inv := range invoices {
		ctx.InvoiceIDs[i] = inv.ID
	}
	ctx.SelectedInvoiceIndex = 0
	return invoices, nil
}

// SelectInvoice memindahkan pilihan kasir ke invoice ke-index
// (0-based). Index di luar range ditolak.
func (c *SplitCoordinator) SelectInvoice(sessionID uint, index int) (*BillingContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.contextLocked(sessionID)
	if ctx.Mode != ModeInvoice || len(ctx.InvoiceIDs) == 0 {
		return nil, ErrNotSplitMode
	}
	if index < 0 || index >= len(ctx.InvoiceIDs) {
		return nil, validationErr("InvalidInvoiceIndex", "selected invoice index is out of range")
	}
	ctx.SelectedInvoiceIndex = index
	return ctx, nil
}

// SelectedInvoice mengembalikan invoice yang sedang dipilih untuk
// display/pembayaran.
func (c *SplitCoordinator) SelectedInvoice(sessionID uint) (*models.SessionInvoice, error) {
	c.mu.Lock()
	ctx := c.contextLocked(sessionID)
	if ctx.Mode != ModeInvoice || len(ctx.InvoiceIDs) == 0 {
		c.mu.Unlock()
		return nil, ErrNotSplitMode
	}
	id := ctx.InvoiceIDs[ctx.SelectedInvoiceIndex]
	c.mu.Unlock()

	return c.invoices.Load(id)
}

// PaySelected mencatat pembayaran untuk invoice terpilih dan, kalau
// invoice itu selesai, memajukan pilihan ke invoice berikutnya yang
// belum paid. Mode selesai saat semua invoice paid.
func (c *SplitCoordinator) PaySelected(sessionID uint, method string, amount float64, reference string) (*SplitPaymentResult, error) {
	c.mu.Lock()
	ctx := c.contextLocked(sessionID)
	if ctx.Mode != ModeInvoice || len(ctx.InvoiceIDs) == 0 {
		c.mu.Unlock()
		return nil, ErrNotSplitMode
	}
	if ctx.submitting {
		c.mu.Unlock()
		return nil, ErrPaymentInFlight
	}
	ctx.submitting = true
	invoiceID := ctx.InvoiceIDs[ctx.SelectedInvoiceIndex]
	c.mu.Unlock()

	payment, invoice, err := c.payments.ProcessPayment(invoiceID, method, amount, reference)

	c.mu.Lock()
	defer c.mu.Unlock()
	ctx.submitting = false
	if err != nil {
		return nil, err
	}

	result := &SplitPaymentResult{
		Payment:     payment,
		Invoice:     invoice,
		InvoicePaid: invoice.Status == models.InvoicePaid,
	}

	if result.InvoicePaid {
		next, ok := c.nextUnpaidLocked(ctx)
		if !ok {
			ctx.reset()
			result.FlowDone = true
			utils.InfoLogger.Printf("Session %d: all split invoices settled", sessionID)
			return result, nil
		}
		ctx.SelectedInvoiceIndex = next
	}
	result.NextPayer = ctx.SelectedInvoiceIndex + 1
	return result, nil
}

// nextUnpaidLocked mencari index invoice berikutnya dengan status
// selain paid, mulai dari posisi sekarang. Mutex harus sudah dipegang.
func (c *SplitCoordinator) nextUnpaidLocked(ctx *BillingContext) (int, bool) {
	n := len(ctx.InvoiceIDs)
	for step := 1; step <= n; step++ {
		i := (ctx.SelectedInvoiceIndex + step) % n
		var invoice models.SessionInvoice
		if err := c.db.Select("status").First(&invoice, ctx.InvoiceIDs[i]).Error; err != nil {
			utils.ErrorLogger.Printf("split advance: invoice %d load failed: %v", ctx.InvoiceIDs[i], err)
			continue
		}
		if invoice.Status != models.InvoicePaid && invoice.Status != models.InvoiceVoid {
			return i, true
		}
	}
	return 0, false
}
