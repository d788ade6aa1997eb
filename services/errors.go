package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind mengelompokkan error engine untuk mapping ke HTTP status dan
// kebijakan propagasi. Upstream selalu retryable oleh caller;
// sisanya menolak operasi dan harus diperbaiki di sisi input/state.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindState      Kind = "state"
	KindNotFound   Kind = "not_found"
	KindUpstream   Kind = "upstream"
)

// Error adalah error engine dengan kode stabil yang bisa dicek caller.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is mencocokkan berdasarkan Code supaya sentinel di bawah bisa
// dipakai dengan errors.Is meski message-nya di-wrap ulang.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func validationErr(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func conflictErr(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func stateErr(code, msg string) *Error {
	return &Error{Kind: KindState, Code: code, Message: msg}
}

func notFoundErr(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

// upstreamErr membungkus kegagalan persistence/jaringan. Tidak pernah
// ditelan untuk operasi primer.
func upstreamErr(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Code: "Upstream", Message: msg, Err: err}
}

// Sentinel errors engine. Pesan human-readable karena setiap kegagalan
// operasi uang harus tampil ke user, tidak boleh silent.
var (
	ErrInvalidQuantity      = validationErr("InvalidQuantity", "quantity must be at least 1; delete the item instead")
	ErrEmptyBill            = validationErr("EmptyBill", "no billable items to invoice")
	ErrMissingGuest         = validationErr("MissingGuest", "a guest name is required to open a session")
	ErrInvalidAmount        = validationErr("InvalidAmount", "payment amount must be greater than zero")
	ErrAmountExceedsBalance = validationErr("AmountExceedsBalance", "payment amount exceeds the invoice balance")
	ErrGuestCountMismatch   = validationErr("GuestCountMismatch", "guest info count does not match split count")
	ErrIncompleteAssignment = validationErr("IncompleteAssignment", "all split slots must have a guest assigned")
	ErrGuestFieldsRequired  = validationErr("GuestFieldsRequired", "name, phone and email are all required for manual guest entry")
	ErrInvalidMethod        = validationErr("InvalidMethod", "unknown payment method")
	ErrNegativeRate         = validationErr("NegativeRate", "tax and service charge rates cannot be negative")
	ErrNegativeAdjustment   = validationErr("NegativeAdjustment", "discounts, tips and deposit credit cannot be negative")

	ErrDuplicateGuest  = conflictErr("DuplicateGuest", "a guest with this phone or email already exists; search for them instead")
	ErrTableInUse      = conflictErr("TableInUse", "table has an active session")
	ErrActiveInvoice   = conflictErr("ActiveInvoice", "session already has an active invoice")
	ErrPaymentInFlight = conflictErr("PaymentInFlight", "previous payment is still being processed")

	ErrNotSettled     = stateErr("NotSettled", "session still has unpaid invoices")
	ErrSessionClosed  = stateErr("SessionClosed", "session is closed and can no longer be modified")
	ErrSessionNotPaid = stateErr("SessionNotPaid", "session can only be closed after full settlement")
	ErrItemServed     = stateErr("ItemServed", "quantity and price are immutable once an item is served")
	ErrInvoiceNotOpen = stateErr("InvoiceNotOpen", "invoice does not accept payments in its current status")
	ErrNotSplitMode   = stateErr("NotSplitMode", "no split flow is active for this session")
	ErrSlotsAssigned  = stateErr("SlotsAssigned", "cannot shrink split count below the number of assigned guests")
	ErrOrdersLocked   = stateErr("OrdersLocked", "items can only be added while the session is open or billing")

	ErrSessionNotFound = notFoundErr("SessionNotFound", "session not found")
	ErrOrderNotFound   = notFoundErr("OrderNotFound", "order not found")
	ErrItemNotFound    = notFoundErr("ItemNotFound", "order item not found")
	ErrInvoiceNotFound = notFoundErr("InvoiceNotFound", "invoice not found")
	ErrPromoNotFound   = notFoundErr("PromoNotFound", "promo code not found or not active")
)

// HTTPStatus memetakan Kind ke status code untuk layer controller.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindState:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
