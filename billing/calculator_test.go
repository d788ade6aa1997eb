package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/venue-ops/models"
)

func TestCalculateBasicBreakdown(t *testing.T) {
	// Subtotal 100rb, pajak 10%, service 5% -> total 115rb
	out := Calculate(BillInput{
		Subtotal:          100000,
		TaxRate:           10,
		ServiceChargeRate: 5,
	})

	assert.Equal(t, 10000.0, out.TaxAmount)
	assert.Equal(t, 5000.0, out.ServiceCharge)
	assert.Equal(t, 115000.0, out.GrandTotal)
}

func TestCalculateWithFlatDiscount(t *testing.T) {
	out := Calculate(BillInput{
		Subtotal:          100000,
		TaxRate:           10,
		ServiceChargeRate: 5,
		DiscountAmount:    15000,
	})

	assert.Equal(t, 15000.0, out.TotalDiscount)
	assert.Equal(t, 100000.0, out.GrandTotal)
}

func TestCalculateCombinesManualAndPromoDiscount(t *testing.T) {
	out := Calculate(BillInput{
		Subtotal:       200000,
		DiscountAmount: 10000,
		PromoDiscount:  20000,
	})

	assert.Equal(t, 30000.0, out.TotalDiscount)
	assert.Equal(t, 170000.0, out.GrandTotal)
}

func TestCalculateTipAndDeposit(t *testing.T) {
	out := Calculate(BillInput{
		Subtotal:      50000,
		TipAmount:     5000,
		DepositCredit: 20000,
	})

	assert.Equal(t, 5000.0, out.TipAmount)
	assert.Equal(t, 35000.0, out.GrandTotal)
}

// Preview boleh negatif secara default: deposit yang melebihi tagihan
// dipakai kasir sebagai sinyal refund.
func TestCalculateNegativeTotalAllowedByDefault(t *testing.T) {
	out := Calculate(BillInput{
		Subtotal:      10000,
		DepositCredit: 50000,
	})
	assert.Equal(t, -40000.0, out.GrandTotal)
}

func TestCalculateNegativeTotalClamped(t *testing.T) {
	out := Calculate(BillInput{
		Subtotal:           10000,
		DepositCredit:      50000,
		ClampNegativeTotal: true,
	})
	assert.Equal(t, 0.0, out.GrandTotal)
}

func TestCalculateIdempotent(t *testing.T) {
	in := BillInput{
		Subtotal:          123456,
		TaxRate:           11,
		ServiceChargeRate: 5,
		DiscountAmount:    7000,
		TipAmount:         2500,
	}
	first := Calculate(in)
	second := Calculate(in)
	assert.Equal(t, first, second)
}

func TestAdjustmentResolve(t *testing.T) {
	percent := Adjustment{Kind: AdjustPercent, Value: 10}
	fixed := Adjustment{Kind: AdjustFixed, Value: 15000}

	assert.Equal(t, 10000.0, percent.Resolve(100000))
	assert.Equal(t, 15000.0, fixed.Resolve(100000))
	// Fixed amount tidak ikut berubah dengan subtotal
	assert.Equal(t, 15000.0, fixed.Resolve(999999))
}

func TestItemsSubtotalSkipsCancelled(t *testing.T) {
	items := []models.SessionOrderItem{
		{Name: "Nasi Goreng", Quantity: 2, UnitPrice: 45000, Status: models.OrderServed},
		{Name: "Es Teh", Quantity: 3, UnitPrice: 10000, Status: models.OrderPending},
		{Name: "Sate Ayam", Quantity: 1, UnitPrice: 35000, Status: models.OrderCancelled},
	}

	assert.Equal(t, 120000.0, ItemsSubtotal(items))
}
