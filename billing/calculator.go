// Package billing berisi aritmatika bill murni: tidak menyentuh
// database, bisa dipanggil berulang untuk live preview.
package billing

import "github.com/yeremiapane/venue-ops/models"

// BillInput adalah seluruh masukan untuk satu perhitungan bill.
// Rate dalam persen, sisanya nominal absolut.
type BillInput struct {
	Subtotal          float64 `json:"subtotal"`
	TaxRate           float64 `json:"tax_rate"`
	ServiceChargeRate float64 `json:"service_charge_rate"`
	DiscountAmount    float64 `json:"discount_amount"`
	PromoDiscount     float64 `json:"promo_discount"`
	DepositCredit     float64 `json:"deposit_credit"`
	TipAmount         float64 `json:"tip_amount"`

	// ClampNegativeTotal membatasi GrandTotal di 0 ketika potongan
	// melebihi subtotal kena pajak. Default false: preview boleh
	// negatif, mengikuti perilaku lama yang masih dipakai kasir
	// sebagai sinyal kelebihan deposit.
	ClampNegativeTotal bool `json:"-"`
}

// BillBreakdown adalah hasil perhitungan yang ditampilkan ke kasir
// dan yang di-snapshot ke invoice.
type BillBreakdown struct {
	Subtotal      float64 `json:"subtotal"`
	TaxAmount     float64 `json:"tax_amount"`
	ServiceCharge float64 `json:"service_charge"`
	TipAmount     float64 `json:"tip_amount"`
	TotalDiscount float64 `json:"total_discount"`
	DepositCredit float64 `json:"deposit_credit"`
	GrandTotal    float64 `json:"grand_total"`
}

// Calculate menghitung breakdown dari satu set input. Murni dan
// idempotent: tidak ada mutasi, aman dipanggil tiap kali cart berubah.
func Calculate(in BillInput) BillBreakdown {
	taxAmount := in.Subtotal * in.TaxRate / 100
	serviceCharge := in.Subtotal * in.ServiceChargeRate / 100
	totalDiscount := in.DiscountAmount + in.PromoDiscount

	grandTotal := in.Subtotal + taxAmount + serviceCharge + in.TipAmount -
		totalDiscount - in.DepositCredit

	if in.ClampNegativeTotal && grandTotal < 0 {
		grandTotal = 0
	}

	return BillBreakdown{
		Subtotal:      in.Subtotal,
		TaxAmount:     taxAmount,
		ServiceCharge: serviceCharge,
		TipAmount:     in.TipAmount,
		TotalDiscount: totalDiscount,
		DepositCredit: in.DepositCredit,
		GrandTotal:    grandTotal,
	}
}

// ItemsSubtotal menjumlahkan qty*price untuk semua line billable.
// Item cancelled dilewati.
func ItemsSubtotal(items []models.SessionOrderItem) float64 {
	var subtotal float64
	for i := range items {
		if !items[i].Billable() {
			continue
		}
		subtotal += items[i].LineTotal()
	}
	return subtotal
}
