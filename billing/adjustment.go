package billing

// AdjustmentKind membedakan discount/tip persen vs nominal tetap.
type AdjustmentKind string

const (
	AdjustPercent AdjustmentKind = "percent"
	AdjustFixed   AdjustmentKind = "fixed"
)

// Adjustment adalah discount atau tip sebelum di-resolve ke nominal.
// Persen selalu dihitung terhadap subtotal, tidak pernah terhadap
// nilai yang sudah kena pajak.
type Adjustment struct {
	Kind  AdjustmentKind `json:"kind"`
	Value float64        `json:"value"`
}

// Resolve mengubah adjustment menjadi nominal absolut terhadap subtotal.
func (a Adjustment) Resolve(subtotal float64) float64 {
	switch a.Kind {
	case AdjustPercent:
		return subtotal * a.Value / 100
	case AdjustFixed:
		return a.Value
	}
	return 0
}
