package billing

import (
	"fmt"
	"math"
)

// SplitShares membagi total menjadi n bagian yang jumlahnya PERSIS
// sama dengan total. Perhitungan dilakukan dalam sen supaya tidak ada
// kebocoran rounding; sisa pembagian ditaruh di share pertama.
// Contoh: 100000 / 3 => [33334, 33333, 33333].
func SplitShares(total float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("split count must be >= 1, got %d", n)
	}
	if total < 0 {
		return nil, fmt.Errorf("cannot split negative total %.2f", total)
	}

	cents := int64(math.Round(total * 100))
	base := cents / int64(n)
	remainder := cents % int64(n)

	shares := make([]float64, n)
	for i := range shares {
		share := base
		if i == 0 {
			share += remainder
		}
		shares[i] = float64(share) / 100
	}
	return shares, nil
}
