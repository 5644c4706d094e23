package cutting

import "math"

// epsilon absorbs floating-point noise when comparing lengths.
const epsilon = 1e-9

// Round rounds v to two decimal places.
func Round(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		// avoid -0 in output
		return 0
	}
	return r
}

func validLength(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateStockLength returns ErrInvalidStockLength unless stockLength is positive and finite.
func ValidateStockLength(stockLength float64) error {
	if !validLength(stockLength) {
		return ErrInvalidStockLength
	}
	return nil
}
