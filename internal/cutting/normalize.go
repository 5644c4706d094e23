package cutting

import (
	"fmt"
	"math"
)

// maxSegments caps the number of normalised cuts a batch may describe.
const maxSegments = math.MaxInt32

// Normalize rewrites requests so that no entry exceeds stockLength.
// Each oversized request contributes as many full stock-length segments as fit,
// followed by its remainder rounded to two decimals. Input order is preserved.
func Normalize(requests []float64, stockLength float64) ([]float64, error) {
	if err := ValidateStockLength(stockLength); err != nil {
		return nil, err
	}

	total, err := SegmentCount(requests, stockLength)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, total)
	for _, r := range requests {
		full, rem := split(r, stockLength)
		for i := 0; i < full; i++ {
			out = append(out, stockLength)
		}
		if rem > 0 {
			out = append(out, rem)
		}
	}
	return out, nil
}

// SegmentCount returns how many normalised cuts Normalize would emit for requests
// without allocating them. Callers use it to bound work before normalising.
// Batches that would exceed math.MaxInt32 cuts fail with ErrTooManySegments.
func SegmentCount(requests []float64, stockLength float64) (int, error) {
	if err := ValidateStockLength(stockLength); err != nil {
		return 0, err
	}

	var total int64
	for i, r := range requests {
		if !validLength(r) {
			return 0, &CutError{Index: i, Value: r, Err: ErrInvalidCutRequest}
		}
		// checked before split so the float to int conversion cannot overflow
		if r/stockLength > maxSegments {
			return 0, &CutError{Index: i, Value: r, Err: ErrTooManySegments}
		}
		full, rem := split(r, stockLength)
		total += int64(full)
		if rem > 0 {
			total++
		}
		if total > maxSegments {
			return 0, fmt.Errorf("%w: more than %d cuts", ErrTooManySegments, maxSegments)
		}
	}
	return int(total), nil
}

// split returns the number of full stock-length segments in r and the rounded
// remainder, which is zero when nothing is left over.
func split(r, stockLength float64) (int, float64) {
	if r-stockLength <= epsilon {
		return 0, clampRemainder(r, stockLength)
	}

	full := math.Floor(r / stockLength)
	rem := r - full*stockLength
	if rem < 0 {
		// r / stockLength rounded up across an integer boundary
		full--
		rem += stockLength
	}
	return int(full), clampRemainder(rem, stockLength)
}

func clampRemainder(rem, stockLength float64) float64 {
	if rem <= epsilon {
		return 0
	}
	return math.Min(Round(rem), stockLength)
}
