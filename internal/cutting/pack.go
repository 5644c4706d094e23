package cutting

import (
	"cmp"
	"slices"
)

type bin struct {
	cuts []float64
	used float64
}

// Pack assigns every cut to a stock bar, opening a new bar only when no existing
// bar has room. Cuts are placed largest first. Bars are returned in creation order
// with 1-based indexes. An empty cut list yields no bars.
func Pack(cuts []float64, stockLength float64, policy Policy) ([]Bar, error) {
	if err := ValidateStockLength(stockLength); err != nil {
		return nil, err
	}
	if !policy.Valid() {
		return nil, ErrUnknownPolicy
	}

	for i, c := range cuts {
		if !validLength(c) {
			return nil, &CutError{Index: i, Value: c, Err: ErrInvalidCutRequest}
		}
		if c-stockLength > epsilon {
			return nil, &CutError{Index: i, Value: c, Err: ErrOverflow}
		}
	}

	sorted := slices.Clone(cuts)
	slices.SortStableFunc(sorted, func(a, b float64) int {
		return cmp.Compare(b, a)
	})

	var bins []*bin
	for _, c := range sorted {
		idx := choose(bins, c, stockLength, policy)
		if idx < 0 {
			bins = append(bins, &bin{})
			idx = len(bins) - 1
		}
		bins[idx].cuts = append(bins[idx].cuts, c)
		bins[idx].used += c
	}

	contents := make([][]float64, len(bins))
	for i, b := range bins {
		contents[i] = b.cuts
	}
	return Aggregate(contents, stockLength), nil
}

// choose returns the index of the bar that should receive cut, or -1 when a new
// bar is needed.
func choose(bins []*bin, cut, stockLength float64, policy Policy) int {
	best := -1
	bestLeftover := 0.0
	for i, b := range bins {
		leftover := stockLength - b.used - cut
		if leftover < -epsilon {
			continue
		}
		if policy == PolicyFirstFit {
			return i
		}
		if best < 0 || leftover < bestLeftover-epsilon {
			best = i
			bestLeftover = leftover
		}
	}
	return best
}

// Aggregate builds the reported bars from raw bar contents. Sums are kept at full
// precision and rounded once, so calling it repeatedly on the same contents gives
// identical values.
func Aggregate(contents [][]float64, stockLength float64) []Bar {
	bars := make([]Bar, 0, len(contents))
	for i, cuts := range contents {
		var sum float64
		for _, c := range cuts {
			sum += c
		}
		bars = append(bars, Bar{
			Index: i + 1,
			Cuts:  slices.Clone(cuts),
			Used:  Round(sum),
			Waste: Round(stockLength - sum),
		})
	}
	return bars
}

// TotalWaste sums the reported waste of bars.
func TotalWaste(bars []Bar) float64 {
	var sum float64
	for _, b := range bars {
		sum += b.Waste
	}
	return Round(sum)
}
