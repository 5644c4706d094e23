package cutting

import (
	"fmt"
	"strings"
)

// Policy selects the bar a cut is placed into.
type Policy string

const (
	// PolicyBestFit places a cut into the bar that leaves the least room after the cut.
	PolicyBestFit Policy = "best-fit"
	// PolicyFirstFit places a cut into the first bar, in creation order, that has room.
	PolicyFirstFit Policy = "first-fit"
)

// DefaultPolicy is used when callers do not pick one.
const DefaultPolicy = PolicyBestFit

// ParsePolicy accepts the canonical names plus a few common spellings.
// An empty string resolves to DefaultPolicy.
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return DefaultPolicy, nil
	case "best-fit", "bestfit", "best_fit", "best":
		return PolicyBestFit, nil
	case "first-fit", "firstfit", "first_fit", "first":
		return PolicyFirstFit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
	}
}

// Valid reports whether p is one of the supported policies.
func (p Policy) Valid() bool {
	return p == PolicyBestFit || p == PolicyFirstFit
}

// Bar is one stock bar with the cuts assigned to it.
// Used and Waste are rounded to two decimals.
type Bar struct {
	Index int       `json:"index"`
	Cuts  []float64 `json:"cuts"`
	Used  float64   `json:"used"`
	Waste float64   `json:"waste"`
}

// Plan is the outcome of one packing run.
type Plan struct {
	StockLength float64   `json:"stockLength"`
	Policy      Policy    `json:"policy"`
	Requests    []float64 `json:"requests"`
	Cuts        []float64 `json:"normalizedCuts"`
	Bars        []Bar     `json:"bars"`
	TotalWaste  float64   `json:"totalWaste"`
}

// BarCount returns the number of stock bars consumed.
func (p Plan) BarCount() int {
	return len(p.Bars)
}

// TotalCutLength returns the summed length of all normalised cuts, rounded to two decimals.
func (p Plan) TotalCutLength() float64 {
	var sum float64
	for _, c := range p.Cuts {
		sum += c
	}
	return Round(sum)
}

// Utilization is the share of purchased stock that ends up in cuts, in the range [0, 1].
func (p Plan) Utilization() float64 {
	if len(p.Bars) == 0 || p.StockLength <= 0 {
		return 0
	}
	return p.TotalCutLength() / (float64(len(p.Bars)) * p.StockLength)
}

// Optimizer describes the behaviour required from a cutting planner.
type Optimizer interface {
	Optimize(stockLength float64, requests []float64, policy Policy) (Plan, error)
}
