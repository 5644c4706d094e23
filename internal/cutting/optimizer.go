package cutting

import "slices"

type greedyOptimizer struct{}

// New creates an Optimizer that normalises requests and packs them greedily.
func New() Optimizer {
	return &greedyOptimizer{}
}

// Optimize runs one packing batch. An empty policy selects DefaultPolicy.
func (o *greedyOptimizer) Optimize(stockLength float64, requests []float64, policy Policy) (Plan, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	if !policy.Valid() {
		return Plan{}, ErrUnknownPolicy
	}

	cuts, err := Normalize(requests, stockLength)
	if err != nil {
		return Plan{}, err
	}

	bars, err := Pack(cuts, stockLength, policy)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		StockLength: stockLength,
		Policy:      policy,
		Requests:    slices.Clone(requests),
		Cuts:        cuts,
		Bars:        bars,
		TotalWaste:  TotalWaste(bars),
	}, nil
}
