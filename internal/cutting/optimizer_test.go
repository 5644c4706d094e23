package cutting

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimize_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		stock     float64
		requests  []float64
		policy    Policy
		wantBars  int
		wantCuts  int
		wantWaste float64
		wantErr   error
	}{
		{
			name:      "MixedWithOversizedRequests",
			stock:     6,
			requests:  []float64{3, 4, 5, 6, 9, 9, 12, 15, 15},
			wantBars:  14,
			wantCuts:  16,
			wantWaste: 6,
		},
		{
			name:      "FitsInThreeBars",
			stock:     6,
			requests:  []float64{2.5, 3.1, 1.2, 2.8, 1.5, 3.0},
			wantBars:  3,
			wantCuts:  6,
			wantWaste: 3.9,
		},
		{
			name:      "SingleFullBar",
			stock:     6,
			requests:  []float64{6},
			wantBars:  1,
			wantCuts:  1,
			wantWaste: 0,
		},
		{
			name:      "FirstFitPolicy",
			stock:     6,
			requests:  []float64{2.5, 3.1, 1.2, 2.8, 1.5, 3.0},
			policy:    PolicyFirstFit,
			wantBars:  3,
			wantCuts:  6,
			wantWaste: 3.9,
		},
		{
			name:     "ZeroRequest",
			stock:    6,
			requests: []float64{0},
			wantErr:  ErrInvalidCutRequest,
		},
		{
			name:     "NegativeRequest",
			stock:    6,
			requests: []float64{-1},
			wantErr:  ErrInvalidCutRequest,
		},
		{
			name:     "ZeroStockLength",
			stock:    0,
			requests: []float64{1, 2},
			wantErr:  ErrInvalidStockLength,
		},
		{
			name:     "UnknownPolicy",
			stock:    6,
			requests: []float64{1},
			policy:   Policy("random"),
			wantErr:  ErrUnknownPolicy,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			plan, err := New().Optimize(tc.stock, tc.requests, tc.policy)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, plan.Bars)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tc.wantBars, plan.BarCount())
			assert.Len(t, plan.Cuts, tc.wantCuts)
			assert.InDelta(t, tc.wantWaste, plan.TotalWaste, 1e-9)
			assert.Equal(t, tc.requests, plan.Requests)
			if tc.policy == "" {
				assert.Equal(t, DefaultPolicy, plan.Policy)
			}
		})
	}
}

func TestOptimize_SingleFullBarReportsUsage(t *testing.T) {
	t.Parallel()

	plan, err := New().Optimize(6, []float64{6}, PolicyBestFit)
	require.NoError(t, err)
	require.Len(t, plan.Bars, 1)

	assert.Equal(t, 6.0, plan.Bars[0].Used)
	assert.Equal(t, 0.0, plan.Bars[0].Waste)
	assert.Equal(t, 1.0, plan.Utilization())
}

func TestOptimize_TotalsAreConsistent(t *testing.T) {
	t.Parallel()

	plan, err := New().Optimize(6, []float64{3, 4, 5, 6, 9, 9, 12, 15, 15}, PolicyBestFit)
	require.NoError(t, err)

	assert.Equal(t, 78.0, plan.TotalCutLength())
	assert.InDelta(t, float64(plan.BarCount())*plan.StockLength-plan.TotalCutLength(), plan.TotalWaste, 0.01)
	assert.InDelta(t, 78.0/84.0, plan.Utilization(), 1e-9)
}

func TestOptimize_ConcurrentRunsAreIndependent(t *testing.T) {
	t.Parallel()

	opt := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(extra float64) {
			defer wg.Done()
			plan, err := opt.Optimize(6, []float64{2, 3, extra}, PolicyBestFit)
			if err != nil {
				t.Errorf("Optimize failed: %v", err)
				return
			}
			if plan.TotalCutLength() != Round(5+extra) {
				t.Errorf("unexpected total %g", plan.TotalCutLength())
			}
		}(float64(i%5 + 1))
	}
	wg.Wait()
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	cases := map[string]Policy{
		"":          PolicyBestFit,
		"best-fit":  PolicyBestFit,
		"BestFit":   PolicyBestFit,
		"first_fit": PolicyFirstFit,
		" first ":   PolicyFirstFit,
	}
	for raw, want := range cases {
		got, err := ParsePolicy(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParsePolicy("worst-fit")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
