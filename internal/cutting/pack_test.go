package cutting

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func barContents(bars []Bar) [][]float64 {
	out := make([][]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Cuts
	}
	return out
}

func TestPack_BestFitPicksTightestBar(t *testing.T) {
	t.Parallel()

	bars, err := Pack([]float64{6, 5, 4.5, 0.4}, 10, PolicyBestFit)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{6}, {5, 4.5, 0.4}}, barContents(bars))
}

func TestPack_FirstFitPicksFirstBarWithRoom(t *testing.T) {
	t.Parallel()

	bars, err := Pack([]float64{6, 5, 4.5, 0.4}, 10, PolicyFirstFit)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{6, 0.4}, {5, 4.5}}, barContents(bars))
}

func TestPack_TiesGoToLowestIndex(t *testing.T) {
	t.Parallel()

	bars, err := Pack([]float64{4, 6, 6}, 10, PolicyBestFit)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{6, 4}, {6}}, barContents(bars))
}

func TestPack_ReportsUsedAndWaste(t *testing.T) {
	t.Parallel()

	bars, err := Pack([]float64{2.5, 3.1, 1.2, 2.8, 1.5, 3.0}, 6, PolicyBestFit)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, []float64{3.1, 2.8}, bars[0].Cuts)
	assert.Equal(t, 5.9, bars[0].Used)
	assert.Equal(t, 0.1, bars[0].Waste)
	assert.Equal(t, []float64{3.0, 2.5}, bars[1].Cuts)
	assert.Equal(t, 0.5, bars[1].Waste)
	assert.Equal(t, []float64{1.5, 1.2}, bars[2].Cuts)
	assert.Equal(t, 3.3, bars[2].Waste)

	for i, b := range bars {
		assert.Equal(t, i+1, b.Index)
	}
}

func TestPack_EmptyInput(t *testing.T) {
	t.Parallel()

	bars, err := Pack(nil, 6, PolicyBestFit)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestPack_RejectsOversizedCut(t *testing.T) {
	t.Parallel()

	_, err := Pack([]float64{3, 7}, 6, PolicyBestFit)
	require.ErrorIs(t, err, ErrOverflow)

	var cutErr *CutError
	require.True(t, errors.As(err, &cutErr))
	assert.Equal(t, 1, cutErr.Index)
	assert.Equal(t, 7.0, cutErr.Value)
}

func TestPack_RejectsInvalidArguments(t *testing.T) {
	t.Parallel()

	_, err := Pack([]float64{3}, 0, PolicyBestFit)
	assert.ErrorIs(t, err, ErrInvalidStockLength)

	_, err = Pack([]float64{0}, 6, PolicyBestFit)
	assert.ErrorIs(t, err, ErrInvalidCutRequest)

	_, err = Pack([]float64{3}, 6, Policy("worst-fit"))
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestPack_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	cuts := []float64{1, 3, 2}
	_, err := Pack(cuts, 6, PolicyBestFit)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 2}, cuts)
}

func TestChoose_OpensNewBarOnlyWhenNothingFits(t *testing.T) {
	t.Parallel()

	bins := []*bin{{used: 5}, {used: 2}, {used: 4}}
	for _, policy := range []Policy{PolicyBestFit, PolicyFirstFit} {
		assert.Equal(t, -1, choose(bins, 4.5, 6, policy))
		assert.GreaterOrEqual(t, choose(bins, 4, 6, policy), 0)
	}
	assert.Equal(t, 2, choose(bins, 2, 6, PolicyBestFit))
	assert.Equal(t, 1, choose(bins, 2, 6, PolicyFirstFit))
}

func TestPack_Invariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 7))
	for run := 0; run < 50; run++ {
		stock := float64(1+rng.IntN(12)) / 2
		n := rng.IntN(200)
		cuts := make([]float64, n)
		for i := range cuts {
			cuts[i] = Round(0.01 + rng.Float64()*(stock-0.01))
		}

		for _, policy := range []Policy{PolicyBestFit, PolicyFirstFit} {
			t.Run(fmt.Sprintf("run%d_%s", run, policy), func(t *testing.T) {
				bars, err := Pack(cuts, stock, policy)
				require.NoError(t, err)

				var placed []float64
				for _, b := range bars {
					var sum float64
					for _, c := range b.Cuts {
						sum += c
					}
					assert.LessOrEqual(t, sum, stock+1e-9)
					assert.GreaterOrEqual(t, b.Waste, 0.0)
					placed = append(placed, b.Cuts...)
				}

				want := slices.Clone(cuts)
				slices.Sort(want)
				slices.Sort(placed)
				assert.Equal(t, len(want), len(placed))
				if len(want) > 0 {
					assert.Equal(t, want, placed)
				}
			})
		}
	}
}

func TestAggregate_IsIdempotent(t *testing.T) {
	t.Parallel()

	contents := [][]float64{{0.1, 0.2, 0.3, 1.11}, {2.22, 3.33}}
	first := Aggregate(contents, 6)
	second := Aggregate(barContents(first), 6)
	assert.Equal(t, first, second)
}

func BenchmarkPackBestFit100(b *testing.B)   { benchmarkPack(b, 100, PolicyBestFit) }
func BenchmarkPackBestFit1000(b *testing.B)  { benchmarkPack(b, 1000, PolicyBestFit) }
func BenchmarkPackFirstFit1000(b *testing.B) { benchmarkPack(b, 1000, PolicyFirstFit) }

func benchmarkPack(b *testing.B, n int, policy Policy) {
	rng := rand.New(rand.NewPCG(1, 2))
	cuts := make([]float64, n)
	for i := range cuts {
		cuts[i] = Round(0.1 + rng.Float64()*5.9)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Pack(cuts, 6, policy); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
