package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
	"github.com/eugenenazirov/pipe-cutter/internal/storage"
)

type fakeRecorder struct {
	completed int
	failures  []string
}

func (f *fakeRecorder) PlanCompleted(string, int, float64, time.Duration) { f.completed++ }
func (f *fakeRecorder) PlanFailed(reason string)                          { f.failures = append(f.failures, reason) }

func newTestService(t *testing.T, opts ...Option) (*Service, *storage.MemoryStorage) {
	t.Helper()

	settings := storage.NewMemoryStorage()
	svc := New(cutting.New(), settings, storage.NewPlanStore(time.Minute), zaptest.NewLogger(t), opts...)
	return svc, settings
}

func TestPlanUsesStoredDefaults(t *testing.T) {
	t.Parallel()

	svc, settings := newTestService(t)
	require.NoError(t, settings.SetSettings(storage.Settings{StockLength: 12, Policy: cutting.PolicyFirstFit}))

	res, err := svc.Plan(context.Background(), Request{Cuts: []float64{6, 6, 6}})
	require.NoError(t, err)

	assert.Equal(t, 12.0, res.Plan.StockLength)
	assert.Equal(t, cutting.PolicyFirstFit, res.Plan.Policy)
	assert.Equal(t, 2, res.Plan.BarCount())
	assert.NotEmpty(t, res.ID)
}

func TestPlanRequestOverridesDefaults(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	res, err := svc.Plan(context.Background(), Request{StockLength: 10, Policy: cutting.PolicyBestFit, Cuts: []float64{5, 5}})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Plan.StockLength)
	assert.Equal(t, 1, res.Plan.BarCount())
}

func TestPlanIsRetrievable(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	res, err := svc.Plan(context.Background(), Request{Cuts: []float64{1, 2, 3}})
	require.NoError(t, err)

	got, err := svc.Get(res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Plan.Bars, got.Plan.Bars)

	_, err = svc.Get("nope")
	assert.ErrorIs(t, err, storage.ErrPlanNotFound)
}

func TestPlanEnforcesMaxCuts(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	svc, _ := newTestService(t, WithMaxCuts(3), WithRecorder(rec))

	_, err := svc.Plan(context.Background(), Request{Cuts: []float64{1, 1, 1, 1}})
	assert.ErrorIs(t, err, ErrTooManyCuts)

	// two requests that split into four cuts
	_, err = svc.Plan(context.Background(), Request{StockLength: 6, Cuts: []float64{12, 12}})
	assert.ErrorIs(t, err, ErrTooManyCuts)

	assert.Equal(t, 3, svc.MaxCuts())
	assert.Equal(t, []string{"too_many_cuts", "too_many_cuts"}, rec.failures)
	assert.Zero(t, rec.completed)
}

func TestPlanRejectsUncountableSplits(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	svc, _ := newTestService(t, WithRecorder(rec))

	var err error
	require.NotPanics(t, func() {
		_, err = svc.Plan(context.Background(), Request{StockLength: 1, Cuts: []float64{1e20}})
	})
	assert.ErrorIs(t, err, ErrTooManyCuts)
	assert.ErrorIs(t, err, cutting.ErrTooManySegments)
	assert.Equal(t, []string{"too_many_cuts"}, rec.failures)
}

func TestCheckLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		requests []float64
		stock    float64
		limit    int
		wantErr  error
	}{
		{name: "WithinLimit", requests: []float64{12, 3}, stock: 6, limit: 3},
		{name: "TooManyRequests", requests: []float64{1, 1, 1}, stock: 6, limit: 2, wantErr: ErrTooManyCuts},
		{name: "TooManyAfterSplitting", requests: []float64{1e12}, stock: 1, limit: DefaultMaxCuts, wantErr: ErrTooManyCuts},
		{name: "BeyondCountableRange", requests: []float64{1e20}, stock: 1, limit: DefaultMaxCuts, wantErr: ErrTooManyCuts},
		{name: "InvalidCut", requests: []float64{-1}, stock: 6, limit: 3, wantErr: cutting.ErrInvalidCutRequest},
		{name: "InvalidStock", requests: []float64{1}, stock: 0, limit: 3, wantErr: cutting.ErrInvalidStockLength},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := CheckLimit(tc.requests, tc.stock, tc.limit)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPlanPropagatesValidationErrors(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.Plan(context.Background(), Request{StockLength: -1, Cuts: []float64{1}})
	assert.ErrorIs(t, err, cutting.ErrInvalidStockLength)

	_, err = svc.Plan(context.Background(), Request{Cuts: []float64{0}})
	assert.ErrorIs(t, err, cutting.ErrInvalidCutRequest)

	_, err = svc.Plan(context.Background(), Request{Policy: "worst-fit", Cuts: []float64{1}})
	assert.ErrorIs(t, err, cutting.ErrUnknownPolicy)
}

func TestPlanHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Plan(ctx, Request{Cuts: []float64{1}})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "invalid_cut", reason(&cutting.CutError{Err: cutting.ErrInvalidCutRequest}))
	assert.Equal(t, "overflow", reason(cutting.ErrOverflow))
	assert.Equal(t, "internal", reason(errors.New("boom")))
}
