// Package planner resolves request defaults, enforces batch limits, runs the
// cutting optimizer, and keeps the result available for later retrieval.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
	"github.com/eugenenazirov/pipe-cutter/internal/metrics"
	"github.com/eugenenazirov/pipe-cutter/internal/storage"
)

// DefaultMaxCuts bounds the number of normalised cuts in one batch.
const DefaultMaxCuts = 10_000

// ErrTooManyCuts is returned when a batch exceeds the configured cut limit.
var ErrTooManyCuts = errors.New("too many cuts in one batch")

// Request is one planning batch. Zero StockLength and empty Policy fall back
// to the stored settings.
type Request struct {
	StockLength float64
	Policy      cutting.Policy
	Cuts        []float64
}

// Result is a stored plan plus the time spent computing it.
type Result struct {
	storage.StoredPlan
	Elapsed time.Duration
}

// Service plans cutting batches.
type Service struct {
	optimizer cutting.Optimizer
	settings  storage.Storage
	plans     *storage.PlanStore
	recorder  metrics.Recorder
	logger    *zap.Logger
	maxCuts   int
}

// Option configures a Service.
type Option func(*Service)

// WithMaxCuts overrides DefaultMaxCuts. Non-positive values are ignored.
func WithMaxCuts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCuts = n
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New constructs a Service.
func New(opt cutting.Optimizer, settings storage.Storage, plans *storage.PlanStore, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		optimizer: opt,
		settings:  settings,
		plans:     plans,
		recorder:  metrics.Nop{},
		logger:    logger,
		maxCuts:   DefaultMaxCuts,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MaxCuts returns the configured batch limit.
func (s *Service) MaxCuts() int {
	return s.maxCuts
}

// Plan computes and stores a plan for req.
func (s *Service) Plan(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	settings, err := s.settings.GetSettings()
	if err != nil {
		return Result{}, fmt.Errorf("load settings: %w", err)
	}

	stockLength := req.StockLength
	if stockLength == 0 {
		stockLength = settings.StockLength
	}
	policy := req.Policy
	if policy == "" {
		policy = settings.Policy
	}

	if err := CheckLimit(req.Cuts, stockLength, s.maxCuts); err != nil {
		s.recorder.PlanFailed(reason(err))
		return Result{}, err
	}

	start := time.Now()
	plan, err := s.optimizer.Optimize(stockLength, req.Cuts, policy)
	elapsed := time.Since(start)
	if err != nil {
		s.recorder.PlanFailed(reason(err))
		if errors.Is(err, cutting.ErrOverflow) {
			s.logger.Error("packer received oversized cut", zap.Error(err))
		}
		return Result{}, err
	}

	s.recorder.PlanCompleted(string(plan.Policy), plan.BarCount(), plan.TotalWaste, elapsed)
	stored := s.plans.Save(plan)

	s.logger.Debug("plan computed",
		zap.String("plan_id", stored.ID),
		zap.Float64("stock_length", plan.StockLength),
		zap.String("policy", string(plan.Policy)),
		zap.Int("requests", len(plan.Requests)),
		zap.Int("bars", plan.BarCount()),
		zap.Float64("total_waste", plan.TotalWaste),
		zap.Duration("elapsed", elapsed),
	)

	return Result{StoredPlan: stored, Elapsed: elapsed}, nil
}

// CheckLimit validates requests against stockLength and fails with
// ErrTooManyCuts when the batch, before or after splitting, holds more than
// maxCuts entries. It never allocates the normalised cuts.
func CheckLimit(requests []float64, stockLength float64, maxCuts int) error {
	if len(requests) > maxCuts {
		return fmt.Errorf("%w: %d requests, limit %d", ErrTooManyCuts, len(requests), maxCuts)
	}
	count, err := cutting.SegmentCount(requests, stockLength)
	if errors.Is(err, cutting.ErrTooManySegments) {
		return fmt.Errorf("%w: %w", ErrTooManyCuts, err)
	}
	if err != nil {
		return err
	}
	if count > maxCuts {
		return fmt.Errorf("%w: %d cuts after splitting, limit %d", ErrTooManyCuts, count, maxCuts)
	}
	return nil
}

// Get returns a previously computed plan.
func (s *Service) Get(id string) (storage.StoredPlan, error) {
	return s.plans.Get(id)
}

func reason(err error) string {
	switch {
	case errors.Is(err, cutting.ErrInvalidStockLength):
		return "invalid_stock_length"
	case errors.Is(err, cutting.ErrInvalidCutRequest):
		return "invalid_cut"
	case errors.Is(err, cutting.ErrOverflow):
		return "overflow"
	case errors.Is(err, cutting.ErrUnknownPolicy):
		return "unknown_policy"
	case errors.Is(err, ErrTooManyCuts):
		return "too_many_cuts"
	default:
		return "internal"
	}
}
