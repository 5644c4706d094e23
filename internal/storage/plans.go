package storage

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
)

// DefaultPlanTTL is how long a computed plan stays retrievable.
const DefaultPlanTTL = 30 * time.Minute

// ErrPlanNotFound is returned for unknown or expired plan identifiers.
var ErrPlanNotFound = errors.New("plan not found")

// StoredPlan is a computed plan together with its identifier.
type StoredPlan struct {
	ID        string
	CreatedAt time.Time
	Plan      cutting.Plan
}

// PlanStore keeps recently computed plans so they can be fetched or exported
// after the request that produced them.
type PlanStore struct {
	cache *cache.Cache
	ttl   time.Duration
	clock func() time.Time
}

// NewPlanStore creates a store whose entries expire after ttl.
// A non-positive ttl falls back to DefaultPlanTTL.
func NewPlanStore(ttl time.Duration) *PlanStore {
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	return &PlanStore{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Save stores a copy of plan under a fresh identifier.
func (s *PlanStore) Save(plan cutting.Plan) StoredPlan {
	stored := StoredPlan{
		ID:        uuid.NewString(),
		CreatedAt: s.clock(),
		Plan:      clonePlan(plan),
	}
	s.cache.Set(stored.ID, stored, s.ttl)
	return stored
}

// Get returns the plan stored under id.
func (s *PlanStore) Get(id string) (StoredPlan, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return StoredPlan{}, ErrPlanNotFound
	}
	stored, ok := v.(StoredPlan)
	if !ok {
		return StoredPlan{}, ErrPlanNotFound
	}
	stored.Plan = clonePlan(stored.Plan)
	return stored, nil
}

// Len returns the number of plans currently held, including expired entries
// not yet evicted.
func (s *PlanStore) Len() int {
	return s.cache.ItemCount()
}

func clonePlan(p cutting.Plan) cutting.Plan {
	out := p
	out.Requests = slices.Clone(p.Requests)
	out.Cuts = slices.Clone(p.Cuts)
	out.Bars = make([]cutting.Bar, len(p.Bars))
	for i, b := range p.Bars {
		b.Cuts = slices.Clone(b.Cuts)
		out.Bars[i] = b
	}
	return out
}
