package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
)

// DefaultStockLength is the stock bar length used when nothing else is configured.
const DefaultStockLength = 6.0

var (
	// ErrInvalidSettings indicates the provided settings violate validation rules.
	ErrInvalidSettings = errors.New("invalid cutting settings")
)

// Settings are the defaults applied to planning requests that omit them.
type Settings struct {
	StockLength float64
	Policy      cutting.Policy
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		StockLength: DefaultStockLength,
		Policy:      cutting.DefaultPolicy,
	}
}

// Storage provides access to the planner defaults.
type Storage interface {
	GetSettings() (Settings, error)
	SetSettings(settings Settings) error
}

// MemoryStorage keeps settings in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	settings Settings
}

// NewMemoryStorage initialises storage with the default settings.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		settings: DefaultSettings(),
	}
}

// GetSettings returns the current settings.
func (s *MemoryStorage) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings, nil
}

// SetSettings validates, normalises, and stores the provided settings.
func (s *MemoryStorage) SetSettings(settings Settings) error {
	normalized, err := normalizeSettings(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = normalized
	s.mu.Unlock()

	return nil
}

func normalizeSettings(settings Settings) (Settings, error) {
	if err := cutting.ValidateStockLength(settings.StockLength); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	policy, err := cutting.ParsePolicy(string(settings.Policy))
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	return Settings{
		StockLength: settings.StockLength,
		Policy:      policy,
	}, nil
}
