package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/XavierBriggs/Pythia/pkg/models"
)

// SportRegistry holds the sport/market catalog
type SportRegistry struct {
	sports map[string]models.SportConfig
	mu     sync.RWMutex
}

// NewSportRegistry creates a new sport registry
func NewSportRegistry() *SportRegistry {
	return &SportRegistry{
		sports: make(map[string]models.SportConfig),
	}
}

// Register validates cfg and adds it to the registry
func (r *SportRegistry) Register(cfg models.SportConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sports[cfg.SportKey]; exists {
		return fmt.Errorf("sport %s is already registered", cfg.SportKey)
	}

	r.sports[cfg.SportKey] = cfg
	return nil
}

// Replace registers cfg, overwriting any existing entry for its sport key
func (r *SportRegistry) Replace(cfg models.SportConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sports[cfg.SportKey] = cfg
	return nil
}

// Get retrieves a sport by key
func (r *SportRegistry) Get(sportKey string) (models.SportConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.sports[sportKey]
	return cfg, exists
}

// GetAll returns all registered sports ordered by key
func (r *SportRegistry) GetAll() []models.SportConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sports := make([]models.SportConfig, 0, len(r.sports))
	for _, cfg := range r.sports {
		sports = append(sports, cfg)
	}
	sort.Slice(sports, func(i, j int) bool { return sports[i].SportKey < sports[j].SportKey })
	return sports
}

// Count returns the number of registered sports
func (r *SportRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sports)
}

// Active returns the configs for sportKeys in the given order. Every key must
// be registered.
func (r *SportRegistry) Active(sportKeys []string) ([]models.SportConfig, error) {
	if len(sportKeys) == 0 {
		return nil, fmt.Errorf("no active sports configured")
	}

	active := make([]models.SportConfig, 0, len(sportKeys))
	for _, key := range sportKeys {
		cfg, ok := r.Get(key)
		if !ok {
			return nil, fmt.Errorf("active sport %s is not in the catalog", key)
		}
		active = append(active, cfg)
	}
	return active, nil
}

// Validate checks a catalog entry for internal consistency
func Validate(cfg models.SportConfig) error {
	if cfg.SportKey == "" {
		return fmt.Errorf("sport_key is required")
	}
	if cfg.ProviderKey == "" {
		return fmt.Errorf("sport %s: provider_key is required", cfg.SportKey)
	}
	if len(cfg.BaseMarkets) == 0 {
		return fmt.Errorf("sport %s: base_markets must not be empty", cfg.SportKey)
	}
	if len(cfg.Bookmakers) == 0 {
		return fmt.Errorf("sport %s: bookmakers must not be empty", cfg.SportKey)
	}
	if cfg.LookaheadHours <= 0 {
		return fmt.Errorf("sport %s: lookahead_hours must be positive", cfg.SportKey)
	}
	for _, m := range cfg.AlternateMarkets {
		if !cfg.HasBaseMarket(m) {
			return fmt.Errorf("sport %s: alternate market %s is not a base market", cfg.SportKey, m)
		}
	}
	for _, m := range cfg.YesNoMarkets {
		if !cfg.HasBaseMarket(m) {
			return fmt.Errorf("sport %s: yes/no market %s is not a base market", cfg.SportKey, m)
		}
	}
	return nil
}
