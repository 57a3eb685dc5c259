package config

import (
	"fmt"

	"github.com/XavierBriggs/Pythia/internal/registry"
	"github.com/XavierBriggs/Pythia/pkg/models"
)

// BuildCatalog registers the built-in sports and then applies the catalog
// entries from configuration, which replace a built-in sport with the same key
func BuildCatalog(defaults []models.SportConfig, overrides []models.SportConfig) (*registry.SportRegistry, error) {
	reg := registry.NewSportRegistry()

	for _, sport := range defaults {
		if err := reg.Register(sport); err != nil {
			return nil, fmt.Errorf("register built-in sport: %w", err)
		}
	}

	for _, sport := range overrides {
		if sport.ProviderKey == "" {
			sport.ProviderKey = sport.SportKey
		}
		if err := reg.Replace(sport); err != nil {
			return nil, fmt.Errorf("catalog override: %w", err)
		}
	}

	if reg.Count() == 0 {
		return nil, fmt.Errorf("sport catalog is empty")
	}

	return reg, nil
}
