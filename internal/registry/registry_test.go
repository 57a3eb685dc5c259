package registry_test

import (
	"testing"

	"github.com/XavierBriggs/Pythia/internal/registry"
	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/XavierBriggs/Pythia/sports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(key string) models.SportConfig {
	return models.SportConfig{
		SportKey:         key,
		ProviderKey:      key,
		BaseMarkets:      []string{"player_points"},
		AlternateMarkets: []string{"player_points"},
		Bookmakers:       []string{"fanduel"},
		LookaheadHours:   24,
	}
}

func TestRegister(t *testing.T) {
	r := registry.NewSportRegistry()
	require.NoError(t, r.Register(validConfig("basketball_nba")))
	assert.Error(t, r.Register(validConfig("basketball_nba")), "duplicate register")
	assert.Equal(t, 1, r.Count())

	cfg, ok := r.Get("basketball_nba")
	require.True(t, ok)
	assert.Equal(t, "basketball_nba", cfg.ProviderKey)
}

func TestReplace(t *testing.T) {
	r := registry.NewSportRegistry()
	require.NoError(t, r.Register(validConfig("basketball_nba")))

	updated := validConfig("basketball_nba")
	updated.LookaheadHours = 12
	require.NoError(t, r.Replace(updated))

	cfg, _ := r.Get("basketball_nba")
	assert.Equal(t, 12, cfg.LookaheadHours)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SportConfig)
	}{
		{"missing sport key", func(c *models.SportConfig) { c.SportKey = "" }},
		{"missing provider key", func(c *models.SportConfig) { c.ProviderKey = "" }},
		{"no base markets", func(c *models.SportConfig) { c.BaseMarkets = nil }},
		{"no bookmakers", func(c *models.SportConfig) { c.Bookmakers = nil }},
		{"no lookahead", func(c *models.SportConfig) { c.LookaheadHours = 0 }},
		{"unknown alternate", func(c *models.SportConfig) { c.AlternateMarkets = []string{"player_blocks"} }},
		{"unknown yes/no", func(c *models.SportConfig) { c.YesNoMarkets = []string{"player_blocks"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig("basketball_nba")
			tt.mutate(&cfg)
			assert.Error(t, registry.Validate(cfg))
		})
	}
}

func TestActive(t *testing.T) {
	r := registry.NewSportRegistry()
	require.NoError(t, r.Register(validConfig("basketball_nba")))
	require.NoError(t, r.Register(validConfig("baseball_mlb")))

	active, err := r.Active([]string{"baseball_mlb", "basketball_nba"})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "baseball_mlb", active[0].SportKey)

	_, err = r.Active([]string{"icehockey_nhl"})
	assert.Error(t, err)

	_, err = r.Active(nil)
	assert.Error(t, err)
}

func TestDefaultCatalogIsValid(t *testing.T) {
	r := registry.NewSportRegistry()
	for _, cfg := range sports.Defaults() {
		assert.NoError(t, r.Register(cfg), cfg.SportKey)
	}
	assert.Equal(t, len(sports.Defaults()), r.Count())

	all := r.GetAll()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].SportKey, all[i].SportKey)
	}
}
