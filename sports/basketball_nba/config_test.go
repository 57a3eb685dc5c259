package basketball_nba_test

import (
	"testing"

	"github.com/XavierBriggs/Pythia/sports/basketball_nba"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := basketball_nba.DefaultConfig()

	assert.Equal(t, "basketball_nba", cfg.SportKey)
	assert.Equal(t, "basketball_nba", cfg.ProviderKey)
	assert.Equal(t, 36, cfg.LookaheadHours)
	assert.Contains(t, cfg.Bookmakers, "fanduel")
	assert.Contains(t, cfg.Bookmakers, "draftkings")
}

func TestAlternateMarketsAreBaseMarkets(t *testing.T) {
	cfg := basketball_nba.DefaultConfig()
	for _, m := range cfg.AlternateMarkets {
		assert.True(t, cfg.HasBaseMarket(m), m)
	}
}

func TestYesNoMarkets(t *testing.T) {
	cfg := basketball_nba.DefaultConfig()
	assert.True(t, cfg.IsYesNo("player_double_double"))
	assert.False(t, cfg.IsYesNo("player_points"))
}

func TestRequestMarkets(t *testing.T) {
	cfg := basketball_nba.DefaultConfig()

	base := cfg.RequestMarkets(false)
	assert.Equal(t, basketball_nba.PropsMarkets(), base)

	withAlt := cfg.RequestMarkets(true)
	assert.Len(t, withAlt, len(basketball_nba.PropsMarkets())+len(basketball_nba.AlternateMarkets()))
	assert.Contains(t, withAlt, "player_points_alternate")
	assert.NotContains(t, withAlt, "player_double_double_alternate")
}
