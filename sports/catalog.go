// Package sports holds the built-in sport/market catalog
package sports

import (
	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/XavierBriggs/Pythia/sports/americanfootball_nfl"
	"github.com/XavierBriggs/Pythia/sports/baseball_mlb"
	"github.com/XavierBriggs/Pythia/sports/basketball_nba"
	"github.com/XavierBriggs/Pythia/sports/icehockey_nhl"
)

// Defaults returns every built-in sport config
func Defaults() []models.SportConfig {
	return []models.SportConfig{
		basketball_nba.DefaultConfig(),
		baseball_mlb.DefaultConfig(),
		americanfootball_nfl.DefaultConfig(),
		icehockey_nhl.DefaultConfig(),
	}
}
