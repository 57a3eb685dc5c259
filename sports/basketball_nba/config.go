package basketball_nba

import "github.com/XavierBriggs/Pythia/pkg/models"

const (
	SportKey    = "basketball_nba"
	DisplayName = "NBA Basketball"
)

// DefaultConfig returns the NBA player props catalog entry
func DefaultConfig() models.SportConfig {
	return models.SportConfig{
		SportKey:         SportKey,
		DisplayName:      DisplayName,
		ProviderKey:      SportKey,
		BaseMarkets:      PropsMarkets(),
		AlternateMarkets: AlternateMarkets(),
		YesNoMarkets:     YesNoMarkets(),
		Bookmakers:       Bookmakers(),
		Regions:          []string{"us", "us2"},
		// Tonight's slate plus tomorrow's early tips
		LookaheadHours: 36,
	}
}

// Bookmakers returns the books whose NBA props are accepted
func Bookmakers() []string {
	return []string{
		"fanduel",
		"draftkings",
		"betmgm",
		"williamhill_us",
		"espnbet",
		"fanatics",
		"betrivers",
		"bovada",
	}
}
