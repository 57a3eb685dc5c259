package baseball_mlb

import "github.com/XavierBriggs/Pythia/pkg/models"

const (
	SportKey    = "baseball_mlb"
	DisplayName = "MLB Baseball"
)

// DefaultConfig returns the MLB player props catalog entry
func DefaultConfig() models.SportConfig {
	return models.SportConfig{
		SportKey:         SportKey,
		DisplayName:      DisplayName,
		ProviderKey:      SportKey,
		BaseMarkets:      PropsMarkets(),
		AlternateMarkets: AlternateMarkets(),
		Bookmakers: []string{
			"fanduel",
			"draftkings",
			"betmgm",
			"williamhill_us",
			"espnbet",
			"fanatics",
		},
		Regions:        []string{"us", "us2"},
		LookaheadHours: 24,
	}
}
