package americanfootball_nfl

import "github.com/XavierBriggs/Pythia/pkg/models"

const (
	SportKey    = "americanfootball_nfl"
	DisplayName = "NFL Football"
)

// DefaultConfig returns the NFL player props catalog entry. The window covers
// a full week so Thursday through Monday games are picked up together.
func DefaultConfig() models.SportConfig {
	return models.SportConfig{
		SportKey:         SportKey,
		DisplayName:      DisplayName,
		ProviderKey:      SportKey,
		BaseMarkets:      PropsMarkets(),
		AlternateMarkets: AlternateMarkets(),
		YesNoMarkets:     []string{"player_anytime_td"},
		Bookmakers: []string{
			"fanduel",
			"draftkings",
			"betmgm",
			"williamhill_us",
			"espnbet",
			"fanatics",
			"betrivers",
		},
		Regions:        []string{"us", "us2"},
		LookaheadHours: 168,
	}
}
