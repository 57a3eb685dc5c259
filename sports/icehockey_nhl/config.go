package icehockey_nhl

import "github.com/XavierBriggs/Pythia/pkg/models"

const (
	SportKey    = "icehockey_nhl"
	DisplayName = "NHL Hockey"
)

// DefaultConfig returns the NHL player props catalog entry
func DefaultConfig() models.SportConfig {
	return models.SportConfig{
		SportKey:    SportKey,
		DisplayName: DisplayName,
		ProviderKey: SportKey,
		BaseMarkets: []string{
			"player_points",
			"player_assists",
			"player_goals",
			"player_shots_on_goal",
			"player_blocked_shots",
			"player_power_play_points",
			"player_total_saves",
			"player_goal_scorer_anytime",
		},
		AlternateMarkets: []string{
			"player_points",
			"player_assists",
			"player_goals",
			"player_shots_on_goal",
			"player_total_saves",
		},
		YesNoMarkets:   []string{"player_goal_scorer_anytime"},
		Bookmakers:     []string{"fanduel", "draftkings", "betmgm", "williamhill_us", "fanatics"},
		Regions:        []string{"us"},
		LookaheadHours: 36,
	}
}
