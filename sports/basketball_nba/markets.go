package basketball_nba

// PropsMarkets returns the player prop markets polled for NBA
func PropsMarkets() []string {
	return []string{
		"player_points",
		"player_rebounds",
		"player_assists",
		"player_threes",
		"player_blocks",
		"player_steals",
		"player_turnovers",
		"player_points_rebounds_assists",
		"player_points_rebounds",
		"player_points_assists",
		"player_rebounds_assists",
		"player_double_double",
		"player_triple_double",
	}
}

// AlternateMarkets returns the props that also have an _alternate ladder
func AlternateMarkets() []string {
	return []string{
		"player_points",
		"player_rebounds",
		"player_assists",
		"player_threes",
		"player_blocks",
		"player_steals",
		"player_turnovers",
		"player_points_rebounds_assists",
		"player_points_rebounds",
		"player_points_assists",
		"player_rebounds_assists",
	}
}

// YesNoMarkets returns the props quoted as Yes/No instead of Over/Under
func YesNoMarkets() []string {
	return []string{"player_double_double", "player_triple_double"}
}
