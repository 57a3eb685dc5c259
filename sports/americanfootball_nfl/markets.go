package americanfootball_nfl

// PropsMarkets returns the player prop markets polled for NFL
func PropsMarkets() []string {
	return []string{
		"player_pass_yds",
		"player_pass_tds",
		"player_pass_completions",
		"player_pass_attempts",
		"player_pass_interceptions",
		"player_rush_yds",
		"player_rush_attempts",
		"player_reception_yds",
		"player_receptions",
		"player_anytime_td",
	}
}

// AlternateMarkets returns the props that also have an _alternate ladder
func AlternateMarkets() []string {
	return []string{
		"player_pass_yds",
		"player_pass_tds",
		"player_rush_yds",
		"player_reception_yds",
		"player_receptions",
	}
}
