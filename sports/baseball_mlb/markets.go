package baseball_mlb

// PropsMarkets returns the batter and pitcher prop markets polled for MLB
func PropsMarkets() []string {
	return []string{
		"batter_hits",
		"batter_total_bases",
		"batter_home_runs",
		"batter_rbis",
		"batter_runs_scored",
		"batter_hits_runs_rbis",
		"batter_strikeouts",
		"pitcher_strikeouts",
		"pitcher_hits_allowed",
		"pitcher_outs",
		"pitcher_earned_runs",
	}
}

// AlternateMarkets returns the props that also have an _alternate ladder
func AlternateMarkets() []string {
	return []string{
		"batter_hits",
		"batter_total_bases",
		"batter_home_runs",
		"batter_rbis",
		"pitcher_strikeouts",
	}
}
