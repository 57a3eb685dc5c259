package models

import "time"

// RawQuote is one outcome from one bookmaker for one market on one event,
// before any normalization
type RawQuote struct {
	EventID          string
	SportKey         string
	BookKey          string
	MarketKey        string // base or "_alternate"-suffixed
	OutcomeName      string
	Price            float64 // American or decimal, as the vendor sent it
	Point            *float64
	Description      string // free-text player name for props
	VendorLastUpdate time.Time
	ReceivedAt       time.Time
}

// Event represents a sporting event as the vendor describes it
type Event struct {
	EventID      string
	SportKey     string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
}

// FetchEventOddsOptions contains parameters for fetching event-specific odds (props)
type FetchEventOddsOptions struct {
	Sport      string
	EventID    string
	Regions    []string
	Markets    []string
	Bookmakers []string // overrides Regions when set
}

// FetchResult contains the event and its quotes from a fetch operation
type FetchResult struct {
	Event  *Event
	Quotes []RawQuote
}

// RateLimits contains rate limiting information
type RateLimits struct {
	RequestsRemaining int
	RequestsUsed      int
}
