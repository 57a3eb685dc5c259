package contracts

import (
	"context"

	"github.com/XavierBriggs/Pythia/pkg/models"
)

// OddsProvider defines the interface for fetching prop quotes from an external vendor
type OddsProvider interface {
	// FetchEventOdds retrieves quotes for a single event and the requested markets
	FetchEventOdds(ctx context.Context, opts *models.FetchEventOddsOptions) (*models.FetchResult, error)

	// GetRateLimits returns the latest quota information reported by the vendor
	GetRateLimits() models.RateLimits
}

// StatusError is implemented by vendor errors that carry an HTTP status code
type StatusError interface {
	error
	HTTPStatus() int
}
