package location

import (
	"context"
	"errors"
)

var (
	// ErrNoFix is returned when a provider could not produce a position.
	ErrNoFix = errors.New("no valid location fix")
	// ErrInvalidFix is returned for fixes with out-of-range or non-finite coordinates.
	ErrInvalidFix = errors.New("location fix out of range")
)

// Provider interface defines the methods for location providers.
// highAccuracy asks the provider to use every source it has, at the cost of
// latency.
type Provider interface {
	GetLocation(ctx context.Context, highAccuracy bool) (Location, error)
	Close() error
}

// UnavailableProvider stands in when no location source is configured. It
// never produces a fix.
type UnavailableProvider struct{}

func (UnavailableProvider) GetLocation(context.Context, bool) (Location, error) {
	return Location{}, ErrNoFix
}

func (UnavailableProvider) Close() error {
	return nil
}
