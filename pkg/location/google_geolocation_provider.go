package location

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"
)

// defaultGeolocateTimeout applies when the caller's context has no deadline.
const defaultGeolocateTimeout = 10 * time.Second

// geolocator is the part of the Maps client the provider needs.
type geolocator interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// GoogleGeolocationProvider uses the Google Maps API to get location data.
type GoogleGeolocationProvider struct {
	client     geolocator // Maps API client for making geolocation requests
	modemIndex int
	logger     zerolog.Logger

	scanWiFi  func(ctx context.Context) ([]maps.WiFiAccessPoint, error)
	scanCells func(ctx context.Context, modemIndex int) ([]maps.CellTower, error)
	now       func() time.Time
}

// NewGoogleGeolocationProvider creates a new GoogleGeolocationProvider instance.
func NewGoogleGeolocationProvider(apiKey string, modemIndex int, logger zerolog.Logger) (*GoogleGeolocationProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return newGoogleGeolocationProvider(c, modemIndex, logger), nil
}

func newGoogleGeolocationProvider(client geolocator, modemIndex int, logger zerolog.Logger) *GoogleGeolocationProvider {
	return &GoogleGeolocationProvider{
		client:     client,
		modemIndex: modemIndex,
		logger:     logger,
		scanWiFi:   getWiFiAccessPoints,
		scanCells:  getCellTowers,
		now:        time.Now,
	}
}

// GetLocation retrieves the device's location using Google Maps Geolocation API.
// With highAccuracy nearby WiFi access points and the serving cell are sent
// along with the IP; scans that fail are logged and left out of the request.
func (g *GoogleGeolocationProvider) GetLocation(ctx context.Context, highAccuracy bool) (Location, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultGeolocateTimeout)
		defer cancel()
	}

	req := &maps.GeolocationRequest{ConsiderIP: true}

	if highAccuracy {
		wifiAPs, err := g.scanWiFi(ctx)
		if err != nil {
			g.logger.Debug().Err(err).Msg("WiFi scan unavailable")
		}
		req.WiFiAccessPoints = wifiAPs

		cellTowers, err := g.scanCells(ctx, g.modemIndex)
		if err != nil {
			g.logger.Debug().Err(err).Int("modem", g.modemIndex).Msg("Cell tower scan unavailable")
		}
		req.CellTowers = cellTowers
	}

	resp, err := g.client.Geolocate(ctx, req) // Send the geolocation request
	if err != nil {
		return Location{}, err
	}

	// Return the location data obtained from the response
	return Location{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
		Timestamp: g.now(),
	}, nil
}

// Close is a no-op; the Maps client holds no resources.
func (g *GoogleGeolocationProvider) Close() error {
	return nil
}
