package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type fakeGeolocator struct {
	req *maps.GeolocationRequest
	res *maps.GeolocationResult
	err error
}

func (f *fakeGeolocator) Geolocate(_ context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error) {
	f.req = r
	return f.res, f.err
}

func newTestGoogleProvider(client geolocator) *GoogleGeolocationProvider {
	p := newGoogleGeolocationProvider(client, 0, zerolog.Nop())
	p.scanWiFi = func(context.Context) ([]maps.WiFiAccessPoint, error) {
		return []maps.WiFiAccessPoint{{MACAddress: "00:14:22:01:23:45", SignalStrength: -40}}, nil
	}
	p.scanCells = func(context.Context, int) ([]maps.CellTower, error) {
		return nil, errors.New("mmcli not found")
	}
	p.now = func() time.Time { return time.Unix(1700000000, 0) }
	return p
}

func TestGoogleGeolocationProvider_HighAccuracyIncludesScans(t *testing.T) {
	fake := &fakeGeolocator{res: &maps.GeolocationResult{
		Location: maps.LatLng{Lat: 43.26, Lng: -2.93},
		Accuracy: 25,
	}}
	p := newTestGoogleProvider(fake)

	loc, err := p.GetLocation(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, Location{Latitude: 43.26, Longitude: -2.93, Accuracy: 25, Timestamp: time.Unix(1700000000, 0)}, loc)
	assert.True(t, fake.req.ConsiderIP)
	assert.Len(t, fake.req.WiFiAccessPoints, 1)
	assert.Empty(t, fake.req.CellTowers)
}

func TestGoogleGeolocationProvider_LowAccuracyUsesIPOnly(t *testing.T) {
	fake := &fakeGeolocator{res: &maps.GeolocationResult{Location: maps.LatLng{Lat: 1, Lng: 2}}}
	p := newTestGoogleProvider(fake)

	_, err := p.GetLocation(context.Background(), false)

	require.NoError(t, err)
	assert.Empty(t, fake.req.WiFiAccessPoints)
	assert.Empty(t, fake.req.CellTowers)
}

func TestGoogleGeolocationProvider_APIError(t *testing.T) {
	p := newTestGoogleProvider(&fakeGeolocator{err: errors.New("quota exceeded")})

	_, err := p.GetLocation(context.Background(), false)

	assert.ErrorContains(t, err, "quota exceeded")
	assert.NoError(t, p.Close())
}
