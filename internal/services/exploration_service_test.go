package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benmeehan/fog-agent/internal/mocks"
	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/benmeehan/fog-agent/internal/store"
	"github.com/benmeehan/fog-agent/pkg/identity"
	"github.com/benmeehan/fog-agent/pkg/location"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticDevice struct{ id string }

func (s staticDevice) LoadDeviceInfo() error { return nil }
func (s staticDevice) GetDeviceID() string   { return s.id }
func (s staticDevice) GetDeviceIdentity() identity.Identity {
	return identity.Identity{ID: s.id}
}

func testOptions() ExplorationOptions {
	return ExplorationOptions{
		Topic:    "fog/test",
		QOS:      1,
		Retained: true,
		Position: location.PositionOptions{HighAccuracy: true, Timeout: time.Second, MaximumAge: time.Second},
		Watch:    location.WatchOptions{HighAccuracy: true, DistanceFilter: 10, Interval: 10 * time.Millisecond},
	}
}

func grantAccess(granted bool) *mocks.MockAccessChecker {
	access := new(mocks.MockAccessChecker)
	access.On("FineLocationGranted").Return(granted)
	return access
}

// TestExplorationService_Start_Success tests the start/stop state machine.
func TestExplorationService_Start_Success(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("GetLocation", mock.Anything, true).Return(location.Location{Latitude: 1, Longitude: 1}, nil)
	provider.On("Close").Return(nil)

	e := NewExplorationService(testOptions(), nil, nil, zerolog.Nop(), provider, grantAccess(true), store.NewMemoryStore())

	err := e.Start()
	assert.NoError(t, err)

	// Try to start again (should fail)
	err = e.Start()
	assert.EqualError(t, err, "exploration service is already running")

	err = e.Stop()
	assert.NoError(t, err)

	// Try to stop again (should fail)
	err = e.Stop()
	assert.EqualError(t, err, "exploration service is not running")
}

// TestExplorationService_ObservesAndPublishes tests that fixes become regions,
// are persisted and are published as snapshots.
func TestExplorationService_ObservesAndPublishes(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("GetLocation", mock.Anything, true).Return(location.Location{Latitude: 43.263, Longitude: -2.935, Accuracy: 12}, nil)
	provider.On("Close").Return(nil)

	token := new(mocks.MockToken)
	token.On("WaitTimeout", publishTimeout).Return(true)
	token.On("Error").Return(nil)

	published := make(chan []byte, 16)
	mqttClient := new(mocks.MockMQTTClient)
	mqttClient.On("Publish", "fog/test", byte(1), true, mock.Anything).
		Run(func(args mock.Arguments) {
			published <- args.Get(3).([]byte)
		}).
		Return(token)

	s := store.NewMemoryStore()
	e := NewExplorationService(testOptions(), staticDevice{id: "rover-1"}, mqttClient, zerolog.Nop(), provider, grantAccess(true), s)

	require.NoError(t, e.Start())

	var snapshot models.ExplorationSnapshot
	select {
	case payload := <-published:
		require.NoError(t, json.Unmarshal(payload, &snapshot))
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published")
	}

	require.NoError(t, e.Stop())

	assert.Equal(t, "rover-1", snapshot.DeviceID)
	assert.True(t, snapshot.Created)
	assert.Equal(t, models.ExplorationSet{{Latitude: 43.263, Longitude: -2.935, Radius: 300}}, snapshot.Regions)

	// the watch sees the same point again and delivers nothing new
	assert.Equal(t, snapshot.Regions, e.Regions())

	persisted, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot.Regions, persisted)
}

// TestExplorationService_PermissionDenied tests that nothing is tracked without access.
func TestExplorationService_PermissionDenied(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("Close").Return(nil)
	ms := new(mocks.MockStore)

	e := NewExplorationService(testOptions(), nil, nil, zerolog.Nop(), provider, grantAccess(false), ms)

	require.NoError(t, e.Start())
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, e.Stop())

	provider.AssertNotCalled(t, "GetLocation", mock.Anything, mock.Anything)
	ms.AssertNotCalled(t, "Load", mock.Anything)
	ms.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Nil(t, e.Regions())
}

// TestExplorationService_PositionErrorsAreSkipped tests that provider failures
// neither mutate the set nor stop the subscription.
func TestExplorationService_PositionErrorsAreSkipped(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("GetLocation", mock.Anything, true).Return(location.Location{}, errors.New("no satellites")).Times(3)
	provider.On("GetLocation", mock.Anything, true).Return(location.Location{Latitude: 10, Longitude: 20}, nil)
	provider.On("Close").Return(nil)

	s := store.NewMemoryStore()
	e := NewExplorationService(testOptions(), nil, nil, zerolog.Nop(), provider, grantAccess(true), s)

	require.NoError(t, e.Start())
	assert.Eventually(t, func() bool {
		return len(e.Regions()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, e.Stop())

	assert.Equal(t, models.ExplorationSet{{Latitude: 10, Longitude: 20, Radius: 300}}, e.Regions())
}

// TestExplorationService_PublishErrorKeepsTracking tests that a broker failure is only logged.
func TestExplorationService_PublishErrorKeepsTracking(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("GetLocation", mock.Anything, true).Return(location.Location{Latitude: 5, Longitude: 5}, nil)
	provider.On("Close").Return(nil)

	token := new(mocks.MockToken)
	token.On("WaitTimeout", publishTimeout).Return(true)
	token.On("Error").Return(errors.New("not connected"))

	mqttClient := new(mocks.MockMQTTClient)
	mqttClient.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(token)

	s := store.NewMemoryStore()
	e := NewExplorationService(testOptions(), nil, mqttClient, zerolog.Nop(), provider, grantAccess(true), s)

	require.NoError(t, e.Start())
	assert.Eventually(t, func() bool {
		return len(e.Regions()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, e.Stop())

	persisted, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

// TestExplorationService_ResumesPersistedRegions tests that a restart keeps earlier regions.
func TestExplorationService_ResumesPersistedRegions(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Save(context.Background(), models.ExplorationSet{{Latitude: 0, Longitude: 0, Radius: 300}}))

	provider := new(mocks.MockProvider)
	provider.On("GetLocation", mock.Anything, true).Return(location.Location{Latitude: 1, Longitude: 1}, nil)
	provider.On("Close").Return(nil)

	e := NewExplorationService(testOptions(), nil, nil, zerolog.Nop(), provider, grantAccess(true), s)

	require.NoError(t, e.Start())
	assert.Eventually(t, func() bool {
		return len(e.Regions()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, e.Stop())

	assert.Equal(t, models.ExplorationSet{
		{Latitude: 0, Longitude: 0, Radius: 300},
		{Latitude: 1, Longitude: 1, Radius: 300},
	}, e.Regions())
}

// TestExplorationService_Stop_ProviderCloseError tests that a provider close
// failure is returned and the service still ends up stopped.
func TestExplorationService_Stop_ProviderCloseError(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("GetLocation", mock.Anything, true).Return(location.Location{Latitude: 1, Longitude: 1}, nil)
	provider.On("Close").Return(errors.New("serial port busy"))

	e := NewExplorationService(testOptions(), nil, nil, zerolog.Nop(), provider, grantAccess(true), store.NewMemoryStore())

	require.NoError(t, e.Start())
	assert.EqualError(t, e.Stop(), "serial port busy")
	assert.EqualError(t, e.Stop(), "exploration service is not running")
	provider.AssertNumberOfCalls(t, "Close", 1)
}

// TestExplorationService_InitialFixObservedOnce tests that the watch does not
// replay the fix already taken at start.
func TestExplorationService_InitialFixObservedOnce(t *testing.T) {
	var polls atomic.Int32
	provider := new(mocks.MockProvider)
	provider.On("GetLocation", mock.Anything, true).
		Run(func(mock.Arguments) { polls.Add(1) }).
		Return(location.Location{Latitude: 7, Longitude: 7}, nil)
	provider.On("Close").Return(nil)

	token := new(mocks.MockToken)
	token.On("WaitTimeout", publishTimeout).Return(true)
	token.On("Error").Return(nil)

	mqttClient := new(mocks.MockMQTTClient)
	mqttClient.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(token)

	e := NewExplorationService(testOptions(), nil, mqttClient, zerolog.Nop(), provider, grantAccess(true), store.NewMemoryStore())

	require.NoError(t, e.Start())
	assert.Eventually(t, func() bool {
		return polls.Load() >= 4
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, e.Stop())

	mqttClient.AssertNumberOfCalls(t, "Publish", 1)
}
