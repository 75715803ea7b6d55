package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/fog-agent/internal/exploration"
	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/benmeehan/fog-agent/internal/store"
	"github.com/benmeehan/fog-agent/pkg/identity"
	"github.com/benmeehan/fog-agent/pkg/location"
	"github.com/benmeehan/fog-agent/pkg/mqtt"
	"github.com/rs/zerolog"
)

// publishTimeout bounds how long a snapshot publish may wait for the broker.
const publishTimeout = 5 * time.Second

// ExplorationOptions holds the tunables of the ExplorationService.
type ExplorationOptions struct {
	Topic    string
	QOS      int
	Retained bool
	Position location.PositionOptions
	Watch    location.WatchOptions
}

// ExplorationService feeds device positions into the exploration tracker and
// publishes the explored regions after every observation.
type ExplorationService struct {
	// Configuration fields
	opts ExplorationOptions

	// Dependencies
	deviceInfo       identity.DeviceInfoInterface
	mqttClient       mqtt.MQTTClient // nil disables publishing
	logger           zerolog.Logger
	locationProvider location.Provider
	access           location.AccessChecker
	store            store.Store

	// Internal state management
	mu      sync.Mutex
	tracker *exploration.Tracker
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewExplorationService creates a new ExplorationService instance with the provided configuration.
func NewExplorationService(opts ExplorationOptions, deviceInfo identity.DeviceInfoInterface, mqttClient mqtt.MQTTClient,
	logger zerolog.Logger, locationProvider location.Provider, access location.AccessChecker, s store.Store) *ExplorationService {
	return &ExplorationService{
		opts:             opts,
		deviceInfo:       deviceInfo,
		mqttClient:       mqttClient,
		logger:           logger,
		locationProvider: locationProvider,
		access:           access,
		store:            s,
	}
}

// Start checks location access, loads the persisted regions and starts the
// tracking goroutine. Without access the service stays idle and never touches
// the tracker or the store.
func (e *ExplorationService) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.logger.Warn().Msg("ExplorationService is already running")
		return errors.New("exploration service is already running")
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.running = true

	if !e.access.FineLocationGranted() {
		e.logger.Warn().Msg("Fine location access not granted, exploration tracking disabled")
		return nil
	}

	tracker := exploration.NewTracker(e.store, e.logger.With().Str("component", "tracker").Logger())
	tracker.Load(e.ctx)
	e.tracker = tracker

	locator := location.NewLocator(e.locationProvider, e.logger.With().Str("component", "locator").Logger())

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(locator, tracker)
	}()

	e.logger.Info().
		Str("topic", e.opts.Topic).
		Dur("poll_interval", e.opts.Watch.Interval).
		Float64("distance_filter", e.opts.Watch.DistanceFilter).
		Int("qos", e.opts.QOS).
		Msg("ExplorationService started")
	return nil
}

// Stop gracefully stops the ExplorationService and waits for pending saves.
func (e *ExplorationService) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		e.logger.Warn().Msg("ExplorationService is not running")
		return errors.New("exploration service is not running")
	}

	// Signal cancellation and wait for the goroutine to exit
	e.cancel()
	e.wg.Wait()

	if e.tracker != nil {
		e.tracker.Close()
	}

	e.running = false

	// Close the location provider
	if err := e.locationProvider.Close(); err != nil {
		e.logger.Error().Err(err).Msg("Failed to close location provider")
		return err
	}

	e.logger.Info().Msg("ExplorationService stopped")
	return nil
}

// Regions returns the current explored regions, or nil when tracking never started.
func (e *ExplorationService) Regions() models.ExplorationSet {
	e.mu.Lock()
	tracker := e.tracker
	e.mu.Unlock()

	if tracker == nil {
		return nil
	}
	return tracker.Regions()
}

// run takes the initial fix and then keeps a single watch open until Stop.
func (e *ExplorationService) run(locator *location.Locator, tracker *exploration.Tracker) {
	handler := location.HandlerFuncs{
		Location: func(loc location.Location) {
			e.observe(tracker, loc)
		},
		Error: func(err error) {
			e.logger.Warn().Err(err).Msg("Failed to get location from provider")
		},
	}

	watch := e.opts.Watch
	loc, err := locator.CurrentPosition(e.ctx, e.opts.Position)
	if err != nil {
		if e.ctx.Err() != nil {
			return
		}
		handler.OnError(err)
	} else {
		handler.OnLocation(loc)
		watch.Since = &loc
	}

	locator.Watch(e.ctx, watch, handler)
	e.logger.Info().Msg("ExplorationService is stopping")
}

// observe applies one fix to the tracker and publishes the result.
func (e *ExplorationService) observe(tracker *exploration.Tracker, loc location.Location) {
	if !loc.Valid() {
		e.logger.Warn().
			Float64("latitude", loc.Latitude).
			Float64("longitude", loc.Longitude).
			Msg("Ignoring invalid location fix")
		return
	}

	regions, res := tracker.Observe(loc.Coordinate())

	event := e.logger.Debug()
	if res.Created {
		event = e.logger.Info()
	}
	event.
		Float64("latitude", loc.Latitude).
		Float64("longitude", loc.Longitude).
		Bool("created", res.Created).
		Int("regions", len(regions)).
		Msg("Location observed")

	if err := e.publishSnapshot(loc, res, regions); err != nil {
		e.logger.Error().
			Err(err).
			Str("topic", e.opts.Topic).
			Msg("Failed to publish exploration snapshot")
	}
}

// publishSnapshot serializes the regions and publishes them to the MQTT broker.
func (e *ExplorationService) publishSnapshot(loc location.Location, res exploration.Result, regions models.ExplorationSet) error {
	if e.mqttClient == nil {
		return nil
	}

	snapshot := models.ExplorationSnapshot{
		Timestamp: loc.Timestamp,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Accuracy:  loc.Accuracy,
		Created:   res.Created,
		Regions:   regions,
	}
	if e.deviceInfo != nil {
		snapshot.DeviceID = e.deviceInfo.GetDeviceID()
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	token := e.mqttClient.Publish(e.opts.Topic, byte(e.opts.QOS), e.opts.Retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("timed out publishing exploration snapshot")
	}
	return token.Error()
}
