package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/fog-agent/internal/registry"
	"github.com/benmeehan/fog-agent/internal/services"
	"github.com/benmeehan/fog-agent/internal/store"
	"github.com/benmeehan/fog-agent/internal/utils"
	"github.com/benmeehan/fog-agent/pkg/identity"
	"github.com/benmeehan/fog-agent/pkg/location"
	"github.com/benmeehan/fog-agent/pkg/mqtt"
	"github.com/rs/zerolog"
)

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services    map[string]registry.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	mqttClient  mqtt.MQTTClient
	store       store.Store
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
// mqttClient may be nil when publishing is disabled.
func NewServiceRegistry(mqttClient mqtt.MQTTClient, s store.Store, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:   make(map[string]registry.Service),
		mqttClient: mqttClient,
		store:      s,
		Logger:     logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Service returns a registered service by name.
func (sr *ServiceRegistry) Service(name string) (registry.Service, bool) {
	svc, ok := sr.services[name]
	return svc, ok
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return err
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers enabled services based on configuration.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, deviceInfo identity.DeviceInfoInterface) error {
	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (registry.Service, error)
	}{
		{
			name:    "exploration",
			enabled: config.Services.Exploration.Enabled,
			constructor: func() (registry.Service, error) {
				provider, err := NewLocationProvider(config, sr.Logger)
				if err != nil {
					sr.Logger.Error().Err(err).Msg("failed to create location provider")
					return nil, err
				}
				return services.NewExplorationService(
					ExplorationOptions(config),
					deviceInfo,
					sr.mqttClient,
					sr.Logger.With().Str("service", "exploration").Logger(),
					provider,
					NewAccessChecker(config),
					sr.store,
				), nil
			},
		},
	}

	// Register services in the predefined order
	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}

// ExplorationOptions maps the exploration config section onto service options.
func ExplorationOptions(config *utils.Config) services.ExplorationOptions {
	e := config.Services.Exploration
	highAccuracy := e.HighAccuracy == nil || *e.HighAccuracy

	return services.ExplorationOptions{
		Topic:    e.Topic,
		QOS:      e.QOS,
		Retained: e.Retained,
		Position: location.PositionOptions{
			HighAccuracy: highAccuracy,
			Timeout:      e.InitialTimeout,
			MaximumAge:   e.MaximumAge,
		},
		Watch: location.WatchOptions{
			HighAccuracy:   highAccuracy,
			DistanceFilter: e.DistanceFilter,
			Interval:       e.PollInterval,
		},
	}
}
