package service_registry

import (
	"context"
	"fmt"

	"github.com/benmeehan/fog-agent/internal/store"
	"github.com/benmeehan/fog-agent/internal/utils"
	"github.com/benmeehan/fog-agent/pkg/file"
	"github.com/benmeehan/fog-agent/pkg/location"
	"github.com/rs/zerolog"
)

// NewStore opens the storage backend selected in the configuration.
func NewStore(ctx context.Context, config *utils.Config, fileClient file.FileOperations) (store.Store, error) {
	s := config.Storage
	switch s.Backend {
	case utils.StorageFile:
		return store.NewFileStore(s.File.Dir, s.Key, fileClient), nil
	case utils.StorageMemory:
		return store.NewMemoryStore(), nil
	case utils.StorageRedis:
		return store.NewRedisStore(store.RedisOptions{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
			Prefix:   s.Redis.Prefix,
			Key:      s.Key,
		})
	case utils.StorageS3:
		return store.NewObjectStore(ctx, store.ObjectOptions{
			Endpoint:        s.S3.Endpoint,
			AccessKeyID:     s.S3.AccessKeyID,
			SecretAccessKey: s.S3.SecretAccessKey,
			UseSSL:          s.S3.UseSSL,
			Bucket:          s.S3.Bucket,
			Region:          s.S3.Region,
			Key:             s.Key,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

// NewLocationProvider builds the GPS sensor or geolocation API provider.
func NewLocationProvider(config *utils.Config, logger zerolog.Logger) (location.Provider, error) {
	e := config.Services.Exploration
	if e.SensorBased {
		return location.NewDeviceSensorProvider(e.GPSDevicePort, e.GPSDeviceBaudRate), nil
	}
	if e.MapsAPIKey == "" {
		// access is denied without a key, so the provider is never asked
		return location.UnavailableProvider{}, nil
	}
	return location.NewGoogleGeolocationProvider(e.MapsAPIKey, e.ModemIndex, logger.With().Str("component", "geolocation").Logger())
}

// NewAccessChecker combines operator consent with a check that the
// configured location source is usable.
func NewAccessChecker(config *utils.Config) location.AccessChecker {
	e := config.Services.Exploration
	consent := location.ConsentChecker(e.AccessGranted)
	if e.SensorBased {
		return location.AllOf(consent, location.DeviceAccessChecker{Port: e.GPSDevicePort})
	}
	return location.AllOf(consent, location.APIKeyChecker{APIKey: e.MapsAPIKey})
}
