package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benmeehan/fog-agent/pkg/file"
)

// Storage backends understood by the agent.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageS3     = "s3"
	StorageMemory = "memory"
)

// Config represents the structure of the configuration file.
type Config struct {
	Logging struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Pretty bool   `yaml:"pretty"` // Human readable console output instead of JSON
	} `yaml:"logging"`

	MQTT struct {
		Enabled       bool   `yaml:"enabled"`        // Publish snapshots over MQTT
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate, empty for plain TCP
		Username      string `yaml:"username"`       // Optional broker username
		Password      string `yaml:"password"`       // Optional broker password
	} `yaml:"mqtt"`

	Identity struct {
		DeviceFile string `yaml:"device_file"` // Path to the device identity file
	} `yaml:"identity"`

	Storage struct {
		Backend string `yaml:"backend"` // file, redis, s3 or memory
		Key     string `yaml:"key"`     // Key the explored regions are stored under

		File struct {
			Dir string `yaml:"dir"` // Directory holding <key>.json
		} `yaml:"file"`

		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`

		S3 struct {
			Endpoint        string `yaml:"endpoint"`
			AccessKeyID     string `yaml:"access_key_id"`
			SecretAccessKey string `yaml:"secret_access_key"`
			UseSSL          bool   `yaml:"use_ssl"`
			Bucket          string `yaml:"bucket"`
			Region          string `yaml:"region"`
		} `yaml:"s3"`
	} `yaml:"storage"`

	Services struct {
		Exploration struct {
			Enabled  bool   `yaml:"enabled"`  // Enable/disable exploration tracking
			Topic    string `yaml:"topic"`    // MQTT topic for exploration snapshots
			QOS      int    `yaml:"qos"`      // MQTT QoS level for snapshots
			Retained bool   `yaml:"retained"` // Retain the latest snapshot on the broker

			AccessGranted bool `yaml:"access_granted"` // Operator consent for fine-grained location access

			SensorBased       bool   `yaml:"sensor_based"`    // Use the GPS sensor instead of the geolocation API
			MapsAPIKey        string `yaml:"maps_api_key"`    // Google maps API Key
			ModemIndex        int    `yaml:"modem_index"`     // ModemManager index used for cell tower lookups
			GPSDeviceBaudRate int    `yaml:"gps_baud_rate"`   // The Baud rate for GPS sensor
			GPSDevicePort     string `yaml:"gps_device_port"` // UNIX Port where the GPS sensor is mounted

			InitialTimeout time.Duration `yaml:"initial_timeout"` // Timeout for the first position request
			MaximumAge     time.Duration `yaml:"maximum_age"`     // Age of a cached fix the first request accepts
			PollInterval   time.Duration `yaml:"poll_interval"`   // How often the provider is polled while watching
			DistanceFilter float64       `yaml:"distance_filter"` // Minimum movement in meters before a fix is delivered
			HighAccuracy   *bool         `yaml:"high_accuracy"`   // Defaults to true
		} `yaml:"exploration"`
	} `yaml:"services"`
}

// LoadConfig loads the YAML configuration from the specified file.
// Defaults are applied to unset fields and the result is validated.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, fmt.Errorf("read config %s: %w", filename, err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "fog-agent"
	}
	if c.Identity.DeviceFile == "" {
		c.Identity.DeviceFile = "data/device.json"
	}

	s := &c.Storage
	if s.Backend == "" {
		s.Backend = StorageFile
	}
	s.Backend = strings.ToLower(s.Backend)
	if s.Key == "" {
		s.Key = "exploredAreas"
	}
	if s.File.Dir == "" {
		s.File.Dir = "data"
	}

	e := &c.Services.Exploration
	if e.Topic == "" {
		e.Topic = "fog/exploration"
	}
	if e.GPSDeviceBaudRate == 0 {
		e.GPSDeviceBaudRate = 9600
	}
	if e.InitialTimeout == 0 {
		e.InitialTimeout = 20 * time.Second
	}
	if e.MaximumAge == 0 {
		e.MaximumAge = time.Second
	}
	if e.PollInterval == 0 {
		e.PollInterval = 5 * time.Second
	}
	if e.DistanceFilter == 0 {
		e.DistanceFilter = 10
	}
	if e.HighAccuracy == nil {
		highAccuracy := true
		e.HighAccuracy = &highAccuracy
	}
}

// Validate reports every problem found in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case StorageFile, StorageMemory:
	case StorageRedis:
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required"))
		}
	case StorageS3:
		if c.Storage.S3.Endpoint == "" || c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("storage.s3.endpoint and storage.s3.bucket are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of file, redis, s3, memory", c.Storage.Backend))
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
	}

	e := c.Services.Exploration
	if e.Enabled {
		if e.SensorBased && e.GPSDevicePort == "" {
			errs = append(errs, errors.New("services.exploration.gps_device_port is required for sensor based tracking"))
		}
		if e.QOS < 0 || e.QOS > 2 {
			errs = append(errs, fmt.Errorf("services.exploration.qos must be 0-2, got %d", e.QOS))
		}
		if e.DistanceFilter < 0 {
			errs = append(errs, errors.New("services.exploration.distance_filter must not be negative"))
		}
		if e.PollInterval < 0 || e.InitialTimeout < 0 || e.MaximumAge < 0 {
			errs = append(errs, errors.New("services.exploration durations must not be negative"))
		}
	}

	return errors.Join(errs...)
}
