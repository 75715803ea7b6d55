package cli

import (
	"fmt"
	"time"

	"github.com/benmeehan/fog-agent/internal/service_registry"
	"github.com/benmeehan/fog-agent/pkg/identity"
	"github.com/benmeehan/fog-agent/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the agent until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			config, log := env.config, env.logger

			deviceInfo := identity.NewDeviceInfo(config.Identity.DeviceFile, env.fileClient)
			if err := deviceInfo.LoadDeviceInfo(); err != nil {
				return fmt.Errorf("failed to load device information: %w", err)
			}
			log = log.With().Str("device_id", deviceInfo.GetDeviceID()).Logger()

			s, err := service_registry.NewStore(cmd.Context(), config, env.fileClient)
			if err != nil {
				return fmt.Errorf("failed to open %s storage: %w", config.Storage.Backend, err)
			}
			defer s.Close()

			var mqttClient mqtt.MQTTClient
			if config.MQTT.Enabled {
				// Generate a unique MQTT Client ID by appending a UUID
				clientID := config.MQTT.ClientID + "-" + uuid.New().String()
				log.Info().Str("client_id", clientID).Msg("Using MQTT client ID")

				mqttService := mqtt.NewMqttService(env.fileClient, log)
				err := mqttService.Initialize(mqtt.Options{
					Broker:         config.MQTT.Broker,
					ClientID:       clientID,
					CACertPath:     config.MQTT.CACertificate,
					Username:       config.MQTT.Username,
					Password:       config.MQTT.Password,
					ConnectTimeout: 30 * time.Second,
				})
				if err != nil {
					return fmt.Errorf("failed to initialize MQTT connection: %w", err)
				}
				defer mqttService.Disconnect(250)
				mqttClient = mqttService
			}

			serviceRegistry := service_registry.NewServiceRegistry(mqttClient, s, log)
			if err := serviceRegistry.RegisterServices(config, deviceInfo); err != nil {
				return err
			}
			if err := serviceRegistry.StartServices(); err != nil {
				return err
			}
			log.Info().Msg("All services started successfully")

			<-cmd.Context().Done()

			log.Info().Msg("Shutting down gracefully...")
			return serviceRegistry.StopServices()
		},
	}
}
