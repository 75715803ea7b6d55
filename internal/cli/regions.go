package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benmeehan/fog-agent/internal/exploration"
	"github.com/benmeehan/fog-agent/internal/render"
	"github.com/benmeehan/fog-agent/internal/service_registry"
	"github.com/benmeehan/fog-agent/internal/store"
	"github.com/benmeehan/fog-agent/pkg/geo"
	"github.com/benmeehan/fog-agent/pkg/location"
	"github.com/spf13/cobra"
)

func newRegionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Print the persisted explored regions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			segments, _ := cmd.Flags().GetInt("segments")
			if format != "json" && format != "geojson" {
				return fmt.Errorf("unsupported format %q, use json or geojson", format)
			}

			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}

			s, err := service_registry.NewStore(cmd.Context(), env.config, env.fileClient)
			if err != nil {
				return err
			}
			defer s.Close()

			set, err := s.Load(cmd.Context())
			if err != nil && !errors.Is(err, store.ErrCorrupt) {
				return err
			}
			if err != nil {
				env.logger.Warn().Err(err).Msg("Stored regions are corrupt, showing an empty set")
			}

			var out any = set
			if format == "geojson" {
				out = render.Regions(set, render.Options{Segments: segments})
			}
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().String("format", "json", "Output format: json or geojson.")
	cmd.Flags().Int("segments", 64, "Polygon segments per region for geojson output.")
	return cmd
}

func newObserveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "observe",
		Short: "Fold a single coordinate into the persisted regions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")
			if !(location.Location{Latitude: lat, Longitude: lon}).Valid() {
				return fmt.Errorf("coordinate (%v, %v) is out of range or not finite", lat, lon)
			}

			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}

			s, err := service_registry.NewStore(cmd.Context(), env.config, env.fileClient)
			if err != nil {
				return err
			}
			defer s.Close()

			tracker := exploration.NewTracker(s, env.logger)
			tracker.Load(cmd.Context())
			set, res := tracker.Observe(geo.Coordinate{Latitude: lat, Longitude: lon})
			tracker.Close()

			return writeJSON(cmd, struct {
				Created  bool `json:"created"`
				Absorbed int  `json:"absorbed"`
				Regions  any  `json:"regions"`
			}{res.Created, res.Absorbed, set})
		},
	}
	cmd.Flags().Float64("lat", 0, "Latitude in degrees.")
	cmd.Flags().Float64("lon", 0, "Longitude in degrees.")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
