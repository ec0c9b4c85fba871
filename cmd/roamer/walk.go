package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/atharv3903/roamer/internal/app"
	"github.com/atharv3903/roamer/internal/config"
	"github.com/atharv3903/roamer/internal/logger"
	"github.com/atharv3903/roamer/internal/model"
	"github.com/atharv3903/roamer/internal/planner"
)

type walkOutput struct {
	*model.Route
	Path []model.Coord `json:"path,omitempty"`
}

var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Generate one route offline and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		lat, _ := f.GetFloat64("lat")
		lng, _ := f.GetFloat64("lng")
		km, _ := f.GetFloat64("km")
		withPath, _ := f.GetBool("path")

		cfg := config.ServerConfig{EnrichConcurrency: 1}
		cfg.DBDriver, cfg.DSN = dbFlags(cmd)
		cfg.GraphFile, _ = f.GetString("graph")
		if cfg.GraphFile != "" {
			cfg.DSN = ""
		}
		cfg.Tolerance, _ = f.GetFloat64("tolerance")
		cfg.Seed, _ = f.GetInt64("seed")
		cfg.AdjCacheCap = 4096
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := logger.Setup()
		a, err := app.Build(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		route, err := a.Planner.Plan(cmd.Context(), model.Coord{Lat: lat, Lng: lng}, km)
		if err != nil {
			return err
		}
		out := walkOutput{Route: route}
		if withPath {
			out.Path = route.Path
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)
	f := walkCmd.Flags()
	f.String("graph", "", "YAML or JSON graph file, instead of a database")
	f.Float64("lat", 0, "start latitude")
	f.Float64("lng", 0, "start longitude")
	f.Float64("km", 5, "target distance in kilometres")
	f.Float64("tolerance", planner.DefaultTolerance, "start node search half-width in degrees")
	f.Int64("seed", 0, "random seed, 0 for time based")
	f.Bool("path", false, "include the decoded coordinates")
	_ = walkCmd.MarkFlagRequired("lat")
	_ = walkCmd.MarkFlagRequired("lng")
}
