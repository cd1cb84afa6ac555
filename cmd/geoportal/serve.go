package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/informaticaRupestre/geoportal-gasolineras/internal/geolog"
	"github.com/informaticaRupestre/geoportal-gasolineras/internal/refresh"
	"github.com/informaticaRupestre/geoportal-gasolineras/internal/server"
	"github.com/informaticaRupestre/geoportal-gasolineras/pkg/api"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the derived station views over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "provincia",
				Aliases: []string{"p"},
				Usage:   "Province ID to scope the snapshot (0 for all of Spain)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP server port (overrides GEOPORTAL_PORT)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := server.LoadConfig()
	if err != nil {
		return err
	}
	if port := c.Int("port"); port != 0 {
		cfg.Port = port
	}

	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := server.NewLogger(level)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fuelAPI := api.NewFuelPriceAPI()

	var coord *refresh.Coordinator
	if id := c.Int("provincia"); id > 0 {
		coord = refresh.NewCoordinator(refresh.ProvinceScope(id), func(ctx context.Context) (*api.GasStationList, error) {
			return fuelAPI.StationsByProvince(ctx, id)
		}, cfg.RefreshInterval, logger.Logger)
	} else {
		coord = refresh.NewCoordinator(refresh.ScopeAll, fuelAPI.AllStations, cfg.RefreshInterval, logger.Logger)
	}

	var geoLog *geolog.Log
	if cfg.GeologPath != "" {
		geoLog, err = geolog.Open(ctx, cfg.GeologPath, logger.Logger)
		if err != nil {
			return err
		}
		defer geoLog.Close()
	}

	srv := server.New(cfg, logger, coord, fuelAPI, geoLog)
	return srv.Run(ctx)
}
