package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/informaticaRupestre/geoportal-gasolineras/internal/fuel"
	"github.com/informaticaRupestre/geoportal-gasolineras/internal/refresh"
	"github.com/informaticaRupestre/geoportal-gasolineras/pkg/api"
)

func main() {
	app := &cli.App{
		Name:  "geoportal",
		Usage: "Query Spanish fuel station prices by product and location",
		Commands: []*cli.Command{
			provinciasCommand(),
			cheapestCommand(),
			listCommand(),
			nearbyCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func scopeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "provincia",
			Aliases: []string{"p"},
			Usage:   "Province ID to scope the query (0 for all of Spain)",
		},
		&cli.StringFlag{
			Name:  "product",
			Usage: "Fuel product: gasolina95, gasolina98, diesel or premium",
			Value: "gasolina95",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

func cliLogger(c *cli.Context) *slog.Logger {
	if c.Bool("verbose") {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

func cliProduct(c *cli.Context) (fuel.Product, error) {
	return fuel.ParseProduct(c.String("product"))
}

// newCoordinator builds a coordinator for the scope selected by the CLI
// flags and primes it with one fetch.
func newCoordinator(c *cli.Context) (*refresh.Coordinator, error) {
	fuelAPI := api.NewFuelPriceAPI()
	logger := cliLogger(c)

	var coord *refresh.Coordinator
	if id := c.Int("provincia"); id > 0 {
		coord = refresh.NewCoordinator(refresh.ProvinceScope(id), func(ctx context.Context) (*api.GasStationList, error) {
			return fuelAPI.StationsByProvince(ctx, id)
		}, refresh.DefaultInterval, logger)
	} else {
		coord = refresh.NewCoordinator(refresh.ScopeAll, fuelAPI.AllStations, refresh.DefaultInterval, logger)
	}

	if _, err := coord.Refresh(c.Context, true); err != nil {
		return nil, err
	}
	return coord, nil
}
