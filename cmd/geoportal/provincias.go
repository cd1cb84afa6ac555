package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/informaticaRupestre/geoportal-gasolineras/pkg/api"
)

func provinciasCommand() *cli.Command {
	return &cli.Command{
		Name:   "provincias",
		Usage:  "List the provinces accepted by --provincia",
		Action: provinciasAction,
	}
}

func provinciasAction(c *cli.Context) error {
	fuelAPI := api.NewFuelPriceAPI()

	provinces, err := fuelAPI.Provinces(c.Context)
	if err != nil {
		return fmt.Errorf("error fetching provinces: %w", err)
	}

	for _, p := range provinces {
		fmt.Printf("%2d  %s\n", p.ID, p.Name)
	}

	return nil
}
