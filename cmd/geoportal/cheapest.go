package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/informaticaRupestre/geoportal-gasolineras/internal/fuel"
)

func cheapestCommand() *cli.Command {
	return &cli.Command{
		Name:   "cheapest",
		Usage:  "Show the cheapest station for a product",
		Flags:  scopeFlags(),
		Action: cheapestAction,
	}
}

func cheapestAction(c *cli.Context) error {
	product, err := cliProduct(c)
	if err != nil {
		return err
	}

	coord, err := newCoordinator(c)
	if err != nil {
		return err
	}

	snap := coord.Snapshot()
	cheapest, err := fuel.Cheapest(snap.Stations, product)
	switch {
	case errors.Is(err, fuel.ErrNoStations):
		fmt.Println("Sin datos")
		return nil
	case errors.Is(err, fuel.ErrNoPrice):
		fmt.Println("Sin precio disponible")
		return nil
	case err != nil:
		return err
	}

	fmt.Printf("%s - %.3f €/L (%s)\n", cheapest.Name, cheapest.Price, cheapest.Locality)
	fmt.Printf("   %s\n", cheapest.Address)
	if cheapest.Latitude != nil && cheapest.Longitude != nil {
		fmt.Printf("   Coordinates: %f, %f\n", *cheapest.Latitude, *cheapest.Longitude)
	}

	return nil
}
