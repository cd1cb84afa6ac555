package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/informaticaRupestre/geoportal-gasolineras/internal/fuel"
)

const defaultListCount = 5

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the cheapest stations for a product, best first",
		Flags: append(scopeFlags(),
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of stations to list",
				Value:   defaultListCount,
			},
		),
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	count := c.Int("count")
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}

	product, err := cliProduct(c)
	if err != nil {
		return err
	}

	coord, err := newCoordinator(c)
	if err != nil {
		return err
	}

	snap := coord.Snapshot()
	if len(snap.Stations) == 0 {
		fmt.Println("Sin datos")
		return nil
	}

	top := fuel.TopByPrice(snap.Stations, product, count)
	if len(top) == 0 {
		fmt.Println("Sin precio disponible")
		return nil
	}

	fmt.Printf("Cheapest %s out of %d stations:\n\n", product, len(snap.Stations))
	for i, st := range top {
		fmt.Printf("%d. %s (%s)\n", i+1, st.Name, st.Address)
		fmt.Printf("   Localidad: %s\n", st.Locality)
		fmt.Printf("   Price: %.3f €/L\n", st.Price)
		if st.Latitude != nil && st.Longitude != nil {
			fmt.Printf("   Coordinates: %f, %f\n", *st.Latitude, *st.Longitude)
		}
		fmt.Println()
	}

	return nil
}
