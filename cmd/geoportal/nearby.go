package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/muesli/gominatim"
	"github.com/urfave/cli/v2"

	"github.com/informaticaRupestre/geoportal-gasolineras/internal/fuel"
)

const defaultRadiusKm = 5.0

func nearbyCommand() *cli.Command {
	return &cli.Command{
		Name:  "nearby",
		Usage: "List stations near a location, closest first",
		Flags: append(scopeFlags(),
			&cli.StringFlag{
				Name:  "location",
				Usage: "Place name to search around",
			},
			&cli.Float64Flag{
				Name:  "lat",
				Usage: "Latitude of the location",
			},
			&cli.Float64Flag{
				Name:  "long",
				Usage: "Longitude of the location",
			},
			&cli.Float64Flag{
				Name:    "radius",
				Aliases: []string{"r"},
				Usage:   "Search radius in kilometers",
				Value:   defaultRadiusKm,
			},
		),
		Action: nearbyAction,
	}
}

func nearbyAction(c *cli.Context) error {
	lat, lng, err := nearbyCenter(c)
	if err != nil {
		return err
	}

	product, err := cliProduct(c)
	if err != nil {
		return err
	}

	coord, err := newCoordinator(c)
	if err != nil {
		return err
	}

	radius := c.Float64("radius")
	snap := coord.Snapshot()
	nearby := fuel.WithinRadius(snap.Stations, product, lat, lng, radius)

	for i, st := range nearby {
		fmt.Printf("%d. %s (%s)\n", i+1, st.Name, st.Address)
		fmt.Printf("   Localidad: %s\n", st.Locality)
		fmt.Printf("   Distance: %.2f km\n", st.DistanceKm)
		fmt.Printf("   %s: %.3f €/L\n", product, st.Price)
		fmt.Printf("   Coordinates: %f, %f\n\n", *st.Latitude, *st.Longitude)
	}

	fmt.Printf("Found %d stations within %g km radius\n", len(nearby), radius)

	return nil
}

// nearbyCenter resolves the search center from the command flags. Checking
// flag presence rather than values keeps an explicit (0, 0) pair usable.
func nearbyCenter(c *cli.Context) (lat, lng float64, err error) {
	if loc := c.String("location"); loc != "" {
		return geocode(loc)
	}
	if !c.IsSet("lat") || !c.IsSet("long") {
		return 0, 0, errors.New("location or latitude and longitude are required")
	}
	return c.Float64("lat"), c.Float64("long"), nil
}

func geocode(name string) (lat, lng float64, err error) {
	gominatim.SetServer("https://nominatim.openstreetmap.org/")
	qry := gominatim.SearchQuery{
		Q: name,
	}

	resp, err := qry.Get()
	if err != nil {
		return 0, 0, err
	}
	if len(resp) == 0 {
		return 0, 0, fmt.Errorf("no results found for location: %s", name)
	}
	fmt.Println("Location found:", resp[0].DisplayName)

	lat, err = strconv.ParseFloat(resp[0].Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lng, err = strconv.ParseFloat(resp[0].Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}
