package fuel

import (
	"errors"
	"sort"

	"github.com/informaticaRupestre/geoportal-gasolineras/pkg/api"
)

// The two empty states are distinct: a region with no stations at all reads
// differently than a region where no station reports the requested product.
var (
	ErrNoStations = errors.New("no stations available")
	ErrNoPrice    = errors.New("no price available for product")
)

// Cheapest returns the station with the lowest price for the product. Ties
// are broken by input order.
func Cheapest(stations []api.GasStation, product Product) (Station, error) {
	if len(stations) == 0 {
		return Station{}, ErrNoStations
	}

	projected := projectAll(stations, product)
	if len(projected) == 0 {
		return Station{}, ErrNoPrice
	}

	cheapest := projected[0]
	for _, st := range projected[1:] {
		if st.Price < cheapest.Price {
			cheapest = st
		}
	}

	return cheapest, nil
}

// TopByPrice returns up to n stations sorted by ascending price. The sort is
// stable, so equally priced stations keep their upstream order. A negative n
// is treated as zero.
func TopByPrice(stations []api.GasStation, product Product, n int) []Station {
	if n < 0 {
		n = 0
	}

	projected := projectAll(stations, product)

	sort.SliceStable(projected, func(i, j int) bool {
		return projected[i].Price < projected[j].Price
	})

	if len(projected) > n {
		projected = projected[:n]
	}
	return projected
}

// WithinRadius returns stations within radiusKm of the center, sorted by
// ascending distance. Stations without coordinates are dropped. No count cap
// is applied here; callers truncate if they need to.
func WithinRadius(stations []api.GasStation, product Product, lat, lon, radiusKm float64) []StationDistance {
	projected := projectAll(stations, product)

	var nearby []StationDistance
	for _, st := range projected {
		if st.Latitude == nil || st.Longitude == nil {
			continue
		}

		distance := DistanceKm(lat, lon, *st.Latitude, *st.Longitude)
		if distance <= radiusKm {
			nearby = append(nearby, StationDistance{Station: st, DistanceKm: distance})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})

	return nearby
}
