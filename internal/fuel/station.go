// Package fuel holds the pure core of the service: decimal normalization,
// product-keyed record projection, and the price/distance ranking engine.
// Everything here is side-effect free and operates on immutable snapshots.
package fuel

import (
	"github.com/informaticaRupestre/geoportal-gasolineras/pkg/api"
)

// Sentinels used when a station omits a display field. Matching the upstream
// locale keeps the presentation output stable for Spanish consumers.
const (
	UnknownName    = "Desconocido"
	UnknownAddress = "N/A"
)

// Station is a raw upstream record projected to a single product's price plus
// parsed coordinates. Derived per query, never stored.
type Station struct {
	Name      string
	Address   string
	Locality  string
	Price     float64
	Latitude  *float64
	Longitude *float64
}

// StationDistance pairs a Station with its distance from a query center.
type StationDistance struct {
	Station
	DistanceKm float64
}

// Project maps a raw station record to a normalized Station for the given
// product. Records without a parseable price for that product are excluded
// (ok=false); an unreported price is not a zero price. Coordinates may be nil
// independently of price validity.
func Project(raw *api.GasStation, product Product) (Station, bool) {
	price, err := ParseDecimal(product.Price(raw))
	if err != nil {
		return Station{}, false
	}

	st := Station{
		Name:      raw.Rotulo,
		Address:   raw.Direccion,
		Locality:  raw.Localidad,
		Price:     price,
		Latitude:  parseOptional(raw.Latitud),
		Longitude: parseOptional(raw.Longitud),
	}
	if st.Name == "" {
		st.Name = UnknownName
	}
	if st.Address == "" {
		st.Address = UnknownAddress
	}
	if st.Locality == "" {
		st.Locality = UnknownAddress
	}

	return st, true
}

// projectAll projects every record with a valid price, preserving input order.
func projectAll(stations []api.GasStation, product Product) []Station {
	var projected []Station
	for i := range stations {
		st, ok := Project(&stations[i], product)
		if !ok {
			continue
		}
		projected = append(projected, st)
	}
	return projected
}
