package fuel

import (
	"fmt"
	"strings"

	"github.com/informaticaRupestre/geoportal-gasolineras/pkg/api"
)

// Product is one of the four fuel types this service ranks by. Each variant
// is keyed to exactly one upstream price field; there is no free-text
// matching on product labels.
type Product int

const (
	Gasoline95 Product = iota
	Gasoline98
	DieselA
	DieselPremium
)

// String returns the upstream display name of the product.
func (p Product) String() string {
	switch p {
	case Gasoline95:
		return "Gasolina 95 E5"
	case Gasoline98:
		return "Gasolina 98 E5"
	case DieselA:
		return "Gasóleo A"
	case DieselPremium:
		return "Gasóleo Premium"
	default:
		return "unknown"
	}
}

// Price returns the raw price string of this product for a station.
func (p Product) Price(station *api.GasStation) string {
	switch p {
	case Gasoline95:
		return station.PrecioGasolina95E5
	case Gasoline98:
		return station.PrecioGasolina98E5
	case DieselA:
		return station.PrecioGasoleoA
	case DieselPremium:
		return station.PrecioGasoleoPremium
	default:
		return ""
	}
}

// ParseProduct maps a user-supplied product name to a Product. It accepts the
// short CLI spellings and the upstream display names.
func ParseProduct(s string) (Product, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gasolina95", "gasolina 95 e5", "95":
		return Gasoline95, nil
	case "gasolina98", "gasolina 98 e5", "98":
		return Gasoline98, nil
	case "gasoleoa", "gasóleo a", "gasoleo a", "diesel":
		return DieselA, nil
	case "gasoleopremium", "gasóleo premium", "gasoleo premium", "premium":
		return DieselPremium, nil
	default:
		return 0, fmt.Errorf("unknown product: %q", s)
	}
}

// Products lists all supported products in a fixed order.
func Products() []Product {
	return []Product{Gasoline95, Gasoline98, DieselA, DieselPremium}
}
