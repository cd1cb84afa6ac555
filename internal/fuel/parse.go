package fuel

import (
	"strconv"
	"strings"
)

// ParseDecimal parses an upstream numeric field. The service formats decimals
// with a comma separator, inconsistently across fields, so every numeric
// field (price, latitude, longitude) goes through here.
func ParseDecimal(s string) (float64, error) {
	s = strings.Replace(s, ",", ".", 1)
	m, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return m, nil
}

// parseOptional returns nil for empty or malformed values instead of an
// error. Used for coordinates, which may be missing independently of price
// validity.
func parseOptional(s string) *float64 {
	v, err := ParseDecimal(s)
	if err != nil {
		return nil
	}
	return &v
}
