package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"

	"github.com/informaticaRupestre/geoportal-gasolineras/internal/fuel"
)

const (
	// DefaultRadius is applied when a nearby query omits the radius, in km.
	DefaultRadius = 5.0

	defaultTopN = 5

	// The two user-visible empty states. A region with no stations and a
	// region whose stations lack the requested product read differently.
	msgNoData  = "Sin datos"
	msgNoPrice = "Sin precio disponible"
)

// viewResponse is the produced interface of every derived view: a value plus
// a structured attribute bag.
type viewResponse struct {
	Value      any            `json:"value"`
	Attributes map[string]any `json:"attributes"`
}

// stationAttrs mirrors the attribute dictionaries of the original views.
type stationAttrs struct {
	Nombre      string   `json:"nombre"`
	Precio      float64  `json:"precio"`
	Direccion   string   `json:"direccion"`
	Localidad   string   `json:"localidad"`
	Latitud     *float64 `json:"latitud"`
	Longitud    *float64 `json:"longitud"`
	DistanciaKm *float64 `json:"distancia_km,omitempty"`
}

func stationToAttrs(st fuel.Station) stationAttrs {
	return stationAttrs{
		Nombre:    st.Name,
		Precio:    st.Price,
		Direccion: st.Address,
		Localidad: st.Locality,
		Latitud:   st.Latitude,
		Longitud:  st.Longitude,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"scope":            s.coord.Scope(),
		"total_estaciones": 0,
	}
	if snap := s.coord.Snapshot(); snap != nil {
		status["total_estaciones"] = len(snap.Stations)
		status["fecha"] = snap.Date
		status["actualizado"] = snap.FetchedAt
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleProvinces(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "provinces"

	if cached, found := s.cache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	provinces, err := s.fuelAPI.Provinces(r.Context())
	if err != nil {
		s.logger.Error("Error fetching provinces", "error", err)
		http.Error(w, "error fetching provinces", http.StatusBadGateway)
		return
	}

	s.cache.Set(cacheKey, provinces, cache.DefaultExpiration)
	writeJSON(w, http.StatusOK, provinces)
}

func (s *Server) handleCheapest(w http.ResponseWriter, r *http.Request) {
	product, ok := s.productParam(w, r)
	if !ok {
		return
	}

	snap := s.coord.Snapshot()
	if snap == nil {
		writeJSON(w, http.StatusOK, viewResponse{Value: msgNoData, Attributes: map[string]any{}})
		return
	}

	cheapest, err := fuel.Cheapest(snap.Stations, product)
	switch {
	case errors.Is(err, fuel.ErrNoStations):
		writeJSON(w, http.StatusOK, viewResponse{Value: msgNoData, Attributes: map[string]any{}})
		return
	case errors.Is(err, fuel.ErrNoPrice):
		writeJSON(w, http.StatusOK, viewResponse{Value: msgNoPrice, Attributes: map[string]any{}})
		return
	}

	value := fmt.Sprintf("%s - %.3f €/L (%s)", cheapest.Name, cheapest.Price, cheapest.Locality)
	writeJSON(w, http.StatusOK, viewResponse{
		Value: value,
		Attributes: map[string]any{
			"producto":    product.String(),
			"gasolineras": []stationAttrs{stationToAttrs(cheapest)},
		},
	})
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	product, ok := s.productParam(w, r)
	if !ok {
		return
	}

	n := defaultTopN
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		parsed, err := strconv.Atoi(nStr)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid n value", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	snap := s.coord.Snapshot()
	if snap == nil || len(snap.Stations) == 0 {
		writeJSON(w, http.StatusOK, viewResponse{Value: msgNoData, Attributes: map[string]any{}})
		return
	}

	top := fuel.TopByPrice(snap.Stations, product, n)
	if len(top) == 0 {
		writeJSON(w, http.StatusOK, viewResponse{Value: msgNoPrice, Attributes: map[string]any{}})
		return
	}

	attrs := make([]stationAttrs, 0, len(top))
	for _, st := range top {
		attrs = append(attrs, stationToAttrs(st))
	}

	writeJSON(w, http.StatusOK, viewResponse{
		Value: top[0].Price,
		Attributes: map[string]any{
			"producto":    product.String(),
			"gasolineras": attrs,
		},
	})
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	product, ok := s.productParam(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	radius := DefaultRadius
	if radiusStr := query.Get("radius"); radiusStr != "" {
		parsed, err := strconv.ParseFloat(radiusStr, 64)
		if err == nil && parsed > 0 {
			radius = parsed
		}
	}

	var lat, lng float64
	var err error
	if location := query.Get("location"); location != "" {
		lat, lng, err = s.geocodeLocation(location)
		if err != nil {
			http.Error(w, "location not found: "+location, http.StatusNotFound)
			return
		}
	} else {
		lat, err = strconv.ParseFloat(query.Get("lat"), 64)
		if err != nil {
			http.Error(w, "Invalid latitude value", http.StatusBadRequest)
			return
		}
		lng, err = strconv.ParseFloat(query.Get("lng"), 64)
		if err != nil {
			http.Error(w, "Invalid longitude value", http.StatusBadRequest)
			return
		}
	}

	if s.geolog != nil {
		if err := s.geolog.LogSearch(r.Context(), lat, lng, radius); err != nil {
			s.logger.Error("Failed to log search location", "error", err)
		}
	}

	snap := s.coord.Snapshot()
	if snap == nil || len(snap.Stations) == 0 {
		writeJSON(w, http.StatusOK, viewResponse{Value: 0, Attributes: map[string]any{"gasolineras": []stationAttrs{}}})
		return
	}

	cacheKey := fmt.Sprintf("nearby_%d_%d_%f_%f_%f", snap.FetchedAt.Unix(), product, lat, lng, radius)
	var nearby []fuel.StationDistance
	if cached, found := s.cache.Get(cacheKey); found {
		nearby = cached.([]fuel.StationDistance)
	} else {
		nearby = fuel.WithinRadius(snap.Stations, product, lat, lng, radius)
		s.cache.Set(cacheKey, nearby, cache.DefaultExpiration)
	}

	listed := nearby
	if len(listed) > s.cfg.NearbyLimit {
		listed = listed[:s.cfg.NearbyLimit]
	}

	attrs := make([]stationAttrs, 0, len(listed))
	for _, st := range listed {
		a := stationToAttrs(st.Station)
		d := st.DistanceKm
		a.DistanciaKm = &d
		attrs = append(attrs, a)
	}

	writeJSON(w, http.StatusOK, viewResponse{
		Value: len(nearby),
		Attributes: map[string]any{
			"producto":    product.String(),
			"radio_km":    radius,
			"gasolineras": attrs,
		},
	})
}

func (s *Server) handlePopularLocations(w http.ResponseWriter, r *http.Request) {
	if s.geolog == nil {
		writeJSON(w, http.StatusOK, map[string]any{"locations": []any{}})
		return
	}

	popular, err := s.geolog.PopularLocations(r.Context())
	if err != nil {
		s.logger.Error("Error querying popular locations", "error", err)
		http.Error(w, "error querying popular locations", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"locations": popular})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	snap, err := s.coord.Refresh(r.Context(), force)
	if err != nil {
		s.logger.Error("On-demand refresh failed", "error", err)
		http.Error(w, "refresh failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scope":            snap.Scope,
		"fecha":            snap.Date,
		"actualizado":      snap.FetchedAt,
		"total_estaciones": len(snap.Stations),
	})
}

// productParam resolves the product query parameter, defaulting to Gasolina
// 95 E5. Reports a 400 itself when the value is unknown.
func (s *Server) productParam(w http.ResponseWriter, r *http.Request) (fuel.Product, bool) {
	raw := r.URL.Query().Get("product")
	if raw == "" {
		return fuel.Gasoline95, true
	}

	product, err := fuel.ParseProduct(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return product, true
}

func (s *Server) geocodeLocation(location string) (lat, lng float64, err error) {
	if cached, ok := s.cache.Get("geocode_" + location); ok {
		result := cached.(gominatim.SearchResult)
		return gominatimResultToLatLon(result)
	}

	query := gominatim.SearchQuery{Q: location}
	results, err := query.Get()
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding error: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no results found for location: %s", location)
	}
	s.cache.Set("geocode_"+location, results[0], cache.DefaultExpiration)

	return gominatimResultToLatLon(results[0])
}

func gominatimResultToLatLon(result gominatim.SearchResult) (lat, lng float64, err error) {
	lat, err = strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("error parsing latitude: %w", err)
	}

	lng, err = strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("error parsing longitude: %w", err)
	}

	return lat, lng, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status line is already out; an encode failure can only be logged by
	// the caller's middleware.
	_ = json.NewEncoder(w).Encode(v)
}
