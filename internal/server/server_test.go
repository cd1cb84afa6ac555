package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/informaticaRupestre/geoportal-gasolineras/internal/refresh"
	"github.com/informaticaRupestre/geoportal-gasolineras/pkg/api"
)

func testConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            0,
		RefreshInterval: time.Hour,
		RateLimit:       1000,
		NearbyLimit:     50,
		NominatimServer: "https://nominatim.openstreetmap.org/",
	}
}

func testServer(t *testing.T, stations []api.GasStation) *Server {
	t.Helper()

	coord := refresh.NewCoordinator(refresh.ScopeAll, func(ctx context.Context) (*api.GasStationList, error) {
		return &api.GasStationList{
			Fecha:             "01/01/2026 8:00:00",
			ResultadoConsulta: api.ApiResultOK,
			ListaEESSPrecio:   stations,
		}, nil
	}, time.Hour, nil)

	if _, err := coord.Refresh(context.Background(), true); err != nil {
		t.Fatalf("initial refresh failed: %v", err)
	}

	logger := NewLogger(slog.LevelError)
	return New(testConfig(), logger, coord, api.NewFuelPriceAPI(), nil)
}

func getJSON(t *testing.T, handler http.Handler, url string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("invalid JSON from %s: %v\n%s", url, err, rec.Body.String())
		}
	}
	return rec
}

func sampleStations() []api.GasStation {
	return []api.GasStation{
		{
			Rotulo:             "Repsol",
			Direccion:          "Calle Mayor 1",
			Localidad:          "Madrid",
			Latitud:            "40,0",
			Longitud:           "-3,0",
			PrecioGasolina95E5: "1,529",
		},
		{
			Rotulo:             "Cepsa",
			Direccion:          "Avenida Sur 2",
			Localidad:          "Getafe",
			Latitud:            "40,1",
			Longitud:           "-3,0",
			PrecioGasolina95E5: "1,4",
		},
		{
			Rotulo:             "BP",
			Direccion:          "Carretera Norte 3",
			Localidad:          "Alcobendas",
			Latitud:            "40,2",
			Longitud:           "-3,0",
			PrecioGasolina95E5: "",
		},
	}
}

func TestHandleStatus(t *testing.T) {
	s := testServer(t, sampleStations())

	var status map[string]any
	rec := getJSON(t, s.Router(), "/", &status)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if status["total_estaciones"].(float64) != 3 {
		t.Errorf("total_estaciones = %v, expected 3", status["total_estaciones"])
	}
	if status["scope"] != refresh.ScopeAll {
		t.Errorf("scope = %v", status["scope"])
	}
}

func TestHandleCheapest(t *testing.T) {
	s := testServer(t, sampleStations())

	var view struct {
		Value      string `json:"value"`
		Attributes struct {
			Gasolineras []map[string]any `json:"gasolineras"`
		} `json:"attributes"`
	}
	rec := getJSON(t, s.Router(), "/stations/cheapest", &view)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if view.Value != "Cepsa - 1.400 €/L (Getafe)" {
		t.Errorf("value = %q", view.Value)
	}
	if len(view.Attributes.Gasolineras) != 1 {
		t.Fatalf("expected 1 attribute entry, got %d", len(view.Attributes.Gasolineras))
	}
	if view.Attributes.Gasolineras[0]["nombre"] != "Cepsa" {
		t.Errorf("attribute nombre = %v", view.Attributes.Gasolineras[0]["nombre"])
	}
}

func TestHandleCheapestEmptyStates(t *testing.T) {
	var view struct {
		Value string `json:"value"`
	}

	// No records at all.
	s := testServer(t, nil)
	getJSON(t, s.Router(), "/stations/cheapest", &view)
	if view.Value != "Sin datos" {
		t.Errorf("no-records value = %q, expected Sin datos", view.Value)
	}

	// Records without the requested product's price.
	s = testServer(t, []api.GasStation{{Rotulo: "Repsol", PrecioGasoleoA: "1,4"}})
	getJSON(t, s.Router(), "/stations/cheapest?product=gasolina95", &view)
	if view.Value != "Sin precio disponible" {
		t.Errorf("no-price value = %q, expected Sin precio disponible", view.Value)
	}
}

func TestHandleTop(t *testing.T) {
	s := testServer(t, sampleStations())

	var view struct {
		Value      float64 `json:"value"`
		Attributes struct {
			Gasolineras []map[string]any `json:"gasolineras"`
		} `json:"attributes"`
	}
	rec := getJSON(t, s.Router(), "/stations/top?n=2", &view)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if view.Value != 1.4 {
		t.Errorf("value = %f, expected minimum price 1.4", view.Value)
	}
	if len(view.Attributes.Gasolineras) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(view.Attributes.Gasolineras))
	}
	if view.Attributes.Gasolineras[0]["nombre"] != "Cepsa" {
		t.Errorf("first entry = %v, expected Cepsa", view.Attributes.Gasolineras[0]["nombre"])
	}
}

func TestHandleTopRejectsBadN(t *testing.T) {
	s := testServer(t, sampleStations())

	rec := getJSON(t, s.Router(), "/stations/top?n=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestHandleNearby(t *testing.T) {
	s := testServer(t, sampleStations())

	var view struct {
		Value      float64 `json:"value"`
		Attributes struct {
			Gasolineras []struct {
				Nombre      string  `json:"nombre"`
				DistanciaKm float64 `json:"distancia_km"`
			} `json:"gasolineras"`
		} `json:"attributes"`
	}
	rec := getJSON(t, s.Router(), "/stations/nearby?lat=40.0&lng=-3.0&radius=15", &view)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if view.Value != 2 {
		t.Errorf("value = %f, expected 2 stations within 15km", view.Value)
	}
	got := view.Attributes.Gasolineras
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Nombre != "Repsol" || got[1].Nombre != "Cepsa" {
		t.Errorf("order = %s, %s; expected nearest first (Repsol, Cepsa)", got[0].Nombre, got[1].Nombre)
	}
	if got[1].DistanciaKm < 11 || got[1].DistanciaKm > 11.2 {
		t.Errorf("distancia_km = %f, expected ~11.1", got[1].DistanciaKm)
	}
}

func TestHandleNearbyRequiresCoordinates(t *testing.T) {
	s := testServer(t, sampleStations())

	rec := getJSON(t, s.Router(), "/stations/nearby?radius=5", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestHandleRefresh(t *testing.T) {
	s := testServer(t, sampleStations())

	req := httptest.NewRequest(http.MethodPost, "/refresh?force=true", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var status map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if status["total_estaciones"].(float64) != 3 {
		t.Errorf("total_estaciones = %v", status["total_estaciones"])
	}
}

func TestHandleNearbyCapsAttributeList(t *testing.T) {
	// More in-radius stations than the attribute cap: the value keeps the
	// full count while the listing is truncated to NearbyLimit entries.
	var stations []api.GasStation
	for i := 0; i < 60; i++ {
		stations = append(stations, api.GasStation{
			Rotulo:             fmt.Sprintf("Estación %d", i),
			Localidad:          "Madrid",
			Latitud:            fmt.Sprintf("40,0%02d", i),
			Longitud:           "-3,0",
			PrecioGasolina95E5: "1,5",
		})
	}
	s := testServer(t, stations)

	var view struct {
		Value      float64 `json:"value"`
		Attributes struct {
			Gasolineras []map[string]any `json:"gasolineras"`
		} `json:"attributes"`
	}
	rec := getJSON(t, s.Router(), "/stations/nearby?lat=40.0&lng=-3.0&radius=15", &view)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if view.Value != 60 {
		t.Errorf("value = %f, expected the full in-radius count 60", view.Value)
	}
	if len(view.Attributes.Gasolineras) != s.cfg.NearbyLimit {
		t.Errorf("listed %d entries, expected the cap %d", len(view.Attributes.Gasolineras), s.cfg.NearbyLimit)
	}
}

func TestRunSetupFailure(t *testing.T) {
	coord := refresh.NewCoordinator(refresh.ScopeAll, func(ctx context.Context) (*api.GasStationList, error) {
		return nil, errors.New("upstream down")
	}, time.Hour, nil)
	s := New(testConfig(), NewLogger(slog.LevelError), coord, api.NewFuelPriceAPI(), nil)

	err := s.Run(context.Background())
	if err == nil {
		t.Fatal("Run() started serving without a first snapshot")
	}
	if !strings.Contains(err.Error(), "not ready") {
		t.Errorf("error = %v, expected the not-ready setup failure", err)
	}
}

func TestHandleUnknownProduct(t *testing.T) {
	s := testServer(t, sampleStations())

	rec := getJSON(t, s.Router(), "/stations/cheapest?product=hidrogeno", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}
