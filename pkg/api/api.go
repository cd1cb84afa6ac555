// Package api provides types and functions to interact with the Spanish government
// fuel price API: the province listing, per-province station listings and the
// country-wide station listing.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	ApiResultOK = "OK"

	// DefaultBaseURL is the Ministry's REST endpoint for fuel prices.
	DefaultBaseURL = "https://energia.serviciosmin.gob.es/ServiciosRESTCarburantes/PreciosCarburantes"

	// Per-endpoint timeouts. The country-wide listing is a ~10MB payload and
	// needs the most headroom.
	ProvincesTimeout   = 15 * time.Second
	ByProvinceTimeout  = 20 * time.Second
	AllStationsTimeout = 30 * time.Second
)

// FuelPriceAPI provides methods to fetch fuel price data from the official API.
type FuelPriceAPI struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a FuelPriceAPI client.
type Option func(*FuelPriceAPI)

// WithBaseURL overrides the upstream base URL. Used in tests.
func WithBaseURL(url string) Option {
	return func(api *FuelPriceAPI) {
		api.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(api *FuelPriceAPI) {
		api.httpClient = client
	}
}

// NewFuelPriceAPI creates a new FuelPriceAPI client with default settings.
func NewFuelPriceAPI(opts ...Option) *FuelPriceAPI {
	api := &FuelPriceAPI{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}

// Provinces fetches the province reference listing.
func (api *FuelPriceAPI) Provinces(ctx context.Context) ([]Province, error) {
	url := api.baseURL + "/Listados/Provincias/"

	body, err := api.get(ctx, url, ProvincesTimeout)
	if err != nil {
		return nil, err
	}

	var provinces []Province
	if err := json.Unmarshal(body, &provinces); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	return provinces, nil
}

// StationsByProvince fetches fuel station prices for a single province.
func (api *FuelPriceAPI) StationsByProvince(ctx context.Context, provinceID int) (*GasStationList, error) {
	url := fmt.Sprintf("%s/EstacionesTerrestres/FiltroProvincia/%02d", api.baseURL, provinceID)

	body, err := api.get(ctx, url, ByProvinceTimeout)
	if err != nil {
		return nil, err
	}

	var pricesResponse GasStationList
	if err := json.Unmarshal(body, &pricesResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	return &pricesResponse, nil
}

// AllStations fetches the latest prices for every station in the country.
func (api *FuelPriceAPI) AllStations(ctx context.Context) (*GasStationList, error) {
	url := api.baseURL + "/EstacionesTerrestres/"

	body, err := api.get(ctx, url, AllStationsTimeout)
	if err != nil {
		return nil, err
	}

	var pricesResponse GasStationList
	if err := json.Unmarshal(body, &pricesResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	return &pricesResponse, nil
}

func (api *FuelPriceAPI) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := api.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	return body, nil
}
