package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"weatherbot/clients"
	"weatherbot/core"
	"weatherbot/models"
)

// OpenWeatherClient implements the clients.WeatherClient interface against the
// OpenWeatherMap current weather endpoint
type OpenWeatherClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	countryCode string
}

// currentWeatherResponse is the part of /data/2.5/weather the bot reads.
// Temperatures are Kelvin because no units parameter is sent.
type currentWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp    *decimal.Decimal `json:"temp"`
		TempMin *decimal.Decimal `json:"temp_min"`
		TempMax *decimal.Decimal `json:"temp_max"`
	} `json:"main"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewOpenWeatherClient creates a new OpenWeatherMap client
func NewOpenWeatherClient(baseURL, apiKey, countryCode string, timeout time.Duration) clients.WeatherClient {
	return &OpenWeatherClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		countryCode: countryCode,
	}
}

// GetCurrentWeather fetches the current observation for a city name or zip code
func (c *OpenWeatherClient) GetCurrentWeather(
	ctx context.Context,
	query models.LocationQuery,
) (*clients.WeatherObservation, error) {
	params := url.Values{}
	params.Set(string(query.Kind), query.Value+","+c.countryCode)
	params.Set("APPID", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.ProviderError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.ProviderError{StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		message := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			message = errResp.Message
		}
		return nil, &core.ProviderError{StatusCode: resp.StatusCode, Message: message}
	}

	var weather currentWeatherResponse
	if err := json.Unmarshal(body, &weather); err != nil {
		return nil, &core.ProviderError{StatusCode: resp.StatusCode, Message: "failed to decode response", Err: err}
	}

	if weather.Name == "" {
		return nil, &core.ProviderError{StatusCode: resp.StatusCode, Message: "response is missing name"}
	}
	if weather.Main.Temp == nil || weather.Main.TempMax == nil {
		return nil, &core.ProviderError{StatusCode: resp.StatusCode, Message: "response is missing temperatures"}
	}

	observation := &clients.WeatherObservation{
		Name:     weather.Name,
		TempK:    *weather.Main.Temp,
		TempMaxK: *weather.Main.TempMax,
		TempMinK: *weather.Main.TempMax,
	}
	if weather.Main.TempMin != nil {
		observation.TempMinK = *weather.Main.TempMin
	}

	return observation, nil
}
