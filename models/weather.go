package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LocationKind is the OpenWeatherMap query parameter a location is sent as
type LocationKind string

const (
	LocationKindCity LocationKind = "q"
	LocationKindZip  LocationKind = "zip"
)

type LocationQuery struct {
	Kind  LocationKind `json:"kind"`
	Value string       `json:"value"`
}

// CacheKey identifies the query independent of letter case
func (q LocationQuery) CacheKey() string {
	return fmt.Sprintf("weather:%s:%s", q.Kind, strings.ToLower(strings.TrimSpace(q.Value)))
}

func (q LocationQuery) String() string {
	if q.Kind == LocationKindCity {
		return "city:" + q.Value
	}
	return "zip:" + q.Value
}

// WeatherReading holds temperatures already converted to Fahrenheit
type WeatherReading struct {
	Name     string          `json:"name"`
	CurrentF decimal.Decimal `json:"current_f"`
	LowF     decimal.Decimal `json:"low_f"`
	HighF    decimal.Decimal `json:"high_f"`
}

// FormatFahrenheit renders a temperature the way it is shown in Slack, e.g. "80.33 ºF"
func FormatFahrenheit(f decimal.Decimal) string {
	return f.StringFixed(2) + " ºF"
}

// Summary is the multi-line text posted back to Slack
func (r WeatherReading) Summary() string {
	return fmt.Sprintf("%s \n Current: %s \n Low: %s \n High: %s",
		r.Name,
		FormatFahrenheit(r.CurrentF),
		FormatFahrenheit(r.LowF),
		FormatFahrenheit(r.HighF),
	)
}
