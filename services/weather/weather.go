package weather

import (
	"context"
	"fmt"
	"log"

	"weatherbot/clients"
	"weatherbot/models"
)

type WeatherService struct {
	weatherClient clients.WeatherClient
	cache         ReadingsCache
}

func NewWeatherService(weatherClient clients.WeatherClient, cache ReadingsCache) *WeatherService {
	return &WeatherService{
		weatherClient: weatherClient,
		cache:         cache,
	}
}

// GetReading returns the current, low and high temperatures in Fahrenheit.
// Cache failures are logged and never fail the lookup.
func (s *WeatherService) GetReading(ctx context.Context, query models.LocationQuery) (*models.WeatherReading, error) {
	log.Printf("📋 Starting to get weather reading for %s", query)
	key := query.CacheKey()

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("⚠️ Failed to read weather cache for %s: %v", key, err)
	} else if reading, ok := cached.Get(); ok {
		log.Printf("📋 Completed successfully - served cached reading for %s", query)
		return reading, nil
	}

	observation, err := s.weatherClient.GetCurrentWeather(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get current weather for %s: %w", query, err)
	}

	reading := &models.WeatherReading{
		Name:     observation.Name,
		CurrentF: KelvinToFahrenheit(observation.TempK),
		LowF:     KelvinToFahrenheit(observation.TempMinK),
		HighF:    KelvinToFahrenheit(observation.TempMaxK),
	}

	if err := s.cache.Set(ctx, key, reading); err != nil {
		log.Printf("⚠️ Failed to cache weather reading for %s: %v", key, err)
	}

	log.Printf("📋 Completed successfully - got weather reading for %s (%s)", query, reading.Name)
	return reading, nil
}
