package openweather

import (
	"context"

	"github.com/stretchr/testify/mock"

	"weatherbot/clients"
	"weatherbot/models"
)

type MockWeatherClient struct {
	mock.Mock
}

func (m *MockWeatherClient) GetCurrentWeather(
	ctx context.Context,
	query models.LocationQuery,
) (*clients.WeatherObservation, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.WeatherObservation), args.Error(1)
}
