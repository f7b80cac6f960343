package weather

import (
	"context"

	"github.com/stretchr/testify/mock"

	"weatherbot/models"
)

// MockWeatherService is a mock implementation of the WeatherService interface
type MockWeatherService struct {
	mock.Mock
}

func (m *MockWeatherService) GetReading(ctx context.Context, query models.LocationQuery) (*models.WeatherReading, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherReading), args.Error(1)
}
