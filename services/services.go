package services

import (
	"context"

	"github.com/samber/mo"

	"weatherbot/models"
)

// WeatherService defines the interface for weather lookups
type WeatherService interface {
	GetReading(ctx context.Context, query models.LocationQuery) (*models.WeatherReading, error)
}

// InstallationsService defines the interface for Slack OAuth installations
type InstallationsService interface {
	Install(ctx context.Context, code string) (*models.Installation, error)
	GetBotToken(ctx context.Context, teamID string) (mo.Option[string], error)
}
