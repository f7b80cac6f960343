package clients

import (
	"context"

	"github.com/slack-go/slack"

	"weatherbot/models"
)

// SlackOAuthClient defines the interface for Slack OAuth operations
type SlackOAuthClient interface {
	GetOAuthV2Response(ctx context.Context, clientID, clientSecret, code, redirectURL string) (*OAuthV2Response, error)
	RefreshOAuthV2Token(ctx context.Context, clientID, clientSecret, refreshToken string) (*OAuthV2Response, error)
}

// SlackClient defines the Slack Web API operations used with a bot token
type SlackClient interface {
	PostMessage(ctx context.Context, channelID, text string) (*SlackPostMessageResponse, error)
	PostEphemeral(ctx context.Context, channelID, userID string, msg slack.Msg) error
	GetTeamInfo(ctx context.Context) (*SlackTeamInfo, error)
}

// SlackClientFactory builds a SlackClient authenticated with the given token
type SlackClientFactory func(token string) SlackClient

// WeatherClient fetches raw observations from a weather provider
type WeatherClient interface {
	GetCurrentWeather(ctx context.Context, query models.LocationQuery) (*WeatherObservation, error)
}
