package clients

import (
	"time"

	"github.com/shopspring/decimal"
)

// OAuthV2Response represents our custom OAuth response with only needed fields
type OAuthV2Response struct {
	TeamID       string
	TeamName     string
	BotUserID    string
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration // zero when token rotation is disabled for the app
}

// SlackTeamInfo represents the response from Slack's team.info API
type SlackTeamInfo struct {
	ID     string
	Name   string
	Domain string
}

// SlackPostMessageResponse represents the response from posting a message to Slack
type SlackPostMessageResponse struct {
	Channel   string
	Timestamp string
}

// WeatherObservation is a provider reading with temperatures in Kelvin
type WeatherObservation struct {
	Name     string
	TempK    decimal.Decimal
	TempMinK decimal.Decimal
	TempMaxK decimal.Decimal
}
