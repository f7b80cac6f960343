package weather

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"
	"github.com/slack-go/slack"

	"weatherbot/clients"
	"weatherbot/core"
	"weatherbot/models"
	"weatherbot/services"
)

// ErrorReporter is implemented by middleware.ErrorAlertMiddleware
type ErrorReporter interface {
	AlertOnError(err error, context string)
}

// WeatherUseCase answers slash commands and bot mentions with weather readings
type WeatherUseCase struct {
	weatherService       services.WeatherService
	installationsService services.InstallationsService
	slackClientFactory   clients.SlackClientFactory
	defaultBotToken      string
	errorReporter        ErrorReporter
}

// NewWeatherUseCase creates a new instance of WeatherUseCase
func NewWeatherUseCase(
	weatherService services.WeatherService,
	installationsService services.InstallationsService,
	slackClientFactory clients.SlackClientFactory,
	defaultBotToken string,
	errorReporter ErrorReporter,
) *WeatherUseCase {
	return &WeatherUseCase{
		weatherService:       weatherService,
		installationsService: installationsService,
		slackClientFactory:   slackClientFactory,
		defaultBotToken:      defaultBotToken,
		errorReporter:        errorReporter,
	}
}

// ProcessSlashCommand always produces a response for Slack to render
func (u *WeatherUseCase) ProcessSlashCommand(ctx context.Context, cmd models.SlashCommand) slack.Msg {
	log.Printf("📋 Starting to process slash command %s from team %s", cmd.Command, cmd.TeamID)

	query, ok := ParseLocation(cmd.Text).Get()
	if !ok {
		log.Printf("📋 Completed successfully - sent help for slash command text: %q", cmd.Text)
		return SlashHelpMessage()
	}

	reading, err := u.weatherService.GetReading(ctx, query)
	if err != nil {
		logLookupFailure("slash command", err)
		u.errorReporter.AlertOnError(err, fmt.Sprintf("Slash command %s (team: %s, channel: %s)", cmd.Command, cmd.TeamID, cmd.ChannelID))
		return LookupErrorMessage(query)
	}

	log.Printf("📋 Completed successfully - answered slash command for %s", query)
	return ReadingMessage(reading)
}

// ProcessMention posts the reading to the mention's channel, or shows the help
// privately to the mentioning user when the text holds no location.
// Returns None when the reading was posted, otherwise the response to send back to Slack.
func (u *WeatherUseCase) ProcessMention(ctx context.Context, event models.MentionEvent) mo.Option[slack.Msg] {
	log.Printf("📋 Starting to process app mention in channel %s from team %s", event.Channel, event.TeamID)

	slackClient := u.slackClientFactory(u.botToken(ctx, event.TeamID))
	alertContext := fmt.Sprintf("App mention (team: %s, channel: %s)", event.TeamID, event.Channel)

	query, ok := ParseMentionText(event.Text).Get()
	if !ok {
		help := MentionHelpMessage()
		if err := slackClient.PostEphemeral(ctx, event.Channel, event.User, help); err != nil {
			log.Printf("❌ Failed to post help to %s in channel %s: %v", event.User, event.Channel, err)
			u.errorReporter.AlertOnError(err, alertContext)
		}
		log.Printf("📋 Completed successfully - sent help for mention text: %q", event.Text)
		return mo.Some(help)
	}

	reading, err := u.weatherService.GetReading(ctx, query)
	if err != nil {
		logLookupFailure("mention", err)
		u.errorReporter.AlertOnError(err, alertContext)
		if _, postErr := slackClient.PostMessage(ctx, event.Channel, lookupApology(query)); postErr != nil {
			log.Printf("❌ Failed to post apology to channel %s: %v", event.Channel, postErr)
		}
		return mo.Some(LookupErrorMessage(query))
	}

	if _, err := slackClient.PostMessage(ctx, event.Channel, reading.Summary()); err != nil {
		log.Printf("❌ Failed to post weather to channel %s: %v", event.Channel, err)
		u.errorReporter.AlertOnError(err, alertContext)
		return mo.Some(PostErrorMessage())
	}

	log.Printf("📋 Completed successfully - posted weather for %s to channel %s", query, event.Channel)
	return mo.None[slack.Msg]()
}

// botToken prefers the team's OAuth installation and falls back to the configured token
func (u *WeatherUseCase) botToken(ctx context.Context, teamID string) string {
	maybeToken, err := u.installationsService.GetBotToken(ctx, teamID)
	if err != nil {
		log.Printf("⚠️ Failed to get bot token for team %s, using default: %v", teamID, err)
		u.errorReporter.AlertOnError(err, fmt.Sprintf("Bot token lookup (team: %s)", teamID))
		return u.defaultBotToken
	}
	return maybeToken.OrElse(u.defaultBotToken)
}

func logLookupFailure(source string, err error) {
	if core.IsProviderError(err) {
		log.Printf("⚠️ Weather provider could not answer %s: %v", source, err)
		return
	}
	log.Printf("❌ Failed to get weather for %s: %v", source, err)
}
