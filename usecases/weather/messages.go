package weather

import (
	"fmt"

	"github.com/slack-go/slack"

	"weatherbot/models"
)

const helpTitle = ":sunny: How to use weatherbot"

// SlashHelpMessage is the private usage hint for the slash command
func SlashHelpMessage() slack.Msg {
	return helpMessage("Type the keyword followed by city or zipcode after the command, _e.g._ `/weatherbot zip:90210 or /weatherbot city:Los Angeles`")
}

// MentionHelpMessage is the private usage hint for bot mentions
func MentionHelpMessage() slack.Msg {
	return helpMessage("Type the keyword followed by city or zipcode after the bot, _e.g._ `@weatherbot zip:90210 or @weatherbot city:Los Angeles`")
}

func helpMessage(hint string) slack.Msg {
	return slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         helpTitle,
		Attachments:  []slack.Attachment{{Text: hint}},
	}
}

// ReadingMessage is posted publicly in the channel the command came from
func ReadingMessage(reading *models.WeatherReading) slack.Msg {
	return slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Attachments:  []slack.Attachment{{Pretext: reading.Summary()}},
	}
}

// LookupErrorMessage tells the caller privately that the provider could not answer
func LookupErrorMessage(query models.LocationQuery) slack.Msg {
	return slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         lookupApology(query),
	}
}

// PostErrorMessage tells the caller privately that the reading could not be posted
func PostErrorMessage() slack.Msg {
	return slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         ":warning: Sorry, I couldn't post the weather to this channel.",
	}
}

func lookupApology(query models.LocationQuery) string {
	return fmt.Sprintf(":warning: Sorry, I couldn't get the weather for %s right now.", query.Value)
}
