package models

// SlashCommand is the subset of a Slack slash command payload the bot uses
type SlashCommand struct {
	TeamID    string
	ChannelID string
	UserID    string
	Command   string
	Text      string
}

// MentionEvent is an app_mention event delivered through the Events API
type MentionEvent struct {
	TeamID  string
	Channel string
	User    string
	Text    string
	TS      string
}
