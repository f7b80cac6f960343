package models

import "time"

// Installation is a workspace that installed the bot through the OAuth flow
type Installation struct {
	ID           string     `db:"id" json:"id"`
	TeamID       string     `db:"team_id" json:"team_id"`
	TeamName     string     `db:"team_name" json:"team_name"`
	BotUserID    string     `db:"bot_user_id" json:"bot_user_id"`
	AccessToken  string     `db:"access_token" json:"-"`
	RefreshToken *string    `db:"refresh_token" json:"-"`
	ExpiresAt    *time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsExpired reports whether the access token is past its expiry at the given time.
// Tokens without an expiry never expire.
func (i *Installation) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// CanRefresh reports whether a refresh token is available for rotation
func (i *Installation) CanRefresh() bool {
	return i.RefreshToken != nil && *i.RefreshToken != ""
}
