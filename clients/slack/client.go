package slack

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"weatherbot/clients"
)

// SlackClient implements the clients.SlackClient interface using the slack-go/slack SDK
type SlackClient struct {
	*slack.Client
}

// NewSlackClient creates a new Slack client with the provided auth token.
// apiURL overrides the Slack Web API base URL when non-empty and must end in "/".
func NewSlackClient(authToken, apiURL string) clients.SlackClient {
	var opts []slack.Option
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &SlackClient{
		Client: slack.New(authToken, opts...),
	}
}

// NewSlackClientFactory returns a factory producing clients that share the same API URL
func NewSlackClientFactory(apiURL string) clients.SlackClientFactory {
	return func(token string) clients.SlackClient {
		return NewSlackClient(token, apiURL)
	}
}

// PostMessage sends a plain text message to a Slack channel
func (c *SlackClient) PostMessage(ctx context.Context, channelID, text string) (*clients.SlackPostMessageResponse, error) {
	channel, timestamp, err := c.Client.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return nil, err
	}

	return &clients.SlackPostMessageResponse{
		Channel:   channel,
		Timestamp: timestamp,
	}, nil
}

// PostEphemeral shows msg to a single user in a channel
func (c *SlackClient) PostEphemeral(ctx context.Context, channelID, userID string, msg slack.Msg) error {
	_, err := c.Client.PostEphemeralContext(ctx, channelID, userID,
		slack.MsgOptionText(msg.Text, false),
		slack.MsgOptionAttachments(msg.Attachments...),
	)
	return err
}

// GetTeamInfo returns the workspace the token belongs to
func (c *SlackClient) GetTeamInfo(ctx context.Context) (*clients.SlackTeamInfo, error) {
	team, err := c.Client.GetTeamInfoContext(ctx)
	if err != nil {
		return nil, err
	}

	return &clients.SlackTeamInfo{
		ID:     team.ID,
		Name:   team.Name,
		Domain: team.Domain,
	}, nil
}

// SlackOAuthClient implements clients.SlackOAuthClient. It needs no token.
type SlackOAuthClient struct {
	httpClient *http.Client
}

// NewSlackOAuthClient creates a new Slack client for OAuth operations only.
// apiURL overrides the Slack Web API base URL when non-empty and must end in "/".
func NewSlackOAuthClient(apiURL string) clients.SlackOAuthClient {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if apiURL != "" && apiURL != slack.APIURL {
		httpClient.Transport = &apiURLTransport{base: http.DefaultTransport, apiURL: apiURL}
	}
	return &SlackOAuthClient{httpClient: httpClient}
}

// GetOAuthV2Response exchanges an OAuth authorization code for access tokens
func (c *SlackOAuthClient) GetOAuthV2Response(
	ctx context.Context,
	clientID, clientSecret, code, redirectURL string,
) (*clients.OAuthV2Response, error) {
	slackResponse, err := slack.GetOAuthV2ResponseContext(ctx, c.httpClient, clientID, clientSecret, code, redirectURL)
	if err != nil {
		return nil, err
	}

	return toOAuthV2Response(slackResponse), nil
}

// RefreshOAuthV2Token exchanges a refresh token for a new access token
func (c *SlackOAuthClient) RefreshOAuthV2Token(
	ctx context.Context,
	clientID, clientSecret, refreshToken string,
) (*clients.OAuthV2Response, error) {
	slackResponse, err := slack.RefreshOAuthV2TokenContext(ctx, c.httpClient, clientID, clientSecret, refreshToken)
	if err != nil {
		return nil, err
	}

	return toOAuthV2Response(slackResponse), nil
}

// apiURLTransport sends requests addressed to slack.APIURL to apiURL instead.
// The package level OAuth helpers always build their URLs from slack.APIURL.
type apiURLTransport struct {
	base   http.RoundTripper
	apiURL string
}

func (t *apiURLTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	method, ok := strings.CutPrefix(req.URL.String(), slack.APIURL)
	if !ok {
		return t.base.RoundTrip(req)
	}

	target, err := url.Parse(t.apiURL + method)
	if err != nil {
		return nil, fmt.Errorf("failed to rewrite Slack API URL: %w", err)
	}

	rewritten := req.Clone(req.Context())
	rewritten.URL = target
	rewritten.Host = target.Host
	return t.base.RoundTrip(rewritten)
}

func toOAuthV2Response(resp *slack.OAuthV2Response) *clients.OAuthV2Response {
	return &clients.OAuthV2Response{
		TeamID:       resp.Team.ID,
		TeamName:     resp.Team.Name,
		BotUserID:    resp.BotUserID,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Duration(resp.ExpiresIn) * time.Second,
	}
}
