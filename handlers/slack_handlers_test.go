package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"weatherbot/clients"
	slackclient "weatherbot/clients/slack"
	"weatherbot/core"
	"weatherbot/models"
	"weatherbot/services/installations"
	weatherservice "weatherbot/services/weather"
	"weatherbot/usecases/weather"
)

type noopReporter struct{}

func (noopReporter) AlertOnError(err error, context string) {}

type handlerFixture struct {
	weatherService       *weatherservice.MockWeatherService
	installationsService *installations.MockInstallationsService
	slackClient          *slackclient.MockSlackClient
	router               *mux.Router
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		weatherService:       &weatherservice.MockWeatherService{},
		installationsService: &installations.MockInstallationsService{},
		slackClient:          slackclient.NewMockSlackClient(),
		router:               mux.NewRouter(),
	}
	factory := func(token string) clients.SlackClient { return f.slackClient }
	useCase := weather.NewWeatherUseCase(f.weatherService, f.installationsService, factory, "xoxb-default", noopReporter{})

	verifier := newTestVerifier()
	NewSlackEventsHandler(verifier, useCase).SetupEndpoints(f.router)
	NewSlackCommandsHandler(verifier, useCase).SetupEndpoints(f.router)
	return f
}

func (f *handlerFixture) post(path, contentType, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) postSigned(path, contentType, body string) *httptest.ResponseRecorder {
	return f.post(path, contentType, body, signedHeader(testNow.Unix(), body))
}

var bostonReading = &models.WeatherReading{
	Name:     "Boston",
	CurrentF: decimal.RequireFromString("80.33"),
	LowF:     decimal.RequireFromString("72.23"),
	HighF:    decimal.RequireFromString("82.49"),
}

// commandResponse is the subset of the response payload Slack renders
type commandResponse struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
	Attachments  []struct {
		Text    string `json:"text"`
		Pretext string `json:"pretext"`
	} `json:"attachments"`
}

func decodeMsg(t *testing.T, rec *httptest.ResponseRecorder) commandResponse {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var msg commandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	return msg
}

func mentionBody(text string) string {
	return fmt.Sprintf(`{
		"token": "legacy-token",
		"team_id": "T123",
		"api_app_id": "A1",
		"type": "event_callback",
		"event": {
			"type": "app_mention",
			"user": "U789",
			"text": %s,
			"ts": "1700000000.000100",
			"channel": "C456",
			"event_ts": "1700000000.000100"
		}
	}`, strconv.Quote(text))
}

func slashBody(text string) string {
	return url.Values{
		"team_id":    {"T123"},
		"channel_id": {"C456"},
		"user_id":    {"U789"},
		"command":    {"/weatherbot"},
		"text":       {text},
	}.Encode()
}

func TestSlackEventsHandler_URLVerification(t *testing.T) {
	f := newHandlerFixture()
	body := `{"token":"legacy-token","challenge":"3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P","type":"url_verification"}`

	rec := f.postSigned("/bot", "application/json", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P", rec.Body.String())
}

func TestSlackEventsHandler_AppMentionPostsReading(t *testing.T) {
	f := newHandlerFixture()
	f.installationsService.On("GetBotToken", mock.Anything, "T123").Return(mo.None[string](), nil)
	f.weatherService.On("GetReading", mock.Anything, models.LocationQuery{Kind: models.LocationKindCity, Value: "Boston"}).
		Return(bostonReading, nil)

	rec := f.postSigned("/bot", "application/json", mentionBody("<@UBOT> city:Boston"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	require.Len(t, f.slackClient.PostedMessages, 1)
	assert.Equal(t, "C456", f.slackClient.PostedMessages[0].ChannelID)
	assert.Equal(t, "Boston \n Current: 80.33 ºF \n Low: 72.23 ºF \n High: 82.49 ºF", f.slackClient.PostedMessages[0].Text)
}

func TestSlackEventsHandler_MalformedMentionReturnsHelp(t *testing.T) {
	f := newHandlerFixture()
	f.installationsService.On("GetBotToken", mock.Anything, "T123").Return(mo.None[string](), nil)

	rec := f.postSigned("/bot", "application/json", mentionBody("<@UBOT> how hot is it"))

	assert.Equal(t, http.StatusOK, rec.Code)
	msg := decodeMsg(t, rec)
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
	assert.Equal(t, ":sunny: How to use weatherbot", msg.Text)
	require.Len(t, msg.Attachments, 1)
	assert.Contains(t, msg.Attachments[0].Text, "@weatherbot zip:90210")
	assert.Empty(t, f.slackClient.PostedMessages)
	require.Len(t, f.slackClient.PostedEphemerals, 1)
	assert.Equal(t, "U789", f.slackClient.PostedEphemerals[0].UserID)
}

func TestSlackEventsHandler_OtherEventReturnsHelp(t *testing.T) {
	f := newHandlerFixture()
	body := `{"type":"event_callback","team_id":"T123","event":{"type":"reaction_added","user":"U1"}}`

	rec := f.postSigned("/bot", "application/json", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, weather.MentionHelpMessage().Text, decodeMsg(t, rec).Text)
	f.weatherService.AssertNotCalled(t, "GetReading", mock.Anything, mock.Anything)
}

func TestSlackEventsHandler_ProviderFailure(t *testing.T) {
	f := newHandlerFixture()
	f.installationsService.On("GetBotToken", mock.Anything, "T123").Return(mo.None[string](), nil)
	f.weatherService.On("GetReading", mock.Anything, mock.Anything).
		Return(nil, &core.ProviderError{StatusCode: http.StatusNotFound, Message: "city not found"})

	rec := f.postSigned("/bot", "application/json", mentionBody("<@UBOT> city:Atlantis"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, slack.ResponseTypeEphemeral, decodeMsg(t, rec).ResponseType)
	require.Len(t, f.slackClient.PostedMessages, 1)
	assert.Contains(t, f.slackClient.PostedMessages[0].Text, "Atlantis")
}

func TestSlackEventsHandler_InvalidJSON(t *testing.T) {
	f := newHandlerFixture()

	rec := f.postSigned("/bot", "application/json", `{"type":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlackHandlers_RejectUnverifiedRequests(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
	}{
		{name: "events", path: "/bot", contentType: "application/json", body: mentionBody("<@UBOT> city:Boston")},
		{name: "slash command", path: "/slash", contentType: "application/x-www-form-urlencoded", body: slashBody("city:Boston")},
	}

	for _, tt := range tests {
		t.Run(tt.name+" bad signature", func(t *testing.T) {
			f := newHandlerFixture()
			header := signedHeader(testNow.Unix(), tt.body)
			header.Set("X-Slack-Signature", "v0=deadbeef")

			rec := f.post(tt.path, tt.contentType, tt.body, header)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Empty(t, f.slackClient.PostedMessages)
			f.weatherService.AssertNotCalled(t, "GetReading", mock.Anything, mock.Anything)
		})

		t.Run(tt.name+" stale timestamp", func(t *testing.T) {
			f := newHandlerFixture()

			rec := f.post(tt.path, tt.contentType, tt.body, signedHeader(testNow.Unix()-3600, tt.body))

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Body.String())
			f.weatherService.AssertNotCalled(t, "GetReading", mock.Anything, mock.Anything)
		})

		t.Run(tt.name+" unsigned", func(t *testing.T) {
			f := newHandlerFixture()

			rec := f.post(tt.path, tt.contentType, tt.body, http.Header{})

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestSlackHandlers_RejectOversizedBodies(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
	}{
		{name: "events", path: "/bot", contentType: "application/json"},
		{name: "slash commands", path: "/slash", contentType: "application/x-www-form-urlencoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			body := strings.Repeat("a", maxSlackBodyBytes+1)

			rec := f.postSigned(tt.path, tt.contentType, body)

			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
			f.weatherService.AssertNotCalled(t, "GetReading", mock.Anything, mock.Anything)
		})
	}
}

func TestSlackCommandsHandler_ReturnsReadingInChannel(t *testing.T) {
	f := newHandlerFixture()
	f.weatherService.On("GetReading", mock.Anything, models.LocationQuery{Kind: models.LocationKindZip, Value: "02108"}).
		Return(bostonReading, nil)

	rec := f.postSigned("/slash", "application/x-www-form-urlencoded", slashBody("zip:02108"))

	assert.Equal(t, http.StatusOK, rec.Code)
	msg := decodeMsg(t, rec)
	assert.Equal(t, slack.ResponseTypeInChannel, msg.ResponseType)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Boston \n Current: 80.33 ºF \n Low: 72.23 ºF \n High: 82.49 ºF", msg.Attachments[0].Pretext)
	f.weatherService.AssertExpectations(t)
}

func TestSlackCommandsHandler_EmptyTextReturnsHelp(t *testing.T) {
	f := newHandlerFixture()

	rec := f.postSigned("/slash", "application/x-www-form-urlencoded", slashBody(""))

	assert.Equal(t, http.StatusOK, rec.Code)
	msg := decodeMsg(t, rec)
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
	assert.Equal(t, ":sunny: How to use weatherbot", msg.Text)
	require.Len(t, msg.Attachments, 1)
	assert.Contains(t, msg.Attachments[0].Text, "/weatherbot zip:90210")
}

func TestSlackCommandsHandler_ProviderFailure(t *testing.T) {
	f := newHandlerFixture()
	f.weatherService.On("GetReading", mock.Anything, mock.Anything).
		Return(nil, &core.ProviderError{StatusCode: http.StatusUnauthorized, Message: "Invalid API key."})

	rec := f.postSigned("/slash", "application/x-www-form-urlencoded", slashBody("city:Boston"))

	assert.Equal(t, http.StatusOK, rec.Code)
	msg := decodeMsg(t, rec)
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
	assert.Contains(t, msg.Text, "Boston")
}

func TestSlackCommandsHandler_SameTextSameResponse(t *testing.T) {
	f := newHandlerFixture()
	f.weatherService.On("GetReading", mock.Anything, mock.Anything).Return(bostonReading, nil)

	first := f.postSigned("/slash", "application/x-www-form-urlencoded", slashBody("city:Boston"))
	second := f.postSigned("/slash", "application/x-www-form-urlencoded", slashBody("city:Boston"))

	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestWriteJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	writeJSONResponse(rec, http.StatusAccepted, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
