package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/slack-go/slack/slackevents"

	"weatherbot/appctx"
	"weatherbot/models"
	"weatherbot/usecases/weather"
)

// slackEventEnvelope holds the fields needed to route an Events API payload
// before handing app mentions to slackevents for full parsing
type slackEventEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	TeamID    string `json:"team_id"`
	Event     struct {
		Type string `json:"type"`
	} `json:"event"`
}

type SlackEventsHandler struct {
	verifier       *SignatureVerifier
	weatherUseCase *weather.WeatherUseCase
}

func NewSlackEventsHandler(verifier *SignatureVerifier, weatherUseCase *weather.WeatherUseCase) *SlackEventsHandler {
	return &SlackEventsHandler{
		verifier:       verifier,
		weatherUseCase: weatherUseCase,
	}
}

func (h *SlackEventsHandler) HandleSlackEvent(w http.ResponseWriter, r *http.Request) {
	log.Printf("📨 [%s] Slack event received from %s", appctx.GetRequestID(r.Context()), r.RemoteAddr)

	bodyBytes, ok := readSlackBody(w, r)
	if !ok {
		return
	}

	if !h.verifier.IsVerified(r.Header, bodyBytes) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var envelope slackEventEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		log.Printf("❌ Failed to parse JSON body: %v", err)
		http.Error(w, "failed to parse body", http.StatusBadRequest)
		return
	}

	if envelope.Type == slackevents.URLVerification {
		log.Printf("✅ Responding to Slack URL verification challenge")
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte(envelope.Challenge)); err != nil {
			log.Printf("❌ Failed to write challenge response: %v", err)
		}
		return
	}

	if envelope.Type != slackevents.CallbackEvent || envelope.Event.Type != string(slackevents.AppMention) {
		log.Printf("📋 Unsupported Slack event %s/%s, answering with help", envelope.Type, envelope.Event.Type)
		writeJSONResponse(w, http.StatusOK, weather.MentionHelpMessage())
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(bodyBytes), slackevents.OptionNoVerifyToken())
	if err != nil {
		log.Printf("❌ Failed to parse app mention event: %v", err)
		http.Error(w, "failed to parse event", http.StatusBadRequest)
		return
	}

	mention, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok {
		log.Printf("❌ Unexpected inner event data %T", eventsAPIEvent.InnerEvent.Data)
		http.Error(w, "failed to parse event", http.StatusBadRequest)
		return
	}

	log.Printf("📨 Bot mentioned by %s in %s: %s", mention.User, mention.Channel, mention.Text)
	response := h.weatherUseCase.ProcessMention(r.Context(), models.MentionEvent{
		TeamID:  eventsAPIEvent.TeamID,
		Channel: mention.Channel,
		User:    mention.User,
		Text:    mention.Text,
		TS:      mention.TimeStamp,
	})

	if msg, ok := response.Get(); ok {
		writeJSONResponse(w, http.StatusOK, msg)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *SlackEventsHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering Slack events endpoints")

	router.HandleFunc("/bot", h.HandleSlackEvent).Methods("POST")
	log.Printf("✅ POST /bot endpoint registered")
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("❌ Failed to encode JSON response: %v", err)
	}
}
