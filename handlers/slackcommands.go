package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/slack-go/slack"

	"weatherbot/appctx"
	"weatherbot/models"
	"weatherbot/usecases/weather"
)

type SlackCommandsHandler struct {
	verifier       *SignatureVerifier
	weatherUseCase *weather.WeatherUseCase
}

func NewSlackCommandsHandler(verifier *SignatureVerifier, weatherUseCase *weather.WeatherUseCase) *SlackCommandsHandler {
	return &SlackCommandsHandler{
		verifier:       verifier,
		weatherUseCase: weatherUseCase,
	}
}

func (h *SlackCommandsHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	log.Printf("⚡ [%s] Slash command received from %s", appctx.GetRequestID(r.Context()), r.RemoteAddr)

	bodyBytes, ok := readSlackBody(w, r)
	if !ok {
		return
	}

	if !h.verifier.IsVerified(r.Header, bodyBytes) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	command, err := slack.SlashCommandParse(r)
	if err != nil {
		log.Printf("❌ Failed to parse slash command: %v", err)
		http.Error(w, "failed to parse slash command", http.StatusBadRequest)
		return
	}

	log.Printf("⚡ Parsed slash command: %s from user %s in channel %s", command.Command, command.UserID, command.ChannelID)
	msg := h.weatherUseCase.ProcessSlashCommand(r.Context(), models.SlashCommand{
		TeamID:    command.TeamID,
		ChannelID: command.ChannelID,
		UserID:    command.UserID,
		Command:   command.Command,
		Text:      command.Text,
	})

	writeJSONResponse(w, http.StatusOK, msg)
}

func (h *SlackCommandsHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering Slack slash command endpoints")

	router.HandleFunc("/slash", h.HandleSlashCommand).Methods("POST")
	log.Printf("✅ POST /slash endpoint registered")
}
