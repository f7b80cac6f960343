package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"weatherbot/clients"
	"weatherbot/services"
)

type SlackOAuthHandler struct {
	installationsService services.InstallationsService
	slackClientFactory   clients.SlackClientFactory
}

func NewSlackOAuthHandler(
	installationsService services.InstallationsService,
	slackClientFactory clients.SlackClientFactory,
) *SlackOAuthHandler {
	return &SlackOAuthHandler{
		installationsService: installationsService,
		slackClientFactory:   slackClientFactory,
	}
}

// HandleAuth completes the "Add to Slack" flow and sends the user to their workspace
func (h *SlackOAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 Slack OAuth callback received from %s", r.RemoteAddr)

	code := r.URL.Query().Get("code")
	if code == "" {
		log.Printf("⚠️ Slack OAuth callback without code, access denied")
		http.Redirect(w, r, "/?error=access_denied", http.StatusFound)
		return
	}

	installation, err := h.installationsService.Install(r.Context(), code)
	if err != nil {
		log.Printf("❌ Failed to install Slack app: %v", err)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	team, err := h.slackClientFactory(installation.AccessToken).GetTeamInfo(r.Context())
	if err != nil {
		log.Printf("❌ Failed to get team info for %s: %v", installation.TeamID, err)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	log.Printf("✅ Slack app installed for team %s, redirecting to workspace", team.Domain)
	http.Redirect(w, r, fmt.Sprintf("https://%s.slack.com", team.Domain), http.StatusFound)
}

func (h *SlackOAuthHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering Slack OAuth endpoints")

	router.HandleFunc("/auth", h.HandleAuth).Methods("GET")
	log.Printf("✅ GET /auth endpoint registered")
}
