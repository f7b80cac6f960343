package installations

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/samber/mo"

	"weatherbot/clients"
	"weatherbot/core"
	"weatherbot/models"
)

// InstallationsRepository is implemented by db.PostgresInstallationsRepository and db.OptionalInstallationsRepository
type InstallationsRepository interface {
	UpsertInstallation(ctx context.Context, installation *models.Installation) error
	GetInstallationByTeamID(ctx context.Context, teamID string) (mo.Option[*models.Installation], error)
	UpdateTokens(ctx context.Context, teamID, accessToken string, refreshToken *string, expiresAt *time.Time) (bool, error)
	GetRefreshableInstallations(ctx context.Context, expiringBefore time.Time) ([]*models.Installation, error)
}

// RefreshSummary reports the outcome of a RefreshExpiringTokens run
type RefreshSummary struct {
	Found     int
	Refreshed int
	Failed    int
}

type InstallationsService struct {
	repo              InstallationsRepository
	oauthClient       clients.SlackOAuthClient
	slackClientID     string
	slackClientSecret string
	redirectURL       string
	now               func() time.Time
}

func NewInstallationsService(
	repo InstallationsRepository,
	oauthClient clients.SlackOAuthClient,
	slackClientID, slackClientSecret, redirectURL string,
) *InstallationsService {
	return &InstallationsService{
		repo:              repo,
		oauthClient:       oauthClient,
		slackClientID:     slackClientID,
		slackClientSecret: slackClientSecret,
		redirectURL:       redirectURL,
		now:               time.Now,
	}
}

// Install exchanges an OAuth code for a bot token and stores the installation
func (s *InstallationsService) Install(ctx context.Context, code string) (*models.Installation, error) {
	log.Printf("📋 Starting to install Slack app")
	if code == "" {
		return nil, fmt.Errorf("slack auth code cannot be empty")
	}

	oauthResponse, err := s.oauthClient.GetOAuthV2Response(ctx, s.slackClientID, s.slackClientSecret, code, s.redirectURL)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange OAuth code with Slack: %w", err)
	}

	if oauthResponse.TeamID == "" {
		return nil, fmt.Errorf("team ID not found in Slack OAuth response")
	}
	if oauthResponse.AccessToken == "" {
		return nil, fmt.Errorf("bot access token not found in Slack OAuth response")
	}

	refreshToken, expiresAt := s.tokenExpiry(oauthResponse)
	installation := &models.Installation{
		ID:           core.NewID("inst"),
		TeamID:       oauthResponse.TeamID,
		TeamName:     oauthResponse.TeamName,
		BotUserID:    oauthResponse.BotUserID,
		AccessToken:  oauthResponse.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
	if err := s.repo.UpsertInstallation(ctx, installation); err != nil {
		return nil, fmt.Errorf("failed to store slack installation: %w", err)
	}

	log.Printf("📋 Completed successfully - installed Slack app for team: %s (%s)", installation.TeamName, installation.TeamID)
	return installation, nil
}

// GetBotToken returns the bot token stored for a team, rotating it first when it has expired.
// Returns None when the team never installed the app through OAuth.
func (s *InstallationsService) GetBotToken(ctx context.Context, teamID string) (mo.Option[string], error) {
	if teamID == "" {
		return mo.None[string](), nil
	}

	maybeInstallation, err := s.repo.GetInstallationByTeamID(ctx, teamID)
	if err != nil {
		return mo.None[string](), fmt.Errorf("failed to get installation for team %s: %w", teamID, err)
	}
	installation, ok := maybeInstallation.Get()
	if !ok {
		return mo.None[string](), nil
	}

	if !installation.IsExpired(s.now()) {
		return mo.Some(installation.AccessToken), nil
	}

	log.Printf("🔄 Access token for team %s expired, rotating", teamID)
	accessToken, err := s.rotate(ctx, installation)
	if err != nil {
		return mo.None[string](), err
	}

	return mo.Some(accessToken), nil
}

// RefreshExpiringTokens rotates every stored token that expires within the given window,
// running at most workers rotations at a time
func (s *InstallationsService) RefreshExpiringTokens(ctx context.Context, window time.Duration, workers int) (RefreshSummary, error) {
	log.Printf("📋 Starting to refresh Slack tokens expiring within %s", window)
	if workers < 1 {
		workers = 1
	}

	installations, err := s.repo.GetRefreshableInstallations(ctx, s.now().Add(window))
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("failed to get refreshable installations: %w", err)
	}

	summary := RefreshSummary{Found: len(installations)}
	var mutex sync.Mutex
	wp := workerpool.New(workers)
	for _, installation := range installations {
		wp.Submit(func() {
			_, err := s.rotate(ctx, installation)

			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				log.Printf("❌ Failed to refresh token for team %s: %v", installation.TeamID, err)
				summary.Failed++
				return
			}
			summary.Refreshed++
		})
	}
	wp.StopWait()

	log.Printf("📋 Completed successfully - refreshed %d of %d Slack tokens", summary.Refreshed, summary.Found)
	return summary, nil
}

func (s *InstallationsService) rotate(ctx context.Context, installation *models.Installation) (string, error) {
	teamID := installation.TeamID
	if !installation.CanRefresh() {
		return "", fmt.Errorf("no refresh token is stored for team %s", teamID)
	}

	oauthResponse, err := s.oauthClient.RefreshOAuthV2Token(ctx, s.slackClientID, s.slackClientSecret, *installation.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token for team %s: %w", teamID, err)
	}

	refreshToken, expiresAt := s.tokenExpiry(oauthResponse)
	if refreshToken == nil {
		refreshToken = installation.RefreshToken
	}

	updated, err := s.repo.UpdateTokens(ctx, teamID, oauthResponse.AccessToken, refreshToken, expiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to store rotated token for team %s: %w", teamID, err)
	}
	if !updated {
		return "", fmt.Errorf("installation for team %s: %w", teamID, core.ErrNotFound)
	}

	log.Printf("✅ Rotated access token for team %s", teamID)
	return oauthResponse.AccessToken, nil
}

func (s *InstallationsService) tokenExpiry(resp *clients.OAuthV2Response) (*string, *time.Time) {
	var refreshToken *string
	if resp.RefreshToken != "" {
		refreshToken = &resp.RefreshToken
	}

	var expiresAt *time.Time
	if resp.ExpiresIn > 0 {
		t := s.now().Add(resp.ExpiresIn)
		expiresAt = &t
	}

	return refreshToken, expiresAt
}
