package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	"weatherbot/models"
)

type PostgresInstallationsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for slack_installations table
var installationsColumns = []string{
	"id",
	"team_id",
	"team_name",
	"bot_user_id",
	"access_token",
	"refresh_token",
	"expires_at",
	"created_at",
	"updated_at",
}

func NewPostgresInstallationsRepository(db *sqlx.DB, schema string) *PostgresInstallationsRepository {
	return &PostgresInstallationsRepository{db: db, schema: schema}
}

// EnsureSchema creates the slack_installations table when it does not exist yet
func (r *PostgresInstallationsRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.slack_installations (
			id            TEXT PRIMARY KEY,
			team_id       TEXT NOT NULL UNIQUE,
			team_name     TEXT NOT NULL,
			bot_user_id   TEXT NOT NULL DEFAULT '',
			access_token  TEXT NOT NULL,
			refresh_token TEXT,
			expires_at    TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, r.schema)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create slack_installations table: %w", err)
	}

	return nil
}

// UpsertInstallation inserts the installation or replaces the tokens of an existing one for the same team.
// The stored row, including its original ID and created_at, is scanned back into installation.
func (r *PostgresInstallationsRepository) UpsertInstallation(ctx context.Context, installation *models.Installation) error {
	insertColumns := []string{"id", "team_id", "team_name", "bot_user_id", "access_token", "refresh_token", "expires_at", "created_at", "updated_at"}
	columnsStr := strings.Join(insertColumns, ", ")
	returningStr := strings.Join(installationsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.slack_installations (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			bot_user_id = EXCLUDED.bot_user_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING %s`, r.schema, columnsStr, returningStr)

	err := r.db.QueryRowxContext(ctx, query,
		installation.ID,
		installation.TeamID,
		installation.TeamName,
		installation.BotUserID,
		installation.AccessToken,
		installation.RefreshToken,
		installation.ExpiresAt,
	).StructScan(installation)
	if err != nil {
		return fmt.Errorf("failed to upsert slack installation: %w", err)
	}

	return nil
}

func (r *PostgresInstallationsRepository) GetInstallationByTeamID(
	ctx context.Context,
	teamID string,
) (mo.Option[*models.Installation], error) {
	if teamID == "" {
		return mo.None[*models.Installation](), fmt.Errorf("team ID cannot be empty")
	}

	columnsStr := strings.Join(installationsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.slack_installations
		WHERE team_id = $1`, columnsStr, r.schema)

	var installation models.Installation
	err := r.db.GetContext(ctx, &installation, query, teamID)
	if errors.Is(err, sql.ErrNoRows) {
		return mo.None[*models.Installation](), nil
	}
	if err != nil {
		return mo.None[*models.Installation](), fmt.Errorf("failed to get slack installation by team ID: %w", err)
	}

	return mo.Some(&installation), nil
}

// UpdateTokens stores a rotated token pair. Returns false when no installation exists for the team.
func (r *PostgresInstallationsRepository) UpdateTokens(
	ctx context.Context,
	teamID, accessToken string,
	refreshToken *string,
	expiresAt *time.Time,
) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s.slack_installations
		SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = NOW()
		WHERE team_id = $1`, r.schema)

	result, err := r.db.ExecContext(ctx, query, teamID, accessToken, refreshToken, expiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to update slack installation tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetRefreshableInstallations returns installations holding a refresh token whose access token expires before the given time
func (r *PostgresInstallationsRepository) GetRefreshableInstallations(
	ctx context.Context,
	expiringBefore time.Time,
) ([]*models.Installation, error) {
	columnsStr := strings.Join(installationsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.slack_installations
		WHERE refresh_token IS NOT NULL
			AND expires_at IS NOT NULL
			AND expires_at < $1
		ORDER BY expires_at ASC`, columnsStr, r.schema)

	installations := []*models.Installation{}
	if err := r.db.SelectContext(ctx, &installations, query, expiringBefore); err != nil {
		return nil, fmt.Errorf("failed to get refreshable slack installations: %w", err)
	}

	return installations, nil
}

// OptionalInstallationsRepository keeps nothing. Used when no database is configured.
type OptionalInstallationsRepository struct{}

func NewOptionalInstallationsRepository() *OptionalInstallationsRepository {
	return &OptionalInstallationsRepository{}
}

func (r *OptionalInstallationsRepository) UpsertInstallation(ctx context.Context, installation *models.Installation) error {
	now := time.Now()
	installation.CreatedAt = now
	installation.UpdatedAt = now
	return nil
}

func (r *OptionalInstallationsRepository) GetInstallationByTeamID(
	ctx context.Context,
	teamID string,
) (mo.Option[*models.Installation], error) {
	return mo.None[*models.Installation](), nil
}

func (r *OptionalInstallationsRepository) UpdateTokens(
	ctx context.Context,
	teamID, accessToken string,
	refreshToken *string,
	expiresAt *time.Time,
) (bool, error) {
	return false, nil
}

func (r *OptionalInstallationsRepository) GetRefreshableInstallations(
	ctx context.Context,
	expiringBefore time.Time,
) ([]*models.Installation, error) {
	return []*models.Installation{}, nil
}
