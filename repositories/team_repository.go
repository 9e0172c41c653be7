package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/skilloww/cs2panel/models"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamPlayerConflict = errors.New("player is already on the team")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id string) error
	ListVisible(ctx context.Context, userID string) ([]*models.Team, error)
	AddPlayer(ctx context.Context, player *models.TeamPlayer) error
	RemovePlayers(ctx context.Context, teamID string) error
	SetLogoKey(ctx context.Context, teamID string, logoKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, tag, flag, public, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query,
		team.ID,
		team.Name,
		team.Tag,
		team.Flag,
		team.Public,
		team.CreatorID,
	).Scan(&team.CreatedAt)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `
		SELECT id, name, tag, flag, logo_key, public, creator_id, created_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Tag,
		&team.Flag,
		&team.LogoKey,
		&team.Public,
		&team.CreatorID,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	players, err := r.listPlayers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Players = players

	return team, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			name = $1,
			tag = $2,
			flag = $3,
			public = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, team.Name, team.Tag, team.Flag, team.Public, team.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// ListVisible returns teams owned by the user plus public teams.
func (r *postgresTeamRepository) ListVisible(ctx context.Context, userID string) ([]*models.Team, error) {
	query := `
		SELECT id, name, tag, flag, logo_key, public, creator_id, created_at
		FROM teams
		WHERE creator_id = $1 OR public = TRUE
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		scanErr := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Tag,
			&team.Flag,
			&team.LogoKey,
			&team.Public,
			&team.CreatorID,
			&team.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, team := range teams {
		players, playersErr := r.listPlayers(ctx, team.ID)
		if playersErr != nil {
			return nil, playersErr
		}
		team.Players = players
	}

	return teams, nil
}

func (r *postgresTeamRepository) AddPlayer(ctx context.Context, player *models.TeamPlayer) error {
	query := `
		INSERT INTO team_players (id, team_id, user_id, captain, coach)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		player.ID,
		player.TeamID,
		player.UserID,
		player.Captain,
		player.Coach,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "team_players_team_id_user_id_key" {
				return ErrTeamPlayerConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) RemovePlayers(ctx context.Context, teamID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM team_players WHERE team_id = $1`, teamID)
	return err
}

func (r *postgresTeamRepository) SetLogoKey(ctx context.Context, teamID string, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// listPlayers loads the roster with each membership's user joined in.
func (r *postgresTeamRepository) listPlayers(ctx context.Context, teamID string) ([]models.TeamPlayer, error) {
	query := `
		SELECT
			tp.id, tp.team_id, tp.user_id, tp.captain, tp.coach,
			u.id, u.steam_id, u.name, u.avatar, u.role, u.created_at
		FROM team_players tp
		JOIN users u ON tp.user_id = u.id
		WHERE tp.team_id = $1
		ORDER BY u.name ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team players: %w", err)
	}
	defer rows.Close()

	players := make([]models.TeamPlayer, 0)
	for rows.Next() {
		var player models.TeamPlayer
		var user models.User
		scanErr := rows.Scan(
			&player.ID,
			&player.TeamID,
			&player.UserID,
			&player.Captain,
			&player.Coach,
			&user.ID,
			&user.SteamID,
			&user.Name,
			&user.Avatar,
			&user.Role,
			&user.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		player.User = &user
		players = append(players, player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return players, nil
}
