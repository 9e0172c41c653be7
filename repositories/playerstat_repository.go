package repositories

import (
	"context"
	"database/sql"

	"github.com/skilloww/cs2panel/models"
)

type PlayerStatRepository interface {
	// Create appends a new row. Rows are never merged: repeated
	// deliveries for the same player and map produce duplicates.
	Create(ctx context.Context, stat *models.PlayerStat) error
	ListByMatch(ctx context.Context, matchID string) ([]*models.PlayerStat, error)
}

type postgresPlayerStatRepository struct {
	db *sql.DB
}

func NewPostgresPlayerStatRepository(db *sql.DB) PlayerStatRepository {
	return &postgresPlayerStatRepository{db: db}
}

func (r *postgresPlayerStatRepository) Create(ctx context.Context, stat *models.PlayerStat) error {
	query := `
		INSERT INTO player_stats
			(id, match_id, map_number, steam_id, name, team_id,
			 kills, deaths, assists, flash_assists, headshots, damage, rating, adr, kast)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query,
		stat.ID,
		stat.MatchID,
		stat.MapNumber,
		stat.SteamID,
		stat.Name,
		stat.TeamID,
		stat.Kills,
		stat.Deaths,
		stat.Assists,
		stat.FlashAssists,
		stat.Headshots,
		stat.Damage,
		stat.Rating,
		stat.ADR,
		stat.KAST,
	).Scan(&stat.CreatedAt)
}

func (r *postgresPlayerStatRepository) ListByMatch(ctx context.Context, matchID string) ([]*models.PlayerStat, error) {
	query := `
		SELECT id, match_id, map_number, steam_id, name, team_id,
		       kills, deaths, assists, flash_assists, headshots, damage, rating, adr, kast, created_at
		FROM player_stats
		WHERE match_id = $1
		ORDER BY map_number ASC NULLS LAST, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]*models.PlayerStat, 0)
	for rows.Next() {
		stat := &models.PlayerStat{}
		scanErr := rows.Scan(
			&stat.ID,
			&stat.MatchID,
			&stat.MapNumber,
			&stat.SteamID,
			&stat.Name,
			&stat.TeamID,
			&stat.Kills,
			&stat.Deaths,
			&stat.Assists,
			&stat.FlashAssists,
			&stat.Headshots,
			&stat.Damage,
			&stat.Rating,
			&stat.ADR,
			&stat.KAST,
			&stat.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		stats = append(stats, stat)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
