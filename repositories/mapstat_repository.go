package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/skilloww/cs2panel/models"
)

var ErrMapStatNotFound = errors.New("map stat not found")

type MapStatRepository interface {
	// Upsert creates or refreshes the row for (matchID, mapNumber),
	// setting the map name and started_at either way.
	Upsert(ctx context.Context, stat *models.MapStat) error
	UpdateScores(ctx context.Context, matchID string, mapNumber, team1Score, team2Score int) error
	Finalize(ctx context.Context, matchID string, mapNumber, team1Score, team2Score int, winnerID *string, endedAt time.Time) error
	GetByMatchAndNumber(ctx context.Context, matchID string, mapNumber int) (*models.MapStat, error)
	ListByMatch(ctx context.Context, matchID string) ([]*models.MapStat, error)
}

type postgresMapStatRepository struct {
	db *sql.DB
}

func NewPostgresMapStatRepository(db *sql.DB) MapStatRepository {
	return &postgresMapStatRepository{db: db}
}

func (r *postgresMapStatRepository) Upsert(ctx context.Context, stat *models.MapStat) error {
	query := `
		INSERT INTO map_stats (id, match_id, map_number, map_name, started_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT map_stats_match_id_map_number_key
		DO UPDATE SET map_name = EXCLUDED.map_name, started_at = EXCLUDED.started_at
		RETURNING id, team1_score, team2_score`

	return r.db.QueryRowContext(ctx, query,
		stat.ID,
		stat.MatchID,
		stat.MapNumber,
		stat.MapName,
		stat.StartedAt,
	).Scan(&stat.ID, &stat.Team1Score, &stat.Team2Score)
}

func (r *postgresMapStatRepository) UpdateScores(ctx context.Context, matchID string, mapNumber, team1Score, team2Score int) error {
	query := `
		UPDATE map_stats SET team1_score = $1, team2_score = $2
		WHERE match_id = $3 AND map_number = $4`
	result, err := r.db.ExecContext(ctx, query, team1Score, team2Score, matchID, mapNumber)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMapStatNotFound)
}

func (r *postgresMapStatRepository) Finalize(ctx context.Context, matchID string, mapNumber, team1Score, team2Score int, winnerID *string, endedAt time.Time) error {
	query := `
		UPDATE map_stats SET
			team1_score = $1,
			team2_score = $2,
			winner_id = $3,
			ended_at = $4
		WHERE match_id = $5 AND map_number = $6`
	result, err := r.db.ExecContext(ctx, query, team1Score, team2Score, winnerID, endedAt, matchID, mapNumber)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMapStatNotFound)
}

func (r *postgresMapStatRepository) GetByMatchAndNumber(ctx context.Context, matchID string, mapNumber int) (*models.MapStat, error) {
	query := `
		SELECT id, match_id, map_number, map_name, team1_score, team2_score, winner_id, started_at, ended_at
		FROM map_stats
		WHERE match_id = $1 AND map_number = $2`

	stat := &models.MapStat{}
	err := r.db.QueryRowContext(ctx, query, matchID, mapNumber).Scan(
		&stat.ID,
		&stat.MatchID,
		&stat.MapNumber,
		&stat.MapName,
		&stat.Team1Score,
		&stat.Team2Score,
		&stat.WinnerID,
		&stat.StartedAt,
		&stat.EndedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMapStatNotFound
		}
		return nil, err
	}
	return stat, nil
}

func (r *postgresMapStatRepository) ListByMatch(ctx context.Context, matchID string) ([]*models.MapStat, error) {
	query := `
		SELECT id, match_id, map_number, map_name, team1_score, team2_score, winner_id, started_at, ended_at
		FROM map_stats
		WHERE match_id = $1
		ORDER BY map_number ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]*models.MapStat, 0)
	for rows.Next() {
		stat := &models.MapStat{}
		scanErr := rows.Scan(
			&stat.ID,
			&stat.MatchID,
			&stat.MapNumber,
			&stat.MapName,
			&stat.Team1Score,
			&stat.Team2Score,
			&stat.WinnerID,
			&stat.StartedAt,
			&stat.EndedAt,
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
