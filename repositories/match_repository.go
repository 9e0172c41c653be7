package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/skilloww/cs2panel/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchAPIKeyConflict = errors.New("match api key conflict")
	ErrMatchTeamInvalid    = errors.New("match team reference invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	// GetByID loads a match with its team rows (names and metadata, no
	// rosters) joined in.
	GetByID(ctx context.Context, id string) (*models.Match, error)
	// GetByIDAndKey authenticates a webhook call: both the id and the
	// api key must match the same row.
	GetByIDAndKey(ctx context.Context, id, apiKey string) (*models.Match, error)
	ListByCreator(ctx context.Context, userID string) ([]*models.Match, error)
	SetLive(ctx context.Context, id string, startedAt time.Time) error
	Finish(ctx context.Context, id string, team1Score, team2Score int, winnerID *string, endedAt time.Time) error
	SetStatus(ctx context.Context, id string, status models.MatchStatus) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	mapPool, err := encodeMapList(match.MapPool)
	if err != nil {
		return err
	}
	mapBans, err := encodeMapList(match.MapBans)
	if err != nil {
		return err
	}
	mapPicks, err := encodeMapList(match.MapPicks)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(id, api_key, status, series, map_pool, map_bans, map_picks,
			 knife_round, overtime, team1_id, team2_id, server_id, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING team1_score, team2_score, created_at`

	err = r.db.QueryRowContext(ctx, query,
		match.ID,
		match.APIKey,
		match.Status,
		match.Series,
		mapPool,
		mapBans,
		mapPicks,
		match.KnifeRound,
		match.Overtime,
		match.Team1ID,
		match.Team2ID,
		match.ServerID,
		match.CreatorID,
	).Scan(&match.Team1Score, &match.Team2Score, &match.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "matches_api_key_key" {
					return ErrMatchAPIKeyConflict
				}
			case "23503":
				if pqErr.Constraint == "matches_team1_id_fkey" || pqErr.Constraint == "matches_team2_id_fkey" {
					return ErrMatchTeamInvalid
				}
			}
		}
		return err
	}
	return nil
}

const matchSelectColumns = `
	m.id, m.api_key, m.status, m.series, m.map_pool, m.map_bans, m.map_picks,
	m.knife_round, m.overtime, m.team1_score, m.team2_score,
	m.team1_id, m.team2_id, m.server_id, m.winner_id, m.creator_id,
	m.created_at, m.started_at, m.ended_at,
	t1.id, t1.name, t1.tag, t1.flag, t1.public, t1.creator_id, t1.created_at,
	t2.id, t2.name, t2.tag, t2.flag, t2.public, t2.creator_id, t2.created_at`

const matchSelectJoins = `
	FROM matches m
	LEFT JOIN teams t1 ON m.team1_id = t1.id
	LEFT JOIN teams t2 ON m.team2_id = t2.id`

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT` + matchSelectColumns + matchSelectJoins + ` WHERE m.id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByIDAndKey(ctx context.Context, id, apiKey string) (*models.Match, error) {
	query := `SELECT` + matchSelectColumns + matchSelectJoins + ` WHERE m.id = $1 AND m.api_key = $2`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id, apiKey))
}

func (r *postgresMatchRepository) ListByCreator(ctx context.Context, userID string) ([]*models.Match, error) {
	query := `SELECT` + matchSelectColumns + matchSelectJoins + `
		WHERE m.creator_id = $1
		ORDER BY m.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

func (r *postgresMatchRepository) SetLive(ctx context.Context, id string, startedAt time.Time) error {
	query := `UPDATE matches SET status = $1, started_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, models.MatchStatusLive, startedAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Finish(ctx context.Context, id string, team1Score, team2Score int, winnerID *string, endedAt time.Time) error {
	query := `
		UPDATE matches SET
			status = $1,
			team1_score = $2,
			team2_score = $3,
			winner_id = $4,
			ended_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		models.MatchStatusFinished, team1Score, team2Score, winnerID, endedAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetStatus(ctx context.Context, id string, status models.MatchStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var mapPool, mapBans, mapPicks string

	var t1ID, t1Name, t1Tag, t1Flag, t1Creator sql.NullString
	var t1Public sql.NullBool
	var t1CreatedAt sql.NullTime
	var t2ID, t2Name, t2Tag, t2Flag, t2Creator sql.NullString
	var t2Public sql.NullBool
	var t2CreatedAt sql.NullTime

	err := row.Scan(
		&match.ID,
		&match.APIKey,
		&match.Status,
		&match.Series,
		&mapPool,
		&mapBans,
		&mapPicks,
		&match.KnifeRound,
		&match.Overtime,
		&match.Team1Score,
		&match.Team2Score,
		&match.Team1ID,
		&match.Team2ID,
		&match.ServerID,
		&match.WinnerID,
		&match.CreatorID,
		&match.CreatedAt,
		&match.StartedAt,
		&match.EndedAt,
		&t1ID, &t1Name, &t1Tag, &t1Flag, &t1Public, &t1Creator, &t1CreatedAt,
		&t2ID, &t2Name, &t2Tag, &t2Flag, &t2Public, &t2Creator, &t2CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	if match.MapPool, err = decodeMapList(mapPool); err != nil {
		return nil, err
	}
	if match.MapBans, err = decodeMapList(mapBans); err != nil {
		return nil, err
	}
	if match.MapPicks, err = decodeMapList(mapPicks); err != nil {
		return nil, err
	}

	if t1ID.Valid {
		match.Team1 = &models.Team{
			ID:        t1ID.String,
			Name:      t1Name.String,
			Public:    t1Public.Bool,
			CreatorID: t1Creator.String,
			CreatedAt: t1CreatedAt.Time,
		}
		if t1Tag.Valid {
			match.Team1.Tag = &t1Tag.String
		}
		if t1Flag.Valid {
			match.Team1.Flag = &t1Flag.String
		}
	}
	if t2ID.Valid {
		match.Team2 = &models.Team{
			ID:        t2ID.String,
			Name:      t2Name.String,
			Public:    t2Public.Bool,
			CreatorID: t2Creator.String,
			CreatedAt: t2CreatedAt.Time,
		}
		if t2Tag.Valid {
			match.Team2.Tag = &t2Tag.String
		}
		if t2Flag.Valid {
			match.Team2.Flag = &t2Flag.String
		}
	}

	return match, nil
}
