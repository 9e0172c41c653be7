package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/skilloww/cs2panel/models"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserSteamIDConflict = errors.New("user steam id conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetBySteamID(ctx context.Context, steamID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, steam_id, name, avatar, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.SteamID,
		user.Name,
		user.Avatar,
		user.Role,
	).Scan(&user.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_steam_id_key" {
				return ErrUserSteamIDConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, steam_id, name, avatar, role, created_at
		FROM users
		WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetBySteamID(ctx context.Context, steamID string) (*models.User, error) {
	query := `
		SELECT id, steam_id, name, avatar, role, created_at
		FROM users
		WHERE steam_id = $1`
	return r.scanUser(ctx, query, steamID)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			name = $1,
			avatar = $2,
			role = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, user.Name, user.Avatar, user.Role, user.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.SteamID,
		&user.Name,
		&user.Avatar,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
