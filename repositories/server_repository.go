package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/skilloww/cs2panel/models"
)

var (
	ErrServerNotFound     = errors.New("server not found")
	ErrServerAddressTaken = errors.New("server with this ip and port already exists")
	ErrServerOwnerInvalid = errors.New("server owner invalid")
)

type ServerRepository interface {
	Create(ctx context.Context, server *models.Server) error
	GetByID(ctx context.Context, id string) (*models.Server, error)
	ListVisible(ctx context.Context, userID string) ([]*models.Server, error)
	SetInUse(ctx context.Context, id string, inUse bool) error
	Delete(ctx context.Context, id string) error
}

type postgresServerRepository struct {
	db *sql.DB
}

func NewPostgresServerRepository(db *sql.DB) ServerRepository {
	return &postgresServerRepository{db: db}
}

func (r *postgresServerRepository) Create(ctx context.Context, server *models.Server) error {
	query := `
		INSERT INTO servers (id, name, ip, port, rcon_password, public, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING in_use, created_at`

	err := r.db.QueryRowContext(ctx, query,
		server.ID,
		server.Name,
		server.IP,
		server.Port,
		server.RconPassword,
		server.Public,
		server.UserID,
	).Scan(&server.InUse, &server.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "servers_ip_port_key" {
					return ErrServerAddressTaken
				}
			case "23503":
				if pqErr.Constraint == "servers_user_id_fkey" {
					return ErrServerOwnerInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresServerRepository) GetByID(ctx context.Context, id string) (*models.Server, error) {
	query := `
		SELECT id, name, ip, port, rcon_password, public, in_use, user_id, created_at
		FROM servers
		WHERE id = $1`

	server := &models.Server{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&server.ID,
		&server.Name,
		&server.IP,
		&server.Port,
		&server.RconPassword,
		&server.Public,
		&server.InUse,
		&server.UserID,
		&server.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServerNotFound
		}
		return nil, err
	}
	return server, nil
}

func (r *postgresServerRepository) ListVisible(ctx context.Context, userID string) ([]*models.Server, error) {
	query := `
		SELECT id, name, ip, port, rcon_password, public, in_use, user_id, created_at
		FROM servers
		WHERE user_id = $1 OR public = TRUE
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	servers := make([]*models.Server, 0)
	for rows.Next() {
		server := &models.Server{}
		scanErr := rows.Scan(
			&server.ID,
			&server.Name,
			&server.IP,
			&server.Port,
			&server.RconPassword,
			&server.Public,
			&server.InUse,
			&server.UserID,
			&server.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		servers = append(servers, server)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return servers, nil
}

func (r *postgresServerRepository) SetInUse(ctx context.Context, id string, inUse bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE servers SET in_use = $1 WHERE id = $2`, inUse, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrServerNotFound)
}

func (r *postgresServerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM servers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrServerNotFound)
}
