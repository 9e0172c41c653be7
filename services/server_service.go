package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skilloww/cs2panel/models"
	"github.com/skilloww/cs2panel/rcon"
	"github.com/skilloww/cs2panel/repositories"
)

type ServerInput struct {
	Name         string `json:"name"`
	IP           string `json:"ip"`
	Port         int    `json:"port"`
	RconPassword string `json:"rcon_password"`
	Public       bool   `json:"public"`
}

// ServerStatus is the result of an RCON availability probe.
type ServerStatus struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Online   bool   `json:"online"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ServerService interface {
	CreateServer(ctx context.Context, userID string, input ServerInput) (*models.Server, error)
	ListServers(ctx context.Context, userID string) ([]*models.Server, error)
	DeleteServer(ctx context.Context, userID, serverID string) error
	// ServerStatus probes one server over RCON.
	ServerStatus(ctx context.Context, userID, serverID string) (*ServerStatus, error)
	// FleetStatus probes every server visible to the user concurrently.
	FleetStatus(ctx context.Context, userID string) ([]*ServerStatus, error)
}

type serverService struct {
	serverRepo repositories.ServerRepository
}

func NewServerService(serverRepo repositories.ServerRepository) ServerService {
	return &serverService{serverRepo: serverRepo}
}

func (s *serverService) CreateServer(ctx context.Context, userID string, input ServerInput) (*models.Server, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.IP) == "" ||
		input.Port <= 0 || input.Port > 65535 || input.RconPassword == "" {
		return nil, ErrServerFieldsRequired
	}

	server := &models.Server{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		IP:           strings.TrimSpace(input.IP),
		Port:         input.Port,
		RconPassword: input.RconPassword,
		Public:       input.Public,
		UserID:       userID,
	}
	if err := s.serverRepo.Create(ctx, server); err != nil {
		return nil, err
	}
	return server, nil
}

func (s *serverService) ListServers(ctx context.Context, userID string) ([]*models.Server, error) {
	return s.serverRepo.ListVisible(ctx, userID)
}

func (s *serverService) DeleteServer(ctx context.Context, userID, serverID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}
	if server.UserID != userID {
		return ErrServerAccessDenied
	}
	return s.serverRepo.Delete(ctx, serverID)
}

func (s *serverService) ServerStatus(ctx context.Context, userID, serverID string) (*ServerStatus, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if !server.Public && server.UserID != userID {
		return nil, ErrServerAccessDenied
	}
	return probeServer(server), nil
}

func (s *serverService) FleetStatus(ctx context.Context, userID string) ([]*ServerStatus, error) {
	servers, err := s.serverRepo.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]*ServerStatus, len(servers))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, server := range servers {
		i, server := i, server
		g.Go(func() error {
			statuses[i] = probeServer(server)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fleet status probe failed: %w", err)
	}
	return statuses, nil
}

func probeServer(server *models.Server) *ServerStatus {
	status := &ServerStatus{
		ServerID: server.ID,
		Name:     server.Name,
	}
	response, err := rcon.Exec(server, rcon.StatusCommand())
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Online = true
	status.Response = response
	return status
}
