package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/skilloww/cs2panel/discord"
	"github.com/skilloww/cs2panel/get5"
	"github.com/skilloww/cs2panel/models"
	"github.com/skilloww/cs2panel/rcon"
	"github.com/skilloww/cs2panel/repositories"
)

type MatchInput struct {
	Series     models.MatchSeries `json:"series"`
	MapPool    []string           `json:"map_pool"`
	KnifeRound bool               `json:"knife_round"`
	Overtime   bool               `json:"overtime"`
	Team1ID    *string            `json:"team1_id"`
	Team2ID    *string            `json:"team2_id"`
	ServerID   *string            `json:"server_id"`
}

// RconAction names the match-scoped RCON commands exposed over the API.
type RconAction string

const (
	RconEndMatch    RconAction = "end"
	RconPause       RconAction = "pause"
	RconUnpause     RconAction = "unpause"
	RconStatus      RconAction = "status"
	RconListBackups RconAction = "list_backups"
	RconLoadBackup  RconAction = "load_backup"
)

type MatchService interface {
	// CreateMatch validates the input, reserves the server when one is
	// bound and generates the per-match webhook api key. Matches without
	// teams are quick-veto matches; the veto assembles teams in-game.
	CreateMatch(ctx context.Context, creatorID string, input MatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, userID, matchID string) (*models.Match, error)
	ListMatches(ctx context.Context, userID string) ([]*models.Match, error)
	// CancelMatch is administrative: legal from every state. The bound
	// server stays reserved; freeing it is a manual operation.
	CancelMatch(ctx context.Context, userID, matchID string) (*models.Match, error)
	// LoadMatchOnServer pushes the api key and the config URL to the
	// match's game server over RCON.
	LoadMatchOnServer(ctx context.Context, userID, matchID string) error
	MatchRcon(ctx context.Context, userID, matchID string, action RconAction, arg string) (string, error)
	// MatchConfig builds the plugin-facing configuration document. It is
	// unauthenticated by design: the game server fetches it by match id.
	MatchConfig(ctx context.Context, matchID string) (get5.MatchConfig, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	teamRepo   repositories.TeamRepository
	serverRepo repositories.ServerRepository
	notifier   *discord.Notifier
	baseURL    string
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	serverRepo repositories.ServerRepository,
	notifier *discord.Notifier,
	baseURL string,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		serverRepo: serverRepo,
		notifier:   notifier,
		baseURL:    baseURL,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, creatorID string, input MatchInput) (*models.Match, error) {
	if !input.Series.Valid() {
		return nil, ErrInvalidSeries
	}
	if len(input.MapPool) == 0 {
		return nil, ErrEmptyMapPool
	}
	if input.Team1ID != nil && input.Team2ID != nil && *input.Team1ID == *input.Team2ID {
		return nil, ErrSameTeamTwice
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, err
	}

	match := &models.Match{
		ID:         uuid.NewString(),
		APIKey:     apiKey,
		Status:     models.MatchStatusPending,
		Series:     input.Series,
		MapPool:    input.MapPool,
		MapBans:    []string{},
		MapPicks:   []string{},
		KnifeRound: input.KnifeRound,
		Overtime:   input.Overtime,
		Team1ID:    input.Team1ID,
		Team2ID:    input.Team2ID,
		ServerID:   input.ServerID,
		CreatorID:  creatorID,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	if input.ServerID != nil {
		if err := s.serverRepo.SetInUse(ctx, *input.ServerID, true); err != nil {
			return nil, fmt.Errorf("failed to reserve server: %w", err)
		}
	}

	created, err := s.matchRepo.GetByID(ctx, match.ID)
	if err != nil {
		return nil, err
	}

	if created.Team1ID == nil && created.Team2ID == nil {
		s.notifier.QuickVetoStarted(created.ID, created.MapPool)
	}
	return created, nil
}

func (s *matchService) GetMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.CreatorID != userID {
		return nil, ErrMatchAccessDenied
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, userID string) ([]*models.Match, error) {
	return s.matchRepo.ListByCreator(ctx, userID)
}

func (s *matchService) CancelMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := s.GetMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Status.CanTransitionTo(models.MatchStatusCanceled) {
		return nil, ErrInvalidTransition
	}
	if err := s.matchRepo.SetStatus(ctx, matchID, models.MatchStatusCanceled); err != nil {
		return nil, fmt.Errorf("failed to cancel match: %w", err)
	}
	match.Status = models.MatchStatusCanceled
	return match, nil
}

func (s *matchService) LoadMatchOnServer(ctx context.Context, userID, matchID string) error {
	match, server, err := s.matchWithServer(ctx, userID, matchID)
	if err != nil {
		return err
	}

	client, err := rcon.Dial(server)
	if err != nil {
		return fmt.Errorf("failed to reach game server: %w", err)
	}
	defer client.Close()

	if _, err := client.Exec(rcon.SetAPIKeyCommand(match.APIKey)); err != nil {
		return fmt.Errorf("failed to push api key: %w", err)
	}
	configURL := fmt.Sprintf("%s/api/match/%s/config", s.baseURL, match.ID)
	if _, err := client.Exec(rcon.LoadMatchCommand(configURL)); err != nil {
		return fmt.Errorf("failed to load match config: %w", err)
	}

	slog.Info("match config pushed to server",
		slog.String("match_id", match.ID),
		slog.String("server_id", server.ID))
	return nil
}

func (s *matchService) MatchRcon(ctx context.Context, userID, matchID string, action RconAction, arg string) (string, error) {
	_, server, err := s.matchWithServer(ctx, userID, matchID)
	if err != nil {
		return "", err
	}

	var command string
	switch action {
	case RconEndMatch:
		command = rcon.EndMatchCommand()
	case RconPause:
		command = rcon.PauseCommand()
	case RconUnpause:
		command = rcon.UnpauseCommand()
	case RconStatus:
		command = rcon.StatusCommand()
	case RconListBackups:
		command = rcon.ListBackupsCommand()
	case RconLoadBackup:
		if arg == "" {
			return "", ErrUnknownRconAction
		}
		command = rcon.LoadBackupCommand(arg)
	default:
		return "", ErrUnknownRconAction
	}

	return rcon.Exec(server, command)
}

func (s *matchService) MatchConfig(ctx context.Context, matchID string) (get5.MatchConfig, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return get5.MatchConfig{}, err
	}

	// The join loads team names only; the plugin needs full rosters.
	if match.Team1ID != nil {
		team, err := s.teamRepo.GetByID(ctx, *match.Team1ID)
		if err != nil && !errors.Is(err, repositories.ErrTeamNotFound) {
			return get5.MatchConfig{}, err
		}
		if err == nil {
			match.Team1 = team
		}
	}
	if match.Team2ID != nil {
		team, err := s.teamRepo.GetByID(ctx, *match.Team2ID)
		if err != nil && !errors.Is(err, repositories.ErrTeamNotFound) {
			return get5.MatchConfig{}, err
		}
		if err == nil {
			match.Team2 = team
		}
	}

	webhookURL := fmt.Sprintf("%s/api/match/%s/webhook", s.baseURL, match.ID)
	cfg := get5.GenerateMatchConfig(match, webhookURL)

	if ok, problems := get5.ValidateMatchConfig(cfg); !ok {
		slog.Warn("serving match config with validation warnings",
			slog.String("match_id", match.ID),
			slog.Any("problems", problems))
	}
	return cfg, nil
}

func (s *matchService) matchWithServer(ctx context.Context, userID, matchID string) (*models.Match, *models.Server, error) {
	match, err := s.GetMatch(ctx, userID, matchID)
	if err != nil {
		return nil, nil, err
	}
	if match.ServerID == nil {
		return nil, nil, ErrMatchNoServer
	}
	server, err := s.serverRepo.GetByID(ctx, *match.ServerID)
	if err != nil {
		return nil, nil, err
	}
	return match, server, nil
}

// generateAPIKey produces the per-match webhook credential: "match_"
// followed by 64 hex characters.
func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return "match_" + hex.EncodeToString(buf), nil
}
