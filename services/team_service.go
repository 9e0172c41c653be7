package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/skilloww/cs2panel/models"
	"github.com/skilloww/cs2panel/repositories"
	"github.com/skilloww/cs2panel/steam"
	"github.com/skilloww/cs2panel/storage"
)

type RosterMemberInput struct {
	SteamID string `json:"steam_id"`
	Name    string `json:"name"`
	Captain bool   `json:"captain"`
	Coach   bool   `json:"coach"`
}

type TeamInput struct {
	Name    string              `json:"name"`
	Tag     *string             `json:"tag"`
	Flag    *string             `json:"flag"`
	Public  bool                `json:"public"`
	Players []RosterMemberInput `json:"players"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, creatorID string, input TeamInput) (*models.Team, error)
	GetTeam(ctx context.Context, userID, teamID string) (*models.Team, error)
	// UpdateTeam replaces the whole roster with the submitted one;
	// members are looked up by steamid and created on the fly when the
	// panel has never seen them.
	UpdateTeam(ctx context.Context, userID, teamID string, input TeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, userID, teamID string) error
	ListTeams(ctx context.Context, userID string) ([]*models.Team, error)
	UploadLogo(ctx context.Context, userID, teamID, filename, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, userRepo repositories.UserRepository, uploader storage.FileUploader) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, creatorID string, input TeamInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Tag:       input.Tag,
		Flag:      input.Flag,
		Public:    input.Public,
		CreatorID: creatorID,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	if err := s.setRoster(ctx, team.ID, input.Players); err != nil {
		return nil, err
	}
	return s.reload(ctx, team.ID)
}

func (s *teamService) GetTeam(ctx context.Context, userID, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.Public && team.CreatorID != userID {
		return nil, ErrTeamAccessDenied
	}
	s.decorate(team)
	return team, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, userID, teamID string, input TeamInput) (*models.Team, error) {
	team, err := s.ownedTeam(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}

	team.Name = strings.TrimSpace(input.Name)
	team.Tag = input.Tag
	team.Flag = input.Flag
	team.Public = input.Public
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	if err := s.teamRepo.RemovePlayers(ctx, teamID); err != nil {
		return nil, fmt.Errorf("failed to clear roster: %w", err)
	}
	if err := s.setRoster(ctx, teamID, input.Players); err != nil {
		return nil, err
	}
	return s.reload(ctx, teamID)
}

func (s *teamService) DeleteTeam(ctx context.Context, userID, teamID string) error {
	team, err := s.ownedTeam(ctx, userID, teamID)
	if err != nil {
		return err
	}
	if team.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			slog.Warn("failed to delete team logo from storage",
				slog.String("team_id", teamID), slog.Any("error", err))
		}
	}
	return s.teamRepo.Delete(ctx, teamID)
}

func (s *teamService) ListTeams(ctx context.Context, userID string) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		s.decorate(team)
	}
	return teams, nil
}

func (s *teamService) UploadLogo(ctx context.Context, userID, teamID, filename, contentType string, file io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrLogoNotConfigured
	}
	team, err := s.ownedTeam(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	key := "team-logos/" + teamID + strings.ToLower(path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}

	if team.LogoKey != nil && *team.LogoKey != result.Key {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			slog.Warn("failed to delete previous team logo",
				slog.String("team_id", teamID), slog.Any("error", err))
		}
	}
	if err := s.teamRepo.SetLogoKey(ctx, teamID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store logo key: %w", err)
	}
	return s.reload(ctx, teamID)
}

// setRoster resolves each submitted member to a user row, creating
// users that have never logged in so teams can be assembled before the
// whole roster has visited the panel.
func (s *teamService) setRoster(ctx context.Context, teamID string, members []RosterMemberInput) error {
	for _, member := range members {
		if !steam.ValidSteamID64(member.SteamID) {
			return fmt.Errorf("%w: %q", ErrInvalidSteamID, member.SteamID)
		}

		user, err := s.userRepo.GetBySteamID(ctx, member.SteamID)
		if errors.Is(err, repositories.ErrUserNotFound) {
			name := strings.TrimSpace(member.Name)
			if name == "" {
				name = "Player_" + member.SteamID[len(member.SteamID)-4:]
			}
			user = &models.User{
				ID:      uuid.NewString(),
				SteamID: member.SteamID,
				Name:    name,
				Role:    models.RoleUser,
			}
			if err := s.userRepo.Create(ctx, user); err != nil {
				return fmt.Errorf("failed to create roster user: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to look up roster user: %w", err)
		}

		err = s.teamRepo.AddPlayer(ctx, &models.TeamPlayer{
			ID:      uuid.NewString(),
			TeamID:  teamID,
			UserID:  user.ID,
			Captain: member.Captain,
			Coach:   member.Coach,
		})
		if err != nil && !errors.Is(err, repositories.ErrTeamPlayerConflict) {
			return fmt.Errorf("failed to add roster member: %w", err)
		}
	}
	return nil
}

func (s *teamService) ownedTeam(ctx context.Context, userID, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CreatorID != userID {
		return nil, ErrTeamAccessDenied
	}
	return team, nil
}

func (s *teamService) reload(ctx context.Context, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	s.decorate(team)
	return team, nil
}

// decorate fills in the public logo URL from the stored object key.
func (s *teamService) decorate(team *models.Team) {
	if team.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.LogoKey)
	if url != "" {
		team.LogoURL = &url
	}
}
