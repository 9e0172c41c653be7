package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/skilloww/cs2panel/models"
	"github.com/skilloww/cs2panel/repositories"
	"github.com/skilloww/cs2panel/steam"
)

const sessionTTL = 30 * 24 * time.Hour

type AuthService interface {
	// LoginURL returns the Steam OpenID redirect for starting a login.
	LoginURL() string
	// CompleteLogin verifies the OpenID assertion Steam redirected back
	// with, upserts the user from their Steam profile and returns a
	// signed session token.
	CompleteLogin(ctx context.Context, query url.Values) (*models.User, string, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type authService struct {
	userRepo    repositories.UserRepository
	steamClient *steam.Client
	jwtSecret   string
	baseURL     string
}

func NewAuthService(userRepo repositories.UserRepository, steamClient *steam.Client, jwtSecret, baseURL string) AuthService {
	return &authService{
		userRepo:    userRepo,
		steamClient: steamClient,
		jwtSecret:   jwtSecret,
		baseURL:     baseURL,
	}
}

func (s *authService) LoginURL() string {
	return steam.LoginURL(s.baseURL+"/api/auth/steam/return", s.baseURL)
}

func (s *authService) CompleteLogin(ctx context.Context, query url.Values) (*models.User, string, error) {
	if err := s.steamClient.VerifyAssertion(ctx, query); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidSteamAssertion, err)
	}

	steamID, err := steam.ExtractSteamID(query.Get("openid.claimed_id"))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidSteamAssertion, err)
	}

	summary := s.steamClient.GetPlayerSummary(ctx, steamID)

	user, err := s.userRepo.GetBySteamID(ctx, steamID)
	switch {
	case err == nil:
		user.Name = summary.PersonaName
		if summary.AvatarFull != "" {
			user.Avatar = &summary.AvatarFull
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to refresh user profile: %w", err)
		}
	case errors.Is(err, repositories.ErrUserNotFound):
		user = &models.User{
			ID:      uuid.NewString(),
			SteamID: steamID,
			Name:    summary.PersonaName,
			Role:    models.RoleUser,
		}
		if summary.AvatarFull != "" {
			user.Avatar = &summary.AvatarFull
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to create user: %w", err)
		}
	default:
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(sessionTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
