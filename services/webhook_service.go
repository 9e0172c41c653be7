package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skilloww/cs2panel/discord"
	"github.com/skilloww/cs2panel/get5"
	"github.com/skilloww/cs2panel/live"
	"github.com/skilloww/cs2panel/models"
	"github.com/skilloww/cs2panel/repositories"
)

// WebhookService ingests plugin events and drives the match lifecycle.
type WebhookService interface {
	// ProcessEvent authenticates the raw event body against the match it
	// claims to belong to, validates it and applies its effects. The
	// returned event name is for logging; unknown events are acknowledged
	// without effect.
	ProcessEvent(ctx context.Context, body []byte) (string, error)
}

type webhookService struct {
	matchRepo      repositories.MatchRepository
	serverRepo     repositories.ServerRepository
	mapStatRepo    repositories.MapStatRepository
	playerStatRepo repositories.PlayerStatRepository
	hub            *live.Hub
	notifier       *discord.Notifier
}

func NewWebhookService(
	matchRepo repositories.MatchRepository,
	serverRepo repositories.ServerRepository,
	mapStatRepo repositories.MapStatRepository,
	playerStatRepo repositories.PlayerStatRepository,
	hub *live.Hub,
	notifier *discord.Notifier,
) WebhookService {
	return &webhookService{
		matchRepo:      matchRepo,
		serverRepo:     serverRepo,
		mapStatRepo:    mapStatRepo,
		playerStatRepo: playerStatRepo,
		hub:            hub,
		notifier:       notifier,
	}
}

func (s *webhookService) ProcessEvent(ctx context.Context, body []byte) (string, error) {
	// Authentication happens before validation: the match id and api key
	// must identify one row, otherwise nothing is mutated or revealed.
	base, err := get5.ParseBase(body)
	if err != nil {
		return "", err
	}
	match, err := s.matchRepo.GetByIDAndKey(ctx, base.MatchID, base.APIKey)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return "", ErrWebhookAuth
		}
		return "", err
	}

	event, err := get5.ParseEvent(body)
	if err != nil {
		return "", err
	}

	switch ev := event.(type) {
	case *get5.SeriesStartEvent:
		err = s.handleSeriesStart(ctx, match, ev)
	case *get5.MapStartEvent:
		err = s.handleMapStart(ctx, match, ev)
	case *get5.RoundEndEvent:
		err = s.handleRoundEnd(ctx, match, ev)
	case *get5.MapEndEvent:
		err = s.handleMapEnd(ctx, match, ev)
	case *get5.SeriesEndEvent:
		err = s.handleSeriesEnd(ctx, match, ev)
	case *get5.PlayerStatsEvent:
		err = s.handlePlayerStats(ctx, match, ev)
	case *get5.UnknownEvent:
		slog.Debug("ignoring unhandled plugin event",
			slog.String("event", ev.EventName()),
			slog.String("match_id", match.ID))
	default:
		slog.Debug("ignoring unhandled plugin event",
			slog.String("event", event.EventName()),
			slog.String("match_id", match.ID))
	}
	if err != nil {
		return event.EventName(), err
	}
	return event.EventName(), nil
}

func (s *webhookService) handleSeriesStart(ctx context.Context, match *models.Match, ev *get5.SeriesStartEvent) error {
	if !match.Status.CanTransitionTo(models.MatchStatusLive) {
		return fmt.Errorf("%w: %s -> LIVE", ErrInvalidTransition, match.Status)
	}

	// A re-delivered series_start re-stamps started_at.
	startedAt := time.Now()
	if err := s.matchRepo.SetLive(ctx, match.ID, startedAt); err != nil {
		return fmt.Errorf("failed to mark match live: %w", err)
	}

	s.hub.BroadcastToMatch(match.ID, live.MessageMatchLive, map[string]interface{}{
		"team1": ev.Team1.Name,
		"team2": ev.Team2.Name,
	})
	s.notifier.MatchStarted(match.ID, ev.Team1.Name, ev.Team2.Name, match.MapPool)
	return nil
}

func (s *webhookService) handleMapStart(ctx context.Context, match *models.Match, ev *get5.MapStartEvent) error {
	now := time.Now()
	stat := &models.MapStat{
		ID:        uuid.NewString(),
		MatchID:   match.ID,
		MapNumber: ev.MapNumber,
		MapName:   ev.MapName,
		StartedAt: &now,
	}
	if err := s.mapStatRepo.Upsert(ctx, stat); err != nil {
		return fmt.Errorf("failed to upsert map stat: %w", err)
	}

	s.hub.BroadcastToMatch(match.ID, live.MessageMapStarted, map[string]interface{}{
		"map_number": ev.MapNumber,
		"map_name":   ev.MapName,
	})
	return nil
}

func (s *webhookService) handleRoundEnd(ctx context.Context, match *models.Match, ev *get5.RoundEndEvent) error {
	// Last write wins; out-of-order deliveries are not reordered. A
	// round_end arriving before its map_start creates the row.
	err := s.mapStatRepo.UpdateScores(ctx, match.ID, ev.MapNumber, ev.Team1.Score, ev.Team2.Score)
	if errors.Is(err, repositories.ErrMapStatNotFound) {
		now := time.Now()
		stat := &models.MapStat{
			ID:        uuid.NewString(),
			MatchID:   match.ID,
			MapNumber: ev.MapNumber,
			StartedAt: &now,
		}
		if err := s.mapStatRepo.Upsert(ctx, stat); err != nil {
			return fmt.Errorf("failed to create map stat for round: %w", err)
		}
		err = s.mapStatRepo.UpdateScores(ctx, match.ID, ev.MapNumber, ev.Team1.Score, ev.Team2.Score)
	}
	if err != nil {
		return fmt.Errorf("failed to update round scores: %w", err)
	}

	s.hub.BroadcastToMatch(match.ID, live.MessageScoreUpdated, map[string]interface{}{
		"map_number":   ev.MapNumber,
		"round_number": ev.RoundNumber,
		"team1_score":  ev.Team1.Score,
		"team2_score":  ev.Team2.Score,
	})
	return nil
}

func (s *webhookService) handleMapEnd(ctx context.Context, match *models.Match, ev *get5.MapEndEvent) error {
	// A winner name matching neither roster degrades to a drawn map
	// rather than rejecting the event.
	winnerID := match.ResolveTeamID(ev.Winner.Team)
	if winnerID == nil && ev.Winner.Team != "" {
		slog.Warn("map winner does not match either team, storing null winner",
			slog.String("match_id", match.ID),
			slog.String("winner", ev.Winner.Team))
	}

	err := s.mapStatRepo.Finalize(ctx, match.ID, ev.MapNumber, ev.Team1.Score, ev.Team2.Score, winnerID, time.Now())
	if errors.Is(err, repositories.ErrMapStatNotFound) {
		now := time.Now()
		stat := &models.MapStat{
			ID:        uuid.NewString(),
			MatchID:   match.ID,
			MapNumber: ev.MapNumber,
			MapName:   ev.MapName,
			StartedAt: &now,
		}
		if err := s.mapStatRepo.Upsert(ctx, stat); err != nil {
			return fmt.Errorf("failed to create map stat for map end: %w", err)
		}
		err = s.mapStatRepo.Finalize(ctx, match.ID, ev.MapNumber, ev.Team1.Score, ev.Team2.Score, winnerID, time.Now())
	}
	if err != nil {
		return fmt.Errorf("failed to finalize map: %w", err)
	}

	s.hub.BroadcastToMatch(match.ID, live.MessageMapFinished, map[string]interface{}{
		"map_number":  ev.MapNumber,
		"map_name":    ev.MapName,
		"team1_score": ev.Team1.Score,
		"team2_score": ev.Team2.Score,
		"winner":      ev.Winner.Team,
	})
	s.notifier.MapFinished(match.ID, ev.MapName, ev.MapNumber,
		ev.Team1.Name, ev.Team2.Name, ev.Team1.Score, ev.Team2.Score, ev.Winner.Team)
	return nil
}

func (s *webhookService) handleSeriesEnd(ctx context.Context, match *models.Match, ev *get5.SeriesEndEvent) error {
	if !match.Status.CanTransitionTo(models.MatchStatusFinished) {
		return fmt.Errorf("%w: %s -> FINISHED", ErrInvalidTransition, match.Status)
	}

	winnerID := match.ResolveTeamID(ev.Winner.Team)
	if winnerID == nil && ev.Winner.Team != "" {
		slog.Warn("series winner does not match either team, storing null winner",
			slog.String("match_id", match.ID),
			slog.String("winner", ev.Winner.Team))
	}

	if err := s.matchRepo.Finish(ctx, match.ID, ev.Team1.SeriesScore, ev.Team2.SeriesScore, winnerID, time.Now()); err != nil {
		return fmt.Errorf("failed to finish match: %w", err)
	}

	if match.ServerID != nil {
		if err := s.serverRepo.SetInUse(ctx, *match.ServerID, false); err != nil {
			slog.Error("failed to release server after series end",
				slog.String("match_id", match.ID),
				slog.String("server_id", *match.ServerID),
				slog.Any("error", err))
		}
	}

	s.hub.BroadcastToMatch(match.ID, live.MessageMatchFinished, map[string]interface{}{
		"team1_score": ev.Team1.SeriesScore,
		"team2_score": ev.Team2.SeriesScore,
		"winner":      ev.Winner.Team,
	})
	s.notifier.MatchFinished(match.ID, ev.Team1.Name, ev.Team2.Name,
		ev.Team1.SeriesScore, ev.Team2.SeriesScore, ev.Winner.Team)
	return nil
}

func (s *webhookService) handlePlayerStats(ctx context.Context, match *models.Match, ev *get5.PlayerStatsEvent) error {
	// Unlike map winners, a stat row cannot degrade: it must belong to a
	// real team or the numbers are unattributable.
	teamID := match.ResolveTeamID(ev.Player.Team)
	if teamID == nil {
		return fmt.Errorf("%w: %q", ErrUnknownEventTeam, ev.Player.Team)
	}

	stat := &models.PlayerStat{
		ID:           uuid.NewString(),
		MatchID:      match.ID,
		MapNumber:    ev.MapNumber,
		SteamID:      ev.Player.SteamID,
		Name:         ev.Player.Name,
		TeamID:       *teamID,
		Kills:        ev.Player.Stats.Kills,
		Deaths:       ev.Player.Stats.Deaths,
		Assists:      ev.Player.Stats.Assists,
		FlashAssists: ev.Player.Stats.FlashAssists,
		Headshots:    ev.Player.Stats.Headshots,
		Damage:       ev.Player.Stats.Damage,
		Rating:       ev.Player.Stats.Rating,
		ADR:          ev.Player.Stats.ADR,
		KAST:         ev.Player.Stats.KAST,
	}
	if err := s.playerStatRepo.Create(ctx, stat); err != nil {
		return fmt.Errorf("failed to store player stats: %w", err)
	}

	s.hub.BroadcastToMatch(match.ID, live.MessagePlayerStats, map[string]interface{}{
		"steam_id": ev.Player.SteamID,
		"name":     ev.Player.Name,
		"team_id":  *teamID,
		"stats":    ev.Player.Stats,
	})
	return nil
}
