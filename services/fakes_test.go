package services

import (
	"context"
	"time"

	"github.com/skilloww/cs2panel/models"
	"github.com/skilloww/cs2panel/repositories"
)

// In-memory repositories for service tests. They reproduce the lookup
// and join behavior of the postgres implementations, including the
// team-name join on match reads.

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.SteamID == user.SteamID {
			return repositories.ErrUserSteamIDConflict
		}
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetBySteamID(_ context.Context, steamID string) (*models.User, error) {
	for _, user := range r.users {
		if user.SteamID == steamID {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

type fakeTeamRepo struct {
	teams map[string]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*models.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	team.CreatedAt = time.Now()
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

func (r *fakeTeamRepo) ListVisible(_ context.Context, userID string) ([]*models.Team, error) {
	var teams []*models.Team
	for _, team := range r.teams {
		if team.Public || team.CreatorID == userID {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

func (r *fakeTeamRepo) AddPlayer(_ context.Context, player *models.TeamPlayer) error {
	team, ok := r.teams[player.TeamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	for _, existing := range team.Players {
		if existing.UserID == player.UserID {
			return repositories.ErrTeamPlayerConflict
		}
	}
	team.Players = append(team.Players, *player)
	return nil
}

func (r *fakeTeamRepo) RemovePlayers(_ context.Context, teamID string) error {
	team, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.Players = nil
	return nil
}

func (r *fakeTeamRepo) SetLogoKey(_ context.Context, teamID string, logoKey *string) error {
	team, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	return nil
}

type fakeServerRepo struct {
	servers map[string]*models.Server
}

func newFakeServerRepo() *fakeServerRepo {
	return &fakeServerRepo{servers: make(map[string]*models.Server)}
}

func (r *fakeServerRepo) Create(_ context.Context, server *models.Server) error {
	for _, existing := range r.servers {
		if existing.IP == server.IP && existing.Port == server.Port {
			return repositories.ErrServerAddressTaken
		}
	}
	server.CreatedAt = time.Now()
	r.servers[server.ID] = server
	return nil
}

func (r *fakeServerRepo) GetByID(_ context.Context, id string) (*models.Server, error) {
	server, ok := r.servers[id]
	if !ok {
		return nil, repositories.ErrServerNotFound
	}
	return server, nil
}

func (r *fakeServerRepo) ListVisible(_ context.Context, userID string) ([]*models.Server, error) {
	var servers []*models.Server
	for _, server := range r.servers {
		if server.Public || server.UserID == userID {
			servers = append(servers, server)
		}
	}
	return servers, nil
}

func (r *fakeServerRepo) SetInUse(_ context.Context, id string, inUse bool) error {
	server, ok := r.servers[id]
	if !ok {
		return repositories.ErrServerNotFound
	}
	server.InUse = inUse
	return nil
}

func (r *fakeServerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.servers[id]; !ok {
		return repositories.ErrServerNotFound
	}
	delete(r.servers, id)
	return nil
}

type fakeMatchRepo struct {
	matches  map[string]*models.Match
	teamRepo *fakeTeamRepo
}

func newFakeMatchRepo(teamRepo *fakeTeamRepo) *fakeMatchRepo {
	return &fakeMatchRepo{
		matches:  make(map[string]*models.Match),
		teamRepo: teamRepo,
	}
}

func (r *fakeMatchRepo) Create(_ context.Context, match *models.Match) error {
	match.CreatedAt = time.Now()
	r.matches[match.ID] = match
	return nil
}

// joinTeams mirrors the postgres LEFT JOIN: team rows without rosters.
func (r *fakeMatchRepo) joinTeams(match *models.Match) *models.Match {
	copied := *match
	if match.Team1ID != nil {
		if team, ok := r.teamRepo.teams[*match.Team1ID]; ok {
			joined := *team
			joined.Players = nil
			copied.Team1 = &joined
		}
	}
	if match.Team2ID != nil {
		if team, ok := r.teamRepo.teams[*match.Team2ID]; ok {
			joined := *team
			joined.Players = nil
			copied.Team2 = &joined
		}
	}
	return &copied
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id string) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return r.joinTeams(match), nil
}

func (r *fakeMatchRepo) GetByIDAndKey(_ context.Context, id, apiKey string) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok || match.APIKey != apiKey {
		return nil, repositories.ErrMatchNotFound
	}
	return r.joinTeams(match), nil
}

func (r *fakeMatchRepo) ListByCreator(_ context.Context, userID string) ([]*models.Match, error) {
	var matches []*models.Match
	for _, match := range r.matches {
		if match.CreatorID == userID {
			matches = append(matches, r.joinTeams(match))
		}
	}
	return matches, nil
}

func (r *fakeMatchRepo) SetLive(_ context.Context, id string, startedAt time.Time) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Status = models.MatchStatusLive
	match.StartedAt = &startedAt
	return nil
}

func (r *fakeMatchRepo) Finish(_ context.Context, id string, team1Score, team2Score int, winnerID *string, endedAt time.Time) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Status = models.MatchStatusFinished
	match.Team1Score = team1Score
	match.Team2Score = team2Score
	match.WinnerID = winnerID
	match.EndedAt = &endedAt
	return nil
}

func (r *fakeMatchRepo) SetStatus(_ context.Context, id string, status models.MatchStatus) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Status = status
	return nil
}

type mapStatKey struct {
	matchID   string
	mapNumber int
}

type fakeMapStatRepo struct {
	stats map[mapStatKey]*models.MapStat
}

func newFakeMapStatRepo() *fakeMapStatRepo {
	return &fakeMapStatRepo{stats: make(map[mapStatKey]*models.MapStat)}
}

func (r *fakeMapStatRepo) Upsert(_ context.Context, stat *models.MapStat) error {
	key := mapStatKey{stat.MatchID, stat.MapNumber}
	if existing, ok := r.stats[key]; ok {
		existing.MapName = stat.MapName
		existing.StartedAt = stat.StartedAt
		return nil
	}
	copied := *stat
	r.stats[key] = &copied
	return nil
}

func (r *fakeMapStatRepo) UpdateScores(_ context.Context, matchID string, mapNumber, team1Score, team2Score int) error {
	stat, ok := r.stats[mapStatKey{matchID, mapNumber}]
	if !ok {
		return repositories.ErrMapStatNotFound
	}
	stat.Team1Score = team1Score
	stat.Team2Score = team2Score
	return nil
}

func (r *fakeMapStatRepo) Finalize(_ context.Context, matchID string, mapNumber, team1Score, team2Score int, winnerID *string, endedAt time.Time) error {
	stat, ok := r.stats[mapStatKey{matchID, mapNumber}]
	if !ok {
		return repositories.ErrMapStatNotFound
	}
	stat.Team1Score = team1Score
	stat.Team2Score = team2Score
	stat.WinnerID = winnerID
	stat.EndedAt = &endedAt
	return nil
}

func (r *fakeMapStatRepo) GetByMatchAndNumber(_ context.Context, matchID string, mapNumber int) (*models.MapStat, error) {
	stat, ok := r.stats[mapStatKey{matchID, mapNumber}]
	if !ok {
		return nil, repositories.ErrMapStatNotFound
	}
	return stat, nil
}

func (r *fakeMapStatRepo) ListByMatch(_ context.Context, matchID string) ([]*models.MapStat, error) {
	var stats []*models.MapStat
	for key, stat := range r.stats {
		if key.matchID == matchID {
			stats = append(stats, stat)
		}
	}
	return stats, nil
}

type fakePlayerStatRepo struct {
	stats []*models.PlayerStat
}

func newFakePlayerStatRepo() *fakePlayerStatRepo {
	return &fakePlayerStatRepo{}
}

func (r *fakePlayerStatRepo) Create(_ context.Context, stat *models.PlayerStat) error {
	stat.CreatedAt = time.Now()
	r.stats = append(r.stats, stat)
	return nil
}

func (r *fakePlayerStatRepo) ListByMatch(_ context.Context, matchID string) ([]*models.PlayerStat, error) {
	var stats []*models.PlayerStat
	for _, stat := range r.stats {
		if stat.MatchID == matchID {
			stats = append(stats, stat)
		}
	}
	return stats, nil
}
