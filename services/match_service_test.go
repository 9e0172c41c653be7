package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilloww/cs2panel/models"
)

var apiKeyPattern = regexp.MustCompile(`^match_[0-9a-f]{64}$`)

type matchFixture struct {
	svc        MatchService
	matchRepo  *fakeMatchRepo
	teamRepo   *fakeTeamRepo
	serverRepo *fakeServerRepo
	team1      *models.Team
	team2      *models.Team
	server     *models.Server
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	teamRepo := newFakeTeamRepo()
	team1 := &models.Team{ID: "team1-id", Name: "Alpha", CreatorID: "user-1"}
	team2 := &models.Team{ID: "team2-id", Name: "Bravo", CreatorID: "user-1"}
	require.NoError(t, teamRepo.Create(context.Background(), team1))
	require.NoError(t, teamRepo.Create(context.Background(), team2))

	serverRepo := newFakeServerRepo()
	server := &models.Server{ID: "server-id", Name: "srv", IP: "10.0.0.1", Port: 27015, RconPassword: "x", UserID: "user-1"}
	require.NoError(t, serverRepo.Create(context.Background(), server))

	matchRepo := newFakeMatchRepo(teamRepo)
	return &matchFixture{
		svc:        NewMatchService(matchRepo, teamRepo, serverRepo, nil, "https://panel.example.com"),
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		serverRepo: serverRepo,
		team1:      team1,
		team2:      team2,
		server:     server,
	}
}

func TestCreateMatchValidation(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   MatchInput
		wantErr error
	}{
		{
			name:    "bad series",
			input:   MatchInput{Series: "BO7", MapPool: []string{"de_mirage"}},
			wantErr: ErrInvalidSeries,
		},
		{
			name:    "empty map pool",
			input:   MatchInput{Series: models.SeriesBO1},
			wantErr: ErrEmptyMapPool,
		},
		{
			name: "same team twice",
			input: MatchInput{
				Series:  models.SeriesBO1,
				MapPool: []string{"de_mirage"},
				Team1ID: &f.team1.ID,
				Team2ID: &f.team1.ID,
			},
			wantErr: ErrSameTeamTwice,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateMatch(ctx, "user-1", tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateMatchGeneratesAPIKeyAndReservesServer(t *testing.T) {
	f := newMatchFixture(t)

	match, err := f.svc.CreateMatch(context.Background(), "user-1", MatchInput{
		Series:   models.SeriesBO3,
		MapPool:  []string{"de_mirage", "de_inferno", "de_nuke"},
		Team1ID:  &f.team1.ID,
		Team2ID:  &f.team2.ID,
		ServerID: &f.server.ID,
	})
	require.NoError(t, err)

	assert.Regexp(t, apiKeyPattern, match.APIKey)
	assert.Equal(t, models.MatchStatusPending, match.Status)
	assert.True(t, f.serverRepo.servers[f.server.ID].InUse)
	require.NotNil(t, match.Team1)
	assert.Equal(t, "Alpha", match.Team1.Name)
}

func TestCreateMatchAPIKeysAreUnique(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		match, err := f.svc.CreateMatch(ctx, "user-1", MatchInput{
			Series:  models.SeriesBO1,
			MapPool: []string{"de_mirage"},
		})
		require.NoError(t, err)
		assert.False(t, seen[match.APIKey])
		seen[match.APIKey] = true
	}
}

func TestCreateMatchWithoutTeamsIsQuickVeto(t *testing.T) {
	f := newMatchFixture(t)

	match, err := f.svc.CreateMatch(context.Background(), "user-1", MatchInput{
		Series:  models.SeriesBO1,
		MapPool: []string{"de_mirage", "de_inferno"},
	})
	require.NoError(t, err)
	assert.Nil(t, match.Team1ID)
	assert.Nil(t, match.Team2ID)
}

func TestGetMatchDeniedForOtherUser(t *testing.T) {
	f := newMatchFixture(t)

	match, err := f.svc.CreateMatch(context.Background(), "user-1", MatchInput{
		Series:  models.SeriesBO1,
		MapPool: []string{"de_mirage"},
	})
	require.NoError(t, err)

	_, err = f.svc.GetMatch(context.Background(), "user-2", match.ID)
	assert.ErrorIs(t, err, ErrMatchAccessDenied)
}

func TestCancelMatchKeepsServerReserved(t *testing.T) {
	f := newMatchFixture(t)

	match, err := f.svc.CreateMatch(context.Background(), "user-1", MatchInput{
		Series:   models.SeriesBO1,
		MapPool:  []string{"de_mirage"},
		ServerID: &f.server.ID,
	})
	require.NoError(t, err)
	require.True(t, f.serverRepo.servers[f.server.ID].InUse)

	canceled, err := f.svc.CancelMatch(context.Background(), "user-1", match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCanceled, canceled.Status)

	// Cancellation is administrative: the reservation is not touched.
	assert.True(t, f.serverRepo.servers[f.server.ID].InUse)
}

func TestCancelMatchLegalFromLive(t *testing.T) {
	f := newMatchFixture(t)

	match, err := f.svc.CreateMatch(context.Background(), "user-1", MatchInput{
		Series:  models.SeriesBO1,
		MapPool: []string{"de_mirage"},
	})
	require.NoError(t, err)
	f.matchRepo.matches[match.ID].Status = models.MatchStatusLive

	canceled, err := f.svc.CancelMatch(context.Background(), "user-1", match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCanceled, canceled.Status)
}

func TestMatchConfigLoadsFullRosters(t *testing.T) {
	f := newMatchFixture(t)

	f.teamRepo.teams[f.team1.ID].Players = []models.TeamPlayer{
		{UserID: "u1", User: &models.User{SteamID: "76561198000000001", Name: "one"}},
		{UserID: "u2", Coach: true, User: &models.User{SteamID: "76561198000000002", Name: "two"}},
	}

	match, err := f.svc.CreateMatch(context.Background(), "user-1", MatchInput{
		Series:  models.SeriesBO3,
		MapPool: []string{"de_mirage", "de_inferno", "de_nuke"},
		Team1ID: &f.team1.ID,
		Team2ID: &f.team2.ID,
	})
	require.NoError(t, err)

	cfg, err := f.svc.MatchConfig(context.Background(), match.ID)
	require.NoError(t, err)

	assert.Equal(t, match.ID, cfg.MatchID)
	assert.Equal(t, 3, cfg.NumMaps)
	assert.Equal(t, match.APIKey, cfg.Cvars["get5_web_api_key"])
	assert.Equal(t, "https://panel.example.com/api/match/"+match.ID+"/webhook", cfg.Cvars["get5_web_api_url"])
	assert.Equal(t, map[string]string{"76561198000000001": "one"}, cfg.Team1.Players)
	assert.Equal(t, map[string]string{"76561198000000002": "two"}, cfg.Team1.Coaches)
}

func TestMatchConfigPlaceholderTeams(t *testing.T) {
	f := newMatchFixture(t)

	match, err := f.svc.CreateMatch(context.Background(), "user-1", MatchInput{
		Series:  models.SeriesBO1,
		MapPool: []string{"de_mirage"},
	})
	require.NoError(t, err)

	cfg, err := f.svc.MatchConfig(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team 1", cfg.Team1.Name)
	assert.Equal(t, "Team 2", cfg.Team2.Name)
	assert.Empty(t, cfg.Team1.Players)
}

func TestMatchRconRequiresServer(t *testing.T) {
	f := newMatchFixture(t)

	match, err := f.svc.CreateMatch(context.Background(), "user-1", MatchInput{
		Series:  models.SeriesBO1,
		MapPool: []string{"de_mirage"},
	})
	require.NoError(t, err)

	_, err = f.svc.MatchRcon(context.Background(), "user-1", match.ID, RconPause, "")
	assert.ErrorIs(t, err, ErrMatchNoServer)

	err = f.svc.LoadMatchOnServer(context.Background(), "user-1", match.ID)
	assert.ErrorIs(t, err, ErrMatchNoServer)
}

func TestMatchRconUnknownAction(t *testing.T) {
	f := newMatchFixture(t)

	match, err := f.svc.CreateMatch(context.Background(), "user-1", MatchInput{
		Series:   models.SeriesBO1,
		MapPool:  []string{"de_mirage"},
		ServerID: &f.server.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.MatchRcon(context.Background(), "user-1", match.ID, "reboot", "")
	assert.ErrorIs(t, err, ErrUnknownRconAction)

	// load_backup without a file name is equally malformed.
	_, err = f.svc.MatchRcon(context.Background(), "user-1", match.ID, RconLoadBackup, "")
	assert.ErrorIs(t, err, ErrUnknownRconAction)
}
