package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilloww/cs2panel/get5"
	"github.com/skilloww/cs2panel/models"
)

const testAPIKey = "match_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type webhookFixture struct {
	svc        WebhookService
	matchRepo  *fakeMatchRepo
	serverRepo *fakeServerRepo
	mapStats   *fakeMapStatRepo
	players    *fakePlayerStatRepo
	match      *models.Match
	server     *models.Server
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	teamRepo := newFakeTeamRepo()
	team1 := &models.Team{ID: "team1-id", Name: "Alpha", CreatorID: "user-1"}
	team2 := &models.Team{ID: "team2-id", Name: "Bravo", CreatorID: "user-1"}
	require.NoError(t, teamRepo.Create(context.Background(), team1))
	require.NoError(t, teamRepo.Create(context.Background(), team2))

	serverRepo := newFakeServerRepo()
	server := &models.Server{ID: "server-id", Name: "srv", IP: "10.0.0.1", Port: 27015, RconPassword: "x", UserID: "user-1", InUse: true}
	require.NoError(t, serverRepo.Create(context.Background(), server))

	matchRepo := newFakeMatchRepo(teamRepo)
	match := &models.Match{
		ID:        "11111111-1111-1111-1111-111111111111",
		APIKey:    testAPIKey,
		Status:    models.MatchStatusPending,
		Series:    models.SeriesBO3,
		MapPool:   []string{"de_mirage", "de_inferno", "de_nuke"},
		Team1ID:   &team1.ID,
		Team2ID:   &team2.ID,
		ServerID:  &server.ID,
		CreatorID: "user-1",
	}
	require.NoError(t, matchRepo.Create(context.Background(), match))

	mapStats := newFakeMapStatRepo()
	players := newFakePlayerStatRepo()

	return &webhookFixture{
		svc:        NewWebhookService(matchRepo, serverRepo, mapStats, players, nil, nil),
		matchRepo:  matchRepo,
		serverRepo: serverRepo,
		mapStats:   mapStats,
		players:    players,
		match:      match,
		server:     server,
	}
}

func (f *webhookFixture) event(body string, args ...interface{}) []byte {
	prefix := fmt.Sprintf(`"matchid":%q,"api_key":%q`, f.match.ID, f.match.APIKey)
	return []byte(fmt.Sprintf(`{`+prefix+`,`+body+`}`, args...))
}

func TestProcessEventRejectsWrongAPIKey(t *testing.T) {
	f := newWebhookFixture(t)

	body := fmt.Sprintf(`{"event":"series_start","matchid":%q,"api_key":"match_wrong","team1":{"name":"Alpha","score":0},"team2":{"name":"Bravo","score":0}}`, f.match.ID)
	_, err := f.svc.ProcessEvent(context.Background(), []byte(body))

	require.ErrorIs(t, err, ErrWebhookAuth)
	assert.Equal(t, models.MatchStatusPending, f.matchRepo.matches[f.match.ID].Status)
}

func TestProcessEventRejectsUnknownMatch(t *testing.T) {
	f := newWebhookFixture(t)

	body := fmt.Sprintf(`{"event":"series_start","matchid":"22222222-2222-2222-2222-222222222222","api_key":%q,"team1":{"name":"Alpha","score":0},"team2":{"name":"Bravo","score":0}}`, f.match.APIKey)
	_, err := f.svc.ProcessEvent(context.Background(), []byte(body))

	require.ErrorIs(t, err, ErrWebhookAuth)
}

func TestProcessEventEnumeratesValidationViolations(t *testing.T) {
	f := newWebhookFixture(t)

	// team1 missing entirely, team2 missing its score.
	body := f.event(`"event":"series_start","team2":{"name":"Bravo"}`)
	_, err := f.svc.ProcessEvent(context.Background(), body)

	var validationErr *get5.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Violations, "team1 is required")
	assert.Contains(t, validationErr.Violations, "team2.score is required")
	assert.Len(t, validationErr.Violations, 2)

	// Authentication succeeded, but nothing was mutated.
	assert.Equal(t, models.MatchStatusPending, f.matchRepo.matches[f.match.ID].Status)
}

func TestProcessEventSeriesStartGoesLive(t *testing.T) {
	f := newWebhookFixture(t)

	name, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"series_start","team1":{"name":"Alpha","score":0},"team2":{"name":"Bravo","score":0}`))

	require.NoError(t, err)
	assert.Equal(t, "series_start", name)

	stored := f.matchRepo.matches[f.match.ID]
	assert.Equal(t, models.MatchStatusLive, stored.Status)
	require.NotNil(t, stored.StartedAt)

	// Re-delivery re-stamps startedAt, it does not error.
	first := *stored.StartedAt
	_, err = f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"series_start","team1":{"name":"Alpha","score":0},"team2":{"name":"Bravo","score":0}`))
	require.NoError(t, err)
	assert.False(t, stored.StartedAt.Before(first))
}

func TestProcessEventSeriesStartRejectedWhenFinished(t *testing.T) {
	f := newWebhookFixture(t)
	f.matchRepo.matches[f.match.ID].Status = models.MatchStatusFinished

	_, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"series_start","team1":{"name":"Alpha","score":0},"team2":{"name":"Bravo","score":0}`))

	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestProcessEventMapStartUpsertsMapStat(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"map_start","map_number":0,"map_name":"de_mirage"`))
	require.NoError(t, err)

	stat, err := f.mapStats.GetByMatchAndNumber(context.Background(), f.match.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "de_mirage", stat.MapName)
	require.NotNil(t, stat.StartedAt)

	// Re-fire refreshes the row rather than duplicating it.
	_, err = f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"map_start","map_number":0,"map_name":"de_mirage"`))
	require.NoError(t, err)
	stats, err := f.mapStats.ListByMatch(context.Background(), f.match.ID)
	require.NoError(t, err)
	assert.Len(t, stats, 1)
}

func TestProcessEventRoundEndLastWriteWins(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"map_start","map_number":0,"map_name":"de_mirage"`))
	require.NoError(t, err)

	_, err = f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"round_end","map_number":0,"round_number":10,"team1":{"name":"Alpha","score":7},"team2":{"name":"Bravo","score":3},"winner":{"side":"ct","team":"team1"}`))
	require.NoError(t, err)

	// An older round arriving late still overwrites: no reordering.
	_, err = f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"round_end","map_number":0,"round_number":9,"team1":{"name":"Alpha","score":6},"team2":{"name":"Bravo","score":3},"winner":{"side":"t","team":"team1"}`))
	require.NoError(t, err)

	stat, err := f.mapStats.GetByMatchAndNumber(context.Background(), f.match.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, stat.Team1Score)
	assert.Equal(t, 3, stat.Team2Score)
}

func TestProcessEventRoundEndBeforeMapStartCreatesRow(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"round_end","map_number":1,"round_number":1,"team1":{"name":"Alpha","score":1},"team2":{"name":"Bravo","score":0},"winner":{"side":"ct","team":"team1"}`))
	require.NoError(t, err)

	stat, err := f.mapStats.GetByMatchAndNumber(context.Background(), f.match.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stat.Team1Score)

	// The match itself is untouched: ingestion does not infer liveness.
	assert.Equal(t, models.MatchStatusPending, f.matchRepo.matches[f.match.ID].Status)
}

func TestProcessEventMapEndResolvesWinnerByName(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"map_start","map_number":0,"map_name":"de_mirage"`))
	require.NoError(t, err)

	_, err = f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"map_end","map_number":0,"map_name":"de_mirage","team1":{"name":"Alpha","score":13},"team2":{"name":"Bravo","score":9},"winner":{"side":"ct","team":"Alpha"}`))
	require.NoError(t, err)

	stat, err := f.mapStats.GetByMatchAndNumber(context.Background(), f.match.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, stat.WinnerID)
	assert.Equal(t, "team1-id", *stat.WinnerID)
	assert.Equal(t, 13, stat.Team1Score)
	assert.Equal(t, 9, stat.Team2Score)
	require.NotNil(t, stat.EndedAt)
}

func TestProcessEventMapEndUnknownWinnerDegradesToNull(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"map_end","map_number":0,"map_name":"de_mirage","team1":{"name":"Alpha","score":13},"team2":{"name":"Bravo","score":9},"winner":{"side":"ct","team":"Charlie"}`))
	require.NoError(t, err)

	stat, err := f.mapStats.GetByMatchAndNumber(context.Background(), f.match.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, stat.WinnerID)
}

func TestProcessEventSeriesEndFinishesAndReleasesServer(t *testing.T) {
	f := newWebhookFixture(t)
	f.matchRepo.matches[f.match.ID].Status = models.MatchStatusLive

	_, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"series_end","team1":{"name":"Alpha","series_score":2},"team2":{"name":"Bravo","series_score":1},"winner":{"team":"Alpha"}`))
	require.NoError(t, err)

	stored := f.matchRepo.matches[f.match.ID]
	assert.Equal(t, models.MatchStatusFinished, stored.Status)
	assert.Equal(t, 2, stored.Team1Score)
	assert.Equal(t, 1, stored.Team2Score)
	require.NotNil(t, stored.WinnerID)
	assert.Equal(t, "team1-id", *stored.WinnerID)
	require.NotNil(t, stored.EndedAt)

	assert.False(t, f.serverRepo.servers[f.server.ID].InUse)
}

func TestProcessEventSeriesEndBeforeLiveRejected(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"series_end","team1":{"name":"Alpha","series_score":2},"team2":{"name":"Bravo","series_score":0},"winner":{"team":"Alpha"}`))

	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.True(t, f.serverRepo.servers[f.server.ID].InUse)
}

func TestProcessEventPlayerStatsAppendOnly(t *testing.T) {
	f := newWebhookFixture(t)

	payload := `"event":"player_stats","map_number":0,"player":{"steamid":"76561198000000001","name":"s1mple","team":"Alpha","stats":{"kills":25,"deaths":14,"assists":3,"flash_assists":1,"headshots":12,"damage":2400,"rating":1.35,"adr":96.0,"kast":0.78}}`

	_, err := f.svc.ProcessEvent(context.Background(), f.event(payload))
	require.NoError(t, err)
	_, err = f.svc.ProcessEvent(context.Background(), f.event(payload))
	require.NoError(t, err)

	stats, err := f.players.ListByMatch(context.Background(), f.match.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "team1-id", stats[0].TeamID)
	assert.Equal(t, 25, stats[0].Kills)
	require.NotNil(t, stats[0].MapNumber)
	assert.Equal(t, 0, *stats[0].MapNumber)
}

func TestProcessEventPlayerStatsUnknownTeamRejected(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"player_stats","player":{"steamid":"76561198000000001","name":"s1mple","team":"Charlie","stats":{"kills":1,"deaths":1,"assists":0,"flash_assists":0,"headshots":0,"damage":100,"rating":1.0,"adr":50.0,"kast":0.5}}`))

	require.ErrorIs(t, err, ErrUnknownEventTeam)

	stats, err := f.players.ListByMatch(context.Background(), f.match.ID)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestProcessEventUnknownEventAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	name, err := f.svc.ProcessEvent(context.Background(),
		f.event(`"event":"going_live","extra_field":true`))

	require.NoError(t, err)
	assert.Equal(t, "going_live", name)
	assert.Equal(t, models.MatchStatusPending, f.matchRepo.matches[f.match.ID].Status)
}

func TestProcessEventFullSeriesFlow(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	steps := []string{
		`"event":"series_start","team1":{"name":"Alpha","score":0},"team2":{"name":"Bravo","score":0}`,
		`"event":"map_start","map_number":0,"map_name":"de_mirage"`,
		`"event":"round_end","map_number":0,"round_number":21,"team1":{"name":"Alpha","score":13},"team2":{"name":"Bravo","score":8},"winner":{"side":"ct","team":"team1"}`,
		`"event":"map_end","map_number":0,"map_name":"de_mirage","team1":{"name":"Alpha","score":13},"team2":{"name":"Bravo","score":8},"winner":{"side":"ct","team":"Alpha"}`,
		`"event":"map_start","map_number":1,"map_name":"de_inferno"`,
		`"event":"map_end","map_number":1,"map_name":"de_inferno","team1":{"name":"Alpha","score":13},"team2":{"name":"Bravo","score":5},"winner":{"side":"t","team":"Alpha"}`,
		`"event":"series_end","team1":{"name":"Alpha","series_score":2},"team2":{"name":"Bravo","series_score":0},"winner":{"team":"Alpha"}`,
	}
	for _, step := range steps {
		_, err := f.svc.ProcessEvent(ctx, f.event(step))
		require.NoError(t, err, step)
	}

	stored := f.matchRepo.matches[f.match.ID]
	assert.Equal(t, models.MatchStatusFinished, stored.Status)
	assert.Equal(t, 2, stored.Team1Score)
	assert.Equal(t, 0, stored.Team2Score)
	require.NotNil(t, stored.WinnerID)
	assert.Equal(t, "team1-id", *stored.WinnerID)

	maps, err := f.mapStats.ListByMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Len(t, maps, 2)
	assert.False(t, f.serverRepo.servers[f.server.ID].InUse)
}
