package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTeamService(t *testing.T) (TeamService, *fakeTeamRepo, *fakeUserRepo) {
	t.Helper()
	teamRepo := newFakeTeamRepo()
	userRepo := newFakeUserRepo()
	return NewTeamService(teamRepo, userRepo, nil), teamRepo, userRepo
}

func TestCreateTeamRequiresName(t *testing.T) {
	svc, _, _ := newTeamService(t)
	_, err := svc.CreateTeam(context.Background(), "user-1", TeamInput{Name: "   "})
	assert.ErrorIs(t, err, ErrTeamNameRequired)
}

func TestCreateTeamCreatesRosterUsersOnTheFly(t *testing.T) {
	svc, _, userRepo := newTeamService(t)

	team, err := svc.CreateTeam(context.Background(), "user-1", TeamInput{
		Name: "Alpha",
		Players: []RosterMemberInput{
			{SteamID: "76561198000000001", Name: "one", Captain: true},
			{SteamID: "76561198000000002"},
		},
	})
	require.NoError(t, err)
	require.Len(t, team.Players, 2)

	// Both steamids now resolve to real users.
	one, err := userRepo.GetBySteamID(context.Background(), "76561198000000001")
	require.NoError(t, err)
	assert.Equal(t, "one", one.Name)

	// A member submitted without a name gets a fallback persona.
	two, err := userRepo.GetBySteamID(context.Background(), "76561198000000002")
	require.NoError(t, err)
	assert.Equal(t, "Player_0002", two.Name)
}

func TestCreateTeamRejectsInvalidSteamID(t *testing.T) {
	svc, _, _ := newTeamService(t)

	_, err := svc.CreateTeam(context.Background(), "user-1", TeamInput{
		Name:    "Alpha",
		Players: []RosterMemberInput{{SteamID: "STEAM_1:0:123"}},
	})
	assert.ErrorIs(t, err, ErrInvalidSteamID)
}

func TestUpdateTeamReplacesRoster(t *testing.T) {
	svc, _, _ := newTeamService(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, "user-1", TeamInput{
		Name: "Alpha",
		Players: []RosterMemberInput{
			{SteamID: "76561198000000001", Name: "one"},
			{SteamID: "76561198000000002", Name: "two"},
		},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTeam(ctx, "user-1", team.ID, TeamInput{
		Name: "Alpha",
		Players: []RosterMemberInput{
			{SteamID: "76561198000000003", Name: "three"},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Players, 1)

	// The replaced members keep their user rows, only the roster shrinks.
	user, err := svc.(*teamService).userRepo.GetBySteamID(ctx, "76561198000000001")
	require.NoError(t, err)
	assert.Equal(t, "one", user.Name)
}

func TestUpdateTeamDeniedForNonCreator(t *testing.T) {
	svc, _, _ := newTeamService(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, "user-1", TeamInput{Name: "Alpha"})
	require.NoError(t, err)

	_, err = svc.UpdateTeam(ctx, "user-2", team.ID, TeamInput{Name: "Stolen"})
	assert.ErrorIs(t, err, ErrTeamAccessDenied)
}

func TestGetTeamVisibility(t *testing.T) {
	svc, _, _ := newTeamService(t)
	ctx := context.Background()

	private, err := svc.CreateTeam(ctx, "user-1", TeamInput{Name: "Private"})
	require.NoError(t, err)
	public, err := svc.CreateTeam(ctx, "user-1", TeamInput{Name: "Public", Public: true})
	require.NoError(t, err)

	_, err = svc.GetTeam(ctx, "user-2", private.ID)
	assert.ErrorIs(t, err, ErrTeamAccessDenied)

	got, err := svc.GetTeam(ctx, "user-2", public.ID)
	require.NoError(t, err)
	assert.Equal(t, "Public", got.Name)
}

func TestUploadLogoWithoutStorageConfigured(t *testing.T) {
	svc, _, _ := newTeamService(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, "user-1", TeamInput{Name: "Alpha"})
	require.NoError(t, err)

	_, err = svc.UploadLogo(ctx, "user-1", team.ID, "logo.png", "image/png", nil)
	assert.ErrorIs(t, err, ErrLogoNotConfigured)
}
