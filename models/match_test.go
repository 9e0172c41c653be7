package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchStatusTransitions(t *testing.T) {
	tests := []struct {
		from    MatchStatus
		to      MatchStatus
		allowed bool
	}{
		{MatchStatusPending, MatchStatusLive, true},
		{MatchStatusPending, MatchStatusFinished, false},
		{MatchStatusPending, MatchStatusCanceled, true},
		{MatchStatusLive, MatchStatusLive, true},
		{MatchStatusLive, MatchStatusFinished, true},
		{MatchStatusLive, MatchStatusPending, false},
		{MatchStatusLive, MatchStatusCanceled, true},
		{MatchStatusFinished, MatchStatusFinished, true},
		{MatchStatusFinished, MatchStatusLive, false},
		{MatchStatusFinished, MatchStatusPending, false},
		{MatchStatusFinished, MatchStatusCanceled, true},
		{MatchStatusCanceled, MatchStatusLive, false},
		{MatchStatusCanceled, MatchStatusCanceled, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestMatchSeriesNumMaps(t *testing.T) {
	assert.Equal(t, 1, SeriesBO1.NumMaps())
	assert.Equal(t, 2, SeriesBO2.NumMaps())
	assert.Equal(t, 3, SeriesBO3.NumMaps())
	assert.Equal(t, 5, SeriesBO5.NumMaps())
	assert.Equal(t, 1, MatchSeries("BO9").NumMaps())
}

func TestMatchSeriesValid(t *testing.T) {
	assert.True(t, SeriesBO3.Valid())
	assert.False(t, MatchSeries("").Valid())
	assert.False(t, MatchSeries("bo3").Valid())
}

func TestResolveTeamID(t *testing.T) {
	team1ID, team2ID := "t1", "t2"
	match := &Match{
		Team1ID: &team1ID,
		Team2ID: &team2ID,
		Team1:   &Team{ID: team1ID, Name: "Alpha"},
		Team2:   &Team{ID: team2ID, Name: "Bravo"},
	}

	got := match.ResolveTeamID("Alpha")
	if assert.NotNil(t, got) {
		assert.Equal(t, team1ID, *got)
	}
	got = match.ResolveTeamID("Bravo")
	if assert.NotNil(t, got) {
		assert.Equal(t, team2ID, *got)
	}

	// Exact match only: no case folding, no partials.
	assert.Nil(t, match.ResolveTeamID("alpha"))
	assert.Nil(t, match.ResolveTeamID("Alph"))
	assert.Nil(t, match.ResolveTeamID(""))
}

func TestResolveTeamIDWithoutTeams(t *testing.T) {
	match := &Match{}
	assert.Nil(t, match.ResolveTeamID("Alpha"))
}
