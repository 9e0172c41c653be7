package models

import "time"

// MatchStatus represents match lifecycle states, matching the ENUM in the DB.
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "PENDING"
	MatchStatusLive     MatchStatus = "LIVE"
	MatchStatusFinished MatchStatus = "FINISHED"
	MatchStatusCanceled MatchStatus = "CANCELED"
)

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition. Self-transitions for LIVE and FINISHED are
// allowed because the game server may re-deliver series_start and
// series_end; going backwards (FINISHED->LIVE, LIVE->PENDING) is not.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if next == MatchStatusCanceled {
		return true
	}
	switch s {
	case MatchStatusPending:
		return next == MatchStatusLive
	case MatchStatusLive:
		return next == MatchStatusLive || next == MatchStatusFinished
	case MatchStatusFinished:
		return next == MatchStatusFinished
	default:
		return false
	}
}

type MatchSeries string

const (
	SeriesBO1 MatchSeries = "BO1"
	SeriesBO2 MatchSeries = "BO2"
	SeriesBO3 MatchSeries = "BO3"
	SeriesBO5 MatchSeries = "BO5"
)

// NumMaps maps a series type onto the get5 num_maps value. Unknown
// series values fall back to a single map.
func (s MatchSeries) NumMaps() int {
	switch s {
	case SeriesBO1:
		return 1
	case SeriesBO2:
		return 2
	case SeriesBO3:
		return 3
	case SeriesBO5:
		return 5
	default:
		return 1
	}
}

func (s MatchSeries) Valid() bool {
	switch s {
	case SeriesBO1, SeriesBO2, SeriesBO3, SeriesBO5:
		return true
	}
	return false
}

type Match struct {
	ID         string      `json:"id" db:"id"`
	APIKey     string      `json:"api_key" db:"api_key"`
	Status     MatchStatus `json:"status" db:"status"`
	Series     MatchSeries `json:"series" db:"series"`
	MapPool    []string    `json:"map_pool" db:"-"`
	MapBans    []string    `json:"map_bans" db:"-"`
	MapPicks   []string    `json:"map_picks" db:"-"`
	KnifeRound bool        `json:"knife_round" db:"knife_round"`
	Overtime   bool        `json:"overtime" db:"overtime"`
	Team1Score int         `json:"team1_score" db:"team1_score"`
	Team2Score int         `json:"team2_score" db:"team2_score"`

	Team1ID   *string `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID   *string `json:"team2_id,omitempty" db:"team2_id"`
	ServerID  *string `json:"server_id,omitempty" db:"server_id"`
	WinnerID  *string `json:"winner_id,omitempty" db:"winner_id"`
	CreatorID string  `json:"creator_id" db:"creator_id"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	Team1  *Team   `json:"team1,omitempty" db:"-"`
	Team2  *Team   `json:"team2,omitempty" db:"-"`
	Server *Server `json:"server,omitempty" db:"-"`
}

// ResolveTeamID compares an event team name against the loaded team
// names and returns the matching team id, or nil when neither matches.
func (m *Match) ResolveTeamID(name string) *string {
	if m.Team1 != nil && m.Team1.Name == name {
		return m.Team1ID
	}
	if m.Team2 != nil && m.Team2.Name == name {
		return m.Team2ID
	}
	return nil
}
