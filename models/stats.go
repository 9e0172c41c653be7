package models

import "time"

// MapStat tracks one played map within a match. Rows are keyed by the
// unique (match_id, map_number) pair and upserted as the game server
// reports map_start / round_end / map_end.
type MapStat struct {
	ID         string     `json:"id" db:"id"`
	MatchID    string     `json:"match_id" db:"match_id"`
	MapNumber  int        `json:"map_number" db:"map_number"`
	MapName    string     `json:"map_name" db:"map_name"`
	Team1Score int        `json:"team1_score" db:"team1_score"`
	Team2Score int        `json:"team2_score" db:"team2_score"`
	WinnerID   *string    `json:"winner_id,omitempty" db:"winner_id"`
	StartedAt  *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty" db:"ended_at"`
}

// PlayerStat is an append-only statistics row per (match, map, player)
// as delivered by player_stats events. A nil MapNumber means the row is
// a series aggregate.
type PlayerStat struct {
	ID           string    `json:"id" db:"id"`
	MatchID      string    `json:"match_id" db:"match_id"`
	MapNumber    *int      `json:"map_number,omitempty" db:"map_number"`
	SteamID      string    `json:"steam_id" db:"steam_id"`
	Name         string    `json:"name" db:"name"`
	TeamID       string    `json:"team_id" db:"team_id"`
	Kills        int       `json:"kills" db:"kills"`
	Deaths       int       `json:"deaths" db:"deaths"`
	Assists      int       `json:"assists" db:"assists"`
	FlashAssists int       `json:"flash_assists" db:"flash_assists"`
	Headshots    int       `json:"headshots" db:"headshots"`
	Damage       int       `json:"damage" db:"damage"`
	Rating       float64   `json:"rating" db:"rating"`
	ADR          float64   `json:"adr" db:"adr"`
	KAST         float64   `json:"kast" db:"kast"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
