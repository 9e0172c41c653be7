// Package get5 implements the wire format consumed and produced by the
// MatchZy/Get5 CS2 server plugin: the match configuration document the
// plugin loads, and the webhook events it reports back.
package get5

import (
	"fmt"

	"github.com/skilloww/cs2panel/models"
)

// MatchConfig is the configuration document the plugin fetches to run a
// match. Field names and nesting must stay byte-compatible with what
// get5_loadmatch_url expects.
type MatchConfig struct {
	MatchID        string            `json:"matchid"`
	MatchTitle     string            `json:"match_title"`
	ClinchSeries   bool              `json:"clinch_series"`
	NumMaps        int               `json:"num_maps"`
	PlayersPerTeam int               `json:"players_per_team"`
	CoachesPerTeam int               `json:"coaches_per_team"`
	SkipVeto       bool              `json:"skip_veto"`
	SideType       string            `json:"side_type"`
	Maplist        []string          `json:"maplist"`
	MapSides       []string          `json:"map_sides,omitempty"`
	Team1          TeamConfig        `json:"team1"`
	Team2          TeamConfig        `json:"team2"`
	Cvars          map[string]string `json:"cvars"`
	Spectators     []Spectator       `json:"spectators,omitempty"`
}

type TeamConfig struct {
	Name    string            `json:"name"`
	Tag     string            `json:"tag,omitempty"`
	Flag    string            `json:"flag,omitempty"`
	Logo    string            `json:"logo,omitempty"`
	Players map[string]string `json:"players"`
	Coaches map[string]string `json:"coaches,omitempty"`
}

type Spectator struct {
	Name    string `json:"name"`
	SteamID string `json:"steamid"`
}

// GenerateMatchConfig builds the plugin configuration for a match. Teams
// may be nil (quick-veto matches); they are replaced with empty
// placeholder teams so the veto can run without rosters. The function is
// pure: no clock reads, no side effects, same input same output.
func GenerateMatchConfig(match *models.Match, webhookURL string) MatchConfig {
	sideType := "standard"
	if match.KnifeRound {
		sideType = "knife"
	}

	overtime := "0"
	if match.Overtime {
		overtime = "1"
	}

	return MatchConfig{
		MatchID:        match.ID,
		MatchTitle:     fmt.Sprintf("Match %s", match.ID),
		ClinchSeries:   true,
		NumMaps:        match.Series.NumMaps(),
		PlayersPerTeam: 5,
		CoachesPerTeam: 1,
		SkipVeto:       false,
		SideType:       sideType,
		Maplist:        match.MapPool,
		Team1:          buildTeamConfig(match.Team1, "Team 1"),
		Team2:          buildTeamConfig(match.Team2, "Team 2"),
		Cvars: map[string]string{
			"get5_web_api_url":       webhookURL,
			"get5_web_api_key":       match.APIKey,
			"mp_overtime_enable":     overtime,
			"mp_overtime_maxrounds":  "6",
			"mp_overtime_startmoney": "10000",
			"get5_demo_name_format":  "{MATCHID}_map{MAPNUMBER}_{MAPNAME}",
			"get5_print_damage":      "1",
		},
	}
}

func buildTeamConfig(team *models.Team, placeholder string) TeamConfig {
	if team == nil {
		return TeamConfig{
			Name:    placeholder,
			Players: map[string]string{},
		}
	}

	players := make(map[string]string)
	coaches := make(map[string]string)
	for _, member := range team.Players {
		if member.User == nil {
			continue
		}
		if member.Coach {
			coaches[member.User.SteamID] = member.User.Name
		} else {
			players[member.User.SteamID] = member.User.Name
		}
	}
	if len(coaches) == 0 {
		coaches = nil
	}

	cfg := TeamConfig{
		Name:    team.Name,
		Players: players,
		Coaches: coaches,
	}
	if team.Tag != nil {
		cfg.Tag = *team.Tag
	}
	if team.Flag != nil {
		cfg.Flag = *team.Flag
	}
	if team.LogoURL != nil {
		cfg.Logo = *team.LogoURL
	}
	return cfg
}

// ValidateMatchConfig pre-flights a generated configuration and reports
// human-readable violations. It is advisory: generation never refuses to
// emit, callers decide what to do with the report.
func ValidateMatchConfig(cfg MatchConfig) (bool, []string) {
	var errs []string

	if cfg.MatchID == "" {
		errs = append(errs, "Match ID is required")
	}
	if len(cfg.Team1.Players) == 0 {
		errs = append(errs, "Team 1 must have at least one player")
	}
	if len(cfg.Team2.Players) == 0 {
		errs = append(errs, "Team 2 must have at least one player")
	}
	if len(cfg.Maplist) == 0 {
		errs = append(errs, "Map pool is required")
	}
	if cfg.NumMaps < 1 || cfg.NumMaps > 5 {
		errs = append(errs, "Number of maps must be between 1 and 5")
	}

	return len(errs) == 0, errs
}
