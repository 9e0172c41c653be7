package get5

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Webhook event names reported by the plugin.
const (
	EventSeriesStart = "series_start"
	EventMapStart    = "map_start"
	EventRoundEnd    = "round_end"
	EventMapEnd      = "map_end"
	EventSeriesEnd   = "series_end"
	EventPlayerStats = "player_stats"
)

// ValidationError is returned when an event payload does not match the
// shape its event name requires. Violations lists every offending field;
// unknown extra fields are never a violation.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid event format: " + strings.Join(e.Violations, "; ")
}

// Event is the closed set of webhook payloads. Concrete types embed
// BaseEvent; dispatch is a type switch over this interface.
type Event interface {
	EventName() string
}

// BaseEvent carries the fields shared by every webhook call. The api_key
// together with matchid is the bearer credential for the whole channel.
type BaseEvent struct {
	Event   string `json:"event"`
	MatchID string `json:"matchid"`
	APIKey  string `json:"api_key"`
}

func (e BaseEvent) EventName() string { return e.Event }

type TeamScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type Winner struct {
	Side string `json:"side"`
	Team string `json:"team"`
}

type SeriesStartEvent struct {
	BaseEvent
	Team1 TeamScore `json:"team1"`
	Team2 TeamScore `json:"team2"`
}

type MapStartEvent struct {
	BaseEvent
	MapNumber int    `json:"map_number"`
	MapName   string `json:"map_name"`
}

type RoundEndEvent struct {
	BaseEvent
	MapNumber   int       `json:"map_number"`
	RoundNumber int       `json:"round_number"`
	Team1       TeamScore `json:"team1"`
	Team2       TeamScore `json:"team2"`
	Winner      Winner    `json:"winner"`
}

type MapEndEvent struct {
	BaseEvent
	MapNumber int       `json:"map_number"`
	MapName   string    `json:"map_name"`
	Team1     TeamScore `json:"team1"`
	Team2     TeamScore `json:"team2"`
	Winner    Winner    `json:"winner"`
}

type SeriesScore struct {
	Name        string `json:"name"`
	SeriesScore int    `json:"series_score"`
}

type SeriesWinner struct {
	Team string `json:"team"`
}

type SeriesEndEvent struct {
	BaseEvent
	Team1  SeriesScore  `json:"team1"`
	Team2  SeriesScore  `json:"team2"`
	Winner SeriesWinner `json:"winner"`
}

type PlayerStatLine struct {
	Kills        int     `json:"kills"`
	Deaths       int     `json:"deaths"`
	Assists      int     `json:"assists"`
	FlashAssists int     `json:"flash_assists"`
	Headshots    int     `json:"headshots"`
	Damage       int     `json:"damage"`
	Rating       float64 `json:"rating"`
	ADR          float64 `json:"adr"`
	KAST         float64 `json:"kast"`
}

type EventPlayer struct {
	SteamID string         `json:"steamid"`
	Name    string         `json:"name"`
	Team    string         `json:"team"`
	Stats   PlayerStatLine `json:"stats"`
}

type PlayerStatsEvent struct {
	BaseEvent
	MapNumber *int        `json:"map_number,omitempty"`
	Player    EventPlayer `json:"player"`
}

// UnknownEvent is any event name the panel does not process. It is
// acknowledged and ignored, never rejected.
type UnknownEvent struct {
	BaseEvent
}

// ParseBase decodes only the shared fields, for the authentication
// lookup that must happen before full validation.
func ParseBase(data []byte) (BaseEvent, error) {
	var base BaseEvent
	if err := json.Unmarshal(data, &base); err != nil {
		return BaseEvent{}, &ValidationError{Violations: []string{"body is not valid JSON"}}
	}
	if base.Event == "" {
		return BaseEvent{}, &ValidationError{Violations: []string{"event is required"}}
	}
	if base.MatchID == "" {
		return BaseEvent{}, &ValidationError{Violations: []string{"matchid is required"}}
	}
	return base, nil
}

// ParseEvent decodes and validates a full webhook payload. The returned
// error, if any, is always a *ValidationError listing every violated
// field for the event's required shape.
func ParseEvent(data []byte) (Event, error) {
	base, err := ParseBase(data)
	if err != nil {
		return nil, err
	}

	switch base.Event {
	case EventSeriesStart:
		var raw rawSeriesStart
		if err := decodeRaw(data, &raw); err != nil {
			return nil, err
		}
		var v violations
		team1 := raw.Team1.require(&v, "team1")
		team2 := raw.Team2.require(&v, "team2")
		if err := v.err(); err != nil {
			return nil, err
		}
		return &SeriesStartEvent{BaseEvent: base, Team1: team1, Team2: team2}, nil

	case EventMapStart:
		var raw rawMapStart
		if err := decodeRaw(data, &raw); err != nil {
			return nil, err
		}
		var v violations
		mapNumber := requireInt(&v, raw.MapNumber, "map_number")
		mapName := requireString(&v, raw.MapName, "map_name")
		if err := v.err(); err != nil {
			return nil, err
		}
		return &MapStartEvent{BaseEvent: base, MapNumber: mapNumber, MapName: mapName}, nil

	case EventRoundEnd:
		var raw rawRoundEnd
		if err := decodeRaw(data, &raw); err != nil {
			return nil, err
		}
		var v violations
		mapNumber := requireInt(&v, raw.MapNumber, "map_number")
		roundNumber := requireInt(&v, raw.RoundNumber, "round_number")
		team1 := raw.Team1.require(&v, "team1")
		team2 := raw.Team2.require(&v, "team2")
		winner := raw.Winner.require(&v, "winner")
		if err := v.err(); err != nil {
			return nil, err
		}
		return &RoundEndEvent{
			BaseEvent:   base,
			MapNumber:   mapNumber,
			RoundNumber: roundNumber,
			Team1:       team1,
			Team2:       team2,
			Winner:      winner,
		}, nil

	case EventMapEnd:
		var raw rawMapEnd
		if err := decodeRaw(data, &raw); err != nil {
			return nil, err
		}
		var v violations
		mapNumber := requireInt(&v, raw.MapNumber, "map_number")
		mapName := requireString(&v, raw.MapName, "map_name")
		team1 := raw.Team1.require(&v, "team1")
		team2 := raw.Team2.require(&v, "team2")
		winner := raw.Winner.require(&v, "winner")
		if err := v.err(); err != nil {
			return nil, err
		}
		return &MapEndEvent{
			BaseEvent: base,
			MapNumber: mapNumber,
			MapName:   mapName,
			Team1:     team1,
			Team2:     team2,
			Winner:    winner,
		}, nil

	case EventSeriesEnd:
		var raw rawSeriesEnd
		if err := decodeRaw(data, &raw); err != nil {
			return nil, err
		}
		var v violations
		team1 := raw.Team1.require(&v, "team1")
		team2 := raw.Team2.require(&v, "team2")
		var winner SeriesWinner
		if raw.Winner == nil || raw.Winner.Team == nil {
			v.add("winner.team is required")
		} else {
			winner.Team = *raw.Winner.Team
		}
		if err := v.err(); err != nil {
			return nil, err
		}
		return &SeriesEndEvent{BaseEvent: base, Team1: team1, Team2: team2, Winner: winner}, nil

	case EventPlayerStats:
		var raw rawPlayerStats
		if err := decodeRaw(data, &raw); err != nil {
			return nil, err
		}
		var v violations
		player := raw.Player.require(&v, "player")
		if err := v.err(); err != nil {
			return nil, err
		}
		return &PlayerStatsEvent{BaseEvent: base, MapNumber: raw.MapNumber, Player: player}, nil

	default:
		return &UnknownEvent{BaseEvent: base}, nil
	}
}

// --- raw decoding helpers ---
//
// Raw structs use pointer fields so that "absent" is distinguishable
// from zero values; validation then enumerates everything that is
// missing instead of failing on the first hole.

type violations struct {
	list []string
}

func (v *violations) add(msg string) { v.list = append(v.list, msg) }

func (v *violations) err() error {
	if len(v.list) == 0 {
		return nil
	}
	return &ValidationError{Violations: v.list}
}

func decodeRaw(data []byte, dst interface{}) error {
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &ValidationError{Violations: []string{
				fmt.Sprintf("%s has incorrect type (expected %s)", typeErr.Field, typeErr.Type),
			}}
		}
		return &ValidationError{Violations: []string{"body is not valid JSON"}}
	}
	return nil
}

func requireInt(v *violations, p *int, field string) int {
	if p == nil {
		v.add(field + " is required")
		return 0
	}
	return *p
}

func requireString(v *violations, p *string, field string) string {
	if p == nil || *p == "" {
		v.add(field + " is required")
		return ""
	}
	return *p
}

type rawTeamScore struct {
	Name  *string `json:"name"`
	Score *int    `json:"score"`
}

func (r *rawTeamScore) require(v *violations, field string) TeamScore {
	if r == nil {
		v.add(field + " is required")
		return TeamScore{}
	}
	var ts TeamScore
	if r.Name == nil {
		v.add(field + ".name is required")
	} else {
		ts.Name = *r.Name
	}
	if r.Score == nil {
		v.add(field + ".score is required")
	} else {
		ts.Score = *r.Score
	}
	return ts
}

type rawWinner struct {
	Side *string `json:"side"`
	Team *string `json:"team"`
}

func (r *rawWinner) require(v *violations, field string) Winner {
	if r == nil {
		v.add(field + " is required")
		return Winner{}
	}
	var w Winner
	if r.Side == nil {
		v.add(field + ".side is required")
	} else {
		w.Side = *r.Side
	}
	if r.Team == nil {
		v.add(field + ".team is required")
	} else {
		w.Team = *r.Team
	}
	return w
}

type rawSeriesScore struct {
	Name        *string `json:"name"`
	SeriesScore *int    `json:"series_score"`
}

func (r *rawSeriesScore) require(v *violations, field string) SeriesScore {
	if r == nil {
		v.add(field + " is required")
		return SeriesScore{}
	}
	var ss SeriesScore
	if r.Name == nil {
		v.add(field + ".name is required")
	} else {
		ss.Name = *r.Name
	}
	if r.SeriesScore == nil {
		v.add(field + ".series_score is required")
	} else {
		ss.SeriesScore = *r.SeriesScore
	}
	return ss
}

type rawSeriesStart struct {
	Team1 *rawTeamScore `json:"team1"`
	Team2 *rawTeamScore `json:"team2"`
}

type rawMapStart struct {
	MapNumber *int    `json:"map_number"`
	MapName   *string `json:"map_name"`
}

type rawRoundEnd struct {
	MapNumber   *int          `json:"map_number"`
	RoundNumber *int          `json:"round_number"`
	Team1       *rawTeamScore `json:"team1"`
	Team2       *rawTeamScore `json:"team2"`
	Winner      *rawWinner    `json:"winner"`
}

type rawMapEnd struct {
	MapNumber *int          `json:"map_number"`
	MapName   *string       `json:"map_name"`
	Team1     *rawTeamScore `json:"team1"`
	Team2     *rawTeamScore `json:"team2"`
	Winner    *rawWinner    `json:"winner"`
}

type rawSeriesEnd struct {
	Team1  *rawSeriesScore `json:"team1"`
	Team2  *rawSeriesScore `json:"team2"`
	Winner *struct {
		Team *string `json:"team"`
	} `json:"winner"`
}

type rawPlayerStats struct {
	MapNumber *int       `json:"map_number"`
	Player    *rawPlayer `json:"player"`
}

type rawPlayer struct {
	SteamID *string `json:"steamid"`
	Name    *string `json:"name"`
	Team    *string `json:"team"`
	Stats   *struct {
		Kills        *int     `json:"kills"`
		Deaths       *int     `json:"deaths"`
		Assists      *int     `json:"assists"`
		FlashAssists *int     `json:"flash_assists"`
		Headshots    *int     `json:"headshots"`
		Damage       *int     `json:"damage"`
		Rating       *float64 `json:"rating"`
		ADR          *float64 `json:"adr"`
		KAST         *float64 `json:"kast"`
	} `json:"stats"`
}

func (r *rawPlayer) require(v *violations, field string) EventPlayer {
	if r == nil {
		v.add(field + " is required")
		return EventPlayer{}
	}
	var p EventPlayer
	if r.SteamID == nil || *r.SteamID == "" {
		v.add(field + ".steamid is required")
	} else {
		p.SteamID = *r.SteamID
	}
	if r.Name == nil {
		v.add(field + ".name is required")
	} else {
		p.Name = *r.Name
	}
	if r.Team == nil {
		v.add(field + ".team is required")
	} else {
		p.Team = *r.Team
	}
	if r.Stats == nil {
		v.add(field + ".stats is required")
		return p
	}
	s := r.Stats
	p.Stats.Kills = requireInt(v, s.Kills, field+".stats.kills")
	p.Stats.Deaths = requireInt(v, s.Deaths, field+".stats.deaths")
	p.Stats.Assists = requireInt(v, s.Assists, field+".stats.assists")
	p.Stats.FlashAssists = requireInt(v, s.FlashAssists, field+".stats.flash_assists")
	p.Stats.Headshots = requireInt(v, s.Headshots, field+".stats.headshots")
	p.Stats.Damage = requireInt(v, s.Damage, field+".stats.damage")
	p.Stats.Rating = requireFloat(v, s.Rating, field+".stats.rating")
	p.Stats.ADR = requireFloat(v, s.ADR, field+".stats.adr")
	p.Stats.KAST = requireFloat(v, s.KAST, field+".stats.kast")
	return p
}

func requireFloat(v *violations, p *float64, field string) float64 {
	if p == nil {
		v.add(field + " is required")
		return 0
	}
	return *p
}
