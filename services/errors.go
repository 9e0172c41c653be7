package services

import "errors"

var (
	// Auth
	ErrInvalidSteamAssertion = errors.New("steam openid assertion is invalid")
	ErrInvalidSteamID        = errors.New("steamid must be a 17-digit steamid64")

	// Teams
	ErrTeamNameRequired  = errors.New("team name is required")
	ErrTeamAccessDenied  = errors.New("team does not belong to the current user")
	ErrLogoNotConfigured = errors.New("logo storage is not configured")

	// Servers
	ErrServerFieldsRequired = errors.New("server name, ip, port and rcon password are required")
	ErrServerAccessDenied   = errors.New("server does not belong to the current user")

	// Matches
	ErrInvalidSeries     = errors.New("series must be one of BO1, BO2, BO3, BO5")
	ErrEmptyMapPool      = errors.New("map pool must contain at least one map")
	ErrSameTeamTwice     = errors.New("team1 and team2 must be different teams")
	ErrMatchAccessDenied = errors.New("match does not belong to the current user")
	ErrMatchNoServer     = errors.New("match has no server assigned")
	ErrInvalidTransition = errors.New("match status transition is not allowed")
	ErrUnknownRconAction = errors.New("unknown rcon action")

	// Webhooks
	ErrWebhookAuth      = errors.New("matchid and api key do not identify a match")
	ErrUnknownEventTeam = errors.New("event team name does not match either roster")
)
