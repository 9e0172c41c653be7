// Package steam implements the Steam OpenID 2.0 login handshake and the
// player summary lookup used to fill in user profiles.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	openIDEndpoint = "https://steamcommunity.com/openid/login"
	summariesURL   = "https://api.steampowered.com/ISteamUser/GetPlayerSummaries/v2/"
)

var steamIDPattern = regexp.MustCompile(`^765[0-9]{14}$`)

// ValidSteamID64 reports whether s looks like a SteamID64 (17 digits
// starting with 765).
func ValidSteamID64(s string) bool {
	return steamIDPattern.MatchString(s)
}

type Client struct {
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LoginURL builds the Steam OpenID redirect for the given return URL.
func LoginURL(returnTo, realm string) string {
	params := url.Values{
		"openid.ns":         {"http://specs.openid.net/auth/2.0"},
		"openid.mode":       {"checkid_setup"},
		"openid.return_to":  {returnTo},
		"openid.realm":      {realm},
		"openid.identity":   {"http://specs.openid.net/auth/2.0/identifier_select"},
		"openid.claimed_id": {"http://specs.openid.net/auth/2.0/identifier_select"},
	}
	return openIDEndpoint + "?" + params.Encode()
}

// ExtractSteamID pulls the SteamID64 out of an openid.claimed_id URL
// (https://steamcommunity.com/openid/id/<steamid64>).
func ExtractSteamID(claimedID string) (string, error) {
	idx := strings.LastIndex(claimedID, "/")
	if idx < 0 || idx == len(claimedID)-1 {
		return "", fmt.Errorf("malformed claimed_id %q", claimedID)
	}
	steamID := claimedID[idx+1:]
	if !ValidSteamID64(steamID) {
		return "", fmt.Errorf("claimed_id %q does not contain a valid steam id", claimedID)
	}
	return steamID, nil
}

// VerifyAssertion replays the OpenID response to Steam with the mode
// switched to check_authentication and confirms Steam signed it.
func (c *Client) VerifyAssertion(ctx context.Context, query url.Values) error {
	verify := url.Values{}
	for key, values := range query {
		for _, value := range values {
			verify.Add(key, value)
		}
	}
	verify.Set("openid.mode", "check_authentication")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openIDEndpoint,
		strings.NewReader(verify.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("steam openid verification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read steam openid verification response: %w", err)
	}

	if !strings.Contains(string(body), "is_valid:true") {
		return fmt.Errorf("steam rejected the openid assertion")
	}
	return nil
}

type PlayerSummary struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
	AvatarFull  string `json:"avatarfull"`
}

type summariesResponse struct {
	Response struct {
		Players []PlayerSummary `json:"players"`
	} `json:"response"`
}

// GetPlayerSummary fetches the public profile for a SteamID64. When the
// Web API is unavailable or the player is hidden, a fallback persona is
// returned instead of an error so login still succeeds.
func (c *Client) GetPlayerSummary(ctx context.Context, steamID string) PlayerSummary {
	fallback := PlayerSummary{
		SteamID:     steamID,
		PersonaName: fallbackPersona(steamID),
	}

	if c.apiKey == "" {
		return fallback
	}

	query := url.Values{
		"key":      {c.apiKey},
		"steamids": {steamID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, summariesURL+"?"+query.Encode(), nil)
	if err != nil {
		return fallback
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	var decoded summariesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fallback
	}
	if len(decoded.Response.Players) == 0 {
		return fallback
	}
	return decoded.Response.Players[0]
}

func fallbackPersona(steamID string) string {
	if len(steamID) < 4 {
		return "Player_" + steamID
	}
	return "Player_" + steamID[len(steamID)-4:]
}
