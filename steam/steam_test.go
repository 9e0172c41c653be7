package steam

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidSteamID64(t *testing.T) {
	assert.True(t, ValidSteamID64("76561198000000001"))
	assert.True(t, ValidSteamID64("76561197960287930"))

	assert.False(t, ValidSteamID64(""))
	assert.False(t, ValidSteamID64("7656119800000000"))   // 16 digits
	assert.False(t, ValidSteamID64("765611980000000012")) // 18 digits
	assert.False(t, ValidSteamID64("86561198000000001"))  // wrong prefix
	assert.False(t, ValidSteamID64("7656119800000000a"))
	assert.False(t, ValidSteamID64("STEAM_1:0:12345"))
}

func TestExtractSteamID(t *testing.T) {
	id, err := ExtractSteamID("https://steamcommunity.com/openid/id/76561198000000001")
	require.NoError(t, err)
	assert.Equal(t, "76561198000000001", id)
}

func TestExtractSteamIDMalformed(t *testing.T) {
	_, err := ExtractSteamID("https://steamcommunity.com/openid/id/")
	assert.Error(t, err)

	_, err = ExtractSteamID("nonsense")
	assert.Error(t, err)

	_, err = ExtractSteamID("https://steamcommunity.com/openid/id/not-a-steamid")
	assert.Error(t, err)
}

func TestLoginURL(t *testing.T) {
	raw := LoginURL("https://panel.example.com/api/auth/steam/return", "https://panel.example.com")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "steamcommunity.com", parsed.Host)
	assert.Equal(t, "/openid/login", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "checkid_setup", query.Get("openid.mode"))
	assert.Equal(t, "https://panel.example.com/api/auth/steam/return", query.Get("openid.return_to"))
	assert.Equal(t, "https://panel.example.com", query.Get("openid.realm"))
	assert.Equal(t, "http://specs.openid.net/auth/2.0/identifier_select", query.Get("openid.identity"))
}

func TestFallbackPersona(t *testing.T) {
	assert.Equal(t, "Player_0001", fallbackPersona("76561198000000001"))
	assert.Equal(t, "Player_93", fallbackPersona("93"))
}
