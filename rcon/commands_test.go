package rcon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The plugin matches these commands literally; any drift breaks the
// panel-to-server contract.
func TestCommandStrings(t *testing.T) {
	assert.Equal(t, `get5_loadmatch_url "https://panel/api/match/m1/config"`,
		LoadMatchCommand("https://panel/api/match/m1/config"))
	assert.Equal(t, "get5_endmatch", EndMatchCommand())
	assert.Equal(t, "sm_pause", PauseCommand())
	assert.Equal(t, "sm_unpause", UnpauseCommand())
	assert.Equal(t, "get5_status", StatusCommand())
	assert.Equal(t, "get5_listbackups", ListBackupsCommand())
	assert.Equal(t, `get5_loadbackup "backup_round12.cfg"`,
		LoadBackupCommand("backup_round12.cfg"))
	assert.Equal(t, `get5_web_api_key "match_abc"`, SetAPIKeyCommand("match_abc"))
	assert.Equal(t, "get5_web_available", CheckAvailableCommand())
}
