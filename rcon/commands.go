package rcon

import "fmt"

// MatchZy console commands. These are literal command strings the
// plugin expects; changing them breaks server control.

func LoadMatchCommand(configURL string) string {
	return fmt.Sprintf("get5_loadmatch_url %q", configURL)
}

func EndMatchCommand() string { return "get5_endmatch" }

func PauseCommand() string { return "sm_pause" }

func UnpauseCommand() string { return "sm_unpause" }

func StatusCommand() string { return "get5_status" }

func ListBackupsCommand() string { return "get5_listbackups" }

func LoadBackupCommand(file string) string {
	return fmt.Sprintf("get5_loadbackup %q", file)
}

func SetAPIKeyCommand(key string) string {
	return fmt.Sprintf("get5_web_api_key %q", key)
}

func CheckAvailableCommand() string { return "get5_web_available" }
