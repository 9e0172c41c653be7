package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// Map lists are stored as JSON-encoded text columns.

func encodeMapList(maps []string) (string, error) {
	if maps == nil {
		maps = []string{}
	}
	raw, err := json.Marshal(maps)
	if err != nil {
		return "", fmt.Errorf("failed to encode map list: %w", err)
	}
	return string(raw), nil
}

func decodeMapList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var maps []string
	if err := json.Unmarshal([]byte(raw), &maps); err != nil {
		return nil, fmt.Errorf("failed to decode map list: %w", err)
	}
	return maps, nil
}
