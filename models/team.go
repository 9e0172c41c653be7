package models

import "time"

type Team struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Tag       *string   `json:"tag,omitempty" db:"tag"`
	Flag      *string   `json:"flag,omitempty" db:"flag"`
	Public    bool      `json:"public" db:"public"`
	CreatorID string    `json:"creator_id" db:"creator_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Players []TeamPlayer `json:"players,omitempty" db:"-"`
}

// TeamPlayer is a roster membership. A member is either a player or a
// coach, never both; the Coach flag decides which get5 mapping the
// member lands in.
type TeamPlayer struct {
	ID      string `json:"id" db:"id"`
	TeamID  string `json:"team_id" db:"team_id"`
	UserID  string `json:"user_id" db:"user_id"`
	Captain bool   `json:"captain" db:"captain"`
	Coach   bool   `json:"coach" db:"coach"`

	User *User `json:"user,omitempty" db:"-"`
}
