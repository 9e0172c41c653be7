package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID        string    `json:"id" db:"id"`
	SteamID   string    `json:"steam_id" db:"steam_id"`
	Name      string    `json:"name" db:"name"`
	Avatar    *string   `json:"avatar,omitempty" db:"avatar"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
