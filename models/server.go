package models

import "time"

type Server struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	IP           string    `json:"ip" db:"ip"`
	Port         int       `json:"port" db:"port"`
	RconPassword string    `json:"-" db:"rcon_password"`
	Public       bool      `json:"public" db:"public"`
	InUse        bool      `json:"in_use" db:"in_use"`
	UserID       string    `json:"user_id" db:"user_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
