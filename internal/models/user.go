package models

import "time"

type User struct {
	ID           string // uuid
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
