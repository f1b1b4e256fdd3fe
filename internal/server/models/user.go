package models

import "time"

// User is a CMS account. PasswordHash is argon2id(password, Salt).
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Salt         []byte
	Metadata     map[string]any
	CreatedAt    time.Time
}
