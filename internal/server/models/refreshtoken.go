package models

import "time"

type RefreshToken struct {
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// PasswordReset is a pending recovery request. Only the token hash is stored.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	Expires   time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
