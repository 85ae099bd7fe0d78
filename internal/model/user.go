package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserProfile is the outward projection of a user. It is the only user
// shape handlers serialize, so a password hash can never leak by accident.
type UserProfile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (u User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Username: u.Username}
}
