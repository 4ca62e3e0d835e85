package models

import "time"

// Account is a registered user. PasswordHash is a bcrypt hash, never the plaintext.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public projection of an Account
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile returns the account without its credentials
func (a Account) Profile() Profile {
	return Profile{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

// Session is the persisted active identity of the running client
type Session struct {
	Profile
	StartedAt time.Time `json:"started_at"`
}
