package entities

import "time"

type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"user_email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRecord is the local-cache-only fallback record. The invite queues are
// consulted only when the remote store is unavailable.
type UserRecord struct {
	Email                 string                  `json:"email"`
	SharedFolders         map[string]SharedFolder `json:"sharedFolders"`
	IncomingShareRequests []ShareInvite           `json:"incomingShareRequests"`
	OutgoingShareRequests []ShareInvite           `json:"outgoingShareRequests"`
}
