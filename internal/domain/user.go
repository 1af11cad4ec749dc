package domain

import "time"

// User represents an account that owns trades.
//
// Only the bcrypt hash of the password is ever stored. The IsAdmin flag
// grants access to the system-wide trade listing and nothing else.
type User struct {
	ID             int64
	Username       string
	HashedPassword string
	IsAdmin        bool
	CreatedAt      time.Time
}
