package model

import "time"

// User is an admin account on the relay.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// MinPasswordLength is the shortest accepted admin password.
const MinPasswordLength = 8

// ValidatePassword checks password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return Invalid("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Active reports whether the account can log in.
func (u *User) Active() bool {
	return u != nil && u.DeletedAt == nil
}
