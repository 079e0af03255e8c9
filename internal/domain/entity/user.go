package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a storefront account. Credentials live in Authentication records.
type User struct {
	ID                  uuid.UUID
	Email               string
	Name                string
	Phone               string
	IsVerified          bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsLocked reports whether a lockout window is still open at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// RegisterFailedLogin counts a bad password. When the count reaches threshold the
// account is locked until now+lockout and the counter starts over.
// It reports whether this attempt locked the account.
func (u *User) RegisterFailedLogin(now time.Time, threshold int, lockout time.Duration) bool {
	u.FailedLoginAttempts++
	if threshold <= 0 || u.FailedLoginAttempts < threshold {
		return false
	}

	until := now.Add(lockout)
	u.LockedUntil = &until
	u.FailedLoginAttempts = 0

	return true
}

// RegisterSuccessfulLogin clears lockout state and stamps the login time.
func (u *User) RegisterSuccessfulLogin(now time.Time) {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
}
