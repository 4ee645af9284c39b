package auth

import (
	"time"
)

// Token scopes.
const (
	// ScopeAPI grants the operator API.
	ScopeAPI = "api"
	// ScopeSync grants the import endpoints only.
	ScopeSync = "sync"
)

// Account is a configured principal allowed to obtain tokens.
type Account struct {
	Username     string
	PasswordHash string
	Scope        string
}

// Credentials for login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
	Scope       string    `json:"scope"`
}

// loginState tracks failed attempts of one username.
type loginState struct {
	failed      int
	lockedUntil time.Time
}

func (l *loginState) isLocked(now time.Time) bool {
	return now.Before(l.lockedUntil)
}

func (l *loginState) recordFailure(now time.Time, maxAttempts int, lockDuration time.Duration) {
	l.failed++
	if l.failed >= maxAttempts {
		l.lockedUntil = now.Add(lockDuration)
		l.failed = 0
	}
}
