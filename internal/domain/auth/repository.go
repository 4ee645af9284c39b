package auth

import (
	"context"

	"stockpulse/internal/core/apperror"
)

// AccountRepository resolves accounts by username.
type AccountRepository interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
}

// StaticAccounts serves the accounts configured at startup.
type StaticAccounts map[string]Account

// NewStaticAccounts indexes accounts by username. Accounts without a
// password hash are disabled and left out.
func NewStaticAccounts(accounts ...Account) StaticAccounts {
	m := make(StaticAccounts, len(accounts))
	for _, a := range accounts {
		if a.Username == "" || a.PasswordHash == "" {
			continue
		}
		m[a.Username] = a
	}
	return m
}

// GetByUsername implements AccountRepository.
func (s StaticAccounts) GetByUsername(_ context.Context, username string) (*Account, error) {
	a, ok := s[username]
	if !ok {
		return nil, apperror.NewNotFound("account", username)
	}
	return &a, nil
}
