package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockpulse/internal/core/apperror"
	"stockpulse/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// Service exchanges credentials for access tokens.
type Service struct {
	accounts   AccountRepository
	jwtService *JWTService
	config     ServiceConfig
	now        func() time.Time

	mu     sync.Mutex
	logins map[string]*loginState
}

// NewService creates a new auth service.
func NewService(accounts AccountRepository, jwtService *JWTService, config ServiceConfig) *Service {
	return &Service{
		accounts:   accounts,
		jwtService: jwtService,
		config:     config,
		now:        time.Now,
		logins:     make(map[string]*loginState),
	}
}

// HashPassword returns the bcrypt hash stored in configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login authenticates an account and issues a token with the account scope.
// Repeated failures lock a known account for the configured duration.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return nil, apperror.NewValidation("username and password are required")
	}

	if s.locked(username) {
		return nil, apperror.NewForbidden("account is temporarily locked")
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return nil, fmt.Errorf("get account: %w", err)
		}
		// Failures are tracked for configured accounts only.
		logger.Warn(ctx, "failed login", "username", username)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)); err != nil {
		s.recordFailure(username)
		logger.Warn(ctx, "failed login", "username", username)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	s.resetFailures(username)

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(account.Username, account.Scope)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	logger.Info(ctx, "token issued", "username", account.Username, "scope", account.Scope)

	return &Token{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
		Scope:       account.Scope,
	}, nil
}

func (s *Service) locked(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.logins[username]
	return ok && state.isLocked(s.now())
}

func (s *Service) recordFailure(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.logins[username]
	if !ok {
		state = &loginState{}
		s.logins[username] = state
	}
	state.recordFailure(s.now(), s.config.MaxLoginAttempts, s.config.LockDuration)
}

func (s *Service) resetFailures(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logins, username)
}
