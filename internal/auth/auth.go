package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/jgoulah/vehicalc/internal/database"
	"github.com/jgoulah/vehicalc/internal/logging"
)

var (
	// ErrUserExists is returned when registering a taken username
	ErrUserExists = errors.New("auth: username already registered")
	// ErrInvalidUsername is returned for usernames outside 4-20 letters and digits
	ErrInvalidUsername = errors.New("auth: username must be 4-20 letters and numbers")
	// ErrInvalidPassword is returned for passwords shorter than 8 characters
	ErrInvalidPassword = errors.New("auth: password must be at least 8 characters long")
)

const (
	minUsernameLen = 4
	maxUsernameLen = 20
	minPasswordLen = 8
)

// UserStore defines the storage contract used by the service
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) error
	GetPasswordHash(ctx context.Context, username string) (string, error)
}

// Service registers and authenticates local users
type Service struct {
	store  UserStore
	hasher Hasher
	log    zerolog.Logger
}

// NewService builds a Service
func NewService(store UserStore, hasher Hasher, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		log:    logging.Component(log, "auth"),
	}
}

// Register creates a user after validating the username and password
func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.store.CreateUser(ctx, username, hash); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return ErrUserExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	s.log.Info().Str("username", username).Msg("user registered")
	return nil
}

// Authenticate reports whether the password matches the stored hash. An
// unknown user is not an error
func (s *Service) Authenticate(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}

	hash, err := s.store.GetPasswordHash(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			s.log.Debug().Str("username", username).Msg("unknown user")
			return false, nil
		}
		return false, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.hasher.Compare(hash, password); err != nil {
		s.log.Debug().Str("username", username).Msg("password mismatch")
		return false, nil
	}
	return true, nil
}

// ValidateUsername requires 4 to 20 letters and digits
func ValidateUsername(username string) error {
	n := len([]rune(username))
	if n < minUsernameLen || n > maxUsernameLen {
		return ErrInvalidUsername
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrInvalidUsername
		}
	}
	return nil
}

// ValidatePassword requires at least 8 characters
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLen {
		return ErrInvalidPassword
	}
	return nil
}
