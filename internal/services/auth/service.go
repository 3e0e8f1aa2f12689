package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminDisabled      = errors.New("admin uploads disabled")
)

// Config holds the directory server's admin credentials
type Config struct {
	Username string `yaml:"username" env:"USERNAME"`
	// PasswordHash is a bcrypt hash, see HashPassword
	PasswordHash string `yaml:"password_hash" env:"PASSWORD_HASH"`
}

// DefaultConfig returns default auth configuration. Without a password hash
// every admin request is refused.
func DefaultConfig() Config {
	return Config{
		Username: "admin",
	}
}

// Service verifies admin credentials for document uploads
type Service struct {
	username string
	hash     []byte
	logger   *slog.Logger
}

// New creates a new auth Service
func New(cfg Config, logger *slog.Logger) *Service {
	if cfg.Username == "" {
		cfg.Username = DefaultConfig().Username
	}
	return &Service{
		username: cfg.Username,
		hash:     []byte(cfg.PasswordHash),
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// Enabled reports whether a password hash is configured
func (s *Service) Enabled() bool {
	return len(s.hash) > 0
}

// Verify checks a username and password pair
func (s *Service) Verify(username, password string) error {
	if !s.Enabled() {
		return ErrAdminDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.hash, []byte(password))
	if !userOK || passErr != nil {
		s.logger.Warn("admin authentication failed", slog.String("username", username))
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword hashes password for use as Config.PasswordHash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
