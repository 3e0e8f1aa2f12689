package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cwmc/portable-launcher/internal/model"
)

// ClaimsSource provides the identity claims produced by the external login flow
type ClaimsSource interface {
	Claims(ctx context.Context) (model.Claims, error)
}

// idTokenClaims is the subset of an OpenID Connect ID token we consume
type idTokenClaims struct {
	jwt.RegisteredClaims
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	OID               string `json:"oid"`
}

// TokenSource reads claims from an ID token, either given directly or stored in a file.
// The signature is not checked here; the login flow that issued the token already did.
type TokenSource struct {
	Token     string
	TokenFile string
}

// Ensure TokenSource implements ClaimsSource
var _ ClaimsSource = TokenSource{}

// Claims decodes the ID token into claims
func (s TokenSource) Claims(_ context.Context) (model.Claims, error) {
	token, err := s.load()
	if err != nil {
		return model.Claims{}, err
	}

	var parsed idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &parsed); err != nil {
		return model.Claims{}, fmt.Errorf("%w: decode id token: %v", model.ErrIdentityClaimsIncomplete, err)
	}

	email := parsed.PreferredUsername
	if email == "" {
		email = parsed.Email
	}
	stableID := parsed.OID
	if stableID == "" {
		stableID = parsed.Subject
	}

	return model.Claims{
		DisplayName: parsed.Name,
		Email:       email,
		StableID:    stableID,
	}, nil
}

// load returns the token from the struct or the token file
func (s TokenSource) load() (string, error) {
	if token := strings.TrimSpace(s.Token); token != "" {
		return token, nil
	}
	if s.TokenFile == "" {
		return "", fmt.Errorf("%w: no id token provided", model.ErrIdentityClaimsIncomplete)
	}

	data, err := os.ReadFile(s.TokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: no id token at %s", model.ErrIdentityClaimsIncomplete, s.TokenFile)
		}
		return "", fmt.Errorf("%w: read id token: %v", model.ErrIdentityClaimsIncomplete, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: id token file %s is empty", model.ErrIdentityClaimsIncomplete, s.TokenFile)
	}
	return token, nil
}

// StaticSource returns fixed claims
type StaticSource struct {
	Values model.Claims
}

// Claims returns the fixed claims
func (s StaticSource) Claims(_ context.Context) (model.Claims, error) {
	return s.Values, nil
}
