package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL bounds how long a page may wait before attaching.
const DefaultTokenTTL = 15 * time.Minute

// TokenConfig configures a Tokens issuer.
type TokenConfig struct {
	// Secret is the HS256 signing key.
	Secret []byte

	// Issuer is written to and required in the iss claim.
	// Default: "wxshell"
	Issuer string

	// TTL is the token lifetime.
	// Default: DefaultTokenTTL
	TTL time.Duration

	// QueryParam carries the token on websocket upgrades.
	// Default: "token"
	QueryParam string

	// HeaderName is the header containing the token.
	// Default: "Authorization"
	HeaderName string

	// TokenPrefix is the prefix before the token in the header.
	// Default: "Bearer "
	TokenPrefix string
}

// Tokens issues and verifies client tokens.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Verify returns one of the sentinel errors, never a jwt library error.
type Tokens struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokens creates a token issuer.
func NewTokens(config TokenConfig) (*Tokens, error) {
	if len(config.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	if config.Issuer == "" {
		config.Issuer = "wxshell"
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTokenTTL
	}
	if config.QueryParam == "" {
		config.QueryParam = "token"
	}
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}
	if config.TokenPrefix == "" {
		config.TokenPrefix = "Bearer "
	}
	return &Tokens{config: config, now: time.Now}, nil
}

// Issue returns a signed token for clientID and its expiry.
func (t *Tokens) Issue(clientID string) (string, time.Time, error) {
	if clientID == "" {
		return "", time.Time{}, ErrMissingSubject
	}
	now := t.now()
	exp := now.Add(t.config.TTL)
	claims := jwt.RegisteredClaims{
		Subject:   clientID,
		Issuer:    t.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks token and returns the client id it was issued to.
func (t *Tokens) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingCredentials
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.config.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.config.Issuer),
		jwt.WithTimeFunc(t.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "", ErrTokenMalformed
	case err != nil:
		return "", ErrInvalidCredentials
	case !parsed.Valid:
		return "", ErrInvalidCredentials
	}
	if claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}

// FromRequest extracts the token from the query parameter, falling back to
// the bearer header.
func (t *Tokens) FromRequest(r *http.Request) (string, error) {
	if v := strings.TrimSpace(r.URL.Query().Get(t.config.QueryParam)); v != "" {
		return v, nil
	}
	header := r.Header.Get(t.config.HeaderName)
	token := strings.TrimPrefix(header, t.config.TokenPrefix)
	if header == "" || token == header {
		return "", ErrMissingCredentials
	}
	return strings.TrimSpace(token), nil
}

// Authorize verifies the token carried by r and returns its client id.
func (t *Tokens) Authorize(r *http.Request) (string, error) {
	token, err := t.FromRequest(r)
	if err != nil {
		return "", err
	}
	return t.Verify(token)
}
