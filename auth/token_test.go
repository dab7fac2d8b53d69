package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()
	tokens, err := NewTokens(TokenConfig{Secret: []byte("secret"), TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewTokens() error = %v", err)
	}
	return tokens
}

func TestNewTokens_RequiresSecret(t *testing.T) {
	if _, err := NewTokens(TokenConfig{}); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewTokens() error = %v, want ErrEmptySecret", err)
	}
}

func TestTokens_IssueVerify(t *testing.T) {
	tokens := newTestTokens(t)
	now := time.Unix(1_700_000_000, 0)
	tokens.now = func() time.Time { return now }

	token, exp, err := tokens.Issue("client-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if !exp.Equal(now.Add(time.Minute)) {
		t.Errorf("expiry = %v", exp)
	}

	id, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id != "client-1" {
		t.Errorf("Verify() = %q, want client-1", id)
	}

	if _, _, err := tokens.Issue(""); !errors.Is(err, ErrMissingSubject) {
		t.Errorf("Issue(\"\") error = %v", err)
	}
}

func TestTokens_VerifyFailures(t *testing.T) {
	tokens := newTestTokens(t)
	now := time.Unix(1_700_000_000, 0)
	tokens.now = func() time.Time { return now }
	valid, _, _ := tokens.Issue("client-1")

	other, _ := NewTokens(TokenConfig{Secret: []byte("other")})
	forged, _, _ := other.Issue("client-1")

	foreign, _ := NewTokens(TokenConfig{Secret: []byte("secret"), Issuer: "someone-else"})
	wrongIssuer, _, _ := foreign.Issue("client-1")

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "client-1",
		Issuer:  "wxshell",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "wxshell",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}).SignedString([]byte("secret"))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingCredentials},
		{"garbage", "not-a-token", ErrTokenMalformed},
		{"wrong key", forged, ErrInvalidCredentials},
		{"wrong issuer", wrongIssuer, ErrInvalidCredentials},
		{"alg none", none, ErrInvalidCredentials},
		{"no subject", noSubject, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tokens.Verify(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("Verify() error = %v, want %v", err, tt.want)
			}
		})
	}

	tokens.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := tokens.Verify(valid); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestTokens_FromRequest(t *testing.T) {
	tokens := newTestTokens(t)

	tests := []struct {
		name   string
		target string
		header string
		want   string
		err    error
	}{
		{"query", "/bridge?token=abc", "", "abc", nil},
		{"query wins", "/bridge?token=abc", "Bearer xyz", "abc", nil},
		{"bearer", "/bridge", "Bearer xyz", "xyz", nil},
		{"basic", "/bridge", "Basic xyz", "", ErrMissingCredentials},
		{"none", "/bridge", "", "", ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := tokens.FromRequest(r)
			if !errors.Is(err, tt.err) || got != tt.want {
				t.Errorf("FromRequest() = %q, %v; want %q, %v", got, err, tt.want, tt.err)
			}
		})
	}
}

func TestTokens_Authorize(t *testing.T) {
	tokens := newTestTokens(t)
	token, _, _ := tokens.Issue("client-9")

	r := httptest.NewRequest(http.MethodGet, "/bridge?token="+token, nil)
	id, err := tokens.Authorize(r)
	if err != nil || id != "client-9" {
		t.Errorf("Authorize() = %q, %v", id, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/bridge", nil)
	if _, err := tokens.Authorize(r); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Authorize() without token error = %v", err)
	}
}
