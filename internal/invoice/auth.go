package invoice

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is how long a minted access token stays valid
const tokenTTL = 8 * time.Hour

var (
	// ErrNoToken means the request carried no bearer token at all
	ErrNoToken = errors.New("no token provided")
	// ErrInvalidToken means the token signature or expiry did not check out
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidCredentials means the login username/password did not match
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// TokenAuth mints and verifies signed access tokens against a single
// configured username/password pair. Login is the only path that mints
// tokens; a token is boolean proof of authentication and carries no
// further scopes.
type TokenAuth struct {
	username   string
	password   string
	secret     []byte
	timeSource TimeSource
}

// NewTokenAuth creates a TokenAuth for the given shared credential pair
func NewTokenAuth(username, password string, secret []byte) *TokenAuth {
	return NewTokenAuthWithDeps(username, password, secret, &defaultTimeSource{})
}

// NewTokenAuthWithDeps creates a TokenAuth with a custom time source for testing
func NewTokenAuthWithDeps(username, password string, secret []byte, timeSrc TimeSource) *TokenAuth {
	return &TokenAuth{
		username:   username,
		password:   password,
		secret:     secret,
		timeSource: timeSrc,
	}
}

// Login compares the supplied credentials against the configured pair and
// mints an HS256-signed token with an 8-hour expiry on match
func (a *TokenAuth) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}

	now := a.timeSource.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates a bearer token and returns the authenticated principal
func (a *TokenAuth) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrNoToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(a.timeSource.Now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
