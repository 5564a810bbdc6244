package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "budget_session"

var ErrInvalidPassword = errors.New("invalid password")

// SessionClaims is the JWT payload for a logged-in session. OpenID is the
// stable identity key the storage layer scopes rows by.
type SessionClaims struct {
	OpenID string `json:"openId"`
	jwt.RegisteredClaims
}

// SessionManager verifies the shared app password and issues signed session
// tokens. The app has a single password; identity comes from the client-chosen
// profile name carried through the openID claim.
type SessionManager struct {
	secret       []byte
	ttl          time.Duration
	password     string
	passwordHash string
}

func NewSessionManager(secret string, ttl time.Duration, password, passwordHash string) *SessionManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{
		secret:       []byte(secret),
		ttl:          ttl,
		password:     password,
		passwordHash: passwordHash,
	}
}

// VerifyPassword checks a login attempt against the configured app password.
// A bcrypt hash takes precedence over the plaintext fallback.
func (m *SessionManager) VerifyPassword(password string) error {
	if m.passwordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(m.passwordHash), []byte(password)); err != nil {
			return ErrInvalidPassword
		}
		return nil
	}
	if m.password == "" {
		return errors.New("no app password configured")
	}
	if subtle.ConstantTimeCompare([]byte(m.password), []byte(password)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// IssueToken signs a session token for the given openID.
func (m *SessionManager) IssueToken(openID string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		OpenID: openID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   openID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims.
func (m *SessionManager) ParseToken(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, core.ErrUnauthorized
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.OpenID == "" {
		return nil, core.ErrUnauthorized
	}
	return claims, nil
}

// TTL reports the configured session lifetime, used for cookie expiry.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// HashPassword produces a bcrypt hash suitable for APP_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
