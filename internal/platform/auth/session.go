package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
	ErrRevokedSession = errors.New("session revoked")
)

const issuer = "library-backend"

// Claims carried in the session token. Subject is the username.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is a validated session.
type Session struct {
	ID        string
	Identity  Identity
	ExpiresAt time.Time
}

// SessionManager issues and validates HS256 session tokens and keeps the
// ids of logged-out sessions until they would have expired anyway.
type SessionManager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewSessionManager(secret []byte, lifetime time.Duration) *SessionManager {
	return &SessionManager{
		secret:   secret,
		lifetime: lifetime,
		now:      time.Now,
		revoked:  make(map[string]time.Time),
	}
}

func (m *SessionManager) Lifetime() time.Duration { return m.lifetime }

// Issue binds identity to a new session.
func (m *SessionManager) Issue(id Identity) (string, Session, error) {
	now := m.now()
	sess := Session{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Identity:  id,
		ExpiresAt: now.Add(m.lifetime),
	}
	claims := Claims{
		Role: string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   id.Username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Session{}, err
	}
	return token, sess, nil
}

// Parse validates a token and returns its session.
func (m *SessionManager) Parse(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return Session{}, ErrInvalidSession
	}

	role, err := ParseRole(claims.Role)
	if err != nil || claims.Subject == "" || claims.ID == "" {
		return Session{}, ErrInvalidSession
	}
	if m.isRevoked(claims.ID) {
		return Session{}, ErrRevokedSession
	}
	return Session{
		ID:        claims.ID,
		Identity:  Identity{Username: claims.Subject, Role: role},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke ends a session before its expiry.
func (m *SessionManager) Revoke(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[s.ID] = s.ExpiresAt
	m.pruneLocked()
}

func (m *SessionManager) isRevoked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok
}

func (m *SessionManager) pruneLocked() {
	now := m.now()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
}
