package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/observability"
)

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type Service struct {
	store    AccountStore
	sessions *SessionManager
}

func NewService(store AccountStore, sessions *SessionManager) *Service {
	return &Service{store: store, sessions: sessions}
}

func (s *Service) Sessions() *SessionManager { return s.sessions }

var errBadCredentials = apierr.ErrUnauthenticated("invalid username or password")

// Login authenticates against the account table of the chosen role and
// opens a session.
func (s *Service) Login(ctx context.Context, in LoginRequest) (string, Session, error) {
	role, err := ParseRole(in.Role)
	if err != nil {
		return "", Session{}, err
	}
	username := NormalizeUsername(in.Username)
	// 空パスワードも照合する（旧データの平文が空のことがある）
	if username == "" {
		return "", Session{}, apierr.ErrInvalid("username is required")
	}

	acct, err := s.store.GetByUsername(ctx, role, username)
	if err != nil {
		return "", Session{}, apierr.FromStorage("login", err)
	}
	if acct == nil || !VerifyPassword(acct.Password, in.Password) {
		observability.RecordLogin(string(role), "rejected")
		return "", Session{}, errBadCredentials
	}

	token, sess, err := s.sessions.Issue(Identity{Username: acct.Username, Role: role})
	if err != nil {
		return "", Session{}, apierr.Internal("issue session failed", err)
	}
	observability.RecordLogin(string(role), "ok")
	return token, sess, nil
}

// Logout revokes the session behind token. Unknown or expired tokens are
// ignored: logging out always succeeds.
func (s *Service) Logout(token string) {
	sess, err := s.sessions.Parse(token)
	if err != nil {
		return
	}
	s.sessions.Revoke(sess)
}

// Register creates a Member account with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (int64, error) {
	username, email, hash, err := PrepareMember(in.Username, in.Email, in.Password)
	if err != nil {
		return 0, err
	}
	id, err := s.store.CreateMember(ctx, username, email, hash)
	if err != nil {
		return 0, apierr.FromStorage("register member", err)
	}
	return id, nil
}

// PrepareMember validates member fields and hashes the password. Shared by
// self-registration and staff-created members.
func PrepareMember(username, email, password string) (string, string, string, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return "", "", "", apierr.ErrInvalid("username, email and password are required")
	}
	username, email, err := ValidateMemberFields(username, email)
	if err != nil {
		return "", "", "", err
	}
	hash, err := HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", "", "", apierr.ErrInvalid("password is too long")
		}
		return "", "", "", apierr.Internal("hash password failed", err)
	}
	return username, email, hash, nil
}

// ValidateMemberFields normalizes and checks a member's username and email.
func ValidateMemberFields(username, email string) (string, string, error) {
	username = NormalizeUsername(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return "", "", apierr.ErrInvalid("username and email are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", "", apierr.ErrInvalid("email is not a valid address")
	}
	return username, email, nil
}
