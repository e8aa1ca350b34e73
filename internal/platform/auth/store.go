package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"library-backend/internal/platform/db"
)

type Account struct {
	ID       int64
	Username string
	Password string
	Role     Role
	Email    sql.NullString
}

type AccountStore interface {
	GetByUsername(ctx context.Context, role Role, username string) (*Account, error)
	CreateMember(ctx context.Context, username, email, passwordHash string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// GetByUsername returns nil, nil when the account does not exist.
func (s *Store) GetByUsername(ctx context.Context, role Role, username string) (*Account, error) {
	table, err := accountTable(role)
	if err != nil {
		return nil, err
	}
	// テーブル名は上の switch でしか決まらない
	q := fmt.Sprintf(`SELECT id, username, password FROM %s WHERE username = ? LIMIT 1`, table)

	a := Account{Role: role}
	err = s.db.QueryRowContext(ctx, q, username).Scan(&a.ID, &a.Username, &a.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateMember(ctx context.Context, username, email, passwordHash string) (int64, error) {
	const q = `INSERT INTO Member (username, email, password) VALUES (?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, username, email, passwordHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ErrMemberNotFound is returned when a session username has no Member row,
// e.g. the member was deleted while logged in.
var ErrMemberNotFound = errors.New("member not found")

// LookupMemberID resolves a member username to its id.
func LookupMemberID(ctx context.Context, q db.DBTX, username string) (int64, error) {
	const stmt = `SELECT id FROM Member WHERE username = ?`
	var id int64
	err := q.QueryRowContext(ctx, stmt, username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrMemberNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
