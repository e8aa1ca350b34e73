package members

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// ===== members =====

func (s *Store) ListMembers(ctx context.Context) ([]Member, error) {
	const q = `SELECT id, username, email FROM Member ORDER BY username, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]Member, 0, 16)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Username, &m.Email); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// GetMember returns nil, nil when absent.
func (s *Store) GetMember(ctx context.Context, id int64) (*Member, error) {
	const q = `SELECT id, username, email FROM Member WHERE id = ?`
	var m Member
	err := s.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Username, &m.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMember reports whether the row exists. passwordHash == "" keeps the
// stored password.
func (s *Store) UpdateMember(ctx context.Context, id int64, username, email, passwordHash string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if passwordHash == "" {
		const q = `UPDATE Member SET username = ?, email = ? WHERE id = ?`
		res, err = s.db.ExecContext(ctx, q, username, email, id)
	} else {
		const q = `UPDATE Member SET username = ?, email = ?, password = ? WHERE id = ?`
		res, err = s.db.ExecContext(ctx, q, username, email, passwordHash, id)
	}
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff > 0, nil
}

func (s *Store) DeleteMember(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Member WHERE id = ?`, id)
	return err
}

// ===== fines =====

const fineSelect = `
	SELECT f.id, f.member_id, m.username, f.amount, f.reason, f.date_assessed
	FROM Fine f
	JOIN Member m ON m.id = f.member_id`

// ListFines returns every fine, or only memberID's when > 0, newest first.
func (s *Store) ListFines(ctx context.Context, memberID int64) ([]Fine, error) {
	q := fineSelect
	var args []any
	if memberID > 0 {
		q += ` WHERE f.member_id = ?`
		args = append(args, memberID)
	}
	q += ` ORDER BY f.date_assessed DESC, f.id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]Fine, 0, 16)
	for rows.Next() {
		var f Fine
		if err := rows.Scan(&f.ID, &f.MemberID, &f.MemberUsername, &f.Amount, &f.Reason, &f.DateAssessed); err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

func (s *Store) CreateFine(ctx context.Context, memberID int64, amount decimal.Decimal, reason, date string) (int64, error) {
	const q = `INSERT INTO Fine (member_id, amount, reason, date_assessed) VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, memberID, amount.StringFixed(2), reason, date)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) DeleteFine(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Fine WHERE id = ?`, id)
	return err
}
