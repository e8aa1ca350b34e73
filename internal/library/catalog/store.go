package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"library-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// refTable names the name-only reference tables. Table names come from this
// closed set only.
type refTable int

const (
	authors refTable = iota
	publishers
)

func (t refTable) String() string {
	switch t {
	case authors:
		return "Author"
	case publishers:
		return "Publisher"
	}
	panic(fmt.Sprintf("catalog: unknown reference table %d", int(t)))
}

// ===== books =====

const bookSelect = `
	SELECT b.id, b.title, b.author_id, b.publisher_id, b.quantity, a.name, p.name
	FROM Book b
	LEFT JOIN Author a ON a.id = b.author_id
	LEFT JOIN Publisher p ON p.id = b.publisher_id`

func scanBook(sc interface{ Scan(...any) error }) (Book, error) {
	var b Book
	err := sc.Scan(&b.ID, &b.Title, &b.AuthorID, &b.PublisherID, &b.Quantity, &b.AuthorName, &b.PublisherName)
	return b, err
}

// ListBooks returns one page of books ordered by title plus the total match count.
// A zero Limit returns every row.
func (s *Store) ListBooks(ctx context.Context, p Page, q BookQuery) ([]Book, int, error) {
	where := ""
	var args []any
	if q.Title != "" {
		where = ` WHERE b.title LIKE ?`
		args = append(args, "%"+q.Title+"%")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Book b`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := bookSelect + where + ` ORDER BY b.title, b.id`
	if p.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, p.Limit, p.Offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Book, 0, 16)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetBook returns nil, nil when the book does not exist.
func (s *Store) GetBook(ctx context.Context, id int64) (*Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, bookSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func insertBookTx(ctx context.Context, tx db.DBTX, title string, authorID, publisherID sql.NullInt64, qty int) (int64, error) {
	const q = `INSERT INTO Book (title, author_id, publisher_id, quantity) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, title, authorID, publisherID, qty)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// updateBookTx reports whether a row with id exists. The DSN enables
// CLIENT_FOUND_ROWS, so an update that changes nothing still counts the row.
func updateBookTx(ctx context.Context, tx db.DBTX, id int64, title string, authorID, publisherID sql.NullInt64, qty int) (bool, error) {
	const q = `UPDATE Book SET title = ?, author_id = ?, publisher_id = ?, quantity = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, title, authorID, publisherID, qty, id)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff > 0, nil
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Book WHERE id = ?`, id)
	return err
}

// ===== authors / publishers =====

func (s *Store) ListNamed(ctx context.Context, t refTable) ([]Named, error) {
	q := fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name, id`, t)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Named, 0, 16)
	for rows.Next() {
		var n Named
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func insertNamedTx(ctx context.Context, tx db.DBTX, t refTable, name string) (int64, error) {
	q := fmt.Sprintf(`INSERT INTO %s (name) VALUES (?)`, t)
	res, err := tx.ExecContext(ctx, q, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) DeleteNamed(ctx context.Context, t refTable, id int64) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t), id)
	return err
}

// ===== vendors =====

func (s *Store) ListVendors(ctx context.Context) ([]Vendor, error) {
	const q = `SELECT id, name, contact FROM Vendor ORDER BY name, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Vendor, 0, 16)
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Contact); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) CreateVendor(ctx context.Context, name, contact string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO Vendor (name, contact) VALUES (?, ?)`, name, contact)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) DeleteVendor(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Vendor WHERE id = ?`, id)
	return err
}
