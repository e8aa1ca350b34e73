package circulation

import (
	"context"
	"database/sql"
	"errors"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// ---- conditioned quantity writes ----

// takeCopyTx removes one copy from stock. The WHERE clause carries the guard,
// so two writers can never both see the last copy.
func takeCopyTx(ctx context.Context, tx db.DBTX, bookID int64) error {
	const q = `UPDATE Book SET quantity = quantity - 1 WHERE id = ? AND quantity > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return apierr.ErrConflict("book is out of stock")
	}
	return nil
}

// putBackCopyTx returns one copy to stock. A book deleted while the copy was
// out has no row left to restock, which is not an error.
func putBackCopyTx(ctx context.Context, tx db.DBTX, bookID int64) error {
	const q = `UPDATE Book SET quantity = quantity + 1 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}

// ---- issued books ----

// memberExistsTx checks the borrower. Issued_Books keeps no foreign key to
// Member so that members with history stay deletable.
func memberExistsTx(ctx context.Context, tx db.DBTX, memberID int64) error {
	const q = `SELECT id FROM Member WHERE id = ?`
	var id int64
	err := tx.QueryRowContext(ctx, q, memberID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apierr.ErrInvalid("member does not exist")
	}
	return err
}

func insertIssueTx(ctx context.Context, tx db.DBTX, bookID, memberID int64, issueDate, returnDate string) (int64, error) {
	const q = `
		INSERT INTO Issued_Books (book_id, member_id, issue_date, return_date, returned)
		VALUES (?, ?, ?, ?, 0)`
	res, err := tx.ExecContext(ctx, q, bookID, memberID, issueDate, returnDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// markReturnedTx closes an open issue record and returns its book id.
func markReturnedTx(ctx context.Context, tx db.DBTX, issueID int64) (int64, error) {
	const upd = `UPDATE Issued_Books SET returned = 1 WHERE id = ? AND returned = 0`
	res, err := tx.ExecContext(ctx, upd, issueID)
	if err != nil {
		return 0, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if aff == 0 {
		return 0, apierr.ErrNotFound("issued book already returned or not found")
	}

	const sel = `SELECT book_id FROM Issued_Books WHERE id = ?`
	var bookID int64
	if err := tx.QueryRowContext(ctx, sel, issueID).Scan(&bookID); err != nil {
		return 0, err
	}
	return bookID, nil
}

func (s *Store) ListIssued(ctx context.Context) ([]IssuedRecord, error) {
	const q = `
		SELECT ib.id, ib.book_id, ib.member_id, ib.issue_date, ib.return_date, ib.returned, b.title, m.username
		FROM Issued_Books ib
		LEFT JOIN Book b ON b.id = ib.book_id
		LEFT JOIN Member m ON m.id = ib.member_id
		ORDER BY ib.issue_date DESC, ib.id DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IssuedRecord
	for rows.Next() {
		var r IssuedRecord
		if err := rows.Scan(&r.ID, &r.BookID, &r.MemberID, &r.IssueDate, &r.ReturnDate, &r.Returned,
			&r.BookTitle, &r.MemberUsername); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ---- reservations ----

func insertReservationTx(ctx context.Context, tx db.DBTX, bookID, memberID int64, date string) (int64, error) {
	const q = `
		INSERT INTO Reservation (book_id, member_id, reservation_date, status)
		VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, bookID, memberID, date, StatusActive)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// cancelReservationTx flips an active reservation to cancelled and returns its
// book id. memberID > 0 restricts the match to that member's reservations.
func cancelReservationTx(ctx context.Context, tx db.DBTX, reservationID, memberID int64) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if memberID > 0 {
		const q = `UPDATE Reservation SET status = ? WHERE id = ? AND status = ? AND member_id = ?`
		res, err = tx.ExecContext(ctx, q, StatusCancelled, reservationID, StatusActive, memberID)
	} else {
		const q = `UPDATE Reservation SET status = ? WHERE id = ? AND status = ?`
		res, err = tx.ExecContext(ctx, q, StatusCancelled, reservationID, StatusActive)
	}
	if err != nil {
		return 0, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if aff == 0 {
		return 0, apierr.ErrNotFound("active reservation not found")
	}

	const sel = `SELECT book_id FROM Reservation WHERE id = ?`
	var bookID int64
	if err := tx.QueryRowContext(ctx, sel, reservationID).Scan(&bookID); err != nil {
		return 0, err
	}
	return bookID, nil
}

// ListReservations returns every reservation, or only memberID's when > 0.
func (s *Store) ListReservations(ctx context.Context, memberID int64) ([]Reservation, error) {
	q := `
		SELECT r.id, r.book_id, r.member_id, r.reservation_date, r.status, b.title, m.username
		FROM Reservation r
		LEFT JOIN Book b ON b.id = r.book_id
		LEFT JOIN Member m ON m.id = r.member_id`
	var args []any
	if memberID > 0 {
		q += ` WHERE r.member_id = ?`
		args = append(args, memberID)
	}
	q += ` ORDER BY r.reservation_date DESC, r.id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var r Reservation
		if err := rows.Scan(&r.ID, &r.BookID, &r.MemberID, &r.ReservationDate, &r.Status,
			&r.BookTitle, &r.MemberUsername); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ---- form data ----

func (s *Store) ListAvailableBooks(ctx context.Context) ([]BookOption, error) {
	const q = `SELECT id, title, quantity FROM Book WHERE quantity > 0 ORDER BY title, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookOption
	for rows.Next() {
		var b BookOption
		if err := rows.Scan(&b.ID, &b.Title, &b.Quantity); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) ListMemberOptions(ctx context.Context) ([]MemberOption, error) {
	const q = `SELECT id, username FROM Member ORDER BY username, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MemberOption
	for rows.Next() {
		var m MemberOption
		if err := rows.Scan(&m.ID, &m.Username); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
