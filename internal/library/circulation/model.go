package circulation

import (
	"database/sql"
	"time"
)

// Reservation status values. Rows are never deleted; cancelling flips the status.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// IssuedRecord is one row of Issued_Books joined with display names.
type IssuedRecord struct {
	ID             int64
	BookID         int64
	MemberID       int64
	IssueDate      time.Time
	ReturnDate     time.Time
	Returned       bool
	BookTitle      sql.NullString
	MemberUsername sql.NullString
}

// Reservation is one row of Reservation joined with display names.
type Reservation struct {
	ID              int64
	BookID          int64
	MemberID        int64
	ReservationDate time.Time
	Status          string
	BookTitle       sql.NullString
	MemberUsername  sql.NullString
}

// BookOption is a book that can currently be issued or reserved.
type BookOption struct {
	ID       int64
	Title    string
	Quantity int
}

type MemberOption struct {
	ID       int64
	Username string
}
