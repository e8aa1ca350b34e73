// Package dbtest opens throwaway SQLite databases with the library schema for
// package tests. Statements used by the stores are kept portable between MySQL
// and SQLite so the same queries run against both.
package dbtest

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE Admin (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
);
CREATE TABLE Employee (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
);
CREATE TABLE Member (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL,
    password TEXT NOT NULL
);
CREATE TABLE Author (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);
CREATE TABLE Publisher (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);
CREATE TABLE Book (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    author_id INTEGER NULL REFERENCES Author(id) ON DELETE SET NULL,
    publisher_id INTEGER NULL REFERENCES Publisher(id) ON DELETE SET NULL,
    quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0)
);
CREATE TABLE Issued_Books (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id INTEGER NOT NULL,
    member_id INTEGER NOT NULL,
    issue_date DATE NOT NULL,
    return_date DATE NOT NULL,
    returned BOOLEAN NOT NULL DEFAULT 0
);
CREATE TABLE Reservation (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id INTEGER NOT NULL,
    member_id INTEGER NOT NULL REFERENCES Member(id) ON DELETE CASCADE,
    reservation_date DATE NOT NULL,
    status TEXT NOT NULL DEFAULT 'active'
);
CREATE TABLE Fine (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    member_id INTEGER NOT NULL REFERENCES Member(id) ON DELETE CASCADE,
    amount DECIMAL(10,2) NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    date_assessed DATE NOT NULL
);
CREATE TABLE Vendor (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    contact TEXT NOT NULL DEFAULT ''
);
`

// Open creates a file-backed database in t.TempDir. Writers take the lock at
// BEGIN (_txlock=immediate) and wait on each other through busy_timeout, which
// mirrors the row lock MySQL takes on a conditioned UPDATE.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_foreign_keys=1&_journal_mode=WAL&_txlock=immediate", path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if _, err := conn.Exec(schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return conn
}

// MustExec runs a fixture statement and returns the last insert id.
func MustExec(t *testing.T, conn *sql.DB, q string, args ...any) int64 {
	t.Helper()
	res, err := conn.Exec(q, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// QueryInt scans a single integer result.
func QueryInt(t *testing.T, conn *sql.DB, q string, args ...any) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(q, args...).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", q, err)
	}
	return n
}
