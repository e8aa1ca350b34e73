package catalog

import "database/sql"

// Book is a Book row joined with its author and publisher names.
type Book struct {
	ID            int64
	Title         string
	AuthorID      sql.NullInt64
	PublisherID   sql.NullInt64
	Quantity      int
	AuthorName    sql.NullString
	PublisherName sql.NullString
}

// Named is a row of a name-only reference table (Author, Publisher).
type Named struct {
	ID   int64
	Name string
}

type Vendor struct {
	ID      int64
	Name    string
	Contact string
}

// BookQuery filters the book listing.
type BookQuery struct {
	Title string // substring match
}

type Page struct {
	Limit  int
	Offset int
}
