package catalog

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

const maxPageLimit = 500

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(conn *sql.DB) *Service { return &Service{db: conn, store: NewStore(conn)} }

// ===== books =====

// bookInput is a validated BookRequest.
type bookInput struct {
	title            string
	quantity         int
	authorID         sql.NullInt64
	publisherID      sql.NullInt64
	newAuthorName    string
	newPublisherName string
}

func parseBook(req BookRequest) (bookInput, error) {
	in := bookInput{
		title:            strings.TrimSpace(req.Title),
		newAuthorName:    strings.TrimSpace(req.NewAuthorName),
		newPublisherName: strings.TrimSpace(req.NewPublisherName),
	}
	if in.title == "" {
		return in, apierr.ErrInvalid("title is required")
	}
	q := req.Quantity.trimmed()
	if q == "" {
		return in, apierr.ErrInvalid("quantity is required")
	}
	n, err := strconv.Atoi(q)
	if err != nil || n < 0 {
		return in, apierr.ErrInvalid("quantity must be a non-negative integer")
	}
	in.quantity = n

	if in.authorID, err = parseOptionalID("author_id", req.AuthorID); err != nil {
		return in, err
	}
	if in.publisherID, err = parseOptionalID("publisher_id", req.PublisherID); err != nil {
		return in, err
	}
	return in, nil
}

// parseOptionalID maps an empty value to NULL.
func parseOptionalID(field string, v FormValue) (sql.NullInt64, error) {
	s := v.trimmed()
	if s == "" {
		return sql.NullInt64{}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return sql.NullInt64{}, apierr.ErrInvalid(field + " must be a positive integer")
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

// resolveRefsTx creates the inline author and publisher, if any, in the
// caller's transaction.
func resolveRefsTx(ctx context.Context, tx db.DBTX, in *bookInput) error {
	if in.newAuthorName != "" {
		id, err := insertNamedTx(ctx, tx, authors, in.newAuthorName)
		if err != nil {
			return err
		}
		in.authorID = sql.NullInt64{Int64: id, Valid: true}
	}
	if in.newPublisherName != "" {
		id, err := insertNamedTx(ctx, tx, publishers, in.newPublisherName)
		if err != nil {
			return err
		}
		in.publisherID = sql.NullInt64{Int64: id, Valid: true}
	}
	return nil
}

func (s *Service) CreateBook(ctx context.Context, req BookRequest) (*BookResponse, error) {
	in, err := parseBook(req)
	if err != nil {
		return nil, err
	}
	var id int64
	err = db.RunInTx(ctx, s.db, db.WriteTx, func(ctx context.Context, tx db.DBTX) error {
		// 新しい著者・出版社は書籍と同じTxで作成する
		if err := resolveRefsTx(ctx, tx, &in); err != nil {
			return err
		}
		var err error
		id, err = insertBookTx(ctx, tx, in.title, in.authorID, in.publisherID, in.quantity)
		return err
	})
	if err != nil {
		return nil, apierr.FromStorage("create book", err)
	}
	return s.GetBook(ctx, id)
}

func (s *Service) UpdateBook(ctx context.Context, id int64, req BookRequest) (*BookResponse, error) {
	in, err := parseBook(req)
	if err != nil {
		return nil, err
	}
	err = db.RunInTx(ctx, s.db, db.WriteTx, func(ctx context.Context, tx db.DBTX) error {
		if err := resolveRefsTx(ctx, tx, &in); err != nil {
			return err
		}
		found, err := updateBookTx(ctx, tx, id, in.title, in.authorID, in.publisherID, in.quantity)
		if err != nil {
			return err
		}
		if !found {
			return apierr.ErrNotFound("book not found")
		}
		return nil
	})
	if err != nil {
		return nil, apierr.FromStorage("update book", err)
	}
	return s.GetBook(ctx, id)
}

func (s *Service) GetBook(ctx context.Context, id int64) (*BookResponse, error) {
	b, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, apierr.FromStorage("get book", err)
	}
	if b == nil {
		return nil, apierr.ErrNotFound("book not found")
	}
	resp := toBookResponse(*b)
	return &resp, nil
}

// DeleteBook is idempotent. A book still referenced by issue or reservation
// history cannot be removed.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return apierr.FromStorage("delete book", s.store.DeleteBook(ctx, id))
}

func (s *Service) ListBooks(ctx context.Context, p Page, q BookQuery) (*BookListResponse, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return nil, apierr.ErrInvalid("limit and offset must not be negative")
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	q.Title = strings.TrimSpace(q.Title)

	books, total, err := s.store.ListBooks(ctx, p, q)
	if err != nil {
		return nil, apierr.FromStorage("list books", err)
	}
	out := &BookListResponse{Items: make([]BookResponse, 0, len(books)), Total: total}
	for _, b := range books {
		out.Items = append(out.Items, toBookResponse(b))
	}
	if p.Limit > 0 && p.Offset+len(books) < total {
		next := p.Offset + len(books)
		out.NextOffset = &next
	}
	return out, nil
}

// BookForm returns the reference lists for the book forms, plus the book
// itself when id > 0.
func (s *Service) BookForm(ctx context.Context, id int64) (*BookFormResponse, error) {
	form := &BookFormResponse{}
	if id > 0 {
		b, err := s.GetBook(ctx, id)
		if err != nil {
			return nil, err
		}
		form.Book = b
	}
	var err error
	if form.Authors, err = s.listNamed(ctx, authors); err != nil {
		return nil, err
	}
	if form.Publishers, err = s.listNamed(ctx, publishers); err != nil {
		return nil, err
	}
	return form, nil
}

// ===== authors / publishers =====

func (s *Service) ListAuthors(ctx context.Context) ([]NamedResponse, error) {
	return s.listNamed(ctx, authors)
}

func (s *Service) CreateAuthor(ctx context.Context, req NameRequest) (*NamedResponse, error) {
	return s.createNamed(ctx, authors, req)
}

func (s *Service) DeleteAuthor(ctx context.Context, id int64) error {
	return apierr.FromStorage("delete author", s.store.DeleteNamed(ctx, authors, id))
}

func (s *Service) ListPublishers(ctx context.Context) ([]NamedResponse, error) {
	return s.listNamed(ctx, publishers)
}

func (s *Service) CreatePublisher(ctx context.Context, req NameRequest) (*NamedResponse, error) {
	return s.createNamed(ctx, publishers, req)
}

func (s *Service) DeletePublisher(ctx context.Context, id int64) error {
	return apierr.FromStorage("delete publisher", s.store.DeleteNamed(ctx, publishers, id))
}

func (s *Service) listNamed(ctx context.Context, t refTable) ([]NamedResponse, error) {
	rows, err := s.store.ListNamed(ctx, t)
	if err != nil {
		return nil, apierr.FromStorage("list "+strings.ToLower(t.String())+"s", err)
	}
	out := make([]NamedResponse, 0, len(rows))
	for _, n := range rows {
		out = append(out, NamedResponse{ID: n.ID, Name: n.Name})
	}
	return out, nil
}

func (s *Service) createNamed(ctx context.Context, t refTable, req NameRequest) (*NamedResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierr.ErrInvalid("name is required")
	}
	id, err := insertNamedTx(ctx, s.db, t, name)
	if err != nil {
		return nil, apierr.FromStorage("create "+strings.ToLower(t.String()), err)
	}
	return &NamedResponse{ID: id, Name: name}, nil
}

// ===== vendors =====

func (s *Service) ListVendors(ctx context.Context) ([]VendorResponse, error) {
	vs, err := s.store.ListVendors(ctx)
	if err != nil {
		return nil, apierr.FromStorage("list vendors", err)
	}
	out := make([]VendorResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, VendorResponse{ID: v.ID, Name: v.Name, Contact: v.Contact})
	}
	return out, nil
}

func (s *Service) CreateVendor(ctx context.Context, req VendorRequest) (*VendorResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierr.ErrInvalid("name is required")
	}
	contact := strings.TrimSpace(req.Contact)
	id, err := s.store.CreateVendor(ctx, name, contact)
	if err != nil {
		return nil, apierr.FromStorage("create vendor", err)
	}
	return &VendorResponse{ID: id, Name: name, Contact: contact}, nil
}

func (s *Service) DeleteVendor(ctx context.Context, id int64) error {
	return apierr.FromStorage("delete vendor", s.store.DeleteVendor(ctx, id))
}

// ---------- helpers ----------

func toBookResponse(b Book) BookResponse {
	r := BookResponse{ID: b.ID, Title: b.Title, Quantity: b.Quantity}
	if b.AuthorID.Valid {
		v := b.AuthorID.Int64
		r.AuthorID = &v
	}
	if b.PublisherID.Valid {
		v := b.PublisherID.Int64
		r.PublisherID = &v
	}
	if b.AuthorName.Valid {
		v := b.AuthorName.String
		r.Author = &v
	}
	if b.PublisherName.Valid {
		v := b.PublisherName.String
		r.Publisher = &v
	}
	return r
}
