package circulation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/observability"
)

// ===== interfaces =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// ===== Service =====

// Service owns every operation that changes Book.quantity. Each mutation runs
// in one transaction: the conditioned quantity write and the dependent row
// commit together or not at all.
type Service struct {
	db    *sql.DB
	store *Store
	clock Clock
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		db:    conn,
		store: NewStore(conn),
		clock: realClock{},
	}
}

func (s *Service) today() string { return s.clock.Now().Format(dateLayout) }

// Issue lends one copy of a book to a member.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*IssuedRecordResponse, error) {
	if req.BookID <= 0 || req.MemberID <= 0 {
		return nil, record("issue", apierr.ErrInvalid("book_id and member_id are required"))
	}
	issueOn, err := parseDate("issue_date", req.IssueDate, s.today())
	if err != nil {
		return nil, record("issue", err)
	}
	dueOn, err := parseDate("return_date", req.ReturnDate, "")
	if err != nil {
		return nil, record("issue", err)
	}
	if dueOn.Before(issueOn) {
		return nil, record("issue", apierr.ErrInvalid("return_date must not be before issue_date"))
	}

	var id int64
	err = db.RunInTx(ctx, s.db, db.WriteTx, func(ctx context.Context, tx db.DBTX) error {
		// 1. 会員の存在確認
		if err := memberExistsTx(ctx, tx, req.MemberID); err != nil {
			return err
		}
		// 2. 在庫を1減らす（quantity > 0 の行だけが対象）
		if err := takeCopyTx(ctx, tx, req.BookID); err != nil {
			return err
		}
		// 3. 貸出レコード作成
		var err error
		id, err = insertIssueTx(ctx, tx, req.BookID, req.MemberID, issueOn.Format(dateLayout), dueOn.Format(dateLayout))
		return err
	})
	if err != nil {
		return nil, record("issue", apierr.FromStorage("issue book", err))
	}

	record("issue", nil)
	return &IssuedRecordResponse{
		ID:         id,
		BookID:     req.BookID,
		MemberID:   req.MemberID,
		IssueDate:  issueOn.Format(dateLayout),
		ReturnDate: dueOn.Format(dateLayout),
	}, nil
}

// Return closes an open issue record and puts the copy back into stock.
func (s *Service) Return(ctx context.Context, issueID int64) error {
	if issueID <= 0 {
		return record("return", apierr.ErrInvalid("issue id must be positive"))
	}
	err := db.RunInTx(ctx, s.db, db.WriteTx, func(ctx context.Context, tx db.DBTX) error {
		// 1. 未返却(returned=0)のレコードだけを返却済みにする
		bookID, err := markReturnedTx(ctx, tx, issueID)
		if err != nil {
			return err
		}
		// 2. 在庫を戻す（書籍が削除済みなら何もしない）
		return putBackCopyTx(ctx, tx, bookID)
	})
	return record("return", apierr.FromStorage("return book", err))
}

// Reserve takes one copy of a book for the member behind id.
func (s *Service) Reserve(ctx context.Context, id auth.Identity, req ReserveRequest) (*ReservationResponse, error) {
	if id.Role != auth.RoleMember {
		return nil, record("reserve", apierr.ErrInvalid("only members can reserve books"))
	}
	if req.BookID <= 0 {
		return nil, record("reserve", apierr.ErrInvalid("book_id is required"))
	}

	date := s.today()
	var resID, memberID int64
	err := db.RunInTx(ctx, s.db, db.WriteTx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		// 1. セッションのユーザー名から会員IDを解決
		if memberID, err = resolveMember(ctx, tx, id.Username); err != nil {
			return err
		}
		// 2. 在庫確保
		if err := takeCopyTx(ctx, tx, req.BookID); err != nil {
			return err
		}
		// 3. 予約レコード作成 (status=active)
		resID, err = insertReservationTx(ctx, tx, req.BookID, memberID, date)
		return err
	})
	if err != nil {
		return nil, record("reserve", apierr.FromStorage("reserve book", err))
	}

	record("reserve", nil)
	return &ReservationResponse{
		ID:              resID,
		BookID:          req.BookID,
		MemberID:        memberID,
		ReservationDate: date,
		Status:          StatusActive,
	}, nil
}

// CancelReservation releases an active reservation. Staff may cancel any
// reservation, members only their own.
func (s *Service) CancelReservation(ctx context.Context, id auth.Identity, reservationID int64) error {
	if reservationID <= 0 {
		return record("cancel", apierr.ErrInvalid("reservation id must be positive"))
	}
	err := db.RunInTx(ctx, s.db, db.WriteTx, func(ctx context.Context, tx db.DBTX) error {
		// スタッフは全件、会員は自分の予約のみ
		var owner int64
		if !id.Role.IsStaff() {
			var err error
			if owner, err = resolveMember(ctx, tx, id.Username); err != nil {
				return err
			}
		}
		bookID, err := cancelReservationTx(ctx, tx, reservationID, owner)
		if err != nil {
			return err
		}
		return putBackCopyTx(ctx, tx, bookID)
	})
	return record("cancel", apierr.FromStorage("cancel reservation", err))
}

// ---------- reads ----------

func (s *Service) ListIssued(ctx context.Context) ([]IssuedRecordResponse, error) {
	recs, err := s.store.ListIssued(ctx)
	if err != nil {
		return nil, apierr.FromStorage("list issued books", err)
	}
	today := s.today()
	out := make([]IssuedRecordResponse, 0, len(recs))
	for _, r := range recs {
		resp := IssuedRecordResponse{
			ID:             r.ID,
			BookID:         r.BookID,
			BookTitle:      nullString(r.BookTitle),
			MemberID:       r.MemberID,
			MemberUsername: nullString(r.MemberUsername),
			IssueDate:      r.IssueDate.Format(dateLayout),
			ReturnDate:     r.ReturnDate.Format(dateLayout),
			Returned:       r.Returned,
		}
		resp.Overdue = !r.Returned && resp.ReturnDate < today
		out = append(out, resp)
	}
	return out, nil
}

// ListReservations returns all reservations for staff and the caller's own
// reservations for members.
func (s *Service) ListReservations(ctx context.Context, id auth.Identity) ([]ReservationResponse, error) {
	var memberID int64
	if !id.Role.IsStaff() {
		var err error
		if memberID, err = resolveMember(ctx, s.db, id.Username); err != nil {
			return nil, apierr.FromStorage("list reservations", err)
		}
	}
	rs, err := s.store.ListReservations(ctx, memberID)
	if err != nil {
		return nil, apierr.FromStorage("list reservations", err)
	}
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, ReservationResponse{
			ID:              r.ID,
			BookID:          r.BookID,
			BookTitle:       nullString(r.BookTitle),
			MemberID:        r.MemberID,
			MemberUsername:  nullString(r.MemberUsername),
			ReservationDate: r.ReservationDate.Format(dateLayout),
			Status:          r.Status,
		})
	}
	return out, nil
}

func (s *Service) IssueForm(ctx context.Context) (*IssueFormResponse, error) {
	books, err := s.availableBooks(ctx)
	if err != nil {
		return nil, err
	}
	ms, err := s.store.ListMemberOptions(ctx)
	if err != nil {
		return nil, apierr.FromStorage("list members", err)
	}
	members := make([]MemberOptionResponse, 0, len(ms))
	for _, m := range ms {
		members = append(members, MemberOptionResponse{ID: m.ID, Username: m.Username})
	}
	return &IssueFormResponse{Books: books, Members: members}, nil
}

func (s *Service) ReserveForm(ctx context.Context) (*ReserveFormResponse, error) {
	books, err := s.availableBooks(ctx)
	if err != nil {
		return nil, err
	}
	return &ReserveFormResponse{Books: books}, nil
}

func (s *Service) availableBooks(ctx context.Context) ([]BookOptionResponse, error) {
	bs, err := s.store.ListAvailableBooks(ctx)
	if err != nil {
		return nil, apierr.FromStorage("list available books", err)
	}
	out := make([]BookOptionResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, BookOptionResponse{ID: b.ID, Title: b.Title, Quantity: b.Quantity})
	}
	return out, nil
}

// ---------- helpers ----------

func resolveMember(ctx context.Context, q db.DBTX, username string) (int64, error) {
	id, err := auth.LookupMemberID(ctx, q, username)
	if errors.Is(err, auth.ErrMemberNotFound) {
		return 0, apierr.ErrNotFound("member account not found")
	}
	return id, err
}

// parseDate parses a YYYY-MM-DD field. An empty value falls back to def, or
// is rejected when def is empty.
func parseDate(field, v, def string) (time.Time, error) {
	if v == "" {
		v = def
	}
	if v == "" {
		return time.Time{}, apierr.ErrInvalid(field + " is required")
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, apierr.ErrInvalid("invalid " + field + " format, expected YYYY-MM-DD")
	}
	return t, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// record counts the outcome of an inventory operation and passes err through.
func record(op string, err error) error {
	outcome := "ok"
	if err != nil {
		switch apierr.CodeOf(err) {
		case apierr.CodeConflict:
			outcome = "conflict"
		case apierr.CodeNotFound:
			outcome = "not_found"
		case apierr.CodeInvalidArgument:
			outcome = "invalid"
		default:
			outcome = "error"
		}
	}
	observability.RecordInventory(op, outcome)
	return err
}
