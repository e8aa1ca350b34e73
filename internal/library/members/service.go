package members

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
)

// DECIMAL(10,2) upper bound.
var maxFineAmount = decimal.New(1, 8)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	db       *sql.DB
	store    *Store
	accounts auth.AccountStore
	clock    Clock
}

func NewService(conn *sql.DB, accounts auth.AccountStore) *Service {
	return &Service{db: conn, store: NewStore(conn), accounts: accounts, clock: realClock{}}
}

// ===== members =====

func (s *Service) ListMembers(ctx context.Context) ([]MemberResponse, error) {
	ms, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, apierr.FromStorage("list members", err)
	}
	out := make([]MemberResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMemberResponse(m))
	}
	return out, nil
}

func (s *Service) GetMember(ctx context.Context, id int64) (*MemberResponse, error) {
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, apierr.FromStorage("get member", err)
	}
	if m == nil {
		return nil, apierr.ErrNotFound("member not found")
	}
	resp := toMemberResponse(*m)
	return &resp, nil
}

// CreateMember adds a member account on behalf of staff.
func (s *Service) CreateMember(ctx context.Context, req CreateMemberRequest) (*MemberResponse, error) {
	username, email, hash, err := auth.PrepareMember(req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	id, err := s.accounts.CreateMember(ctx, username, email, hash)
	if err != nil {
		return nil, apierr.FromStorage("create member", err)
	}
	return &MemberResponse{ID: id, Username: username, Email: email}, nil
}

func (s *Service) UpdateMember(ctx context.Context, id int64, req UpdateMemberRequest) (*MemberResponse, error) {
	username, email, err := auth.ValidateMemberFields(req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	var hash string
	if req.Password != "" {
		if hash, err = auth.HashPassword(req.Password); err != nil {
			return nil, apierr.ErrInvalid("password cannot be used")
		}
	}

	found, err := s.store.UpdateMember(ctx, id, username, email, hash)
	if err != nil {
		return nil, apierr.FromStorage("update member", err)
	}
	if !found {
		return nil, apierr.ErrNotFound("member not found")
	}
	return &MemberResponse{ID: id, Username: username, Email: email}, nil
}

// DeleteMember is idempotent. Members with issue history cannot be removed.
func (s *Service) DeleteMember(ctx context.Context, id int64) error {
	return apierr.FromStorage("delete member", s.store.DeleteMember(ctx, id))
}

// ===== fines =====

func (s *Service) ListFines(ctx context.Context) (*FineListResponse, error) {
	fs, err := s.store.ListFines(ctx, 0)
	if err != nil {
		return nil, apierr.FromStorage("list fines", err)
	}
	return toFineList(fs), nil
}

// MyFines lists the fines of the member behind id.
func (s *Service) MyFines(ctx context.Context, id auth.Identity) (*FineListResponse, error) {
	memberID, err := auth.LookupMemberID(ctx, s.db, id.Username)
	if errors.Is(err, auth.ErrMemberNotFound) {
		return nil, apierr.ErrNotFound("member account not found")
	}
	if err != nil {
		return nil, apierr.FromStorage("list fines", err)
	}
	fs, err := s.store.ListFines(ctx, memberID)
	if err != nil {
		return nil, apierr.FromStorage("list fines", err)
	}
	return toFineList(fs), nil
}

func (s *Service) FineForm(ctx context.Context) (*FineFormResponse, error) {
	ms, err := s.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	return &FineFormResponse{Members: ms}, nil
}

func (s *Service) CreateFine(ctx context.Context, req CreateFineRequest) (*FineResponse, error) {
	if req.MemberID <= 0 {
		return nil, apierr.ErrInvalid("member_id is required")
	}
	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	date := strings.TrimSpace(req.DateAssessed)
	if date == "" {
		date = s.clock.Now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, apierr.ErrInvalid("invalid date_assessed format, expected YYYY-MM-DD")
	}
	reason := strings.TrimSpace(req.Reason)

	id, err := s.store.CreateFine(ctx, req.MemberID, amount, reason, date)
	if err != nil {
		return nil, apierr.FromStorage("create fine", err)
	}
	return &FineResponse{
		ID:           id,
		MemberID:     req.MemberID,
		Amount:       amount.StringFixed(2),
		Reason:       reason,
		DateAssessed: date,
	}, nil
}

func (s *Service) DeleteFine(ctx context.Context, id int64) error {
	return apierr.FromStorage("delete fine", s.store.DeleteFine(ctx, id))
}

// ParseAmount parses a positive money amount with at most two fraction digits.
func ParseAmount(v string) (decimal.Decimal, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return decimal.Zero, apierr.ErrInvalid("amount is required")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, apierr.ErrInvalid("amount must be a decimal number")
	}
	if !d.IsPositive() {
		return decimal.Zero, apierr.ErrInvalid("amount must be greater than zero")
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, apierr.ErrInvalid("amount must have at most two decimal places")
	}
	if d.GreaterThanOrEqual(maxFineAmount) {
		return decimal.Zero, apierr.ErrInvalid("amount is too large")
	}
	return d, nil
}

// ---------- helpers ----------

func toMemberResponse(m Member) MemberResponse {
	return MemberResponse{ID: m.ID, Username: m.Username, Email: m.Email}
}

func toFineList(fs []Fine) *FineListResponse {
	out := &FineListResponse{Fines: make([]FineResponse, 0, len(fs))}
	total := decimal.Zero
	for _, f := range fs {
		out.Fines = append(out.Fines, FineResponse{
			ID:           f.ID,
			MemberID:     f.MemberID,
			Username:     f.MemberUsername,
			Amount:       f.Amount.StringFixed(2),
			Reason:       f.Reason,
			DateAssessed: f.DateAssessed.Format(dateLayout),
		})
		total = total.Add(f.Amount)
	}
	out.Total = total.StringFixed(2)
	return out
}
