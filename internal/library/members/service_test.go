package members

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db/dbtest"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc := NewService(conn, auth.NewStore(conn))
	svc.clock = fixedClock{t: time.Date(2025, 4, 2, 23, 0, 0, 0, time.UTC)}
	return svc, conn
}

func TestCreateMemberHashesPassword(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	m, err := svc.CreateMember(ctx, CreateMemberRequest{Username: "alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", m.Username)

	var stored string
	require.NoError(t, conn.QueryRow(`SELECT password FROM Member WHERE id = ?`, m.ID).Scan(&stored))
	assert.NotEqual(t, "p1", stored)
	assert.True(t, auth.VerifyPassword(stored, "p1"))

	_, err = svc.CreateMember(ctx, CreateMemberRequest{Username: "bob", Email: "b@x.com"})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}

func TestUpdateMember(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	m, err := svc.CreateMember(ctx, CreateMemberRequest{Username: "alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	var before string
	require.NoError(t, conn.QueryRow(`SELECT password FROM Member WHERE id = ?`, m.ID).Scan(&before))

	got, err := svc.UpdateMember(ctx, m.ID, UpdateMemberRequest{Username: "alice2", Email: "a2@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)

	var after string
	require.NoError(t, conn.QueryRow(`SELECT password FROM Member WHERE id = ?`, m.ID).Scan(&after))
	assert.Equal(t, before, after, "blank password keeps the stored hash")

	_, err = svc.UpdateMember(ctx, m.ID, UpdateMemberRequest{Username: "alice2", Email: "a2@x.com", Password: "new"})
	require.NoError(t, err)
	require.NoError(t, conn.QueryRow(`SELECT password FROM Member WHERE id = ?`, m.ID).Scan(&after))
	assert.True(t, auth.VerifyPassword(after, "new"))

	_, err = svc.UpdateMember(ctx, 999, UpdateMemberRequest{Username: "x", Email: "x@x.com"})
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))

	_, err = svc.UpdateMember(ctx, m.ID, UpdateMemberRequest{Username: "x", Email: "nope"})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}

func TestDeleteMemberIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	m, err := svc.CreateMember(ctx, CreateMemberRequest{Username: "alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMember(ctx, m.ID))
	require.NoError(t, svc.DeleteMember(ctx, m.ID))

	_, err = svc.GetMember(ctx, m.ID)
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
}

func TestDeleteMemberWithIssueHistory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	m, err := svc.CreateMember(ctx, CreateMemberRequest{Username: "alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	book := dbtest.MustExec(t, conn, `INSERT INTO Book (title, quantity) VALUES ('Dune', 1)`)
	dbtest.MustExec(t, conn, `INSERT INTO Issued_Books (book_id, member_id, issue_date, return_date, returned) VALUES (?, ?, '2025-03-01', '2025-03-15', 1)`, book, m.ID)

	require.NoError(t, svc.DeleteMember(ctx, m.ID))

	_, err = svc.GetMember(ctx, m.ID)
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
	assert.Equal(t, 1, dbtest.QueryInt(t, conn, `SELECT COUNT(*) FROM Issued_Books WHERE member_id = ?`, m.ID))
}

func TestDuplicateMemberIsConflict(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	svc := NewService(conn, auth.NewStore(conn))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO Member`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err = svc.CreateMember(context.Background(), CreateMemberRequest{Username: "alice", Email: "a@x.com", Password: "p1"})
	assert.Equal(t, apierr.CodeConflict, apierr.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFines(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice, err := svc.CreateMember(ctx, CreateMemberRequest{Username: "alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	bob, err := svc.CreateMember(ctx, CreateMemberRequest{Username: "bob", Email: "b@x.com", Password: "p1"})
	require.NoError(t, err)

	f, err := svc.CreateFine(ctx, CreateFineRequest{MemberID: alice.ID, Amount: "12.5", Reason: " late "})
	require.NoError(t, err)
	assert.Equal(t, "12.50", f.Amount)
	assert.Equal(t, "late", f.Reason)
	assert.Equal(t, "2025-04-02", f.DateAssessed, "date defaults to today")

	_, err = svc.CreateFine(ctx, CreateFineRequest{MemberID: alice.ID, Amount: "0.10", DateAssessed: "2025-01-15"})
	require.NoError(t, err)
	_, err = svc.CreateFine(ctx, CreateFineRequest{MemberID: bob.ID, Amount: "3", DateAssessed: "2025-02-01"})
	require.NoError(t, err)

	all, err := svc.ListFines(ctx)
	require.NoError(t, err)
	require.Len(t, all.Fines, 3)
	assert.Equal(t, "2025-04-02", all.Fines[0].DateAssessed)
	assert.Equal(t, "15.60", all.Total)

	mine, err := svc.MyFines(ctx, auth.Identity{Username: "alice", Role: auth.RoleMember})
	require.NoError(t, err)
	require.Len(t, mine.Fines, 2)
	assert.Equal(t, "12.60", mine.Total)
	for _, fine := range mine.Fines {
		assert.Equal(t, "alice", fine.Username)
	}

	require.NoError(t, svc.DeleteFine(ctx, f.ID))
	require.NoError(t, svc.DeleteFine(ctx, f.ID))
	mine, err = svc.MyFines(ctx, auth.Identity{Username: "alice", Role: auth.RoleMember})
	require.NoError(t, err)
	assert.Len(t, mine.Fines, 1)

	_, err = svc.MyFines(ctx, auth.Identity{Username: "ghost", Role: auth.RoleMember})
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
}

func TestCreateFineValidation(t *testing.T) {
	svc, _ := newTestService(t)
	for _, req := range []CreateFineRequest{
		{MemberID: 0, Amount: "1"},
		{MemberID: 1, Amount: ""},
		{MemberID: 1, Amount: "abc"},
		{MemberID: 1, Amount: "0"},
		{MemberID: 1, Amount: "-2"},
		{MemberID: 1, Amount: "1.005"},
		{MemberID: 1, Amount: "100000000"},
		{MemberID: 1, Amount: "1", DateAssessed: "02/04/2025"},
	} {
		_, err := svc.CreateFine(context.Background(), req)
		assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err), "%+v", req)
	}
}

func TestParseAmountKeepsExactCents(t *testing.T) {
	d, err := ParseAmount("0.1")
	require.NoError(t, err)
	sum := d.Add(decimal.RequireFromString("0.2"))
	assert.True(t, sum.Equal(decimal.RequireFromString("0.3")))

	d, err = ParseAmount(" 99999999.99 ")
	require.NoError(t, err)
	assert.Equal(t, "99999999.99", d.StringFixed(2))
}
