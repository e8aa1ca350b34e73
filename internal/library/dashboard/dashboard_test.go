package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db/dbtest"
)

func init() { gin.SetMode(gin.TestMode) }

func TestStatsPerRole(t *testing.T) {
	conn := dbtest.Open(t)
	book := dbtest.MustExec(t, conn, `INSERT INTO Book (title, quantity) VALUES ('A', 3)`)
	dbtest.MustExec(t, conn, `INSERT INTO Book (title, quantity) VALUES ('B', 1)`)
	alice := dbtest.MustExec(t, conn, `INSERT INTO Member (username, email, password) VALUES ('alice', 'a@x.com', 'x')`)
	bob := dbtest.MustExec(t, conn, `INSERT INTO Member (username, email, password) VALUES ('bob', 'b@x.com', 'x')`)
	dbtest.MustExec(t, conn, `INSERT INTO Reservation (book_id, member_id, reservation_date) VALUES (?, ?, '2025-03-01')`, book, alice)
	dbtest.MustExec(t, conn, `INSERT INTO Reservation (book_id, member_id, reservation_date, status) VALUES (?, ?, '2025-03-01', 'cancelled')`, book, alice)
	dbtest.MustExec(t, conn, `INSERT INTO Reservation (book_id, member_id, reservation_date) VALUES (?, ?, '2025-03-02')`, book, bob)
	dbtest.MustExec(t, conn, `INSERT INTO Fine (member_id, amount, reason, date_assessed) VALUES (?, '1.50', 'late', '2025-03-03')`, bob)

	svc := NewService(conn)
	ctx := context.Background()

	admin, err := svc.Stats(ctx, auth.Identity{Username: "root", Role: auth.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, Stats{BooksCount: 2, MembersCount: 2, ReservationsCount: 2, FinesCount: 1}, admin)

	emp, err := svc.Stats(ctx, auth.Identity{Username: "emp", Role: auth.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, Stats{BooksCount: 2, ReservationsCount: 2, FinesCount: 1}, emp)

	mine, err := svc.Stats(ctx, auth.Identity{Username: "alice", Role: auth.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, Stats{BooksCount: 2, ReservationsCount: 1, FinesCount: 0}, mine)
}

func TestDashboardDegradesToZero(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM Book`).WillReturnError(errors.New("server has gone away"))
	mock.ExpectRollback()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetSession(c, auth.Session{Identity: auth.Identity{Username: "root", Role: auth.RoleAdmin}})
		c.Next()
	})
	RegisterRoutes(r, NewService(conn))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Degraded)
	assert.Equal(t, Stats{}, body.Stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
