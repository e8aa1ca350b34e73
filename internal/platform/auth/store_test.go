package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/db/dbtest"
)

func TestStoreLooksUpPerRoleTable(t *testing.T) {
	conn := dbtest.Open(t)
	dbtest.MustExec(t, conn, `INSERT INTO Admin (username, password) VALUES ('root', 'x')`)
	store := NewStore(conn)
	ctx := context.Background()

	a, err := store.GetByUsername(ctx, RoleAdmin, "root")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "x", a.Password)

	m, err := store.GetByUsername(ctx, RoleMember, "root")
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = store.GetByUsername(ctx, Role("Vendor"), "root")
	assert.Error(t, err)
}

func TestCreateMemberAndLookup(t *testing.T) {
	conn := dbtest.Open(t)
	store := NewStore(conn)
	ctx := context.Background()

	id, err := store.CreateMember(ctx, "dave", "dave@example.com", "hash")
	require.NoError(t, err)

	got, err := LookupMemberID(ctx, conn, "dave")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = LookupMemberID(ctx, conn, "ghost")
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = store.CreateMember(ctx, "dave", "other@example.com", "hash")
	assert.Error(t, err, "usernames are unique")
}
