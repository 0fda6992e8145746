package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/testutil"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	r := &GormRepo{DB: testutil.NewDB(t)}

	u := &models.User{Name: "Ana", Email: "Ana@Example.com", PasswordHash: "x"}
	require.NoError(t, r.CreateUser(ctx, u))
	require.NotZero(t, u.ID)
	assert.Equal(t, "ana@example.com", u.Email)

	dup := &models.User{Name: "Other", Email: "ana@example.com", PasswordHash: "y"}
	require.ErrorIs(t, r.CreateUser(ctx, dup), ErrConflict)

	got, err := r.GetUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Ana", got.Name)

	got, err = r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = r.GetUserByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetUserByID(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}
