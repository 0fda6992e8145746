package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/tokens"
)

func setupRedisTest(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	store, err := Dial(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func newRow(digest string, exp *time.Time) *models.PersonalAccessToken {
	return &models.PersonalAccessToken{
		TokenableType: models.TokenableUsers,
		TokenableID:   4,
		Name:          tokens.NameAccess,
		Token:         digest,
		Abilities:     []string{tokens.AbilityAll},
		ExpiresAt:     exp,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func TestRedisStore(t *testing.T) {
	store, _ := setupRedisTest(t)
	ctx := context.Background()

	t.Run("FindUnknown", func(t *testing.T) {
		_, err := store.FindByToken(ctx, "missing")
		assert.ErrorIs(t, err, tokens.ErrNotFound)
	})

	t.Run("CreateAndFind", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		row := newRow("digest-a", &exp)
		require.NoError(t, store.Create(ctx, row))
		require.NotZero(t, row.ID)

		got, err := store.FindByToken(ctx, "digest-a")
		require.NoError(t, err)
		assert.Equal(t, row.ID, got.ID)
		assert.Equal(t, "digest-a", got.Token)
		assert.Equal(t, uint(4), got.TokenableID)
		assert.Equal(t, []string{tokens.AbilityAll}, got.Abilities)
		require.NotNil(t, got.ExpiresAt)
		assert.True(t, exp.Equal(*got.ExpiresAt))
	})

	t.Run("DuplicateDigest", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, newRow("digest-dup", nil)))
		err := store.Create(ctx, newRow("digest-dup", nil))
		assert.ErrorIs(t, err, tokens.ErrDuplicateToken)
	})

	t.Run("Delete", func(t *testing.T) {
		row := newRow("digest-del", nil)
		require.NoError(t, store.Create(ctx, row))

		require.NoError(t, store.Delete(ctx, row.ID))
		_, err := store.FindByToken(ctx, "digest-del")
		assert.ErrorIs(t, err, tokens.ErrNotFound)

		assert.ErrorIs(t, store.Delete(ctx, row.ID), tokens.ErrNotFound)
	})
}

func TestRedisStore_DeleteExpired(t *testing.T) {
	store, _ := setupRedisTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	require.NoError(t, store.Create(ctx, newRow("old", &past)))
	require.NoError(t, store.Create(ctx, newRow("new", &future)))
	require.NoError(t, store.Create(ctx, newRow("forever", nil)))

	n, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.FindByToken(ctx, "old")
	assert.ErrorIs(t, err, tokens.ErrNotFound)
	_, err = store.FindByToken(ctx, "new")
	assert.NoError(t, err)
	_, err = store.FindByToken(ctx, "forever")
	assert.NoError(t, err)
}

func TestRedisStore_LazyExpiryThroughService(t *testing.T) {
	store, mr := setupRedisTest(t)
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	svc := tokens.NewService(store)
	svc.Now = func() time.Time { return now }

	nt, err := svc.Issue(ctx, 9, tokens.NameAccess, []string{tokens.AbilityAll}, 5*time.Minute)
	require.NoError(t, err)

	// no key TTL: real time passing in redis does not evict the row
	mr.FastForward(time.Hour)
	_, err = svc.Verify(ctx, nt.PlainText, "")
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	_, err = svc.Verify(ctx, nt.PlainText, "")
	assert.ErrorIs(t, err, tokens.ErrTokenExpired)

	_, err = store.FindByToken(ctx, tokens.HashToken(nt.PlainText))
	assert.ErrorIs(t, err, tokens.ErrNotFound)
}

func TestDial_Unreachable(t *testing.T) {
	_, err := Dial(context.Background(), "127.0.0.1:1", "", 0)
	require.Error(t, err)
}

var _ tokens.Store = (*Store)(nil)
