package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/library/internal/config"
	"github.com/Skotchmaster/library/internal/repo"
	"github.com/Skotchmaster/library/internal/testutil"
	"github.com/Skotchmaster/library/internal/tokens/redisstore"
)

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)

	store, closeFn, err := TokenStore(ctx, config.Config{TokenStore: config.TokenStoreSQL}, gdb)
	require.NoError(t, err)
	assert.IsType(t, &repo.GormRepo{}, store)
	require.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	store, closeFn, err = TokenStore(ctx, config.Config{TokenStore: config.TokenStoreRedis, RedisAddr: mr.Addr()}, gdb)
	require.NoError(t, err)
	assert.IsType(t, &redisstore.Store{}, store)
	require.NoError(t, closeFn())

	_, _, err = TokenStore(ctx, config.Config{TokenStore: "memcached"}, gdb)
	require.Error(t, err)
}
