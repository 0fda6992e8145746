package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/library/internal/config"
	"github.com/Skotchmaster/library/internal/repo"
	"github.com/Skotchmaster/library/internal/tokens"
	"github.com/Skotchmaster/library/internal/tokens/redisstore"
)

// TokenStore builds the token backend selected by cfg.TokenStore. The returned
// close func releases backend resources and is never nil.
func TokenStore(ctx context.Context, cfg config.Config, db *gorm.DB) (tokens.Store, func() error, error) {
	switch cfg.TokenStore {
	case config.TokenStoreSQL:
		return &repo.GormRepo{DB: db}, func() error { return nil }, nil
	case config.TokenStoreRedis:
		s, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
}
