package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/tokens"
)

// Create, FindByToken, Delete and DeleteExpired make GormRepo a tokens.Store.

func (r *GormRepo) Create(ctx context.Context, t *models.PersonalAccessToken) error {
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return tokens.ErrDuplicateToken
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *GormRepo) FindByToken(ctx context.Context, digest string) (*models.PersonalAccessToken, error) {
	var t models.PersonalAccessToken
	if err := r.DB.WithContext(ctx).Where("token = ?", digest).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tokens.ErrNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &t, nil
}

func (r *GormRepo) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.PersonalAccessToken{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return tokens.ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", before).
		Delete(&models.PersonalAccessToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// TokensForOwner lists a user's live and expired tokens, newest first.
func (r *GormRepo) TokensForOwner(ctx context.Context, ownerID uint) ([]models.PersonalAccessToken, error) {
	var out []models.PersonalAccessToken
	err := r.DB.WithContext(ctx).
		Where("tokenable_type = ? AND tokenable_id = ?", models.TokenableUsers, ownerID).
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return out, nil
}
