package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/invoicer/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicer/internal/domain/repository"
	"github.com/sangkips/invoicer/internal/infrastructure/database"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	store *database.Store
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(store *database.Store) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{store: store}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key, username string) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.store.DB.WithContext(ctx).
		Where("key = ? AND username = ?", key, username).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.store.Write(ctx, func(tx *gorm.DB) error {
		return tx.Create(ikey).Error
	})
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	return r.store.Write(ctx, func(tx *gorm.DB) error {
		return tx.Where("expires_at < ?", time.Now()).
			Delete(&entity.IdempotencyKey{}).Error
	})
}
