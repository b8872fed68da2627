package repository

import (
	"context"
	"errors"

	"github.com/sangkips/invoicer/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicer/internal/domain/repository"
	"github.com/sangkips/invoicer/internal/infrastructure/database"
	"github.com/sangkips/invoicer/pkg/apperror"
	"gorm.io/gorm"
)

type clientRepository struct {
	store *database.Store
}

// NewClientRepository creates a new client repository
func NewClientRepository(store *database.Store) domainRepo.ClientRepository {
	return &clientRepository{store: store}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	err := r.store.Write(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.Client{}).
			Where("username = ? AND name = ?", client.Username, client.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.NewDuplicateClientError(client.Name)
		}
		return tx.Create(client).Error
	})

	switch {
	case err == nil:
		return nil
	case apperror.IsAppError(err):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.NewDuplicateClientError(client.Name)
	default:
		return apperror.NewStoreWriteError(err)
	}
}

func (r *clientRepository) GetByName(ctx context.Context, username, name string) (*entity.Client, error) {
	var client entity.Client
	err := r.store.DB.WithContext(ctx).
		First(&client, "username = ? AND name = ?", username, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) ListNames(ctx context.Context, username string) ([]string, error) {
	names := []string{}
	err := r.store.DB.WithContext(ctx).Model(&entity.Client{}).
		Where("username = ?", username).
		Order("name ASC").
		Pluck("name", &names).Error
	return names, err
}
