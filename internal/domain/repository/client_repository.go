package repository

import (
	"context"

	"github.com/sangkips/invoicer/internal/domain/entity"
)

// ClientRepository defines the interface for saved client operations
type ClientRepository interface {
	// Create fails with a duplicate client error if (username, name) exists
	Create(ctx context.Context, client *entity.Client) error
	// GetByName returns nil, nil when no client matches
	GetByName(ctx context.Context, username, name string) (*entity.Client, error)
	// ListNames returns the user's client names ordered by name
	ListNames(ctx context.Context, username string) ([]string, error)
}
