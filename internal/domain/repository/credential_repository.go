package repository

import (
	"context"

	"github.com/sangkips/invoicer/internal/domain/entity"
)

// CredentialRepository looks up configured logins
type CredentialRepository interface {
	// GetByUsername returns nil, nil for unknown users
	GetByUsername(ctx context.Context, username string) (*entity.Credential, error)
}
