package repository

import (
	"context"

	"github.com/sangkips/invoicer/internal/config"
	"github.com/sangkips/invoicer/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicer/internal/domain/repository"
)

type staticCredentialRepository struct {
	byUsername map[string]entity.Credential
}

// NewStaticCredentialRepository serves logins loaded from the credentials file
func NewStaticCredentialRepository(creds []config.Credential) domainRepo.CredentialRepository {
	m := make(map[string]entity.Credential, len(creds))
	for _, c := range creds {
		m[c.Username] = entity.Credential{
			Username:     c.Username,
			DisplayName:  c.DisplayName,
			PasswordHash: c.PasswordHash,
		}
	}
	return &staticCredentialRepository{byUsername: m}
}

func (r *staticCredentialRepository) GetByUsername(_ context.Context, username string) (*entity.Credential, error) {
	cred, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}
