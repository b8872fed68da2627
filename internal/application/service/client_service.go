package service

import (
	"context"
	"strings"

	"github.com/sangkips/invoicer/internal/domain/entity"
	"github.com/sangkips/invoicer/internal/domain/repository"
	"github.com/sangkips/invoicer/pkg/apperror"
	"go.uber.org/zap"
)

// ClientService handles saved client operations
type ClientService struct {
	clientRepo repository.ClientRepository
	log        *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository, log *zap.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, log: log}
}

// SaveClientInput represents the save client input
type SaveClientInput struct {
	Username string
	Name     string
	Address  string
	TaxID    string
	Phone    string
}

// SaveClient stores a new client; an existing (user, name) pair is left untouched
func (s *ClientService) SaveClient(ctx context.Context, input *SaveClientInput) (*entity.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "is required"}})
	}

	client := &entity.Client{
		Username: input.Username,
		Name:     name,
		Address:  input.Address,
		TaxID:    input.TaxID,
		Phone:    input.Phone,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.log.Info("client saved", zap.String("username", input.Username), zap.String("client", name))
	return client, nil
}

// GetClient retrieves a saved client by name
func (s *ClientService) GetClient(ctx context.Context, username, name string) (*entity.Client, error) {
	client, err := s.clientRepo.GetByName(ctx, username, name)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients returns the user's client names in ascending order
func (s *ClientService) ListClients(ctx context.Context, username string) ([]string, error) {
	return s.clientRepo.ListNames(ctx, username)
}
