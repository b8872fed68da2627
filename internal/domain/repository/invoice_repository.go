package repository

import (
	"context"

	"github.com/sangkips/invoicer/internal/domain/entity"
	"github.com/sangkips/invoicer/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice record operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// List returns all of the user's invoices in insertion order
	List(ctx context.Context, username string) ([]entity.Invoice, error)
	// ListPage returns one page of the user's invoices in insertion order
	ListPage(ctx context.Context, username string, params *pagination.PaginationParams) ([]entity.Invoice, int64, error)
	// GetLatestByNumber returns the newest record with invoiceNo, or nil, nil
	GetLatestByNumber(ctx context.Context, username, invoiceNo string) (*entity.Invoice, error)
	CountByNumber(ctx context.Context, username, invoiceNo string) (int64, error)
}
