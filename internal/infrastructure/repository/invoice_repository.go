package repository

import (
	"context"
	"errors"

	"github.com/sangkips/invoicer/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicer/internal/domain/repository"
	"github.com/sangkips/invoicer/internal/infrastructure/database"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/sangkips/invoicer/pkg/pagination"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	store *database.Store
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(store *database.Store) domainRepo.InvoiceRepository {
	return &invoiceRepository{store: store}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	err := r.store.Write(ctx, func(tx *gorm.DB) error {
		return tx.Create(invoice).Error
	})
	if err != nil {
		return apperror.NewStoreWriteError(err)
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, username string) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := r.store.DB.WithContext(ctx).
		Where("username = ?", username).
		Order("id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) ListPage(ctx context.Context, username string, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.store.DB.WithContext(ctx).Model(&entity.Invoice{}).Where("username = ?", username)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("id ASC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) GetLatestByNumber(ctx context.Context, username, invoiceNo string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.store.DB.WithContext(ctx).
		Where("username = ? AND invoice_no = ?", username, invoiceNo).
		Order("id DESC").
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) CountByNumber(ctx context.Context, username, invoiceNo string) (int64, error) {
	var count int64
	err := r.store.DB.WithContext(ctx).Model(&entity.Invoice{}).
		Where("username = ? AND invoice_no = ?", username, invoiceNo).
		Count(&count).Error
	return count, err
}
