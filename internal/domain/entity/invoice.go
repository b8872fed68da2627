package entity

import (
	"time"

	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Invoice is the immutable record of one generated PDF.
// Invoice numbers are not unique per user; ID preserves insertion order.
type Invoice struct {
	ID          uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Username    string           `gorm:"size:150;not null;index:idx_invoices_username_no" json:"-"`
	InvoiceNo   string           `gorm:"size:100;not null;index:idx_invoices_username_no" json:"invoice_no"`
	InvoiceType enum.InvoiceType `gorm:"size:20;not null;default:standard" json:"invoice_type"`
	ClientName  string           `gorm:"size:255" json:"client_name"`
	IssueDate   time.Time        `gorm:"not null" json:"issue_date"`
	DueDate     time.Time        `gorm:"not null" json:"due_date"`
	Total       decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"total"`
	Currency    string           `gorm:"size:8" json:"currency"`
	FilePath    string           `gorm:"size:500;not null" json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}
