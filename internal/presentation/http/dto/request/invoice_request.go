package request

import (
	"strings"
	"time"

	"github.com/sangkips/invoicer/internal/application/service"
	"github.com/sangkips/invoicer/internal/domain/calculator"
	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/sangkips/invoicer/internal/infrastructure/render"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of issue_date and due_date
const DateLayout = "2006-01-02"

// PartyRequest is the business or client block of the invoice form
type PartyRequest struct {
	Name    string `json:"name" binding:"max=255"`
	Address string `json:"address" binding:"max=1000"`
	TaxID   string `json:"tax_id" binding:"max=50"`
	Phone   string `json:"phone" binding:"max=50"`
}

// LineItemRequest is one row of the invoice form
type LineItemRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	HSNCode     string          `json:"hsn_code" binding:"max=20"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
}

// InvoiceRequest represents a preview or generation request
type InvoiceRequest struct {
	InvoiceType  enum.InvoiceType  `json:"invoice_type"`
	InvoiceNo    string            `json:"invoice_no" binding:"max=64,excludesall=/?#"`
	IssueDate    string            `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate      string            `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Company      PartyRequest      `json:"company"`
	Client       PartyRequest      `json:"client"`
	SaveClient   bool              `json:"save_client"`
	Items        []LineItemRequest `json:"items" binding:"dive"`
	Discount     decimal.Decimal   `json:"discount"`
	TaxRate      decimal.Decimal   `json:"tax_rate"`
	Shipping     decimal.Decimal   `json:"shipping"`
	PreviousDues decimal.Decimal   `json:"previous_dues"`
	PaymentNote  string            `json:"payment_note" binding:"max=2000"`
}

func (p PartyRequest) party() render.Party {
	return render.Party{
		Name:    strings.TrimSpace(p.Name),
		Address: strings.TrimSpace(p.Address),
		TaxID:   strings.TrimSpace(p.TaxID),
		Phone:   strings.TrimSpace(p.Phone),
	}
}

// ToInput converts the request into service input for username
func (r *InvoiceRequest) ToInput(username string) (*service.InvoiceInput, error) {
	var errs []apperror.FieldError

	issue, err := parseDate(r.IssueDate)
	if err != nil {
		errs = append(errs, apperror.FieldError{Field: "issue_date", Message: "must be a date in YYYY-MM-DD format"})
	}
	due, err := parseDate(r.DueDate)
	if err != nil {
		errs = append(errs, apperror.FieldError{Field: "due_date", Message: "must be a date in YYYY-MM-DD format"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	items := make([]calculator.LineItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = calculator.LineItem{
			Description: strings.TrimSpace(item.Description),
			HSNCode:     strings.TrimSpace(item.HSNCode),
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			TaxPercent:  item.TaxPercent,
		}
	}

	return &service.InvoiceInput{
		Username:    username,
		InvoiceType: r.InvoiceType,
		InvoiceNo:   strings.TrimSpace(r.InvoiceNo),
		IssueDate:   issue,
		DueDate:     due,
		Company:     r.Company.party(),
		Client:      r.Client.party(),
		SaveClient:  r.SaveClient,
		Items:       items,
		Adjustments: calculator.Adjustments{
			Discount:     r.Discount,
			TaxRate:      r.TaxRate,
			Shipping:     r.Shipping,
			PreviousDues: r.PreviousDues,
		},
		PaymentNote: strings.TrimSpace(r.PaymentNote),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}
