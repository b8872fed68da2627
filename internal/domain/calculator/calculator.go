// Package calculator computes invoice line amounts and totals.
//
// Two formulas are supported. InvoiceTypeStandard sums quantity × rate per
// line and applies discount, tax rate, shipping and previous dues at invoice
// level. InvoiceTypeLineTax applies each line's own tax percentage and has no
// invoice-level adjustments. Every component is rounded half away from zero
// to two places before it is summed, so the printed figures always add up.
package calculator

import (
	"fmt"

	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DefaultMaxLineItems matches the row limit of the invoice form
const DefaultMaxLineItems = 10

const places = 2

var hundred = decimal.NewFromInt(100)

// LineItem is one billable row as entered
type LineItem struct {
	Description string          `json:"description"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
}

// Adjustments are invoice-level amounts; only InvoiceTypeStandard uses them
type Adjustments struct {
	Discount     decimal.Decimal `json:"discount"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Shipping     decimal.Decimal `json:"shipping"`
	PreviousDues decimal.Decimal `json:"previous_dues"`
}

func (a Adjustments) isZero() bool {
	return a.Discount.IsZero() && a.TaxRate.IsZero() && a.Shipping.IsZero() && a.PreviousDues.IsZero()
}

// Line is a calculated row. Amount excludes tax; Total includes it.
type Line struct {
	LineItem
	Amount decimal.Decimal `json:"amount"`
	Tax    decimal.Decimal `json:"tax"`
	Total  decimal.Decimal `json:"total"`
}

// Result holds the calculated invoice figures
type Result struct {
	Type         enum.InvoiceType `json:"invoice_type"`
	Lines        []Line           `json:"lines"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Discount     decimal.Decimal  `json:"discount"`
	TaxRate      decimal.Decimal  `json:"tax_rate"`
	Tax          decimal.Decimal  `json:"tax"`
	Shipping     decimal.Decimal  `json:"shipping"`
	PreviousDues decimal.Decimal  `json:"previous_dues"`
	Total        decimal.Decimal  `json:"total"`
}

// Calculator validates input and computes totals
type Calculator struct {
	maxItems int
}

// New creates a calculator accepting at most maxItems line items
func New(maxItems int) *Calculator {
	if maxItems < 1 {
		maxItems = DefaultMaxLineItems
	}
	return &Calculator{maxItems: maxItems}
}

// MaxItems returns the configured line item limit
func (c *Calculator) MaxItems() int {
	return c.maxItems
}

// Calculate validates items and adjustments for typ and returns the totals.
// Invalid input yields an input validation AppError listing every offending field.
func (c *Calculator) Calculate(typ enum.InvoiceType, items []LineItem, adj Adjustments) (*Result, error) {
	if errs := c.validate(typ, items, adj); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	var res *Result
	switch typ {
	case enum.InvoiceTypeLineTax:
		res = calculateLineTax(items)
	default:
		res = calculateStandard(items, adj)
	}

	if res.Discount.GreaterThan(res.Subtotal) {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "discount", Message: "must not exceed subtotal"},
		})
	}
	return res, nil
}

func calculateStandard(items []LineItem, adj Adjustments) *Result {
	res := &Result{
		Type:         enum.InvoiceTypeStandard,
		Lines:        make([]Line, 0, len(items)),
		Subtotal:     decimal.Zero,
		Discount:     adj.Discount.Round(places),
		TaxRate:      adj.TaxRate,
		Shipping:     adj.Shipping.Round(places),
		PreviousDues: adj.PreviousDues.Round(places),
	}

	for _, item := range items {
		amount := decimal.NewFromInt(item.Quantity).Mul(item.Rate).Round(places)
		res.Lines = append(res.Lines, Line{LineItem: item, Amount: amount, Tax: decimal.Zero, Total: amount})
		res.Subtotal = res.Subtotal.Add(amount)
	}

	taxable := res.Subtotal.Sub(res.Discount)
	res.Tax = taxable.Mul(adj.TaxRate).Div(hundred).Round(places)
	res.Total = taxable.Add(res.Tax).Add(res.Shipping).Add(res.PreviousDues)
	return res
}

func calculateLineTax(items []LineItem) *Result {
	res := &Result{
		Type:         enum.InvoiceTypeLineTax,
		Lines:        make([]Line, 0, len(items)),
		Subtotal:     decimal.Zero,
		Discount:     decimal.Zero,
		TaxRate:      decimal.Zero,
		Tax:          decimal.Zero,
		Shipping:     decimal.Zero,
		PreviousDues: decimal.Zero,
		Total:        decimal.Zero,
	}

	for _, item := range items {
		gross := decimal.NewFromInt(item.Quantity).Mul(item.Rate)
		amount := gross.Round(places)
		total := gross.Mul(hundred.Add(item.TaxPercent)).Div(hundred).Round(places)
		tax := total.Sub(amount)

		res.Lines = append(res.Lines, Line{LineItem: item, Amount: amount, Tax: tax, Total: total})
		res.Subtotal = res.Subtotal.Add(amount)
		res.Tax = res.Tax.Add(tax)
		res.Total = res.Total.Add(total)
	}
	return res
}

func (c *Calculator) validate(typ enum.InvoiceType, items []LineItem, adj Adjustments) []apperror.FieldError {
	var errs []apperror.FieldError

	if !typ.Valid() {
		errs = append(errs, apperror.FieldError{Field: "invoice_type", Message: "must be standard or line_tax"})
	}

	switch {
	case len(items) == 0:
		errs = append(errs, apperror.FieldError{Field: "items", Message: "at least one line item is required"})
	case len(items) > c.maxItems:
		errs = append(errs, apperror.FieldError{Field: "items", Message: fmt.Sprintf("at most %d line items are allowed", c.maxItems)})
	}

	for i, item := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if item.Quantity < 1 {
			errs = append(errs, apperror.FieldError{Field: prefix + "quantity", Message: "must be at least 1"})
		}
		if item.Rate.IsNegative() {
			errs = append(errs, apperror.FieldError{Field: prefix + "rate", Message: "must not be negative"})
		}
		if item.TaxPercent.IsNegative() {
			errs = append(errs, apperror.FieldError{Field: prefix + "tax_percent", Message: "must not be negative"})
		}
	}

	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"discount", adj.Discount},
		{"tax_rate", adj.TaxRate},
		{"shipping", adj.Shipping},
		{"previous_dues", adj.PreviousDues},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			errs = append(errs, apperror.FieldError{Field: a.field, Message: "must not be negative"})
		}
	}

	if typ == enum.InvoiceTypeLineTax && !adj.isZero() {
		errs = append(errs, apperror.FieldError{Field: "adjustments", Message: "discount, tax rate, shipping and previous dues are not used by line_tax invoices"})
	}

	return errs
}
