// Package render turns invoice data into an HTML document.
//
// Rendering is two steps. Fields flattens a Document into the named values the
// template expects, building the item rows through an escaped sub-template.
// Render checks that every required field is present and executes the page
// template with missingkey=error. All values pass through html/template, so
// user text can never change the document structure.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/sangkips/invoicer/internal/domain/calculator"
	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DateLayout is the printed date format, e.g. "05 Mar 2024"
const DateLayout = "02 Jan 2006"

//go:embed templates/invoice.html
var templateFS embed.FS

// RequiredFields lists the placeholders every invoice template may rely on
var RequiredFields = []string{
	"company_name",
	"company_address",
	"gstin",
	"invoice_no",
	"invoice_date",
	"due_date",
	"client_name",
	"client_address",
	"client_phone",
	"client_gstin",
	"item_rows",
	"subtotal",
	"discount",
	"tax_rate",
	"tax",
	"shipping",
	"dues",
	"total",
	"payment_note",
	"invoice_type",
}

// Fields is the flat value mapping handed to the page template
type Fields map[string]any

// Party is a business or client block on the invoice
type Party struct {
	Name    string
	Address string
	TaxID   string
	Phone   string
}

// Document is everything needed to print one invoice
type Document struct {
	Company     Party
	Client      Party
	InvoiceNo   string
	IssueDate   time.Time
	DueDate     time.Time
	PaymentNote string
	LogoPath    string
	Totals      *calculator.Result
}

// Renderer executes the invoice page template
type Renderer struct {
	page           *template.Template
	rows           *template.Template
	currencySymbol string
}

var funcs = template.FuncMap{
	"multiline": multiline,
}

const rowsTemplate = `{{range $i, $l := .Lines}}<tr><td>{{inc $i}}</td><td>{{$l.Description}}</td><td>{{$l.HSNCode}}</td><td>{{$l.Quantity}}</td><td>{{money $l.Rate}}</td>{{if $.LineTax}}<td>{{$l.TaxPercent.String}}</td><td>{{money $l.Total}}</td>{{else}}<td>{{money $l.Amount}}</td>{{end}}</tr>
{{end}}`

// New parses the page template at templatePath, or the embedded default when empty
func New(templatePath, currencySymbol string) (*Renderer, error) {
	var (
		src []byte
		err error
	)
	if templatePath != "" {
		src, err = os.ReadFile(templatePath)
	} else {
		src, err = templateFS.ReadFile("templates/invoice.html")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice template: %w", err)
	}

	page, err := template.New("invoice").Funcs(funcs).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}

	r := &Renderer{page: page, currencySymbol: currencySymbol}
	r.rows = template.Must(template.New("item_rows").Funcs(template.FuncMap{
		"inc":   func(i int) int { return i + 1 },
		"money": r.Money,
	}).Parse(rowsTemplate))

	return r, nil
}

// Money formats an amount with the currency symbol and two decimals
func (r *Renderer) Money(d decimal.Decimal) string {
	return r.currencySymbol + d.StringFixed(2)
}

// Fields flattens doc into the template value mapping
func (r *Renderer) Fields(doc *Document) (Fields, error) {
	if doc.Totals == nil {
		return nil, apperror.NewMissingFieldError("item_rows")
	}
	res := doc.Totals

	var rows bytes.Buffer
	err := r.rows.Execute(&rows, struct {
		Lines   []calculator.Line
		LineTax bool
	}{res.Lines, res.Type == enum.InvoiceTypeLineTax})
	if err != nil {
		return nil, fmt.Errorf("failed to render item rows: %w", err)
	}

	return Fields{
		"company_name":    doc.Company.Name,
		"company_address": doc.Company.Address,
		"gstin":           doc.Company.TaxID,
		"invoice_no":      doc.InvoiceNo,
		"invoice_date":    doc.IssueDate.Format(DateLayout),
		"due_date":        doc.DueDate.Format(DateLayout),
		"client_name":     doc.Client.Name,
		"client_address":  doc.Client.Address,
		"client_phone":    doc.Client.Phone,
		"client_gstin":    doc.Client.TaxID,
		"item_rows":       template.HTML(rows.String()),
		"subtotal":        r.Money(res.Subtotal),
		"discount":        r.Money(res.Discount),
		"tax_rate":        res.TaxRate.String(),
		"tax":             r.Money(res.Tax),
		"shipping":        r.Money(res.Shipping),
		"dues":            r.Money(res.PreviousDues),
		"total":           r.Money(res.Total),
		"payment_note":    doc.PaymentNote,
		"invoice_type":    res.Type.String(),
		"logo_path":       doc.LogoPath,
	}, nil
}

// Render executes the page template. A missing required field yields a
// missing field AppError naming the first absent key.
func (r *Renderer) Render(fields Fields) (string, error) {
	for _, key := range RequiredFields {
		if _, ok := fields[key]; !ok {
			return "", apperror.NewMissingFieldError(key)
		}
	}

	var out bytes.Buffer
	if err := r.page.Execute(&out, map[string]any(fields)); err != nil {
		if key, ok := missingKey(err); ok {
			return "", apperror.NewMissingFieldError(key)
		}
		return "", fmt.Errorf("failed to execute invoice template: %w", err)
	}
	return out.String(), nil
}

// RenderDocument is Fields followed by Render
func (r *Renderer) RenderDocument(doc *Document) (string, error) {
	fields, err := r.Fields(doc)
	if err != nil {
		return "", err
	}
	return r.Render(fields)
}

// multiline escapes each line of s and joins them with <br>
func multiline(v any) template.HTML {
	s := strings.ReplaceAll(fmt.Sprint(v), "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(lines, "<br>"))
}

// missingKey extracts the key from text/template's "map has no entry for key" error
func missingKey(err error) (string, bool) {
	const marker = `map has no entry for key "`
	msg := err.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	rest := msg[i+len(marker):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}
