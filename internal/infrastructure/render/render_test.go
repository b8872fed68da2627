package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/invoicer/internal/domain/calculator"
	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(t *testing.T, typ enum.InvoiceType) *Document {
	t.Helper()
	items := []calculator.LineItem{
		{Description: "Widget", HSNCode: "8409", Quantity: 2, Rate: decimal.NewFromInt(100), TaxPercent: decimal.NewFromInt(5)},
		{Description: "Gadget", Quantity: 1, Rate: decimal.NewFromInt(50)},
	}
	adj := calculator.Adjustments{}
	if typ == enum.InvoiceTypeStandard {
		adj.TaxRate = decimal.NewFromInt(10)
	}
	res, err := calculator.New(0).Calculate(typ, items, adj)
	require.NoError(t, err)

	return &Document{
		Company:     Party{Name: "Your Company Pvt Ltd", Address: "1234 Business Street\nCity, State - ZIP", TaxID: "29ABCDE1234F1Z5"},
		Client:      Party{Name: "Acme Corp", Address: "56 Green Park\nNew Delhi", TaxID: "07ABCDE1234F1Z9", Phone: "+91-9123456789"},
		InvoiceNo:   "INV-20240305",
		IssueDate:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC),
		PaymentNote: "Account No.: 9876543210\nIFSC: ABCD0123456",
		Totals:      res,
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New("", "₹")
	require.NoError(t, err)
	return r
}

func TestRenderDocument_Standard(t *testing.T) {
	html, err := newRenderer(t).RenderDocument(sampleDocument(t, enum.InvoiceTypeStandard))
	require.NoError(t, err)

	assert.Contains(t, html, "Acme Corp")
	assert.Contains(t, html, "05 Mar 2024")
	assert.Contains(t, html, "04 Apr 2024")
	assert.Contains(t, html, "₹250.00")
	assert.Contains(t, html, "₹25.00")
	assert.Contains(t, html, "₹275.00")
	assert.Contains(t, html, "Tax (10%)")
	assert.Contains(t, html, "1234 Business Street<br>City, State - ZIP")
	assert.Contains(t, html, "<td>8409</td>")
	assert.Contains(t, html, "<tr><td>1</td><td>Widget</td>")
	assert.Contains(t, html, "<tr><td>2</td><td>Gadget</td>")
	assert.Equal(t, 1, strings.Count(html, "<td>Subtotal</td>"))
}

func TestRenderDocument_LineTax(t *testing.T) {
	html, err := newRenderer(t).RenderDocument(sampleDocument(t, enum.InvoiceTypeLineTax))
	require.NoError(t, err)

	assert.Contains(t, html, "Tax Invoice")
	assert.Contains(t, html, "<th>Tax %</th>")
	// 2 x 100 x 1.05
	assert.Contains(t, html, "₹210.00")
	assert.NotContains(t, html, "Previous Dues")
}

func TestRender_EscapesUserText(t *testing.T) {
	doc := sampleDocument(t, enum.InvoiceTypeStandard)
	doc.Client.Name = "<script>alert(1)</script>"
	doc.Client.Address = "<b>bold</b>\nline two"
	doc.Totals.Lines[0].Description = `<img src=x onerror="boom">`

	html, err := newRenderer(t).RenderDocument(doc)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<b>bold</b>")
	assert.NotContains(t, html, "<img src=x")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "&lt;b&gt;bold&lt;/b&gt;<br>line two")
}

func TestRender_MissingField(t *testing.T) {
	r := newRenderer(t)
	fields, err := r.Fields(sampleDocument(t, enum.InvoiceTypeStandard))
	require.NoError(t, err)

	delete(fields, "gstin")
	delete(fields, "total")

	_, err = r.Render(fields)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrMissingField))
	assert.Contains(t, err.Error(), `"gstin"`)
}

func TestRender_CustomTemplateMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.html")
	require.NoError(t, os.WriteFile(path, []byte(`<p>{{.company_name}} {{.bank_name}}</p>`), 0o600))

	r, err := New(path, "$")
	require.NoError(t, err)

	fields, err := r.Fields(sampleDocument(t, enum.InvoiceTypeStandard))
	require.NoError(t, err)

	_, err = r.Render(fields)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrMissingField))
	assert.Contains(t, err.Error(), "bank_name")
}

func TestRender_LogoReference(t *testing.T) {
	doc := sampleDocument(t, enum.InvoiceTypeStandard)
	doc.LogoPath = "/var/lib/invoicer/logos/alice_logo.png"

	html, err := newRenderer(t).RenderDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, html, `<img src="/var/lib/invoicer/logos/alice_logo.png"`)

	doc.LogoPath = ""
	html, err = newRenderer(t).RenderDocument(doc)
	require.NoError(t, err)
	assert.NotContains(t, html, "<img")
}

func TestMultiline(t *testing.T) {
	assert.Equal(t, "a &amp; b<br>c", string(multiline("a & b\r\nc")))
}
