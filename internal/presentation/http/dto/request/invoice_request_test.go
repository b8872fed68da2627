package request

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
	"invoice_type": "line_tax",
	"invoice_no": " INV-7 ",
	"issue_date": "2024-03-01",
	"due_date": "2024-03-15",
	"client": {"name": " Acme Corp ", "address": "56 Green Park"},
	"items": [
		{"description": "Widget", "hsn_code": "8471", "quantity": 2, "rate": "100.50", "tax_percent": 18},
		{"description": "Gadget", "quantity": 1, "rate": 50}
	],
	"payment_note": "Bank: ABCD"
}`

func TestInvoiceRequest_ToInput(t *testing.T) {
	var req InvoiceRequest
	require.NoError(t, json.Unmarshal([]byte(sample), &req))

	in, err := req.ToInput("alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", in.Username)
	assert.Equal(t, enum.InvoiceTypeLineTax, in.InvoiceType)
	assert.Equal(t, "INV-7", in.InvoiceNo)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), in.IssueDate)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), in.DueDate)
	assert.Equal(t, "Acme Corp", in.Client.Name)
	require.Len(t, in.Items, 2)
	assert.Equal(t, "100.5", in.Items[0].Rate.String())
	assert.Equal(t, "18", in.Items[0].TaxPercent.String())
	assert.Equal(t, "8471", in.Items[0].HSNCode)
	assert.True(t, in.Adjustments.Discount.IsZero())
}

func TestInvoiceRequest_ToInputDates(t *testing.T) {
	req := InvoiceRequest{IssueDate: "01/03/2024", DueDate: "2024-02-30"}

	_, err := req.ToInput("alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInputValidation))
	assert.Len(t, apperror.GetAppError(err).Errors, 2)

	in, err := (&InvoiceRequest{}).ToInput("alice")
	require.NoError(t, err)
	assert.True(t, in.IssueDate.IsZero())
}

func TestInvoiceRequest_UnknownType(t *testing.T) {
	var req InvoiceRequest
	err := json.Unmarshal([]byte(`{"invoice_type": "gst"}`), &req)
	assert.Error(t, err)
}
