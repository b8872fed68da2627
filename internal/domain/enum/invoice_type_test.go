package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvoiceType(t *testing.T) {
	typ, err := ParseInvoiceType(" Line_Tax ")
	require.NoError(t, err)
	assert.Equal(t, InvoiceTypeLineTax, typ)

	_, err = ParseInvoiceType("proforma")
	assert.Error(t, err)
}

func TestInvoiceType_UnmarshalJSON(t *testing.T) {
	var body struct {
		Type InvoiceType `json:"invoice_type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"invoice_type":"standard"}`), &body))
	assert.Equal(t, InvoiceTypeStandard, body.Type)

	assert.Error(t, json.Unmarshal([]byte(`{"invoice_type":"bogus"}`), &body))
}

func TestInvoiceType_Scan(t *testing.T) {
	var typ InvoiceType
	require.NoError(t, typ.Scan([]byte("line_tax")))
	assert.Equal(t, InvoiceTypeLineTax, typ)

	require.NoError(t, typ.Scan(nil))
	assert.Equal(t, InvoiceTypeStandard, typ)
}
