package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// InvoiceType selects the totals formula used for an invoice
type InvoiceType string

const (
	// InvoiceTypeStandard applies discount, tax rate, shipping and previous dues at invoice level
	InvoiceTypeStandard InvoiceType = "standard"
	// InvoiceTypeLineTax applies tax per line item with no invoice-level adjustments
	InvoiceTypeLineTax InvoiceType = "line_tax"
)

func (t InvoiceType) String() string {
	return string(t)
}

// Valid reports whether t is a known invoice type
func (t InvoiceType) Valid() bool {
	switch t {
	case InvoiceTypeStandard, InvoiceTypeLineTax:
		return true
	}
	return false
}

// ParseInvoiceType accepts the canonical names case-insensitively
func ParseInvoiceType(s string) (InvoiceType, error) {
	t := InvoiceType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown invoice type %q", s)
	}
	return t, nil
}

func (t InvoiceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *InvoiceType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*t = ""
		return nil
	}
	parsed, err := ParseInvoiceType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t InvoiceType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *InvoiceType) Scan(value interface{}) error {
	if value == nil {
		*t = InvoiceTypeStandard
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = InvoiceType(v)
	case []byte:
		*t = InvoiceType(v)
	}
	return nil
}
