package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sangkips/invoicer/internal/domain/calculator"
	"github.com/sangkips/invoicer/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requestJSON = `{
	"invoice_no": "INV-1",
	"client": {"name": "Acme Corp", "address": "56 Green Park"},
	"items": [
		{"description": "Widget", "quantity": 2, "rate": 100},
		{"description": "Gadget", "quantity": 1, "rate": 50}
	],
	"tax_rate": 10
}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(strings.NewReader(stdin), &out).Run(append([]string{"invoicectl"}, args...))
	return out.String(), err
}

func writeRequest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestHashPassword(t *testing.T) {
	for _, algo := range []string{"bcrypt", "argon2id"} {
		t.Run(algo, func(t *testing.T) {
			out, err := run(t, "s3cret\n", "hash-password", "--algorithm", algo)
			require.NoError(t, err)

			ok, err := utils.VerifyPassword("s3cret", strings.TrimSpace(out))
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}

	_, err := run(t, "s3cret\n", "hash-password", "--algorithm", "md5")
	assert.Error(t, err)

	_, err = run(t, "", "hash-password")
	assert.Error(t, err)
}

func TestTotals(t *testing.T) {
	out, err := run(t, "", "totals", "--file", writeRequest(t, requestJSON))
	require.NoError(t, err)

	var res calculator.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Subtotal.Equal(decimal.NewFromInt(250)))
	assert.True(t, res.Total.Equal(decimal.NewFromInt(275)))

	bad := strings.Replace(requestJSON, `"quantity": 2`, `"quantity": 0`, 1)
	_, err = run(t, "", "totals", "--file", writeRequest(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items[0].quantity")
}

func TestRender(t *testing.T) {
	req := writeRequest(t, requestJSON)
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "invoice.html")
	_, err := run(t, "", "render", "--file", req, "--out", htmlPath, "--html")
	require.NoError(t, err)
	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Acme Corp")

	pdfPath := filepath.Join(dir, "invoice.pdf")
	out, err := run(t, "", "render", "--file", req, "--out", pdfPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
