package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	repeatedDashes  = regexp.MustCompile(`-+`)
)

// SafeFileComponent converts a string into something usable inside a file
// name or object key. Case is preserved, path separators never survive.
func SafeFileComponent(s string) string {
	s = strings.TrimSpace(s)

	// Replace spaces and anything outside the safe set with hyphens
	s = unsafeFileChars.ReplaceAllString(s, "-")

	// Collapse runs of hyphens
	s = repeatedDashes.ReplaceAllString(s, "-")

	// Leading dots would make hidden files
	s = strings.Trim(s, "-.")

	if s == "" {
		return "unnamed"
	}
	return s
}

// InvoiceFileName returns the artifact name for a user's invoice: {user}_{invoiceNo}.pdf.
// Distinct inputs always map to distinct names.
func InvoiceFileName(username, invoiceNo string) string {
	return uniqueFileComponent(username) + "_" + uniqueFileComponent(invoiceNo) + ".pdf"
}

// uniqueFileComponent is SafeFileComponent plus a "~hash" suffix whenever
// cleaning changed s. Clean output never contains '~'.
func uniqueFileComponent(s string) string {
	safe := SafeFileComponent(s)
	if safe == s {
		return safe
	}
	sum := sha256.Sum256([]byte(s))
	return safe + "~" + hex.EncodeToString(sum[:4])
}

// GenerateInvoiceNo builds a default invoice number in the INV-YYYYMMDD-XXXX form
func GenerateInvoiceNo(prefix string, at time.Time) string {
	if prefix == "" {
		prefix = "INV"
	}
	return prefix + "-" + at.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:4])
}
