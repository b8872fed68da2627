package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sangkips/invoicer/internal/config"
	"github.com/sangkips/invoicer/internal/domain/calculator"
	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/sangkips/invoicer/internal/infrastructure/database"
	"github.com/sangkips/invoicer/internal/infrastructure/pdf"
	"github.com/sangkips/invoicer/internal/infrastructure/render"
	"github.com/sangkips/invoicer/internal/infrastructure/repository"
	"github.com/sangkips/invoicer/internal/infrastructure/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	store    *database.Store
	files    *storage.LocalStore
	logos    *LogoService
	clients  *ClientService
	invoices *InvoiceService
}

func newFixture(t *testing.T, exporter PDFExporter) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	dir := t.TempDir()

	store, err := database.Open(&config.DatabaseConfig{Driver: database.DriverSQLite, Path: filepath.Join(dir, "db", "invoicer.db")}, false, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	files, err := storage.NewLocalStore(filepath.Join(dir, "invoices"))
	require.NoError(t, err)
	logoStore, err := storage.NewLocalStore(filepath.Join(dir, "logos"))
	require.NoError(t, err)

	renderer, err := render.New("", "₹")
	require.NoError(t, err)
	if exporter == nil {
		exporter = pdf.New(pdf.Options{})
	}

	clientRepo := repository.NewClientRepository(store)
	invoiceRepo := repository.NewInvoiceRepository(store)
	logos := NewLogoService(logoStore, 0, log)

	return &fixture{
		store:   store,
		files:   files,
		logos:   logos,
		clients: NewClientService(clientRepo, log),
		invoices: NewInvoiceService(
			calculator.New(calculator.DefaultMaxLineItems),
			renderer,
			exporter,
			files,
			logos,
			clientRepo,
			invoiceRepo,
			nil,
			log,
			InvoiceServiceOptions{DefaultType: enum.InvoiceTypeStandard, CurrencyCode: "INR"},
		),
	}
}

func acmeInput(user, invoiceNo string) *InvoiceInput {
	return &InvoiceInput{
		Username:  user,
		InvoiceNo: invoiceNo,
		Company:   render.Party{Name: "Your Company Pvt Ltd", Address: "1234 Business Street", TaxID: "29ABCDE1234F1Z5"},
		Client:    render.Party{Name: "Acme Corp", Address: "56 Green Park\nNew Delhi", TaxID: "07ABCDE1234F1Z9"},
		Items: []calculator.LineItem{
			{Description: "Widget", Quantity: 2, Rate: decimal.NewFromInt(100)},
			{Description: "Gadget", Quantity: 1, Rate: decimal.NewFromInt(50)},
		},
		Adjustments: calculator.Adjustments{TaxRate: decimal.NewFromInt(10)},
		PaymentNote: "Bank: ABCD Bank",
	}
}

type failingExporter struct {
	err   error
	calls int
}

func (f *failingExporter) Export(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return nil, f.err
}
