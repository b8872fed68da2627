package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"testing"
	"time"

	"github.com/sangkips/invoicer/internal/domain/entity"
	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/sangkips/invoicer/internal/domain/repository"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/sangkips/invoicer/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countInvoices(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.store.DB.Model(&entity.Invoice{}).Count(&n).Error)
	return n
}

func storedFiles(t *testing.T, f *fixture) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(f.files.Dir())
	require.NoError(t, err)
	return entries
}

func TestInvoiceService_Preview(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.invoices.Preview(context.Background(), acmeInput("alice", "INV-1"))
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceTypeStandard, res.Type)
	assert.Equal(t, "250.00", res.Subtotal.StringFixed(2))
	assert.Equal(t, "25.00", res.Tax.StringFixed(2))
	assert.Equal(t, "275.00", res.Total.StringFixed(2))
	assert.Zero(t, countInvoices(t, f))
}

func TestInvoiceService_Generate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	out, err := f.invoices.Generate(ctx, acmeInput("alice", "INV-1"))
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, "275.00", out.Invoice.Total.StringFixed(2))
	assert.Equal(t, "INR", out.Invoice.Currency)
	assert.Equal(t, f.files.Path("alice_INV-1.pdf"), out.Invoice.FilePath)

	rc, rec, err := f.invoices.Download(ctx, "alice", "INV-1")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, out.Invoice.ID, rec.ID)

	_, _, err = f.invoices.Download(ctx, "bob", "INV-1")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestInvoiceService_GenerateDefaultsNumberAndDates(t *testing.T) {
	f := newFixture(t, nil)
	f.invoices.now = func() time.Time { return time.Date(2024, 7, 3, 15, 4, 5, 0, time.UTC) }

	out, err := f.invoices.Generate(context.Background(), acmeInput("alice", ""))
	require.NoError(t, err)
	assert.Regexp(t, `^INV-20240703-[0-9A-F]{4}$`, out.Invoice.InvoiceNo)
	assert.Equal(t, time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC), out.Invoice.IssueDate)
	assert.Equal(t, out.Invoice.IssueDate, out.Invoice.DueDate)
}

func TestInvoiceService_GenerateValidation(t *testing.T) {
	f := newFixture(t, nil)

	in := acmeInput("alice", "INV-1")
	in.Items[0].Quantity = 0
	_, err := f.invoices.Generate(context.Background(), in)
	assert.True(t, errors.Is(err, apperror.ErrInputValidation))

	in = acmeInput("alice", "INV-1")
	in.IssueDate = time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	in.DueDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.invoices.Generate(context.Background(), in)
	assert.True(t, errors.Is(err, apperror.ErrInputValidation))

	assert.Zero(t, countInvoices(t, f))
	assert.Empty(t, storedFiles(t, f))
}

func TestInvoiceService_ExportFailureRecordsNothing(t *testing.T) {
	exporter := &failingExporter{err: apperror.NewRenderError(errors.New("image missing"))}
	f := newFixture(t, exporter)

	_, err := f.invoices.Generate(context.Background(), acmeInput("alice", "INV-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrRender))
	assert.Equal(t, 1, exporter.calls)
	assert.Zero(t, countInvoices(t, f))
	assert.Empty(t, storedFiles(t, f))
}

func TestInvoiceService_MissingLogoFileAborts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 4, 4))))
	_, err := f.logos.Upload(ctx, "alice", "logo.png", &img)
	require.NoError(t, err)

	out, err := f.invoices.Generate(ctx, acmeInput("alice", "INV-1"))
	require.NoError(t, err)
	assert.NotNil(t, out.Invoice)

	// logo removed between lookup and export
	exporter := f.invoices.exporter
	f.invoices.exporter = exporterFunc(func(ctx context.Context, html string) ([]byte, error) {
		path, _ := f.logos.Path("alice")
		require.NoError(t, os.Remove(path))
		return exporter.Export(ctx, html)
	})

	_, err = f.invoices.Generate(ctx, acmeInput("alice", "INV-2"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrRender))
	assert.EqualValues(t, 1, countInvoices(t, f))
}

type exporterFunc func(ctx context.Context, html string) ([]byte, error)

func (fn exporterFunc) Export(ctx context.Context, html string) ([]byte, error) {
	return fn(ctx, html)
}

type recordFailingRepo struct {
	repository.InvoiceRepository
}

func (r *recordFailingRepo) Create(_ context.Context, _ *entity.Invoice) error {
	return apperror.NewStoreWriteError(errors.New("disk full"))
}

func TestInvoiceService_RecordFailureRemovesPDF(t *testing.T) {
	f := newFixture(t, nil)
	f.invoices.invoiceRepo = &recordFailingRepo{InvoiceRepository: f.invoices.invoiceRepo}

	_, err := f.invoices.Generate(context.Background(), acmeInput("alice", "INV-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrStoreWrite))
	assert.Empty(t, storedFiles(t, f))
}

func TestInvoiceService_RecordFailureKeepsEarlierPDF(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.invoices.Generate(ctx, acmeInput("alice", "INV-1"))
	require.NoError(t, err)
	before, err := os.ReadFile(first.Invoice.FilePath)
	require.NoError(t, err)

	f.invoices.invoiceRepo = &recordFailingRepo{InvoiceRepository: f.invoices.invoiceRepo}
	in := acmeInput("alice", "INV-1")
	in.Client.Name = "Other Co"
	in.Items[0].Quantity = 7
	_, err = f.invoices.Generate(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrStoreWrite))

	after, err := os.ReadFile(first.Invoice.FilePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.EqualValues(t, 1, countInvoices(t, f))
	assert.Len(t, storedFiles(t, f), 1)
}

type countFailingRepo struct {
	repository.InvoiceRepository
}

func (r *countFailingRepo) CountByNumber(_ context.Context, _, _ string) (int64, error) {
	return 0, errors.New("database is locked")
}

func TestInvoiceService_NumberLookupFailureAborts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.invoices.Generate(ctx, acmeInput("alice", "INV-1"))
	require.NoError(t, err)
	before, err := os.ReadFile(first.Invoice.FilePath)
	require.NoError(t, err)

	f.invoices.invoiceRepo = &countFailingRepo{InvoiceRepository: f.invoices.invoiceRepo}
	in := acmeInput("alice", "INV-1")
	in.Items[0].Quantity = 9
	_, err = f.invoices.Generate(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrStoreWrite))

	after, err := os.ReadFile(first.Invoice.FilePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.EqualValues(t, 1, countInvoices(t, f))
}

func TestInvoiceService_SimilarNumbersKeepSeparateFiles(t *testing.T) {
	f := newFixture(t, exporterFunc(func(_ context.Context, html string) ([]byte, error) {
		return []byte("%PDF-" + html), nil
	}))
	ctx := context.Background()

	slash, err := f.invoices.Generate(ctx, acmeInput("alice", "INV/1"))
	require.NoError(t, err)

	in := acmeInput("alice", "INV 1")
	in.Client.Name = "Other Co"
	space, err := f.invoices.Generate(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, space.Warnings)
	assert.NotEqual(t, slash.Invoice.FilePath, space.Invoice.FilePath)
	assert.Len(t, storedFiles(t, f), 2)

	rc, _, err := f.invoices.Download(ctx, "alice", "INV/1")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Acme Corp")
	assert.NotContains(t, string(data), "Other Co")
}

func TestInvoiceService_DuplicateNumber(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.invoices.Generate(ctx, acmeInput("alice", "INV-1"))
	require.NoError(t, err)

	in := acmeInput("alice", "INV-1")
	in.Items[0].Quantity = 3
	second, err := f.invoices.Generate(ctx, in)
	require.NoError(t, err)
	require.Len(t, second.Warnings, 1)
	assert.Equal(t, WarningDuplicateNumber, second.Warnings[0].Code)

	assert.EqualValues(t, 2, countInvoices(t, f))
	assert.Greater(t, second.Invoice.ID, first.Invoice.ID)

	path, err := f.invoices.GetInvoicePath(ctx, "alice", "INV-1")
	require.NoError(t, err)
	assert.Equal(t, second.Invoice.FilePath, path)

	_, err = f.invoices.GetInvoicePath(ctx, "alice", "INV-404")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestInvoiceService_ClientHandling(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	in := acmeInput("alice", "INV-1")
	in.SaveClient = true
	out, err := f.invoices.Generate(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)

	saved, err := f.clients.GetClient(ctx, "alice", "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "56 Green Park\nNew Delhi", saved.Address)

	// saving again is only a warning
	in = acmeInput("alice", "INV-2")
	in.SaveClient = true
	in.Client.Address = "elsewhere"
	out, err = f.invoices.Generate(ctx, in)
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, WarningDuplicateClient, out.Warnings[0].Code)

	saved, err = f.clients.GetClient(ctx, "alice", "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "56 Green Park\nNew Delhi", saved.Address)

	// name only fills details from the saved client
	var rendered string
	base := f.invoices.exporter
	f.invoices.exporter = exporterFunc(func(ctx context.Context, html string) ([]byte, error) {
		rendered = html
		return base.Export(ctx, html)
	})
	in = acmeInput("alice", "INV-3")
	in.Client.Address, in.Client.TaxID = "", ""
	out, err = f.invoices.Generate(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)
	assert.Contains(t, rendered, "56 Green Park<br>New Delhi")
	assert.Contains(t, rendered, "07ABCDE1234F1Z9")

	// unknown name only warns
	in = acmeInput("alice", "INV-4")
	in.Client = in.Company
	in.Client.Name, in.Client.Address, in.Client.TaxID = "Globex", "", ""
	out, err = f.invoices.Generate(ctx, in)
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, WarningClientNotFound, out.Warnings[0].Code)
}

func TestInvoiceService_ListAndExport(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, no := range []string{"INV-B", "INV-A", "INV-C"} {
		_, err := f.invoices.Generate(ctx, acmeInput("alice", no))
		require.NoError(t, err)
	}

	page, err := f.invoices.ListInvoices(ctx, "alice", &pagination.PaginationParams{Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "INV-B", page.Items[0].InvoiceNo)
	assert.Equal(t, "INV-A", page.Items[1].InvoiceNo)
	assert.EqualValues(t, 3, page.Pagination.Total)
	assert.True(t, page.Pagination.HasNext)

	xlsx, err := f.invoices.ExportRegister(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsx, []byte("PK")))
}

func TestInvoiceService_RenderHTMLEscapes(t *testing.T) {
	f := newFixture(t, nil)

	in := acmeInput("alice", "INV-1")
	in.Client.Name = "<script>alert('x')</script>"
	html, err := f.invoices.RenderHTML(context.Background(), in)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
