package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sangkips/invoicer/internal/domain/calculator"
	"github.com/sangkips/invoicer/internal/domain/entity"
	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/sangkips/invoicer/internal/domain/repository"
	"github.com/sangkips/invoicer/internal/infrastructure/export"
	"github.com/sangkips/invoicer/internal/infrastructure/render"
	"github.com/sangkips/invoicer/internal/infrastructure/storage"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/sangkips/invoicer/pkg/metrics"
	"github.com/sangkips/invoicer/pkg/pagination"
	"github.com/sangkips/invoicer/pkg/utils"
	"go.uber.org/zap"
)

// Warning codes attached to a successful generation
const (
	WarningDuplicateNumber = "duplicate_number"
	WarningDuplicateClient = "duplicate_client"
	WarningClientNotFound  = "client_not_found"
)

// Generation stages reported to metrics
const (
	stageValidate = "validate"
	stageClient   = "client"
	stageRender   = "render"
	stageExport   = "export"
	stageStore    = "store"
	stageRecord   = "record"
)

// PDFExporter converts rendered HTML to PDF bytes
type PDFExporter interface {
	Export(ctx context.Context, html string) ([]byte, error)
}

// Warning is a non-fatal condition reported alongside a generated invoice
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InvoiceInput is everything collected by the invoice form
type InvoiceInput struct {
	Username    string
	InvoiceType enum.InvoiceType
	InvoiceNo   string
	IssueDate   time.Time
	DueDate     time.Time
	Company     render.Party
	Client      render.Party
	SaveClient  bool
	Items       []calculator.LineItem
	Adjustments calculator.Adjustments
	PaymentNote string
}

// GenerateOutput is the result of a successful generation
type GenerateOutput struct {
	Invoice  *entity.Invoice
	Totals   *calculator.Result
	Warnings []Warning
}

// InvoiceServiceOptions carries the invoice defaults from configuration
type InvoiceServiceOptions struct {
	DefaultType  enum.InvoiceType
	CurrencyCode string
}

// InvoiceService orchestrates calculation, rendering, export, storage and recording
type InvoiceService struct {
	calc        *calculator.Calculator
	renderer    *render.Renderer
	exporter    PDFExporter
	files       storage.FileStore
	logos       *LogoService
	clientRepo  repository.ClientRepository
	invoiceRepo repository.InvoiceRepository
	metrics     *metrics.Metrics
	log         *zap.Logger
	opts        InvoiceServiceOptions
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	calc *calculator.Calculator,
	renderer *render.Renderer,
	exporter PDFExporter,
	files storage.FileStore,
	logos *LogoService,
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
	m *metrics.Metrics,
	log *zap.Logger,
	opts InvoiceServiceOptions,
) *InvoiceService {
	if !opts.DefaultType.Valid() {
		opts.DefaultType = enum.InvoiceTypeStandard
	}
	return &InvoiceService{
		calc:        calc,
		renderer:    renderer,
		exporter:    exporter,
		files:       files,
		logos:       logos,
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		metrics:     m,
		log:         log,
		opts:        opts,
		now:         time.Now,
	}
}

func (s *InvoiceService) invoiceType(t enum.InvoiceType) enum.InvoiceType {
	if t == "" {
		return s.opts.DefaultType
	}
	return t
}

// Preview calculates totals without rendering or persisting anything
func (s *InvoiceService) Preview(_ context.Context, input *InvoiceInput) (*calculator.Result, error) {
	return s.calc.Calculate(s.invoiceType(input.InvoiceType), input.Items, input.Adjustments)
}

// Generate runs the full pipeline. Nothing is recorded unless the PDF was
// exported and stored; a failed record removes a newly stored PDF again.
func (s *InvoiceService) Generate(ctx context.Context, input *InvoiceInput) (*GenerateOutput, error) {
	typ := s.invoiceType(input.InvoiceType)
	log := s.log.With(zap.String("username", input.Username))

	totals, err := s.calc.Calculate(typ, input.Items, input.Adjustments)
	if err != nil {
		s.metrics.GenerationFailed(stageValidate)
		return nil, err
	}

	doc, err := s.prepareDocument(input, totals)
	if err != nil {
		s.metrics.GenerationFailed(stageValidate)
		return nil, err
	}
	log = log.With(zap.String("invoice_no", doc.InvoiceNo))

	var warnings []Warning
	clientWarnings, err := s.resolveClient(ctx, input, &doc.Client)
	if err != nil {
		s.metrics.GenerationFailed(stageClient)
		return nil, err
	}
	warnings = append(warnings, clientWarnings...)

	if s.logos != nil {
		if path, ok := s.logos.Path(input.Username); ok {
			doc.LogoPath = path
		}
	}

	html, err := s.renderer.RenderDocument(doc)
	if err != nil {
		s.metrics.GenerationFailed(stageRender)
		log.Error("invoice render failed", zap.Error(err))
		return nil, err
	}

	started := time.Now()
	pdfBytes, err := s.exporter.Export(ctx, html)
	s.metrics.ObservePDFRender(time.Since(started))
	if err != nil {
		s.metrics.GenerationFailed(stageExport)
		log.Error("pdf export failed", zap.Error(err))
		return nil, err
	}

	existing, err := s.invoiceRepo.CountByNumber(ctx, input.Username, doc.InvoiceNo)
	if err != nil {
		s.metrics.GenerationFailed(stageStore)
		log.Error("duplicate invoice number check failed", zap.Error(err))
		return nil, apperror.NewStoreWriteError(err)
	}

	// file an earlier record points at, restored if recording fails
	var previous *storedFile
	if existing > 0 {
		log.Warn("invoice number reused", zap.Int64("previous_records", existing))
		warnings = append(warnings, Warning{
			Code:    WarningDuplicateNumber,
			Message: "Invoice number " + doc.InvoiceNo + " was already used; the new PDF replaces the previous file",
		})
		previous, err = s.readPrevious(ctx, input.Username, doc.InvoiceNo)
		if err != nil {
			s.metrics.GenerationFailed(stageStore)
			log.Error("failed to read previous pdf", zap.Error(err))
			return nil, apperror.NewStoreWriteError(err)
		}
	}

	name := utils.InvoiceFileName(input.Username, doc.InvoiceNo)
	location, err := s.files.Save(ctx, name, pdfBytes)
	if err != nil {
		s.metrics.GenerationFailed(stageStore)
		log.Error("pdf store failed", zap.Error(err))
		return nil, err
	}

	invoice := &entity.Invoice{
		Username:    input.Username,
		InvoiceNo:   doc.InvoiceNo,
		InvoiceType: typ,
		ClientName:  doc.Client.Name,
		IssueDate:   doc.IssueDate,
		DueDate:     doc.DueDate,
		Total:       totals.Total,
		Currency:    s.opts.CurrencyCode,
		FilePath:    location,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		s.metrics.GenerationFailed(stageRecord)
		log.Error("invoice record failed", zap.Error(err))
		s.rollbackFile(context.WithoutCancel(ctx), log, name, location, previous)
		return nil, err
	}

	s.metrics.InvoiceGenerated(typ.String())
	log.Info("invoice generated", zap.Uint("id", invoice.ID), zap.String("total", totals.Total.StringFixed(2)))

	return &GenerateOutput{Invoice: invoice, Totals: totals, Warnings: warnings}, nil
}

// readPrevious loads the PDF behind the newest record with invoiceNo.
// A record whose file is already gone yields nil.
func (s *InvoiceService) readPrevious(ctx context.Context, username, invoiceNo string) (*storedFile, error) {
	prev, err := s.invoiceRepo.GetLatestByNumber(ctx, username, invoiceNo)
	if err != nil || prev == nil {
		return nil, err
	}
	rc, err := s.files.Open(ctx, prev.FilePath)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return &storedFile{location: prev.FilePath, data: data}, nil
}

type storedFile struct {
	location string
	data     []byte
}

// rollbackFile puts back the previous PDF under name, or removes the new one
// when nothing was there before.
func (s *InvoiceService) rollbackFile(ctx context.Context, log *zap.Logger, name, location string, previous *storedFile) {
	if previous != nil && previous.location == location {
		if _, err := s.files.Save(ctx, name, previous.data); err != nil {
			log.Error("failed to restore previous pdf", zap.String("location", location), zap.Error(err))
		}
		return
	}
	if err := s.files.Delete(ctx, location); err != nil {
		log.Error("failed to remove orphaned pdf", zap.String("location", location), zap.Error(err))
	}
}

// RenderHTML calculates and renders without exporting or persisting
func (s *InvoiceService) RenderHTML(_ context.Context, input *InvoiceInput) (string, error) {
	totals, err := s.calc.Calculate(s.invoiceType(input.InvoiceType), input.Items, input.Adjustments)
	if err != nil {
		return "", err
	}
	doc, err := s.prepareDocument(input, totals)
	if err != nil {
		return "", err
	}
	return s.renderer.RenderDocument(doc)
}

func (s *InvoiceService) prepareDocument(input *InvoiceInput, totals *calculator.Result) (*render.Document, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)

	doc := &render.Document{
		Company:     input.Company,
		Client:      input.Client,
		InvoiceNo:   strings.TrimSpace(input.InvoiceNo),
		IssueDate:   input.IssueDate,
		DueDate:     input.DueDate,
		PaymentNote: input.PaymentNote,
		Totals:      totals,
	}
	doc.Client.Name = strings.TrimSpace(doc.Client.Name)

	if doc.InvoiceNo == "" {
		doc.InvoiceNo = utils.GenerateInvoiceNo("INV", today)
	}
	if doc.IssueDate.IsZero() {
		doc.IssueDate = today
	}
	if doc.DueDate.IsZero() {
		doc.DueDate = doc.IssueDate
	}

	var errs []apperror.FieldError
	if doc.Client.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "client.name", Message: "is required"})
	}
	if doc.DueDate.Before(doc.IssueDate) {
		errs = append(errs, apperror.FieldError{Field: "due_date", Message: "must not be before issue_date"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	return doc, nil
}

// resolveClient fills missing client details from the saved record and saves
// new clients on request. Duplicates and misses become warnings.
func (s *InvoiceService) resolveClient(ctx context.Context, input *InvoiceInput, client *render.Party) ([]Warning, error) {
	var warnings []Warning

	if client.Address == "" && client.TaxID == "" && client.Phone == "" {
		saved, err := s.clientRepo.GetByName(ctx, input.Username, client.Name)
		if err != nil {
			return nil, err
		}
		if saved != nil {
			client.Address = saved.Address
			client.TaxID = saved.TaxID
			client.Phone = saved.Phone
		} else if !input.SaveClient {
			warnings = append(warnings, Warning{
				Code:    WarningClientNotFound,
				Message: "No saved client named " + client.Name,
			})
		}
	}

	if input.SaveClient {
		err := s.clientRepo.Create(ctx, &entity.Client{
			Username: input.Username,
			Name:     client.Name,
			Address:  client.Address,
			TaxID:    client.TaxID,
			Phone:    client.Phone,
		})
		switch {
		case errors.Is(err, apperror.ErrDuplicateClient):
			warnings = append(warnings, Warning{
				Code:    WarningDuplicateClient,
				Message: "Client " + client.Name + " already exists and was not changed",
			})
		case err != nil:
			return nil, err
		}
	}
	return warnings, nil
}

// Download opens the newest stored PDF recorded under invoiceNo
func (s *InvoiceService) Download(ctx context.Context, username, invoiceNo string) (io.ReadCloser, *entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetLatestByNumber(ctx, username, invoiceNo)
	if err != nil {
		return nil, nil, err
	}
	if invoice == nil {
		return nil, nil, apperror.NewNotFoundError("Invoice")
	}

	rc, err := s.files.Open(ctx, invoice.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return rc, invoice, nil
}

// GetInvoicePath returns the stored file location of the newest record with invoiceNo
func (s *InvoiceService) GetInvoicePath(ctx context.Context, username, invoiceNo string) (string, error) {
	invoice, err := s.invoiceRepo.GetLatestByNumber(ctx, username, invoiceNo)
	if err != nil {
		return "", err
	}
	if invoice == nil {
		return "", apperror.NewNotFoundError("Invoice")
	}
	return invoice.FilePath, nil
}

// ListInvoices returns one page of the user's invoices in insertion order
func (s *InvoiceService) ListInvoices(ctx context.Context, username string, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.ListPage(ctx, username, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(invoices, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ExportRegister returns the user's invoice register as an XLSX workbook
func (s *InvoiceService) ExportRegister(ctx context.Context, username string) ([]byte, error) {
	invoices, err := s.invoiceRepo.List(ctx, username)
	if err != nil {
		return nil, err
	}
	return export.RegisterXLSX(invoices)
}
