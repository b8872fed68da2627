package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sangkips/invoicer/internal/application/service"
	"github.com/sangkips/invoicer/internal/domain/calculator"
	"github.com/sangkips/invoicer/internal/domain/enum"
	"github.com/sangkips/invoicer/internal/infrastructure/pdf"
	"github.com/sangkips/invoicer/internal/infrastructure/render"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer/pkg/logger"
	"github.com/sangkips/invoicer/pkg/utils"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const cliUser = "invoicectl"

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "invoicectl",
		Usage:     "offline helpers for the invoicer service",
		Reader:    in,
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug, info, warn or error"},
		},
		Commands: []*cli.Command{
			{
				Name:   "hash-password",
				Usage:  "read a password from stdin and print a hash for the credentials file",
				Action: hashPassword,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "algorithm", Aliases: []string{"a"}, Value: "bcrypt", Usage: "bcrypt or argon2id"},
				},
			},
			{
				Name:   "totals",
				Usage:  "calculate the totals of an invoice request",
				Action: totals,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "invoice request JSON"},
					&cli.StringFlag{Name: "type", Value: string(enum.InvoiceTypeStandard), Usage: "invoice type used when the request has none"},
					&cli.IntFlag{Name: "max-items", Value: calculator.DefaultMaxLineItems},
				},
			},
			{
				Name:   "render",
				Usage:  "render an invoice request to PDF or HTML",
				Action: renderInvoice,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "invoice request JSON"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "output file"},
					&cli.BoolFlag{Name: "html", Usage: "write the rendered HTML instead of a PDF"},
					&cli.StringFlag{Name: "type", Value: string(enum.InvoiceTypeStandard), Usage: "invoice type used when the request has none"},
					&cli.StringFlag{Name: "template", EnvVars: []string{"INVOICE_TEMPLATE_PATH"}, Usage: "custom page template"},
					&cli.StringFlag{Name: "font", EnvVars: []string{"PDF_FONT_PATH"}, Usage: "UTF-8 TTF font for the PDF"},
					&cli.StringFlag{Name: "currency", EnvVars: []string{"INVOICE_CURRENCY_SYMBOL"}, Value: "₹"},
					&cli.IntFlag{Name: "max-items", Value: calculator.DefaultMaxLineItems},
				},
			},
		},
	}
}

func newLogger(c *cli.Context) *zap.Logger {
	log, err := logger.New(logger.Config{
		Level:       c.String("log-level"),
		Format:      "console",
		ServiceName: "invoicectl",
		Environment: "cli",
	})
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func hashPassword(c *cli.Context) error {
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("empty password on stdin")
	}

	var hash string
	switch c.String("algorithm") {
	case "bcrypt":
		hash, err = utils.HashPassword(password)
	case "argon2id":
		hash, err = utils.HashPasswordArgon2(password, nil)
	default:
		return fmt.Errorf("unknown algorithm %q", c.String("algorithm"))
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.App.Writer, hash)
	return err
}

func readRequest(path string) (*service.InvoiceInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var req request.InvoiceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return req.ToInput(cliUser)
}

func newService(c *cli.Context, renderer *render.Renderer, exporter service.PDFExporter) (*service.InvoiceService, error) {
	typ, err := enum.ParseInvoiceType(c.String("type"))
	if err != nil {
		return nil, err
	}
	return service.NewInvoiceService(
		calculator.New(c.Int("max-items")),
		renderer,
		exporter,
		nil, nil, nil, nil, nil,
		newLogger(c),
		service.InvoiceServiceOptions{DefaultType: typ},
	), nil
}

func totals(c *cli.Context) error {
	input, err := readRequest(c.String("file"))
	if err != nil {
		return err
	}
	svc, err := newService(c, nil, nil)
	if err != nil {
		return err
	}

	result, err := svc.Preview(c.Context, input)
	if err != nil {
		return describe(err)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func renderInvoice(c *cli.Context) error {
	input, err := readRequest(c.String("file"))
	if err != nil {
		return err
	}
	renderer, err := render.New(c.String("template"), c.String("currency"))
	if err != nil {
		return err
	}
	svc, err := newService(c, renderer, nil)
	if err != nil {
		return err
	}

	html, err := svc.RenderHTML(c.Context, input)
	if err != nil {
		return describe(err)
	}

	out := []byte(html)
	if !c.Bool("html") {
		out, err = pdf.New(pdf.Options{FontPath: c.String("font"), Author: cliUser}).Export(c.Context, html)
		if err != nil {
			return describe(err)
		}
	}

	if err := os.WriteFile(c.String("out"), out, 0o644); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", c.String("out"), len(out))
	return err
}
