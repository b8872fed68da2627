// Package pdf lays out rendered invoice HTML on A4 pages.
//
// The exporter understands the subset of HTML the invoice templates use:
// headings, paragraphs, line breaks, horizontal rules, tables and local
// images. Styles are ignored apart from the "right" class on table cells.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/sangkips/invoicer/pkg/apperror"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	margin       = 15.0
	bodyFontSize = 10.0
	cellPadding  = 1.5
	defaultImgW  = 30.0
	unicodeFont  = "body"
	coreFont     = "Helvetica"
)

var headingSizes = map[atom.Atom]float64{
	atom.H1: 18,
	atom.H2: 14,
	atom.H3: 12,
	atom.H4: 11,
	atom.H5: 10,
	atom.H6: 10,
}

// glyphs missing from the cp1252 core fonts
var coreFontReplacer = strings.NewReplacer("₹", "Rs.", "€", "EUR ")

// Options configures an Exporter
type Options struct {
	// FontPath is a TrueType font used for all text. When empty the
	// built-in Helvetica is used with cp1252 encoding.
	FontPath string
	Title    string
	Author   string
}

// Exporter converts HTML documents to PDF bytes
type Exporter struct {
	opts Options
}

// New creates an exporter
func New(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export renders doc and returns the complete PDF. Any failure is reported as
// a render AppError and no partial output is returned.
func (e *Exporter) Export(ctx context.Context, doc string) (out []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.NewRenderError(err)
	}

	// gofpdf panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = apperror.NewRenderError(fmt.Errorf("pdf layout panic: %v", r))
		}
	}()

	blocks, err := parse(doc)
	if err != nil {
		return nil, apperror.NewRenderError(err)
	}
	if len(blocks) == 0 {
		return nil, apperror.NewRenderError(errors.New("document has no printable content"))
	}

	l, err := e.newLayout()
	if err != nil {
		return nil, apperror.NewRenderError(err)
	}

	for _, b := range blocks {
		if err := l.draw(b); err != nil {
			return nil, apperror.NewRenderError(err)
		}
		if l.pdf.Err() {
			return nil, apperror.NewRenderError(l.pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, apperror.NewRenderError(err)
	}
	return buf.Bytes(), nil
}

type layout struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
	width  float64 // printable width
	bottom float64 // y beyond which content must move to a new page
}

func (e *Exporter) newLayout() (*layout, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCellMargin(cellPadding)
	if e.opts.Title != "" {
		pdf.SetTitle(e.opts.Title, true)
	}
	if e.opts.Author != "" {
		pdf.SetAuthor(e.opts.Author, true)
	}

	l := &layout{pdf: pdf}
	if e.opts.FontPath != "" {
		pdf.AddUTF8Font(unicodeFont, "", e.opts.FontPath)
		pdf.AddUTF8Font(unicodeFont, "B", e.opts.FontPath)
		if pdf.Err() {
			return nil, fmt.Errorf("failed to load font %s: %w", e.opts.FontPath, pdf.Error())
		}
		l.family = unicodeFont
		l.tr = func(s string) string { return s }
	} else {
		l.family = coreFont
		cp := pdf.UnicodeTranslatorFromDescriptor("")
		l.tr = func(s string) string { return cp(coreFontReplacer.Replace(s)) }
	}

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	l.width = pageW - 2*margin
	l.bottom = pageH - margin
	pdf.SetFont(l.family, "", bodyFontSize)
	return l, pdf.Error()
}

func lineHeight(size float64) float64 {
	return size * 0.5
}

func (l *layout) draw(b block) error {
	switch b.kind {
	case blockHeading:
		size := headingSizes[b.level]
		l.pdf.SetFont(l.family, "B", size)
		l.pdf.MultiCell(l.width, lineHeight(size), l.tr(b.text), "", "L", false)
		l.pdf.SetFont(l.family, "", bodyFontSize)
		l.pdf.Ln(1)
	case blockText:
		l.pdf.MultiCell(l.width, lineHeight(bodyFontSize), l.tr(b.text), "", "L", false)
		l.pdf.Ln(2)
	case blockRule:
		y := l.pdf.GetY()
		l.pdf.Line(margin, y, margin+l.width, y)
		l.pdf.Ln(2)
	case blockImage:
		return l.image(b)
	case blockTable:
		l.table(b.rows)
		l.pdf.Ln(3)
	}
	return nil
}

func (l *layout) image(b block) error {
	path, err := localPath(b.src)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("image %q: %w", b.src, err)
	}

	w := b.width
	if w <= 0 || w > l.width {
		w = defaultImgW
	}
	opts := gofpdf.ImageOptions{ReadDpi: true}
	l.pdf.ImageOptions(path, margin, -1, w, 0, true, opts, 0, "")
	l.pdf.Ln(2)
	return nil
}

func localPath(src string) (string, error) {
	if src == "" {
		return "", errors.New("image without src")
	}
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("image %q: %w", src, err)
	}
	switch u.Scheme {
	case "", "file":
		return u.Path, nil
	default:
		return "", fmt.Errorf("image %q: only local files are supported", src)
	}
}

func (l *layout) table(rows []row) {
	widths := l.columnWidths(rows)
	lh := lineHeight(bodyFontSize)

	for _, r := range rows {
		lines := 1
		for i, c := range r.cells {
			l.setCellFont(c)
			n := len(l.pdf.SplitLines([]byte(l.tr(c.text)), widths[i]-2*cellPadding))
			if n > lines {
				lines = n
			}
		}
		h := float64(lines) * lh

		if l.pdf.GetY()+h > l.bottom {
			l.pdf.AddPage()
		}

		x, y := margin, l.pdf.GetY()
		for i := range widths {
			var c cell
			if i < len(r.cells) {
				c = r.cells[i]
			}
			style := "D"
			if c.header {
				l.pdf.SetFillColor(230, 230, 230)
				style = "FD"
			}
			l.pdf.Rect(x, y, widths[i], h, style)

			l.setCellFont(c)
			align := "L"
			if c.right {
				align = "R"
			}
			l.pdf.SetXY(x, y)
			l.pdf.MultiCell(widths[i], lh, l.tr(c.text), "", align, false)
			x += widths[i]
		}
		l.pdf.SetFont(l.family, "", bodyFontSize)
		l.pdf.SetXY(margin, y+h)
	}
}

func (l *layout) setCellFont(c cell) {
	if c.header {
		l.pdf.SetFont(l.family, "B", bodyFontSize)
		return
	}
	l.pdf.SetFont(l.family, "", bodyFontSize)
}

// columnWidths sizes columns by their widest line, scaled to the printable width
func (l *layout) columnWidths(rows []row) []float64 {
	cols := 0
	for _, r := range rows {
		if len(r.cells) > cols {
			cols = len(r.cells)
		}
	}
	widths := make([]float64, cols)
	for _, r := range rows {
		for i, c := range r.cells {
			l.setCellFont(c)
			for _, line := range strings.Split(c.text, "\n") {
				if w := l.pdf.GetStringWidth(l.tr(line)) + 2*cellPadding + 1; w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	l.pdf.SetFont(l.family, "", bodyFontSize)

	total := 0.0
	for i := range widths {
		if widths[i] < 8 {
			widths[i] = 8
		}
		total += widths[i]
	}
	for i := range widths {
		widths[i] = widths[i] * l.width / total
	}
	return widths
}

type blockKind int

const (
	blockText blockKind = iota
	blockHeading
	blockTable
	blockImage
	blockRule
)

type block struct {
	kind  blockKind
	level atom.Atom
	text  string
	src   string
	width float64
	rows  []row
}

type row struct {
	cells []cell
}

type cell struct {
	text   string
	header bool
	right  bool
}

func parse(doc string) ([]block, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, errors.New("empty document")
	}
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	w := &walker{}
	w.walk(root)
	w.flush()
	return w.blocks, nil
}

type walker struct {
	blocks  []block
	pending strings.Builder
}

func (w *walker) emit(b block) {
	w.flush()
	w.blocks = append(w.blocks, b)
}

func (w *walker) flush() {
	text := tidy(w.pending.String())
	w.pending.Reset()
	if text != "" {
		w.blocks = append(w.blocks, block{kind: blockText, text: text})
	}
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.pending.WriteString(flatten(n.Data))
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Head, atom.Style, atom.Script, atom.Title, atom.Template:
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			text, imgs := collect(n)
			w.emit(block{kind: blockHeading, level: n.DataAtom, text: text})
			w.images(imgs)
			return
		case atom.P, atom.Li, atom.Pre, atom.Blockquote, atom.Address:
			text, imgs := collect(n)
			w.flush()
			if text != "" {
				w.blocks = append(w.blocks, block{kind: blockText, text: text})
			}
			w.images(imgs)
			return
		case atom.Br:
			w.pending.WriteString("\n")
			return
		case atom.Hr:
			w.emit(block{kind: blockRule})
			return
		case atom.Img:
			w.images([]*html.Node{n})
			return
		case atom.Table:
			rows, imgs := collectRows(n)
			if len(rows) > 0 {
				w.emit(block{kind: blockTable, rows: rows})
			}
			w.images(imgs)
			return
		case atom.Div, atom.Section, atom.Header, atom.Footer, atom.Main, atom.Article, atom.Ul, atom.Ol:
			w.flush()
			defer w.flush()
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) images(imgs []*html.Node) {
	for _, img := range imgs {
		b := block{kind: blockImage, src: attr(img, "src")}
		if v, err := strconv.ParseFloat(strings.TrimSuffix(attr(img, "width"), "mm"), 64); err == nil {
			b.width = v
		}
		w.emit(b)
	}
}

// collect returns the inline text of n with <br> as newlines, plus any images inside it
func collect(n *html.Node) (string, []*html.Node) {
	var sb strings.Builder
	var imgs []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(flatten(n.Data))
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			sb.WriteString("\n")
		case n.Type == html.ElementNode && n.DataAtom == atom.Img:
			imgs = append(imgs, n)
		case n.Type == html.ElementNode && (n.DataAtom == atom.Style || n.DataAtom == atom.Script):
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				visit(c)
			}
		}
	}
	visit(n)
	return tidy(sb.String()), imgs
}

func collectRows(table *html.Node) ([]row, []*html.Node) {
	var rows []row
	var imgs []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var r row
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
					continue
				}
				text, cellImgs := collect(c)
				imgs = append(imgs, cellImgs...)
				r.cells = append(r.cells, cell{
					text:   text,
					header: c.DataAtom == atom.Th,
					right:  hasClass(c, "right"),
				})
			}
			if len(r.cells) > 0 {
				rows = append(rows, r)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	return rows, imgs
}

// source newlines are layout noise; only <br> breaks a line
var flattener = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

func flatten(s string) string {
	return flattener.Replace(s)
}

// tidy collapses whitespace inside each line and drops blank lines at the edges
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
