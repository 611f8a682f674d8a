package exports

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/pwnholic/observador/internal"
	"github.com/pwnholic/observador/internal/clients"
	"github.com/pwnholic/observador/internal/document"
	"github.com/pwnholic/observador/internal/layout"
)

// FontSet is the TrueType data embedded under the configured family name.
type FontSet struct {
	Regular []byte
	Bold    []byte
}

// DefaultFontSet is the Go font family, metric-compatible enough with the
// configured sans family for a fixed-layout record.
func DefaultFontSet() FontSet {
	return FontSet{Regular: goregular.TTF, Bold: gobold.TTF}
}

// PDFRenderer draws the record on fixed landscape pages. A table row is never
// split; a row that does not fit the rest of a page moves to the next one.
type PDFRenderer struct {
	cfg   layout.Config
	fonts FontSet
}

type PDFOption func(*PDFRenderer)

func WithFonts(fonts FontSet) PDFOption {
	return func(r *PDFRenderer) {
		r.fonts = fonts
	}
}

func NewPDFRenderer(cfg layout.Config, opts ...PDFOption) *PDFRenderer {
	r := &PDFRenderer{cfg: cfg, fonts: DefaultFontSet()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PDFRenderer) Name() string                    { return "pdf" }
func (r *PDFRenderer) Extension() string               { return "pdf" }
func (r *PDFRenderer) ContentType() string             { return "application/pdf" }
func (r *PDFRenderer) ImageEncoding() clients.Encoding { return clients.EncodingJPEG }

func (r *PDFRenderer) Render(doc *document.Document, logos Logos) (*Artifact, error) {
	data, _, err := r.render(doc, logos)
	if err != nil {
		return nil, err
	}
	return &Artifact{ContentType: r.ContentType(), Data: data}, nil
}

// render lays the document out and also returns the text it drew, one entry
// per paragraph holding that paragraph's wrapped lines.
func (r *PDFRenderer) render(doc *document.Document, logos Logos) ([]byte, [][]string, error) {
	const op = "exports.PDFRenderer.Render"

	if err := logos.validate(op); err != nil {
		return nil, nil, err
	}

	p, err := r.newPage(doc)
	if err != nil {
		return nil, nil, err
	}
	defer p.pdf.Close()

	for _, block := range doc.Blocks {
		if err := p.drawBlock(block, logos); err != nil {
			return nil, nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := p.pdf.WriteTo(&buf); err != nil {
		return nil, nil, internal.Errorf(internal.KindPackaging, op, "failed to write pdf: %w", err)
	}
	internal.Debug("pdf rendered: %d pages, %d bytes", p.pages, buf.Len())

	return buf.Bytes(), p.drawn, nil
}

type pdfPage struct {
	pdf    *gopdf.GoPdf
	cfg    layout.Config
	family string
	left   float64
	top    float64
	width  float64
	bottom float64
	y      float64
	pages  int
	drawn  [][]string
}

func (r *PDFRenderer) newPage(doc *document.Document) (*pdfPage, error) {
	const op = "exports.PDFRenderer.Render"

	page := r.cfg.PDFPage
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: gopdf.Rect{W: page.Width, H: page.Height},
	})
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        doc.Title,
		Subject:      doc.Subject,
		Author:       doc.ID,
		Creator:      "observador",
		Producer:     "gopdf",
		CreationDate: doc.Created,
	})

	family := r.cfg.FontFamily
	if err := pdf.AddTTFFontData(family, r.fonts.Regular); err != nil {
		return nil, internal.Errorf(internal.KindPackaging, op, "failed to load regular font: %w", err)
	}
	if err := pdf.AddTTFFontDataWithOption(family, r.fonts.Bold, gopdf.TtfOption{Style: gopdf.Bold}); err != nil {
		return nil, internal.Errorf(internal.KindPackaging, op, "failed to load bold font: %w", err)
	}

	p := &pdfPage{
		pdf:    pdf,
		cfg:    r.cfg,
		family: family,
		left:   page.Margin,
		top:    page.Margin,
		width:  page.ContentWidth(),
		bottom: page.Height - page.Margin,
	}
	if err := p.addPage(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pdfPage) addPage() error {
	p.pdf.AddPage()
	p.pages++
	p.y = p.top

	red, green, blue := hexColor(p.cfg.Border.Color)
	p.pdf.SetLineWidth(p.cfg.Border.Width)
	p.pdf.SetStrokeColor(red, green, blue)
	p.pdf.SetTextColor(0, 0, 0)
	return p.setFont(false, 9)
}

// ensure moves to a new page unless h more points fit on this one.
func (p *pdfPage) ensure(h float64, what string) error {
	if h > p.bottom-p.top {
		return internal.Errorf(internal.KindLayoutOverflow, "exports.PDFRenderer.Render",
			"%s needs %.1fpt but a page holds %.1fpt", what, h, p.bottom-p.top)
	}
	if p.y+h > p.bottom {
		return p.addPage()
	}
	return nil
}

func (p *pdfPage) setFont(bold bool, size float64) error {
	style := ""
	if bold {
		style = "B"
	}
	if err := p.pdf.SetFont(p.family, style, size); err != nil {
		return internal.Errorf(internal.KindPackaging, "exports.PDFRenderer.Render", "failed to set font: %w", err)
	}
	return nil
}

func (p *pdfPage) drawBlock(block document.Block, logos Logos) error {
	switch b := block.(type) {
	case document.Header:
		return p.drawHeader(b, logos)
	case document.Title:
		return p.drawParagraph(b.Paragraph)
	case document.StudentTable:
		return p.drawTable(b.Table, b.Kind().String())
	case document.Spacer:
		p.y += twipsToPoints(b.Before + b.After)
		return nil
	case document.ObservationTable:
		return p.drawTable(b.Table, b.Kind().String())
	case document.Signature:
		return p.drawParagraph(b.Paragraph)
	}
	return internal.Errorf(internal.KindPackaging, "exports.PDFRenderer.Render", "unsupported block %T", block)
}

type pdfLine struct {
	text  string
	bold  bool
	size  float64
	align document.Align
	// gap is the vertical space before this line.
	gap float64
	// first marks the opening line of a paragraph.
	first bool
}

type pdfCell struct {
	x, w    float64
	lines   []pdfLine
	content float64
	valign  document.VAlign
}

func (p *pdfPage) lineHeight(size float64) float64 {
	return size * p.cfg.LineSpacing
}

// typeset wraps paragraphs into lines for a box of the given inner width and
// returns the lines with their total height.
func (p *pdfPage) typeset(paragraphs []document.Paragraph, width float64) ([]pdfLine, float64, error) {
	var (
		lines  []pdfLine
		height float64
		carry  float64
	)
	for _, para := range paragraphs {
		if err := p.setFont(para.Bold, para.Size); err != nil {
			return nil, 0, err
		}
		wrapped, err := wrapText(p.pdf, para.Text, width)
		if err != nil {
			return nil, 0, internal.Errorf(internal.KindPackaging, "exports.PDFRenderer.Render",
				"failed to measure %q: %w", para.Text, err)
		}
		gap := carry + twipsToPoints(para.SpaceBefore)
		for i, text := range wrapped {
			line := pdfLine{text: text, bold: para.Bold, size: para.Size, align: para.Align}
			if i == 0 {
				line.gap = gap
				line.first = true
				height += gap
			}
			lines = append(lines, line)
			height += p.lineHeight(para.Size)
		}
		carry = twipsToPoints(para.SpaceAfter)
	}
	return lines, height + carry, nil
}

func (p *pdfPage) drawLines(lines []pdfLine, x, y, w float64) error {
	for _, line := range lines {
		if line.first || len(p.drawn) == 0 {
			p.drawn = append(p.drawn, nil)
		}
		last := len(p.drawn) - 1
		p.drawn[last] = append(p.drawn[last], line.text)

		y += line.gap
		if line.text != "" {
			if err := p.setFont(line.bold, line.size); err != nil {
				return err
			}
			tw, err := p.pdf.MeasureTextWidth(line.text)
			if err != nil {
				return internal.Errorf(internal.KindPackaging, "exports.PDFRenderer.Render", "failed to measure %q: %w", line.text, err)
			}
			lx := x
			switch line.align {
			case document.AlignCenter:
				lx = x + (w-tw)/2
			case document.AlignRight:
				lx = x + w - tw
			}
			p.pdf.SetXY(lx, y)
			if err := p.pdf.Cell(&gopdf.Rect{W: tw + 1, H: p.lineHeight(line.size)}, line.text); err != nil {
				return internal.Errorf(internal.KindPackaging, "exports.PDFRenderer.Render", "failed to draw text: %w", err)
			}
		}
		y += p.lineHeight(line.size)
	}
	return nil
}

func (p *pdfPage) drawParagraph(para document.Paragraph) error {
	lines, h, err := p.typeset([]document.Paragraph{para}, p.width)
	if err != nil {
		return err
	}
	if err := p.ensure(h, "paragraph"); err != nil {
		return err
	}
	if err := p.drawLines(lines, p.left, p.y, p.width); err != nil {
		return err
	}
	p.y += h
	return nil
}

func (p *pdfPage) drawHeader(h document.Header, logos Logos) error {
	widths, err := layout.FitWidths(h.Columns, 1.0/layout.TwipsPerPoint, p.width)
	if err != nil {
		return err
	}
	box := layout.LogoPoints(h.Left.Size)

	lines, textHeight, err := p.typeset(h.Lines, widths[1])
	if err != nil {
		return err
	}
	rowHeight := max(box, textHeight)
	if err := p.ensure(rowHeight, "header"); err != nil {
		return err
	}

	x := p.left
	if err := p.drawLogo(logos.For(h.Left.Slot), h.Left, x, widths[0], rowHeight); err != nil {
		return err
	}
	if err := p.drawLines(lines, x+widths[0], p.y+(rowHeight-textHeight)/2, widths[1]); err != nil {
		return err
	}
	if err := p.drawLogo(logos.For(h.Right.Slot), h.Right, x+widths[0]+widths[1], widths[2], rowHeight); err != nil {
		return err
	}
	p.y += rowHeight
	return nil
}

func (p *pdfPage) drawLogo(img *clients.Image, logo document.Logo, x, colWidth, rowHeight float64) error {
	const op = "exports.PDFRenderer.Render"

	box := layout.LogoPoints(logo.Size)
	if box > colWidth {
		return internal.Errorf(internal.KindLayoutOverflow, op, "logo of %.1fpt does not fit a %.1fpt column", box, colWidth)
	}
	w, h := layout.FitBox(img.Width, img.Height, box)

	lx := x + (box-w)/2
	if logo.Align == document.AlignRight {
		lx = x + colWidth - box + (box-w)/2
	}
	ly := p.y + (rowHeight-h)/2

	holder, err := gopdf.ImageHolderByBytes(img.Data)
	if err != nil {
		return internal.Errorf(internal.KindPackaging, op, "failed to create image holder for %s: %w", img.URL, err)
	}
	if err := p.pdf.ImageByHolder(holder, lx, ly, &gopdf.Rect{W: w, H: h}); err != nil {
		return internal.Errorf(internal.KindPackaging, op, "failed to place %s: %w", img.URL, err)
	}
	return nil
}

func (p *pdfPage) drawTable(t document.Table, what string) error {
	grid, err := layout.FitWidths(t.Grid, 1.0/layout.TwipsPerPoint, p.width)
	if err != nil {
		return err
	}
	pad := p.cfg.CellMargin
	padTop, padBottom := twipsToPoints(pad.Top), twipsToPoints(pad.Bottom)
	padLeft, padRight := twipsToPoints(pad.Left), twipsToPoints(pad.Right)

	for ri, row := range t.Rows {
		cells := make([]pdfCell, len(row.Cells))
		rowHeight := 0.0
		x, col := p.left, 0
		for i, c := range row.Cells {
			span := max(c.Span, 1)
			if col+span > len(grid) {
				return internal.Errorf(internal.KindLayoutOverflow, "exports.PDFRenderer.Render",
					"%s row %d spans %d columns of %d", what, ri, col+span, len(grid))
			}
			w := 0.0
			for _, gw := range grid[col : col+span] {
				w += gw
			}
			lines, content, err := p.typeset(c.Paragraphs, w-padLeft-padRight)
			if err != nil {
				return err
			}
			cells[i] = pdfCell{x: x, w: w, lines: lines, content: content, valign: c.VAlign}
			rowHeight = max(rowHeight, content+padTop+padBottom)
			x += w
			col += span
		}

		if err := p.ensure(rowHeight, fmt.Sprintf("%s row %d", what, ri)); err != nil {
			return err
		}
		for _, c := range cells {
			p.strokeRect(c.x, p.y, c.w, rowHeight)
			ty := p.y + padTop
			if c.valign == document.VAlignCenter {
				ty = p.y + (rowHeight-c.content)/2
			}
			if err := p.drawLines(c.lines, c.x+padLeft, ty, c.w-padLeft-padRight); err != nil {
				return err
			}
		}
		p.y += rowHeight
	}
	return nil
}

func (p *pdfPage) strokeRect(x, y, w, h float64) {
	p.pdf.Line(x, y, x+w, y)
	p.pdf.Line(x, y+h, x+w, y+h)
	p.pdf.Line(x, y, x, y+h)
	p.pdf.Line(x+w, y, x+w, y+h)
}

func twipsToPoints(twips int) float64 {
	return float64(twips) / layout.TwipsPerPoint
}

func hexColor(hex string) (uint8, uint8, uint8) {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
