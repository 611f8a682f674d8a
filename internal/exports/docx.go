package exports

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/pwnholic/observador/internal"
	"github.com/pwnholic/observador/internal/clients"
	"github.com/pwnholic/observador/internal/document"
	"github.com/pwnholic/observador/internal/layout"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relImage = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// DOCXRenderer writes an editable WordprocessingML package: one landscape
// section whose tables reflow and paginate in the word processor.
type DOCXRenderer struct {
	cfg layout.Config
}

func NewDOCXRenderer(cfg layout.Config) *DOCXRenderer {
	return &DOCXRenderer{cfg: cfg}
}

func (r *DOCXRenderer) Name() string      { return "docx" }
func (r *DOCXRenderer) Extension() string { return "docx" }
func (r *DOCXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (r *DOCXRenderer) ImageEncoding() clients.Encoding { return clients.EncodingPNG }

type docxMedia struct {
	id   string
	name string
	data []byte
}

type docxWriter struct {
	cfg       layout.Config
	logos     Logos
	available int
	media     []docxMedia
	mediaIDs  map[document.LogoSlot]string
	drawings  int
}

func (r *DOCXRenderer) Render(doc *document.Document, logos Logos) (*Artifact, error) {
	const op = "exports.DOCXRenderer.Render"

	if err := logos.validate(op); err != nil {
		return nil, err
	}

	w := &docxWriter{
		cfg:       r.cfg,
		logos:     logos,
		available: int(r.cfg.DocumentPage.ContentWidth() * layout.TwipsPerPoint),
		mediaIDs:  make(map[document.LogoSlot]string),
	}
	body, err := w.document(doc)
	if err != nil {
		return nil, err
	}

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"docProps/core.xml", []byte(coreXML(doc))},
		{"docProps/app.xml", []byte(appXML)},
		{"word/document.xml", []byte(body)},
		{"word/styles.xml", []byte(w.styles())},
		{"word/_rels/document.xml.rels", []byte(w.documentRels())},
	}
	for _, m := range w.media {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/" + m.name, m.data})
	}

	modified := doc.Created
	if modified.IsZero() {
		modified = time.Now()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     part.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, internal.Errorf(internal.KindPackaging, op, "failed to add %s: %w", part.name, err)
		}
		if _, err := f.Write(part.data); err != nil {
			return nil, internal.Errorf(internal.KindPackaging, op, "failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, internal.Errorf(internal.KindPackaging, op, "failed to finish package: %w", err)
	}
	internal.Debug("docx rendered: %d parts, %d bytes", len(parts), buf.Len())

	return &Artifact{ContentType: r.ContentType(), Data: buf.Bytes()}, nil
}

func (w *docxWriter) document(doc *document.Document) (string, error) {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s"><w:body>`,
		nsW, nsR, nsWP, nsA, nsPic)

	for _, block := range doc.Blocks {
		var err error
		switch v := block.(type) {
		case document.Header:
			err = w.header(&b, v)
		case document.Title:
			w.paragraph(&b, v.Paragraph)
		case document.StudentTable:
			err = w.table(&b, v.Table)
		case document.Spacer:
			fmt.Fprintf(&b, `<w:p><w:pPr><w:spacing w:before="%d" w:after="%d"/></w:pPr></w:p>`, v.Before, v.After)
		case document.ObservationTable:
			err = w.table(&b, v.Table)
		case document.Signature:
			w.paragraph(&b, v.Paragraph)
		default:
			err = internal.Errorf(internal.KindPackaging, "exports.DOCXRenderer.Render", "unsupported block %T", block)
		}
		if err != nil {
			return "", err
		}
	}

	page := w.cfg.DocumentPage
	margin := int(page.Margin * layout.TwipsPerPoint)
	fmt.Fprintf(&b, `<w:sectPr><w:pgSz w:w="%d" w:h="%d" w:orient="%s"/>`+
		`<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`,
		int(page.Width*layout.TwipsPerPoint), int(page.Height*layout.TwipsPerPoint), page.Orientation,
		margin, margin, margin, margin)
	b.WriteString(`</w:body></w:document>`)
	return b.String(), nil
}

func (w *docxWriter) runProps(b *strings.Builder, bold bool, size float64) {
	font := escape(w.cfg.FontFamily)
	fmt.Fprintf(b, `<w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/>`, font, font, font)
	if bold {
		b.WriteString(`<w:b/><w:bCs/>`)
	}
	half := int(size*2 + 0.5)
	fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr>`, half, half)
}

func (w *docxWriter) paragraph(b *strings.Builder, p document.Paragraph) {
	b.WriteString(`<w:p><w:pPr>`)
	if p.SpaceBefore > 0 || p.SpaceAfter > 0 {
		fmt.Fprintf(b, `<w:spacing w:before="%d" w:after="%d"/>`, p.SpaceBefore, p.SpaceAfter)
	}
	fmt.Fprintf(b, `<w:jc w:val="%s"/>`, jc(p.Align))
	w.runProps(b, p.Bold, p.Size)
	b.WriteString(`</w:pPr><w:r>`)
	w.runProps(b, p.Bold, p.Size)
	fmt.Fprintf(b, `<w:t xml:space="preserve">%s</w:t></w:r></w:p>`, escape(p.Text))
}

func (w *docxWriter) tableProps(b *strings.Builder, width int, bordered bool) {
	fmt.Fprintf(b, `<w:tblPr><w:tblW w:w="%d" w:type="dxa"/>`, width)
	b.WriteString(`<w:tblBorders>`)
	for _, edge := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		if bordered {
			border := w.cfg.Border
			fmt.Fprintf(b, `<w:%s w:val="%s" w:sz="%d" w:space="0" w:color="%s"/>`,
				edge, border.Style, max(2, int(border.Width*8)), border.Color)
		} else {
			fmt.Fprintf(b, `<w:%s w:val="none" w:sz="0" w:space="0" w:color="auto"/>`, edge)
		}
	}
	b.WriteString(`</w:tblBorders><w:tblLayout w:type="fixed"/></w:tblPr>`)
}

func (w *docxWriter) grid(b *strings.Builder, cols []int) {
	b.WriteString(`<w:tblGrid>`)
	for _, c := range cols {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, c)
	}
	b.WriteString(`</w:tblGrid>`)
}

func (w *docxWriter) cellProps(b *strings.Builder, width, span int, valign document.VAlign, margins bool) {
	fmt.Fprintf(b, `<w:tcPr><w:tcW w:w="%d" w:type="dxa"/>`, width)
	if span > 1 {
		fmt.Fprintf(b, `<w:gridSpan w:val="%d"/>`, span)
	}
	if margins {
		m := w.cfg.CellMargin
		fmt.Fprintf(b, `<w:tcMar><w:top w:w="%d" w:type="dxa"/><w:left w:w="%d" w:type="dxa"/>`+
			`<w:bottom w:w="%d" w:type="dxa"/><w:right w:w="%d" w:type="dxa"/></w:tcMar>`,
			m.Top, m.Left, m.Bottom, m.Right)
	}
	v := "top"
	if valign == document.VAlignCenter {
		v = "center"
	}
	fmt.Fprintf(b, `<w:vAlign w:val="%s"/></w:tcPr>`, v)
}

func (w *docxWriter) table(b *strings.Builder, t document.Table) error {
	grid, err := layout.FitTwips(t.Grid, w.available)
	if err != nil {
		return err
	}

	b.WriteString(`<w:tbl>`)
	w.tableProps(b, sumWidths(grid), true)
	w.grid(b, grid)
	for ri, row := range t.Rows {
		b.WriteString(`<w:tr><w:trPr><w:cantSplit/>`)
		if row.Header {
			b.WriteString(`<w:tblHeader/>`)
		}
		b.WriteString(`</w:trPr>`)

		col := 0
		for _, c := range row.Cells {
			span := max(c.Span, 1)
			if col+span > len(grid) {
				return internal.Errorf(internal.KindLayoutOverflow, "exports.DOCXRenderer.Render",
					"row %d spans %d columns of %d", ri, col+span, len(grid))
			}
			b.WriteString(`<w:tc>`)
			w.cellProps(b, sumWidths(grid[col:col+span]), span, c.VAlign, true)
			for _, p := range c.Paragraphs {
				w.paragraph(b, p)
			}
			if len(c.Paragraphs) == 0 {
				b.WriteString(`<w:p/>`)
			}
			b.WriteString(`</w:tc>`)
			col += span
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
	return nil
}

func (w *docxWriter) header(b *strings.Builder, h document.Header) error {
	cols, err := layout.FitTwips(h.Columns, w.available)
	if err != nil {
		return err
	}

	b.WriteString(`<w:tbl>`)
	w.tableProps(b, sumWidths(cols), false)
	w.grid(b, cols)
	b.WriteString(`<w:tr>`)

	if err := w.logoCell(b, h.Left, cols[0]); err != nil {
		return err
	}
	b.WriteString(`<w:tc>`)
	w.cellProps(b, cols[1], 1, document.VAlignCenter, false)
	for _, p := range h.Lines {
		w.paragraph(b, p)
	}
	b.WriteString(`</w:tc>`)
	if err := w.logoCell(b, h.Right, cols[2]); err != nil {
		return err
	}

	b.WriteString(`</w:tr></w:tbl>`)
	return nil
}

func (w *docxWriter) logoCell(b *strings.Builder, logo document.Logo, width int) error {
	pxWidth := int(float64(width) / layout.TwipsPerPoint / layout.PointsPerPixel)
	if logo.Size > pxWidth {
		return internal.Errorf(internal.KindLayoutOverflow, "exports.DOCXRenderer.Render",
			"logo of %dpx does not fit a %dpx column", logo.Size, pxWidth)
	}
	b.WriteString(`<w:tc>`)
	w.cellProps(b, width, 1, document.VAlignCenter, false)
	fmt.Fprintf(b, `<w:p><w:pPr><w:jc w:val="%s"/></w:pPr><w:r>`, jc(logo.Align))
	w.drawing(b, logo)
	b.WriteString(`</w:r></w:p></w:tc>`)
	return nil
}

func (w *docxWriter) drawing(b *strings.Builder, logo document.Logo) {
	img := w.logos.For(logo.Slot)
	id, ok := w.mediaIDs[logo.Slot]
	if !ok {
		id = fmt.Sprintf("rIdLogo%d", len(w.media)+1)
		w.media = append(w.media, docxMedia{
			id:   id,
			name: fmt.Sprintf("media/logo%d.%s", len(w.media)+1, img.Encoding.Extension()),
			data: img.Data,
		})
		w.mediaIDs[logo.Slot] = id
	}

	wpx, hpx := layout.FitBox(img.Width, img.Height, float64(logo.Size))
	cx := int(wpx * layout.EMUPerPixel)
	cy := int(hpx * layout.EMUPerPixel)
	w.drawings++
	name := fmt.Sprintf("Logo %d", w.drawings)

	fmt.Fprintf(b, `<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="%s"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic><a:graphicData uri="%s"><pic:pic>`+
		`<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		cx, cy, w.drawings, name, nsPic, w.drawings, name, id, cx, cy)
}

func (w *docxWriter) styles() string {
	font := escape(w.cfg.FontFamily)
	line := int(w.cfg.LineSpacing*240 + 0.5)
	return xmlHeader + fmt.Sprintf(`<w:styles xmlns:w="%s"><w:docDefaults><w:rPrDefault><w:rPr>`+
		`<w:rFonts w:ascii="%s" w:eastAsia="%s" w:hAnsi="%s" w:cs="%s"/><w:sz w:val="18"/><w:szCs w:val="18"/><w:lang w:val="es-CO"/>`+
		`</w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:after="0" w:line="%d" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>`+
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>`+
		`<w:style w:type="table" w:default="1" w:styleId="TableNormal"><w:name w:val="Normal Table"/><w:uiPriority w:val="99"/><w:semiHidden/><w:tblPr>`+
		`<w:tblInd w:w="0" w:type="dxa"/><w:tblCellMar><w:top w:w="0" w:type="dxa"/><w:left w:w="108" w:type="dxa"/>`+
		`<w:bottom w:w="0" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style></w:styles>`,
		nsW, font, font, font, font, line)
}

func (w *docxWriter) documentRels() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rIdStyles" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	for _, m := range w.media {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, m.id, relImage, m.name)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

const contentTypesXML = xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Default Extension="jpeg" ContentType="image/jpeg"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
	`</Types>`

const packageRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

const appXML = xmlHeader + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
	`<Application>observador</Application></Properties>`

func coreXML(doc *document.Document) string {
	created := doc.Created
	if created.IsZero() {
		created = time.Now()
	}
	return xmlHeader + fmt.Sprintf(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" `+
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`+
		`<dc:title>%s</dc:title><dc:subject>%s</dc:subject><dc:creator>observador</dc:creator><dc:identifier>%s</dc:identifier>`+
		`<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created></cp:coreProperties>`,
		escape(doc.Title), escape(doc.Subject), escape(doc.ID), created.UTC().Format(time.RFC3339))
}

func jc(a document.Align) string {
	switch a {
	case document.AlignCenter:
		return "center"
	case document.AlignRight:
		return "right"
	}
	return "left"
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func sumWidths(v []int) int {
	total := 0
	for _, n := range v {
		total += n
	}
	return total
}
