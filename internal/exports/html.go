package exports

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"

	"github.com/pwnholic/observador/internal"
	"github.com/pwnholic/observador/internal/clients"
	"github.com/pwnholic/observador/internal/document"
	"github.com/pwnholic/observador/internal/layout"
)

var htmlPage = template.Must(template.New("record").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="document-id" content="{{.ID}}">
<title>{{.Title}} - {{.Subject}}</title>
<style>
@page { size: {{.PageSize}}; margin: {{.PageMargin}}; }
body { font-family: {{.Font}}, sans-serif; margin: 0; }
table { border-collapse: collapse; table-layout: fixed; width: 100%; }
table.grid td { border: {{.Border}}; padding: {{.Padding}}; }
table.letterhead td { border: none; }
tr { page-break-inside: avoid; }
thead { display: table-header-group; }
p.line { margin: 0; line-height: {{.LineHeight}}; min-height: {{.LineHeight}}em; white-space: pre-wrap; }
</style>
</head>
<body>
{{- range .Blocks}}
{{- if .Header}}
<table class="letterhead">
<colgroup>{{range .Header.Cols}}<col style="{{.}}">{{end}}</colgroup>
<tr>
<td style="vertical-align: middle; text-align: {{.Header.Left.Align}}"><img class="logo" alt="" src="{{.Header.Left.Src}}" style="{{.Header.Left.Style}}"></td>
<td style="vertical-align: middle">{{range .Header.Lines}}<p class="line" style="{{.Style}}">{{.Text}}</p>{{end}}</td>
<td style="vertical-align: middle; text-align: {{.Header.Right.Align}}"><img class="logo" alt="" src="{{.Header.Right.Src}}" style="{{.Header.Right.Style}}"></td>
</tr>
</table>
{{- else if .Table}}
<table class="grid {{.Table.Class}}">
<colgroup>{{range .Table.Cols}}<col style="{{.}}">{{end}}</colgroup>
{{- range .Table.Rows}}
{{if .Header}}<thead>{{end}}<tr>{{range .Cells}}<td colspan="{{.Span}}" style="{{.Style}}">{{range .Paragraphs}}<p class="line" style="{{.Style}}">{{.Text}}</p>{{end}}</td>{{end}}</tr>{{if .Header}}</thead>{{end}}
{{- end}}
</table>
{{- else if .Paragraph}}
<p class="line {{.Class}}" style="{{.Paragraph.Style}}">{{.Paragraph.Text}}</p>
{{- else}}
<div class="spacer" style="{{.Spacer}}"></div>
{{- end}}
{{- end}}
</body>
</html>
`))

// HTMLRenderer produces a self-contained printable page with the logos
// inlined as data URIs. Column widths are proportional so the browser
// reflows the tables to the print area.
type HTMLRenderer struct {
	cfg layout.Config
}

func NewHTMLRenderer(cfg layout.Config) *HTMLRenderer {
	return &HTMLRenderer{cfg: cfg}
}

func (r *HTMLRenderer) Name() string                    { return "html" }
func (r *HTMLRenderer) Extension() string               { return "html" }
func (r *HTMLRenderer) ContentType() string             { return "text/html; charset=utf-8" }
func (r *HTMLRenderer) ImageEncoding() clients.Encoding { return clients.EncodingPNG }

type htmlParagraph struct {
	Text  string
	Style template.CSS
}

type htmlCell struct {
	Span       int
	Style      template.CSS
	Paragraphs []htmlParagraph
}

type htmlRow struct {
	Header bool
	Cells  []htmlCell
}

type htmlTable struct {
	Class string
	Cols  []template.CSS
	Rows  []htmlRow
}

type htmlLogo struct {
	Src   template.URL
	Style template.CSS
	Align string
}

type htmlHeader struct {
	Cols  []template.CSS
	Left  htmlLogo
	Lines []htmlParagraph
	Right htmlLogo
}

type htmlBlock struct {
	Class     string
	Header    *htmlHeader
	Table     *htmlTable
	Paragraph *htmlParagraph
	Spacer    template.CSS
}

type htmlView struct {
	ID         string
	Title      string
	Subject    string
	PageSize   template.CSS
	PageMargin template.CSS
	Font       template.CSS
	Border     template.CSS
	Padding    template.CSS
	LineHeight template.CSS
	Blocks     []htmlBlock
}

func (r *HTMLRenderer) Render(doc *document.Document, logos Logos) (*Artifact, error) {
	const op = "exports.HTMLRenderer.Render"

	if err := logos.validate(op); err != nil {
		return nil, err
	}

	page := r.cfg.DocumentPage
	m := r.cfg.CellMargin
	view := htmlView{
		ID:         doc.ID,
		Title:      doc.Title,
		Subject:    doc.Subject,
		PageSize:   template.CSS(fmt.Sprintf("%gpt %gpt", page.Width, page.Height)),
		PageMargin: template.CSS(fmt.Sprintf("%gpt", page.Margin)),
		Font:       template.CSS(fmt.Sprintf("%q", r.cfg.FontFamily)),
		Border: template.CSS(fmt.Sprintf("%gpt %s #%s",
			r.cfg.Border.Width, cssBorderStyle(r.cfg.Border.Style), r.cfg.Border.Color)),
		Padding: template.CSS(fmt.Sprintf("%gpt %gpt %gpt %gpt",
			twipsToPoints(m.Top), twipsToPoints(m.Right), twipsToPoints(m.Bottom), twipsToPoints(m.Left))),
		LineHeight: template.CSS(fmt.Sprintf("%g", r.cfg.LineSpacing)),
	}

	for _, block := range doc.Blocks {
		switch v := block.(type) {
		case document.Header:
			view.Blocks = append(view.Blocks, htmlBlock{Header: &htmlHeader{
				Cols:  percentCols(v.Columns),
				Left:  htmlLogoFor(v.Left, logos.For(v.Left.Slot)),
				Lines: htmlParagraphs(v.Lines),
				Right: htmlLogoFor(v.Right, logos.For(v.Right.Slot)),
			}})
		case document.Title:
			p := htmlParagraphFor(v.Paragraph)
			view.Blocks = append(view.Blocks, htmlBlock{Class: "title", Paragraph: &p})
		case document.StudentTable:
			view.Blocks = append(view.Blocks, htmlBlock{Table: htmlTableFor("student", v.Table)})
		case document.Spacer:
			view.Blocks = append(view.Blocks, htmlBlock{Spacer: template.CSS(fmt.Sprintf("height: %gpt",
				twipsToPoints(v.Before+v.After)))})
		case document.ObservationTable:
			view.Blocks = append(view.Blocks, htmlBlock{Table: htmlTableFor("observations", v.Table)})
		case document.Signature:
			p := htmlParagraphFor(v.Paragraph)
			view.Blocks = append(view.Blocks, htmlBlock{Class: "signature", Paragraph: &p})
		default:
			return nil, internal.Errorf(internal.KindPackaging, op, "unsupported block %T", block)
		}
	}

	var buf bytes.Buffer
	if err := htmlPage.Execute(&buf, view); err != nil {
		return nil, internal.Errorf(internal.KindPackaging, op, "failed to execute template: %w", err)
	}
	return &Artifact{ContentType: r.ContentType(), Data: buf.Bytes()}, nil
}

func htmlParagraphFor(p document.Paragraph) htmlParagraph {
	style := []string{
		fmt.Sprintf("font-size: %gpt", p.Size),
		"text-align: " + cssAlign(p.Align),
	}
	if p.Bold {
		style = append(style, "font-weight: bold")
	}
	if p.SpaceBefore > 0 {
		style = append(style, fmt.Sprintf("padding-top: %gpt", twipsToPoints(p.SpaceBefore)))
	}
	if p.SpaceAfter > 0 {
		style = append(style, fmt.Sprintf("padding-bottom: %gpt", twipsToPoints(p.SpaceAfter)))
	}
	return htmlParagraph{Text: p.Text, Style: template.CSS(strings.Join(style, "; "))}
}

func htmlParagraphs(ps []document.Paragraph) []htmlParagraph {
	out := make([]htmlParagraph, len(ps))
	for i, p := range ps {
		out[i] = htmlParagraphFor(p)
	}
	return out
}

func htmlTableFor(class string, t document.Table) *htmlTable {
	out := &htmlTable{Class: class, Cols: percentCols(t.Grid)}
	for _, row := range t.Rows {
		hr := htmlRow{Header: row.Header}
		for _, c := range row.Cells {
			valign := "top"
			if c.VAlign == document.VAlignCenter {
				valign = "middle"
			}
			hr.Cells = append(hr.Cells, htmlCell{
				Span:       max(c.Span, 1),
				Style:      template.CSS("vertical-align: " + valign),
				Paragraphs: htmlParagraphs(c.Paragraphs),
			})
		}
		out.Rows = append(out.Rows, hr)
	}
	return out
}

func htmlLogoFor(logo document.Logo, img *clients.Image) htmlLogo {
	w, h := layout.FitBox(img.Width, img.Height, float64(logo.Size))
	src := "data:" + img.Encoding.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	return htmlLogo{
		Src:   template.URL(src),
		Style: template.CSS(fmt.Sprintf("width: %gpx; height: %gpx", w, h)),
		Align: cssAlign(logo.Align),
	}
}

func percentCols(cols []int) []template.CSS {
	total := sumWidths(cols)
	out := make([]template.CSS, len(cols))
	for i, c := range cols {
		out[i] = template.CSS(fmt.Sprintf("width: %.4f%%", float64(c)*100/float64(total)))
	}
	return out
}

func cssAlign(a document.Align) string {
	switch a {
	case document.AlignCenter:
		return "center"
	case document.AlignRight:
		return "right"
	}
	return "left"
}

func cssBorderStyle(style string) string {
	if style == "single" {
		return "solid"
	}
	return style
}
