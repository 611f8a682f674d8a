// Package document is the backend-agnostic model of a Student Observation
// Record and the builders that produce it.
//
// Geometry is in twips and font sizes in points. Blocks hold plain values
// only; a Document is built per export, handed to one renderer and dropped.
package document

import (
	"time"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type VAlign int

const (
	VAlignTop VAlign = iota
	VAlignCenter
)

// Paragraph is one line of text with uniform styling. Renderers may wrap it.
type Paragraph struct {
	Text        string
	Bold        bool
	Size        float64
	Align       Align
	SpaceBefore int
	SpaceAfter  int
}

type Cell struct {
	Span       int
	Width      int
	VAlign     VAlign
	Paragraphs []Paragraph
}

func (c Cell) Text() []string {
	lines := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		lines[i] = p.Text
	}
	return lines
}

type Row struct {
	Header bool
	Cells  []Cell
}

// Table is a bordered grid. Every row's spans add up to len(Grid).
type Table struct {
	Grid []int
	Rows []Row
}

func (t Table) Width() int {
	total := 0
	for _, w := range t.Grid {
		total += w
	}
	return total
}

type BlockKind int

const (
	KindHeader BlockKind = iota
	KindTitle
	KindStudentTable
	KindSpacer
	KindObservationTable
	KindSignature
)

func (k BlockKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindTitle:
		return "title"
	case KindStudentTable:
		return "student-table"
	case KindSpacer:
		return "spacer"
	case KindObservationTable:
		return "observation-table"
	case KindSignature:
		return "signature"
	}
	return "unknown"
}

type Block interface {
	Kind() BlockKind
}

type LogoSlot int

const (
	LogoLeft LogoSlot = iota
	LogoRight
)

type Logo struct {
	Slot  LogoSlot
	Size  int // square footprint, 96 dpi pixels
	Align Align
}

// Header is the borderless three-column letterhead.
type Header struct {
	Columns []int
	Left    Logo
	Lines   []Paragraph
	Right   Logo
}

type Title struct {
	Paragraph
}

type StudentTable struct {
	Table
}

type Spacer struct {
	Before int
	After  int
}

type ObservationTable struct {
	Table
}

type Signature struct {
	Paragraph
}

func (Header) Kind() BlockKind           { return KindHeader }
func (Title) Kind() BlockKind            { return KindTitle }
func (StudentTable) Kind() BlockKind     { return KindStudentTable }
func (Spacer) Kind() BlockKind           { return KindSpacer }
func (ObservationTable) Kind() BlockKind { return KindObservationTable }
func (Signature) Kind() BlockKind        { return KindSignature }

type Document struct {
	ID      string
	Title   string
	Subject string
	Created time.Time
	Blocks  []Block
}

// TextContent lists every paragraph of the document in block order, one
// entry per paragraph. Two renditions of the same Document carry exactly
// this text.
func (d *Document) TextContent() []string {
	var out []string
	for _, b := range d.Blocks {
		switch v := b.(type) {
		case Header:
			for _, p := range v.Lines {
				out = append(out, p.Text)
			}
		case Title:
			out = append(out, v.Text)
		case StudentTable:
			out = appendTableText(out, v.Table)
		case ObservationTable:
			out = appendTableText(out, v.Table)
		case Signature:
			out = append(out, v.Text)
		}
	}
	return out
}

func appendTableText(out []string, t Table) []string {
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			out = append(out, c.Text()...)
		}
	}
	return out
}
