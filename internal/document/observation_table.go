package document

import (
	"strings"

	"github.com/pwnholic/observador/internal/layout"
)

const (
	observationHeaderSize    = 9
	observationSignatureSize = 8
	observationPeriodSize    = 18
	observationBodySize      = 9
	observationLineSpacing   = 50
)

// BuildObservationTable produces the header row plus one row per period in
// canonical order. Free text is split on newlines and padded to
// cfg.MinCellLines so every period row has the same minimum height.
func BuildObservationTable(cfg layout.Config, obs ObservationSet) ObservationTable {
	widths := cfg.Observation.Slice()
	table := Table{Grid: widths}

	headerCell := func(i int, text string, size float64) Cell {
		return Cell{
			Span:       1,
			Width:      widths[i],
			VAlign:     VAlignCenter,
			Paragraphs: []Paragraph{{Text: text, Bold: true, Size: size, Align: AlignCenter}},
		}
	}
	table.Rows = append(table.Rows, Row{
		Header: true,
		Cells: []Cell{
			headerCell(0, "PERÍODO", observationHeaderSize),
			headerCell(1, "FORTALEZAS", observationHeaderSize),
			headerCell(2, "DIFICULTADES", observationHeaderSize),
			headerCell(3, "COMPROMISOS", observationHeaderSize),
			headerCell(4, "FIRMA ACUDIENTE", observationSignatureSize),
		},
	})

	for _, period := range Periods() {
		o := obs.For(period)
		table.Rows = append(table.Rows, Row{Cells: []Cell{
			{
				Span:       1,
				Width:      widths[0],
				VAlign:     VAlignCenter,
				Paragraphs: []Paragraph{{Text: string(period), Bold: true, Size: observationPeriodSize, Align: AlignCenter}},
			},
			textCell(widths[1], o.Strengths.String(), cfg.MinCellLines),
			textCell(widths[2], o.Difficulties.String(), cfg.MinCellLines),
			textCell(widths[3], o.Commitments.String(), cfg.MinCellLines),
			{
				Span:       1,
				Width:      widths[4],
				VAlign:     VAlignCenter,
				Paragraphs: []Paragraph{{Size: observationBodySize, Align: AlignCenter}},
			},
		}})
	}
	return ObservationTable{table}
}

func textCell(width int, text string, minLines int) Cell {
	lines := SplitLines(text, minLines)
	paragraphs := make([]Paragraph, len(lines))
	for i, line := range lines {
		paragraphs[i] = Paragraph{
			Text:       line,
			Size:       observationBodySize,
			Align:      AlignLeft,
			SpaceAfter: observationLineSpacing,
		}
	}
	return Cell{Span: 1, Width: width, VAlign: VAlignTop, Paragraphs: paragraphs}
}

// SplitLines splits text on line breaks (\n, \r\n or \r) and pads the result
// with empty lines up to minLines.
func SplitLines(text string, minLines int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	for len(lines) < minLines {
		lines = append(lines, "")
	}
	return lines
}
