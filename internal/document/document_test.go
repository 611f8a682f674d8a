package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwnholic/observador/internal/layout"
)

func periodColumn(t ObservationTable) []string {
	var out []string
	for _, r := range t.Rows[1:] {
		out = append(out, r.Cells[0].Paragraphs[0].Text)
	}
	return out
}

func TestObservationTableAlwaysHasFourOrderedPeriods(t *testing.T) {
	cfg := layout.Default()
	inputs := map[string]ObservationSet{
		"nil":   nil,
		"empty": {},
		"partial": {
			PeriodIII: {Strengths: "Lee con fluidez"},
		},
		"reversed": {
			PeriodIV:  {Commitments: "c4"},
			PeriodIII: {Commitments: "c3"},
			PeriodII:  {Commitments: "c2"},
			PeriodI:   {Commitments: "c1"},
		},
	}

	for name, obs := range inputs {
		t.Run(name, func(t *testing.T) {
			table := BuildObservationTable(cfg, obs)

			require.Len(t, table.Rows, 5)
			assert.True(t, table.Rows[0].Header)
			assert.Equal(t, []string{"I", "II", "III", "IV"}, periodColumn(table))
		})
	}
}

func TestObservationCellsArePaddedToMinimumLines(t *testing.T) {
	cfg := layout.Default()
	obs := ObservationSet{
		PeriodI:  {Strengths: "una línea", Difficulties: "a\nb\nc\nd\ne\nf"},
		PeriodII: {Commitments: "x\r\ny"},
	}
	table := BuildObservationTable(cfg, obs)

	for _, row := range table.Rows[1:] {
		for _, cell := range row.Cells[1:4] {
			assert.GreaterOrEqual(t, len(cell.Paragraphs), cfg.MinCellLines)
		}
		assert.Equal(t, []string{""}, row.Cells[4].Text())
	}

	periodI := table.Rows[1]
	assert.Equal(t, []string{"una línea", "", "", ""}, periodI.Cells[1].Text())
	assert.Len(t, periodI.Cells[2].Paragraphs, 6)
	assert.Equal(t, []string{"x", "y", "", ""}, table.Rows[2].Cells[3].Text())
}

func TestMissingPeriodMatchesEmptyPeriod(t *testing.T) {
	cfg := layout.Default()

	missing := BuildObservationTable(cfg, ObservationSet{})
	empty := BuildObservationTable(cfg, ObservationSet{
		PeriodI: {}, PeriodII: {}, PeriodIII: {}, PeriodIV: {},
	})
	assert.Equal(t, missing, empty)
}

func TestObservationColumnsMatchConfig(t *testing.T) {
	cfg := layout.Default()
	table := BuildObservationTable(cfg, nil)

	want := cfg.Observation.Slice()
	for _, row := range table.Rows {
		require.Len(t, row.Cells, len(want))
		for i, cell := range row.Cells {
			assert.Equal(t, want[i], cell.Width)
		}
	}
	assert.Equal(t, cfg.TotalWidth, table.Width())
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"", "", "", ""}, SplitLines("", 4))
	assert.Equal(t, []string{"a", "", "b", ""}, SplitLines("a\n\nb", 4))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, SplitLines("a\rb\r\nc\nd\ne", 4))
}

func TestEnrollmentSlots(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"Nuevo", "Nuevo: X    Antiguo:    Repitente:"},
		{"Antiguo", "Nuevo:    Antiguo: X    Repitente:"},
		{"repitente", "Nuevo:    Antiguo:    Repitente: X"},
		{"", "Nuevo: X    Antiguo:    Repitente:"},
		{"Trasladado", "Nuevo: X    Antiguo:    Repitente:"},
	}
	for _, tt := range tests {
		got := EnrollmentSlots(ParseEnrollment(tt.status))
		assert.Equal(t, tt.want, got, tt.status)
		assert.Equal(t, 1, strings.Count(got, enrollmentMarker), tt.status)
	}
}

func TestStudentTableRendersBlanksForMissingFields(t *testing.T) {
	cfg := layout.Default()
	table := BuildStudentTable(cfg, Student{})

	require.Len(t, table.Rows, 6)
	for _, row := range table.Rows {
		spans := 0
		width := 0
		for _, c := range row.Cells {
			spans += c.Span
			width += c.Width
		}
		assert.Equal(t, layout.StudentGridColumns, spans)
		assert.Equal(t, cfg.TotalWidth, width)
	}

	first := table.Rows[0].Cells
	assert.Equal(t, "NOMBRE DEL ESTUDIANTE: ", first[0].Paragraphs[0].Text)
	assert.Equal(t, "GRADO: ", first[1].Paragraphs[0].Text)
	assert.Equal(t, "AÑO: ", first[2].Paragraphs[0].Text)
	assert.Equal(t, "T.I.: ", table.Rows[2].Cells[0].Paragraphs[0].Text)
	assert.Equal(t, "Nuevo: X    Antiguo:    Repitente:", table.Rows[2].Cells[3].Paragraphs[0].Text)
}

func TestStudentTableInterpolatesFields(t *testing.T) {
	var s Student
	raw := `{
		"nombre": "Ana Pérez", "grado": "7A", "anio": 2024, "edad": 12,
		"diaNacimiento": "3", "mesNacimiento": "5", "anioNacimiento": 2012,
		"lugarNacimiento": "Montería", "tipoDocumento": "R.C.", "numeroDocumento": "1002",
		"rh": "O+", "eps": null, "estadoMatricula": "Antiguo", "acudiente": "Rosa"
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	table := BuildStudentTable(layout.Default(), s)
	text := strings.Join(table.Table.allText(), "|")

	assert.Contains(t, text, "NOMBRE DEL ESTUDIANTE: Ana Pérez")
	assert.Contains(t, text, "AÑO: 2024")
	assert.Contains(t, text, "Edad: 12")
	assert.Contains(t, text, "Día: 3  Mes: 5  Año: 2012  Lugar: Montería")
	assert.Contains(t, text, "R.C.: 1002")
	assert.Contains(t, text, "EPS: |")
	assert.Contains(t, text, "Nuevo:    Antiguo: X    Repitente:")
	assert.Contains(t, text, "ACUDIENTE: Rosa")
}

func (t Table) allText() []string {
	return appendTableText(nil, t)
}

func TestFieldRejectsObjects(t *testing.T) {
	var s Student
	err := json.Unmarshal([]byte(`{"nombre": {"first": "Ana"}}`), &s)
	assert.Error(t, err)
}

func TestObservationSetJSON(t *testing.T) {
	var obs ObservationSet
	raw := `{"II": {"fortalezas": "Participa\nAyuda", "dificultades": null}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &obs))

	assert.Equal(t, Field("Participa\nAyuda"), obs.For(PeriodII).Strengths)
	assert.Equal(t, Observation{}, obs.For(PeriodI))
}

func TestBuildBlockOrderAndIdempotence(t *testing.T) {
	cfg := layout.Default()
	s := Student{Name: "Luis Gómez", Year: "2025"}
	obs := ObservationSet{PeriodI: {Strengths: "Puntual"}}

	a := Build(cfg, DefaultLetterhead(), s, obs)
	b := Build(cfg, DefaultLetterhead(), s, obs)

	kinds := make([]BlockKind, len(a.Blocks))
	for i, blk := range a.Blocks {
		kinds[i] = blk.Kind()
	}
	assert.Equal(t, []BlockKind{KindHeader, KindTitle, KindStudentTable, KindSpacer, KindObservationTable, KindSignature}, kinds)
	assert.Equal(t, a.Blocks, b.Blocks)
	assert.Equal(t, a.TextContent(), b.TextContent())
	assert.Equal(t, "Luis Gómez", a.Subject)
}

func TestHeaderIsPresentational(t *testing.T) {
	cfg := layout.Default()
	h := BuildHeader(cfg, DefaultLetterhead())

	require.Len(t, h.Lines, 6)
	assert.True(t, h.Lines[1].Bold)
	assert.Equal(t, "INSTITUCIÓN EDUCATIVA SAN LUIS", h.Lines[1].Text)
	for _, l := range h.Lines {
		assert.Equal(t, AlignCenter, l.Align)
	}
	assert.Equal(t, cfg.LogoSize, h.Left.Size)
	assert.Equal(t, h.Left.Size, h.Right.Size)
	assert.Equal(t, AlignRight, h.Right.Align)
	assert.Equal(t, cfg.HeaderWidths(), h.Columns)
}
