package document

import (
	"fmt"
	"strings"

	"github.com/pwnholic/observador/internal/layout"
)

const (
	studentNameSize = 10
	studentBodySize = 8

	defaultDocumentType = "T.I."
	enrollmentMarker    = "X"
)

type labeled struct {
	span int
	text string
}

// BuildStudentTable fills the fixed student grid. Spans per row are constant;
// only the text after each label comes from the record.
func BuildStudentTable(cfg layout.Config, s Student) StudentTable {
	grid := append([]int(nil), cfg.StudentGrid[:]...)

	rows := [][]labeled{
		{
			{6, "NOMBRE DEL ESTUDIANTE: " + s.Name.String()},
			{2, "GRADO: " + s.Grade.String()},
			{2, "AÑO: " + s.Year.String()},
		},
		{
			{1, "Edad: " + s.Age.String()},
			{7, fmt.Sprintf("Fecha y Lugar de Nacimiento: Día: %s  Mes: %s  Año: %s  Lugar: %s",
				s.BirthDay, s.BirthMonth, s.BirthYear, s.BirthPlace)},
			{2, "Cel: " + s.Phone.String()},
		},
		{
			{3, s.DocumentType.Or(defaultDocumentType) + ": " + s.DocumentNumber.String()},
			{1, "RH: " + s.BloodType.String()},
			{2, "EPS: " + s.HealthInsurer.String()},
			{4, EnrollmentSlots(s.Enrollment())},
		},
		{
			{10, "DIRECCIÓN DE VIVIENDA: " + s.Address.String()},
		},
		{
			{3, "NOMBRE DEL PADRE: " + s.FatherName.String()},
			{3, "NOMBRE DE LA MADRE: " + s.MotherName.String()},
			{2, "ACUDIENTE: " + s.Guardian.String()},
			{2, "CEL: " + s.GuardianPhone.String()},
		},
		{
			{3, "OCUPACIÓN DEL PADRE: " + s.FatherOccupation.String()},
			{2, "CEL PADRE: " + s.FatherPhone.String()},
			{3, "OCUPACIÓN DE LA MADRE: " + s.MotherOccupation.String()},
			{2, "CEL MADRE: " + s.MotherPhone.String()},
		},
	}

	table := Table{Grid: grid}
	for i, cells := range rows {
		size := float64(studentBodySize)
		if i == 0 {
			size = studentNameSize
		}
		table.Rows = append(table.Rows, gridRow(grid, size, cells))
	}
	return StudentTable{table}
}

func gridRow(grid []int, size float64, cells []labeled) Row {
	row := Row{Cells: make([]Cell, 0, len(cells))}
	col := 0
	for _, c := range cells {
		width, err := layout.SpanWidth(grid, col, c.span)
		if err != nil {
			// spans are literals above; a mismatch is a programming error
			panic(err)
		}
		row.Cells = append(row.Cells, Cell{
			Span:       c.span,
			Width:      width,
			VAlign:     VAlignCenter,
			Paragraphs: []Paragraph{{Text: c.text, Size: size, Align: AlignLeft}},
		})
		col += c.span
	}
	if col != len(grid) {
		panic(fmt.Sprintf("row spans %d of %d grid columns", col, len(grid)))
	}
	return row
}

// EnrollmentSlots renders the three enrollment markers with exactly one
// marked.
func EnrollmentSlots(e Enrollment) string {
	slots := []Enrollment{EnrollmentNew, EnrollmentReturning, EnrollmentRepeating}
	parts := make([]string, len(slots))
	for i, slot := range slots {
		parts[i] = slot.String() + ":"
		if slot == e {
			parts[i] += " " + enrollmentMarker
		}
	}
	return strings.Join(parts, "    ")
}
