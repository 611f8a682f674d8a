package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field is an optional scalar coming from upstream records. It accepts JSON
// strings, numbers, booleans and null; null and absence both read as "".
type Field string

func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Field(s)
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("field expects a scalar, got %s", b)
	default:
		*f = Field(b)
	}
	return nil
}

func (f Field) String() string {
	return string(f)
}

// Or returns fallback when f is empty.
func (f Field) Or(fallback string) string {
	if f == "" {
		return fallback
	}
	return string(f)
}

type Enrollment int

const (
	EnrollmentNew Enrollment = iota
	EnrollmentReturning
	EnrollmentRepeating
)

// Status literals as stored upstream.
const (
	StatusNew       = "Nuevo"
	StatusReturning = "Antiguo"
	StatusRepeating = "Repitente"
)

func (e Enrollment) String() string {
	switch e {
	case EnrollmentReturning:
		return StatusReturning
	case EnrollmentRepeating:
		return StatusRepeating
	}
	return StatusNew
}

// ParseEnrollment matches a status literal case-insensitively. Anything
// unrecognized, including an empty value, is EnrollmentNew.
func ParseEnrollment(status string) Enrollment {
	status = strings.TrimSpace(status)
	switch {
	case strings.EqualFold(status, StatusReturning):
		return EnrollmentReturning
	case strings.EqualFold(status, StatusRepeating):
		return EnrollmentRepeating
	}
	return EnrollmentNew
}

type Student struct {
	Name           Field `json:"nombre"`
	Grade          Field `json:"grado"`
	Year           Field `json:"anio"`
	Age            Field `json:"edad"`
	BirthDay       Field `json:"diaNacimiento"`
	BirthMonth     Field `json:"mesNacimiento"`
	BirthYear      Field `json:"anioNacimiento"`
	BirthPlace     Field `json:"lugarNacimiento"`
	Phone          Field `json:"celular"`
	DocumentType   Field `json:"tipoDocumento"`
	DocumentNumber Field `json:"numeroDocumento"`
	BloodType      Field `json:"rh"`
	HealthInsurer  Field `json:"eps"`
	Status         Field `json:"estadoMatricula"`
	Address        Field `json:"direccion"`

	FatherName       Field `json:"nombrePadre"`
	FatherOccupation Field `json:"ocupacionPadre"`
	FatherPhone      Field `json:"celularPadre"`
	MotherName       Field `json:"nombreMadre"`
	MotherOccupation Field `json:"ocupacionMadre"`
	MotherPhone      Field `json:"celularMadre"`
	Guardian         Field `json:"acudiente"`
	GuardianPhone    Field `json:"celularAcudiente"`
}

func (s Student) Enrollment() Enrollment {
	return ParseEnrollment(string(s.Status))
}

type Period string

const (
	PeriodI   Period = "I"
	PeriodII  Period = "II"
	PeriodIII Period = "III"
	PeriodIV  Period = "IV"
)

// Periods returns the canonical period order.
func Periods() []Period {
	return []Period{PeriodI, PeriodII, PeriodIII, PeriodIV}
}

type Observation struct {
	Strengths    Field `json:"fortalezas"`
	Difficulties Field `json:"dificultades"`
	Commitments  Field `json:"compromisos"`
}

// ObservationSet maps a period to its observation. A missing period reads as
// an empty Observation.
type ObservationSet map[Period]Observation

func (o ObservationSet) For(p Period) Observation {
	if o == nil {
		return Observation{}
	}
	return o[p]
}
