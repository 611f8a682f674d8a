package exports

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runeMeasurer gives every rune a width of 1.
type runeMeasurer struct{}

func (runeMeasurer) MeasureTextWidth(text string) (float64, error) {
	return float64(utf8.RuneCountInString(text)), nil
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"empty", "", 10, []string{""}},
		{"blank", "   ", 10, []string{"   "}},
		{"fits", "hola mundo", 10, []string{"hola mundo"}},
		{"words", "el estudiante participa", 12, []string{"el", "estudiante", "participa"}},
		{"greedy", "a b c d e f", 5, []string{"a b c", "d e f"}},
		{"long word", "responsabilidad", 6, []string{"respon", "sabili", "dad"}},
		{"accents", "ñññññ ééé", 3, []string{"ñññ", "ññ", "ééé"}},
		{"narrow", "abc", 0.5, []string{"a", "b", "c"}},
		{"runs kept", "Nuevo: X    Antiguo:    Repitente:", 60, []string{"Nuevo: X    Antiguo:    Repitente:"}},
		{"indentation", "    1. sangría", 20, []string{"    1. sangría"}},
		{"break consumes run", "ab    cd", 4, []string{"ab", "cd"}},
		{"indented wrap", "  uno dos", 6, []string{"  uno", "dos"}},
		{"runs across lines", "Día: 3  Mes: 5  Año: 2024", 14, []string{"Día: 3  Mes: 5", "Año: 2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wrapText(runeMeasurer{}, tt.text, tt.width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
