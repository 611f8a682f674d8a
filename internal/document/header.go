package document

import (
	"github.com/pwnholic/observador/internal/layout"
)

const (
	letterheadSize      = 9
	letterheadSmallSize = 7

	titleText        = "OBSERVADOR DEL ESTUDIANTE"
	titleSize        = 16
	titleSpaceBefore = 100
	titleSpaceAfter  = 200
)

// Letterhead is the institutional text printed between the two logos.
type Letterhead struct {
	Country       string
	Institution   string
	Resolutions   [2]string
	Locality      string
	Accreditation string
}

func DefaultLetterhead() Letterhead {
	return Letterhead{
		Country:     "REPÚBLICA DE COLOMBIA",
		Institution: "INSTITUCIÓN EDUCATIVA SAN LUIS",
		Resolutions: [2]string{
			"RESOLUCION Nº 001217 de SEPTIEMBRE DE 2002",
			"RESOLUCION Nº 000495 de NOVIEMBRE 23 DE 2007",
		},
		Locality:      "SAN JOSE DE URE – CÓRDOBA *CORREGIMIENTO VIERA ABAJO",
		Accreditation: "COD. ICFES 139238 – 139246 NIT 812005633 – 0 * NUCLEO 0079",
	}
}

func (l Letterhead) paragraphs() []Paragraph {
	line := func(text string, size float64, bold bool) Paragraph {
		return Paragraph{Text: text, Size: size, Bold: bold, Align: AlignCenter}
	}
	return []Paragraph{
		line(l.Country, letterheadSize, false),
		line(l.Institution, letterheadSize, true),
		line(l.Resolutions[0], letterheadSmallSize, false),
		line(l.Resolutions[1], letterheadSmallSize, false),
		line(l.Locality, letterheadSmallSize, false),
		line(l.Accreditation, letterheadSmallSize, false),
	}
}

// BuildHeader lays out logo | letterhead | logo. No student data goes in.
func BuildHeader(cfg layout.Config, lh Letterhead) Header {
	return Header{
		Columns: cfg.HeaderWidths(),
		Left:    Logo{Slot: LogoLeft, Size: cfg.LogoSize, Align: AlignLeft},
		Lines:   lh.paragraphs(),
		Right:   Logo{Slot: LogoRight, Size: cfg.LogoSize, Align: AlignRight},
	}
}

func BuildTitle() Title {
	return Title{Paragraph{
		Text:        titleText,
		Bold:        true,
		Size:        titleSize,
		Align:       AlignCenter,
		SpaceBefore: titleSpaceBefore,
		SpaceAfter:  titleSpaceAfter,
	}}
}

func BuildSpacer() Spacer {
	return Spacer{Before: 100, After: 100}
}

// BuildSignature is the instructor's signature line under the observations.
func BuildSignature() Signature {
	return Signature{Paragraph{
		Text:        "FIRMA DEL DOCENTE: _____________________________________________",
		Bold:        true,
		Size:        11,
		Align:       AlignRight,
		SpaceBefore: 200,
	}}
}
