package document

import (
	"time"

	"github.com/pwnholic/observador/internal/layout"
)

// Build assembles the record in its fixed block order: header, title,
// student table, spacer, observation table, signature.
func Build(cfg layout.Config, lh Letterhead, s Student, obs ObservationSet) *Document {
	return &Document{
		Title:   titleText,
		Subject: s.Name.Or("Estudiante"),
		Created: time.Now(),
		Blocks: []Block{
			BuildHeader(cfg, lh),
			BuildTitle(),
			BuildStudentTable(cfg, s),
			BuildSpacer(),
			BuildObservationTable(cfg, obs),
			BuildSignature(),
		},
	}
}
