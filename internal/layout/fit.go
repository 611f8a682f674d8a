package layout

import (
	"github.com/pwnholic/observador/internal"
)

// FitWidths converts twip widths into a backend's native unit (perTwip native
// units per twip) and shrinks them proportionally when their total exceeds
// available. Widths never grow. A shrink below MinScale is a layout overflow
// rather than a silent squeeze.
func FitWidths(twips []int, perTwip, available float64) ([]float64, error) {
	const op = "layout.FitWidths"

	natural := make([]float64, len(twips))
	total := 0.0
	for i, w := range twips {
		natural[i] = float64(w) * perTwip
		total += natural[i]
	}
	if total <= 0 {
		return nil, internal.Errorf(internal.KindLayoutOverflow, op, "table has no width")
	}
	if available <= 0 {
		return nil, internal.Errorf(internal.KindLayoutOverflow, op, "no horizontal space available")
	}
	if total <= available {
		return natural, nil
	}

	scale := available / total
	if scale < MinScale {
		return nil, internal.Errorf(internal.KindLayoutOverflow, op,
			"table needs %.1f units but only %.1f fit (scale %.2f below %.2f)", total, available, scale, MinScale)
	}
	for i := range natural {
		natural[i] *= scale
	}
	return natural, nil
}

// FitTwips is FitWidths for backends that measure in whole twips. The rounding
// remainder is folded into the last column so the sum is exactly available
// whenever a shrink happened.
func FitTwips(twips []int, available int) ([]int, error) {
	fitted, err := FitWidths(twips, 1, float64(available))
	if err != nil {
		return nil, err
	}
	out := make([]int, len(fitted))
	sum := 0
	for i, w := range fitted {
		out[i] = int(w)
		sum += out[i]
	}
	if natural := sumInts(twips); natural > available {
		out[len(out)-1] += available - sum
	}
	return out, nil
}

// FitBox scales a w x h image to fit inside a square of side box, keeping
// its aspect ratio.
func FitBox(w, h int, box float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return box, box
	}
	if w >= h {
		return box, box * float64(h) / float64(w)
	}
	return box * float64(w) / float64(h), box
}
