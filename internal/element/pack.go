package element

import (
	"github.com/x448/float16"

	"github.com/rpkgo/galerkin/internal/color"
)

// PackedColor is a three-band colour stored in IEEE 754 half precision,
// the same on-wire shape the scratch renderer's cluster cache and any
// offline snapshot of a solved scene want: sixteen bits per band is far
// more precision than a quantised radiosity solution needs, and it
// quarters the size of an exported coefficient array relative to the
// float64 the solver computes with internally.
type PackedColor struct {
	R, G, B float16.Float16
}

// PackRadiance converts a leaf or cluster element's current radiance
// coefficients to half precision for export (debug dumps, a renderer
// snapshot, a future on-disk cache) without touching the float64
// arrays the solver itself keeps operating on.
func PackRadiance(coeffs []color.Color) []PackedColor {
	out := make([]PackedColor, len(coeffs))
	for i, c := range coeffs {
		out[i] = PackedColor{
			R: float16.Fromfloat32(float32(c.R)),
			G: float16.Fromfloat32(float32(c.G)),
			B: float16.Fromfloat32(float32(c.B)),
		}
	}
	return out
}

// UnpackRadiance is PackRadiance's inverse, used by a caller reloading
// a packed snapshot back into full precision.
func UnpackRadiance(packed []PackedColor) []color.Color {
	out := make([]color.Color, len(packed))
	for i, p := range packed {
		out[i] = color.Color{
			R: float64(p.R.Float32()),
			G: float64(p.G.Float32()),
			B: float64(p.B.Float32()),
		}
	}
	return out
}
