package element

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpkgo/galerkin/internal/color"
)

func TestPackRadianceRoundTrips(t *testing.T) {
	coeffs := []color.Color{color.Gray(0.1998), color.New(1, 0.5, 0.25)}

	packed := PackRadiance(coeffs)
	require.Len(t, packed, 2)

	back := UnpackRadiance(packed)
	for i, c := range coeffs {
		require.InDelta(t, c.R, back[i].R, 1e-3)
		require.InDelta(t, c.G, back[i].G, 1e-3)
		require.InDelta(t, c.B, back[i].B, 1e-3)
	}
}
