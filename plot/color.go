package plot

import (
	"image/color"
	"math"
	"math/cmplx"

	"github.com/lucasb-eyer/go-colorful"
)

// HSL is a colour with hue in degrees and saturation and lightness in [0, 1]. The hue may be any
// finite value; it is wrapped into [0, 360) on conversion.
type HSL struct {
	H, S, L float64
}

// NormalizeHue wraps h into [0, 360).
func NormalizeHue(h float64) float64 {
	return math.Mod(math.Mod(h, 360)+360, 360)
}

// RGBA converts the colour to 8 bits per channel.
func (c HSL) RGBA() color.RGBA {
	r, g, b := colorful.Hsl(NormalizeHue(c.H), c.S, c.L).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ArgumentModulus turns the phase of z into hue and its modulus into lightness. Lightness is 0
// at the origin and approaches 0.5 as |z| grows.
func ArgumentModulus(z complex128) HSL {
	h := math.Mod(cmplx.Phase(z)*180/math.Pi+360, 360)
	l := (1 - math.Pow(2, -cmplx.Abs(z))) * 0.5
	return HSL{H: h, S: 1, L: l}
}

// GridLine spikes the hue wherever the real or imaginary part of z is close to an integer,
// drawing the integer lattice as the function maps it. The hue is left unnormalized.
func GridLine(z complex128) HSL {
	x, y := real(z), imag(z)
	hx := -math.Log(math.Abs(x-math.Round(x)) + 0.001)
	hy := -math.Log(math.Abs(y-math.Round(y)) + 0.001)
	return HSL{H: 360 - (hx+hy)*20, S: 1, L: 0.5}
}

// Colorize maps z with the mapper selected by mode.
func Colorize(mode Mode, z complex128) HSL {
	switch mode {
	case ModeArgument:
		return ArgumentModulus(z)
	default:
		return GridLine(z)
	}
}
