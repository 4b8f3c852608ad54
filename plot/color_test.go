package plot

import (
	"image/color"
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lucasb-eyer/go-colorful"
)

var approxHSL = cmpopts.EquateApprox(0, 1e-9)

func TestArgumentModulus(t *testing.T) {
	tests := []struct {
		z    complex128
		want HSL
	}{
		{0, HSL{H: 0, S: 1, L: 0}},
		{1, HSL{H: 0, S: 1, L: 0.25}},
		{1i, HSL{H: 90, S: 1, L: 0.25}},
		{-1, HSL{H: 180, S: 1, L: 0.25}},
		{-1i, HSL{H: 270, S: 1, L: 0.25}},
		{-1 - 1i, HSL{H: 225, S: 1, L: (1 - math.Pow(2, -math.Sqrt2)) / 2}},
		{2 + 2i, HSL{H: 45, S: 1, L: (1 - math.Pow(2, -2*math.Sqrt2)) / 2}},
	}

	for _, test := range tests {
		if d := cmp.Diff(test.want, ArgumentModulus(test.z), approxHSL); d != "" {
			t.Errorf("ArgumentModulus(%v) mismatch (-want +got):\n%s", test.z, d)
		}
	}
}

func TestArgumentModulusRanges(t *testing.T) {
	previous := -1.0
	for r := 0.0; r < 40; r += 0.25 {
		for _, phase := range []float64{-math.Pi + 1e-9, -2, -1e-12, 0, 0.5, 3, math.Pi} {
			c := ArgumentModulus(cmplx.Rect(r, phase))
			if c.H < 0 || c.H >= 360 {
				t.Errorf("hue %v for |z|=%v arg=%v is outside [0, 360)", c.H, r, phase)
			}
			if c.L < 0 || c.L >= 0.5 {
				t.Errorf("lightness %v for |z|=%v is outside [0, 0.5)", c.L, r)
			}
			if c.S != 1 {
				t.Errorf("saturation %v, want 1", c.S)
			}
		}

		l := ArgumentModulus(complex(r, 0)).L
		if l < previous {
			t.Errorf("lightness decreased from %v to %v at |z|=%v", previous, l, r)
		}
		previous = l
	}
}

func TestGridLine(t *testing.T) {
	peak := -math.Log(0.001)
	half := -math.Log(0.5 + 0.001)

	tests := []struct {
		z    complex128
		want HSL
	}{
		{3 + 4i, HSL{H: 360 - 2*peak*20, S: 1, L: 0.5}},
		{3.5 + 4.5i, HSL{H: 360 - 2*half*20, S: 1, L: 0.5}},
		{-2 + 0.5i, HSL{H: 360 - (peak+half)*20, S: 1, L: 0.5}},
		{8i, HSL{H: 360 - 2*peak*20, S: 1, L: 0.5}},
	}

	for _, test := range tests {
		if d := cmp.Diff(test.want, GridLine(test.z), approxHSL); d != "" {
			t.Errorf("GridLine(%v) mismatch (-want +got):\n%s", test.z, d)
		}
	}

	// integer lattice points are the local extreme
	lattice := GridLine(3 + 4i).H
	for _, dz := range []complex128{0.01, 0.01i, 0.1 + 0.1i, 0.5 + 0.5i, -0.2 - 0.3i} {
		if near := GridLine(3 + 4i + dz).H; near <= lattice {
			t.Errorf("hue %v near 3+4i (offset %v) is not above the lattice hue %v", near, dz, lattice)
		}
	}
}

func TestNormalizeHue(t *testing.T) {
	tests := []struct {
		h, want float64
	}{
		{0, 0}, {90, 90}, {360, 0}, {450, 90}, {720, 0}, {-90, 270}, {-360, 0}, {-450, 270}, {83.5, 83.5},
	}
	for _, test := range tests {
		if got := NormalizeHue(test.h); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("NormalizeHue(%v) = %v, want %v", test.h, got, test.want)
		}
	}
}

func TestHSLToRGBA(t *testing.T) {
	tests := []struct {
		c    HSL
		want color.RGBA
	}{
		{HSL{0, 1, 0.5}, color.RGBA{255, 0, 0, 255}},
		{HSL{120, 1, 0.5}, color.RGBA{0, 255, 0, 255}},
		{HSL{240, 1, 0.5}, color.RGBA{0, 0, 255, 255}},
		{HSL{0, 1, 0}, color.RGBA{0, 0, 0, 255}},
		{HSL{-240, 1, 0.5}, color.RGBA{0, 255, 0, 255}},
		{HSL{600, 1, 0.5}, color.RGBA{0, 0, 255, 255}},
	}
	for _, test := range tests {
		if d := cmp.Diff(test.want, test.c.RGBA()); d != "" {
			t.Errorf("%+v.RGBA() mismatch (-want +got):\n%s", test.c, d)
		}
	}

	// unnormalized hues convert like their wrapped equivalent
	for _, h := range []float64{-725.5, -1, 359.9, 361, 1000} {
		r, g, b := colorful.Hsl(NormalizeHue(h), 1, 0.5).RGB255()
		if got := (HSL{h, 1, 0.5}).RGBA(); got != (color.RGBA{r, g, b, 255}) {
			t.Errorf("hue %v converted to %v, want %v", h, got, color.RGBA{r, g, b, 255})
		}
	}
}

func TestColorize(t *testing.T) {
	z := 0.3 + 1.7i
	if got := Colorize(ModeArgument, z); got != ArgumentModulus(z) {
		t.Errorf("mode 1 gave %+v", got)
	}
	for _, mode := range []Mode{0, ModeGridLine, 7} {
		if got := Colorize(mode, z); got != GridLine(z) {
			t.Errorf("mode %d gave %+v, want the grid-line colour", mode, got)
		}
	}
}
