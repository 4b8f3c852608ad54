package plot

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSampleCorners(t *testing.T) {
	tests := []struct {
		size uint
		rng  float64
	}{
		{1, 1}, {2, 2}, {4, 1}, {512, 1}, {7, 0.3}, {100, 25},
	}

	for _, test := range tests {
		step := Step(test.size, test.rng)
		if d := cmp.Diff(2*test.rng/float64(test.size), step, cmpopts.EquateApprox(1e-15, 0)); d != "" {
			t.Errorf("Step(%d, %v) mismatch (-want +got):\n%s", test.size, test.rng, d)
		}

		first := Sample(0, 0, test.size, test.rng)
		if first != complex(-test.rng, -test.rng) {
			t.Errorf("Sample(0, 0, %d, %v) = %v, want %v", test.size, test.rng, first, complex(-test.rng, -test.rng))
		}

		last := Sample(test.size-1, test.size-1, test.size, test.rng)
		want := test.rng - step
		if math.Abs(real(last)-want) > 1e-12 || math.Abs(imag(last)-want) > 1e-12 {
			t.Errorf("Sample(%d, %d) = %v, want %v on both axes", test.size-1, test.size-1, last, want)
		}
	}
}

func TestSampleDistinct(t *testing.T) {
	const size = 33
	seen := make(map[complex128]bool, size*size)
	for y := uint(0); y < size; y++ {
		for x := uint(0); x < size; x++ {
			z := Sample(x, y, size, 1.5)
			if real(z) < -1.5 || real(z) >= 1.5 || imag(z) < -1.5 || imag(z) >= 1.5 {
				t.Errorf("Sample(%d, %d) = %v is outside [-1.5, 1.5)", x, y, z)
			}
			seen[z] = true
		}
	}
	if len(seen) != size*size {
		t.Errorf("got %d distinct samples, want %d", len(seen), size*size)
	}
}

func TestSampleAxes(t *testing.T) {
	// x moves along the real axis, y along the imaginary axis
	if z := Sample(3, 0, 4, 1); z != complex(0.5, -1) {
		t.Errorf("Sample(3, 0) = %v, want (0.5-1i)", z)
	}
	if z := Sample(0, 3, 4, 1); z != complex(-1, 0.5) {
		t.Errorf("Sample(0, 3) = %v, want (-1+0.5i)", z)
	}
	if a, b := Sample(5, 9, 16, 2), Sample(5, 9, 16, 2); a != b {
		t.Errorf("Sample is not reproducible: %v != %v", a, b)
	}
}
