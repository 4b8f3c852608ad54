package plot

// Step is the distance between neighbouring samples of a size×size grid over [-rng, rng].
func Step(size uint, rng float64) float64 {
	return (rng * 2.0) / float64(size)
}

// Sample converts the (x, y) grid position to its point on the complex plane. Row y maps to the
// imaginary part, so row 0 is the most negative imaginary sample.
func Sample(x, y, size uint, rng float64) complex128 {
	step := Step(size, rng)
	return complex(-rng+step*float64(x), -rng+step*float64(y))
}
