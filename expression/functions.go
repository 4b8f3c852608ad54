package expression

import (
	"fmt"
	"math"
	"math/cmplx"
)

const maxRootDegree = 64

type function struct {
	name  string
	arity int
	eval  func(args []complex128) ([]complex128, error)
}

var constants = map[string]complex128{
	"i":  complex(0, 1),
	"pi": complex(math.Pi, 0),
	"e":  complex(math.E, 0),
}

var functions = map[string]*function{}

func init() {
	unary := map[string]func(complex128) complex128{
		"sin":   cmplx.Sin,
		"cos":   cmplx.Cos,
		"tan":   cmplx.Tan,
		"asin":  cmplx.Asin,
		"acos":  cmplx.Acos,
		"atan":  cmplx.Atan,
		"sinh":  cmplx.Sinh,
		"cosh":  cmplx.Cosh,
		"tanh":  cmplx.Tanh,
		"asinh": cmplx.Asinh,
		"acosh": cmplx.Acosh,
		"atanh": cmplx.Atanh,
		"exp":   cmplx.Exp,
		"ln":    cmplx.Log,
		"log":   cmplx.Log,
		"abs":   func(z complex128) complex128 { return complex(cmplx.Abs(z), 0) },
		"arg":   func(z complex128) complex128 { return complex(cmplx.Phase(z), 0) },
		"re":    func(z complex128) complex128 { return complex(real(z), 0) },
		"im":    func(z complex128) complex128 { return complex(imag(z), 0) },
		"conj":  cmplx.Conj,
	}
	for name, fn := range unary {
		name, fn := name, fn
		functions[name] = &function{
			name:  name,
			arity: 1,
			eval: func(args []complex128) ([]complex128, error) {
				w := fn(args[0])
				if !finite(w) {
					return nil, ErrDomain
				}
				return []complex128{w}, nil
			},
		}
	}

	functions["sqrt"] = &function{name: "sqrt", arity: 1, eval: squareRoots}
	functions["root"] = &function{name: "root", arity: 2, eval: roots}
}

// squareRoots returns the principal square root followed by its negation.
func squareRoots(args []complex128) ([]complex128, error) {
	s := cmplx.Sqrt(args[0])
	if !finite(s) {
		return nil, ErrDomain
	}
	if s == 0 {
		return []complex128{0}, nil
	}
	return []complex128{s, -s}, nil
}

// roots returns the n-th roots of z ordered by k, starting with the principal root.
func roots(args []complex128) ([]complex128, error) {
	z, degree := args[0], args[1]
	n, ok := smallInteger(degree, maxRootDegree)
	if !ok || n < 1 {
		return nil, fmt.Errorf("%w: root degree must be an integer in [1, %d], got %v", ErrDomain, maxRootDegree, degree)
	}
	if !finite(z) {
		return nil, ErrDomain
	}
	if z == 0 {
		return []complex128{0}, nil
	}
	modulus := math.Pow(cmplx.Abs(z), 1/float64(n))
	phase := cmplx.Phase(z)
	values := make([]complex128, n)
	for k := 0; k < n; k++ {
		values[k] = cmplx.Rect(modulus, (phase+2*math.Pi*float64(k))/float64(n))
	}
	return values, nil
}

// smallInteger reports whether z is a real integer with |z| <= limit.
func smallInteger(z complex128, limit int) (int, bool) {
	if imag(z) != 0 || math.Trunc(real(z)) != real(z) || math.Abs(real(z)) > float64(limit) {
		return 0, false
	}
	return int(real(z)), true
}

func finite(z complex128) bool {
	return !math.IsNaN(real(z)) && !math.IsNaN(imag(z)) && !math.IsInf(real(z), 0) && !math.IsInf(imag(z), 0)
}
