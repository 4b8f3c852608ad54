package expression

import (
	"fmt"
	"math/big"
	"math/cmplx"
)

const (
	// DoublePrecision evaluates in complex128.
	DoublePrecision uint = 53
	MinPrecision    uint = DoublePrecision
	MaxPrecision    uint = 256

	// MaxValues caps the number of candidates a multi-valued evaluation may produce.
	MaxValues = 1024
)

// Bindings maps variable names to the values they take during one evaluation.
type Bindings map[string]complex128

// Answer is the result of one evaluation: an ordered, non-empty list of candidates. Most
// expressions have exactly one; sqrt and root contribute several.
type Answer struct {
	Values []complex128
}

func (a Answer) Multiple() bool {
	return len(a.Values) > 1
}

// First returns the first candidate, or zero for an empty Answer.
func (a Answer) First() complex128 {
	if len(a.Values) == 0 {
		return 0
	}
	return a.Values[0]
}

// Evaluator evaluates an Expression at a fixed precision. It holds no mutable state and is safe
// for concurrent use.
type Evaluator struct {
	expression *Expression
	precision  uint
	evaluate   func(bindings Bindings) ([]complex128, error)
}

// Evaluator returns an evaluator running at the given precision in bits. 53 bits evaluates in
// complex128; wider precisions run the arithmetic operators in math/big.
func (e *Expression) Evaluator(precision uint) (*Evaluator, error) {
	if precision < MinPrecision || precision > MaxPrecision {
		return nil, fmt.Errorf("precision %d is outside [%d, %d]", precision, MinPrecision, MaxPrecision)
	}

	ev := &Evaluator{expression: e, precision: precision}
	if precision == DoublePrecision {
		ar := doubleArithmetic{}
		ev.evaluate = func(bindings Bindings) ([]complex128, error) {
			return evaluate[complex128](ar, e.root, bindings)
		}
	} else {
		ar := newBigArithmetic(precision)
		ev.evaluate = func(bindings Bindings) ([]complex128, error) {
			return evaluate[bigComplex](ar, e.root, bindings)
		}
	}
	return ev, nil
}

func (ev *Evaluator) Precision() uint {
	return ev.precision
}

// At evaluates the expression with its free variable bound to z.
func (ev *Evaluator) At(z complex128) (Answer, error) {
	return ev.Evaluate(Bindings{ev.expression.variable: z})
}

func (ev *Evaluator) Evaluate(bindings Bindings) (Answer, error) {
	values, err := ev.evaluate(bindings)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Values: values}, nil
}

func evaluate[T any](ar arithmetic[T], root node, bindings Bindings) (values []complex128, err error) {
	defer func() {
		// big.Float panics on Inf-Inf and friends once an exponent overflows
		if r := recover(); r != nil {
			nan, ok := r.(big.ErrNaN)
			if !ok {
				panic(r)
			}
			values, err = nil, &EvalError{Err: fmt.Errorf("%w: %s", ErrNotFinite, nan.Error())}
		}
	}()

	w := &walker[T]{ar: ar, bound: make(map[string]T, len(bindings))}
	for name, z := range bindings {
		v, err := ar.lift(z)
		if err != nil {
			return nil, &EvalError{Op: name, Err: err}
		}
		w.bound[name] = v
	}

	results, err := w.eval(root)
	if err != nil {
		return nil, err
	}
	values = make([]complex128, len(results))
	for i, r := range results {
		values[i] = ar.lower(r)
		if !finite(values[i]) {
			return nil, &EvalError{Err: ErrNotFinite}
		}
	}
	return values, nil
}

type walker[T any] struct {
	ar    arithmetic[T]
	bound map[string]T
}

func (w *walker[T]) eval(n node) ([]T, error) {
	switch n := n.(type) {
	case *numberNode:
		v, err := w.ar.literal(n)
		if err != nil {
			return nil, &EvalError{Op: n.text, Err: err}
		}
		return []T{v}, nil

	case *constantNode:
		return []T{w.ar.constant(n.name)}, nil

	case *variableNode:
		v, ok := w.bound[n.name]
		if !ok {
			return nil, &EvalError{Op: n.name, Err: ErrUnbound}
		}
		return []T{v}, nil

	case *negateNode:
		operands, err := w.eval(n.operand)
		if err != nil {
			return nil, err
		}
		values := make([]T, len(operands))
		for i, v := range operands {
			values[i] = w.ar.neg(v)
		}
		return values, nil

	case *binaryNode:
		lefts, err := w.eval(n.left)
		if err != nil {
			return nil, err
		}
		rights, err := w.eval(n.right)
		if err != nil {
			return nil, err
		}
		if len(lefts)*len(rights) > MaxValues {
			return nil, &EvalError{Op: n.String(), Err: ErrTooManyValues}
		}
		values := make([]T, 0, len(lefts)*len(rights))
		for _, l := range lefts {
			for _, r := range rights {
				v, err := w.apply(n.op, l, r)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
			}
		}
		return values, nil

	case *callNode:
		return w.call(n)
	}
	panic(fmt.Sprintf("expression: unknown node %T", n))
}

func (w *walker[T]) apply(op tokenType, l, r T) (T, error) {
	switch op {
	case tokPlus:
		return w.ar.add(l, r), nil
	case tokMinus:
		return w.ar.sub(l, r), nil
	case tokStar:
		return w.ar.mul(l, r), nil
	case tokSlash:
		v, err := w.ar.quo(l, r)
		if err != nil {
			return v, &EvalError{Op: "/", Err: err}
		}
		return v, nil
	}
	return w.power(l, r)
}

// power uses repeated squaring for small integer exponents so polynomials stay in the
// evaluator's precision. Everything else goes through cmplx.Pow.
func (w *walker[T]) power(base, exponent T) (T, error) {
	if n, ok := w.ar.integer(exponent, maxIntegerExponent); ok {
		negative := n < 0
		if negative {
			n = -n
		}
		result := w.ar.one()
		for n > 0 {
			if n&1 == 1 {
				result = w.ar.mul(result, base)
			}
			n >>= 1
			if n > 0 {
				base = w.ar.mul(base, base)
			}
		}
		if negative {
			inverse, err := w.ar.quo(w.ar.one(), result)
			if err != nil {
				return inverse, &EvalError{Op: "^", Err: err}
			}
			return inverse, nil
		}
		return result, nil
	}

	p := cmplx.Pow(w.ar.lower(base), w.ar.lower(exponent))
	v, err := w.ar.lift(p)
	if err != nil {
		var zero T
		return zero, &EvalError{Op: "^", Err: ErrDomain}
	}
	return v, nil
}

func (w *walker[T]) call(n *callNode) ([]T, error) {
	combinations := [][]complex128{nil}
	for _, arg := range n.args {
		values, err := w.eval(arg)
		if err != nil {
			return nil, err
		}
		if len(combinations)*len(values) > MaxValues {
			return nil, &EvalError{Op: n.fn.name, Err: ErrTooManyValues}
		}
		next := make([][]complex128, 0, len(combinations)*len(values))
		for _, prefix := range combinations {
			for _, v := range values {
				args := make([]complex128, len(prefix), len(prefix)+1)
				copy(args, prefix)
				next = append(next, append(args, w.ar.lower(v)))
			}
		}
		combinations = next
	}

	var results []T
	for _, args := range combinations {
		values, err := n.fn.eval(args)
		if err != nil {
			return nil, &EvalError{Op: n.fn.name, Err: err}
		}
		if len(results)+len(values) > MaxValues {
			return nil, &EvalError{Op: n.fn.name, Err: ErrTooManyValues}
		}
		for _, v := range values {
			lifted, err := w.ar.lift(v)
			if err != nil {
				return nil, &EvalError{Op: n.fn.name, Err: ErrDomain}
			}
			results = append(results, lifted)
		}
	}
	return results, nil
}
