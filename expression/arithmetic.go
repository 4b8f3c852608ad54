package expression

import "math/big"

const maxIntegerExponent = 1024

// Enough digits for MaxPrecision bits.
const (
	piDigits = "3.1415926535897932384626433832795028841971693993751058209749445923078164062862089986280348253421170679"
	eDigits  = "2.7182818284590452353602874713526624977572470936999595749669676277240766303535475945713821785251664274"
)

// arithmetic is the number system an Evaluator runs in. Operations never modify their operands.
type arithmetic[T any] interface {
	literal(n *numberNode) (T, error)
	constant(name string) T
	lift(z complex128) (T, error)
	lower(v T) complex128
	add(a, b T) T
	sub(a, b T) T
	mul(a, b T) T
	quo(a, b T) (T, error)
	neg(a T) T
	one() T
	integer(a T, limit int) (int, bool)
}

type doubleArithmetic struct{}

func (doubleArithmetic) literal(n *numberNode) (complex128, error) {
	return complex(n.value, 0), nil
}

func (doubleArithmetic) constant(name string) complex128 {
	return constants[name]
}

func (doubleArithmetic) lift(z complex128) (complex128, error) {
	if !finite(z) {
		return 0, ErrNotFinite
	}
	return z, nil
}

func (doubleArithmetic) lower(v complex128) complex128 { return v }
func (doubleArithmetic) add(a, b complex128) complex128 { return a + b }
func (doubleArithmetic) sub(a, b complex128) complex128 { return a - b }
func (doubleArithmetic) mul(a, b complex128) complex128 { return a * b }
func (doubleArithmetic) neg(a complex128) complex128    { return -a }
func (doubleArithmetic) one() complex128                { return 1 }

func (doubleArithmetic) quo(a, b complex128) (complex128, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

func (doubleArithmetic) integer(a complex128, limit int) (int, bool) {
	return smallInteger(a, limit)
}

type bigComplex struct {
	re, im *big.Float
}

// bigArithmetic rounds every operation to prec bits. Infinities are never created from
// finite operands below the exponent limit of big.Float, and lift rejects them.
type bigArithmetic struct {
	prec uint
	pi   *big.Float
	e    *big.Float
	zero *big.Float
	unit *big.Float
}

func newBigArithmetic(prec uint) *bigArithmetic {
	parse := func(s string) *big.Float {
		f, _, err := big.ParseFloat(s, 10, prec, big.ToNearestEven)
		if err != nil {
			panic(err)
		}
		return f
	}
	return &bigArithmetic{
		prec: prec,
		pi:   parse(piDigits),
		e:    parse(eDigits),
		zero: new(big.Float).SetPrec(prec),
		unit: new(big.Float).SetPrec(prec).SetInt64(1),
	}
}

func (b *bigArithmetic) float() *big.Float {
	return new(big.Float).SetPrec(b.prec)
}

func (b *bigArithmetic) literal(n *numberNode) (bigComplex, error) {
	f, _, err := big.ParseFloat(n.text, 10, b.prec, big.ToNearestEven)
	if err != nil {
		return bigComplex{}, err
	}
	return bigComplex{re: f, im: b.zero}, nil
}

func (b *bigArithmetic) constant(name string) bigComplex {
	switch name {
	case "pi":
		return bigComplex{re: b.pi, im: b.zero}
	case "e":
		return bigComplex{re: b.e, im: b.zero}
	}
	return bigComplex{re: b.zero, im: b.unit}
}

func (b *bigArithmetic) lift(z complex128) (bigComplex, error) {
	if !finite(z) {
		return bigComplex{}, ErrNotFinite
	}
	return bigComplex{re: b.float().SetFloat64(real(z)), im: b.float().SetFloat64(imag(z))}, nil
}

func (b *bigArithmetic) lower(v bigComplex) complex128 {
	re, _ := v.re.Float64()
	im, _ := v.im.Float64()
	return complex(re, im)
}

func (b *bigArithmetic) add(x, y bigComplex) bigComplex {
	return bigComplex{re: b.float().Add(x.re, y.re), im: b.float().Add(x.im, y.im)}
}

func (b *bigArithmetic) sub(x, y bigComplex) bigComplex {
	return bigComplex{re: b.float().Sub(x.re, y.re), im: b.float().Sub(x.im, y.im)}
}

func (b *bigArithmetic) mul(x, y bigComplex) bigComplex {
	ac := b.float().Mul(x.re, y.re)
	bd := b.float().Mul(x.im, y.im)
	ad := b.float().Mul(x.re, y.im)
	bc := b.float().Mul(x.im, y.re)
	return bigComplex{re: ac.Sub(ac, bd), im: ad.Add(ad, bc)}
}

func (b *bigArithmetic) quo(x, y bigComplex) (bigComplex, error) {
	cc := b.float().Mul(y.re, y.re)
	dd := b.float().Mul(y.im, y.im)
	denominator := cc.Add(cc, dd)
	if denominator.Sign() == 0 {
		return bigComplex{}, ErrDivisionByZero
	}

	ac := b.float().Mul(x.re, y.re)
	bd := b.float().Mul(x.im, y.im)
	bc := b.float().Mul(x.im, y.re)
	ad := b.float().Mul(x.re, y.im)
	re := ac.Add(ac, bd)
	im := bc.Sub(bc, ad)
	return bigComplex{re: re.Quo(re, denominator), im: im.Quo(im, denominator)}, nil
}

func (b *bigArithmetic) neg(x bigComplex) bigComplex {
	return bigComplex{re: b.float().Neg(x.re), im: b.float().Neg(x.im)}
}

func (b *bigArithmetic) one() bigComplex {
	return bigComplex{re: b.unit, im: b.zero}
}

func (b *bigArithmetic) integer(x bigComplex, limit int) (int, bool) {
	if x.im.Sign() != 0 || x.re.IsInf() || !x.re.IsInt() {
		return 0, false
	}
	if new(big.Float).Abs(x.re).Cmp(big.NewFloat(float64(limit))) > 0 {
		return 0, false
	}
	n, _ := x.re.Int64()
	return int(n), true
}
