package plot

import (
	"ComplexPlot/expression"
	"fmt"
	"image/color"
	"math/cmplx"
)

// Outcome is the evaluation of one sample: either a value or the reason there is none.
type Outcome struct {
	Value complex128
	Err   error
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Plotter colours individual pixels. Every method is a pure function of its arguments and the
// settings, so one Plotter can serve any number of goroutines.
type Plotter struct {
	evaluator  *expression.Evaluator
	expression *expression.Expression
	settings   Settings
}

// NewPlotter verifies the settings and parses the expression. Parse errors are returned here,
// before any sample is evaluated.
func NewPlotter(settings Settings) (*Plotter, error) {
	if err := settings.Verify(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	parsed, err := expression.Parse(settings.Expression, settings.Variable)
	if err != nil {
		return nil, err
	}
	evaluator, err := parsed.Evaluator(settings.Precision)
	if err != nil {
		return nil, err
	}

	return &Plotter{
		evaluator:  evaluator,
		expression: parsed,
		settings:   settings,
	}, nil
}

func (p *Plotter) Settings() Settings {
	return p.settings
}

func (p *Plotter) Expression() *expression.Expression {
	return p.expression
}

// Sample returns the complex point for a pixel.
func (p *Plotter) Sample(column, row uint) complex128 {
	return Sample(column, row, p.settings.Size, p.settings.Range)
}

// Describe summarizes the parsed expression for logs.
func (p *Plotter) Describe() string {
	return fmt.Sprintf("%s parsed as %s at %d bits", p.expression, p.expression.Tree(), p.evaluator.Precision())
}

// Evaluate evaluates the expression at z and picks one candidate from the answer.
func (p *Plotter) Evaluate(z complex128) Outcome {
	answer, err := p.evaluator.At(z)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Value: p.settings.Selection.Pick(answer)}
}

// Color converts an outcome to a pixel colour. Failed outcomes are an error under Abort and the
// sentinel colour under Sentinel.
func (p *Plotter) Color(o Outcome) (color.RGBA, error) {
	if o.Failed() {
		if p.settings.ErrorPolicy == Sentinel {
			return p.settings.SentinelColor, nil
		}
		return color.RGBA{}, o.Err
	}
	return Colorize(p.settings.Mode, o.Value).RGBA(), nil
}

// Pixel computes the colour of the pixel at (column, row) along with the outcome it was coloured
// from, so callers can count sentinel pixels.
func (p *Plotter) Pixel(column, row uint) (color.RGBA, Outcome, error) {
	z := p.Sample(column, row)
	outcome := p.Evaluate(z)
	c, err := p.Color(outcome)
	if err != nil {
		return c, outcome, fmt.Errorf("pixel (%d, %d) at %v: %w", column, row, z, err)
	}
	return c, outcome, nil
}

// Pick returns the candidate of a chosen by s. a must not be empty.
func (s Selection) Pick(a expression.Answer) complex128 {
	if !a.Multiple() {
		return a.First()
	}
	values := a.Values
	switch s {
	case SelectLast:
		return values[len(values)-1]
	case SelectMinModulus:
		best := values[0]
		for _, v := range values[1:] {
			if cmplx.Abs(v) < cmplx.Abs(best) {
				best = v
			}
		}
		return best
	default:
		return a.First()
	}
}
