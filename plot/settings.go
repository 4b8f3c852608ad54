package plot

import (
	"ComplexPlot/expression"
	"ComplexPlot/misc"
	"errors"
	"fmt"
	"image/color"
	"math"
	"runtime"
	"strings"
)

const (
	// ModeArgument colours by phase and shades by modulus. Every other mode draws grid lines.
	ModeArgument Mode = 1
	ModeGridLine Mode = 2
)

type Mode uint

func (m Mode) String() string {
	if m == ModeArgument {
		return "argument"
	}
	return "grid-line"
}

const (
	SelectFirst Selection = iota
	SelectLast
	SelectMinModulus
)

// Selection picks one candidate out of a multi-valued answer.
type Selection int

func (s Selection) String() string {
	return []string{
		"first", "last", "min-modulus",
	}[s]
}

func (s Selection) MarshalText() ([]byte, error) {
	if s < SelectFirst || s > SelectMinModulus {
		return nil, fmt.Errorf("unknown selection %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Selection) UnmarshalText(text []byte) error {
	for candidate := SelectFirst; candidate <= SelectMinModulus; candidate++ {
		if strings.EqualFold(string(text), candidate.String()) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown selection %q (want first, last or min-modulus)", text)
}

const (
	// Abort stops the whole render at the first failed sample.
	Abort ErrorPolicy = iota
	// Sentinel paints failed samples with the sentinel colour and carries on.
	Sentinel
)

type ErrorPolicy int

func (p ErrorPolicy) String() string {
	return []string{
		"abort", "sentinel",
	}[p]
}

func (p ErrorPolicy) MarshalText() ([]byte, error) {
	if p < Abort || p > Sentinel {
		return nil, fmt.Errorf("unknown error policy %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *ErrorPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "abort":
		*p = Abort
	case "sentinel":
		*p = Sentinel
	default:
		return fmt.Errorf("unknown error policy %q (want abort or sentinel)", text)
	}
	return nil
}

var Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}

type Settings struct {
	Expression    string
	ErrorPolicy   ErrorPolicy
	Mode          Mode
	Output        string
	Precision     uint
	Range         float64
	Selection     Selection
	SentinelColor color.RGBA
	Size          uint
	Variable      string
	Workers       int
}

// DefaultSettings returns the settings used when nothing is specified. Settings files are
// decoded over these so missing keys keep their defaults.
func DefaultSettings() Settings {
	return Settings{
		ErrorPolicy:   Abort,
		Mode:          ModeArgument,
		Output:        "output.png",
		Precision:     expression.DoublePrecision,
		Range:         1.0,
		Selection:     SelectFirst,
		SentinelColor: Magenta,
		Size:          512,
		Variable:      "z",
		Workers:       runtime.NumCPU(),
	}
}

// Verify fills zero values with defaults and rejects settings no render could use.
func (s *Settings) Verify() error {
	if strings.TrimSpace(s.Expression) == "" {
		return errors.New("no expression given")
	}
	if s.Output == "" {
		s.Output = "output.png"
	}
	if _, err := misc.FormatOf(s.Output); err != nil {
		return err
	}
	if s.Precision == 0 {
		s.Precision = expression.DoublePrecision
	}
	if s.Precision < expression.MinPrecision || s.Precision > expression.MaxPrecision {
		return fmt.Errorf("precision %d is outside [%d, %d]", s.Precision, expression.MinPrecision, expression.MaxPrecision)
	}
	if s.Range == 0 {
		s.Range = 1.0
	}
	if s.Range < 0 || math.IsNaN(s.Range) || math.IsInf(s.Range, 0) {
		return fmt.Errorf("range must be a positive number, got %v", s.Range)
	}
	if s.Selection < SelectFirst || s.Selection > SelectMinModulus {
		s.Selection = SelectFirst
	}
	if s.ErrorPolicy < Abort || s.ErrorPolicy > Sentinel {
		s.ErrorPolicy = Abort
	}
	if s.SentinelColor == (color.RGBA{}) {
		s.SentinelColor = Magenta
	}
	if s.Size == 0 {
		s.Size = 512
	}
	if s.Variable == "" {
		s.Variable = "z"
	}
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU()
	}
	return nil
}

// VerifyGiven verifies settings decoded over DefaultSettings. A zero size or range there was asked
// for, so it is rejected instead of replaced by its default.
func (s *Settings) VerifyGiven() error {
	if s.Size == 0 {
		return errors.New("size must be positive")
	}
	if s.Range == 0 {
		return errors.New("range must be positive")
	}
	return s.Verify()
}

func (s *Settings) String() string {
	output := "\nPlot settings\n"
	output += fmt.Sprintf("Expression: %s\n", s.Expression)
	output += fmt.Sprintf("Variable: %s\n", s.Variable)
	output += fmt.Sprintf("Size: %d\n", s.Size)
	output += fmt.Sprintf("Range: %f\n", s.Range)
	output += fmt.Sprintf("Mode: %d (%s)\n", s.Mode, s.Mode)
	output += fmt.Sprintf("Precision: %d\n", s.Precision)
	output += fmt.Sprintf("Selection: %s\n", s.Selection)
	output += fmt.Sprintf("Error Policy: %s\n", s.ErrorPolicy)
	output += fmt.Sprintf("Sentinel Color: %v\n", s.SentinelColor)
	output += fmt.Sprintf("Output: %s\n", s.Output)
	output += fmt.Sprintf("Workers: %d\n", s.Workers)
	return output
}
