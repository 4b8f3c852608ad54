package task

import (
	"fmt"
	"image/color"
)

type Pixel struct {
	Color  color.RGBA
	Column uint
	Row    uint
	// Failed is set when the sample could not be evaluated and Color is the sentinel colour.
	Failed bool
}

func (p *Pixel) String() string {
	output := "{Pixel "
	output += fmt.Sprintf("Color: %v ", p.Color)
	output += fmt.Sprintf("Column: %d ", p.Column)
	output += fmt.Sprintf("Row: %d ", p.Row)
	output += fmt.Sprintf("Failed: %t}", p.Failed)
	return output
}
