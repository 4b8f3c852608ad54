package task

import "fmt"

// Coordinate addresses one pixel of the output image. The complex sample is derived from it by
// the plot settings, so a coordinate never carries floating point state.
type Coordinate struct {
	Column uint
	Row    uint
}

func (c *Coordinate) String() string {
	return fmt.Sprintf("{Coordinate Column: %d Row: %d}", c.Column, c.Row)
}
