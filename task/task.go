package task

import (
	"errors"
	"fmt"
	"strings"
)

// Errors sent back by the coordinator when a worker asks for a task. They cross the rpc
// boundary as plain strings, so callers compare with IsNoMoreTasks and IsRenderAborted.
var (
	ErrNoMoreTasks   = errors.New("all tasks handed out")
	ErrRenderAborted = errors.New("render aborted")
)

func IsNoMoreTasks(err error) bool {
	return err != nil && (errors.Is(err, ErrNoMoreTasks) || err.Error() == ErrNoMoreTasks.Error())
}

func IsRenderAborted(err error) bool {
	return err != nil && (errors.Is(err, ErrRenderAborted) || err.Error() == ErrRenderAborted.Error())
}

const (
	Row Generation = iota
	Column
	Image
)

// Generation decides how many pixels go into one task.
type Generation int

func (g Generation) String() string {
	if g < Row || g > Image {
		return fmt.Sprintf("Generation(%d)", int(g))
	}
	return []string{
		"Row", "Column", "Image",
	}[g]
}

func (g Generation) MarshalText() ([]byte, error) {
	if g < Row || g > Image {
		return nil, fmt.Errorf("unknown task generation %d", int(g))
	}
	return []byte(strings.ToLower(g.String())), nil
}

func (g *Generation) UnmarshalText(text []byte) error {
	for candidate := Row; candidate <= Image; candidate++ {
		if strings.EqualFold(string(text), candidate.String()) {
			*g = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown task generation %q (want row, column or image)", text)
}

type Task struct {
	CurrentTask   uint
	ID            uint
	Results       []Pixel
	Tasks         []Coordinate
	WorkerAddress string
	// Failure holds the first evaluation error a worker hit under the abort policy.
	Failure string
}

func NewTask(id uint) Task {
	return Task{
		ID: id,
	}
}

func (t *Task) String() string {
	output := "{Task "
	output += fmt.Sprintf("ID: %d ", t.ID)
	output += fmt.Sprintf("Result Count: %d ", len(t.Results))
	output += fmt.Sprintf("Task Count: %d", len(t.Tasks))
	if t.Failure != "" {
		output += fmt.Sprintf(" Failure: %s", t.Failure)
	}
	return output + "}"
}

func (t *Task) AddTaskForPixel(coordinate Coordinate) {
	t.Tasks = append(t.Tasks, coordinate)
}

func (t *Task) AddTasksForRow(imageRow uint, imageWidth uint) {
	var c uint
	for c = 0; c < imageWidth; c++ {
		t.AddTaskForPixel(Coordinate{Column: c, Row: imageRow})
	}
}

func (t *Task) AddTasksForColumn(imageHeight uint, imageColumn uint) {
	var r uint
	for r = 0; r < imageHeight; r++ {
		t.AddTaskForPixel(Coordinate{Column: imageColumn, Row: r})
	}
}

func (t *Task) AddTasksForImage(imageHeight uint, imageWidth uint) {
	var r, c uint
	for r = 0; r < imageHeight; r++ {
		for c = 0; c < imageWidth; c++ {
			t.AddTaskForPixel(Coordinate{Column: c, Row: r})
		}
	}
}

// Generate splits a size x size image into tasks numbered from 0.
func Generate(generation Generation, size uint) []Task {
	var tasks []Task
	switch generation {
	case Column:
		for c := uint(0); c < size; c++ {
			t := NewTask(c)
			t.AddTasksForColumn(size, c)
			tasks = append(tasks, t)
		}
	case Image:
		t := NewTask(0)
		t.AddTasksForImage(size, size)
		tasks = append(tasks, t)
	default:
		for r := uint(0); r < size; r++ {
			t := NewTask(r)
			t.AddTasksForRow(r, size)
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// GetNextTask
// Returns the current task to be processed. Make sure to return the result to the AddResult method before calling
// this method again
func (t *Task) GetNextTask() (Coordinate, error) {
	if len(t.Results) >= len(t.Tasks) {
		return Coordinate{}, errors.New("no more tasks")
	}
	return t.Tasks[t.CurrentTask], nil
}

// AddResult
// When returning a result the CurrentTask value is incremented so the next call to the GetNextTask method will return
// the correct task
func (t *Task) AddResult(pixel Pixel) {
	t.Results = append(t.Results, pixel)
	t.CurrentTask++
}

// Done reports whether every coordinate has a result.
func (t *Task) Done() bool {
	return len(t.Results) >= len(t.Tasks)
}
