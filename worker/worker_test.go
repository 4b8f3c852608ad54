package worker

import (
	"ComplexPlot/misc"
	"ComplexPlot/plot"
	"ComplexPlot/rpc"
	"ComplexPlot/task"
	"path/filepath"
	"strings"
	"testing"
)

func newTestWorker(t *testing.T, settings plot.Settings) *Worker {
	t.Helper()
	p, err := plot.NewPlotter(settings)
	if err != nil {
		t.Fatal(err)
	}
	return &Worker{plotter: p}
}

func TestProcess(t *testing.T) {
	settings := plot.DefaultSettings()
	settings.Expression = "z^3"
	settings.Size = 5
	w := newTestWorker(t, settings)

	todo := task.Generate(task.Column, 5)[3]
	w.process(&todo)
	if !todo.Done() || todo.Failure != "" {
		t.Fatalf("task not completed: %s", todo.String())
	}
	for _, pixel := range todo.Results {
		want, outcome, err := w.plotter.Pixel(pixel.Column, pixel.Row)
		if err != nil {
			t.Fatal(err)
		}
		if pixel.Color != want || pixel.Failed != outcome.Failed() || pixel.Column != 3 {
			t.Errorf("got %s, want colour %v", pixel.String(), want)
		}
	}
}

func TestProcessFailure(t *testing.T) {
	settings := plot.DefaultSettings()
	settings.Expression = "1/z"
	settings.Size = 4

	// (2, 2) samples the origin
	abort := newTestWorker(t, settings)
	todo := task.Generate(task.Row, 4)[2]
	abort.process(&todo)
	if !strings.Contains(todo.Failure, "division by zero") || !strings.HasPrefix(todo.Failure, "pixel (2, 2) at ") {
		t.Errorf("failure = %q, want a division by zero at pixel (2, 2)", todo.Failure)
	}
	if len(todo.Results) != 2 {
		t.Errorf("got %d results before the failure, want 2", len(todo.Results))
	}

	settings.ErrorPolicy = plot.Sentinel
	sentinel := newTestWorker(t, settings)
	todo = task.Generate(task.Row, 4)[2]
	sentinel.process(&todo)
	if todo.Failure != "" || !todo.Done() {
		t.Fatalf("sentinel task: %s", todo.String())
	}
	if origin := todo.Results[2]; !origin.Failed || origin.Color != plot.Magenta {
		t.Errorf("origin pixel = %s, want a failed magenta pixel", origin.String())
	}
}

func TestRegisterWithoutCoordinator(t *testing.T) {
	settings := DefaultSettings()
	settings.Address = "127.0.0.1:0"
	settings.CoordinatorAddress = "127.0.0.1:1"
	w, err := New(settings)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Run(); err == nil {
		t.Error("Run succeeded without a coordinator")
	}
}

func TestSettingsVerify(t *testing.T) {
	s := Settings{Transport: 9}
	if err := s.Verify(); err != nil {
		t.Fatal(err)
	}
	if s.Address == "" || s.CoordinatorAddress == "" || s.Threads <= 0 || s.Transport != rpc.TCP {
		t.Errorf("defaults not applied: %s", s.String())
	}
}

func TestNewSettings(t *testing.T) {
	s, err := NewSettings("")
	if err != nil {
		t.Fatal(err)
	}
	if s.Address != "" || s.Threads != DefaultSettings().Threads {
		t.Errorf("got %s, want the unverified defaults", s.String())
	}

	fileName := filepath.Join(t.TempDir(), "worker.json")
	if err := misc.WriteJSON(fileName, map[string]interface{}{"Threads": 3, "Transport": "http"}); err != nil {
		t.Fatal(err)
	}
	s, err = NewSettings(fileName)
	if err != nil {
		t.Fatal(err)
	}
	// keys missing from the file keep their defaults and nothing is filled in yet
	if s.Threads != 3 || s.Transport != rpc.HTTP || s.CoordinatorAddress != "" {
		t.Errorf("got %s", s.String())
	}

	if _, err := NewSettings(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing settings file accepted")
	}
}
