package coordinator

import (
	"ComplexPlot/misc"
	"ComplexPlot/plot"
	"ComplexPlot/rpc"
	"ComplexPlot/task"
	"path/filepath"
	"testing"
)

func newTestCoordinator(t *testing.T, expression string, size uint) *Coordinator {
	t.Helper()
	settings := DefaultSettings()
	settings.Plot.Expression = expression
	settings.Plot.Size = size
	settings.Plot.Output = filepath.Join(t.TempDir(), "plot.png")
	settings.ServerAddress = "127.0.0.1:0"
	c, err := New(settings)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// fakeWorker registers name without dialing it.
func fakeWorker(c *Coordinator, name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.clients[name] = rpc.NewClient(rpc.TCP, name, name)
	c.tasksHandedOut[name] = make(map[uint]task.Task)
}

func complete(t *testing.T, p *plot.Plotter, todo *task.Task) {
	t.Helper()
	for _, coordinate := range todo.Tasks {
		color, outcome, err := p.Pixel(coordinate.Column, coordinate.Row)
		if err != nil {
			t.Fatal(err)
		}
		todo.AddResult(task.Pixel{Color: color, Column: coordinate.Column, Row: coordinate.Row, Failed: outcome.Failed()})
	}
}

func TestNewRejectsBadExpression(t *testing.T) {
	settings := DefaultSettings()
	settings.Plot.Expression = "sin(z"
	if _, err := New(settings); err == nil {
		t.Error("New accepted an unparsable expression")
	}
}

func TestIngest(t *testing.T) {
	c := newTestCoordinator(t, "z^2", 3)
	p, err := plot.NewPlotter(c.Settings().Plot)
	if err != nil {
		t.Fatal(err)
	}
	fakeWorker(c, "w")

	var nothing misc.Nothing
	var returned []task.Task
	for i := 0; i < 3; i++ {
		var todo task.Task
		if err := c.GetTask("w", &todo); err != nil {
			t.Fatalf("GetTask %d: %v", i, err)
		}
		if todo.WorkerAddress != "w" {
			t.Errorf("task %d handed to %q", todo.ID, todo.WorkerAddress)
		}
		complete(t, p, &todo)
		returned = append(returned, todo)
	}

	if err := c.ReturnTask(returned[0], &nothing); err != nil {
		t.Fatal(err)
	}
	// duplicates are ignored
	if err := c.ReturnTask(returned[0], &nothing); err != nil {
		t.Fatal(err)
	}
	if c.finished() {
		t.Fatal("finished after one of three tasks")
	}

	incomplete := returned[1]
	incomplete.Results = incomplete.Results[:1]
	if err := c.ReturnTask(incomplete, &nothing); err == nil {
		t.Error("accepted a task with missing results")
	}

	for _, done := range returned[1:] {
		if err := c.ReturnTask(done, &nothing); err != nil {
			t.Fatal(err)
		}
	}
	if !c.finished() {
		t.Fatal("not finished after every task")
	}

	var todo task.Task
	if err := c.GetTask("w", &todo); !task.IsNoMoreTasks(err) {
		t.Errorf("GetTask after the render: %v, want %v", err, task.ErrNoMoreTasks)
	}
	if handed := len(c.tasksHandedOut["w"]); handed != 0 {
		t.Errorf("%d tasks still marked as handed out", handed)
	}

	for y := uint(0); y < 3; y++ {
		for x := uint(0); x < 3; x++ {
			want, _, _ := p.Pixel(x, y)
			if got := c.Image().RGBAAt(int(x), int(y)); got != want {
				t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}

	if err := c.save(); err != nil {
		t.Fatal(err)
	}
	output := c.Settings().Plot.Output
	if _, err := misc.LoadImage(output); err != nil {
		t.Errorf("saved image: %v", err)
	}
	backup, err := NewSettings(output + ".json")
	if err != nil {
		t.Fatalf("settings backup: %v", err)
	}
	if backup.Plot.Expression != "z^2" || backup.Plot.Size != 3 || backup.TaskGeneration != task.Row {
		t.Errorf("settings backup holds %s", backup.String())
	}
}

func TestAbort(t *testing.T) {
	c := newTestCoordinator(t, "z", 2)
	fakeWorker(c, "w")

	var todo task.Task
	if err := c.GetTask("w", &todo); err != nil {
		t.Fatal(err)
	}
	todo.Failure = "division by zero"
	var nothing misc.Nothing
	if err := c.ReturnTask(todo, &nothing); err != nil {
		t.Fatal(err)
	}

	if err := c.GetTask("w", &todo); !task.IsRenderAborted(err) {
		t.Errorf("GetTask after a failure: %v, want %v", err, task.ErrRenderAborted)
	}
	if c.failure == nil {
		t.Error("failure not recorded")
	}
}

func TestDeRegisterRequeues(t *testing.T) {
	c := newTestCoordinator(t, "z", 1)
	fakeWorker(c, "first")
	fakeWorker(c, "second")

	var todo task.Task
	if err := c.GetTask("first", &todo); err != nil {
		t.Fatal(err)
	}
	var nothing misc.Nothing
	if err := c.DeRegisterWorker("first", &nothing); err != nil {
		t.Fatal(err)
	}
	if err := c.DeRegisterWorker("first", &nothing); err == nil {
		t.Error("deregistered the same worker twice")
	}

	// the only task comes back to the next worker
	var again task.Task
	if err := c.GetTask("second", &again); err != nil {
		t.Fatal(err)
	}
	if again.ID != todo.ID || again.WorkerAddress != "second" {
		t.Errorf("got task %d for %q, want task %d for second", again.ID, again.WorkerAddress, todo.ID)
	}
}

func TestGetTaskUnregistered(t *testing.T) {
	c := newTestCoordinator(t, "z", 2)
	var todo task.Task
	if err := c.GetTask("stranger", &todo); err == nil {
		t.Error("handed a task to an unregistered worker")
	}

	// the task is not lost
	fakeWorker(c, "w")
	seen := make(map[uint]bool)
	for i := 0; i < 2; i++ {
		if err := c.GetTask("w", &todo); err != nil {
			t.Fatal(err)
		}
		seen[todo.ID] = true
	}
	if len(seen) != 2 {
		t.Errorf("got tasks %v, want both", seen)
	}
}

func TestSettingsVerify(t *testing.T) {
	s := Settings{Plot: plot.Settings{Expression: "z"}, TaskGeneration: 12, Transport: 5}
	if err := s.Verify(); err != nil {
		t.Fatal(err)
	}
	if s.ServerAddress == "" || s.TaskGeneration != task.Row || s.Transport != rpc.TCP {
		t.Errorf("defaults not applied: %s", s.String())
	}

	if err := (&Settings{}).Verify(); err == nil {
		t.Error("accepted settings without an expression")
	}
}
