package worker

import (
	"ComplexPlot/misc"
	"ComplexPlot/plot"
	"ComplexPlot/rpc"
	"ComplexPlot/task"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
)

// rollCallTimeout bounds how long a hung coordinator holds up the roll call ticker.
const rollCallTimeout = 10 * time.Second

type Worker struct {
	address        string
	client         rpc.Client
	logger         bslogger.Logger
	plotter        *plot.Plotter
	settings       Settings
	tasksCompleted atomic.Uint64

	Server rpc.Server

	HeartBeatInterval time.Duration
	RollCallInterval  time.Duration
}

func New(settings Settings) (*Worker, error) {
	if err := settings.Verify(); err != nil {
		return nil, fmt.Errorf("invalid worker settings: %w", err)
	}

	w := &Worker{
		client:            rpc.NewClient(settings.Transport, settings.CoordinatorAddress, "CoordinatorClient"),
		logger:            bslogger.NewLogger("Worker", bslogger.Normal, nil),
		settings:          settings,
		HeartBeatInterval: 30 * time.Second,
		RollCallInterval:  time.Minute,
	}
	// GetTask long-polls so only the roll call is bounded
	w.client.SetTimeout("Coordinator.RollCall", rollCallTimeout)
	w.Server = rpc.NewServer(settings.Transport, w, settings.Address, "WorkerServer")
	return w, nil
}

// TasksCompleted returns the number of tasks this worker has returned.
func (w *Worker) TasksCompleted() uint64 {
	return w.tasksCompleted.Load()
}

// Run registers with the coordinator and processes tasks on Settings.Threads goroutines until
// the coordinator has nothing left. It deregisters before returning.
func (w *Worker) Run() error {
	if err := w.Server.Run(); err != nil {
		return err
	}
	w.address = w.Server.Address()
	w.logger = bslogger.NewLogger(fmt.Sprintf("Worker %s", w.address), bslogger.Normal, nil)

	if err := w.register(); err != nil {
		misc.CheckError(w.Server.Stop(), w.logger, misc.Warning)
		return err
	}

	stopTickers := make(chan struct{})
	go w.tickers(stopTickers)

	w.logger.Infof("Processing tasks on %d threads", w.settings.Threads)
	startTime := time.Now()

	var wg sync.WaitGroup
	errs := make(chan error, w.settings.Threads)
	for i := 0; i < w.settings.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.processTasks(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(stopTickers)
	close(errs)

	w.logger.Info("Done processing tasks")
	w.logger.Debugf("Processed %d tasks in %s", w.tasksCompleted.Load(), time.Since(startTime))

	w.logger.Info("Shutting down")
	var nothing misc.Nothing
	misc.CheckError(w.client.Call("Coordinator.DeRegisterWorker", w.address, &nothing), w.logger, misc.Warning)
	misc.CheckError(w.client.Disconnect(), w.logger, misc.Warning)
	misc.CheckError(w.Server.Stop(), w.logger, misc.Warning)

	return <-errs
}

func (w *Worker) register() error {
	if err := w.client.Connect(); err != nil {
		return err
	}

	var nothing misc.Nothing
	if err := w.client.Call("Coordinator.RegisterWorker", w.address, &nothing); err != nil {
		misc.CheckError(w.client.Disconnect(), w.logger, misc.Warning)
		return fmt.Errorf("unable to register with the coordinator: %w", err)
	}

	// Build the plotter from the coordinator's settings; every worker parses the same text
	var settings plot.Settings
	err := w.client.Call("Coordinator.GetPlotSettings", nothing, &settings)
	if err == nil {
		w.plotter, err = plot.NewPlotter(settings)
	}
	if err != nil {
		misc.CheckError(w.client.Call("Coordinator.DeRegisterWorker", w.address, &nothing), w.logger, misc.Warning)
		misc.CheckError(w.client.Disconnect(), w.logger, misc.Warning)
		return fmt.Errorf("unable to set up the plot: %w", err)
	}
	w.logger.Debug(settings.String())
	w.logger.Debugf("Expression %s", w.plotter.Describe())
	return nil
}

func (w *Worker) tickers(stop <-chan struct{}) {
	rollCall := time.NewTicker(w.RollCallInterval)
	heartBeat := time.NewTicker(w.HeartBeatInterval)
	defer rollCall.Stop()
	defer heartBeat.Stop()

	for {
		select {
		case <-rollCall.C:
			w.logger.Debug("Roll call ticker")
			var junk misc.Nothing
			var reply bool
			if err := w.client.Call("Coordinator.RollCall", junk, &reply); err != nil {
				w.logger.Warningf("Coordinator missed roll call: %s", err)
			}

		case <-heartBeat.C:
			w.logger.Debug("Heart beat ticker")
			w.logger.Infof("Tasks [Completed: %d]", w.tasksCompleted.Load())

		case <-stop:
			return
		}
	}
}

func (w *Worker) processTasks() error {
	var nothing misc.Nothing
	for {
		var taskTodo task.Task
		err := w.client.Call("Coordinator.GetTask", w.address, &taskTodo)
		if task.IsNoMoreTasks(err) {
			// This is an expected error. No more work to do
			return nil
		}
		if task.IsRenderAborted(err) {
			w.logger.Warning("Coordinator aborted the render")
			return nil
		}
		if err != nil {
			return fmt.Errorf("unable to get a task: %w", err)
		}

		w.process(&taskTodo)

		if err = w.client.Call("Coordinator.ReturnTask", taskTodo, &nothing); err != nil {
			return fmt.Errorf("unable to return task %d: %w", taskTodo.ID, err)
		}
		w.tasksCompleted.Add(1)
	}
}

// process colours every coordinate of t. Under the abort policy the first failure is recorded
// on the task and the rest of it is skipped.
func (w *Worker) process(t *task.Task) {
	for {
		coordinate, err := t.GetNextTask()
		if err != nil {
			return
		}

		color, outcome, err := w.plotter.Pixel(coordinate.Column, coordinate.Row)
		if err != nil {
			t.Failure = err.Error()
			return
		}

		t.AddResult(task.Pixel{
			Color:  color,
			Column: coordinate.Column,
			Row:    coordinate.Row,
			Failed: outcome.Failed(),
		})
	}
}

func (w *Worker) RollCall(request misc.Nothing, reply *bool) error {
	*reply = true
	return nil
}
