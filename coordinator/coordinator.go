package coordinator

import (
	"ComplexPlot/misc"
	"ComplexPlot/plot"
	"ComplexPlot/rpc"
	"ComplexPlot/task"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
)

// rollCallTimeout bounds how long an unresponsive worker can hold up a roll call.
const rollCallTimeout = 10 * time.Second

// Coordinator hands out pixel tasks to workers over rpc and assembles their results into one
// image. Workers evaluate the expression themselves; the coordinator only parses it to reject a
// bad expression before any worker joins.
type Coordinator struct {
	clients        map[string]rpc.Client
	done           chan struct{}
	failedPixels   uint
	failure        error
	finishOnce     sync.Once
	image          *image.RGBA
	ingested       map[uint]bool
	logger         bslogger.Logger
	mutex          sync.Mutex
	settings       Settings
	startTime      time.Time
	stopTickers    chan struct{}
	taskCount      uint
	tasksHandedOut map[string]map[uint]task.Task // keep track of all tasks workers have
	tasksTodo      chan task.Task
	workersLeft    *sync.Cond

	Server rpc.Server

	HeartBeatInterval time.Duration
	RollCallInterval  time.Duration
}

func New(settings Settings) (*Coordinator, error) {
	if err := settings.Verify(); err != nil {
		return nil, fmt.Errorf("invalid coordinator settings: %w", err)
	}
	// Parse once here so a bad expression fails before any work is handed out
	plotter, err := plot.NewPlotter(settings.Plot)
	if err != nil {
		return nil, err
	}

	tasks := task.Generate(settings.TaskGeneration, settings.Plot.Size)
	size := int(settings.Plot.Size)
	c := &Coordinator{
		clients:           make(map[string]rpc.Client),
		done:              make(chan struct{}),
		image:             image.NewRGBA(image.Rect(0, 0, size, size)),
		ingested:          make(map[uint]bool),
		logger:            bslogger.NewLogger("Coordinator", bslogger.Normal, nil),
		settings:          settings,
		taskCount:         uint(len(tasks)),
		tasksHandedOut:    make(map[string]map[uint]task.Task),
		tasksTodo:         make(chan task.Task, len(tasks)),
		HeartBeatInterval: 30 * time.Second,
		RollCallInterval:  time.Minute,
	}
	c.workersLeft = sync.NewCond(&c.mutex)
	c.logger.Debugf("Expression %s", plotter.Describe())

	c.logger.Infof("Generating %d tasks", c.taskCount)
	for _, t := range tasks {
		c.tasksTodo <- t
	}

	c.Server = rpc.NewServer(settings.Transport, c, settings.ServerAddress, "CoordinatorServer")
	return c, nil
}

func (c *Coordinator) Settings() Settings {
	return c.settings
}

// Image returns the pixel buffer. It is complete once Run has returned without an error.
func (c *Coordinator) Image() *image.RGBA {
	return c.image
}

// Run serves workers until every task is ingested or one of them fails, saves the image and a
// copy of the settings, waits for the workers to leave and stops the server.
func (c *Coordinator) Run() error {
	if err := c.Start(); err != nil {
		return err
	}
	return c.Wait()
}

// Start brings up the rpc server. Workers can register as soon as it returns.
func (c *Coordinator) Start() error {
	if err := c.Server.Run(); err != nil {
		return err
	}
	c.logger.Infof("Waiting for workers at %s", c.Server.Address())
	c.startTime = time.Now()
	c.stopTickers = make(chan struct{})
	go c.tickers(c.stopTickers)
	return nil
}

// Wait blocks until the render is over and shuts the coordinator down. It returns the first
// failure reported by a worker, or an error saving the output.
func (c *Coordinator) Wait() error {
	<-c.done
	c.mutex.Lock()
	err := c.failure
	failedPixels := c.failedPixels
	c.mutex.Unlock()

	if err == nil {
		c.logger.Infof("Ingested %d tasks in %s", c.taskCount, time.Since(c.startTime))
		if failedPixels > 0 {
			c.logger.Warningf("%d samples failed to evaluate and were painted %v", failedPixels, c.settings.Plot.SentinelColor)
		}
		err = c.save()
	} else {
		c.logger.Errorf("Render aborted: %s", err)
	}

	c.waitForWorkers()
	close(c.stopTickers)
	misc.CheckError(c.Server.Stop(), c.logger, misc.Warning)
	return err
}

func (c *Coordinator) save() error {
	output := c.settings.Plot.Output
	if err := misc.SaveImage(output, c.image); err != nil {
		return err
	}
	c.logger.Infof("Saved image to %s", output)

	// Copy the settings next to the image so the run can be duplicated in the future
	backup := output + ".json"
	if err := misc.WriteJSON(backup, c.settings); err != nil {
		return fmt.Errorf("unable to make a backup copy of the settings: %w", err)
	}
	c.logger.Debugf("Saved settings to %s", backup)
	return nil
}

func (c *Coordinator) waitForWorkers() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.clients) > 0 {
		c.logger.Infof("Waiting for %d workers to disconnect", len(c.clients))
	}
	for len(c.clients) > 0 {
		c.workersLeft.Wait()
	}
}

// finish ends the render. The first call wins; a nil err means every task was ingested.
func (c *Coordinator) finish(err error) {
	c.finishOnce.Do(func() {
		c.failure = err
		close(c.done)
	})
}

func (c *Coordinator) finished() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Coordinator) tickers(stop <-chan struct{}) {
	rollCall := time.NewTicker(c.RollCallInterval)
	heartBeat := time.NewTicker(c.HeartBeatInterval)
	defer rollCall.Stop()
	defer heartBeat.Stop()

	for {
		select {
		case <-rollCall.C:
			c.logger.Debug("Roll call ticker")
			c.rollCall()

		case <-heartBeat.C:
			c.logger.Debug("Heart beat ticker")
			c.mutex.Lock()
			c.logger.Infof("Tasks [Generated: %d] [Ingested: %d] | Workers: %d", c.taskCount, len(c.ingested), len(c.clients))
			c.mutex.Unlock()

		case <-stop:
			return
		}
	}
}

func (c *Coordinator) rollCall() {
	c.mutex.Lock()
	clients := make([]rpc.Client, 0, len(c.clients))
	for _, v := range c.clients {
		clients = append(clients, v)
	}
	c.mutex.Unlock()

	var junk misc.Nothing
	for _, v := range clients {
		var reply bool
		err := v.Call("Worker.RollCall", junk, &reply)
		if err != nil {
			// Cannot communicate with the worker so remove it from the pool
			c.logger.Warningf("Worker %s missed roll call: %s", v.ServerAddress(), err)
			var nothing misc.Nothing
			misc.CheckError(c.DeRegisterWorker(v.ServerAddress(), &nothing), c.logger, misc.Warning)
		}
	}
}

// requeue puts tasks a departed worker never returned back into the pool.
func (c *Coordinator) requeue(tasks []task.Task) {
	for _, t := range tasks {
		select {
		case c.tasksTodo <- t:
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) RegisterWorker(workerServerAddress string, reply *misc.Nothing) error {
	if c.finished() {
		return task.ErrNoMoreTasks
	}

	// Create a client to communicate with this worker
	client := rpc.NewClient(c.settings.Transport, workerServerAddress, workerServerAddress)
	client.SetTimeout("Worker.RollCall", rollCallTimeout)
	if err := client.Connect(); err != nil {
		return fmt.Errorf("unable to reach worker at %s: %w", workerServerAddress, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.clients[workerServerAddress]; ok {
		misc.CheckError(client.Disconnect(), c.logger, misc.Warning)
		return fmt.Errorf("worker %s is already registered", workerServerAddress)
	}
	c.clients[workerServerAddress] = client
	// Track all tasks this worker checks out
	c.tasksHandedOut[workerServerAddress] = make(map[uint]task.Task)

	c.logger.Infof("Worker joined: %s", workerServerAddress)
	return nil
}

func (c *Coordinator) DeRegisterWorker(workerServerAddress string, reply *misc.Nothing) error {
	c.mutex.Lock()
	client, ok := c.clients[workerServerAddress]
	if !ok {
		c.mutex.Unlock()
		return fmt.Errorf("worker %s is not registered", workerServerAddress)
	}
	var outstanding []task.Task
	for _, v := range c.tasksHandedOut[workerServerAddress] {
		outstanding = append(outstanding, v)
	}

	// Remove stored values associated with this worker
	delete(c.tasksHandedOut, workerServerAddress)
	delete(c.clients, workerServerAddress)
	c.workersLeft.Broadcast()
	c.mutex.Unlock()

	// Put tasks this worker has not returned yet back into the tasksTodo pool
	if len(outstanding) > 0 {
		c.logger.Warningf("Worker %s left with %d tasks outstanding", workerServerAddress, len(outstanding))
		go c.requeue(outstanding)
	}

	// Disconnect from worker
	misc.CheckError(client.Disconnect(), c.logger, misc.Warning)
	c.logger.Infof("Worker left: %s", workerServerAddress)
	return nil
}

func (c *Coordinator) RollCall(nothing misc.Nothing, present *bool) error {
	*present = true
	return nil
}

// GetTask blocks until a task is available or the render is over. Tasks already ingested, which
// can come back through a requeue, are skipped.
func (c *Coordinator) GetTask(workerAddress string, t *task.Task) error {
	for {
		if c.finished() {
			return c.finishedError()
		}

		select {
		case <-c.done:
			return c.finishedError()

		case todo := <-c.tasksTodo:
			c.mutex.Lock()
			if c.ingested[todo.ID] {
				c.mutex.Unlock()
				continue
			}
			handedOut, ok := c.tasksHandedOut[workerAddress]
			if !ok {
				c.mutex.Unlock()
				go c.requeue([]task.Task{todo})
				return fmt.Errorf("worker %s is not registered", workerAddress)
			}
			todo.WorkerAddress = workerAddress
			handedOut[todo.ID] = todo
			c.mutex.Unlock()

			*t = todo
			return nil
		}
	}
}

func (c *Coordinator) finishedError() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.failure != nil {
		c.logger.Debug("Telling worker that the render was aborted")
		return task.ErrRenderAborted
	}
	c.logger.Debug("Telling worker that all tasks are handed out")
	return task.ErrNoMoreTasks
}

// ReturnTask ingests a finished task into the image. Duplicates are ignored and a task carrying
// a failure aborts the render.
func (c *Coordinator) ReturnTask(done task.Task, nothing *misc.Nothing) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if handedOut, ok := c.tasksHandedOut[done.WorkerAddress]; ok {
		delete(handedOut, done.ID)
	}
	if c.finished() {
		return nil
	}

	if done.Failure != "" {
		c.finish(fmt.Errorf("task %d on worker %s: %s", done.ID, done.WorkerAddress, done.Failure))
		return nil
	}
	if c.ingested[done.ID] {
		c.logger.Debugf("Ignoring duplicate task %d from %s", done.ID, done.WorkerAddress)
		return nil
	}
	if err := c.checkResults(done); err != nil {
		go c.requeue([]task.Task{{ID: done.ID, Tasks: done.Tasks}})
		return err
	}

	for _, result := range done.Results {
		c.image.SetRGBA(int(result.Column), int(result.Row), result.Color)
		if result.Failed {
			c.failedPixels++
		}
	}
	c.ingested[done.ID] = true

	if uint(len(c.ingested)) == c.taskCount {
		c.finish(nil)
	}
	return nil
}

func (c *Coordinator) checkResults(done task.Task) error {
	if len(done.Results) != len(done.Tasks) {
		return fmt.Errorf("task %d returned %d results for %d pixels", done.ID, len(done.Results), len(done.Tasks))
	}
	size := c.settings.Plot.Size
	for _, result := range done.Results {
		if result.Column >= size || result.Row >= size {
			return errors.New("result outside of the image")
		}
	}
	return nil
}

func (c *Coordinator) GetPlotSettings(nothing misc.Nothing, settings *plot.Settings) error {
	*settings = c.settings.Plot
	return nil
}
