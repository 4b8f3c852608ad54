package main

import (
	"ComplexPlot/coordinator"
	"ComplexPlot/misc"
	"ComplexPlot/plot"
	"ComplexPlot/rpc"
	"ComplexPlot/task"
	"ComplexPlot/worker"
	"flag"
	"fmt"
	"runtime"
	"strings"
)

type arguments struct {
	// Plot values
	errorPolicy plot.ErrorPolicy
	mode        uint
	output      string
	precision   uint
	rng         float64
	selection   plot.Selection
	settings    string
	size        uint
	variable    string
	workers     int

	// Coordinator values
	address        string
	isCoordinator  bool
	taskGeneration task.Generation
	transport      rpc.Transport

	// Worker values
	coordinatorAddress string
	isWorker           bool
	threads            int

	expression string
	set        map[string]bool
}

func parseArguments(args []string) (arguments, error) {
	var a arguments
	defaults := plot.DefaultSettings()

	flags := flag.NewFlagSet("complexplot", flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: complexplot [flags] <expression>\n\n")
		flags.PrintDefaults()
	}

	flags.UintVar(&a.size, "s", defaults.Size, "Width and height of the image in pixels")
	flags.Float64Var(&a.rng, "r", defaults.Range, "Half-width of the square plotted around the origin")
	flags.UintVar(&a.mode, "m", uint(defaults.Mode), "Colour mode: 1 for argument/modulus, anything else for grid lines")
	flags.UintVar(&a.precision, "p", defaults.Precision, "Bits of precision for the arithmetic (53 to 256)")
	flags.StringVar(&a.output, "o", defaults.Output, "Output image; the extension picks png, jpg, bmp or tiff")
	flags.StringVar(&a.variable, "var", defaults.Variable, "Name of the free variable")
	flags.IntVar(&a.workers, "workers", defaults.Workers, "Goroutines used for a local render")
	flags.TextVar(&a.selection, "select", defaults.Selection, "Candidate plotted for multi-valued results: first, last or min-modulus")
	flags.TextVar(&a.errorPolicy, "onError", defaults.ErrorPolicy, "What a failed sample does: abort or sentinel")
	flags.StringVar(&a.settings, "settings", "", "Json file with settings; flags given on the command line take precedence")

	flags.BoolVar(&a.isCoordinator, "isCoordinator", false, "Hand the render out to workers")
	flags.StringVar(&a.address, "address", "", "Address this coordinator or worker listens on (coordinator default: local address, port 51000)")
	flags.TextVar(&a.taskGeneration, "taskGeneration", task.Row, "Pixels per task: row, column or image")
	flags.TextVar(&a.transport, "transport", rpc.TCP, "Rpc transport between coordinator and workers: tcp or http")

	flags.BoolVar(&a.isWorker, "isWorker", false, "Process tasks for a coordinator")
	flags.StringVar(&a.coordinatorAddress, "coordinatorAddress", "", "Address of the coordinator (default local address, port 51000)")
	flags.IntVar(&a.threads, "threads", runtime.NumCPU(), "Tasks a worker processes at once")

	if err := flags.Parse(args); err != nil {
		return a, err
	}
	if a.isCoordinator && a.isWorker {
		return a, fmt.Errorf("an instance cannot be both the coordinator and a worker")
	}

	a.set = make(map[string]bool)
	flags.Visit(func(f *flag.Flag) {
		a.set[f.Name] = true
	})
	a.expression = strings.TrimSpace(strings.Join(flags.Args(), " "))
	if a.expression == "" && a.settings == "" && !a.isWorker {
		flags.Usage()
		return a, fmt.Errorf("no expression given")
	}
	return a, nil
}

// applyTo overwrites the plot settings named on the command line.
func (a *arguments) applyTo(s *plot.Settings) {
	if a.expression != "" {
		s.Expression = a.expression
	}
	if a.set["s"] {
		s.Size = a.size
	}
	if a.set["r"] {
		s.Range = a.rng
	}
	if a.set["m"] {
		s.Mode = plot.Mode(a.mode)
	}
	if a.set["p"] {
		s.Precision = a.precision
	}
	if a.set["o"] {
		s.Output = a.output
	}
	if a.set["var"] {
		s.Variable = a.variable
	}
	if a.set["workers"] {
		s.Workers = a.workers
	}
	if a.set["select"] {
		s.Selection = a.selection
	}
	if a.set["onError"] {
		s.ErrorPolicy = a.errorPolicy
	}
}

func (a *arguments) plotSettings() (plot.Settings, error) {
	s := plot.DefaultSettings()
	if a.settings != "" {
		if err := misc.ReadJSON(a.settings, &s); err != nil {
			return s, err
		}
	}
	a.applyTo(&s)
	return s, s.VerifyGiven()
}

func (a *arguments) coordinatorSettings() (coordinator.Settings, error) {
	s, err := coordinator.NewSettings(a.settings)
	if err != nil {
		return s, err
	}
	a.applyTo(&s.Plot)
	if a.set["address"] {
		s.ServerAddress = a.address
	}
	if a.set["taskGeneration"] {
		s.TaskGeneration = a.taskGeneration
	}
	if a.set["transport"] {
		s.Transport = a.transport
	}
	if err := s.Plot.VerifyGiven(); err != nil {
		return s, err
	}
	return s, s.Verify()
}

func (a *arguments) workerSettings() (worker.Settings, error) {
	s, err := worker.NewSettings(a.settings)
	if err != nil {
		return s, err
	}
	if a.set["address"] {
		s.Address = a.address
	}
	if a.set["coordinatorAddress"] {
		s.CoordinatorAddress = a.coordinatorAddress
	}
	if a.set["threads"] {
		s.Threads = a.threads
	}
	if a.set["transport"] {
		s.Transport = a.transport
	}
	return s, s.Verify()
}
