package main

import (
	"ComplexPlot/coordinator"
	"ComplexPlot/misc"
	"ComplexPlot/plot"
	"ComplexPlot/worker"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/BrugadaSyndrome/bslogger"
)

func main() {
	logger := bslogger.NewLogger("ComplexPlot", bslogger.Normal, nil)

	args, err := parseArguments(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	switch {
	case args.isCoordinator:
		err = startCoordinator(args)
	case args.isWorker:
		err = startWorker(args)
	default:
		err = render(args)
	}
	if misc.CheckError(err, logger, misc.Fatal) {
		os.Exit(1)
	}
}

func render(args arguments) error {
	settings, err := args.plotSettings()
	if err != nil {
		return err
	}
	renderer, err := plot.NewRenderer(settings)
	if err != nil {
		return err
	}
	img, err := renderer.Render()
	if err != nil {
		return err
	}
	return misc.SaveImage(settings.Output, img)
}

func startCoordinator(args arguments) error {
	settings, err := args.coordinatorSettings()
	if err != nil {
		return err
	}
	c, err := coordinator.New(settings)
	if err != nil {
		return err
	}
	return c.Run()
}

func startWorker(args arguments) error {
	settings, err := args.workerSettings()
	if err != nil {
		return err
	}
	w, err := worker.New(settings)
	if err != nil {
		return err
	}
	return w.Run()
}
