package worker

import (
	"ComplexPlot/misc"
	"ComplexPlot/rpc"
	"fmt"
	"runtime"

	"github.com/BrugadaSyndrome/bslogger"
)

type Settings struct {
	logger bslogger.Logger

	// Address is where this worker serves roll calls. Empty picks a free port on the local address.
	Address            string
	CoordinatorAddress string
	Threads            int
	Transport          rpc.Transport
}

func DefaultSettings() Settings {
	return Settings{
		logger:    bslogger.NewLogger("WorkerSettings", bslogger.Normal, nil),
		Threads:   runtime.NumCPU(),
		Transport: rpc.TCP,
	}
}

// NewSettings decodes settingsFile over DefaultSettings, or returns the defaults when no file
// is named. The result is not verified so command line flags can still be applied on top.
func NewSettings(settingsFile string) (Settings, error) {
	s := DefaultSettings()
	if settingsFile == "" {
		return s, nil
	}
	if err := misc.ReadJSON(settingsFile, &s); err != nil {
		return s, err
	}
	s.logger.Debugf("Read settings from %s", settingsFile)
	return s, nil
}

func (s *Settings) String() string {
	output := "\nWorker settings\n"
	output += fmt.Sprintf("Address: %s\n", s.Address)
	output += fmt.Sprintf("Coordinator Address: %s\n", s.CoordinatorAddress)
	output += fmt.Sprintf("Threads: %d\n", s.Threads)
	output += fmt.Sprintf("Transport: %s\n", s.Transport)
	return output
}

func (s *Settings) Verify() error {
	if s.CoordinatorAddress == "" {
		s.CoordinatorAddress = misc.LocalAddress(51000)
	}
	if s.Address == "" {
		port, err := misc.GetFreePort()
		if err != nil {
			return fmt.Errorf("unable to find a free port: %w", err)
		}
		s.Address = misc.LocalAddress(port)
	}
	if s.Threads <= 0 {
		s.Threads = runtime.NumCPU()
	}
	if s.Transport < rpc.TCP || s.Transport > rpc.HTTP {
		s.Transport = rpc.TCP
	}
	return nil
}
