package coordinator

import (
	"ComplexPlot/misc"
	"ComplexPlot/plot"
	"ComplexPlot/rpc"
	"ComplexPlot/task"
	"fmt"

	"github.com/BrugadaSyndrome/bslogger"
)

const DefaultPort = 51000

type Settings struct {
	logger bslogger.Logger

	Plot           plot.Settings
	ServerAddress  string
	TaskGeneration task.Generation
	Transport      rpc.Transport
}

func DefaultSettings() Settings {
	return Settings{
		logger:         bslogger.NewLogger("CoordinatorSettings", bslogger.Normal, nil),
		Plot:           plot.DefaultSettings(),
		TaskGeneration: task.Row,
		Transport:      rpc.TCP,
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
	output := "\nCoordinator settings\n"
	output += fmt.Sprintf("My Address: %s\n", s.ServerAddress)
	output += fmt.Sprintf("Task Generation: %s\n", s.TaskGeneration)
	output += fmt.Sprintf("Transport: %s", s.Transport)
	output += s.Plot.String()
	return output
}

func (s *Settings) Verify() error {
	if err := s.Plot.Verify(); err != nil {
		return err
	}
	if s.ServerAddress == "" {
		s.ServerAddress = misc.LocalAddress(DefaultPort)
	}
	if s.TaskGeneration < task.Row || s.TaskGeneration > task.Image {
		s.TaskGeneration = task.Row
	}
	if s.Transport < rpc.TCP || s.Transport > rpc.HTTP {
		s.Transport = rpc.TCP
	}
	return nil
}
