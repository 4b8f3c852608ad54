package misc

import "github.com/BrugadaSyndrome/bslogger"

const (
	Fatal Severity = iota
	Error
	Warning
	Info
	Debug
)

type Severity int

func (s Severity) String() string {
	if s < Fatal || s > Debug {
		return "Unknown"
	}
	return []string{
		"Fatal", "Error", "Warning", "Info", "Debug",
	}[s]
}

// Log writes message to logger at severity s. Unknown severities are fatal.
func (s Severity) Log(logger bslogger.Logger, message string) {
	switch s {
	case Error:
		logger.Error(message)
	case Warning:
		logger.Warning(message)
	case Info:
		logger.Info(message)
	case Debug:
		logger.Debug(message)
	default:
		logger.Fatal(message)
	}
}

// CheckError logs err at the given severity and reports whether there was one.
func CheckError(err error, logger bslogger.Logger, severity Severity) bool {
	if err == nil {
		return false
	}
	severity.Log(logger, err.Error())
	return true
}
