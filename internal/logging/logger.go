package logging

import (
	"strings"

	"github.com/labstack/gommon/log"
)

// New builds the process logger. level is one of DEBUG, INFO, WARN, ERROR or
// OFF; anything else falls back to INFO.
func New(prefix, level string) *log.Logger {
	logger := log.New(prefix)
	switch strings.ToUpper(level) {
	case "DEBUG":
		logger.SetLevel(log.DEBUG)
	case "WARN":
		logger.SetLevel(log.WARN)
	case "ERROR":
		logger.SetLevel(log.ERROR)
	case "OFF":
		logger.SetLevel(log.OFF)
	default:
		logger.SetLevel(log.INFO)
	}
	logger.SetHeader("${time_rfc3339} ${level} ${short_file}:${line} -")
	return logger
}
