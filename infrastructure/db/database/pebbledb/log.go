package pebbledb

import (
	"fmt"

	"github.com/kaspanet/restindex/infrastructure/logger"
)

var log = logger.RegisterSubSystem("DBAC")

// pebbleLogger routes pebble's internal messages to the DBAC subsystem.
type pebbleLogger struct{}

func (pebbleLogger) Infof(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func (pebbleLogger) Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

func (pebbleLogger) Fatalf(format string, args ...interface{}) {
	log.Criticalf(format, args...)
	panic(fmt.Sprintf(format, args...))
}
