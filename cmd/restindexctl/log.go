package main

import "github.com/kaspanet/restindex/infrastructure/logger"

var log = logger.RegisterSubSystem("RCTL")
