package ldb

import "github.com/kaspanet/restindex/infrastructure/logger"

var log = logger.RegisterSubSystem("DBAC")
